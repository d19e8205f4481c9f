package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/samuelbyalugaba/KenaAI-sub000/internal/http/handler"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/service"
)

type RouterConfig struct {
	Ingest service.IngestService
	Store  handler.Pinger
}

func SetupRoutes(router *gin.Engine, cfg RouterConfig) {
	healthHandler := handler.NewHealthHandler(cfg.Store)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	webhookHandler := handler.NewWebhookHandler(cfg.Ingest)
	WebhookRouter(router.Group("/webhook"), webhookHandler)

	v1 := router.Group("/api/v1")
	{
		WebhookRouter(v1.Group("/webhook"), webhookHandler)
	}
}
