package router

import (
	"github.com/gin-gonic/gin"

	"github.com/samuelbyalugaba/KenaAI-sub000/internal/http/handler"
)

func WebhookRouter(router *gin.RouterGroup, handler *handler.WebhookHandler) {
	router.POST("", handler.Receive)
}
