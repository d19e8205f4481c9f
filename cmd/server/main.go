package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/samuelbyalugaba/KenaAI-sub000/common/id"
	"github.com/samuelbyalugaba/KenaAI-sub000/common/llm"
	"github.com/samuelbyalugaba/KenaAI-sub000/common/logger"
	"github.com/samuelbyalugaba/KenaAI-sub000/common/otel"
	"github.com/samuelbyalugaba/KenaAI-sub000/core/config"
	"github.com/samuelbyalugaba/KenaAI-sub000/core/db"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/classifier"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/http/handler"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/http/middleware"
	httprouter "github.com/samuelbyalugaba/KenaAI-sub000/internal/http/router"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/model"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/queue"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/service"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/store"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/store/sqlite"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "chatingest starting", "env", cfg.Env, "store", cfg.Store.Driver)
	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to open store", "error", err, "driver", cfg.Store.Driver)
		os.Exit(1)
	}
	defer backend.close()
	slog.InfoContext(ctx, "store connected", "driver", cfg.Store.Driver)

	producer, err := newProducer(ctx, cfg.Redis)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	cls, err := newClassifier(cfg.Classifier)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create classifier", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "classifier ready", "provider", cfg.Classifier.Provider)

	ingest := service.NewIngestService(
		backend.stores,
		backend.txRunner,
		cls,
		producer,
		service.IngestConfig{IdentityDomain: cfg.Contact.IdentityDomain},
		slog.Default(),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, ingest, backend.pinger)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

type storeBackend struct {
	stores   service.Stores
	txRunner service.TxRunner
	pinger   handler.Pinger
	close    func()
}

func openBackend(ctx context.Context, cfg config.Config) (*storeBackend, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverSQLite:
		sqliteDB, err := sqlite.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &storeBackend{
			stores:   sqliteDB.Stores(),
			txRunner: service.NewSQLiteTxRunner(sqliteDB),
			pinger:   sqliteDB,
			close:    func() { _ = sqliteDB.Close() },
		}, nil
	default:
		database, err := db.New(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		return &storeBackend{
			stores:   store.NewStores(database.Queries()),
			txRunner: service.NewTxRunner(database),
			pinger:   database,
			close:    database.Close,
		}, nil
	}
}

func newProducer(ctx context.Context, cfg config.RedisConfig) (queue.Producer, error) {
	if !cfg.Enabled() {
		slog.InfoContext(ctx, "redis disabled, message.ingested notifications off")
		return queue.NewNoopProducer(), nil
	}

	redisOpts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Stream)

	return queue.NewRedisProducer(redisClient, cfg.Stream, slog.Default()), nil
}

func newClassifier(cfg config.ClassifierConfig) (classifier.Classifier, error) {
	fallback, err := model.ParsePriority(cfg.DefaultPriority)
	if err != nil {
		return nil, fmt.Errorf("CLASSIFIER_DEFAULT_PRIORITY: %w", err)
	}

	if !cfg.LLMEnabled() {
		return classifier.WithFallback(classifier.NewKeyword(), fallback), nil
	}

	client, err := llm.New(llm.Config{
		Provider: cfg.Provider,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		Model:    cfg.Model,
	})
	if err != nil {
		return nil, err
	}
	return classifier.WithFallback(classifier.NewLLM(client, cfg.Timeout), fallback), nil
}

func setupRouter(cfg config.Config, ingest service.IngestService, pinger handler.Pinger) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	router.Use(middleware.Timeout(cfg.RequestTimeout))

	httprouter.SetupRoutes(router, httprouter.RouterConfig{
		Ingest: ingest,
		Store:  pinger,
	})

	return router
}

const banner = `
  ___ _  _   _ _____   ___ _  _  ___ ___ ___ _____
 / __| || | /_\_   _| |_ _| \| |/ __| __/ __|_   _|
| (__| __ |/ _ \| |    | || .' | (_ | _|\__ \ | |
 \___|_||_/_/ \_\_|   |___|_|\_|\___|___|___/ |_|
`
