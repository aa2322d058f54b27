package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"DocRAG/backend/go/internal/config"
	"DocRAG/backend/go/internal/database/minio"
	"DocRAG/backend/go/internal/database/redis"
	"DocRAG/backend/go/internal/docrag_service/api"
	"DocRAG/backend/go/internal/docrag_service/service"
	"DocRAG/backend/go/internal/docstore"
	"DocRAG/backend/go/internal/llm"
	memstore "DocRAG/backend/go/internal/memory/store"
	"DocRAG/backend/go/internal/models"
	"DocRAG/backend/go/internal/rag/interfaces"
	"DocRAG/backend/go/internal/websearch"
	"DocRAG/backend/go/pkg/logger"
	"DocRAG/backend/go/pkg/ratelimiter"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to the YAML configuration file")
	envFile := flag.String("env", ".env", "Path to a .env file with credentials")
	flag.Parse()

	// Load .env before the config so environment overrides apply
	if err := config.LoadDotEnv(*envFile); err != nil {
		log.Fatalf("Failed to load %s: %v", *envFile, err)
	}
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	serviceLogger := logger.New("DocRAGService", "", "")

	ctx := context.Background()
	store, err := docstore.Open(ctx, cfg.Storage)
	if err != nil {
		serviceLogger.WithError(models.NewErrorInfo(err, "storage_error")).Fatal("Failed to open document store")
	}

	memory, err := memstore.Open(ctx, cfg.Memory)
	if err != nil {
		serviceLogger.WithError(models.NewErrorInfo(err, "memory_error")).Fatal("Failed to open conversation memory")
	}

	var embedder interfaces.EmbeddingModel
	if cfg.RAG.Ranker == "embedding" {
		embedder = llm.NewOpenAIEmbedder(cfg.LLM.EmbeddingModel, cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.BaseURL)
	}

	// /healthz 只检查配置启用的后端
	var checks []service.HealthCheck
	if cfg.Storage.Backend == "minio" {
		checks = append(checks, service.HealthCheck{Name: "minio", Check: minio.HealthCheck})
	}
	if cfg.Memory.Enabled && cfg.Memory.Backend == "redis" {
		checks = append(checks, service.HealthCheck{Name: "redis", Check: redis.HealthCheck})
	}

	svc, err := service.New(service.Options{
		Config:       cfg,
		Store:        store,
		Memory:       memory,
		Web:          websearch.NewClient(cfg.Search, serviceLogger),
		Embedder:     embedder,
		Logger:       serviceLogger,
		HealthChecks: checks,
	})
	if err != nil {
		serviceLogger.WithError(models.NewErrorInfo(err, "init_error")).Fatal("Failed to create service")
	}

	gin.SetMode(gin.ReleaseMode)
	apiHandler := api.NewAPI(svc, "Document RAG", cfg.Server.MaxUploadBytes, serviceLogger)
	router := api.NewRouter(apiHandler, ratelimiter.FromConfig(cfg.Server.RateLimiter), serviceLogger)

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	go func() {
		serviceLogger.Info("Starting HTTP server on " + srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("HTTP server failed to start")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	serviceLogger.Info("Shutting down server...")

	// 运行可能持续数分钟，给进行中的请求留出时间
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Server forced to shutdown")
	}
	if err := redis.Close(); err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Error closing Redis")
	}

	serviceLogger.Info("Server gracefully stopped")
}
