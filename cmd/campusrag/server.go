package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campusrag/campusrag/api/handlers"
	"github.com/campusrag/campusrag/auth"
	"github.com/campusrag/campusrag/cache"
	"github.com/campusrag/campusrag/config"
	"github.com/campusrag/campusrag/embedding"
	"github.com/campusrag/campusrag/history"
	"github.com/campusrag/campusrag/internal/metrics"
	"github.com/campusrag/campusrag/internal/server"
	"github.com/campusrag/campusrag/llm"
	llmfactory "github.com/campusrag/campusrag/llm/factory"
	"github.com/campusrag/campusrag/pipeline"
	"github.com/campusrag/campusrag/rag"
	"github.com/campusrag/campusrag/records"
)

const otpTTL = 10 * time.Minute

// Server wires the query pipeline, ingestion, auth, and history behind
// two HTTP listeners (API and metrics).
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	httpManager    *server.Manager
	metricsManager *server.Manager

	redisClient *redis.Client
	completer   llm.CompletionProvider
	authService *auth.Service

	queryHandler   *handlers.QueryHandler
	ingestHandler  *handlers.IngestHandler
	authHandler    *handlers.AuthHandler
	historyHandler *handlers.HistoryHandler
	healthHandler  *handlers.HealthHandler

	collector *metrics.Collector

	rateLimiterCancel context.CancelFunc
}

// NewServer creates a server from loaded configuration.
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{cfg: cfg, logger: logger}
}

// Start builds every component and brings up both listeners.
func (s *Server) Start() error {
	s.collector = metrics.NewCollector()

	if err := s.initComponents(); err != nil {
		return fmt.Errorf("failed to init components: %w", err)
	}
	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	if err := s.startMetricsServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	s.logger.Info("All servers started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
	)
	return nil
}

func (s *Server) initComponents() error {
	// Redis backs the answer cache and, optionally, chat history.
	// The service runs without it.
	if client, err := cache.NewClient(s.cfg.Redis); err != nil {
		s.logger.Warn("Redis not available, answer cache disabled", zap.Error(err))
	} else {
		s.redisClient = client
	}

	var answers *cache.AnswerCache
	if s.redisClient != nil && s.cfg.Redis.CacheEnabled {
		answers = cache.NewAnswerCache(s.redisClient, s.cfg.Redis.AnswerTTL, s.logger)
	}

	embedder := embedding.NewHuggingFace(s.cfg.Embedding, s.logger)

	var store rag.VectorStore
	if s.cfg.Pinecone.APIKey != "" {
		store = rag.NewPineconeStore(s.cfg.Pinecone, s.logger)
		s.logger.Info("Using Pinecone vector index", zap.String("index", s.cfg.Pinecone.Index))
	} else {
		store = rag.NewInMemoryVectorStore(s.logger)
		s.logger.Warn("Pinecone API key not configured, using in-memory vector store")
	}

	retriever := rag.NewVectorRetriever(embedder, store, s.logger)
	indexer := rag.NewIndexer(s.cfg.Ingest, embedder, store, s.logger)

	completer, err := llmfactory.New(s.cfg.LLM, s.logger)
	if err != nil {
		return err
	}
	s.completer = completer

	recordStore := records.NewFileStore(s.cfg.Auth.RecordsPath, s.logger)

	log, err := history.NewFromConfig(s.cfg.History, s.redisClient, s.logger)
	if err != nil {
		return err
	}

	s.authService = auth.NewService(
		auth.NewRoster(s.cfg.Auth.RosterPath),
		auth.NewUserStore(s.cfg.Auth.UserDBPath),
		auth.NewOTPStore(otpTTL),
		auth.NewLogMailer(s.logger),
		auth.NewTokenIssuer(s.cfg.Auth.JWTSecret, s.cfg.Auth.TokenTTL),
		s.logger,
	)

	orchestrator := pipeline.NewOrchestrator(
		retriever, completer, recordStore, log,
		answers, s.collector, s.cfg.Pipeline, s.logger,
	)

	s.queryHandler = handlers.NewQueryHandler(orchestrator, s.logger)
	s.ingestHandler = handlers.NewIngestHandler(indexer, answers, s.collector, s.logger)
	s.authHandler = handlers.NewAuthHandler(s.authService, s.logger)
	s.historyHandler = handlers.NewHistoryHandler(log, s.logger)
	s.healthHandler = handlers.NewHealthHandler(Version, completer, s.redisClient, s.logger)

	s.logger.Info("Components initialized",
		zap.String("llm_provider", s.cfg.LLM.Provider),
		zap.String("history_backend", s.cfg.History.Backend),
	)
	return nil
}

func (s *Server) startHTTPServer() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthHandler.Health)
	mux.HandleFunc("/healthz", s.healthHandler.Health)
	mux.HandleFunc("/ready", s.healthHandler.Ready)
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteSuccess(w, map[string]string{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	mux.Handle("/v1/query", s.queryHandler)
	mux.Handle("/v1/documents", s.ingestHandler)
	mux.HandleFunc("/v1/auth/signup", s.authHandler.Signup)
	mux.HandleFunc("/v1/auth/verify-otp", s.authHandler.VerifyOTP)
	mux.HandleFunc("/v1/auth/login", s.authHandler.Login)
	mux.Handle("/v1/history/", s.historyHandler)

	rateLimiterCtx, rateLimiterCancel := context.WithCancel(context.Background())
	s.rateLimiterCancel = rateLimiterCancel

	middlewares := []Middleware{
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		CORS(s.cfg.Server.CORSAllowedOrigins),
		RateLimiter(rateLimiterCtx, float64(s.cfg.Server.RateLimitRPS), s.cfg.Server.RateLimitBurst, s.logger),
	}
	if s.cfg.Auth.JWTSecret != "" {
		skipAuthPaths := []string{"/health", "/ready", "/version", "/v1/auth/"}
		middlewares = append(middlewares, JWTAuth(s.authService, skipAuthPaths, s.logger))
		s.logger.Info("JWT authentication enabled")
	} else {
		s.logger.Warn("JWT secret not configured, API endpoints are unauthenticated")
	}

	handler := Chain(mux, middlewares...)

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     2 * s.cfg.Server.ReadTimeout,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.httpManager = server.NewManager(handler, serverConfig, s.logger)
	if err := s.httpManager.Start(); err != nil {
		return err
	}

	s.logger.Info("HTTP server started", zap.Int("port", s.cfg.Server.HTTPPort))
	return nil
}

func (s *Server) startMetricsServer() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.collector.Handler())

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.MetricsPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.metricsManager = server.NewManager(mux, serverConfig, s.logger)
	if err := s.metricsManager.Start(); err != nil {
		return err
	}

	s.logger.Info("Metrics server started", zap.Int("port", s.cfg.Server.MetricsPort))
	return nil
}

// WaitForShutdown blocks until a termination signal, then shuts
// everything down.
func (s *Server) WaitForShutdown() {
	if s.httpManager != nil {
		s.httpManager.WaitForShutdown()
	}
	s.Shutdown()
}

// Shutdown stops both listeners and releases resources.
func (s *Server) Shutdown() {
	s.logger.Info("Starting graceful shutdown...")

	ctx := context.Background()

	if s.rateLimiterCancel != nil {
		s.rateLimiterCancel()
	}
	if s.httpManager != nil {
		if err := s.httpManager.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}
	if s.metricsManager != nil {
		if err := s.metricsManager.Shutdown(ctx); err != nil {
			s.logger.Error("Metrics server shutdown error", zap.Error(err))
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Redis close error", zap.Error(err))
		}
	}

	s.logger.Info("Graceful shutdown completed")
}
