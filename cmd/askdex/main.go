package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/catalogix/askdex/internal/config"
	dbRedis "github.com/catalogix/askdex/internal/db/redis"
	"github.com/catalogix/askdex/internal/domain"
	logpkg "github.com/catalogix/askdex/internal/logger"
	"github.com/catalogix/askdex/internal/metrics"
	"github.com/catalogix/askdex/internal/repository/catalog"
	"github.com/catalogix/askdex/internal/repository/embcache"
	chiTransport "github.com/catalogix/askdex/internal/transport/chi"
	openaiLLM "github.com/catalogix/askdex/internal/transport/openai"
	askuc "github.com/catalogix/askdex/internal/usecase/ask"
	healthuc "github.com/catalogix/askdex/internal/usecase/health"
	"github.com/catalogix/askdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting askdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register LLM metrics explicitly (no init())
	metrics.RegisterLLMMetrics()

	// Embedders — one per embedding space, each behind a cache.
	cacheStore := buildCacheStore(cfg.Embedding.Cache, store)
	textEmbedder := buildEmbedder(domain.SpaceText, cfg.Embedding.Text, cacheStore, logger)
	imageEmbedder := buildEmbedder(domain.SpaceImage, cfg.Embedding.Image, cacheStore, logger)
	logger.Info("Embedders created",
		zap.String("text_model", cfg.Embedding.Text.Model),
		zap.Int("text_dimensions", cfg.Embedding.Text.Dimensions),
		zap.String("image_model", cfg.Embedding.Image.Model),
		zap.Int("image_dimensions", cfg.Embedding.Image.Dimensions),
	)

	generator := openaiLLM.NewGenerator(&openaiLLM.GeneratorConfig{
		APIKey:   cfg.Generator.APIKey,
		BaseURL:  cfg.Generator.BaseURL,
		Model:    cfg.Generator.Model,
		Provider: cfg.Generator.Provider,
		Logger:   logger,
	})

	// Catalog repository with capability learning over filtered search.
	caps := catalog.NewCapabilityRegistry()
	repo := catalog.New(store, caps, logger).WithFallbackMaxK(cfg.Retrieval.FallbackMaxK)
	if err := repo.EnsureIndexes(ctx,
		cfg.Embedding.Text.Dimensions, cfg.Embedding.Image.Dimensions,
		cfg.Retrieval.HNSWM, cfg.Retrieval.HNSWEFConstruct,
	); err != nil {
		logger.Fatal("Failed to ensure search indexes", zap.Error(err))
	}

	askSvc := askuc.New(repo, generator, textEmbedder, imageEmbedder, askuc.Options{
		CorrectiveThreshold: cfg.Retrieval.CorrectiveThreshold,
		ImageMinScore:       cfg.Retrieval.ImageMinScore,
		DualMatchBoost:      cfg.Retrieval.DualMatchBoost,
		MaxImages:           cfg.Retrieval.MaxImages,
		RRFK:                cfg.Retrieval.RRFK,
		SearchConcurrency:   cfg.Retrieval.SearchConcurrency,
		RequestTimeout:      time.Duration(cfg.Retrieval.RequestTimeoutSec) * time.Second,
	}, logger)

	healthSvc := healthuc.New(store, map[string]healthuc.Checker{
		"text_embedding": healthChecker(textEmbedder),
		"generator":      generator,
	})

	server := chiTransport.NewServer(askSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)
	r.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// embeddingCacheStore is the minimal surface embcache needs; both the
// in-process MemStore and the redis KV store satisfy it.
type embeddingCacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

func buildCacheStore(cfg config.CacheConfig, store *dbRedis.Store) embeddingCacheStore {
	if cfg.Backend == "redis" {
		return ttlCacheStore{store: store, ttl: time.Duration(cfg.TTLHours) * time.Hour}
	}
	return embcache.NewMemStore(cfg.Capacity)
}

// ttlCacheStore backs the embedding cache with redis, expiring entries so
// stale model output ages out without an explicit flush.
type ttlCacheStore struct {
	store *dbRedis.Store
	ttl   time.Duration
}

func (t ttlCacheStore) Get(ctx context.Context, key string) ([]byte, error) {
	return t.store.Get(ctx, key)
}

func (t ttlCacheStore) Set(ctx context.Context, key string, value []byte) error {
	return t.store.SetWithTTL(ctx, key, value, t.ttl)
}

// buildEmbedder assembles the embedder chain for one space: OpenAI -> Cached.
func buildEmbedder(
	space domain.Space,
	cfg config.VectorizerConfig,
	cache embeddingCacheStore,
	logger *zap.Logger,
) domain.Embedder {
	base := openaiLLM.NewEmbedder(&openaiLLM.EmbedderConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Provider,
		Logger:     logger,
	})
	return embcache.New(base, cache, space, metrics.EmbeddingCacheTotal, logger)
}

// healthChecker unwraps an embedder decorator chain down to its
// health-checkable provider; embedders without one always report healthy.
func healthChecker(embedder domain.Embedder) healthCheckerFunc {
	return func(ctx context.Context) error {
		if hc, ok := embedder.(domain.HealthChecker); ok {
			if err := hc.HealthCheck(ctx); err != nil {
				return fmt.Errorf("embedding health check: %w", err)
			}
		}
		return nil
	}
}

type healthCheckerFunc func(ctx context.Context) error

func (f healthCheckerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
