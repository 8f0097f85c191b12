package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/greeting-api/config"
	"github.com/ErlanBelekov/greeting-api/internal/cache"
	"github.com/ErlanBelekov/greeting-api/internal/email"
	"github.com/ErlanBelekov/greeting-api/internal/health"
	"github.com/ErlanBelekov/greeting-api/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/greeting-api/internal/infrastructure/rediscache"
	ctxlog "github.com/ErlanBelekov/greeting-api/internal/log"
	"github.com/ErlanBelekov/greeting-api/internal/metrics"
	"github.com/ErlanBelekov/greeting-api/internal/password"
	"github.com/ErlanBelekov/greeting-api/internal/token"
	httptransport "github.com/ErlanBelekov/greeting-api/internal/transport/http"
	"github.com/ErlanBelekov/greeting-api/internal/transport/http/handler"
	"github.com/ErlanBelekov/greeting-api/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.WithMaxConns(cfg.DBMaxConns))
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if cfg.MigrateOnStart {
		if err := postgres.Migrate(ctx, pool); err != nil {
			stop()
			log.Fatalf("migrate: %v", err)
		}
		logger.Info("migrations applied")
	}

	deps := map[string]health.Pinger{"postgres": pool}

	// Cache
	var store cache.Store
	if cfg.RedisURL != "" {
		client, err := rediscache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			stop()
			log.Fatalf("redis: %v", err)
		}
		defer client.Close()

		redisStore := rediscache.NewStore(client)
		deps["redis"] = redisStore
		store = redisStore
	} else {
		logger.Warn("REDIS_URL not set, using in-process cache")
		memStore := cache.NewMemoryStore()
		go cache.NewJanitor(memStore, time.Minute, logger).Start(ctx)
		store = memStore
	}

	// Credentials
	secret := []byte(cfg.JWTSecret)
	sessions := token.NewCodec(secret, token.AudienceSession)
	resets := token.NewCodec(secret, token.AudiencePasswordReset)
	hasher := password.NewHasher(password.Params{
		Memory:      cfg.Argon2MemoryKiB,
		Iterations:  cfg.Argon2Iterations,
		Parallelism: cfg.Argon2Parallelism,
	})

	// Users
	userRepo := postgres.NewUserRepository(pool)
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	authUsecase, err := usecase.NewAuthUsecase(userRepo, store, sender, hasher, sessions, resets, usecase.AuthConfig{
		SessionTTL:       cfg.SessionTTL,
		ResetTokenTTL:    cfg.ResetTokenTTL,
		ProfileCacheTTL:  cfg.ProfileCacheTTL,
		ResetLinkBaseURL: cfg.ResetLinkBaseURL,
	}, logger)
	if err != nil {
		stop()
		log.Fatalf("auth usecase: %v", err)
	}
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	// Greetings
	greetingRepo := postgres.NewGreetingRepository(pool)
	greetingUsecase := usecase.NewGreetingUsecase(greetingRepo, logger)
	greetingHandler := handler.NewGreetingHandler(greetingUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(deps, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httptransport.NewRouter(logger, authHandler, greetingHandler, sessions),
		ReadHeaderTimeout: 5 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
