package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/journai/config"
	"github.com/yoockh/journai/internal/api/handlers"
	"github.com/yoockh/journai/internal/api/middleware"
	"github.com/yoockh/journai/internal/api/routes"
	"github.com/yoockh/journai/internal/cache"
	"github.com/yoockh/journai/internal/logger"
	"github.com/yoockh/journai/internal/metrics"
	"github.com/yoockh/journai/internal/services"
	"github.com/yoockh/journai/internal/workers"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := config.OpenStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("store init")
	}
	defer func() { _ = store.Close(context.Background()) }()
	log.WithField("backend", cfg.StoreBackend).Info("store ready")

	provider, err := config.OpenProvider(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("completion provider init")
	}
	defer func() { _ = provider.Close() }()
	log.WithField("provider", cfg.LLMProvider).Info("completion provider ready")

	var (
		summaryCache cache.Cache
		rdb          *redis.Client
	)
	if cfg.RedisAddr != "" {
		rdb, err = config.NewRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, using in-process summary cache")
			rdb = nil
		} else {
			rc := cache.NewRedisCache(rdb, "journai:")
			defer func() { _ = rc.Close() }()
			summaryCache = rc
		}
	}
	if summaryCache == nil {
		summaryCache = cache.NewMemoryCache(cfg.SummaryCacheTTL, 10*time.Minute)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	now := time.Now
	gate := services.NewGateService(store, store, log, m, now)
	conv := services.NewConversationService(provider, log, m)
	summaries := services.NewSummaryService(conv, store, summaryCache, cfg.SummaryCacheTTL, log, m)

	var refresh services.SummaryRefresher
	if rdb != nil && cfg.SummaryRefreshEnabled() {
		pool := &workers.SummaryWorkerPool{
			Redis:      rdb,
			Summaries:  summaries,
			NumWorkers: cfg.SummaryWorkers,
			Logger:     log.WithField("component", "summary_worker"),
		}
		if err := pool.Start(ctx); err != nil {
			log.WithError(err).Fatal("summary workers")
		}
		refresh = workers.NewSummaryQueue(rdb)
	}
	journal := services.NewJournalService(store, summaries, refresh, log, now)

	deps := routes.Deps{
		Chat:        handlers.NewChatHandler(services.NewChatService(gate, conv, store, log)),
		Logs:        handlers.NewLogHandler(services.NewLogService(store, log, m, now)),
		Journal:     handlers.NewJournalHandler(journal, summaries, conv),
		Gate:        handlers.NewGateHandler(gate),
		Session:     handlers.NewSessionHandler(services.NewSessionService(store, gate, now)),
		Users:       handlers.NewUserHandler(services.NewUserService(store, now)),
		Logger:      log,
		Metrics:     m,
		Gatherer:    reg,
		RateLimiter: middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		CORSOrigins: cfg.CORSAllowedOrigins,
	}
	if cfg.AuthEnabled() {
		deps.Auth = &middleware.AuthConfig{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, Audience: cfg.JWTAudience}
	} else {
		log.Warn("AUTH_JWT_SECRET not set, requests are not authenticated")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	routes.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown")
	}
}
