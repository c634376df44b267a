package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mocklyai/mockly/config"
	"github.com/mocklyai/mockly/internal/api/handlers"
	"github.com/mocklyai/mockly/internal/api/middleware"
	"github.com/mocklyai/mockly/internal/api/routes"
	"github.com/mocklyai/mockly/internal/cache"
	"github.com/mocklyai/mockly/internal/logger"
	"github.com/mocklyai/mockly/internal/metrics"
	pgrepo "github.com/mocklyai/mockly/internal/repositories/postgres"
	"github.com/mocklyai/mockly/internal/services"
	"github.com/mocklyai/mockly/internal/storage"
	"github.com/mocklyai/mockly/internal/webhook"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config load failed")
	}

	db, err := config.OpenPostgres(cfg.PostgresURI)
	if err != nil {
		log.WithError(err).Fatal("postgres init failed")
	}
	if err := config.Migrate(db); err != nil {
		log.WithError(err).Fatal("schema migration failed")
	}
	log.Info("postgres connected")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var statusCache cache.Cache
	if cfg.RedisAddr != "" {
		rdb, err := config.OpenRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.WithError(err).Fatal("redis init failed")
		}
		statusCache = cache.NewRedisCache(rdb, "mockly")
		log.Info("redis connected")
	} else {
		log.Warn("REDIS_ADDR not set, session-status caching disabled")
	}

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	userRepo := pgrepo.NewUserRepo(db)
	agentRepo := pgrepo.NewAgentRepo(db)
	sessionRepo := pgrepo.NewSessionRepo(db)
	deliveryRepo := pgrepo.NewDeliveryRepo(db)
	resumeRepo := pgrepo.NewResumeRepo(db)

	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	userSvc := services.NewUserService(userRepo)
	sessionSvc := services.NewSessionService(services.SessionServiceDeps{
		Sessions:       sessionRepo,
		Agents:         agentRepo,
		Deliveries:     deliveryRepo,
		Cache:          statusCache,
		Metrics:        collector,
		Logger:         log,
		WebhookURL:     cfg.WebhookURL,
		CallbackSecret: cfg.CallbackSecret,
	})

	var resumeHandler *handlers.ResumeHandler
	if cfg.ResumeBucket != "" {
		uploader, err := storage.NewGCSUploader(ctx, cfg.ResumeBucket)
		if err != nil {
			log.WithError(err).Fatal("resume storage init failed")
		}
		defer uploader.Close()
		resumeHandler = handlers.NewResumeHandler(services.NewResumeService(resumeRepo, uploader))
	} else {
		log.Warn("RESUME_BUCKET not set, resume uploads disabled")
	}

	dispatcher := &webhook.Dispatcher{
		Deliveries: deliveryRepo,
		Client:     &http.Client{Timeout: cfg.WebhookTimeout},
		Logger:     log,
		Metrics:    collector,
		Workers:    cfg.DispatchWorkers,
		Interval:   cfg.DispatchInterval,
		MaxTries:   cfg.WebhookMaxTries,
	}
	if err := dispatcher.Start(ctx); err != nil {
		log.WithError(err).Fatal("webhook dispatcher start failed")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log, "/ping", "/metrics"))

	routes.RegisterRoutes(r, routes.Deps{
		Auth:           handlers.NewAuthHandler(authSvc),
		Session:        handlers.NewSessionHandler(sessionSvc),
		User:           handlers.NewUserHandler(userSvc, sessionSvc),
		Resume:         resumeHandler,
		JWTSecret:      cfg.JWTSecret,
		CallbackSecret: cfg.CallbackSecret,
		Metrics:        reg,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
}
