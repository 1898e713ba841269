package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"

	"github.com/Jen9x/TapRide/internal/config"
	"github.com/Jen9x/TapRide/internal/database"
	"github.com/Jen9x/TapRide/internal/middleware"
	"github.com/Jen9x/TapRide/internal/routes"
	"github.com/Jen9x/TapRide/internal/services"
	"github.com/Jen9x/TapRide/internal/storage/postgres"
	"github.com/Jen9x/TapRide/pkg/logger"
	"github.com/Jen9x/TapRide/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)
	if err := run(cfg, log); err != nil {
		log.Error("server exited", logger.Error(err))
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}

// run wires the server and blocks until it shuts down.
func run(cfg config.Config, log logger.ILogger) error {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			AttachStacktrace: true,
		}); err != nil {
			log.Warning("sentry initialization failed", logger.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()
	store := postgres.New(db, log)

	hub := services.NewHub(log)
	go hub.Run(ctx)

	var publisher services.StatusPublisher = hub
	rateLimits := middleware.NewMemoryStore()

	// Redis is optional: without it status updates stay on this instance
	// and rate limits are per process.
	redisClient, err := services.InitRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Warning("redis unavailable, running single-instance", logger.Error(err))
	} else {
		defer redisClient.Close()
		redisPub := services.NewRedisStatusPublisher(redisClient)
		go redisPub.Relay(ctx, hub, log)
		publisher = services.FanoutPublisher{hub, redisPub}
		if shared, err := services.NewRateLimitStore(redisClient); err != nil {
			log.Warning("redis rate limits unavailable, limiting per process", logger.Error(err))
		} else {
			rateLimits = shared
		}
	}

	files, err := services.InitStorage(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}

	var messaging services.MessagingClient
	fcm, err := services.InitFirebase(ctx, cfg.FirebaseServiceAccountPath)
	if err != nil {
		log.Warning("firebase initialization failed, push disabled", logger.Error(err))
	} else if fcm != nil {
		messaging = fcm
	}
	push := services.NewPushService(messaging, store, log)

	alerters := []services.ReportAlerter{push}
	if cfg.AdminBotToken != "" && cfg.AdminChatID != 0 {
		tg, err := services.NewTelegramAlerter(cfg.AdminBotToken, cfg.AdminChatID)
		if err != nil {
			log.Warning("telegram alerts disabled", logger.Error(err))
		} else {
			alerters = append(alerters, tg)
		}
	}

	clock := services.SystemClock()
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	sms := utils.NewSMSClient(cfg.ATUsername, cfg.ATAPIKey, cfg.ATSenderID, log)

	uploadDir := ""
	if !files.IsUsingS3() {
		uploadDir = files.UploadDir()
	}

	router := routes.Setup(routes.Deps{
		Config:     cfg,
		Log:        log,
		Store:      store,
		Tokens:     tokens,
		RateLimits: rateLimits,
		Hub:        hub,
		Auth:       services.NewAuthService(store, sms, tokens, cfg, clock, log),
		Drivers:    services.NewDriverService(store, services.NewResolver(clock, cfg.DriverStaleThreshold), clock, publisher, files, log),
		Ratings:    services.NewRatingService(store, clock, cfg.ReviewWindow, push, log),
		Moderation: services.NewModerationService(store, clock, log, alerters...),
		Push:       push,
		UploadDir:  uploadDir,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
