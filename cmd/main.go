package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dailydiet/config"
	"dailydiet/controllers"
	"dailydiet/middlewares"
	"dailydiet/repositories"
	"dailydiet/routes"
	"dailydiet/services"
	"dailydiet/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	log, err := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.WithError(err).Fatal("invalid logger settings")
	}
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy, err := services.ParseConflictPolicy(cfg.SessionConflictPolicy)
	if err != nil {
		log.WithError(err).Fatal("invalid session conflict policy")
	}

	var (
		mealRepo    services.MealRepository
		sessionRepo services.SessionRepository
		ping        func(ctx context.Context) error
		db          *gorm.DB
	)
	if cfg.InMemory() {
		mem := repositories.NewMemory()
		mealRepo, sessionRepo = mem, mem
		log.Warn("DATABASE_URL not set, keeping meals in memory")
	} else {
		if err := config.Migrate(ctx, cfg.DatabaseURL, log); err != nil {
			log.WithError(err).Fatal("migrations failed")
		}
		db, err = config.OpenDB(cfg)
		if err != nil {
			log.WithError(err).Fatal("database unavailable")
		}
		mealRepo = repositories.NewMealRepository(db)
		sessionRepo = repositories.NewSessionRepository(db)
		ping = func(ctx context.Context) error { return repositories.Ping(ctx, db) }
	}

	sessions := services.NewSessionService(sessionRepo, policy)
	meals := services.NewMealService(mealRepo, sessions)

	var uploader services.ObjectUploader
	if cfg.ExportEnabled() {
		s3u, err := utils.NewS3Uploader(ctx, cfg.S3Region, cfg.S3Bucket, cfg.S3Endpoint, cfg.ExportPublicURL)
		if err != nil {
			log.WithError(err).Fatal("S3 uploader init failed")
		}
		uploader = s3u
		log.WithField("bucket", cfg.S3Bucket).Info("meal export enabled")
	}
	export := services.NewExportService(meals, uploader)

	metrics := middlewares.NewMetrics()
	var limiter *middlewares.RateLimiter
	if cfg.RateLimitEnabled() {
		limiter = middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	cookie := controllers.CookieSettings{
		Name:   cfg.SessionCookieName,
		MaxAge: int(cfg.SessionMaxAge / time.Second),
		Secure: cfg.SessionCookieSecure,
	}

	r := routes.SetupRouter(routes.Deps{
		Log:         log,
		Metrics:     metrics,
		RateLimiter: limiter,
		CookieName:  cfg.SessionCookieName,
		AdminSecret: cfg.AdminJWTSecret,
		Meals:       controllers.NewMealController(meals, export, cookie, metrics, log),
		Sessions:    controllers.NewSessionController(sessions, cookie, log),
		Health:      controllers.NewHealthController(ping, log),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("HTTP server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
