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

	"route-traffic-api/config"
	"route-traffic-api/estimator"
	"route-traffic-api/handlers"
	"route-traffic-api/logger"
	"route-traffic-api/metrics"
	"route-traffic-api/models"
	"route-traffic-api/services"
	"route-traffic-api/traffic"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const redisAttempts = 3

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The model is loaded once; a missing artifact leaves the service up but unready.
	est := estimator.Load(cfg.Model.Path, log)
	if est.Ready() {
		metrics.ModelReady.Set(1)
	}
	service := traffic.NewService(est, log)

	db, err := openDatabase(cfg.Database)
	if err != nil {
		log.WithError(err).Warn("database unavailable, account routes disabled")
		db = nil
	}

	cache, err := services.NewCacheService(ctx, cfg.Redis, redisAttempts, log)
	if err != nil {
		log.WithError(err).Warn("redis unavailable, prediction cache and live stream disabled")
	}
	defer cache.Close()

	router := handlers.NewRouter(handlers.Dependencies{
		Config:  cfg,
		Service: service,
		Cache:   cache,
		DB:      db,
		Log:     log,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"addr":          server.Addr,
			"model_ready":   est.Ready(),
			"model_version": est.Version(),
		}).Info("route traffic api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

func openDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql db handle: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.SearchHistory{}, &models.Favorite{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
