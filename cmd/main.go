package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strangerchat/backend/internal/api/handler"
	"strangerchat/backend/internal/chathub"
	"strangerchat/backend/internal/config"
	"strangerchat/backend/internal/models"
	"strangerchat/backend/internal/storage"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupDependencies connects the optional backing services. Either may be absent; the
// relay itself keeps all of its state in memory.
func setupDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*gorm.DB, *redis.Client, error) {
	var db *gorm.DB
	if cfg.DatabaseDSN != "" {
		var err error
		db, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("room ledger connected")
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, nil, err
		}
		logger.Info("presence store connected", "addr", cfg.RedisAddr)
	}
	return db, rdb, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file loaded", "error", err)
	}
	cfg := config.Load()
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Backing services
	db, rdb, err := setupDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect backing services", "error", err)
		os.Exit(1)
	}
	s := storage.NewStorageService(db, rdb)
	if err := s.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	if n, err := s.CloseStaleRooms(ctx, models.EndReasonRestart); err != nil {
		logger.Warn("failed to close stale rooms", "error", err)
	} else if n > 0 {
		logger.Info("closed rooms left open by a previous run", "count", n)
	}

	// 2. Chat hub and its lifecycle publisher
	hub := chathub.NewManagerService(cfg, logger)
	pubCtx, stopPublisher := context.WithCancel(context.Background())
	publisherDone := make(chan struct{})
	go func() {
		defer close(publisherDone)
		hub.Run(pubCtx, s)
	}()

	// 3. HTTP
	gin.SetMode(gin.ReleaseMode)
	h := handler.NewHandler(hub, s, cfg, logger)
	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        handler.NewRouter(h),
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info("chat relay listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	hub.Shutdown()
	stopPublisher()
	<-publisherDone

	if rdb != nil {
		rdb.Close()
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
