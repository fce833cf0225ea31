package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskboard/backend/internal/api"
	"github.com/taskboard/backend/internal/auth"
	"github.com/taskboard/backend/internal/config"
	"github.com/taskboard/backend/internal/db"
	"github.com/taskboard/backend/internal/logger"
	"github.com/taskboard/backend/internal/metrics"
	"github.com/taskboard/backend/internal/middleware"
	"github.com/taskboard/backend/internal/repository/postgres"
	"github.com/taskboard/backend/internal/services"
	"github.com/taskboard/backend/internal/session"
	"github.com/taskboard/backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if os.Getenv("APP_MIGRATE") == "true" {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	metrics.Init()

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(4)
	defer wp.Stop()

	var sessStore session.Store
	if cfg.RedisAddr != "" {
		sessStore = session.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), cfg.SessionTTL)
		log.Info("sessions backed by redis", "addr", cfg.RedisAddr)
	} else {
		sessStore = session.NewMemoryStore(cfg.SessionTTL)
		log.Info("sessions backed by memory")
	}
	codec := auth.NewCookieCodec(cfg.SessionSecret, cfg.SessionTTL)
	sessions := middleware.NewSessions(sessStore, codec, cfg.SessionTTL, cfg.Env == "prod")

	userSvc := services.NewUserService(repos.Users)
	taskSvc := services.NewTaskService(repos.Tasks, repos.AuditLogs, wp)

	if err := userSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Error("admin seed", "err", err)
		os.Exit(1)
	}

	r := api.NewRouter(cfg, sessions, userSvc, taskSvc)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
