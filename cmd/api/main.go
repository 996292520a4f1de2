package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ekip-platform/ekip-api/config"
	"github.com/ekip-platform/ekip-api/internal/api/http/middleware"
	"github.com/ekip-platform/ekip-api/internal/api/http/routes"
	"github.com/ekip-platform/ekip-api/internal/bootstrap"
	"github.com/ekip-platform/ekip-api/internal/db"
	"github.com/ekip-platform/ekip-api/internal/jobs"
	"github.com/ekip-platform/ekip-api/internal/logging"
	notifrepo "github.com/ekip-platform/ekip-api/internal/notifications/repository"
	"github.com/ekip-platform/ekip-api/internal/storage/postgres"
	"github.com/ekip-platform/ekip-api/internal/validation"
)

const serviceName = "ekip-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}

	logging.SetBase(logging.New(cfg.App.LogLevel, os.Stdout))
	log := logging.Base()
	bootstrap.SetGinMode(cfg.App.Environment)

	if err := validation.Register(); err != nil {
		log.WithError(err).Fatal("register validators")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Open(ctx, db.Options{
		DSN:      cfg.Database.DSN,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		log.WithError(err).Fatal("open pgx pool")
	}
	defer pool.Close()

	sqlDB, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("open sql pool")
	}
	defer sqlDB.Close()

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis.URL)
	if err != nil {
		log.WithError(err).Warn("redis unavailable, running without cache and live notifications")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	store, err := bootstrap.OpenStore(ctx, cfg.Storage)
	if err != nil {
		log.WithError(err).Fatal("open storage")
	}

	pusher, err := bootstrap.OpenPusher(ctx, cfg.Firebase)
	if err != nil {
		log.WithError(err).Warn("firebase unavailable, push notifications disabled")
	}

	scheduler := jobs.NewScheduler(notifrepo.NewNotificationRepository(db.NewPoolRunner(pool)), store)
	if err := scheduler.Start(); err != nil {
		log.WithError(err).Fatal("start scheduler")
	}

	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go limiter.RunSweeper(ctx, time.Minute)

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		FrontendURL: cfg.Server.FrontendURL,
		Limiter:     limiter,
		V1: routes.V1Deps{
			Pool:     pool,
			SQL:      sqlDB,
			Redis:    rdb,
			Store:    store,
			Pusher:   pusher,
			Supabase: cfg.Supabase,
		},
	})

	// Request contexts end on shutdown so open notification streams return.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancelBase)

	go func() {
		log.WithFields(logrus.Fields{
			"port":    cfg.Server.Port,
			"env":     cfg.App.Environment,
			"version": cfg.App.Version,
		}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
	scheduler.Stop(shutdownCtx)
	log.Info("server stopped")
}
