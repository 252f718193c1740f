// cmd/api/main.go

// @title Validation Proxy API
// @version 1.0
// @description Character sort utility and asynchronous proxy to an external validation service.
// @BasePath /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	_ "validation-proxy-service/docs"
	"validation-proxy-service/internal/config"
	"validation-proxy-service/internal/ratelimit"
	"validation-proxy-service/internal/repository/memory"
	"validation-proxy-service/internal/service"
	"validation-proxy-service/internal/telemetry"
	httptransport "validation-proxy-service/internal/transport/http"
	"validation-proxy-service/internal/validator"
	"validation-proxy-service/internal/worker"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{
		"http_addr":         cfg.HTTPAddr,
		"validator_url":     config.RedactURL(cfg.ValidatorURL),
		"validator_timeout": cfg.ValidatorTimeout,
		"workers":           cfg.Workers,
		"queue_size":        cfg.QueueSize,
		"job_ttl":           cfg.JobTTL,
		"job_max_entries":   cfg.JobMaxEntries,
		"redis_addr":        cfg.RedisAddr,
	}).Info("config loaded")

	// Admission limiter: shared through Redis when configured
	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis: %v", err)
		}
		limiter = ratelimit.NewTokenBucket(rdb, cfg.RateLimitCapacity, cfg.RateLimitRefill, time.Hour)
	} else {
		local := ratelimit.NewLocal(cfg.RateLimitCapacity, cfg.RateLimitRefill)
		go local.RunSweeper(ctx, cfg.EvictInterval, func(n int) {
			log.WithField("dropped", n).Debug("rate limiter sweep")
		})
		limiter = local
	}

	// DI
	registry := memory.NewJobRegistry(
		memory.WithTTL(cfg.JobTTL),
		memory.WithMaxEntries(cfg.JobMaxEntries),
	)
	client := validator.NewClient(cfg.ValidatorURL, cfg.ValidatorTimeout, cfg.ValidatorMaxBodyBytes)
	processor := worker.NewProcessor(registry, client, log)
	pool := worker.NewPool(processor, cfg.Workers, cfg.QueueSize, log)
	jobSvc := service.NewJobService(registry, pool, limiter)
	handler := httptransport.NewHandler(jobSvc, log)

	go registry.RunEvictor(ctx, cfg.EvictInterval, func(n int) {
		telemetry.JobsEvicted.Add(float64(n))
		log.WithField("evicted", n).Debug("registry sweep")
	})

	poolDone := make(chan struct{})
	go func() {
		_ = pool.Run(ctx)
		close(poolDone)
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httptransport.Routes(handler, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("http server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}

	select {
	case <-poolDone:
	case <-shutdownCtx.Done():
		log.Warn("worker pool did not stop in time")
	}
	log.Info("stopped")
}

func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
