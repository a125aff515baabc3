package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"audittrail/internal/payment"
	"audittrail/internal/payment/handler"
	"audittrail/internal/platform/config"
	"audittrail/internal/platform/httpserver"
	"audittrail/internal/platform/logger"
	"audittrail/internal/platform/metrics"
	"audittrail/pkg/audit"
	filesink "audittrail/pkg/audit/sink/file"
	streamsink "audittrail/pkg/audit/sink/stream"
	"audittrail/pkg/auditcontext"
	"audittrail/pkg/platform/middleware/metadata"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	m := metrics.New()

	sink, err := buildSink(cfg)
	if err != nil {
		return fmt.Errorf("build audit sink: %w", err)
	}

	auditor, err := audit.NewLogger(sink, audit.WithEnricher(auditcontext.Enrich))
	if err != nil {
		return fmt.Errorf("build audit logger: %w", err)
	}

	store, err := buildPaymentStore(cfg)
	if err != nil {
		return fmt.Errorf("build payment store: %w", err)
	}

	gateway := payment.NewMockGateway()

	svc, err := payment.NewService(log, auditor, gateway, store, m)
	if err != nil {
		return fmt.Errorf("build payment service: %w", err)
	}

	// Origin applies to the lifecycle events emitted outside any request.
	baseCtx := auditcontext.WithOrigin(context.Background(),
		cfg.Audit.Application, cfg.Audit.Component)

	router := chi.NewRouter()
	router.Use(metadata.Origin(cfg.Audit.Application, cfg.Audit.Component))
	handler.New(svc, gateway, log).Register(router)
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Server.Addr, router)

	log.Info("starting payment service",
		"addr", cfg.Server.Addr, "audit_sink", cfg.Audit.Sink)
	svc.Startup(baseCtx)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(baseCtx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	// Shutdown event goes out after the listener stops accepting and before
	// the sink closes.
	svc.Shutdown(ctx)
	return nil
}

func buildSink(cfg config.Config) (audit.Sink, error) {
	switch cfg.Audit.Sink {
	case "file":
		return filesink.New(filesink.Config{
			Directory:         cfg.Audit.File.Directory,
			Prefix:            cfg.Audit.File.Prefix,
			Extension:         cfg.Audit.File.Extension,
			Overwrite:         cfg.Audit.File.Overwrite,
			DisableAutoCreate: cfg.Audit.File.DisableAutoCreate,
			LockFile:          cfg.Audit.File.LockFile,
		})
	case "stream":
		return streamsink.New(streamsink.Config{
			Host:           cfg.Audit.Stream.Host,
			Port:           cfg.Audit.Stream.Port,
			ConnectTimeout: cfg.Audit.Stream.ConnectTimeout,
			SendBufferSize: cfg.Audit.Stream.SendBufferSize,
			CloseGrace:     cfg.Audit.Stream.CloseGrace,
		})
	default:
		return nil, fmt.Errorf("unknown audit sink %q", cfg.Audit.Sink)
	}
}

func buildPaymentStore(cfg config.Config) (payment.Store, error) {
	switch cfg.Payments.Store {
	case "memory":
		return payment.NewMemoryStore(cfg.Payments.TTL), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Payments.Redis.Addr,
			DB:   cfg.Payments.Redis.DB,
		})
		return payment.NewRedisStore(client, cfg.Payments.TTL)
	default:
		return nil, fmt.Errorf("unknown payment store %q", cfg.Payments.Store)
	}
}
