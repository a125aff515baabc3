package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"audittrail/internal/collector"
	"audittrail/internal/platform/config"
	"audittrail/internal/platform/logger"
	"audittrail/internal/platform/metrics"
	"audittrail/pkg/audit"
	memstore "audittrail/pkg/audit/store/memory"
	pgstore "audittrail/pkg/audit/store/postgres"
)

// main runs the audit collector: a TCP listener that ingests line-delimited
// JSON audit events from stream sinks into a store.
func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("collector exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	m := metrics.New()

	store, cleanup, err := buildStore(cfg)
	if err != nil {
		return fmt.Errorf("build event store: %w", err)
	}
	defer cleanup()

	srv := collector.New(cfg.Collector.Addr, store, log, m)
	if err := srv.Listen(); err != nil {
		return err
	}

	// Metrics live on a sidecar HTTP listener; the collector port speaks only
	// the line protocol.
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(cfg.Collector.MetricsAddr, mux); err != nil {
			log.Warn("metrics listener stopped", "error", err.Error())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("collector listening",
		"addr", srv.Addr().String(), "store", cfg.Collector.Store)
	return srv.Serve(ctx)
}

func buildStore(cfg config.Config) (audit.Store, func(), error) {
	switch cfg.Collector.Store {
	case "memory":
		return memstore.New(), func() {}, nil
	case "postgres":
		db, err := sql.Open("postgres", cfg.Collector.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		return pgstore.New(db), func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown event store %q", cfg.Collector.Store)
	}
}
