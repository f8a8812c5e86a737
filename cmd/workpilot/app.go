package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mmynk/workpilot/internal/config"
	"github.com/mmynk/workpilot/internal/export"
	"github.com/mmynk/workpilot/internal/ledger"
	"github.com/mmynk/workpilot/internal/metrics"
	"github.com/mmynk/workpilot/internal/period"
	"github.com/mmynk/workpilot/internal/reminder"
	"github.com/mmynk/workpilot/internal/render"
	"github.com/mmynk/workpilot/internal/roster"
	"github.com/mmynk/workpilot/internal/service"
	"github.com/mmynk/workpilot/internal/storage"
	"github.com/mmynk/workpilot/internal/storage/memory"
	"github.com/mmynk/workpilot/internal/storage/sqlite"
)

const memoryPath = ":memory:"

// app holds the services shared by the subcommands.
type app struct {
	store    storage.Store
	registry *prometheus.Registry
	location *time.Location
	renderer *render.Renderer
	reports  *service.ReportService
}

// newApp opens storage and builds the services. sender delivers reminders
// and may be nil for commands that never send.
func newApp(ctx context.Context, cfg *config.Config, sender reminder.Sender, logger *slog.Logger) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := openStore(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	logger.Info("Storage initialized", "database", cfg.Storage.Path)

	sink, err := newSink(ctx, cfg.Export)
	if err != nil {
		store.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	resolver := period.NewResolver(loc)
	renderer := render.New(loc)
	rs := roster.New(store, logger, m)
	l := ledger.New(store, resolver, logger)
	dispatcher := reminder.NewDispatcher(rs, l, sender, resolver, logger,
		reminder.WithMetrics(m),
		reminder.WithSendTimeout(cfg.Reminder.SendTimeout),
	)
	exporter := export.NewExporter(rs, l, renderer, sink, logger)

	return &app{
		store:    store,
		registry: registry,
		location: loc,
		renderer: renderer,
		reports:  service.NewReportService(rs, l, resolver, dispatcher, exporter, m, logger),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func openStore(path string) (storage.Store, error) {
	if path == memoryPath {
		return memory.New(), nil
	}
	store, err := sqlite.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return store, nil
}

func newSink(ctx context.Context, cfg config.Export) (export.Sink, error) {
	if cfg.S3.Bucket == "" {
		return export.NewFileSink(cfg.Dir), nil
	}
	sink, err := export.NewS3Sink(ctx, export.S3Config{
		Bucket:    cfg.S3.Bucket,
		Region:    cfg.S3.Region,
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Prefix:    cfg.S3.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize export sink: %w", err)
	}
	return sink, nil
}
