package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aevon-lab/project-vitals/internal/accesslog"
	"github.com/aevon-lab/project-vitals/internal/aggregation"
	coreagg "github.com/aevon-lab/project-vitals/internal/core/aggregation"
	corecfg "github.com/aevon-lab/project-vitals/internal/core/config"
	"github.com/aevon-lab/project-vitals/internal/core/storage"
	"github.com/aevon-lab/project-vitals/internal/core/storage/memory"
	"github.com/aevon-lab/project-vitals/internal/core/storage/postgres"
	"github.com/aevon-lab/project-vitals/internal/ingestion"
	"github.com/aevon-lab/project-vitals/internal/medical"
	"github.com/aevon-lab/project-vitals/internal/migrations"
	"github.com/aevon-lab/project-vitals/internal/projection"
	"github.com/aevon-lab/project-vitals/internal/server"
	"github.com/aevon-lab/project-vitals/internal/telemetry"
)

var version = "dev"

// stores groups the storage ports selected by database.driver.
type stores struct {
	rows          storage.RowSource
	medical       storage.MedicalResourceStore
	accessLog     storage.AccessLogStore
	recordWriter  storage.RecordWriter
	medicalWriter storage.MedicalResourceWriter
	db            *sql.DB // nil for the memory driver
	close         func() error
}

func main() {
	configPath := flag.String("config", "vitals.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config",
		"driver", cfg.Database.Driver,
		"priority_orders", len(cfg.Priorities.Orders()),
		"tracing", cfg.Tracing.Exporter,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Initialize Tracing
	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "vitals",
		ServiceVersion: version,
		Exporter:       cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       cfg.Tracing.Insecure,
	})
	if err != nil {
		slog.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Error("Tracing shutdown failed", "error", err)
		}
	}()

	// 3. Initialize Storage
	st, err := openStores(cfg.Database)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer st.close()

	// 4. Initialize Aggregation
	helper := aggregation.NewFitnessRecordAggregateHelper(
		coreagg.DefaultRegistry(),
		st.rows,
		cfg.Priorities,
		st.accessLog,
		aggregation.HelperOptions{
			WorkerCount:      cfg.Aggregation.WorkerCount,
			RecordAccessLogs: cfg.Aggregation.RecordAccessLogs,
			Request: aggregation.RequestOptions{
				LocalTimePadding: cfg.Aggregation.LocalTimePadding,
				MaxBuckets:       cfg.Aggregation.MaxBuckets,
			},
		},
	)

	slog.Info("Aggregation helper initialized",
		"worker_count", cfg.Aggregation.WorkerCount,
		"record_access_logs", cfg.Aggregation.RecordAccessLogs,
		"local_time_padding", cfg.Aggregation.LocalTimePadding,
	)

	// 5. Initialize Ingestion and Query Services
	ingestionSvc := ingestion.NewService(st.recordWriter, st.medicalWriter, cfg.Server.MaxBodySizeMB)
	projectionSvc := projection.NewService(helper, coreagg.DefaultRegistry())
	medicalSvc := medical.NewService(st.medical, medical.ServiceOptions{
		DefaultPageSize: cfg.Paging.DefaultPageSize,
		MaxPageSize:     cfg.Paging.MaxPageSize,
	})

	// 6. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), st.db, cfg.Server.Mode)
	ingestionSvc.RegisterRoutes(srv.Engine)
	projectionSvc.RegisterRoutes(srv.Engine)
	medicalSvc.RegisterRoutes(srv.Engine)

	// 7. Start Services
	if cfg.AccessLog.PruneEnabled {
		pruner := accesslog.NewPruner(st.accessLog, accesslog.PrunerOptions{
			Interval:  cfg.AccessLog.PruneInterval,
			Retention: cfg.AccessLog.Retention,
			BatchSize: cfg.AccessLog.PruneBatchSize,
		})
		go func() {
			if err := pruner.Start(ctx); err != nil {
				slog.Error("Access log pruner stopped with error", "error", err)
			}
		}()
	} else {
		slog.Info("Access log pruning disabled by config")
	}

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func openStores(cfg corecfg.DatabaseConfig) (*stores, error) {
	if cfg.Driver == "memory" {
		slog.Warn("Using in-memory storage; data is lost on exit")
		rows := memory.NewRowSource()
		medicalStore := memory.NewMedicalResourceStore()
		return &stores{
			rows:          rows,
			medical:       medicalStore,
			accessLog:     memory.NewAccessLogStore(),
			recordWriter:  rows,
			medicalWriter: medicalStore,
			close:         func() error { return nil },
		}, nil
	}

	db, err := postgres.Open(cfg.DSN, cfg.MaxOpenConns, cfg.MaxIdleConns)
	if err != nil {
		return nil, err
	}

	if err := migrations.RunMigrations(db, cfg.AutoMigrate); err != nil {
		db.Close()
		return nil, fmt.Errorf("run database migrations: %w", err)
	}

	adapter, err := postgres.NewAdapter(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	writer := postgres.NewWriterAdapter(adapter.DB())
	return &stores{
		rows:          adapter,
		medical:       adapter,
		accessLog:     postgres.NewAccessLogAdapter(adapter.DB()),
		recordWriter:  writer,
		medicalWriter: writer,
		db:            adapter.DB(),
		close:         adapter.Close,
	}, nil
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
