// Command docsearch-loader ingests the Foursquare OS Places dataset into the
// docsearch places index. It downloads parquet files from HuggingFace, converts
// rows to place hashes and writes them with a worker pool. Progress is kept in
// a cursor file so an interrupted load resumes where it stopped.
//
// Usage:
//
//	docsearch-loader --data-dir /data --max-rows 1000000 --workers 8
//
// Backend settings come from the same config/<ENV>.yaml as the API server.
// HF_TOKEN authorizes the gated dataset.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/config"
	dbRedis "github.com/kailas-cloud/docsearch/internal/db/redis"
	logpkg "github.com/kailas-cloud/docsearch/internal/logger"
	placerepo "github.com/kailas-cloud/docsearch/internal/repository/place"
	searchrepo "github.com/kailas-cloud/docsearch/internal/repository/search"
	"github.com/kailas-cloud/docsearch/internal/version"
)

type options struct {
	dataDir        string
	maxRows        int
	maxFiles       int
	workers        int
	batchSize      int
	metricsPort    string
	cursorInterval int
	reset          bool
	skipDownload   bool
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:          "docsearch-loader",
		Short:        "Load Foursquare OS Places into the docsearch index",
		Version:      version.Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env := config.GetEnv()
			cfg, err := config.Load(env)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			if err := run(cmd.Context(), cfg, opts, logger); err != nil {
				logger.Error("Load failed", zap.Error(err))
				return err
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.dataDir, "data-dir", "/data", "directory for parquet files and cursor")
	f.IntVar(&opts.maxRows, "max-rows", 1_000_000, "max rows to read (0=unlimited)")
	f.IntVar(&opts.maxFiles, "max-files", 2, "max parquet files to download (0=all)")
	f.IntVar(&opts.workers, "workers", 8, "number of parallel upsert workers")
	f.IntVar(&opts.batchSize, "batch-size", 100, "documents per batch upsert")
	f.StringVar(&opts.metricsPort, "metrics-port", "9090", "Prometheus metrics port")
	f.IntVar(&opts.cursorInterval, "cursor-interval", 10000, "save cursor every N rows")
	f.BoolVar(&opts.reset, "reset", false, "reset cursor and start from scratch")
	f.BoolVar(&opts.skipDownload, "skip-download", false, "use parquet files already in data-dir")
	return cmd
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, opts options, logger *zap.Logger) error {
	start := time.Now()

	reg := prometheus.NewRegistry()
	metrics := newLoaderMetrics(reg)
	metricsSrv := serveMetrics(opts.metricsPort, reg, logger)
	defer func() {
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutCancel()
		_ = metricsSrv.Shutdown(shutCtx)
	}()

	cursor, err := newCursorTracker(opts.dataDir, opts.cursorInterval, logger)
	if err != nil {
		return fmt.Errorf("cursor: %w", err)
	}
	if opts.reset {
		cursor.Reset()
		logger.Info("Cursor reset, starting from scratch")
	}

	if !opts.skipDownload {
		cursor.SetStage(stageDownload)
		dl := newDownloader(os.Getenv("HF_TOKEN"), opts.dataDir, metrics, logger)
		if _, err := dl.DownloadPlaces(ctx, opts.maxFiles); err != nil {
			return fmt.Errorf("download places: %w", err)
		}
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:          cfg.Database.Addrs,
		Username:       cfg.Database.Username,
		Password:       cfg.Database.Password,
		DB:             cfg.Database.DB,
		RequestTimeout: cfg.Database.RequestTimeout(),
	})
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	created, err := searchrepo.New(store, cfg.API.KeyPrefix).EnsureIndex(ctx, cfg.API.IndexName)
	if err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}
	logger.Info("Search index ready", zap.String("index", cfg.API.IndexName), zap.Bool("created", created))

	places := placerepo.New(store, cfg.API.KeyPrefix)

	(&indexPoller{
		stats:    places,
		metrics:  metrics,
		index:    cfg.API.IndexName,
		interval: 30 * time.Second,
		logger:   logger,
	}).Start(ctx)

	reader, err := newParquetReader(filepath.Join(opts.dataDir, "places"), logger)
	if err != nil {
		return fmt.Errorf("init parquet reader: %w", err)
	}

	cursor.SetStage(stagePlaces)
	ing := &ingester{
		writer:    places,
		workers:   opts.workers,
		batchSize: opts.batchSize,
		metrics:   metrics,
		cursor:    cursor,
		logger:    logger,
	}
	result, err := ing.Run(ctx, reader, opts.maxRows)
	if err != nil {
		return fmt.Errorf("ingest places: %w", err)
	}

	report(ctx, places, cfg.API.IndexName, result, start, logger)
	cursor.Done()
	return nil
}

func report(
	ctx context.Context,
	stats statsSource,
	index string,
	result ingestResult,
	start time.Time,
	logger *zap.Logger,
) {
	elapsed := time.Since(start)
	fields := []zap.Field{
		zap.Duration("elapsed", elapsed.Round(time.Second)),
		zap.Int64("processed", result.Processed),
		zap.Int64("failed", result.Failed),
		zap.Int64("skipped", result.Skipped),
		zap.Float64("rows_per_sec", float64(result.Processed)/result.Duration.Seconds()),
	}
	if st, err := stats.Stats(ctx, index); err == nil {
		fields = append(fields, zap.Int64("index_docs", st.NumDocs))
	}
	logger.Info("Load finished", fields...)
}
