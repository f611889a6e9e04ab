package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/db"
)

const metricsNamespace = "docsearch_loader"

// loaderMetrics are the loader's Prometheus collectors.
type loaderMetrics struct {
	rowsProcessed  prometheus.Counter
	rowsFailed     prometheus.Counter
	rowsSkipped    *prometheus.CounterVec
	batchesTotal   prometheus.Counter
	batchDuration  prometheus.Histogram
	downloadBytes  prometheus.Counter
	cursorPosition prometheus.Gauge
	indexDocs      prometheus.Gauge
	indexSize      *prometheus.GaugeVec
	indexing       prometheus.Gauge
}

func newLoaderMetrics(reg prometheus.Registerer) *loaderMetrics {
	m := &loaderMetrics{
		rowsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rows_processed_total",
			Help:      "Total places successfully written",
		}),
		rowsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rows_failed_total",
			Help:      "Total places the backend rejected",
		}),
		rowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rows_skipped_total",
			Help:      "Total rows not indexable",
		}, []string{"reason"}),
		batchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "batches_total",
			Help:      "Total batches sent",
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "batch_duration_seconds",
			Help:      "Batch upsert duration",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		downloadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "download_bytes_total",
			Help:      "Total bytes downloaded from HuggingFace",
		}),
		cursorPosition: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "cursor_position",
			Help:      "Current cursor row offset",
		}),
		indexDocs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "index_docs_total",
			Help:      "Number of documents in the search index",
		}),
		indexSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "index_size_bytes",
			Help:      "Search index component sizes",
		}, []string{"component"}),
		indexing: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "index_percent_indexed",
			Help:      "Fraction of documents indexed (0..1)",
		}),
	}

	reg.MustRegister(
		m.rowsProcessed, m.rowsFailed, m.rowsSkipped,
		m.batchesTotal, m.batchDuration,
		m.downloadBytes, m.cursorPosition,
		m.indexDocs, m.indexSize, m.indexing,
	)
	return m
}

// serveMetrics starts the scrape endpoint for reg.
func serveMetrics(port string, reg prometheus.Gatherer, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
	return srv
}

// statsSource reads index statistics.
type statsSource interface {
	Stats(ctx context.Context, index string) (*db.IndexStats, error)
}

// indexPoller periodically exports FT.INFO statistics of the places index.
type indexPoller struct {
	stats    statsSource
	metrics  *loaderMetrics
	index    string
	interval time.Duration
	logger   *zap.Logger
}

// Start polls immediately, then every interval until ctx is done.
func (p *indexPoller) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.poll(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.poll(ctx)
			}
		}
	}()
}

func (p *indexPoller) poll(ctx context.Context) {
	st, err := p.stats.Stats(ctx, p.index)
	if err != nil {
		p.logger.Debug("Index poll failed", zap.String("index", p.index), zap.Error(err))
		return
	}

	const mb = 1024 * 1024
	p.metrics.indexDocs.Set(float64(st.NumDocs))
	p.metrics.indexSize.WithLabelValues("inverted").Set(st.InvertedSizeMB * mb)
	p.metrics.indexSize.WithLabelValues("doc_table").Set(st.DocTableSizeMB * mb)
	p.metrics.indexSize.WithLabelValues("geo").Set(st.GeoIndexSizeMB * mb)
	p.metrics.indexing.Set(st.PercentIndexed)
}
