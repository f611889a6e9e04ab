package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain/search/outcome"
	logpkg "github.com/kailas-cloud/docsearch/internal/logger"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// AttemptEvent describes one finished backend attempt.
type AttemptEvent struct {
	RequestID string
	Attempt   int
	QueryType string
	Kind      outcome.Kind
	Start     time.Time
	Duration  time.Duration
	Retrying  bool
	Err       error
}

// SummaryEvent describes one finished logical request.
type SummaryEvent struct {
	RequestID   string
	QueryType   string
	ResultCount int
	Attempts    int
	Terminal    Terminal
	Err         error
}

// Observers fans events out to several observers in order.
type Observers []Observer

// AttemptFinished implements Observer.
func (os Observers) AttemptFinished(ctx context.Context, ev AttemptEvent) {
	for _, o := range os {
		o.AttemptFinished(ctx, ev)
	}
}

// RequestFinished implements Observer.
func (os Observers) RequestFinished(ctx context.Context, ev SummaryEvent) {
	for _, o := range os {
		o.RequestFinished(ctx, ev)
	}
}

type nopObserver struct{}

func (nopObserver) AttemptFinished(context.Context, AttemptEvent) {}
func (nopObserver) RequestFinished(context.Context, SummaryEvent) {}

// LogObserver writes attempt and summary records through the request-scoped
// logger, falling back to base.
type LogObserver struct {
	base *zap.Logger
}

// NewLogObserver creates a LogObserver.
func NewLogObserver(base *zap.Logger) *LogObserver {
	if base == nil {
		base = zap.NewNop()
	}
	return &LogObserver{base: base}
}

// AttemptFinished implements Observer.
func (l *LogObserver) AttemptFinished(ctx context.Context, ev AttemptEvent) {
	log := logpkg.FromContextOr(ctx, l.base)
	fields := []zap.Field{
		zap.String("query_type", ev.QueryType),
		zap.Int("attempt", ev.Attempt),
		zap.String("outcome", ev.Kind.String()),
		zap.Time("start", ev.Start),
		zap.Duration("duration", ev.Duration),
		zap.Bool("retrying", ev.Retrying),
	}
	if ev.Err != nil {
		fields = append(fields, zap.Error(ev.Err))
	}

	switch ev.Kind {
	case outcome.NoError:
		log.Debug("search attempt finished", fields...)
	case outcome.Timeout:
		log.Warn("search attempt timed out", fields...)
	default:
		log.Error("search attempt failed", fields...)
	}
}

// RequestFinished implements Observer.
func (l *LogObserver) RequestFinished(ctx context.Context, ev SummaryEvent) {
	log := logpkg.FromContextOr(ctx, l.base)
	fields := []zap.Field{
		zap.String("query_type", ev.QueryType),
		zap.Int("result_count", ev.ResultCount),
		zap.Int("attempts", ev.Attempts),
		zap.String("terminal", ev.Terminal.String()),
	}
	if ev.Err != nil {
		fields = append(fields, zap.Error(ev.Err))
	}
	log.Info("search finished", fields...)
}

// MetricsObserver records attempts and requests in Prometheus.
type MetricsObserver struct{}

// NewMetricsObserver registers the search metrics and returns the observer.
func NewMetricsObserver() MetricsObserver {
	metrics.RegisterSearchMetrics()
	return MetricsObserver{}
}

// AttemptFinished implements Observer.
func (MetricsObserver) AttemptFinished(_ context.Context, ev AttemptEvent) {
	qt := queryTypeLabel(ev.QueryType)
	metrics.SearchAttemptsTotal.WithLabelValues(qt, ev.Kind.String()).Inc()
	metrics.SearchAttemptDuration.WithLabelValues(qt).Observe(ev.Duration.Seconds())
	if ev.Retrying {
		metrics.SearchRetriesTotal.WithLabelValues(qt).Inc()
	}
}

// RequestFinished implements Observer.
func (MetricsObserver) RequestFinished(_ context.Context, ev SummaryEvent) {
	qt := queryTypeLabel(ev.QueryType)
	metrics.SearchRequestsTotal.WithLabelValues(qt, ev.Terminal.String()).Inc()
	if ev.Terminal == Succeeded {
		metrics.SearchResultCount.WithLabelValues(qt).Observe(float64(ev.ResultCount))
	}
}

func queryTypeLabel(qt string) string {
	if qt == "" {
		return "none"
	}
	return qt
}
