package main

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/db"
)

type stubStats struct {
	stats *db.IndexStats
	err   error
}

func (s stubStats) Stats(context.Context, string) (*db.IndexStats, error) {
	return s.stats, s.err
}

func TestIndexPoller_Poll(t *testing.T) {
	m := newLoaderMetrics(prometheus.NewRegistry())
	p := &indexPoller{
		stats: stubStats{stats: &db.IndexStats{
			NumDocs:        1200,
			InvertedSizeMB: 2,
			GeoIndexSizeMB: 0.5,
			PercentIndexed: 0.75,
		}},
		metrics: m,
		index:   "places",
		logger:  zap.NewNop(),
	}

	p.poll(context.Background())

	if v := testutil.ToFloat64(m.indexDocs); v != 1200 {
		t.Errorf("index_docs_total = %v, want 1200", v)
	}
	if v := testutil.ToFloat64(m.indexSize.WithLabelValues("inverted")); v != 2*1024*1024 {
		t.Errorf("inverted size = %v", v)
	}
	if v := testutil.ToFloat64(m.indexSize.WithLabelValues("geo")); v != 512*1024 {
		t.Errorf("geo size = %v", v)
	}
	if v := testutil.ToFloat64(m.indexing); v != 0.75 {
		t.Errorf("percent indexed = %v", v)
	}
}

func TestIndexPoller_ErrorLeavesGauges(t *testing.T) {
	m := newLoaderMetrics(prometheus.NewRegistry())
	m.indexDocs.Set(5)
	p := &indexPoller{stats: stubStats{err: errors.New("down")}, metrics: m, logger: zap.NewNop()}

	p.poll(context.Background())

	if v := testutil.ToFloat64(m.indexDocs); v != 5 {
		t.Errorf("index_docs_total = %v, want 5", v)
	}
}
