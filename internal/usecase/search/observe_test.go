package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/docsearch/internal/domain/search/outcome"
	logpkg "github.com/kailas-cloud/docsearch/internal/logger"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

func TestObservers_FanOut(t *testing.T) {
	a, b := &recordingObserver{}, &recordingObserver{}
	obs := Observers{a, b}

	obs.AttemptFinished(context.Background(), AttemptEvent{Attempt: 1})
	obs.RequestFinished(context.Background(), SummaryEvent{Attempts: 1})

	for i, o := range []*recordingObserver{a, b} {
		if len(o.attempts) != 1 || len(o.summaries) != 1 {
			t.Errorf("observer %d: attempts=%d summaries=%d, want 1 each", i, len(o.attempts), len(o.summaries))
		}
	}
}

func TestLogObserver_LevelsByKind(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	o := NewLogObserver(zap.New(core))
	ctx := context.Background()

	o.AttemptFinished(ctx, AttemptEvent{Attempt: 1, Kind: outcome.NoError, QueryType: "q"})
	o.AttemptFinished(ctx, AttemptEvent{Attempt: 1, Kind: outcome.Timeout, Retrying: true, Err: errors.New("t")})
	o.AttemptFinished(ctx, AttemptEvent{Attempt: 2, Kind: outcome.Other, Err: errors.New("x")})
	o.RequestFinished(ctx, SummaryEvent{QueryType: "q", Attempts: 2, Terminal: Failed})

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("expected 4 log entries, got %d", len(entries))
	}
	wantLevels := []zapcore.Level{zapcore.DebugLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, lvl := range wantLevels {
		if entries[i].Level != lvl {
			t.Errorf("entry %d level = %v, want %v", i, entries[i].Level, lvl)
		}
	}
	if entries[1].ContextMap()["retrying"] != true {
		t.Errorf("retrying field = %v", entries[1].ContextMap()["retrying"])
	}
	if entries[3].Message != "search finished" {
		t.Errorf("summary message = %q", entries[3].Message)
	}
	if entries[3].ContextMap()["terminal"] != "failed" {
		t.Errorf("terminal field = %v", entries[3].ContextMap()["terminal"])
	}
}

func TestLogObserver_PrefersRequestLogger(t *testing.T) {
	baseCore, baseLogs := observer.New(zapcore.DebugLevel)
	reqCore, reqLogs := observer.New(zapcore.DebugLevel)
	o := NewLogObserver(zap.New(baseCore))
	ctx := logpkg.ContextWithLogger(context.Background(), logpkg.ForRequest(zap.New(reqCore), "req-1"))

	o.RequestFinished(ctx, SummaryEvent{Terminal: Skipped})

	if baseLogs.Len() != 0 {
		t.Errorf("base logger got %d entries, want 0", baseLogs.Len())
	}
	if reqLogs.Len() != 1 {
		t.Fatalf("request logger got %d entries, want 1", reqLogs.Len())
	}
	if id := reqLogs.All()[0].ContextMap()["request_id"]; id != "req-1" {
		t.Errorf("request_id = %v", id)
	}
}

func TestMetricsObserver(t *testing.T) {
	o := NewMetricsObserver()
	ctx := context.Background()
	qt := "metrics_observer_test"

	o.AttemptFinished(ctx, AttemptEvent{QueryType: qt, Kind: outcome.Timeout, Retrying: true, Duration: time.Millisecond})
	o.AttemptFinished(ctx, AttemptEvent{QueryType: qt, Kind: outcome.NoError, Duration: time.Millisecond})
	o.RequestFinished(ctx, SummaryEvent{QueryType: qt, Terminal: Succeeded, ResultCount: 4})
	o.RequestFinished(ctx, SummaryEvent{Terminal: Skipped})

	checks := []struct {
		name string
		got  float64
	}{
		{"attempts timeout", testutil.ToFloat64(metrics.SearchAttemptsTotal.WithLabelValues(qt, "timeout"))},
		{"attempts ok", testutil.ToFloat64(metrics.SearchAttemptsTotal.WithLabelValues(qt, "ok"))},
		{"retries", testutil.ToFloat64(metrics.SearchRetriesTotal.WithLabelValues(qt))},
		{"requests succeeded", testutil.ToFloat64(metrics.SearchRequestsTotal.WithLabelValues(qt, "succeeded"))},
	}
	for _, c := range checks {
		if c.got != 1 {
			t.Errorf("%s = %v, want 1", c.name, c.got)
		}
	}
	if got := testutil.ToFloat64(metrics.SearchRequestsTotal.WithLabelValues("none", "skipped")); got < 1 {
		t.Errorf("skipped requests = %v, want >= 1", got)
	}
}

func TestTerminal_String(t *testing.T) {
	tests := []struct {
		term Terminal
		want string
	}{
		{Skipped, "skipped"},
		{Succeeded, "succeeded"},
		{Failed, "failed"},
		{RetriesExhausted, "retries_exhausted"},
		{Terminal(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.term.String(); got != tt.want {
			t.Errorf("Terminal(%d).String() = %q, want %q", int(tt.term), got, tt.want)
		}
	}
}
