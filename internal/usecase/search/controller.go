// Package search runs one logical search request against the backend,
// retrying backend timeouts, and merges the results into the request.
package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain/search/outcome"
	logpkg "github.com/kailas-cloud/docsearch/internal/logger"
	"github.com/kailas-cloud/docsearch/internal/pipeline"
)

// Debug trail keys.
const (
	debugBackendReq   = "backend_req"
	debugResultCount  = "backend_result_count"
	debugAttemptTimer = "backend_attempt"
)

// Terminal is how a logical request ended.
type Terminal int

const (
	// Skipped means no query was rendered (or execution was not wanted).
	Skipped Terminal = iota
	// Succeeded means an attempt returned without error.
	Succeeded
	// Failed means an attempt returned a non-retryable error.
	Failed
	// RetriesExhausted means every attempt timed out.
	RetriesExhausted
)

func (t Terminal) String() string {
	switch t {
	case Skipped:
		return "skipped"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case RetriesExhausted:
		return "retries_exhausted"
	default:
		return "unknown"
	}
}

// Report summarizes one Execute call.
type Report struct {
	Terminal    Terminal
	Attempts    int
	QueryType   string
	ResultCount int
	Err         error
}

// Config holds controller settings.
type Config struct {
	IndexName      string
	RequestRetries int
	RetryDelay     time.Duration
}

// Controller executes the rendered query of a request with bounded retries.
type Controller struct {
	exec          executor
	render        Renderer
	policy        RetryPolicy
	observer      Observer
	shouldExecute func(*pipeline.Request) bool
}

// New creates a controller.
func New(repo Repository, render Renderer, cfg Config) *Controller {
	return &Controller{
		exec: executor{
			repo:  repo,
			index: cfg.IndexName,
			now:   time.Now,
		},
		render:   render,
		policy:   NewRetryPolicy(cfg.RequestRetries, cfg.RetryDelay),
		observer: nopObserver{},
	}
}

// WithObserver sets the diagnostics sink.
func (c *Controller) WithObserver(o Observer) *Controller {
	if o != nil {
		c.observer = o
	}
	return c
}

// WithShouldExecute sets a predicate that can skip the controller for a request.
func (c *Controller) WithShouldExecute(fn func(*pipeline.Request) bool) *Controller {
	c.shouldExecute = fn
	return c
}

// Policy returns the controller's retry policy.
func (c *Controller) Policy() RetryPolicy { return c.policy }

// Execute runs the request to completion. It never returns early on caller
// cancellation: an abandoned request still finishes its attempts.
func (c *Controller) Execute(ctx context.Context, req *pipeline.Request) Report {
	ctx = context.WithoutCancel(ctx)

	if c.shouldExecute != nil && !c.shouldExecute(req) {
		return c.finish(ctx, req, Report{Terminal: Skipped})
	}

	c.logRequest(ctx, req)

	rendered, ok := c.render.Render(req.Clean, &req.Response)
	if !ok {
		return c.finish(ctx, req, Report{Terminal: Skipped})
	}

	req.Debug().Push(debugBackendReq, map[string]any{
		"index":      c.exec.index,
		"query":      rendered.Body.Query,
		"query_type": rendered.Type,
	})
	logpkg.FromContext(ctx).Debug("backend request",
		zap.String("index", c.exec.index),
		zap.String("query", rendered.Body.Query),
		zap.String("query_type", rendered.Type),
	)

	session := c.policy.Session()
	for {
		attempt := session.Begin()
		timerKey := fmt.Sprintf("%s_%d", debugAttemptTimer, attempt)
		started := req.Debug().BeginTimer(timerKey)

		o := c.exec.execute(ctx, attempt, rendered.Body)

		req.Debug().StopTimer(timerKey, started)
		retrying := session.ShouldRetry(o.Kind)
		c.observer.AttemptFinished(ctx, AttemptEvent{
			RequestID: req.ID,
			Attempt:   attempt,
			QueryType: rendered.Type,
			Kind:      o.Kind,
			Start:     o.Start,
			Duration:  o.Duration,
			Retrying:  retrying,
			Err:       o.Err,
		})

		if retrying {
			session.Wait(ctx)
			continue
		}

		count := merge(req, rendered, &o)
		report := Report{
			Attempts:    session.Attempts(),
			QueryType:   rendered.Type,
			ResultCount: count,
			Err:         o.Err,
		}
		switch o.Kind {
		case outcome.NoError:
			report.Terminal = Succeeded
			req.Debug().Push(debugResultCount, map[string]any{rendered.Type: count})
			if attempt > 1 {
				logpkg.FromContext(ctx).Info("search succeeded on retry",
					zap.Int("attempt", attempt),
					zap.String("query_type", rendered.Type),
				)
			}
		case outcome.Timeout:
			report.Terminal = RetriesExhausted
		default:
			report.Terminal = Failed
		}
		return c.finish(ctx, req, report)
	}
}

// Middleware wraps the controller as a pipeline stage. next is served exactly
// once, after Execute has finished.
func (c *Controller) Middleware(next pipeline.Handler) pipeline.Handler {
	return pipeline.HandlerFunc(func(ctx context.Context, req *pipeline.Request) {
		c.Execute(ctx, req)
		if next != nil {
			next.Serve(ctx, req)
		}
	})
}

func (c *Controller) finish(ctx context.Context, req *pipeline.Request, r Report) Report {
	c.observer.RequestFinished(ctx, SummaryEvent{
		RequestID:   req.ID,
		QueryType:   r.QueryType,
		ResultCount: r.ResultCount,
		Attempts:    r.Attempts,
		Terminal:    r.Terminal,
		Err:         r.Err,
	})
	return r
}

func (c *Controller) logRequest(ctx context.Context, req *pipeline.Request) {
	log := logpkg.FromContext(ctx)
	if req.DoNotTrack {
		keys := make([]string, 0, len(req.Clean))
		for k := range req.Clean {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		log.Info("[req]", zap.String("path", req.Path), zap.Strings("params", keys))
		return
	}
	log.Info("[req]", zap.String("path", req.Path), zap.Any("params", map[string]any(req.Clean)))
}
