package search

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/pipeline"
)

type reply struct {
	docs []domain.Document
	meta map[string]any
	err  error
}

// scriptedRepo returns its replies in order and repeats the last one.
type scriptedRepo struct {
	mu      sync.Mutex
	replies []reply
	calls   []call
}

type call struct {
	index      string
	searchType string
	body       query.Body
	ctxErr     error
}

func (r *scriptedRepo) Search(
	ctx context.Context, index, searchType string, body query.Body,
) ([]domain.Document, map[string]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{index: index, searchType: searchType, body: body, ctxErr: ctx.Err()})
	if len(r.replies) == 0 {
		return nil, nil, nil
	}
	i := min(len(r.calls)-1, len(r.replies)-1)
	rp := r.replies[i]
	return rp.docs, rp.meta, rp.err
}

func (r *scriptedRepo) attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type recordingObserver struct {
	attempts  []AttemptEvent
	summaries []SummaryEvent
}

func (o *recordingObserver) AttemptFinished(_ context.Context, ev AttemptEvent) {
	o.attempts = append(o.attempts, ev)
}

func (o *recordingObserver) RequestFinished(_ context.Context, ev SummaryEvent) {
	o.summaries = append(o.summaries, ev)
}

func timeoutErr() error {
	return &db.Error{Op: db.OpSearch, Status: http.StatusRequestTimeout, Err: errors.New("Timeout limit was reached")}
}

func otherErr() error {
	return &db.Error{Op: db.OpSearch, Status: http.StatusInternalServerError, Err: errors.New("connection reset")}
}

func docs(ids ...string) []domain.Document {
	out := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Document{ID: id, Source: map[string]string{"name": id}})
	}
	return out
}

func fixedRender(typ string) Renderer {
	return RenderFunc(func(_ pipeline.Params, _ *pipeline.Response) (query.Rendered, bool) {
		return query.Rendered{Body: query.Body{Query: "@name:(berlin)", Limit: 10}, Type: typ}, true
	})
}

func skipRender() Renderer {
	return RenderFunc(func(_ pipeline.Params, _ *pipeline.Response) (query.Rendered, bool) {
		return query.Rendered{}, false
	})
}

func newTestController(repo Repository, render Renderer, retries int) (*Controller, *recordingObserver) {
	obs := &recordingObserver{}
	c := New(repo, render, Config{IndexName: "places", RequestRetries: retries}).WithObserver(obs)
	return c, obs
}
