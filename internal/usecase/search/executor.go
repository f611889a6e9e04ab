package search

import (
	"context"
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain/search/outcome"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
)

// executor performs exactly one backend call per invocation.
type executor struct {
	repo  Repository
	index string
	now   func() time.Time
}

func (e *executor) execute(ctx context.Context, attempt int, body query.Body) outcome.Outcome {
	start := e.now()
	docs, meta, err := e.repo.Search(ctx, e.index, query.SearchTypeDFSQueryThenFetch, body)
	return outcome.Outcome{
		Kind:     Classify(err),
		Attempt:  attempt,
		Docs:     docs,
		Meta:     meta,
		Err:      err,
		Start:    start,
		Duration: e.now().Sub(start),
	}
}
