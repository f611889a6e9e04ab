package search

import (
	"context"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/pipeline"
)

// Repository executes one backend search call. It must not retry.
type Repository interface {
	Search(
		ctx context.Context, index, searchType string, body query.Body,
	) ([]domain.Document, map[string]any, error)
}

// Renderer turns cleaned parameters into a backend query. It reports false
// when there is nothing to run.
type Renderer interface {
	Render(clean pipeline.Params, resp *pipeline.Response) (query.Rendered, bool)
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(clean pipeline.Params, resp *pipeline.Response) (query.Rendered, bool)

// Render calls f.
func (f RenderFunc) Render(clean pipeline.Params, resp *pipeline.Response) (query.Rendered, bool) {
	return f(clean, resp)
}

// Observer receives structured diagnostics: one AttemptFinished per backend
// attempt and one RequestFinished per logical request.
type Observer interface {
	AttemptFinished(ctx context.Context, ev AttemptEvent)
	RequestFinished(ctx context.Context, ev SummaryEvent)
}
