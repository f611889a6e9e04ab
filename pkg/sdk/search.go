package docsearch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/pipeline"
	"github.com/kailas-cloud/docsearch/internal/render"
	searchrepo "github.com/kailas-cloud/docsearch/internal/repository/search"
	searchuc "github.com/kailas-cloud/docsearch/internal/usecase/search"
)

// Circle restricts results to a radius around a point.
type Circle struct {
	Lat, Lon float64
	RadiusKm float64 // 0 = 50 km
}

// SearchRequest is a full-text place search.
type SearchRequest struct {
	Text    string
	Size    int // 0 = default size
	Layers  []string
	Sources []string
	Country string // ISO 3166-1 alpha-2 or alpha-3
	Circle  *Circle
}

// Place is a single search hit.
type Place struct {
	ID         string
	Score      float64
	Properties map[string]string
}

// SearchResult holds the hits and execution details of one search.
type SearchResult struct {
	Places    []Place
	Total     int
	QueryType string
	Attempts  int
	Errors    []string
}

// Search runs a full-text search. Backend timeouts are retried; the returned
// error is non-nil when the final attempt failed.
func (c *Client) Search(ctx context.Context, req SearchRequest) (res *SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrInvalidParameter)
	}

	preq := pipeline.NewRequest("sdk:search", req.params())
	report := c.controller.Execute(ctx, preq)

	res = &SearchResult{
		Places:    make([]Place, 0, len(preq.Response.Data)),
		QueryType: report.QueryType,
		Attempts:  report.Attempts,
		Errors:    preq.Errors,
	}
	for _, d := range preq.Response.Data {
		res.Places = append(res.Places, Place{ID: d.ID, Score: d.Score, Properties: d.Source})
	}
	if total, ok := preq.Response.Meta[searchrepo.MetaTotal].(int); ok {
		res.Total = total
	}

	switch report.Terminal {
	case searchuc.Failed, searchuc.RetriesExhausted:
		return res, fmt.Errorf("docsearch: search (%s after %d attempts): %w",
			report.Terminal, report.Attempts, report.Err)
	case searchuc.Skipped:
		return res, fmt.Errorf("%w: text has no searchable terms", domain.ErrInvalidParameter)
	}
	return res, nil
}

func (r *SearchRequest) params() pipeline.Params {
	p := pipeline.Params{render.ParamText: r.Text}
	if r.Size > 0 {
		p[render.ParamSize] = r.Size
	}
	if len(r.Layers) > 0 {
		p[render.ParamLayers] = r.Layers
	}
	if len(r.Sources) > 0 {
		p[render.ParamSources] = r.Sources
	}
	if r.Country != "" {
		p[render.ParamCountry] = r.Country
	}
	if r.Circle != nil {
		p[render.ParamCircleLat] = r.Circle.Lat
		p[render.ParamCircleLon] = r.Circle.Lon
		if r.Circle.RadiusKm > 0 {
			p[render.ParamCircleRadius] = r.Circle.RadiusKm
		}
	}
	return p
}
