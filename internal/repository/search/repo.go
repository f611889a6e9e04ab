package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
)

// Meta keys produced by Search.
const (
	MetaScores = "scores"
	MetaTotal  = "total"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, cmd *db.SearchCommand) (*db.SearchResult, error)
	IndexExists(ctx context.Context, name string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a search repository. keyPrefix is stripped from backend keys
// to form document IDs.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// Search executes exactly one backend call and converts the hits to documents.
// Metadata is nil when the backend returned no hits.
func (r *Repo) Search(
	ctx context.Context, index, searchType string, body query.Body,
) ([]domain.Document, map[string]any, error) {
	sr, err := r.store.Search(ctx, &db.SearchCommand{
		Index:      index,
		SearchType: searchType,
		Body:       body,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("search %s: %w", index, err)
	}
	if sr == nil || len(sr.Entries) == 0 {
		return nil, nil, nil
	}

	docs := make([]domain.Document, 0, len(sr.Entries))
	scores := make([]float64, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		docs = append(docs, domain.Document{
			ID:     strings.TrimPrefix(entry.Key, r.keyPrefix),
			Score:  entry.Score,
			Source: entry.Fields,
		})
		scores = append(scores, entry.Score)
	}

	meta := map[string]any{
		MetaScores: scores,
		MetaTotal:  sr.Total,
	}
	return docs, meta, nil
}

// IndexExists proxies the index probe from the store.
func (r *Repo) IndexExists(ctx context.Context, index string) (bool, error) {
	ok, err := r.store.IndexExists(ctx, index)
	if err != nil {
		return false, fmt.Errorf("index exists %s: %w", index, err)
	}
	return ok, nil
}

// EnsureIndex creates the places index if it does not exist yet.
// It reports whether the index was created by this call.
func (r *Repo) EnsureIndex(ctx context.Context, index string) (bool, error) {
	exists, err := r.IndexExists(ctx, index)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	def, err := PlacesIndex(index, r.keyPrefix).Build()
	if err != nil {
		return false, fmt.Errorf("build index %s: %w", index, err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %w", index, err)
	}
	return true, nil
}
