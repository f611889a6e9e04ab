package place

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
)

// store is the consumer interface for place writes (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) []error
	IndexInfo(ctx context.Context, name string) (*db.IndexStats, error)
}

// Repo writes place documents as hashes under the index key prefix.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a place repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// UpsertBatch stores documents in one round-trip.
// The returned slice is aligned with docs; nil entries succeeded.
func (r *Repo) UpsertBatch(ctx context.Context, docs []domain.Document) []error {
	errs := make([]error, len(docs))
	items := make([]db.HashSetItem, 0, len(docs))
	pos := make([]int, 0, len(docs))

	for i := range docs {
		if err := validate(&docs[i]); err != nil {
			errs[i] = err
			continue
		}
		items = append(items, db.HashSetItem{
			Key:    r.keyPrefix + docs[i].ID,
			Fields: docs[i].Source,
		})
		pos = append(pos, i)
	}

	if len(items) == 0 {
		return errs
	}

	for j, err := range r.store.HSetMulti(ctx, items) {
		if err != nil {
			errs[pos[j]] = fmt.Errorf("upsert %s: %w", docs[pos[j]].ID, err)
		}
	}
	return errs
}

// Stats returns FT.INFO statistics for index.
func (r *Repo) Stats(ctx context.Context, index string) (*db.IndexStats, error) {
	stats, err := r.store.IndexInfo(ctx, index)
	if err != nil {
		return nil, fmt.Errorf("index info %s: %w", index, err)
	}
	return stats, nil
}

func validate(d *domain.Document) error {
	if d.ID == "" {
		return fmt.Errorf("%w: empty document id", domain.ErrInvalidParameter)
	}
	if d.Field(domain.FieldName) == "" {
		return fmt.Errorf("%w: document %s has no %s", domain.ErrInvalidParameter, d.ID, domain.FieldName)
	}
	return nil
}
