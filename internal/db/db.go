package db

import (
	"context"
	"time"
)

// Store is the database facade used by the service.
type Store interface {
	Pinger
	IndexManager
	Searcher
	HashWriter
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
	RequestTimeout() time.Duration
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	IndexInfo(ctx context.Context, name string) (*IndexStats, error)
}

// Searcher executes a single search command. Implementations never retry.
type Searcher interface {
	Search(ctx context.Context, cmd *SearchCommand) (*SearchResult, error)
}

// HashWriter stores documents as hashes. The returned slice has one entry per
// item, nil on success.
type HashWriter interface {
	HSetMulti(ctx context.Context, items []HashSetItem) []error
}
