package docsearch

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
)

// --- store mock ---

type mockStore struct {
	pingErr error
	closed  bool
}

func (m *mockStore) Ping(_ context.Context) error { return m.pingErr }
func (m *mockStore) Close() { m.closed = true }
func (m *mockStore) RequestTimeout() time.Duration { return 0 }

// --- searchBackend mock ---

type mockBackend struct {
	searchFn      func(ctx context.Context, index, searchType string, body query.Body) ([]domain.Document, map[string]any, error)
	existsFn      func(ctx context.Context, index string) (bool, error)
	ensureIndexFn func(ctx context.Context, index string) (bool, error)
	searches      int
}

func (m *mockBackend) Search(
	ctx context.Context, index, searchType string, body query.Body,
) ([]domain.Document, map[string]any, error) {
	m.searches++
	return m.searchFn(ctx, index, searchType, body)
}

func (m *mockBackend) IndexExists(ctx context.Context, index string) (bool, error) {
	return m.existsFn(ctx, index)
}

func (m *mockBackend) EnsureIndex(ctx context.Context, index string) (bool, error) {
	return m.ensureIndexFn(ctx, index)
}

// --- helpers ---

func testClient(s *mockStore, b *mockBackend, opts ...Option) *Client {
	cfg := defaultClientConfig()
	for _, o := range opts {
		o.apply(cfg)
	}
	return wireClient(s, b, cfg, nil)
}

func timeoutErr() error {
	return &db.Error{Op: db.OpSearch, Status: http.StatusRequestTimeout, Err: errors.New("Timeout limit was reached")}
}
