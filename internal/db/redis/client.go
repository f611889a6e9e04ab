package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docsearch/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// DefaultRequestTimeout bounds a single backend call when Config leaves it unset.
const DefaultRequestTimeout = 30 * time.Second

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs          []string
	Username       string
	Password       string
	DB             int
	RequestTimeout time.Duration
}

// Store implements db.Store via rueidis for Redis 8+ with the query engine loaded.
type Store struct {
	client         rueidis.Client
	requestTimeout time.Duration
}

// NewStore creates a Redis store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return newStore(client, cfg.RequestTimeout), nil
}

func newStore(client rueidis.Client, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Store{client: client, requestTimeout: timeout}
}

// RequestTimeout returns the per-call timeout applied to every command.
func (s *Store) RequestTimeout() time.Duration {
	return s.requestTimeout
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.b().Ping().Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// wrapErr attaches the command name and a status class to a backend error.
func wrapErr(op string, err error) error {
	return &db.Error{Op: op, Status: statusOf(err), Err: err}
}

func statusOf(err error) int {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return http.StatusRequestTimeout
	case isRedisErr(err, "timeout limit was reached"):
		return http.StatusRequestTimeout
	case isRedisErr(err, "unknown index name"), isRedisErr(err, "no such index"):
		return http.StatusNotFound
	case isRedisErr(err, "syntax error"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// isRedisErr checks if err is a Redis server error containing substr (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
