package docsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbRedis "github.com/kailas-cloud/docsearch/internal/db/redis"
	"github.com/kailas-cloud/docsearch/internal/render"
	searchrepo "github.com/kailas-cloud/docsearch/internal/repository/search"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/docsearch/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// store is the subset of the database store the client owns.
type store interface {
	Ping(ctx context.Context) error
	Close()
	RequestTimeout() time.Duration
}

// searchBackend is the repository the controller and health checks run on.
type searchBackend interface {
	searchuc.Repository
	healthuc.IndexChecker
	EnsureIndex(ctx context.Context, index string) (bool, error)
}

// Client is the docsearch SDK entry point.
type Client struct {
	store      store
	backend    searchBackend
	controller *searchuc.Controller
	healthSvc  healthUseCase
	index      string
	obs        *observer
}

// New creates a docsearch Client and connects to the database.
// The provided context is used for the readiness check and index bootstrap.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultClientConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("docsearch: database address required (use WithRedis)")
	}

	s, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:          cfg.addrs,
		Username:       cfg.username,
		Password:       cfg.password,
		RequestTimeout: cfg.requestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("docsearch: create redis store: %w", err)
	}

	if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		s.Close()
		return nil, fmt.Errorf("docsearch: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		s.Close()
		return nil, err
	}

	c := wireClient(s, searchrepo.New(s, cfg.keyPrefix), cfg, obs)

	if cfg.autoCreate {
		if _, err := c.EnsureIndex(ctx); err != nil {
			s.Close()
			return nil, err
		}
	}
	return c, nil
}

func wireClient(s store, backend searchBackend, cfg *clientConfig, obs *observer) *Client {
	controller := searchuc.New(
		backend,
		render.NewText(cfg.defaultSize, cfg.maxSize),
		searchuc.Config{
			IndexName:      cfg.index,
			RequestRetries: cfg.requestRetries,
			RetryDelay:     s.RequestTimeout(),
		},
	)
	if cfg.logger != nil {
		controller.WithObserver(searchuc.NewLogObserver(cfg.logger))
	}

	return &Client{
		store:      s,
		backend:    backend,
		controller: controller,
		healthSvc:  healthuc.New(s, backend, cfg.index),
		index:      cfg.index,
		obs:        obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EnsureIndex creates the search index if it does not exist and reports
// whether it was created.
func (c *Client) EnsureIndex(ctx context.Context) (created bool, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ensure_index", start, err) }()

	created, err = c.backend.EnsureIndex(ctx, c.index)
	if err != nil {
		return false, fmt.Errorf("docsearch: ensure index %s: %w", c.index, err)
	}
	return created, nil
}
