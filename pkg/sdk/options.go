package docsearch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	username string
	password string

	index          string
	keyPrefix      string
	autoCreate     bool
	requestRetries int
	requestTimeout time.Duration
	defaultSize    int
	maxSize        int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		index:       "places",
		keyPrefix:   "docsearch:place:",
		defaultSize: 10,
		maxSize:     40,
	}
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithUsername sets the ACL username.
func WithUsername(username string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
	})
}

// WithIndex sets the index name and the key prefix of its documents.
// Defaults: "places", "docsearch:place:".
func WithIndex(name, keyPrefix string) Option {
	return optionFunc(func(c *clientConfig) {
		if name != "" {
			c.index = name
		}
		if keyPrefix != "" {
			c.keyPrefix = keyPrefix
		}
	})
}

// WithAutoCreateIndex creates the index on New when it does not exist.
func WithAutoCreateIndex() Option {
	return optionFunc(func(c *clientConfig) {
		c.autoCreate = true
	})
}

// WithRequestRetries sets the number of attempts per search. Default: 3.
func WithRequestRetries(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.requestRetries = n
	})
}

// WithRequestTimeout bounds each backend call; it is also the delay between
// retries. Default: 30s.
func WithRequestTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.requestTimeout = d
	})
}

// WithSizes sets the default and maximum result counts. Defaults: 10, 40.
func WithSizes(defaultSize, maxSize int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultSize = defaultSize
		c.maxSize = maxSize
	})
}

// WithLogger enables structured logging for client operations and search
// attempts. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
