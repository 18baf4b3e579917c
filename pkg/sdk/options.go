package datasets

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/statwatch/datasets/internal/notify"
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

	registryDataset string
	ocrQueueKey     string
	cacheTTL        time.Duration
	strictNotify    bool

	smtp *notify.Config

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithAddrs configures the client to connect to a Redis cluster.
func WithAddrs(addrs []string, username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = addrs
		c.username = username
		c.password = password
	})
}

// WithRegistryDataset overrides the dataset that holds registrations.
// Defaults to "datasources".
func WithRegistryDataset(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.registryDataset = name
	})
}

// WithOCRQueueKey overrides the list key OCR tasks are pushed to.
// Defaults to "queue:ocr".
func WithOCRQueueKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.ocrQueueKey = key
	})
}

// WithCacheTTL sets how long opened dataset handles stay cached before
// their registration is re-read. Defaults to 120 minutes.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithSMTP enables author notification mail. Without it, NotifyAuthor
// silently discards messages.
func WithSMTP(host string, port int, username, password, from string) Option {
	return optionFunc(func(c *clientConfig) {
		c.smtp = &notify.Config{
			Host:     host,
			Port:     port,
			Username: username,
			Password: password,
			From:     from,
		}
	})
}

// WithStrictNotify makes NotifyAuthor return delivery errors instead of
// logging and swallowing them.
func WithStrictNotify() Option {
	return optionFunc(func(c *clientConfig) {
		c.strictNotify = true
	})
}

// WithLogger sets the logger for client operations. Defaults to a no-op
// logger.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = logger
	})
}

// WithMetrics registers client operation metrics on the given registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
