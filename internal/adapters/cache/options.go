package cache

import "time"

type config struct {
	ttl        time.Duration
	maxEntries int
	name       string
}

// Option configures a Cache.
type Option func(*config)

// WithTTL sets the entry lifetime. 0 disables expiry.
func WithTTL(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.ttl = d
		}
	}
}

// WithMaxEntries bounds the cache. 0 or less means unbounded.
func WithMaxEntries(n int) Option {
	return func(c *config) {
		c.maxEntries = n
	}
}

// WithName labels the cache in metrics.
func WithName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.name = name
		}
	}
}
