package spinrw

// ============================================================================
// Configuration
// ============================================================================

// Config holds the options applied by New and NewGroup.
type Config struct {
	// backoff selects the wait step run between failed acquire attempts.
	// The zero value is BackoffSpin.
	backoff Backoff
}

// WithBackoff selects the wait step a lock runs while it cannot be
// acquired. Every policy busy-waits; they differ only in what a single
// step costs the rest of the process.
//
// Usage:
//
//	// Pure spinning, never leaves the processor (default)
//	l := New(cfg)
//
//	// Spin while the runtime allows it, then back off with short sleeps
//	l := New(cfg, WithBackoff(BackoffAdaptive))
func WithBackoff(b Backoff) func(*Config) {
	return func(c *Config) {
		c.backoff = b
	}
}

func newConfig(opts []func(*Config)) Config {
	var cfg Config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
