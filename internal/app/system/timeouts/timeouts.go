// Package timeouts holds the timeout values used with context.WithTimeout
// for database work in handlers and in the provisioner.
//
// Values start at the defaults below and can be overridden once at startup
// with Configure or ConfigureFromEnv.
//
//   - Ping: health checks
//   - Short: single-document reads and writes (sensor ingest, light lookups)
//   - Medium: list queries and schema checks
//   - Provision: a whole bootstrap run (user plus every collection)
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing      = 2 * time.Second
	DefaultShort     = 5 * time.Second
	DefaultMedium    = 10 * time.Second
	DefaultProvision = 60 * time.Second
)

var mu sync.RWMutex

var (
	ping      = DefaultPing
	short     = DefaultShort
	medium    = DefaultMedium
	provision = DefaultProvision
)

func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

func Provision() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return provision
}

// Config holds timeout values. Zero values are ignored.
type Config struct {
	Ping      time.Duration
	Short     time.Duration
	Medium    time.Duration
	Provision time.Duration
}

// Configure overrides the non-zero values in cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Medium > 0 {
		medium = cfg.Medium
	}
	if cfg.Provision > 0 {
		provision = cfg.Provision
	}
}

// Reset restores the defaults. Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	medium = DefaultMedium
	provision = DefaultProvision
}

// ConfigureFromEnv reads TIMEOUT_PING, TIMEOUT_SHORT, TIMEOUT_MEDIUM and
// TIMEOUT_PROVISION (Go duration strings). Unset, unparsable and
// non-positive values are skipped. Returns how many values were applied.
func ConfigureFromEnv() int {
	var cfg Config
	n := 0
	for _, e := range []struct {
		name string
		dst  *time.Duration
	}{
		{"TIMEOUT_PING", &cfg.Ping},
		{"TIMEOUT_SHORT", &cfg.Short},
		{"TIMEOUT_MEDIUM", &cfg.Medium},
		{"TIMEOUT_PROVISION", &cfg.Provision},
	} {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*e.dst = d
			n++
		}
	}
	Configure(cfg)
	return n
}

// Current returns the values in effect.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Short: short, Medium: medium, Provision: provision}
}

// WithTimeout is context.WithTimeout with a cancel func that logs a warning
// when the deadline was hit.
//
//	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Provision(), logger, "provision devices")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
