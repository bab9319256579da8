package iosched

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Option is a functional option for configuring a Scheduler.
type Option func(*config)

type config struct {
	workerCount int
	execTimeout time.Duration
	limiter     *rate.Limiter
	logger      zerolog.Logger
	registerer  prometheus.Registerer
}

func defaultConfig() *config {
	return &config{
		workerCount: 1,
		logger:      zerolog.Nop(),
	}
}

// WithWorkerCount sets the number of worker goroutines Serve spawns.
// If not specified, defaults to a single worker, which preserves global
// dequeue order across streams.
func WithWorkerCount(count int) Option {
	return func(cfg *config) {
		if count > 0 {
			cfg.workerCount = count
		}
	}
}

// WithLogger sets the logger used for lifecycle events. The scheduler
// logs at debug level only; the default logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithMetrics registers the scheduler's collectors with the given
// registerer. Collectors are per-instance, so multiple schedulers can
// register against distinct registries without colliding.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(cfg *config) {
		cfg.registerer = reg
	}
}

// WithRateLimit caps op execution throughput across all workers.
// opsPerSecond is the sustained rate and burst the momentary excess.
// If not specified, no rate limiting is applied.
//
// Example:
//
//	WithRateLimit(100, 10) // 100 ops/sec with bursts of 10
func WithRateLimit(opsPerSecond float64, burst int) Option {
	return func(cfg *config) {
		if opsPerSecond > 0 && burst > 0 {
			cfg.limiter = rate.NewLimiter(rate.Limit(opsPerSecond), burst)
		}
	}
}

// WithExecTimeout bounds each Execute call with a context deadline.
// Ops are never timed out while queued, only while executing.
func WithExecTimeout(d time.Duration) Option {
	return func(cfg *config) {
		if d > 0 {
			cfg.execTimeout = d
		}
	}
}
