package ratelimit

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/husaker/spotify-data-viz/internal/logger"
	"github.com/husaker/spotify-data-viz/internal/metrics"
)

// Config holds the retry and pacing tunables.
type Config struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// BaseDelay is the backoff unit for non-rate-limit failures.
	BaseDelay time.Duration

	// DefaultRetryWait is used when a 429 carries no Retry-After hint.
	DefaultRetryWait time.Duration

	// RequestDelay is the minimum spacing between independent calls.
	// Zero disables pacing.
	RequestDelay time.Duration
}

// DefaultConfig mirrors the settings defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:       3,
		BaseDelay:        time.Second,
		DefaultRetryWait: 60 * time.Second,
		RequestDelay:     100 * time.Millisecond,
	}
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Requester executes operations under the retry policy. It is safe for
// concurrent use.
type Requester struct {
	cfg     Config
	pacer   *rate.Limiter
	sleep   SleepFunc
	logger  logger.Logger
	metrics *metrics.Recorder
}

// Option configures a Requester.
type Option func(*Requester)

// WithSleep replaces the sleep function, mainly for tests.
func WithSleep(fn SleepFunc) Option {
	return func(r *Requester) { r.sleep = fn }
}

func WithLogger(l logger.Logger) Option {
	return func(r *Requester) { r.logger = l }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Requester) { r.metrics = m }
}

// New creates a Requester.
func New(cfg Config, opts ...Option) *Requester {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	limit := rate.Inf
	if cfg.RequestDelay > 0 {
		limit = rate.Every(cfg.RequestDelay)
	}

	r := &Requester{
		cfg:    cfg,
		pacer:  rate.NewLimiter(limit, 1),
		sleep:  sleepContext,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the requester's configuration.
func (r *Requester) Config() Config {
	return r.cfg
}

// state is the per-call retry bookkeeping.
type state struct {
	attempts int
	lastWait time.Duration
}

// Execute runs op under the requester's policy and returns its result or a
// typed failure.
func Execute[T any](ctx context.Context, r *Requester, op func(context.Context) (T, error)) (T, error) {
	var zero T

	if err := r.pacer.Wait(ctx); err != nil {
		// the limiter refuses waits that would overrun the deadline; the
		// call still ends as a context error once the deadline passes
		<-ctx.Done()
		return zero, ctx.Err()
	}

	var st state
	for {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		if IsPermanent(err) {
			return zero, err
		}

		var wait time.Duration
		var limited *RateLimitedError
		if errors.As(err, &limited) {
			r.metrics.RateLimited()
			wait = r.cfg.DefaultRetryWait
			if limited.HasHint {
				wait = limited.RetryAfter
			}
			st.lastWait = wait
			if st.attempts >= r.cfg.MaxRetries {
				return zero, &RateLimitExceededError{Attempts: st.attempts + 1, LastWait: st.lastWait}
			}
			r.logger.Warn("rate limited, waiting %s before retry %d/%d", wait, st.attempts+1, r.cfg.MaxRetries)
		} else {
			if st.attempts >= r.cfg.MaxRetries {
				return zero, &TransientNetworkError{Attempts: st.attempts + 1, Err: err}
			}
			wait = backoff(r.cfg.BaseDelay, st.attempts)
			r.logger.Warn("request failed (%v), retry %d/%d in %s", err, st.attempts+1, r.cfg.MaxRetries, wait)
		}

		if err := r.sleep(ctx, wait); err != nil {
			return zero, err
		}
		st.attempts++
		r.metrics.Retry()
	}
}

// backoff returns base * 2^attempt.
func backoff(base time.Duration, attempt int) time.Duration {
	if attempt > 30 {
		attempt = 30
	}
	return base * time.Duration(1<<attempt)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
