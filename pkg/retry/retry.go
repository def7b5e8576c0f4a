// Package retry runs an operation again with exponential backoff and jitter.
// The journal backend uses it while it waits for PostgreSQL and Redis to
// accept connections at startup. Gateway calls are never retried.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// marked carries a caller's verdict on an error through the loop.
type marked struct {
	err       error
	permanent bool
}

func (m *marked) Error() string { return m.err.Error() }
func (m *marked) Unwrap() error { return m.err }

func mark(err error, permanent bool) error {
	if err == nil {
		return nil
	}
	return &marked{err: err, permanent: permanent}
}

// Retryable asks the default policy to try again after err.
func Retryable(err error) error { return mark(err, false) }

// Permanent ends the loop with err whatever the policy says.
func Permanent(err error) error { return mark(err, true) }

func IsRetryable(err error) bool {
	var m *marked
	return errors.As(err, &m) && !m.permanent
}

func IsPermanent(err error) bool {
	var m *marked
	return errors.As(err, &m) && m.permanent
}

func strip(err error) error {
	if m, ok := err.(*marked); ok {
		return m.err
	}
	return err
}

// Config is the retry policy. MaxAttempts counts the first call.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	JitterFactor float64 // delays vary by ±factor

	// RetryIf replaces the default of retrying only Retryable errors.
	RetryIf func(error) bool
	OnRetry func(attempt int, err error, delay time.Duration)
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2,
		JitterFactor: 0.1,
	}
}

type Option func(*Config)

func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxAttempts = n
		}
	}
}

func WithInitialDelay(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.InitialDelay = d
		}
	}
}

func WithMaxDelay(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.MaxDelay = d
		}
	}
}

// WithMultiplier ignores values below 1.
func WithMultiplier(m float64) Option {
	return func(c *Config) {
		if m >= 1 {
			c.Multiplier = m
		}
	}
}

// WithJitter takes a factor in [0, 1].
func WithJitter(j float64) Option {
	return func(c *Config) {
		if j >= 0 && j <= 1 {
			c.JitterFactor = j
		}
	}
}

func WithRetryIf(fn func(error) bool) Option {
	return func(c *Config) { c.RetryIf = fn }
}

func WithOnRetry(fn func(attempt int, err error, delay time.Duration)) Option {
	return func(c *Config) { c.OnRetry = fn }
}

// Retrier applies one policy to any number of operations.
type Retrier struct {
	config Config
}

func New(opts ...Option) *Retrier {
	cfg := DefaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Retrier{config: cfg}
}

// Do calls op until it succeeds or the policy gives up. The returned error
// is the last one op produced, without Retryable/Permanent wrapping; if ctx
// ends before op ever ran, ctx.Err() is returned.
func (r *Retrier) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var last error
	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			if last == nil {
				return ctx.Err()
			}
			return strip(last)
		}

		last = op(ctx)
		if last == nil {
			return nil
		}
		if attempt >= r.config.MaxAttempts || IsPermanent(last) || !r.wantsRetry(last) {
			return strip(last)
		}

		wait := r.backoff(attempt)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, last, wait)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return strip(last)
		case <-t.C:
		}
	}
}

func (r *Retrier) wantsRetry(err error) bool {
	if r.config.RetryIf == nil {
		return IsRetryable(err)
	}
	return r.config.RetryIf(err)
}

func (r *Retrier) backoff(attempt int) time.Duration {
	base := float64(r.config.InitialDelay) * math.Pow(r.config.Multiplier, float64(attempt-1))
	base = math.Min(base, float64(r.config.MaxDelay))
	if j := r.config.JitterFactor; j > 0 {
		base *= 1 + j*(2*rand.Float64()-1)
	}
	return time.Duration(math.Max(base, 0))
}

// Do is shorthand for New(opts...).Do(ctx, op).
func Do(ctx context.Context, op func(ctx context.Context) error, opts ...Option) error {
	return New(opts...).Do(ctx, op)
}

// DoWithData is Do for operations that produce a value.
func DoWithData[T any](ctx context.Context, op func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	var out T
	err := New(opts...).Do(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err == nil {
			out = v
		}
		return err
	})
	return out, err
}

// ConnectRetrier retries every error with slow growth; for dialing stores
// at startup.
func ConnectRetrier(attempts int, onRetry func(attempt int, err error, delay time.Duration)) *Retrier {
	return New(
		WithMaxAttempts(attempts),
		WithInitialDelay(500*time.Millisecond),
		WithMaxDelay(10*time.Second),
		WithJitter(0.2),
		WithRetryIf(func(error) bool { return true }),
		WithOnRetry(onRetry),
	)
}
