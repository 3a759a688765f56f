package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/PablitoTheChicken/ForReal-Server/internal/domain/fixtures"
	"github.com/PablitoTheChicken/ForReal-Server/internal/logging"
	"github.com/PablitoTheChicken/ForReal-Server/internal/metrics"
)

const (
	defaultRetryAttempts = 3
	defaultBackoff       = 200 * time.Millisecond
	maxBackoff           = 2 * time.Second
	// A Retry-After longer than this ends the retry loop instead of stalling
	// the client request.
	maxRetryAfter = 5 * time.Second
)

// Retrier runs upstream calls with bounded exponential backoff. Only errors
// accepted by Retryable are retried.
type Retrier struct {
	name        string
	logger      *slog.Logger
	recorder    *metrics.Recorder
	maxAttempts int
	newBackOff  func() backoff.BackOff
}

// NewRetrier builds a Retrier. If maxAttempts/initial are <= 0, defaults are used.
func NewRetrier(name string, logger *slog.Logger, recorder *metrics.Recorder, maxAttempts int, initial time.Duration) *Retrier {
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	if initial <= 0 {
		initial = defaultBackoff
	}
	return &Retrier{
		name:        name,
		logger:      logger,
		recorder:    recorder,
		maxAttempts: maxAttempts,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = initial
			b.MaxInterval = maxBackoff
			b.MaxElapsedTime = 0
			return b
		},
	}
}

// Name returns the provider label used in logs and metrics.
func (r *Retrier) Name() string {
	return r.name
}

// Do calls op until it succeeds, fails permanently or attempts run out.
func Do[T any](ctx context.Context, r *Retrier, op func(context.Context) (T, error)) (T, error) {
	var lastErr error
	attempt := 0

	operation := func() (T, error) {
		attempt++
		start := time.Now()
		res, err := op(ctx)
		r.recorder.RecordProviderAttempt(r.name, time.Since(start), err)
		lastErr = err
		if err == nil {
			return res, nil
		}
		if rlErr, ok := AsRateLimitError(err); ok {
			r.recorder.RecordRateLimit(r.name, rlErr.RetryAfter)
		}
		if !Retryable(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	}

	policy := backoff.WithContext(&retryAfterBackOff{
		BackOff: backoff.WithMaxRetries(r.newBackOff(), uint64(r.maxAttempts-1)),
		lastErr: func() error { return lastErr },
	}, ctx)

	notify := func(err error, delay time.Duration) {
		logWithProvider(ctx, r.logger, slog.LevelWarn, r.name, "provider fetch retry",
			logging.FieldAttempt, attempt,
			"max_attempts", r.maxAttempts,
			"delay_ms", delay.Milliseconds(),
			"err", err,
		)
	}

	res, err := backoff.RetryNotifyWithData(operation, policy, notify)
	if err != nil {
		logWithProvider(ctx, r.logger, slog.LevelWarn, r.name, "provider fetch failed",
			"attempts", attempt,
			"err", err,
		)
	}
	return res, err
}

// retryAfterBackOff prefers an upstream Retry-After hint over the computed
// delay and stops when the hint is too long to wait for.
type retryAfterBackOff struct {
	backoff.BackOff
	lastErr func() error
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	if rlErr, ok := AsRateLimitError(b.lastErr()); ok && rlErr.RetryAfter > 0 {
		if rlErr.RetryAfter > maxRetryAfter {
			return backoff.Stop
		}
		return rlErr.RetryAfter
	}
	return next
}

// retryingProvider wraps a FixtureProvider with retry/backoff behavior.
type retryingProvider struct {
	inner   FixtureProvider
	retrier *Retrier
}

// NewRetryingProvider wraps the given provider with retries.
func NewRetryingProvider(inner FixtureProvider, retrier *Retrier) FixtureProvider {
	return &retryingProvider{inner: inner, retrier: retrier}
}

func (p *retryingProvider) FetchFixtures(ctx context.Context, date, tz string) (FixturePage, error) {
	return Do(ctx, p.retrier, func(ctx context.Context) (FixturePage, error) {
		return p.inner.FetchFixtures(ctx, date, tz)
	})
}

func (p *retryingProvider) FetchFixture(ctx context.Context, id string) (fixtures.Event, error) {
	return Do(ctx, p.retrier, func(ctx context.Context) (fixtures.Event, error) {
		return p.inner.FetchFixture(ctx, id)
	})
}
