package providers

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/PablitoTheChicken/ForReal-Server/internal/domain/fixtures"
	"github.com/PablitoTheChicken/ForReal-Server/internal/logging"
)

// NewLimiter returns a token bucket allowing rps calls per second. A
// non-positive rps disables limiting.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// rateLimitedProvider wraps a FixtureProvider and keeps outbound calls within
// the local quota. Calls block until a token is available or ctx ends.
type rateLimitedProvider struct {
	next    FixtureProvider
	limiter *rate.Limiter
	name    string
	logger  *slog.Logger
}

// NewRateLimitedProvider returns a FixtureProvider that waits on limiter before
// each upstream call.
func NewRateLimitedProvider(next FixtureProvider, limiter *rate.Limiter, name string, logger *slog.Logger) FixtureProvider {
	return &rateLimitedProvider{
		next:    next,
		limiter: limiter,
		name:    name,
		logger:  logger,
	}
}

func (p *rateLimitedProvider) FetchFixtures(ctx context.Context, date, tz string) (FixturePage, error) {
	if err := p.wait(ctx); err != nil {
		return FixturePage{}, err
	}
	logWithProvider(ctx, p.logger, slog.LevelDebug, p.name, "rate-limited provider fetch", logging.FieldDate, date)
	return p.next.FetchFixtures(ctx, date, tz)
}

func (p *rateLimitedProvider) FetchFixture(ctx context.Context, id string) (fixtures.Event, error) {
	if err := p.wait(ctx); err != nil {
		return fixtures.Event{}, err
	}
	logWithProvider(ctx, p.logger, slog.LevelDebug, p.name, "rate-limited provider fetch", logging.FieldFixtureID, id)
	return p.next.FetchFixture(ctx, id)
}

func (p *rateLimitedProvider) wait(ctx context.Context) error {
	if p == nil || p.next == nil {
		return ErrProviderUnavailable
	}
	if p.limiter == nil {
		return nil
	}
	if err := p.limiter.Wait(ctx); err != nil {
		logWithProvider(ctx, p.logger, slog.LevelWarn, p.name, "rate-limited fetch canceled", "err", err)
		return err
	}
	return nil
}
