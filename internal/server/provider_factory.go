package server

import (
	"log/slog"

	"github.com/PablitoTheChicken/ForReal-Server/internal/app/predictions"
	"github.com/PablitoTheChicken/ForReal-Server/internal/config"
	"github.com/PablitoTheChicken/ForReal-Server/internal/inference/openai"
	"github.com/PablitoTheChicken/ForReal-Server/internal/metrics"
	"github.com/PablitoTheChicken/ForReal-Server/internal/providers"
	"github.com/PablitoTheChicken/ForReal-Server/internal/providers/apifootball"
	"github.com/PablitoTheChicken/ForReal-Server/internal/providers/roblox"
)

// providerFactory assembles upstream clients with the shared wrappers
// (rate limit inside, retry outside).
type providerFactory struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newProviderFactory(cfg config.Config, logger *slog.Logger, metrics *metrics.Recorder) providerFactory {
	return providerFactory{cfg: cfg, logger: logger, metrics: metrics}
}

func (f providerFactory) fixtureProvider() providers.FixtureProvider {
	client := apifootball.NewClient(apifootball.Config{
		BaseURL: f.cfg.APIFootball.BaseURL,
		APIKey:  f.cfg.APIFootball.APIKey,
		Timeout: f.cfg.Upstream.Timeout,
		Logger:  f.logger,
	})
	return f.wrapFixtures(client, apifootball.ProviderName)
}

func (f providerFactory) wrapFixtures(base providers.FixtureProvider, name string) providers.FixtureProvider {
	limiter := providers.NewLimiter(f.cfg.Upstream.RateLimit, f.cfg.Upstream.RateBurst)
	limited := providers.NewRateLimitedProvider(base, limiter, name, f.logger)
	return providers.NewRetryingProvider(limited, f.retrier(name))
}

func (f providerFactory) entitySource() *roblox.Client {
	return roblox.NewClient(roblox.Config{
		GamesBaseURL:      f.cfg.Roblox.GamesBaseURL,
		ThumbnailsBaseURL: f.cfg.Roblox.ThumbnailsBaseURL,
		UsersBaseURL:      f.cfg.Roblox.UsersBaseURL,
		Timeout:           f.cfg.Upstream.Timeout,
		Retrier:           f.retrier(roblox.ProviderName),
		Limiter:           providers.NewLimiter(f.cfg.Upstream.RateLimit, f.cfg.Upstream.RateBurst),
		Logger:            f.logger,
	})
}

// predictor returns nil when no inference credential is configured.
func (f providerFactory) predictor() predictions.Predictor {
	if !f.cfg.Inference.Enabled() {
		return nil
	}
	return openai.NewClient(openai.Config{
		BaseURL: f.cfg.Inference.BaseURL,
		APIKey:  f.cfg.Inference.APIKey,
		Model:   f.cfg.Inference.Model,
		Timeout: f.cfg.Inference.Timeout,
	})
}

func (f providerFactory) retrier(name string) *providers.Retrier {
	return providers.NewRetrier(name, f.logger, f.metrics, f.cfg.Upstream.RetryAttempts, 0)
}
