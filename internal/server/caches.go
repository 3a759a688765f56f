package server

import (
	"github.com/PablitoTheChicken/ForReal-Server/internal/cache"
	"github.com/PablitoTheChicken/ForReal-Server/internal/config"
	"github.com/PablitoTheChicken/ForReal-Server/internal/domain/entities"
	"github.com/PablitoTheChicken/ForReal-Server/internal/domain/fixtures"
	"github.com/PablitoTheChicken/ForReal-Server/internal/metrics"
	"github.com/PablitoTheChicken/ForReal-Server/internal/sweeper"
)

type caches struct {
	fixtures *cache.TTL[fixtures.Envelope]
	scores   *cache.TTL[fixtures.Event]
	games    *cache.TTL[entities.Game]
}

func buildCaches(cfg config.CacheConfig, recorder *metrics.Recorder) caches {
	opts := []cache.Option{
		cache.WithMaxEntries(cfg.MaxEntries),
		cache.WithObserver(recorder),
	}
	return caches{
		fixtures: cache.New[fixtures.Envelope]("fixtures", cfg.FixtureTTL, opts...),
		scores:   cache.New[fixtures.Event]("scores", cfg.ScoreTTL, opts...),
		games:    cache.New[entities.Game]("games", cfg.EntityTTL, opts...),
	}
}

func (c caches) sweepables() []sweeper.Sweepable {
	return []sweeper.Sweepable{c.fixtures, c.scores, c.games}
}
