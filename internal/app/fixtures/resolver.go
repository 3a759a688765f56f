// Package fixtures answers fixture and score queries through the aggregation
// cache, falling through to the upstream provider on a miss.
package fixtures

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/PablitoTheChicken/ForReal-Server/internal/cache"
	domain "github.com/PablitoTheChicken/ForReal-Server/internal/domain/fixtures"
	"github.com/PablitoTheChicken/ForReal-Server/internal/logging"
	"github.com/PablitoTheChicken/ForReal-Server/internal/providers"
)

const (
	defaultFixtureTTL = 5 * time.Minute
	defaultScoreTTL   = time.Minute

	fixturesKeyPrefix = "fixtures"
	scoreKeyPrefix    = "score"

	credentialSetting = "API_FOOTBALL_KEY"
)

// Enricher merges predictions into a set of events.
type Enricher interface {
	Apply(ctx context.Context, events []domain.Event) []domain.Event
}

// Config wires a Resolver. Nil caches are created with default TTLs.
type Config struct {
	Provider     providers.FixtureProvider
	Configured   bool
	FixtureCache *cache.TTL[domain.Envelope]
	ScoreCache   *cache.TTL[domain.Event]
	Enricher     Enricher
	Logger       *slog.Logger
}

// Resolver serves /football/fixtures and /football/scores.
type Resolver struct {
	provider   providers.FixtureProvider
	configured bool
	fixtures   *cache.TTL[domain.Envelope]
	scores     *cache.TTL[domain.Event]
	enricher   Enricher
	logger     *slog.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(cfg Config) *Resolver {
	fixtureCache := cfg.FixtureCache
	if fixtureCache == nil {
		fixtureCache = cache.New[domain.Envelope](fixturesKeyPrefix, defaultFixtureTTL)
	}
	scoreCache := cfg.ScoreCache
	if scoreCache == nil {
		scoreCache = cache.New[domain.Event](scoreKeyPrefix, defaultScoreTTL)
	}
	return &Resolver{
		provider:   cfg.Provider,
		configured: cfg.Configured && cfg.Provider != nil,
		fixtures:   fixtureCache,
		scores:     scoreCache,
		enricher:   cfg.Enricher,
		logger:     cfg.Logger,
	}
}

// Resolve returns the fixtures envelope for q. A cached envelope is returned
// as stored; concurrent misses may each call upstream and the last write wins.
func (r *Resolver) Resolve(ctx context.Context, q Query) (domain.Envelope, error) {
	f, err := q.normalize()
	if err != nil {
		return domain.Envelope{}, err
	}
	if !r.configured {
		return domain.Envelope{}, &ConfigurationError{Setting: credentialSetting}
	}

	logger := logging.FromContext(ctx, r.logger)
	key := cache.Key(fixturesKeyPrefix, f)
	if env, ok := r.fixtures.Get(key); ok {
		return env, nil
	}

	start := time.Now()
	page, err := r.provider.FetchFixtures(ctx, f.Date, f.Timezone)
	if err != nil {
		logging.Error(logger, "fixtures fetch failed", err,
			slog.String(logging.FieldDate, f.Date),
			slog.String("timezone", f.Timezone),
		)
		return domain.Envelope{}, err
	}

	events := make([]domain.Event, 0, len(page.Events))
	for _, ev := range page.Events {
		ev = domain.Normalize(ev)
		if f.keep(ev) {
			events = append(events, ev)
		}
	}

	if f.WithPrediction && len(events) > 0 {
		if r.enricher != nil {
			events = r.enricher.Apply(ctx, events)
		} else {
			logging.Warn(logger, "prediction requested but enrichment is disabled")
		}
	}

	env := domain.NewEnvelope(f.parameters(), page.Errors, events)
	r.fixtures.Put(key, env)

	logging.Info(logger, "fixtures resolved",
		slog.String(logging.FieldDate, f.Date),
		slog.Int(logging.FieldCount, env.Results),
		slog.Int("upstream_count", len(page.Events)),
		slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()),
	)
	return env, nil
}

// ResolveScores looks up each id concurrently through the score cache. It
// never fails as a whole; per-id failures become error entries and are not
// cached. Duplicate ids are resolved independently.
func (r *Resolver) ResolveScores(ctx context.Context, ids []string) domain.ScoresResponse {
	logger := logging.FromContext(ctx, r.logger)

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		entries = make(map[string]domain.ScoreEntry, len(ids))
	)
	for _, id := range ids {
		id := strings.TrimSpace(id)
		if id == "" {
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()

			entry := r.scoreEntry(ctx, logger, id)
			mu.Lock()
			entries[id] = entry
			mu.Unlock()
		}()
	}
	wg.Wait()

	return domain.NewScoresResponse(entries)
}

func (r *Resolver) scoreEntry(ctx context.Context, logger *slog.Logger, id string) domain.ScoreEntry {
	if !r.configured {
		return domain.ScoreEntry{Error: (&ConfigurationError{Setting: credentialSetting}).Error()}
	}

	key := scoreKeyPrefix + ":" + id
	if ev, ok := r.scores.Get(key); ok {
		return domain.ScoreEntry{Event: &ev}
	}

	ev, err := r.provider.FetchFixture(ctx, id)
	if err != nil {
		logging.Warn(logger, "score lookup failed",
			slog.String(logging.FieldFixtureID, id),
			slog.Any("err", err),
		)
		if errors.Is(err, providers.ErrNotFound) {
			return domain.ScoreEntry{Error: "fixture not found"}
		}
		return domain.ScoreEntry{Error: err.Error()}
	}

	ev = domain.Normalize(ev)
	r.scores.Put(key, ev)
	return domain.ScoreEntry{Event: &ev}
}
