// Package predictions enriches fixtures with a model-generated score guess.
package predictions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PablitoTheChicken/ForReal-Server/internal/domain/fixtures"
	"github.com/PablitoTheChicken/ForReal-Server/internal/logging"
	"github.com/PablitoTheChicken/ForReal-Server/internal/metrics"
)

const defaultTimeout = 10 * time.Second

var (
	// ErrInvalidPrediction is returned when the model output is not a score.
	ErrInvalidPrediction = errors.New("prediction does not match score pattern")
	// ErrPredictorDisabled is returned when no predictor is configured.
	ErrPredictorDisabled = errors.New("predictor disabled")

	scorePattern = regexp.MustCompile(`^\d{1,2}-\d{1,2}$`)
)

// Match is the free-text context handed to the model for one fixture.
type Match struct {
	FixtureID int64
	Home      string
	Away      string
	League    string
	Season    string
	Date      string
}

// Predictor produces a full-time score guess such as "2-1".
type Predictor interface {
	PredictScore(ctx context.Context, match Match) (string, error)
}

// Resolver fans out one prediction per fixture and waits for all of them.
// Fan-out is unbounded; queries return tens of fixtures, not thousands.
type Resolver struct {
	predictor Predictor
	logger    *slog.Logger
	recorder  *metrics.Recorder
	timeout   time.Duration
}

// NewResolver builds a Resolver. A nil predictor yields no predictions.
func NewResolver(predictor Predictor, logger *slog.Logger, recorder *metrics.Recorder, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Resolver{
		predictor: predictor,
		logger:    logger,
		recorder:  recorder,
		timeout:   timeout,
	}
}

// Key identifies the prediction for an event: the fixture id, or the folded
// "home vs away" pair when the upstream omitted the id.
func Key(ev fixtures.Event) string {
	if ev.Fixture.ID != 0 {
		return strconv.FormatInt(ev.Fixture.ID, 10)
	}
	return fixtures.FoldName(ev.Teams.Home.Name) + " vs " + fixtures.FoldName(ev.Teams.Away.Name)
}

// MatchFor builds the model context for an event.
func MatchFor(ev fixtures.Event) Match {
	league := ev.League.Name
	if league == "" && ev.League.ID != 0 {
		league = strconv.FormatInt(ev.League.ID, 10)
	}
	season := ""
	if ev.League.Season != nil {
		season = strconv.Itoa(*ev.League.Season)
	}
	return Match{
		FixtureID: ev.Fixture.ID,
		Home:      ev.Teams.Home.Name,
		Away:      ev.Teams.Away.Name,
		League:    league,
		Season:    season,
		Date:      ev.Fixture.Date,
	}
}

// ResolveAll requests a prediction for every event that names both teams.
// The result holds one entry per attempted event; failed items map to nil.
// It never fails as a whole.
func (r *Resolver) ResolveAll(ctx context.Context, events []fixtures.Event) map[string]*string {
	out := make(map[string]*string, len(events))
	logger := logging.FromContext(ctx, r.logger)

	if r.predictor == nil {
		logging.Warn(logger, "predictions requested without a predictor", logging.FieldCount, len(events))
		for _, ev := range events {
			if ev.Teams.Home.Name != "" && ev.Teams.Away.Name != "" {
				out[Key(ev)] = nil
			}
		}
		return out
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, ev := range events {
		if ev.Teams.Home.Name == "" || ev.Teams.Away.Name == "" {
			continue
		}
		key := Key(ev)
		match := MatchFor(ev)

		wg.Add(1)
		go func() {
			defer wg.Done()

			score, err := r.predict(ctx, match)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logging.Warn(logger, "prediction failed",
					slog.String(logging.FieldFixtureID, key),
					slog.String("home", match.Home),
					slog.String("away", match.Away),
					slog.Any("err", err),
				)
				if _, seen := out[key]; !seen {
					out[key] = nil
				}
				return
			}
			out[key] = &score
		}()
	}
	wg.Wait()

	return out
}

// Apply returns a copy of events with predictions merged in. Events without
// a prediction carry null.
func (r *Resolver) Apply(ctx context.Context, events []fixtures.Event) []fixtures.Event {
	predicted := r.ResolveAll(ctx, events)

	out := make([]fixtures.Event, len(events))
	for i, ev := range events {
		ev.PredictedScore = nil
		if score, ok := predicted[Key(ev)]; ok && score != nil {
			s := *score
			ev.PredictedScore = &s
		}
		out[i] = ev
	}
	return out
}

func (r *Resolver) predict(ctx context.Context, match Match) (string, error) {
	if r.predictor == nil {
		return "", ErrPredictorDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	score, err := r.predictor.PredictScore(ctx, match)
	if err == nil {
		score = strings.TrimSpace(score)
		if !scorePattern.MatchString(score) {
			err = fmt.Errorf("%w: %q", ErrInvalidPrediction, score)
		}
	}
	r.recorder.RecordPrediction(time.Since(start), err)
	if err != nil {
		return "", err
	}
	return score, nil
}
