package fixtures

import (
	"sort"
	"strconv"
	"strings"

	domain "github.com/PablitoTheChicken/ForReal-Server/internal/domain/fixtures"
	"github.com/PablitoTheChicken/ForReal-Server/internal/timeutil"
)

// Query is the raw client request for a day of fixtures.
type Query struct {
	Date           string
	Leagues        []string
	Season         string
	Timezone       string
	WithPrediction bool
}

// filter is the canonical form of a Query. It doubles as the cache key, so
// list fields are sorted and deduplicated.
type filter struct {
	Date           string   `json:"date"`
	Leagues        []string `json:"leagues"`
	Season         *int     `json:"season"`
	Timezone       string   `json:"timezone"`
	WithPrediction bool     `json:"withPrediction"`
}

func (q Query) normalize() (filter, error) {
	date := strings.TrimSpace(q.Date)
	if date == "" {
		return filter{}, &ValidationError{Field: "date", Reason: "required (YYYY-MM-DD)"}
	}
	if _, err := timeutil.ParseDate(date); err != nil {
		return filter{}, &ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"}
	}

	tz, err := timeutil.CanonicalTimezone(q.Timezone)
	if err != nil {
		return filter{}, &ValidationError{Field: "timezone", Reason: err.Error()}
	}

	var season *int
	if s := strings.TrimSpace(q.Season); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return filter{}, &ValidationError{Field: "season", Reason: "expected a year"}
		}
		season = &n
	}

	return filter{
		Date:           date,
		Leagues:        canonicalLeagues(q.Leagues),
		Season:         season,
		Timezone:       tz,
		WithPrediction: q.WithPrediction,
	}, nil
}

// SplitList splits a comma separated parameter, dropping empty items.
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func canonicalLeagues(leagues []string) []string {
	seen := make(map[string]struct{}, len(leagues))
	out := make([]string, 0, len(leagues))
	for _, l := range leagues {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

func (f filter) parameters() domain.Parameters {
	leagues := make([]string, len(f.Leagues))
	copy(leagues, f.Leagues)
	return domain.Parameters{
		Date:           f.Date,
		Leagues:        leagues,
		Season:         f.Season,
		Timezone:       f.Timezone,
		WithPrediction: f.WithPrediction,
	}
}

// keep reports whether ev passes the league and season filters.
func (f filter) keep(ev domain.Event) bool {
	if len(f.Leagues) > 0 {
		id := strconv.FormatInt(ev.League.ID, 10)
		idx := sort.SearchStrings(f.Leagues, id)
		if idx == len(f.Leagues) || f.Leagues[idx] != id {
			return false
		}
	}
	if f.Season != nil {
		if ev.League.Season == nil || *ev.League.Season != *f.Season {
			return false
		}
	}
	return true
}
