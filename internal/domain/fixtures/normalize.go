package fixtures

import (
	"fmt"
	"strings"
	"unicode"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var decoder = jsoniter.ConfigCompatibleWithStandardLibrary

// Short status codes of fixtures that have a result.
var finishedStatuses = map[string]struct{}{
	"FT":  {},
	"AET": {},
	"PEN": {},
	"AWD": {},
	"WO":  {},
}

// IsFinishedStatus reports whether a short status code denotes a result.
func IsFinishedStatus(short string) bool {
	_, ok := finishedStatuses[strings.ToUpper(strings.TrimSpace(short))]
	return ok
}

// DecodeEvent parses one raw upstream record and normalizes it. Missing
// fields decode to their zero value; only malformed JSON is an error.
func DecodeEvent(raw []byte) (Event, error) {
	var ev Event
	if err := decoder.Unmarshal(raw, &ev); err != nil {
		return Event{}, fmt.Errorf("decode fixture: %w", err)
	}
	return Normalize(ev), nil
}

// Normalize fills derived fields and canonicalizes names. It never fails and
// applying it twice yields the same event.
func Normalize(ev Event) Event {
	ev.Fixture.Status.Short = strings.ToUpper(strings.TrimSpace(ev.Fixture.Status.Short))
	ev.Fixture.Status.Long = strings.TrimSpace(ev.Fixture.Status.Long)
	ev.League.Name = cleanName(ev.League.Name)
	ev.League.Country = cleanName(ev.League.Country)
	ev.League.Round = strings.TrimSpace(ev.League.Round)
	ev.Teams.Home.Name = cleanName(ev.Teams.Home.Name)
	ev.Teams.Away.Name = cleanName(ev.Teams.Away.Name)

	ev.IsFinished = IsFinishedStatus(ev.Fixture.Status.Short)
	ev.FinalScore = SelectFinalScore(ev.Score, ev.Goals)

	if ev.IsFinished && ev.FinalScore != nil {
		deriveWinners(&ev.Teams, *ev.FinalScore)
	}
	return ev
}

// SelectFinalScore picks penalties, then extra time, then full time, then the
// running goal tally. It returns nil when none of them is present.
func SelectFinalScore(score Breakdown, goals Pair) *FinalScore {
	candidates := []struct {
		pair   Pair
		source ScoreSource
	}{
		{score.Penalty, SourcePenalty},
		{score.Extratime, SourceExtratime},
		{score.Fulltime, SourceFulltime},
		{goals, SourceGoals},
	}
	for _, c := range candidates {
		if c.pair.Present() {
			return &FinalScore{Home: *c.pair.Home, Away: *c.pair.Away, Source: c.source}
		}
	}
	return nil
}

// deriveWinners sets winner flags only when upstream left both unset.
func deriveWinners(teams *Teams, final FinalScore) {
	if teams.Home.Winner != nil || teams.Away.Winner != nil {
		return
	}
	if final.Home == final.Away {
		return
	}
	homeWon := final.Home > final.Away
	awayWon := !homeWon
	teams.Home.Winner = &homeWon
	teams.Away.Winner = &awayWon
}

// cleanName trims, collapses inner whitespace and applies NFC.
func cleanName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	return norm.NFC.String(name)
}

// FoldName lowercases and strips diacritics so that spelling variants of the
// same team compare equal.
func FoldName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, cleanName(name))
	if err != nil {
		folded = cleanName(name)
	}
	return strings.ToLower(folded)
}
