package fixtures

import "encoding/json"

// Status carries the upstream lifecycle state opaquely.
type Status struct {
	Long    string `json:"long"`
	Short   string `json:"short"`
	Elapsed *int   `json:"elapsed"`
}

// Venue is where the fixture is played.
type Venue struct {
	ID   *int64 `json:"id"`
	Name string `json:"name,omitempty"`
	City string `json:"city,omitempty"`
}

// Periods holds kickoff timestamps for each half.
type Periods struct {
	First  *int64 `json:"first"`
	Second *int64 `json:"second"`
}

// Fixture is the scheduling block of an event.
type Fixture struct {
	ID        int64   `json:"id"`
	Referee   *string `json:"referee"`
	Timezone  string  `json:"timezone"`
	Date      string  `json:"date"`
	Timestamp int64   `json:"timestamp"`
	Periods   Periods `json:"periods"`
	Venue     Venue   `json:"venue"`
	Status    Status  `json:"status"`
}

// League identifies the competition and season.
type League struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Logo    string `json:"logo,omitempty"`
	Flag    string `json:"flag,omitempty"`
	Season  *int   `json:"season"`
	Round   string `json:"round"`
}

// Team is one side of a fixture. Winner stays nil until a result exists.
type Team struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Logo   string `json:"logo,omitempty"`
	Winner *bool  `json:"winner"`
}

// Teams pairs the home and away sides.
type Teams struct {
	Home Team `json:"home"`
	Away Team `json:"away"`
}

// Pair is a home/away tally where either side may be unknown.
type Pair struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

// Present reports whether both sides are known.
func (p Pair) Present() bool {
	return p.Home != nil && p.Away != nil
}

// Breakdown is the per-period score as reported upstream.
type Breakdown struct {
	Halftime  Pair `json:"halftime"`
	Fulltime  Pair `json:"fulltime"`
	Extratime Pair `json:"extratime"`
	Penalty   Pair `json:"penalty"`
}

// ScoreSource names the breakdown a final score was taken from.
type ScoreSource string

const (
	SourcePenalty   ScoreSource = "penalty"
	SourceExtratime ScoreSource = "extratime"
	SourceFulltime  ScoreSource = "fulltime"
	SourceGoals     ScoreSource = "goals"
)

// FinalScore is the single authoritative result derived from the breakdown.
type FinalScore struct {
	Home   int         `json:"home"`
	Away   int         `json:"away"`
	Source ScoreSource `json:"source"`
}

// Event is the canonical fixture shape served to clients.
type Event struct {
	Fixture        Fixture     `json:"fixture"`
	League         League      `json:"league"`
	Teams          Teams       `json:"teams"`
	Goals          Pair        `json:"goals"`
	Score          Breakdown   `json:"score"`
	FinalScore     *FinalScore `json:"finalScore"`
	IsFinished     bool        `json:"isFinished"`
	PredictedScore *string     `json:"gptPredictedScore"`
}

// Paging mirrors the upstream paging block.
type Paging struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Parameters echoes the filters a response was built for.
type Parameters struct {
	Date           string   `json:"date"`
	Leagues        []string `json:"leagues"`
	Season         *int     `json:"season"`
	Timezone       string   `json:"timezone"`
	WithPrediction bool     `json:"withPrediction"`
}

// Envelope is the payload returned by /football/fixtures.
type Envelope struct {
	Get        string          `json:"get"`
	Parameters Parameters      `json:"parameters"`
	Errors     json.RawMessage `json:"errors"`
	Results    int             `json:"results"`
	Paging     Paging          `json:"paging"`
	Response   []Event         `json:"response"`
}

var emptyErrors = json.RawMessage("[]")

// NewEnvelope builds a single-page envelope. Nil events and errors are
// replaced with empty JSON arrays.
func NewEnvelope(params Parameters, upstreamErrors json.RawMessage, events []Event) Envelope {
	if events == nil {
		events = []Event{}
	}
	if len(upstreamErrors) == 0 || string(upstreamErrors) == "null" {
		upstreamErrors = emptyErrors
	}
	if params.Leagues == nil {
		params.Leagues = []string{}
	}
	return Envelope{
		Get:        "fixtures",
		Parameters: params,
		Errors:     upstreamErrors,
		Results:    len(events),
		Paging:     Paging{Current: 1, Total: 1},
		Response:   events,
	}
}
