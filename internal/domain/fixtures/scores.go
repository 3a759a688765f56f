package fixtures

import "encoding/json"

// ScoreEntry is either a resolved event or a per-id failure.
type ScoreEntry struct {
	Event *Event
	Error string
}

// MarshalJSON renders the event itself, or {"error": "..."} on failure.
func (e ScoreEntry) MarshalJSON() ([]byte, error) {
	if e.Event != nil && e.Error == "" {
		return json.Marshal(e.Event)
	}
	msg := e.Error
	if msg == "" {
		msg = "not found"
	}
	return json.Marshal(struct {
		Error string `json:"error"`
	}{Error: msg})
}

// ScoresResponse is the payload returned by /football/scores.
type ScoresResponse struct {
	Results  int                   `json:"results"`
	Response map[string]ScoreEntry `json:"response"`
}

// NewScoresResponse builds a ScoresResponse payload.
func NewScoresResponse(entries map[string]ScoreEntry) ScoresResponse {
	if entries == nil {
		entries = map[string]ScoreEntry{}
	}
	return ScoresResponse{
		Results:  len(entries),
		Response: entries,
	}
}
