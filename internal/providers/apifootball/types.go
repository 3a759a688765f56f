package apifootball

import "encoding/json"

// fixturesResponse is the API-Football envelope. Records are kept raw so one
// malformed fixture does not fail the whole page.
type fixturesResponse struct {
	Errors   json.RawMessage   `json:"errors"`
	Results  int               `json:"results"`
	Response []json.RawMessage `json:"response"`
}
