package config

const (
	envAPIFootballBaseURL = "API_FOOTBALL_BASE_URL"
	envAPIFootballKey     = "API_FOOTBALL_KEY"

	defaultAPIFootballBaseURL = "https://v3.football.api-sports.io"
)

// APIFootballConfig controls how we talk to the API-Football v3 API.
type APIFootballConfig struct {
	BaseURL string
	APIKey  string
}

// Configured reports whether a credential is present.
func (c APIFootballConfig) Configured() bool {
	return c.APIKey != ""
}

func loadAPIFootball() APIFootballConfig {
	return APIFootballConfig{
		BaseURL: envOrDefault(envAPIFootballBaseURL, defaultAPIFootballBaseURL),
		APIKey:  envOrDefault(envAPIFootballKey, ""),
	}
}
