package apifootball

import "time"

// ProviderName labels this provider in logs and metrics.
const ProviderName = "api-football"

const (
	defaultBaseURL     = "https://v3.football.api-sports.io"
	defaultHTTPTimeout = 8 * time.Second
	apiKeyHeader       = "x-apisports-key"
	remainingHeader    = "x-ratelimit-requests-remaining"
	fixturesPath       = "/fixtures"
)
