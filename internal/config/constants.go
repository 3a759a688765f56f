package config

import "time"

const (
	envPort         = "PORT"
	envLogLevel     = "LOG_LEVEL"
	envLogFormat    = "LOG_FORMAT"
	envVersion      = "SERVICE_VERSION"
	envCORSOrigins  = "CORS_ALLOWED_ORIGINS"
	envMetricsPort  = "METRICS_PORT"
	envMetricsOn    = "METRICS_ENABLED"
	envOtelEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService  = "OTEL_SERVICE_NAME"
	envOtelInsecure = "OTEL_EXPORTER_OTLP_INSECURE"

	envUpstreamTimeout   = "UPSTREAM_TIMEOUT"
	envUpstreamRateLimit = "UPSTREAM_RATE_LIMIT"
	envUpstreamRateBurst = "UPSTREAM_RATE_BURST"
	envUpstreamRetries   = "UPSTREAM_RETRY_ATTEMPTS"

	envFixtureCacheTTL = "FIXTURE_CACHE_TTL"
	envScoreCacheTTL   = "SCORE_CACHE_TTL"
	envEntityCacheTTL  = "ENTITY_CACHE_TTL"
	envCacheMaxEntries = "CACHE_MAX_ENTRIES"
	envCacheSweep      = "CACHE_SWEEP_INTERVAL"

	defaultPort        = "4000"
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
	defaultCORSOrigin  = "*"
	defaultMetricsPort = "9090"

	// Upstream calls are bounded so one slow provider cannot pin a request.
	defaultUpstreamTimeout   = 8 * Duration(time.Second)
	defaultUpstreamRateLimit = 5.0
	defaultUpstreamRateBurst = 5
	defaultUpstreamRetries   = 3

	defaultFixtureCacheTTL = 5 * Duration(time.Minute)
	defaultScoreCacheTTL   = 1 * Duration(time.Minute)
	defaultEntityCacheTTL  = 5 * Duration(time.Minute)
	defaultCacheMaxEntries = 10000
	defaultCacheSweep      = 1 * Duration(time.Minute)
)
