package config

// Config holds runtime configuration for the server.
type Config struct {
	Port        string
	LogLevel    string
	LogFormat   string
	Version     string
	CORSOrigins []string
	Upstream    UpstreamConfig
	APIFootball APIFootballConfig
	Inference   InferenceConfig
	Roblox      RobloxConfig
	Cache       CacheConfig
	Metrics     MetricsConfig
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Port:        envOrDefault(envPort, defaultPort),
		LogLevel:    envOrDefault(envLogLevel, defaultLogLevel),
		LogFormat:   envOrDefault(envLogFormat, defaultLogFormat),
		Version:     envOrDefault(envVersion, ""),
		CORSOrigins: listEnvOrDefault(envCORSOrigins, []string{defaultCORSOrigin}),
		Upstream:    loadUpstream(),
		APIFootball: loadAPIFootball(),
		Inference:   loadInference(),
		Roblox:      loadRoblox(),
		Cache:       loadCache(),
		Metrics:     loadMetrics(),
	}
}
