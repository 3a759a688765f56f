package config

// UpstreamConfig holds the hardening knobs shared by every outbound client.
type UpstreamConfig struct {
	Timeout       Duration
	RateLimit     float64
	RateBurst     int
	RetryAttempts int
}

func loadUpstream() UpstreamConfig {
	return UpstreamConfig{
		Timeout:       durationEnvOrDefault(envUpstreamTimeout, defaultUpstreamTimeout),
		RateLimit:     floatEnvOrDefault(envUpstreamRateLimit, defaultUpstreamRateLimit),
		RateBurst:     intEnvOrDefault(envUpstreamRateBurst, defaultUpstreamRateBurst),
		RetryAttempts: intEnvOrDefault(envUpstreamRetries, defaultUpstreamRetries),
	}
}
