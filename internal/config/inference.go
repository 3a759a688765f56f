package config

import "time"

const (
	envOpenAIKey        = "OPENAI_API_KEY"
	envOpenAIBaseURL    = "OPENAI_BASE_URL"
	envOpenAIModel      = "OPENAI_MODEL"
	envInferenceTimeout = "INFERENCE_TIMEOUT"

	defaultOpenAIBaseURL    = "https://api.openai.com/v1"
	defaultOpenAIModel      = "gpt-4o-mini"
	defaultInferenceTimeout = 10 * time.Second
)

// InferenceConfig controls the score prediction client.
type InferenceConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout Duration
}

// Enabled reports whether predictions can be requested.
func (c InferenceConfig) Enabled() bool {
	return c.APIKey != ""
}

func loadInference() InferenceConfig {
	return InferenceConfig{
		BaseURL: envOrDefault(envOpenAIBaseURL, defaultOpenAIBaseURL),
		APIKey:  envOrDefault(envOpenAIKey, ""),
		Model:   envOrDefault(envOpenAIModel, defaultOpenAIModel),
		Timeout: durationEnvOrDefault(envInferenceTimeout, defaultInferenceTimeout),
	}
}
