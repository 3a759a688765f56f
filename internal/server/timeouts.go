package server

import (
	"time"

	"github.com/PablitoTheChicken/ForReal-Server/internal/config"
)

const (
	readTimeout       = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
	minWriteTimeout   = 30 * time.Second
	idleTimeout       = 60 * time.Second

	// retryDelayCeiling bounds one wait between upstream attempts: the
	// largest Retry-After hint the retrier honors.
	retryDelayCeiling = 5 * time.Second
	writeSlack        = 5 * time.Second

	fallbackUpstreamTimeout  = 8 * time.Second
	fallbackRetryAttempts    = 3
	fallbackInferenceTimeout = 10 * time.Second
)

// shutdownTimeout remains a var for tests to override.
var shutdownTimeout = 10 * time.Second

// writeTimeoutFor covers the slowest fixtures request: every upstream attempt
// timing out with the longest wait between them, then a full enrichment pass.
func writeTimeoutFor(cfg config.Config) time.Duration {
	upstream := cfg.Upstream.Timeout
	if upstream <= 0 {
		upstream = fallbackUpstreamTimeout
	}
	attempts := cfg.Upstream.RetryAttempts
	if attempts <= 0 {
		attempts = fallbackRetryAttempts
	}
	inference := cfg.Inference.Timeout
	if inference <= 0 {
		inference = fallbackInferenceTimeout
	}

	budget := time.Duration(attempts)*upstream +
		time.Duration(attempts-1)*retryDelayCeiling +
		inference + writeSlack
	if budget < minWriteTimeout {
		return minWriteTimeout
	}
	return budget
}
