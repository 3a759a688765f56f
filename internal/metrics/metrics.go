package metrics

import (
	"sync"
	"time"
)

type providerStats struct {
	calls           int
	errors          int
	rateLimitHits   int
	lastRetryAfter  time.Duration
	lastCallLatency time.Duration
}

type cacheStats struct {
	hits      int
	misses    int
	evictions int
}

type predictionStats struct {
	calls    int
	failures int
}

// Recorder captures in-memory counters for upstream calls, cache traffic and
// predictions, and forwards them to OpenTelemetry instruments when configured.
type Recorder struct {
	mu          sync.Mutex
	stats       map[string]*providerStats
	caches      map[string]*cacheStats
	predictions predictionStats
	otel        *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats:  make(map[string]*providerStats),
		caches: make(map[string]*cacheStats),
		otel:   otel,
	}
}

// RecordProviderAttempt increments counters for a provider call and stores the last observed latency.
func (r *Recorder) RecordProviderAttempt(provider string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStatsLocked(provider)
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordProviderAttempt(provider, duration, err)
	}
}

// RecordRateLimit tracks that a provider response hit a rate limit and stores the last Retry-After.
func (r *Recorder) RecordRateLimit(provider string, retryAfter time.Duration) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStatsLocked(provider)
	stats.rateLimitHits++
	if retryAfter > 0 {
		stats.lastRetryAfter = retryAfter
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordRateLimit(provider, retryAfter)
	}
}

// RecordCacheLookup counts a hit or miss for the named cache.
func (r *Recorder) RecordCacheLookup(cache string, hit bool) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureCacheLocked(cache)
	if hit {
		stats.hits++
	} else {
		stats.misses++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordCacheLookup(cache, hit)
	}
}

// RecordCacheEviction counts entries dropped from the named cache.
func (r *Recorder) RecordCacheEviction(cache string, count int) {
	if r == nil || count <= 0 {
		return
	}

	r.mu.Lock()
	r.ensureCacheLocked(cache).evictions += count
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordCacheEviction(cache, count)
	}
}

// RecordPrediction tracks one inference call.
func (r *Recorder) RecordPrediction(duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.predictions.calls++
	if err != nil {
		r.predictions.failures++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordPrediction(duration, err)
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// RecordSweep tracks cache sweeper cycles. Removed entries are reported by
// the caches themselves through RecordCacheEviction.
func (r *Recorder) RecordSweep(duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordSweep(duration)
}

// ProviderCalls returns the total attempts recorded for a provider.
func (r *Recorder) ProviderCalls(provider string) int {
	return r.Snapshot(provider).Calls
}

// ProviderErrors returns the total failed attempts recorded for a provider.
func (r *Recorder) ProviderErrors(provider string) int {
	return r.Snapshot(provider).Errors
}

// RateLimitHits returns the number of rate limit events seen for a provider.
func (r *Recorder) RateLimitHits(provider string) int {
	return r.Snapshot(provider).RateLimitHits
}

// LastCallLatency returns the last recorded latency for a provider call.
func (r *Recorder) LastCallLatency(provider string) time.Duration {
	return r.Snapshot(provider).LastCallLatency
}

// Snapshot returns a copy of the current stats for the provider.
type Snapshot struct {
	Calls           int
	Errors          int
	RateLimitHits   int
	LastRetryAfter  time.Duration
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(provider string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[provider]
	if !ok {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		RateLimitHits:   stats.rateLimitHits,
		LastRetryAfter:  stats.lastRetryAfter,
		LastCallLatency: stats.lastCallLatency,
	}
}

// CacheSnapshot is a copy of one cache's counters.
type CacheSnapshot struct {
	Hits      int
	Misses    int
	Evictions int
}

func (r *Recorder) CacheSnapshot(cache string) CacheSnapshot {
	if r == nil {
		return CacheSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.caches[cache]
	if !ok {
		return CacheSnapshot{}
	}
	return CacheSnapshot{Hits: stats.hits, Misses: stats.misses, Evictions: stats.evictions}
}

// PredictionCounts returns total and failed inference calls.
func (r *Recorder) PredictionCounts() (calls, failures int) {
	if r == nil {
		return 0, 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.predictions.calls, r.predictions.failures
}

func (r *Recorder) ensureStatsLocked(provider string) *providerStats {
	stats, ok := r.stats[provider]
	if !ok {
		stats = &providerStats{}
		r.stats[provider] = stats
	}
	return stats
}

func (r *Recorder) ensureCacheLocked(cache string) *cacheStats {
	stats, ok := r.caches[cache]
	if !ok {
		stats = &cacheStats{}
		r.caches[cache] = stats
	}
	return stats
}
