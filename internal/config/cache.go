package config

// CacheConfig sets per-cache TTLs and eviction bounds.
type CacheConfig struct {
	FixtureTTL    Duration
	ScoreTTL      Duration
	EntityTTL     Duration
	MaxEntries    int
	SweepInterval Duration
}

func loadCache() CacheConfig {
	return CacheConfig{
		FixtureTTL:    durationEnvOrDefault(envFixtureCacheTTL, defaultFixtureCacheTTL),
		ScoreTTL:      durationEnvOrDefault(envScoreCacheTTL, defaultScoreCacheTTL),
		EntityTTL:     durationEnvOrDefault(envEntityCacheTTL, defaultEntityCacheTTL),
		MaxEntries:    intEnvOrDefault(envCacheMaxEntries, defaultCacheMaxEntries),
		SweepInterval: durationEnvOrDefault(envCacheSweep, defaultCacheSweep),
	}
}
