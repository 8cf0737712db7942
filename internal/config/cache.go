package config

import "time"

// CacheConfig defines settings for the gateway's response cache
// middleware. When Enabled is false or no Redis client is available,
// caching is disabled and requests pass straight through. TTL defines the
// lifetime of cache entries; Prefix namespaces the keys; MaxBodyBytes
// caps the size of responses worth caching.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig,
// using defaults when unset. Only GET responses are ever cached.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      getenv("CACHE_ENABLED", "true") == "true",
		TTL:          parseDur(getenv("CACHE_TTL", "5s")),
		Prefix:       getenv("CACHE_PREFIX", "ems:cache"),
		MaxBodyBytes: atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576")),
	}
}
