package config

import (
	"strconv"
	"time"
)

// CacheConfig defines settings for the leaderboard response cache.
// When Enabled is false or no Redis client is configured, caching is
// disabled. Prefix namespaces the keys; MaxBodyBytes bounds what is stored.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* variables. Unparseable values fall back to
// the defaults.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:      getenv("CACHE_ENABLED", "true") == "true",
		TTL:          30 * time.Second,
		Prefix:       getenv("CACHE_PREFIX", "cache"),
		MaxBodyBytes: 1 << 20,
	}
	if d, err := time.ParseDuration(getenv("CACHE_TTL", "30s")); err == nil && d > 0 {
		cfg.TTL = d
	}
	if n, err := strconv.Atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576")); err == nil && n > 0 {
		cfg.MaxBodyBytes = n
	}
	return cfg
}
