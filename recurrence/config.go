package recurrence

import (
	"log/slog"
	"time"
)

// EngineConfig holds tuning options for the expansion engine.
type EngineConfig struct {
	// CacheEnabled turns on memoization of expansion results.
	CacheEnabled bool
	CacheConfig  CacheConfig

	// MaxOccurrences caps the number of slots produced per expansion.
	// Zero means unlimited; callers bound work via the window instead.
	MaxOccurrences int

	// Logger receives truncation warnings. Nil discards them.
	Logger *slog.Logger
}

// DefaultEngineConfig provides sensible defaults for production use.
var DefaultEngineConfig = EngineConfig{
	CacheEnabled:   true,
	CacheConfig:    DefaultCacheConfig,
	MaxOccurrences: 1000,
}

// DisabledCacheConfig turns memoization off entirely. Useful in tests and
// for callers that manage their own snapshot consistency.
var DisabledCacheConfig = EngineConfig{
	CacheEnabled:   false,
	MaxOccurrences: 1000,
}

// CacheConfig holds configuration for the expansion cache.
type CacheConfig struct {
	TTL             time.Duration // how long entries stay valid
	MaxEntries      int           // maximum entries before eviction
	CleanupInterval time.Duration // how often expired entries are swept
}

// DefaultCacheConfig provides sensible defaults for expansion caching.
var DefaultCacheConfig = CacheConfig{
	TTL:             15 * time.Minute,
	MaxEntries:      1000,
	CleanupInterval: 5 * time.Minute,
}
