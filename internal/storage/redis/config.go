package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// RoomTTL expires idle rooms; zero keeps them forever
	RoomTTL time.Duration

	// MaxRetries bounds optimistic transaction attempts before giving up
	MaxRetries int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		RoomTTL:      24 * time.Hour,
		MaxRetries:   50,
	}
}
