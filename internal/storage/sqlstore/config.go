package sqlstore

import "time"

// Drivers registered by this package
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

// Config holds SQL connection and behavior settings
type Config struct {
	// Driver is DriverPostgres or DriverSQLite
	Driver string
	DSN    string

	// PollInterval is how often subscribers check for a newer version
	PollInterval time.Duration

	// MaxRetries bounds optimistic update attempts before giving up
	MaxRetries int
}

// DefaultConfig returns defaults for a local sqlite file
func DefaultConfig() Config {
	return Config{
		Driver:       DriverSQLite,
		DSN:          "file:chests.db?_busy_timeout=5000",
		PollInterval: 250 * time.Millisecond,
		MaxRetries:   50,
	}
}
