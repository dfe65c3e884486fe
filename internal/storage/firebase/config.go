package firebase

import "time"

// Config holds Realtime Database settings
type Config struct {
	ProjectID   string
	DatabaseURL string

	// CredentialsFile is a service account key; empty uses application default credentials
	CredentialsFile string

	// RootPath is the node under which rooms are kept
	RootPath string

	// PollInterval is how often subscribers check the room's ETag
	PollInterval time.Duration
}

// DefaultConfig returns defaults for the Realtime Database store
func DefaultConfig() Config {
	return Config{
		RootPath:     "rooms",
		PollInterval: 500 * time.Millisecond,
	}
}
