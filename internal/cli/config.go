package cli

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Output formats
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config holds CLI configuration. Flags override CHESTS_* environment
// variables; the token falls back to the token file.
type Config struct {
	ServerURL string
	Token     string
	TokenFile string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config seeded from the environment
func DefaultConfig() *Config {
	return &Config{
		ServerURL: envOr("CHESTS_SERVER", "http://localhost:8080"),
		Token:     os.Getenv("CHESTS_TOKEN"),
		TokenFile: envOr("CHESTS_TOKEN_FILE", defaultTokenFile()),
		Output:    OutputText,
	}
}

// Validate checks the server URL and output format
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server URL %q", c.ServerURL)
	}
	if c.Output != OutputText && c.Output != OutputJSON {
		return fmt.Errorf("invalid output format %q: must be text or json", c.Output)
	}
	return nil
}

// LoadToken reads the token file unless a token was given directly
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read token file: %w", err)
	}

	c.Token = strings.TrimSpace(string(data))
	return nil
}

// SaveToken writes token to the token file, readable only by the user
func (c *Config) SaveToken(token string) error {
	c.Token = token

	if err := os.MkdirAll(filepath.Dir(c.TokenFile), 0o700); err != nil {
		return err
	}
	return os.WriteFile(c.TokenFile, []byte(token+"\n"), 0o600)
}

// ClearToken removes the token file
func (c *Config) ClearToken() error {
	c.Token = ""
	if err := os.Remove(c.TokenFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".chests", "token")
	}
	return filepath.Join(home, ".chests", "token")
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
