// Package matchctl is an HTTP client and operator CLI for the matching API.
package matchctl

import "time"

// Defaults for the client configuration.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultPrefix  = "/api/volunteerMatch"
	DefaultTimeout = 10 * time.Second
)

// Config holds configuration for the client.
type Config struct {
	BaseURL string        // Base URL of the service
	Prefix  string        // Path prefix of the matching routes
	Timeout time.Duration // HTTP request timeout
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
