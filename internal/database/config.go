package database

import (
	"fmt"
	"net/url"
	"strings"
)

// Config identifies the store: an endpoint URL and the credential that
// unlocks it, kept apart so the URL can be logged.
type Config struct {
	endpoint *url.URL
	password string
	sslMode  string
}

// NewConfig parses the store endpoint. It must be a postgres:// or
// postgresql:// URL naming a user and a database.
func NewConfig(endpoint, password, sslMode string) (*Config, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid store endpoint: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return nil, fmt.Errorf("invalid store endpoint scheme %q", u.Scheme)
	}
	if u.User == nil || u.User.Username() == "" {
		return nil, fmt.Errorf("store endpoint must include a user")
	}
	if strings.Trim(u.Path, "/") == "" {
		return nil, fmt.Errorf("store endpoint must include a database name")
	}
	if password == "" {
		return nil, fmt.Errorf("store credential is empty")
	}
	if sslMode == "" {
		sslMode = "require"
	}
	return &Config{endpoint: u, password: password, sslMode: sslMode}, nil
}

// DSN returns the PostgreSQL connection URL with the credential applied.
func (c *Config) DSN() string {
	u := *c.endpoint
	u.User = url.UserPassword(c.endpoint.User.Username(), c.password)
	q := u.Query()
	if q.Get("sslmode") == "" {
		q.Set("sslmode", c.sslMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Redacted returns the endpoint for logging, without the credential.
func (c *Config) Redacted() string {
	u := *c.endpoint
	u.User = url.User(c.endpoint.User.Username())
	return u.String()
}
