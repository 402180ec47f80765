// Package config handles environment-sourced configuration.
//
// All settings come from process environment variables so the same binary
// can run anywhere; the resulting Config value is passed by reference into
// the service and engine, never read from ambient state.
package config

import (
	"fmt"
	"os"

	"github.com/think0rcode/whatismyip/internal/store"
)

// Environment variable names.
const (
	EnvAPIToken   = "API_TOKEN"
	EnvCFZoneID   = "CF_ZONE_ID"
	EnvCFAPIToken = "CF_API_TOKEN"
	EnvCFDomain   = "CF_DOMAIN"
	EnvListenAddr = "LISTEN_ADDR"
	EnvCachePath  = "CACHE_PATH"
)

// DefaultListenAddr is used when LISTEN_ADDR is not set.
const DefaultListenAddr = ":8080"

// Config holds the settings for one running instance.
type Config struct {
	// APIToken authenticates incoming update requests. Empty means no
	// request is ever authorized (strict auth).
	APIToken string

	// CFZoneID is the Cloudflare zone id where DNS records are managed.
	CFZoneID string

	// CFAPIToken is the Cloudflare API token for DNS operations.
	CFAPIToken string

	// CFDomain is appended to homenames to form record names.
	CFDomain string

	// ListenAddr is the HTTP listen address.
	ListenAddr string

	// CachePath is the SQLite record cache location.
	CachePath string
}

// FromEnv extracts configuration from environment variables. CF_ZONE_ID,
// CF_API_TOKEN, and CF_DOMAIN are required; the rest have defaults
// (API_TOKEN defaults to unset, which denies all requests).
func FromEnv() (*Config, error) {
	cfg := &Config{
		APIToken:   os.Getenv(EnvAPIToken),
		CFZoneID:   os.Getenv(EnvCFZoneID),
		CFAPIToken: os.Getenv(EnvCFAPIToken),
		CFDomain:   os.Getenv(EnvCFDomain),
		ListenAddr: os.Getenv(EnvListenAddr),
		CachePath:  os.Getenv(EnvCachePath),
	}

	for _, required := range []struct{ name, value string }{
		{EnvCFZoneID, cfg.CFZoneID},
		{EnvCFAPIToken, cfg.CFAPIToken},
		{EnvCFDomain, cfg.CFDomain},
	} {
		if required.value == "" {
			return nil, fmt.Errorf("config: missing required environment variable %s", required.name)
		}
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if cfg.CachePath == "" {
		path, err := store.DefaultPath()
		if err != nil {
			return nil, err
		}
		cfg.CachePath = path
	}

	return cfg, nil
}
