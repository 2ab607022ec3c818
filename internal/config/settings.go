package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Settings is the validated configuration plus the resolved credential.
// It is built once at startup and shared read-only by every pipeline stage.
type Settings struct {
	App    AppConfig
	APIKey string
}

// NewSettings validates cfg and resolves the provider credential from the environment.
// It performs no network access.
func NewSettings(cfg *AppConfig) (*Settings, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	key, err := ResolveCredential(cfg.Provider.APIKeyEnv)
	if err != nil {
		return nil, err
	}
	return &Settings{App: *cfg, APIKey: key}, nil
}

// ResolveCredential reads the named environment variable.
func ResolveCredential(envName string) (string, error) {
	key := strings.TrimSpace(os.Getenv(envName))
	if key == "" {
		return "", fmt.Errorf("%w: set it first, e.g. export %s=<your api key> (or add it to .env)", ErrMissingCredential, envName)
	}
	return key, nil
}

// Timeout returns the per-request provider timeout.
func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.App.Provider.TimeoutSecs) * time.Second
}
