package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	WorkspacePath string // hcl files describing datasets and views

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates a Config before the app is constructed from it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.WorkspacePath == "" {
		return nil, errors.New("WorkspacePath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
