package app

import (
	"errors"
	"fmt"
)

// Config holds everything an App instance needs to run one compilation.
type Config struct {
	ProgramPath  string // .hcl program files
	BackendsPath string // .hcl backend manifests

	LogFormat string
	LogLevel  string
	Output    string // "tree" or "json"
}

// NewConfig validates and returns the configuration.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ProgramPath == "" {
		return nil, errors.New("ProgramPath is a required configuration field and cannot be empty")
	}
	if cfg.BackendsPath == "" {
		return nil, errors.New("BackendsPath is a required configuration field and cannot be empty")
	}
	switch cfg.Output {
	case "tree", "json":
	default:
		return nil, fmt.Errorf("invalid output format %q: must be 'tree' or 'json'", cfg.Output)
	}
	return &cfg, nil
}
