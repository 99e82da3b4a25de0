package app

import (
	"errors"
	"strings"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // hcl or yaml file, or a directory of them

	Addr      string
	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if !strings.Contains(cfg.Addr, ":") {
		return nil, errors.New("addr must be a host:port listen address")
	}

	// The config path is optional: an application assembled purely from
	// feature defaults is a valid, runnable application.
	return &cfg, nil
}
