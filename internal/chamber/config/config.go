package config

import (
	"github.com/kiosk404/roundtable/internal/chamber/options"
)

// Config is the running configuration of the chamber service.
type Config struct {
	*options.Options
}

// CreateConfigFromOptions creates a running configuration instance based
// on the given command-line or config-file options.
func CreateConfigFromOptions(opts *options.Options) (*Config, error) {
	return &Config{opts}, nil
}
