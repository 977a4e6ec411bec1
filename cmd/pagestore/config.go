package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the optional TOML configuration file. Flags given on the
// command line take precedence over values from the file.
type Config struct {
	Dir     string        `toml:"dir"`
	Driver  string        `toml:"driver"`
	Codec   string        `toml:"codec"`
	Logging LoggingConfig `toml:"logging"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func loadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}
