package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// LoadConfigBytes unmarshals and validates a TOML document. On any failure
// it returns a zero-value Config together with the error, so a malformed
// config need not abort startup — the caller logs the error and proceeds
// with no inbounds configured.
func LoadConfigBytes(data []byte) (Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse toml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LoadConfigFile reads path and delegates to LoadConfigBytes.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return LoadConfigBytes(data)
}
