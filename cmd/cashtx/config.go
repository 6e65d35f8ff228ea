package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultNetwork     = "mainnet"
	defaultExplorerURL = "https://api.blockchair.com/bitcoin-cash"
)

// Config carries the settings shared by every command. Flags override
// config file values, which override the defaults.
type Config struct {
	Network     string `yaml:"network"`
	ExplorerURL string `yaml:"explorer_url"`
	UserAgent   string `yaml:"user_agent"`
}

// LoadConfig reads a YAML config file. An empty path returns the
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if cfg.Network == "" {
		cfg.Network = defaultNetwork
	}
	if cfg.ExplorerURL == "" {
		cfg.ExplorerURL = defaultExplorerURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "cashtx/" + appVersion
	}
	return cfg, nil
}
