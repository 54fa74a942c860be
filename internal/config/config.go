// Package config loads application and scenario configuration from YAML.
package config

import (
	"fmt"
	"os"
	"strconv"

	"fincast/internal/tax"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Auth struct {
		JwtSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	OpenAI struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"openai"`
	Taxation struct {
		Brackets         []tax.Bracket `yaml:"brackets"`
		CapitalGainsRate float64       `yaml:"capital_gains_rate"`
	} `yaml:"taxation"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error; overrides and
// defaults still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("FINCAST_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FINCAST_PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("FINCAST_JWT_SECRET"); v != "" {
		cfg.Auth.JwtSecret = v
	}
	if v := os.Getenv("FINCAST_SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}

	// Defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/fincast.db"
	}
	if len(cfg.Taxation.Brackets) == 0 {
		cfg.Taxation.Brackets = tax.DefaultBrackets()
	}
	if cfg.Taxation.CapitalGainsRate == 0 {
		cfg.Taxation.CapitalGainsRate = tax.DefaultCapitalGainsRate
	}

	return cfg, nil
}
