package infra

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application settings. LoadConfig reads it from YAML,
// then environment variables override the DB path and log level.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Engine struct {
		Symbols []string `yaml:"symbols"`
		DBPath  string   `yaml:"db_path"`
	} `yaml:"engine"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the config file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if len(c.Engine.Symbols) == 0 {
		return fmt.Errorf("at least one engine symbol is required")
	}
	for _, s := range c.Engine.Symbols {
		if s != strings.ToUpper(s) {
			return fmt.Errorf("symbol %q must be uppercase", s)
		}
	}
	if c.Engine.DBPath == "" {
		return fmt.Errorf("engine.db_path is required")
	}
	return nil
}

// overrideWithEnv lets deployment environments override the DB path and
// log level without editing the checked-in config file.
func overrideWithEnv(cfg *Config) {
	if path := os.Getenv("APEXMATCH_DB_PATH"); path != "" {
		cfg.Engine.DBPath = path
	}
	if level := os.Getenv("APEXMATCH_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}
