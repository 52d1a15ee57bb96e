// Package config handles loading and parsing application configuration.
// It supports two sources for the file path (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Every value in the file can also be overridden by its env:"..." variable.
package config

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration structure.
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	// StoragePath is the SQLite .db file the registry mirrors to.
	// Empty means the registry lives in memory only and is lost on exit.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH"`

	HTTPServer `yaml:"http_server"`

	Registry `yaml:"registry"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-required:"true"`
}

// Registry holds the rules applied to the people list.
type Registry struct {
	// StrictUpdate rejects an edit that would turn a person into a copy of
	// another person already in the list.
	StrictUpdate bool `yaml:"strict_update" env:"REGISTRY_STRICT_UPDATE" env-default:"false"`

	// MaxAge is the highest age the forms accept.
	MaxAge int `yaml:"max_age" env:"REGISTRY_MAX_AGE" env-default:"150"`
}

// Load reads the config file at path, applies environment overrides and
// checks env-required fields.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if cfg.MaxAge <= 0 {
		return nil, fmt.Errorf("registry.max_age must be positive, got %d", cfg.MaxAge)
	}

	return &cfg, nil
}

// MustLoad resolves the config path from CONFIG_PATH or --config and
// returns the loaded config. It exits the process on any failure, so if it
// returns the config is valid.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	return cfg
}
