package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/variant/store"
)

// Config is the YAML configuration file. Flags override it.
type Config struct {
	Log   LogConfig   `yaml:"log"`
	Store StoreConfig `yaml:"store"`
	Codec CodecConfig `yaml:"codec"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"` // empty logs to stderr
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type StoreConfig struct {
	Backend  string             `yaml:"backend"` // badger, redis or linear
	Compress bool               `yaml:"compress"`
	Badger   BadgerConfig       `yaml:"badger"`
	Redis    store.RedisConfig  `yaml:"redis"`
	Linear   store.LinearConfig `yaml:"linear"`
}

type BadgerConfig struct {
	Dir string `yaml:"dir"` // empty is in-memory
}

type CodecConfig struct {
	Strict bool `yaml:"strict"`
}

func defaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:      "warn",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Store: StoreConfig{
			Backend: "badger",
			Badger:  BadgerConfig{Dir: "./data/variant"},
			Redis:   store.RedisConfig{Addr: "127.0.0.1:6379", Prefix: "variant:"},
		},
	}
}

// loadConfig reads path over the defaults. A missing path is not an error
// unless it was given explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
