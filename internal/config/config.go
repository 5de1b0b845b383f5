// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token   string `yaml:"token"`
	Workers int    `yaml:"workers"` // polling workers
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port int `yaml:"port"` // ops server (healthz, metrics)
}

type StorageConfig struct {
	Path string `yaml:"path"` // JSON snapshot file
}

type SchedulerConfig struct {
	Tick         time.Duration `yaml:"tick"`
	InitialDelay time.Duration `yaml:"initial_delay"`
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Log       LogConfig       `yaml:"log"`
	Admin     AdminConfig     `yaml:"admin"`
	Storage   StorageConfig   `yaml:"storage"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path and applies defaults. A missing
// file is fine (everything has a default except the token); a malformed
// file is not. BOT_TOKEN in the environment overrides bot.token and a
// missing token is a fatal startup condition.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8080
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "warden_data.json"
	}
	if cfg.Scheduler.Tick <= 0 {
		cfg.Scheduler.Tick = 30 * time.Second
	}
	if cfg.Scheduler.InitialDelay <= 0 {
		cfg.Scheduler.InitialDelay = 10 * time.Second
	}

	if tok := os.Getenv("BOT_TOKEN"); tok != "" {
		cfg.Bot.Token = tok
	}
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot token is required: set BOT_TOKEN or bot.token")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
