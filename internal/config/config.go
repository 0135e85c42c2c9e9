// Package config provides YAML-based configuration loading for Mashtun.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// cronParser accepts standard five-field cron expressions for the digest
// schedules.
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// Config is the top-level Mashtun configuration, loaded from mashtun.yaml.
type Config struct {
	Owner      string         `yaml:"owner"`
	Brewhouse  string         `yaml:"brewhouse"`
	Units      string         `yaml:"units"`
	Efficiency float64        `yaml:"efficiency"`
	Database   DatabaseConfig `yaml:"database"`
	API        APIConfig      `yaml:"api"`
	Cellar     CellarConfig   `yaml:"cellar"`
	Share      ShareConfig    `yaml:"share"`
}

// DatabaseConfig selects and configures the storage backend. The sqlite
// driver needs only a file path; mysql needs the usual connection settings.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// APIConfig holds settings for the JSON API server.
type APIConfig struct {
	Port int `yaml:"port"`
}

// CellarConfig configures the fermentation-watching daemon and its chat
// platform. An empty Platform disables the cellar entirely.
type CellarConfig struct {
	Platform        string        `yaml:"platform"`
	Channel         string        `yaml:"channel"`
	Slack           SlackConfig   `yaml:"slack"`
	Discord         DiscordConfig `yaml:"discord"`
	PollIntervalSec int           `yaml:"poll_interval_sec"`
	StuckAfterHours int           `yaml:"stuck_after_hours"`
	StuckDelta      float64       `yaml:"stuck_delta"`
	Alerts          AlertsConfig  `yaml:"alerts"`
	Digest          DigestConfig  `yaml:"digest"`
}

// SlackConfig holds Slack Socket Mode credentials.
type SlackConfig struct {
	AppToken string `yaml:"app_token"`
	BotToken string `yaml:"bot_token"`
}

// DiscordConfig holds Discord bot credentials.
type DiscordConfig struct {
	BotToken string `yaml:"bot_token"`
}

// AlertsConfig toggles the cellar alert kinds. Leaving the whole block unset
// enables all of them; setting any toggle makes the block explicit.
type AlertsConfig struct {
	PhaseChanges      bool `yaml:"phase_changes"`
	StuckFermentation bool `yaml:"stuck_fermentation"`
	Temperature       bool `yaml:"temperature"`
}

// DigestConfig holds the scheduled digest settings.
type DigestConfig struct {
	Daily  DigestSchedule `yaml:"daily"`
	Weekly DigestSchedule `yaml:"weekly"`
}

// DigestSchedule is one digest timer: enabled plus a five-field cron line.
type DigestSchedule struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
}

// ShareConfig holds credentials for publishing recipes as GitHub Gists.
type ShareConfig struct {
	GitHubToken string `yaml:"github_token"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Units == "" {
		c.Units = "imperial"
	}
	if c.Efficiency == 0 {
		c.Efficiency = 72
	}
	if c.Brewhouse == "" && c.Owner != "" {
		c.Brewhouse = c.Owner + "'s brewhouse"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "mashtun.db"
	}
	if c.Database.Driver == "mysql" {
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
		if c.Database.Name == "" && c.Owner != "" {
			c.Database.Name = "mashtun_" + c.Owner
		}
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.Cellar.PollIntervalSec == 0 {
		c.Cellar.PollIntervalSec = 300
	}
	if c.Cellar.StuckAfterHours == 0 {
		c.Cellar.StuckAfterHours = 72
	}
	if c.Cellar.StuckDelta == 0 {
		c.Cellar.StuckDelta = 0.001
	}
	if c.Cellar.Platform != "" && c.Cellar.Alerts == (AlertsConfig{}) {
		c.Cellar.Alerts = AlertsConfig{PhaseChanges: true, StuckFermentation: true, Temperature: true}
	}
	if c.Cellar.Digest.Daily.Enabled && c.Cellar.Digest.Daily.Cron == "" {
		c.Cellar.Digest.Daily.Cron = "0 9 * * *"
	}
	if c.Cellar.Digest.Weekly.Enabled && c.Cellar.Digest.Weekly.Cron == "" {
		c.Cellar.Digest.Weekly.Cron = "0 9 * * 1"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Owner == "" {
		errs = append(errs, "owner is required")
	}
	if c.Units != "imperial" && c.Units != "metric" {
		errs = append(errs, fmt.Sprintf("units must be imperial or metric, got %q", c.Units))
	}
	if c.Efficiency <= 0 || c.Efficiency > 100 {
		errs = append(errs, fmt.Sprintf("efficiency must be in (0, 100], got %v", c.Efficiency))
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			errs = append(errs, "database.path is required for sqlite")
		}
	case "mysql":
		if c.Database.User == "" {
			errs = append(errs, "database.user is required for mysql")
		}
		if c.Database.Name == "" {
			errs = append(errs, "database.name is required for mysql")
		}
	default:
		errs = append(errs, fmt.Sprintf("database.driver must be sqlite or mysql, got %q", c.Database.Driver))
	}
	switch c.Cellar.Platform {
	case "":
	case "slack":
		if c.Cellar.Slack.AppToken == "" || c.Cellar.Slack.BotToken == "" {
			errs = append(errs, "cellar.slack.app_token and bot_token are required for the slack platform")
		}
	case "discord":
		if c.Cellar.Discord.BotToken == "" {
			errs = append(errs, "cellar.discord.bot_token is required for the discord platform")
		}
	default:
		errs = append(errs, fmt.Sprintf("cellar.platform must be slack or discord, got %q", c.Cellar.Platform))
	}
	if c.Cellar.Digest.Daily.Enabled {
		if _, err := cronParser.Parse(c.Cellar.Digest.Daily.Cron); err != nil {
			errs = append(errs, fmt.Sprintf("cellar.digest.daily.cron is not a valid cron expression: %q", c.Cellar.Digest.Daily.Cron))
		}
	}
	if c.Cellar.Digest.Weekly.Enabled {
		if _, err := cronParser.Parse(c.Cellar.Digest.Weekly.Cron); err != nil {
			errs = append(errs, fmt.Sprintf("cellar.digest.weekly.cron is not a valid cron expression: %q", c.Cellar.Digest.Weekly.Cron))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
