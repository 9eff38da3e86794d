// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

// Package config loads layered configuration: struct defaults, then an
// optional YAML file, then environment variables. Env vars win.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/gigwire/internal/storage"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/gigwire/config.yaml",
	"/etc/gigwire/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Config is the complete runtime configuration.
type Config struct {
	Data       DataConfig       `koanf:"data"`
	Scrape     ScrapeConfig     `koanf:"scrape"`
	Pipeline   PipelineConfig   `koanf:"pipeline"`
	LiveNation LiveNationConfig `koanf:"livenation"`
	TM         TMConfig         `koanf:"ticketmaster"`
	Spotify    SpotifyConfig    `koanf:"spotify"`
	R2         storage.R2Config `koanf:"r2"`
	Server     ServerConfig     `koanf:"server"`
	Daemon     DaemonConfig     `koanf:"daemon"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// DataConfig locates the persisted feed and state files.
type DataConfig struct {
	Dir string `koanf:"dir"`
}

// ScrapeConfig tunes the shared HTTP client and per-venue execution.
type ScrapeConfig struct {
	VenueTimeout   time.Duration `koanf:"venue_timeout"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	MaxRetries     int           `koanf:"max_retries"`
	MinDelay       time.Duration `koanf:"min_delay"`
	UserAgent      string        `koanf:"user_agent"`
}

// PipelineConfig tunes merge and freshness behavior.
type PipelineConfig struct {
	NewEventDays int `koanf:"new_event_days"`
}

// LiveNationConfig carries the GraphQL API key used by the Live Nation
// venue scrapers.
type LiveNationConfig struct {
	APIKey string `koanf:"api_key"`
}

// TMConfig enables the Ticketmaster Discovery API. When the key is empty
// the Ticketmaster-backed venues fall back to HTML scraping and attraction
// classification is skipped.
type TMConfig struct {
	APIKey string `koanf:"api_key"`
}

// SpotifyConfig enables Web API artist searches. Link mining from venue
// pages runs regardless.
type SpotifyConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	SearchBudget int    `koanf:"search_budget"`
}

// ServerConfig tunes the HTTP API server used in daemon mode.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	CORSOrigins []string      `koanf:"cors_origins"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DaemonConfig controls scheduled-run mode. When disabled the binary runs
// the pipeline once and exits.
type DaemonConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`
}

// LoggingConfig mirrors the zerolog setup knobs.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultLiveNationAPIKey is the browser key the venues' own sites serve to
// every visitor; it is not a secret.
const defaultLiveNationAPIKey = "da2-jmvb5y2gjfcrrep3wzeumqwgaq"

func defaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir: "data",
		},
		Scrape: ScrapeConfig{
			VenueTimeout:   30 * time.Second,
			RequestTimeout: 15 * time.Second,
			MaxRetries:     3,
			MinDelay:       500 * time.Millisecond,
		},
		Pipeline: PipelineConfig{
			NewEventDays: 5,
		},
		LiveNation: LiveNationConfig{
			APIKey: defaultLiveNationAPIKey,
		},
		Spotify: SpotifyConfig{
			SearchBudget: 50,
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8322,
			Timeout:     30 * time.Second,
			CORSOrigins: []string{"*"},
		},
		Daemon: DaemonConfig{
			Enabled:  false,
			Interval: 6 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, in ascending precedence.
func Load() (*Config, error) {
	return loadFrom(findConfigFile())
}

// loadFrom is the testable core of Load.
func loadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir must not be empty")
	}
	if c.Pipeline.NewEventDays < 0 {
		return fmt.Errorf("pipeline.new_event_days must not be negative")
	}
	if c.Scrape.MaxRetries < 0 {
		return fmt.Errorf("scrape.max_retries must not be negative")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Daemon.Enabled && c.Daemon.Interval < time.Minute {
		return fmt.Errorf("daemon.interval must be at least one minute")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	// R2 is all-or-nothing: a partial credential set is a deployment mistake.
	r2Set := 0
	for _, v := range []string{c.R2.AccountID, c.R2.AccessKeyID, c.R2.SecretAccessKey, c.R2.Bucket} {
		if v != "" {
			r2Set++
		}
	}
	if r2Set != 0 && r2Set != 4 {
		return fmt.Errorf("r2 configuration incomplete: account_id, access_key_id, secret_access_key, and bucket are all required")
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices when
// provided through the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("setting %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransform maps environment variable names to koanf config paths.
// Unmapped variables are dropped so stray environment noise cannot leak
// into the configuration.
//
// Examples:
//   - GIGWIRE_DATA_DIR -> data.dir
//   - TICKETMASTER_API_KEY -> ticketmaster.api_key
//   - R2_BUCKET -> r2.bucket
func envTransform(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		"gigwire_data_dir": "data.dir",

		"scrape_venue_timeout":   "scrape.venue_timeout",
		"scrape_request_timeout": "scrape.request_timeout",
		"scrape_max_retries":     "scrape.max_retries",
		"scrape_min_delay":       "scrape.min_delay",
		"scrape_user_agent":      "scrape.user_agent",

		"new_event_days": "pipeline.new_event_days",

		"livenation_api_key":    "livenation.api_key",
		"ticketmaster_api_key":  "ticketmaster.api_key",
		"spotify_client_id":     "spotify.client_id",
		"spotify_client_secret": "spotify.client_secret",
		"spotify_search_budget": "spotify.search_budget",

		"r2_account_id":        "r2.account_id",
		"r2_access_key_id":     "r2.access_key_id",
		"r2_secret_access_key": "r2.secret_access_key",
		"r2_bucket":            "r2.bucket",
		"r2_prefix":            "r2.prefix",

		"http_host":    "server.host",
		"http_port":    "server.port",
		"http_timeout": "server.timeout",
		"cors_origins": "server.cors_origins",

		"daemon_enabled":  "daemon.enabled",
		"daemon_interval": "daemon.interval",

		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
