// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := loadFrom("")
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
	if cfg.Data.Dir != "data" {
		t.Errorf("Data.Dir = %q, want data", cfg.Data.Dir)
	}
	if cfg.Pipeline.NewEventDays != 5 {
		t.Errorf("NewEventDays = %d, want 5", cfg.Pipeline.NewEventDays)
	}
	if cfg.Scrape.VenueTimeout != 30*time.Second {
		t.Errorf("VenueTimeout = %v, want 30s", cfg.Scrape.VenueTimeout)
	}
	if cfg.LiveNation.APIKey == "" {
		t.Error("LiveNation.APIKey default missing")
	}
	if cfg.TM.APIKey != "" {
		t.Error("TM.APIKey should default empty")
	}
	if cfg.R2.Enabled() {
		t.Error("R2 should be disabled by default")
	}
	if cfg.Daemon.Enabled {
		t.Error("daemon mode should be off by default")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GIGWIRE_DATA_DIR", "/tmp/feed")
	t.Setenv("NEW_EVENT_DAYS", "3")
	t.Setenv("TICKETMASTER_API_KEY", "tm-key")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := loadFrom("")
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
	if cfg.Data.Dir != "/tmp/feed" {
		t.Errorf("Data.Dir = %q", cfg.Data.Dir)
	}
	if cfg.Pipeline.NewEventDays != 3 {
		t.Errorf("NewEventDays = %d, want 3", cfg.Pipeline.NewEventDays)
	}
	if cfg.TM.APIKey != "tm-key" {
		t.Errorf("TM.APIKey = %q", cfg.TM.APIKey)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[0] != want[0] || cfg.Server.CORSOrigins[1] != want[1] {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
}

func TestUnmappedEnvIgnored(t *testing.T) {
	t.Setenv("PATH_LIKE_RANDOM_VAR", "noise")

	if _, err := loadFrom(""); err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
}

func TestConfigFileLayer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
data:
  dir: /srv/gigwire
pipeline:
  new_event_days: 7
daemon:
  enabled: true
  interval: 2h
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
	if cfg.Data.Dir != "/srv/gigwire" {
		t.Errorf("Data.Dir = %q", cfg.Data.Dir)
	}
	if cfg.Pipeline.NewEventDays != 7 {
		t.Errorf("NewEventDays = %d", cfg.Pipeline.NewEventDays)
	}
	if !cfg.Daemon.Enabled || cfg.Daemon.Interval != 2*time.Hour {
		t.Errorf("Daemon = %+v", cfg.Daemon)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.Port != 8322 {
		t.Errorf("Server.Port = %d, want default", cfg.Server.Port)
	}
}

func TestEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("data:\n  dir: /from-file\n"), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv("GIGWIRE_DATA_DIR", "/from-env")

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
	if cfg.Data.Dir != "/from-env" {
		t.Errorf("Data.Dir = %q, env should win", cfg.Data.Dir)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config { return defaultConfig() }

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty data dir", func(c *Config) { c.Data.Dir = "" }},
		{"negative new event days", func(c *Config) { c.Pipeline.NewEventDays = -1 }},
		{"port out of range", func(c *Config) { c.Server.Port = 0 }},
		{"daemon interval too short", func(c *Config) {
			c.Daemon.Enabled = true
			c.Daemon.Interval = time.Second
		}},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"partial r2 credentials", func(c *Config) { c.R2.Bucket = "feed" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}

	if err := base().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 9000}
	if got := s.Addr(); got != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q", got)
	}
}
