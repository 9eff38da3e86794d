// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

// Package main is the Gigwire entry point.
//
// Gigwire aggregates concert and event listings from Atlanta venue websites
// and ticketing APIs into a single JSON feed consumed by a static site. One
// run scrapes every registered venue, reconciles the results against the
// existing feed, classifies and enriches events, rotates past events into
// monthly archives, and persists everything to the data directory (and
// optionally a Cloudflare R2 bucket).
//
// # Modes
//
// By default the binary performs a single pipeline run and exits; exit code 1
// means every venue failed or persistence broke. With DAEMON_ENABLED=true it
// instead runs on an interval and serves an HTTP API (health, metrics, feed
// preview) until SIGINT or SIGTERM.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority
// wins): environment variables, a YAML config file (CONFIG_PATH or
// config.yaml), then built-in defaults. Key settings:
//
//	GIGWIRE_DATA_DIR          data directory (default: data)
//	TICKETMASTER_API_KEY      enables the Discovery API for TM-ticketed venues
//	SPOTIFY_CLIENT_ID/SECRET  enables Web API artist searches
//	R2_ACCOUNT_ID (+ keys)    enables R2 feed sync
//	DAEMON_ENABLED            scheduled mode with the HTTP server
//	DAEMON_INTERVAL           time between runs (default: 6h)
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/gigwire/internal/config"
	"github.com/tomtom215/gigwire/internal/enrich"
	"github.com/tomtom215/gigwire/internal/logging"
	"github.com/tomtom215/gigwire/internal/models"
	"github.com/tomtom215/gigwire/internal/pipeline"
	"github.com/tomtom215/gigwire/internal/scrape"
	"github.com/tomtom215/gigwire/internal/server"
	"github.com/tomtom215/gigwire/internal/storage"
	"github.com/tomtom215/gigwire/internal/venues"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("data_dir", cfg.Data.Dir).
		Bool("ticketmaster", cfg.TM.APIKey != "").
		Bool("spotify", cfg.Spotify.ClientID != "").
		Bool("r2", cfg.R2.Enabled()).
		Bool("daemon", cfg.Daemon.Enabled).
		Msg("Configuration loaded")

	store, err := storage.NewStore(cfg.Data.Dir)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize data store")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r2, err := storage.NewR2Sync(ctx, cfg.R2, store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize R2 sync")
	}
	if r2 != nil {
		logging.Info().Str("bucket", cfg.R2.Bucket).Msg("R2 sync enabled")
	}

	client := scrape.NewClient(scrape.ClientConfig{
		Timeout:    cfg.Scrape.RequestTimeout,
		MaxRetries: cfg.Scrape.MaxRetries,
		MinDelay:   cfg.Scrape.MinDelay,
		UserAgent:  cfg.Scrape.UserAgent,
	})

	spotify := enrich.NewSpotify(client, cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Spotify.SearchBudget)

	classifier := enrich.NewClassifier(client, cfg.TM.APIKey)
	classifier.LinkFound = spotify.Observe

	scrapers := venues.Registry(client, venues.RegistryOptions{
		LiveNationAPIKey: cfg.LiveNation.APIKey,
		TMAPIKey:         cfg.TM.APIKey,
		SpotifyRecorder:  spotify.Observe,
		FoxFallback: func(venue string) []models.Event {
			var kept []models.Event
			for _, ev := range store.LoadEvents() {
				if ev.Venue == venue {
					kept = append(kept, ev)
				}
			}
			return kept
		},
		// Long-lived daemons get circuit breakers so a venue that starts
		// failing hard is probed instead of hammered every interval.
		WrapBreaker: cfg.Daemon.Enabled,
	})

	pipe := pipeline.New(pipeline.Options{
		Store:      store,
		Manager:    scrape.NewManager(cfg.Scrape.VenueTimeout, scrapers...),
		Classifier: classifier,
		Spotify:    spotify,
		R2:         r2,
		Freshness:  pipeline.NewFreshness(cfg.Pipeline.NewEventDays),
	})

	if !cfg.Daemon.Enabled {
		if _, err := pipe.Run(ctx); err != nil {
			logging.Error().Err(err).Msg("Pipeline run failed")
			os.Exit(1)
		}
		return
	}

	runDaemon(ctx, cancel, cfg, store, pipe)
}

// runDaemon runs the pipeline on an interval alongside the HTTP server until
// a shutdown signal arrives. Runs never overlap: the loop is strictly
// sequential and a run that outlasts the interval simply delays the next one.
func runDaemon(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, store *storage.Store, pipe *pipeline.Pipeline) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	srv := server.New(cfg.Server, store)
	srvDone := make(chan error, 1)
	go func() {
		srvDone <- srv.Start(ctx)
	}()

	logging.Info().Dur("interval", cfg.Daemon.Interval).Msg("Daemon mode: scheduling pipeline runs")

	ticker := time.NewTicker(cfg.Daemon.Interval)
	defer ticker.Stop()

	runOnce := func() {
		if _, err := pipe.Run(ctx); err != nil && ctx.Err() == nil {
			logging.Error().Err(err).Msg("Pipeline run failed")
		}
	}

	runOnce()
	for {
		select {
		case <-ctx.Done():
			if srvDone != nil {
				if err := <-srvDone; err != nil {
					logging.Error().Err(err).Msg("HTTP server error")
				}
			}
			logging.Info().Msg("Daemon stopped")
			return
		case err := <-srvDone:
			// Listen failure or other fatal server error; stop the daemon.
			logging.Error().Err(err).Msg("HTTP server stopped unexpectedly")
			srvDone = nil
			cancel()
		case <-ticker.C:
			runOnce()
		}
	}
}
