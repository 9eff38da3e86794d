// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/gigwire/internal/enrich"
	"github.com/tomtom215/gigwire/internal/logging"
	"github.com/tomtom215/gigwire/internal/metrics"
	"github.com/tomtom215/gigwire/internal/models"
	"github.com/tomtom215/gigwire/internal/scrape"
	"github.com/tomtom215/gigwire/internal/storage"
)

// Pipeline wires one full reconciliation run: scrape, classify, merge with
// the existing feed, enrich, rotate the archive, persist, and sync.
type Pipeline struct {
	store      *storage.Store
	manager    *scrape.Manager
	classifier *enrich.Classifier // nil disables attraction classification
	spotify    *enrich.Spotify    // nil disables spotify enrichment
	r2         *storage.R2Sync    // nil disables remote sync
	freshness  *Freshness
	rotator    *Rotator

	now func() time.Time
}

// Options assembles a Pipeline. Store, Manager, and Freshness are required;
// the rest degrade gracefully when nil.
type Options struct {
	Store      *storage.Store
	Manager    *scrape.Manager
	Classifier *enrich.Classifier
	Spotify    *enrich.Spotify
	R2         *storage.R2Sync
	Freshness  *Freshness
}

// New returns a runnable pipeline.
func New(opts Options) *Pipeline {
	f := opts.Freshness
	if f == nil {
		f = NewFreshness(0)
	}
	return &Pipeline{
		store:      opts.Store,
		manager:    opts.Manager,
		classifier: opts.Classifier,
		spotify:    opts.Spotify,
		r2:         opts.R2,
		freshness:  f,
		rotator:    NewRotator(opts.Store),
		now:        time.Now,
	}
}

// Summary reports what one run did.
type Summary struct {
	Scraped    int
	Invalid    int
	Live       int
	NewEvents  int
	Archived   int
	Pruned     int
	AnySuccess bool
}

// Run executes one full pipeline pass. A run with zero successful venues
// persists nothing: overwriting the feed from a fully failed scrape would
// wipe it.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	started := p.now()
	summary, err := p.run(ctx, started)

	metrics.RunDuration.Observe(time.Since(started).Seconds())
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.RunsTotal.WithLabelValues(outcome).Inc()
	return summary, err
}

func (p *Pipeline) run(ctx context.Context, now time.Time) (Summary, error) {
	var summary Summary

	if p.r2 != nil {
		if err := p.r2.Download(ctx); err != nil {
			return summary, fmt.Errorf("pulling remote state: %w", err)
		}
	}

	prev := p.store.LoadStatus()
	result := p.manager.Run(ctx, prev, now)
	summary.Scraped = len(result.Events)
	summary.AnySuccess = result.Status.AnySuccess

	if !result.Status.AnySuccess {
		if err := p.store.SaveStatus(result.Status); err != nil {
			logging.Warn().Err(err).Msg("persisting status for failed run")
		}
		p.appendRunLog(now, result.Status)
		return summary, fmt.Errorf("every venue scrape failed")
	}

	incoming := result.Events

	artistCache := p.store.LoadArtistCache()
	if p.classifier != nil {
		p.classifier.ClassifyEvents(ctx, incoming, artistCache)
	}

	for i := range incoming {
		NormalizePrice(&incoming[i])
	}
	AssignSlugs(incoming)

	incoming, invalid := FilterValid(incoming)
	summary.Invalid = invalid
	metrics.EventsInvalid.Add(float64(invalid))

	lastSeen := now.UTC().Format(time.RFC3339)
	for i := range incoming {
		incoming[i].LastSeen = lastSeen
	}

	existing := p.store.LoadEvents()
	merged := Merge(existing, incoming)

	seenCache := p.store.LoadSeenCache()
	merged, newCount := p.freshness.UpdateFirstSeen(merged, seenCache, now)
	summary.NewEvents = newCount
	metrics.EventsNew.Add(float64(newCount))

	spotifyCache := p.store.LoadSpotifyCache()
	if p.spotify != nil {
		p.spotify.EnrichEvents(ctx, merged, spotifyCache, now.UTC().Format("2006-01-02"))
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Date != merged[j].Date {
			return merged[i].Date < merged[j].Date
		}
		return merged[i].Slug < merged[j].Slug
	})

	upcoming, _, archived, err := p.rotator.ArchivePast(merged, now)
	if err != nil {
		return summary, fmt.Errorf("rotating archive: %w", err)
	}
	summary.Archived = archived
	summary.Live = len(upcoming)
	metrics.EventsLive.Set(float64(len(upcoming)))

	archivedSlugs, err := p.store.ArchivedSlugs()
	if err != nil {
		return summary, fmt.Errorf("scanning archive buckets: %w", err)
	}
	summary.Pruned = Prune(seenCache, SlugSet(upcoming), archivedSlugs)
	metrics.SeenCachePruned.Add(float64(summary.Pruned))

	result.Status.TotalEvents = len(upcoming)

	if err := p.store.SaveEvents(upcoming); err != nil {
		return summary, fmt.Errorf("persisting events: %w", err)
	}
	if err := p.store.SaveSeenCache(seenCache); err != nil {
		return summary, fmt.Errorf("persisting seen cache: %w", err)
	}
	if err := p.store.SaveStatus(result.Status); err != nil {
		return summary, fmt.Errorf("persisting status: %w", err)
	}
	if err := p.store.SaveArtistCache(artistCache); err != nil {
		logging.Warn().Err(err).Msg("persisting artist cache")
	}
	if err := p.store.SaveSpotifyCache(spotifyCache); err != nil {
		logging.Warn().Err(err).Msg("persisting spotify cache")
	}

	p.appendRunLog(now, result.Status)

	if p.r2 != nil {
		if err := p.r2.Upload(ctx); err != nil {
			// The local feed is intact; the next run retries the sync.
			logging.Error().Err(err).Msg("uploading feed to R2")
		}
	}

	logging.Info().
		Int("scraped", summary.Scraped).
		Int("invalid", summary.Invalid).
		Int("live", summary.Live).
		Int("new", summary.NewEvents).
		Int("archived", summary.Archived).
		Int("pruned", summary.Pruned).
		Msg("Pipeline run complete")

	return summary, nil
}

func (p *Pipeline) appendRunLog(now time.Time, status *models.RunStatus) {
	if err := p.store.AppendRunLog(now, scrape.SummaryLines(status)...); err != nil {
		logging.Warn().Err(err).Msg("appending run log")
		return
	}
	if _, err := p.store.TrimRunLog(now, storage.DefaultLogRetentionDays); err != nil {
		logging.Warn().Err(err).Msg("trimming run log")
	}
}
