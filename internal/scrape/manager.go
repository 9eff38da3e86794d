// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package scrape

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/gigwire/internal/logging"
	"github.com/tomtom215/gigwire/internal/metrics"
	"github.com/tomtom215/gigwire/internal/models"
)

// Manager runs every registered scraper sequentially and aggregates their
// events. Venues are isolated: one scraper's error contributes zero events
// and a failed status entry, never a failed run.
//
// Scraping is deliberately sequential. The sources are a handful of venue
// sites that take seconds each; parallelism would only add burst load on
// shared CDNs for no meaningful wall-clock win on a batch job.
type Manager struct {
	scrapers []Scraper
	timeout  time.Duration
}

// NewManager returns a manager over scrapers with a per-venue timeout;
// timeout <= 0 defaults to 30 seconds.
func NewManager(timeout time.Duration, scrapers ...Scraper) *Manager {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Manager{scrapers: scrapers, timeout: timeout}
}

// Result is the outcome of one full scrape pass.
type Result struct {
	Events []models.Event
	Status *models.RunStatus
}

// Run scrapes every venue and builds the run status. prev supplies the
// last-success metadata carried forward for venues that fail this run.
func (m *Manager) Run(ctx context.Context, prev *models.RunStatus, now time.Time) Result {
	status := models.NewRunStatus()
	status.RunID = uuid.NewString()
	status.LastRun = now.UTC().Format(time.RFC3339)
	status.AllSuccess = true

	var all []models.Event
	summaries := make([]models.VenueMetrics, 0, len(m.scrapers))

	for _, s := range m.scrapers {
		name := s.Name()
		vctx, cancel := context.WithTimeout(ctx, m.timeout)
		start := time.Now()
		events, err := s.Scrape(vctx)
		cancel()
		elapsed := time.Since(start)

		metrics.VenueScrapeDuration.WithLabelValues(name).Observe(elapsed.Seconds())

		vs := models.VenueStatus{
			LastRun: now.UTC().Format(time.RFC3339),
		}
		summary := models.VenueMetrics{Name: name, DurationMS: float64(elapsed.Milliseconds())}

		if err != nil {
			metrics.VenueScrapeErrors.WithLabelValues(name).Inc()
			logging.Error().Err(err).Str("venue", name).Msg("Venue scrape failed")

			vs.Success = false
			vs.Error = err.Error()
			if prev != nil {
				if p, ok := prev.Venues[name]; ok {
					vs.LastSuccess = p.LastSuccess
					vs.LastSuccessCount = p.LastSuccessCount
				}
			}
			status.AllSuccess = false
			summary.Errors = 1
			summary.ErrorMessages = append(summary.ErrorMessages, err.Error())
		} else {
			metrics.VenueEventsScraped.WithLabelValues(name).Set(float64(len(events)))
			logging.Info().Str("venue", name).Int("events", len(events)).Dur("elapsed", elapsed).Msg("Venue scraped")

			vs.Success = true
			vs.EventCount = len(events)
			vs.LastSuccess = vs.LastRun
			vs.LastSuccessCount = len(events)
			status.AnySuccess = true
			summary.EventCount = len(events)
			all = append(all, events...)
		}

		status.Venues[name] = vs
		summaries = append(summaries, summary)
	}

	status.TotalEvents = len(all)
	logSummary(summaries, len(all))
	return Result{Events: all, Status: status}
}

// logSummary prints the end-of-pass venue table at info level.
func logSummary(summaries []models.VenueMetrics, total int) {
	logging.Info().Msg("--- Scrape summary ---")
	for _, s := range summaries {
		line := fmt.Sprintf("%-22s %4d events  %7.0fms", s.Name, s.EventCount, s.DurationMS)
		if s.Errors > 0 {
			line += "  FAILED"
		}
		logging.Info().Msg(line)
	}
	logging.Info().Int("total_events", total).Msg("--- End scrape summary ---")
}

// SummaryLines renders the venue table for the plain-text run log.
func SummaryLines(status *models.RunStatus) []string {
	names := make([]string, 0, len(status.Venues))
	for name := range status.Venues {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names)+1)
	for _, name := range names {
		vs := status.Venues[name]
		if vs.Success {
			lines = append(lines, fmt.Sprintf("%s: ok, %d events", name, vs.EventCount))
		} else {
			lines = append(lines, fmt.Sprintf("%s: FAILED (%s)", name, vs.Error))
		}
	}
	lines = append(lines, fmt.Sprintf("total: %d events", status.TotalEvents))
	return lines
}
