// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

// Package metrics provides Prometheus instrumentation for the scrape
// pipeline. In daemon mode the metrics are exposed at /metrics; one-shot
// runs still record them so a scrape sidecar can collect the final state.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Venue scraping
	VenueScrapeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gigwire_venue_scrape_duration_seconds",
			Help:    "Duration of one venue's scrape",
			Buckets: []float64{1, 5, 10, 30, 60, 120},
		},
		[]string{"venue"},
	)

	VenueEventsScraped = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gigwire_venue_events_scraped",
			Help: "Events returned by the most recent scrape of each venue",
		},
		[]string{"venue"},
	)

	VenueScrapeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gigwire_venue_scrape_errors_total",
			Help: "Total failed venue scrapes",
		},
		[]string{"venue"},
	)

	// Pipeline
	EventsLive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gigwire_events_live",
			Help: "Events in the live feed after the most recent run",
		},
	)

	EventsNew = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gigwire_events_new_total",
			Help: "Events observed for the first time",
		},
	)

	EventsInvalid = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gigwire_events_invalid_total",
			Help: "Scraped records dropped by validation",
		},
	)

	EventsArchived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gigwire_events_archived_total",
			Help: "Events rotated into monthly archive buckets",
		},
	)

	UnarchivableDates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gigwire_events_unarchivable_dates_total",
			Help: "Past-due events left live because their date string is malformed",
		},
	)

	SeenCachePruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gigwire_seen_cache_pruned_total",
			Help: "Seen-cache entries garbage-collected",
		},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gigwire_run_duration_seconds",
			Help:    "Duration of a full pipeline run",
			Buckets: []float64{10, 30, 60, 120, 300, 600},
		},
	)

	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gigwire_runs_total",
			Help: "Completed pipeline runs by outcome",
		},
		[]string{"outcome"}, // success, partial, failure
	)

	// Circuit breakers (daemon mode)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gigwire_circuit_breaker_state",
			Help: "Per-venue breaker state: 0=closed, 1=open, 2=half-open",
		},
		[]string{"venue"},
	)

	CircuitBreakerRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gigwire_circuit_breaker_rejected_total",
			Help: "Venue scrapes skipped because the breaker was open",
		},
		[]string{"venue"},
	)

	// Enrichment
	EnrichmentLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gigwire_enrichment_lookups_total",
			Help: "External enrichment API lookups",
		},
		[]string{"service", "result"}, // service: ticketmaster|spotify, result: hit|miss|error
	)

	// Object storage
	R2Transfers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gigwire_r2_transfers_total",
			Help: "Object storage uploads/downloads by direction and outcome",
		},
		[]string{"direction", "outcome"},
	)
)
