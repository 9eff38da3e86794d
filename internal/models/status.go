// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package models

// VenueStatus is the per-venue portion of scrape-status.json. LastSuccess and
// LastSuccessCount carry forward across failing runs so staleness stays
// observable without losing the last-known-good metadata.
type VenueStatus struct {
	LastRun          string `json:"last_run"`
	Success          bool   `json:"success"`
	EventCount       int    `json:"event_count"`
	Error            string `json:"error,omitempty"`
	LastSuccess      string `json:"last_success,omitempty"`
	LastSuccessCount int    `json:"last_success_count,omitempty"`
}

// RunStatus is the persisted run summary (scrape-status.json). It is consumed
// only for display; the reconciliation pipeline never reads it back beyond
// preserving last-success metadata.
type RunStatus struct {
	RunID       string                 `json:"run_id,omitempty"`
	LastRun     string                 `json:"last_run"`
	AllSuccess  bool                   `json:"all_success"`
	AnySuccess  bool                   `json:"any_success"`
	TotalEvents int                    `json:"total_events"`
	Venues      map[string]VenueStatus `json:"venues"`
}

// NewRunStatus returns a status with a non-nil venue map.
func NewRunStatus() *RunStatus {
	return &RunStatus{Venues: make(map[string]VenueStatus)}
}

// VenueMetrics tracks in-memory scrape metrics for one venue within a run,
// used for the end-of-run summary table and Prometheus export.
type VenueMetrics struct {
	Name          string
	EventCount    int
	NewEvents     int
	Errors        int
	ErrorMessages []string
	DurationMS    float64
}
