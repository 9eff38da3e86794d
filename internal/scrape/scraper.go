// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

// Package scrape runs the venue scrapers: a shared resilient HTTP client,
// per-venue circuit breakers for daemon mode, and the run manager that
// isolates failures and reports per-venue status.
package scrape

import (
	"context"

	"github.com/tomtom215/gigwire/internal/models"
)

// Scraper is one venue source. Scrape returns every upcoming event the
// source currently lists; it must be safe to call repeatedly and must honor
// ctx cancellation on all network calls.
type Scraper interface {
	Name() string
	Scrape(ctx context.Context) ([]models.Event, error)
}
