// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package scrape

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/gigwire/internal/logging"
	"github.com/tomtom215/gigwire/internal/metrics"
	"github.com/tomtom215/gigwire/internal/models"
)

// ErrBreakerOpen marks a scrape skipped because the venue's breaker is open.
// The manager records it as a failure without counting a fresh error against
// the breaker.
var ErrBreakerOpen = errors.New("venue circuit breaker open")

// BreakerScraper wraps a venue scraper with a circuit breaker. Useful only
// in daemon mode, where a venue that 500s every run for hours should be
// skipped rather than retried at full cost each cycle. One-shot runs use
// the bare scraper.
//
// The breaker uses real time for its window and recovery timeout; scrape
// cycles are minutes apart so the thresholds are counted in runs, not
// requests.
type BreakerScraper struct {
	inner Scraper
	cb    *gobreaker.CircuitBreaker[[]models.Event]
}

// breakerState maps gobreaker states onto the metric gauge encoding.
func breakerState(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

// NewBreakerScraper wraps inner with a breaker that opens after 3
// consecutive failed scrapes and probes again after 30 minutes.
func NewBreakerScraper(inner Scraper) *BreakerScraper {
	name := inner.Name()
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]models.Event](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("venue", name).Str("from", from.String()).Str("to", to.String()).Msg("Venue circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerState(to))
		},
	})

	return &BreakerScraper{inner: inner, cb: cb}
}

// Name returns the wrapped scraper's venue name.
func (b *BreakerScraper) Name() string {
	return b.inner.Name()
}

// Scrape delegates to the wrapped scraper under breaker protection.
func (b *BreakerScraper) Scrape(ctx context.Context) ([]models.Event, error) {
	events, err := b.cb.Execute(func() ([]models.Event, error) {
		return b.inner.Scrape(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRejected.WithLabelValues(b.Name()).Inc()
			return nil, ErrBreakerOpen
		}
		return nil, err
	}
	return events, nil
}
