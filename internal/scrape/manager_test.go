// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package scrape

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/gigwire/internal/models"
)

type fakeScraper struct {
	name   string
	events []models.Event
	err    error
}

func (f *fakeScraper) Name() string { return f.name }

func (f *fakeScraper) Scrape(_ context.Context) ([]models.Event, error) {
	return f.events, f.err
}

var testNow = time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

func TestManagerRun_AggregatesAcrossVenues(t *testing.T) {
	m := NewManager(time.Second,
		&fakeScraper{name: "the-earl", events: []models.Event{{Venue: "The Earl"}, {Venue: "The Earl"}}},
		&fakeScraper{name: "tabernacle", events: []models.Event{{Venue: "Tabernacle"}}},
	)

	res := m.Run(context.Background(), nil, testNow)
	if len(res.Events) != 3 {
		t.Errorf("events = %d, want 3", len(res.Events))
	}
	if !res.Status.AllSuccess || !res.Status.AnySuccess {
		t.Errorf("status flags = all:%v any:%v, want true/true", res.Status.AllSuccess, res.Status.AnySuccess)
	}
	if res.Status.TotalEvents != 3 {
		t.Errorf("total = %d, want 3", res.Status.TotalEvents)
	}
	if res.Status.RunID == "" {
		t.Error("run id not assigned")
	}
}

func TestManagerRun_FailureIsolation(t *testing.T) {
	m := NewManager(time.Second,
		&fakeScraper{name: "the-earl", err: errors.New("boom")},
		&fakeScraper{name: "tabernacle", events: []models.Event{{Venue: "Tabernacle"}}},
	)

	res := m.Run(context.Background(), nil, testNow)
	if len(res.Events) != 1 {
		t.Errorf("events = %d, want 1 (failing venue contributes zero)", len(res.Events))
	}
	if res.Status.AllSuccess {
		t.Error("AllSuccess should be false when any venue fails")
	}
	if !res.Status.AnySuccess {
		t.Error("AnySuccess should be true when any venue succeeds")
	}
	earl := res.Status.Venues["the-earl"]
	if earl.Success || earl.Error == "" {
		t.Errorf("failing venue status = %+v", earl)
	}
}

func TestManagerRun_LastSuccessCarryover(t *testing.T) {
	prev := models.NewRunStatus()
	prev.Venues["the-earl"] = models.VenueStatus{
		LastSuccess:      "2026-02-01T08:00:00Z",
		LastSuccessCount: 9,
	}

	m := NewManager(time.Second, &fakeScraper{name: "the-earl", err: errors.New("boom")})
	res := m.Run(context.Background(), prev, testNow)

	earl := res.Status.Venues["the-earl"]
	if earl.LastSuccess != "2026-02-01T08:00:00Z" || earl.LastSuccessCount != 9 {
		t.Errorf("last-success metadata lost across a failing run: %+v", earl)
	}
}

func TestManagerRun_SuccessRefreshesLastSuccess(t *testing.T) {
	prev := models.NewRunStatus()
	prev.Venues["the-earl"] = models.VenueStatus{LastSuccess: "2026-02-01T08:00:00Z", LastSuccessCount: 9}

	m := NewManager(time.Second, &fakeScraper{name: "the-earl", events: []models.Event{{Venue: "The Earl"}}})
	res := m.Run(context.Background(), prev, testNow)

	earl := res.Status.Venues["the-earl"]
	if earl.LastSuccess != "2026-02-10T08:00:00Z" || earl.LastSuccessCount != 1 {
		t.Errorf("successful run should refresh last-success: %+v", earl)
	}
}

func TestSummaryLines_SortedAndTotaled(t *testing.T) {
	status := models.NewRunStatus()
	status.Venues["zebra"] = models.VenueStatus{Success: true, EventCount: 1}
	status.Venues["alpha"] = models.VenueStatus{Success: false, Error: "boom"}
	status.TotalEvents = 1

	lines := SummaryLines(status)
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	if lines[0] != "alpha: FAILED (boom)" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[2] != "total: 1 events" {
		t.Errorf("line 2 = %q", lines[2])
	}
}
