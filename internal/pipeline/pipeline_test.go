// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/gigwire/internal/models"
	"github.com/tomtom215/gigwire/internal/scrape"
	"github.com/tomtom215/gigwire/internal/storage"
)

type stubScraper struct {
	name   string
	events []models.Event
	err    error
}

func (s *stubScraper) Name() string { return s.name }

func (s *stubScraper) Scrape(context.Context) ([]models.Event, error) {
	return s.events, s.err
}

func newPipeline(t *testing.T, scrapers ...scrape.Scraper) (*Pipeline, *storage.Store) {
	t.Helper()
	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	p := New(Options{
		Store:     store,
		Manager:   scrape.NewManager(time.Second, scrapers...),
		Freshness: NewFreshness(5),
	})
	return p, store
}

func TestPipelineRun(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	venue := &stubScraper{name: "The Earl", events: []models.Event{
		{
			Venue: "The Earl", Date: "2026-03-15",
			Artists:   []models.Artist{{Name: "Future Act"}},
			TicketURL: "https://t.example/future",
			Category:  models.CategoryConcerts,
		},
		{
			Venue: "The Earl", Date: "2026-02-01",
			Artists:   []models.Artist{{Name: "Past Act"}},
			TicketURL: "https://t.example/past",
			Category:  models.CategoryConcerts,
		},
		{
			// No ticket URL: dropped by validation.
			Venue: "The Earl", Date: "2026-03-20",
			Artists:  []models.Artist{{Name: "Invalid Act"}},
			Category: models.CategoryConcerts,
		},
	}}

	p, store := newPipeline(t, venue)
	p.now = func() time.Time { return now }

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Scraped != 3 || summary.Invalid != 1 {
		t.Errorf("scraped/invalid = %d/%d, want 3/1", summary.Scraped, summary.Invalid)
	}
	if summary.Live != 1 || summary.Archived != 1 {
		t.Errorf("live/archived = %d/%d, want 1/1", summary.Live, summary.Archived)
	}
	if summary.NewEvents != 2 {
		t.Errorf("NewEvents = %d, want 2", summary.NewEvents)
	}

	live := store.LoadEvents()
	if len(live) != 1 || live[0].TicketURL != "https://t.example/future" {
		t.Fatalf("live feed = %+v", live)
	}
	if live[0].Slug == "" || live[0].FirstSeen == "" || live[0].LastSeen == "" {
		t.Errorf("lifecycle fields missing: %+v", live[0])
	}
	if live[0].IsNew == nil || !*live[0].IsNew {
		t.Error("freshly observed event should be new")
	}

	bucket, err := store.LoadBucket("2026-02")
	if err != nil || len(bucket) != 1 {
		t.Errorf("archive bucket = %v events, err %v", len(bucket), err)
	}

	status := store.LoadStatus()
	if !status.AllSuccess || status.TotalEvents != 1 {
		t.Errorf("status = %+v", status)
	}

	cache := store.LoadSeenCache()
	if len(cache.Events) != 2 {
		t.Errorf("seen cache holds %d slugs, want 2 (live + archived)", len(cache.Events))
	}
}

func TestPipelineRunIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	venue := &stubScraper{name: "The Earl", events: []models.Event{{
		Venue: "The Earl", Date: "2026-03-15",
		Artists:   []models.Artist{{Name: "Future Act"}},
		TicketURL: "https://t.example/future",
		Category:  models.CategoryConcerts,
	}}}

	p, store := newPipeline(t, venue)
	p.now = func() time.Time { return now }

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstSeen := store.LoadEvents()[0].FirstSeen

	p.now = func() time.Time { return now.Add(time.Hour) }
	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.NewEvents != 0 {
		t.Errorf("second run NewEvents = %d, want 0", summary.NewEvents)
	}
	if got := store.LoadEvents()[0].FirstSeen; got != firstSeen {
		t.Errorf("FirstSeen regenerated: %q -> %q", firstSeen, got)
	}
}

func TestPipelineRunAllVenuesFailed(t *testing.T) {
	p, store := newPipeline(t, &stubScraper{name: "The Earl", err: errors.New("site down")})

	// Seed an existing feed that must survive the failed run.
	seed := []models.Event{{
		Venue: "The Earl", Date: "2099-01-01", Slug: "seeded",
		Artists:   []models.Artist{{Name: "Keeper"}},
		TicketURL: "https://t.example/keep",
	}}
	if err := store.SaveEvents(seed); err != nil {
		t.Fatalf("seeding events: %v", err)
	}

	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("Run() = nil error when every venue failed")
	}

	if got := store.LoadEvents(); len(got) != 1 || got[0].Slug != "seeded" {
		t.Errorf("existing feed was disturbed: %+v", got)
	}
	status := store.LoadStatus()
	if status.AnySuccess {
		t.Error("status should record total failure")
	}
}

func TestPipelinePartialFailureKeepsUnseenEvents(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	ok := &stubScraper{name: "Terminal West", events: []models.Event{{
		Venue: "Terminal West", Date: "2026-03-18",
		Artists:   []models.Artist{{Name: "Working Venue Act"}},
		TicketURL: "https://t.example/tw",
		Category:  models.CategoryConcerts,
	}}}
	broken := &stubScraper{name: "The Earl", err: errors.New("blocked")}

	p, store := newPipeline(t, ok, broken)
	p.now = func() time.Time { return now }

	// The Earl's event from a previous run, still upcoming.
	seed := []models.Event{{
		Venue: "The Earl", Date: "2026-03-25", Slug: "2026-03-25-the-earl-old-act",
		Artists:   []models.Artist{{Name: "Old Act"}},
		TicketURL: "https://t.example/old",
		Category:  models.CategoryConcerts,
	}}
	if err := store.SaveEvents(seed); err != nil {
		t.Fatalf("seeding events: %v", err)
	}

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	live := store.LoadEvents()
	if len(live) != 2 {
		t.Fatalf("live feed has %d events, want 2 (new + preserved)", len(live))
	}
	urls := map[string]bool{}
	for _, e := range live {
		urls[e.TicketURL] = true
	}
	if !urls["https://t.example/tw"] || !urls["https://t.example/old"] {
		t.Errorf("live feed = %+v", live)
	}
}
