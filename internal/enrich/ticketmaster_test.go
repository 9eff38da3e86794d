// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/gigwire/internal/models"
	"github.com/tomtom215/gigwire/internal/scrape"
)

func newTestClient(t *testing.T) *scrape.Client {
	t.Helper()
	return scrape.NewClient(scrape.ClientConfig{
		Timeout:    5 * time.Second,
		MaxRetries: 0,
		MinDelay:   time.Millisecond,
	})
}

const wweAttractionJSON = `{
	"_embedded": {
		"attractions": [{
			"name": "WWE",
			"classifications": [{"segment": {"name": "Sports"}, "genre": {"name": "Wrestling"}}],
			"externalLinks": {"spotify": [{"url": "https://open.spotify.com/artist/abc123?si=x"}]}
		}]
	}
}`

func TestClassifyEventsInertWithoutKey(t *testing.T) {
	c := NewClassifier(nil, "")
	events := []models.Event{{
		Venue:    "The Earl",
		Artists:  []models.Artist{{Name: "WWE"}},
		Category: models.CategoryConcerts,
	}}
	c.ClassifyEvents(context.Background(), events, models.ArtistCache{})
	if events[0].Category != models.CategoryConcerts {
		t.Errorf("category = %q, want unchanged", events[0].Category)
	}
}

func TestClassifyEventsAppliesLookup(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if got := r.URL.Query().Get("keyword"); got != "WWE" {
			t.Errorf("keyword = %q, want WWE", got)
		}
		if r.URL.Query().Get("apikey") != "tm-key" {
			t.Error("apikey missing from query")
		}
		w.Write([]byte(wweAttractionJSON))
	}))
	defer srv.Close()

	var linkName, linkURL string
	c := NewClassifier(newTestClient(t), "tm-key")
	c.base = srv.URL
	c.LinkFound = func(name, url string) { linkName, linkURL = name, url }

	events := []models.Event{
		{Venue: "The Eastern", Artists: []models.Artist{{Name: "WWE"}}, Category: models.CategoryConcerts},
		// Same headliner again: must come from cache, not a second call.
		{Venue: "The Eastern", Artists: []models.Artist{{Name: "wwe"}}},
	}
	cache := models.ArtistCache{}
	c.ClassifyEvents(context.Background(), events, cache)

	if calls.Load() != 1 {
		t.Errorf("API calls = %d, want 1", calls.Load())
	}
	if events[0].Category != models.CategorySports {
		t.Errorf("events[0].Category = %q, want sports", events[0].Category)
	}
	if events[1].Category != models.CategorySports {
		t.Errorf("events[1].Category = %q, want sports", events[1].Category)
	}
	if got := cache["wwe"]; got == nil || *got != models.CategorySports {
		t.Errorf("cache[wwe] = %v, want sports", got)
	}
	if linkName != "WWE" || linkURL != "https://open.spotify.com/artist/abc123?si=x" {
		t.Errorf("LinkFound got (%q, %q)", linkName, linkURL)
	}
}

func TestClassifyEventsSkipsClassifiedVenuesAndGenres(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected API call")
	}))
	defer srv.Close()

	c := NewClassifier(newTestClient(t), "tm-key")
	c.base = srv.URL

	events := []models.Event{
		{Venue: "State Farm Arena", Artists: []models.Artist{{Name: "Hawks vs Celtics"}}},
		{Venue: "The Earl", Artists: []models.Artist{{Name: "Omni", Genre: "Post-Punk"}}},
		{Venue: "The Earl", Artists: []models.Artist{{Name: "Bert Kreischer"}}, Category: models.CategoryComedy},
		{Venue: "The Earl"},
	}
	c.ClassifyEvents(context.Background(), events, models.ArtistCache{})
}

func TestClassifyEventsCachedMiss(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected API call for cached miss")
	}))
	defer srv.Close()

	c := NewClassifier(newTestClient(t), "tm-key")
	c.base = srv.URL

	cache := models.ArtistCache{"obscure band": nil}
	events := []models.Event{{
		Venue:   "The Earl",
		Artists: []models.Artist{{Name: "Obscure Band"}},
	}}
	c.ClassifyEvents(context.Background(), events, cache)
	if events[0].Category != "" {
		t.Errorf("category = %q, want untouched", events[0].Category)
	}
}

func TestClassifyEventsCachesEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"_embedded": {"attractions": []}}`))
	}))
	defer srv.Close()

	c := NewClassifier(newTestClient(t), "tm-key")
	c.base = srv.URL

	cache := models.ArtistCache{}
	events := []models.Event{{
		Venue:   "The Earl",
		Artists: []models.Artist{{Name: "Nobody Known"}},
	}}
	c.ClassifyEvents(context.Background(), events, cache)

	got, ok := cache["nobody known"]
	if !ok || got != nil {
		t.Errorf("cache[nobody known] = (%v, %v), want remembered nil miss", got, ok)
	}
}
