// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package venues

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/gigwire/internal/models"
)

func csEvent(mutate func(*centerStageEvent)) centerStageEvent {
	e := centerStageEvent{
		Title:     "Some Band",
		EventDate: "20260415",
		DoorTime:  "7:00PM",
		ShowTime:  "8:00PM",
		EventURL:  "https://tix.example/sb",
		Permalink: "https://centerstage.example/sb",
	}
	e.VenueRoom.Value = "the_loft"
	if mutate != nil {
		mutate(&e)
	}
	return e
}

func TestCenterStageTransform(t *testing.T) {
	c := &CenterStage{}

	ev, ok := c.transform(csEvent(nil))
	if !ok {
		t.Fatal("transform rejected a valid event")
	}
	if ev.Venue != "Center Stage" || ev.Stage != "The Loft" {
		t.Errorf("venue/stage = %q/%q", ev.Venue, ev.Stage)
	}
	if ev.Date != "2026-04-15" {
		t.Errorf("Date = %q", ev.Date)
	}
	if ev.DoorsTime != "19:00" || ev.ShowTime != "20:00" {
		t.Errorf("times = %q/%q", ev.DoorsTime, ev.ShowTime)
	}
	if ev.Category != models.CategoryConcerts {
		t.Errorf("Category = %q", ev.Category)
	}

	rejects := []struct {
		name   string
		mutate func(*centerStageEvent)
	}{
		{"external venue", func(e *centerStageEvent) { e.ExternalVenue = "Elsewhere Hall" }},
		{"unknown room", func(e *centerStageEvent) { e.VenueRoom.Value = "parking_lot" }},
		{"malformed date", func(e *centerStageEvent) { e.EventDate = "2026-04-15" }},
		{"empty title", func(e *centerStageEvent) { e.Title = " " }},
		{"no ticket url", func(e *centerStageEvent) { e.EventURL = "" }},
	}
	for _, tt := range rejects {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := c.transform(csEvent(tt.mutate)); ok {
				t.Error("transform accepted, want reject")
			}
		})
	}
}

func TestCenterStageTransformComedyTitle(t *testing.T) {
	ev, ok := (&CenterStage{}).transform(csEvent(func(e *centerStageEvent) {
		e.Title = "An Evening of Stand-Up"
	}))
	if !ok || ev.Category != models.CategoryComedy {
		t.Errorf("got ok=%v category=%q", ok, ev.Category)
	}
}

func TestCenterStagePagination(t *testing.T) {
	page1 := make([]string, 0, centerStagePageSize)
	for i := 0; i < centerStagePageSize; i++ {
		page1 = append(page1, fmt.Sprintf(
			`{"title":"Act %d","event_date":"20260%d01","event_url":"https://tix.example/%d","venue_room":{"value":"vinyl"}}`,
			i, 4+i%2, i))
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, "["+joinJSON(page1)+"]")
		case "2":
			// Past-the-end pages answer with a bare string.
			fmt.Fprint(w, `"no more events"`)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}))
	defer srv.Close()

	c := NewCenterStage(newTestClient(t))
	c.api = srv.URL

	events, err := c.Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if len(events) != centerStagePageSize {
		t.Errorf("got %d events, want %d", len(events), centerStagePageSize)
	}
}

func joinJSON(items []string) string {
	out := ""
	for i, it := range items {
		if i > 0 {
			out += ","
		}
		out += it
	}
	return out
}
