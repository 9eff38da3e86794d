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
)

const aegBlobJSON = `{
  "events": [
    {
      "eventDateTime": "2026-04-10T20:00:00",
      "doorDateTime": "2026-04-10T19:00:00",
      "title": {"headlinersText": "Night Moves", "supportingText": "Daylight"},
      "ticketing": {"url": "https://tix.example/nm"},
      "ticketPriceLow": "$20.00",
      "ticketPriceHigh": "$25.00",
      "media": {
        "small": {"file_name": "https://img.example/small.jpg", "width": 300},
        "card": {"file_name": "https://img.example/card.jpg", "width": 678}
      }
    },
    {
      "eventDateTime": "TBD",
      "title": {"headlinersText": "Unscheduled"},
      "ticketing": {"url": "https://tix.example/x"}
    },
    {
      "eventDateTime": "2026-05-01T21:00:00",
      "title": {"headlinersText": "Flat Price"},
      "ticketing": {"url": "https://tix.example/fp"},
      "ticketPriceLow": "$30.00",
      "ticketPriceHigh": "$30.00"
    }
  ]
}`

func TestAEGScrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, aegBlobJSON)
	}))
	defer srv.Close()

	a := NewTerminalWest(newTestClient(t))
	a.url = srv.URL

	events, err := a.Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (TBD entry skipped)", len(events))
	}

	ev := events[0]
	if ev.Venue != "Terminal West" {
		t.Errorf("Venue = %q", ev.Venue)
	}
	if ev.Date != "2026-04-10" {
		t.Errorf("Date = %q", ev.Date)
	}
	if ev.DoorsTime != "19:00" || ev.ShowTime != "20:00" {
		t.Errorf("times = %q/%q", ev.DoorsTime, ev.ShowTime)
	}
	if len(ev.Artists) != 2 || ev.Artists[0].Name != "Night Moves" {
		t.Errorf("Artists = %+v", ev.Artists)
	}
	if ev.Price != "$20.00 - $25.00" {
		t.Errorf("Price = %q", ev.Price)
	}
	if ev.ImageURL != "https://img.example/card.jpg" {
		t.Errorf("ImageURL = %q, want the 678px rendition", ev.ImageURL)
	}

	if events[1].Price != "$30.00" {
		t.Errorf("flat price = %q, want single value", events[1].Price)
	}
}

func TestAEGScrapeFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a := NewTheEastern(newTestClient(t))
	a.url = srv.URL

	if _, err := a.Scrape(context.Background()); err == nil {
		t.Error("Scrape() = nil error on 404")
	}
}
