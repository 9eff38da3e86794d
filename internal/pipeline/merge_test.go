// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package pipeline

import (
	"testing"

	"github.com/tomtom215/gigwire/internal/models"
)

func TestMerge_IncomingReplacesByTicketURL(t *testing.T) {
	existing := []models.Event{{
		Venue:     "The Earl",
		Date:      "2026-02-10",
		TicketURL: "https://t.example/1",
		Price:     "$20",
		FirstSeen: "2026-01-01T00:00:00Z",
	}}
	incoming := []models.Event{{
		Venue:     "The Earl",
		Date:      "2026-02-10",
		TicketURL: "https://t.example/1",
		Price:     "$25",
	}}

	merged := Merge(existing, incoming)
	if len(merged) != 1 {
		t.Fatalf("merged %d events, want 1", len(merged))
	}
	if merged[0].Price != "$25" {
		t.Errorf("price = %q, want updated $25", merged[0].Price)
	}
	if merged[0].FirstSeen != "2026-01-01T00:00:00Z" {
		t.Errorf("first_seen = %q, want carried forward", merged[0].FirstSeen)
	}
}

func TestMerge_IncomingFirstSeenWinsWhenSet(t *testing.T) {
	existing := []models.Event{{TicketURL: "u", FirstSeen: "2026-01-01T00:00:00Z"}}
	incoming := []models.Event{{TicketURL: "u", FirstSeen: "2026-02-01T00:00:00Z"}}
	merged := Merge(existing, incoming)
	if merged[0].FirstSeen != "2026-02-01T00:00:00Z" {
		t.Errorf("first_seen = %q, want incoming value kept", merged[0].FirstSeen)
	}
}

func TestMerge_StickyIsNewPinByURL(t *testing.T) {
	pinned := models.Event{TicketURL: "u"}
	pinned.SetIsNew(false)

	merged := Merge([]models.Event{pinned}, []models.Event{{TicketURL: "u"}})
	if !merged[0].IsNewPinnedFalse() {
		t.Error("is_new=false pin lost across merge by ticket URL")
	}
}

func TestMerge_StickyIsNewPinBySlugSurvivesURLChange(t *testing.T) {
	pinned := models.Event{TicketURL: "old-url", Slug: "2026-02-10-the-earl-headliner"}
	pinned.SetIsNew(false)

	incoming := []models.Event{{TicketURL: "new-url", Slug: "2026-02-10-the-earl-headliner"}}
	merged := Merge([]models.Event{pinned}, incoming)

	var fresh *models.Event
	for i := range merged {
		if merged[i].TicketURL == "new-url" {
			fresh = &merged[i]
		}
	}
	if fresh == nil {
		t.Fatal("incoming event with new ticket URL missing from merge")
	}
	if !fresh.IsNewPinnedFalse() {
		t.Error("is_new=false pin did not propagate by slug when ticket URL changed")
	}
}

func TestMerge_UnseenExistingEventsPreserved(t *testing.T) {
	existing := []models.Event{
		{Venue: "The Earl", TicketURL: "a"},
		{Venue: "Tabernacle", TicketURL: "b"},
	}
	incoming := []models.Event{{Venue: "The Earl", TicketURL: "a"}}

	merged := Merge(existing, incoming)
	if len(merged) != 2 {
		t.Fatalf("merged %d events, want 2", len(merged))
	}
	if merged[1].TicketURL != "b" {
		t.Errorf("unseen event dropped; got %+v", merged[1])
	}
}

func TestMerge_IncomingWithoutTicketURLExcluded(t *testing.T) {
	incoming := []models.Event{{Venue: "The Earl", Date: "2026-02-10"}}
	merged := Merge(nil, incoming)
	if len(merged) != 0 {
		t.Errorf("merged %d events, want 0 (no ticket URL)", len(merged))
	}
}

func TestMerge_NewEventsAppendAfterExisting(t *testing.T) {
	existing := []models.Event{{TicketURL: "a"}}
	incoming := []models.Event{{TicketURL: "c"}, {TicketURL: "b"}}
	merged := Merge(existing, incoming)

	got := make([]string, len(merged))
	for i, e := range merged {
		got[i] = e.TicketURL
	}
	want := []string{"a", "c", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
