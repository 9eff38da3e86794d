// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package pipeline

import (
	"testing"

	"github.com/tomtom215/gigwire/internal/models"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Earl", "the-earl"},
		{"  Center Stage  ", "center-stage"},
		{"The Filthy Frets!", "the-filthy-frets"},
		{"AC/DC", "acdc"},
		{"a_b  c", "a-b-c"},
		{"---", ""},
		{"", ""},
		{"Mercedes-Benz Stadium", "mercedes-benz-stadium"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEventSlug_FixedComponentOrder(t *testing.T) {
	e := &models.Event{
		Date:    "2026-02-10",
		Venue:   "Center Stage",
		Stage:   "The Loft",
		Artists: []models.Artist{{Name: "The Filthy Frets!"}},
	}
	want := "2026-02-10-center-stage-the-loft-the-filthy-frets"
	if got := EventSlug(e); got != want {
		t.Errorf("EventSlug = %q, want %q", got, want)
	}
}

func TestEventSlug_OmitsEmptyStage(t *testing.T) {
	e := &models.Event{
		Date:    "2026-02-10",
		Venue:   "The Earl",
		Artists: []models.Artist{{Name: "Headliner"}},
	}
	want := "2026-02-10-the-earl-headliner"
	if got := EventSlug(e); got != want {
		t.Errorf("EventSlug = %q, want %q", got, want)
	}
}

func TestEventSlug_MissingHeadlinerDefaultsToUnknown(t *testing.T) {
	e := &models.Event{Date: "2026-02-10", Venue: "The Earl"}
	want := "2026-02-10-the-earl-unknown"
	if got := EventSlug(e); got != want {
		t.Errorf("EventSlug = %q, want %q", got, want)
	}
}

func TestEventSlug_PureFunctionOfIdentityFields(t *testing.T) {
	base := models.Event{
		Date:    "2026-02-10",
		Venue:   "The Earl",
		Artists: []models.Artist{{Name: "Headliner"}},
	}
	decorated := base
	decorated.Price = "$25"
	decorated.ImageURL = "https://img.example/x.jpg"
	decorated.TicketURL = "https://t.example/1"
	decorated.Category = models.CategorySports

	if EventSlug(&base) != EventSlug(&decorated) {
		t.Error("slug changed when non-identity fields changed")
	}
}

func TestAssignSlugs_CollisionSuffixInFirstSeenOrder(t *testing.T) {
	events := []models.Event{
		{Date: "2026-02-10", Venue: "The Earl", Artists: []models.Artist{{Name: "Headliner"}}},
		{Date: "2026-02-10", Venue: "The Earl", Artists: []models.Artist{{Name: "Headliner"}}},
		{Date: "2026-02-10", Venue: "The Earl", Artists: []models.Artist{{Name: "Headliner"}}},
	}
	AssignSlugs(events)

	want := []string{
		"2026-02-10-the-earl-headliner",
		"2026-02-10-the-earl-headliner-1",
		"2026-02-10-the-earl-headliner-2",
	}
	for i, w := range want {
		if events[i].Slug != w {
			t.Errorf("event %d slug = %q, want %q", i, events[i].Slug, w)
		}
	}

	seen := make(map[string]bool)
	for _, e := range events {
		if seen[e.Slug] {
			t.Fatalf("duplicate slug %q in one run's output", e.Slug)
		}
		seen[e.Slug] = true
	}
}

func TestAssignSlugs_Deterministic(t *testing.T) {
	mk := func() []models.Event {
		return []models.Event{
			{Date: "2026-03-01", Venue: "Tabernacle", Artists: []models.Artist{{Name: "A"}}},
			{Date: "2026-03-01", Venue: "Tabernacle", Artists: []models.Artist{{Name: "A"}}},
			{Date: "2026-03-02", Venue: "Tabernacle", Artists: []models.Artist{{Name: "B"}}},
		}
	}
	a, b := mk(), mk()
	AssignSlugs(a)
	AssignSlugs(b)
	for i := range a {
		if a[i].Slug != b[i].Slug {
			t.Errorf("run 1 slug %q != run 2 slug %q", a[i].Slug, b[i].Slug)
		}
	}
}
