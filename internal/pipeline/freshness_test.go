// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package pipeline

import (
	"testing"
	"time"

	"github.com/tomtom215/gigwire/internal/models"
)

func TestNewFreshness_DefaultWindow(t *testing.T) {
	if f := NewFreshness(0); f.Window != DefaultNewEventDays*24*time.Hour {
		t.Errorf("window = %v, want %d days", f.Window, DefaultNewEventDays)
	}
	if f := NewFreshness(7); f.Window != 7*24*time.Hour {
		t.Errorf("window = %v, want 7 days", f.Window)
	}
}

func TestUpdateFirstSeen_StampsAndCachesNewEvents(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	cache := models.NewSeenCache()
	events := []models.Event{{Slug: "2026-02-10-the-earl-headliner"}}

	events, newCount := NewFreshness(5).UpdateFirstSeen(events, cache, now)

	if newCount != 1 {
		t.Errorf("newCount = %d, want 1", newCount)
	}
	want := "2026-02-10T12:00:00Z"
	if events[0].FirstSeen != want {
		t.Errorf("first_seen = %q, want %q", events[0].FirstSeen, want)
	}
	if events[0].IsNew == nil || !*events[0].IsNew {
		t.Error("freshly observed event not marked is_new")
	}
	if cache.Events["2026-02-10-the-earl-headliner"].FirstSeen != want {
		t.Error("seen cache entry not recorded")
	}
	if cache.LastUpdated != want {
		t.Errorf("cache last_updated = %q, want %q", cache.LastUpdated, want)
	}
}

func TestUpdateFirstSeen_Idempotent(t *testing.T) {
	cache := models.NewSeenCache()
	first := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)
	f := NewFreshness(5)

	events := []models.Event{{Slug: "s"}}
	events, _ = f.UpdateFirstSeen(events, cache, first)
	stamped := events[0].FirstSeen

	rerun := []models.Event{{Slug: "s"}}
	rerun, newCount := f.UpdateFirstSeen(rerun, cache, later)

	if newCount != 0 {
		t.Errorf("newCount on rerun = %d, want 0", newCount)
	}
	if rerun[0].FirstSeen != stamped {
		t.Errorf("first_seen regenerated: %q != %q", rerun[0].FirstSeen, stamped)
	}
}

func TestUpdateFirstSeen_CachedTimestampBeatsEventValue(t *testing.T) {
	cache := models.NewSeenCache()
	cache.Events["s"] = models.SeenEntry{FirstSeen: "2026-01-01T00:00:00Z"}

	events := []models.Event{{Slug: "s", FirstSeen: "2026-02-01T00:00:00Z"}}
	events, _ = NewFreshness(5).UpdateFirstSeen(events, cache, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))

	if events[0].FirstSeen != "2026-01-01T00:00:00Z" {
		t.Errorf("first_seen = %q, want cached value", events[0].FirstSeen)
	}
}

func TestUpdateFirstSeen_WindowBoundary(t *testing.T) {
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	f := NewFreshness(5)

	tests := []struct {
		name      string
		firstSeen string
		wantNew   bool
	}{
		{"exactly at window edge", "2026-02-05T00:00:00Z", true},
		{"just past window", "2026-02-04T23:59:59Z", false},
		{"well inside window", "2026-02-09T00:00:00Z", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := models.NewSeenCache()
			cache.Events["s"] = models.SeenEntry{FirstSeen: tt.firstSeen}
			events := []models.Event{{Slug: "s"}}
			events, _ = f.UpdateFirstSeen(events, cache, now)
			if events[0].IsNew == nil || *events[0].IsNew != tt.wantNew {
				t.Errorf("is_new = %v, want %v", events[0].IsNew, tt.wantNew)
			}
		})
	}
}

func TestUpdateFirstSeen_PinnedFalseStaysFalse(t *testing.T) {
	cache := models.NewSeenCache()
	cache.Events["s"] = models.SeenEntry{FirstSeen: "2026-02-09T00:00:00Z"}

	pinned := models.Event{Slug: "s"}
	pinned.SetIsNew(false)

	events, _ := NewFreshness(5).UpdateFirstSeen([]models.Event{pinned}, cache, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))
	if !events[0].IsNewPinnedFalse() {
		t.Error("pinned is_new=false overridden despite in-window first_seen")
	}
}

func TestUpdateFirstSeen_UnparseableFirstSeenDerivesFalse(t *testing.T) {
	cache := models.NewSeenCache()
	cache.Events["s"] = models.SeenEntry{FirstSeen: "not-a-timestamp"}

	events, _ := NewFreshness(5).UpdateFirstSeen([]models.Event{{Slug: "s"}}, cache, time.Now())
	if events[0].IsNew == nil || *events[0].IsNew {
		t.Error("unparseable first_seen should derive is_new=false")
	}
}

func TestUpdateFirstSeen_SkipsUnsluggedEvents(t *testing.T) {
	cache := models.NewSeenCache()
	events, newCount := NewFreshness(5).UpdateFirstSeen([]models.Event{{}}, cache, time.Now())
	if newCount != 0 || events[0].FirstSeen != "" {
		t.Error("unslugged event should be left untouched")
	}
}
