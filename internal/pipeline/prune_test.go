// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package pipeline

import (
	"testing"

	"github.com/tomtom215/gigwire/internal/models"
)

func TestPrune_RemovesOnlyUnreferencedSlugs(t *testing.T) {
	cache := models.NewSeenCache()
	cache.Events["live"] = models.SeenEntry{FirstSeen: "2026-01-01T00:00:00Z"}
	cache.Events["archived"] = models.SeenEntry{FirstSeen: "2025-12-01T00:00:00Z"}
	cache.Events["gone"] = models.SeenEntry{FirstSeen: "2025-11-01T00:00:00Z"}

	live := map[string]struct{}{"live": {}}
	archived := map[string]struct{}{"archived": {}}

	removed := Prune(cache, live, archived)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok := cache.Events["live"]; !ok {
		t.Error("live slug evicted")
	}
	if _, ok := cache.Events["archived"]; !ok {
		t.Error("archived slug evicted; its first_seen must survive rotation")
	}
	if _, ok := cache.Events["gone"]; ok {
		t.Error("unreferenced slug not evicted")
	}
}

func TestPrune_EmptyCacheNoop(t *testing.T) {
	cache := models.NewSeenCache()
	if removed := Prune(cache, nil, nil); removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}

func TestSlugSet(t *testing.T) {
	events := []models.Event{{Slug: "a"}, {Slug: "b"}, {Slug: ""}}
	set := SlugSet(events)
	if len(set) != 2 {
		t.Errorf("set size = %d, want 2 (empty slug excluded)", len(set))
	}
	if _, ok := set["a"]; !ok {
		t.Error("slug a missing")
	}
}
