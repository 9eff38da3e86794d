// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package pipeline

import (
	"github.com/tomtom215/gigwire/internal/models"
)

// Prune garbage-collects seen-cache entries whose slug is referenced by
// neither the live feed nor any archive bucket, returning the number of
// entries removed.
//
// Ordering matters: pruning must run after archive rotation in the same
// cycle, with archiveSlugs reflecting this run's rotation. Otherwise events
// that just moved into the archive would lose their first-seen history one
// run too early.
func Prune(cache *models.SeenCache, liveSlugs, archiveSlugs map[string]struct{}) int {
	removed := 0
	for slug := range cache.Events {
		if _, live := liveSlugs[slug]; live {
			continue
		}
		if _, archived := archiveSlugs[slug]; archived {
			continue
		}
		delete(cache.Events, slug)
		removed++
	}
	return removed
}

// SlugSet collects the non-empty slugs of events into a set.
func SlugSet(events []models.Event) map[string]struct{} {
	set := make(map[string]struct{}, len(events))
	for i := range events {
		if events[i].Slug != "" {
			set[events[i].Slug] = struct{}{}
		}
	}
	return set
}
