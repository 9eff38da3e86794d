// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package pipeline

import (
	"time"

	"github.com/tomtom215/gigwire/internal/models"
)

// DefaultNewEventDays is the freshness window applied when config leaves it
// unset: an event counts as "new" for this many days after first observation.
const DefaultNewEventDays = 5

// Freshness maintains first-seen timestamps and derives the is_new flag.
// is_new is derived here rather than in a separate pass, keeping the flag
// computation next to the only place first_seen is guaranteed populated.
type Freshness struct {
	// Window is how long after first observation an event stays "new".
	Window time.Duration
}

// NewFreshness returns a tracker with an n-day window; n <= 0 falls back to
// DefaultNewEventDays.
func NewFreshness(n int) *Freshness {
	if n <= 0 {
		n = DefaultNewEventDays
	}
	return &Freshness{Window: time.Duration(n) * 24 * time.Hour}
}

// UpdateFirstSeen stamps first_seen on every slugged event and derives
// is_new, updating the cache in place. It returns the number of events
// observed for the first time.
//
// first_seen is idempotent: a cached timestamp always wins over the event's
// own value and is never regenerated, so re-running against the same cache
// yields identical timestamps. is_new rules:
//
//   - a sticky false pin (set by the merge engine) stays false,
//   - otherwise is_new = (now − first_seen) <= Window,
//   - an unparseable first_seen derives false rather than erroring.
func (f *Freshness) UpdateFirstSeen(events []models.Event, cache *models.SeenCache, now time.Time) ([]models.Event, int) {
	if cache.Events == nil {
		cache.Events = make(map[string]models.SeenEntry)
	}

	nowStr := now.UTC().Format(time.RFC3339)
	newCount := 0

	for i := range events {
		e := &events[i]
		if e.Slug == "" {
			continue
		}

		if entry, ok := cache.Events[e.Slug]; ok {
			e.FirstSeen = entry.FirstSeen
		} else {
			e.FirstSeen = nowStr
			cache.Events[e.Slug] = models.SeenEntry{FirstSeen: nowStr}
			newCount++
		}

		if e.IsNewPinnedFalse() {
			continue
		}

		firstSeen, err := time.Parse(time.RFC3339, e.FirstSeen)
		if err != nil {
			e.SetIsNew(false)
			continue
		}
		e.SetIsNew(now.Sub(firstSeen) <= f.Window)
	}

	cache.LastUpdated = nowStr
	return events, newCount
}
