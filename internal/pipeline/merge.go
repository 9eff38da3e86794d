// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package pipeline

import (
	"github.com/tomtom215/gigwire/internal/models"
)

// Merge reconciles freshly scraped events with the previously persisted feed.
//
// TicketURL is the merge key: it is more durable across scrapes than the
// slug, since display-text changes can alter the slug long before a venue
// reissues ticket links. The rules:
//
//   - An incoming event replaces the existing event sharing its ticket URL,
//     carrying forward FirstSeen when the incoming record lacks one and the
//     sticky IsNew=false pin when the existing record had it.
//   - The pin also propagates by slug: if any existing event with the same
//     slug was pinned, the incoming event is pinned too. This covers ticket
//     URL changes under a stable slug identity.
//   - Incoming events without a ticket URL cannot be reconciled or tracked
//     and are silently excluded.
//   - Existing events whose ticket URL was not reported this run are kept
//     untouched. A single venue's transient scrape failure must never erase
//     known-good future events.
//
// The result preserves existing-feed order first, with genuinely new events
// appended in incoming order.
func Merge(existing, incoming []models.Event) []models.Event {
	merged := make([]models.Event, 0, len(existing)+len(incoming))
	byURL := make(map[string]int, len(existing))

	for _, e := range existing {
		if e.TicketURL == "" {
			continue
		}
		if pos, ok := byURL[e.TicketURL]; ok {
			merged[pos] = e
			continue
		}
		byURL[e.TicketURL] = len(merged)
		merged = append(merged, e)
	}

	pinnedSlugs := make(map[string]struct{})
	for i := range existing {
		if existing[i].Slug != "" && existing[i].IsNewPinnedFalse() {
			pinnedSlugs[existing[i].Slug] = struct{}{}
		}
	}

	for _, ev := range incoming {
		if ev.TicketURL == "" {
			continue
		}

		if pos, ok := byURL[ev.TicketURL]; ok {
			prev := merged[pos]
			if ev.FirstSeen == "" && prev.FirstSeen != "" {
				ev.FirstSeen = prev.FirstSeen
			}
			if prev.IsNewPinnedFalse() {
				ev.SetIsNew(false)
			}
		}

		if _, pinned := pinnedSlugs[ev.Slug]; pinned && ev.Slug != "" {
			ev.SetIsNew(false)
		}

		if pos, ok := byURL[ev.TicketURL]; ok {
			merged[pos] = ev
		} else {
			byURL[ev.TicketURL] = len(merged)
			merged = append(merged, ev)
		}
	}

	return merged
}
