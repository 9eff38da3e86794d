// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

// Package pipeline implements the event reconciliation core: identity
// assignment, validation, merge-by-identity across runs, first-seen
// tracking, archive rotation, and seen-cache pruning.
//
// Identity and temporal state are the only parts of Gigwire with real
// invariants; everything upstream (venue scrapers) and downstream
// (enrichment, object-storage sync) degrades per-record or per-source
// without touching them.
package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tomtom215/gigwire/internal/models"
)

// unknownHeadliner is the placeholder slug component used when an event has
// no headliner name. Identity assignment never fails on missing data.
const unknownHeadliner = "unknown"

var (
	slugStripRe    = regexp.MustCompile(`[^\w\s-]`)
	slugSpaceRe    = regexp.MustCompile(`[\s_]+`)
	slugCollapseRe = regexp.MustCompile(`-+`)
)

// Slugify normalizes a single slug component: lowercase, trim, drop
// characters outside [word, space, hyphen], convert space/underscore runs to
// hyphens, collapse repeated hyphens, trim leading/trailing hyphens.
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugSpaceRe.ReplaceAllString(s, "-")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// EventSlug derives the identity key for an event from (date, venue, stage,
// headliner name), joined in that fixed order with non-empty components only.
// Format: YYYY-MM-DD-venue-name-stage-artist-name. Stage distinguishes rooms
// inside multi-stage venues (e.g. The Masquerade's Heaven/Hell/Purgatory).
//
// EventSlug is a pure function of those four fields: two events with
// identical normalized components are indistinguishable by slug alone, and
// collision resolution is AssignSlugs' responsibility.
func EventSlug(e *models.Event) string {
	headliner := e.Headliner()
	if headliner == "" {
		headliner = unknownHeadliner
	}

	parts := []string{e.Date, Slugify(e.Venue), Slugify(e.Stage), Slugify(headliner)}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "-")
}

// AssignSlugs stamps every event with its slug, resolving collisions
// deterministically in first-seen order: the first occurrence keeps the base
// slug, later occurrences get an incrementing -N suffix starting at -1.
// The resulting slugs are unique within the slice.
func AssignSlugs(events []models.Event) {
	counts := make(map[string]int, len(events))
	for i := range events {
		base := EventSlug(&events[i])
		if n, seen := counts[base]; seen {
			counts[base] = n + 1
			events[i].Slug = fmt.Sprintf("%s-%d", base, n+1)
		} else {
			counts[base] = 0
			events[i].Slug = base
		}
	}
}
