// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

// Package models defines the event records and persisted-state shapes shared
// across the scrape pipeline. The JSON field names are the wire format of the
// published feed and must not change without coordinating with the static
// site that consumes it.
package models

// Event categories. Category is a closed enumeration; scrapers and the
// classification heuristics may only produce these values.
const (
	CategoryConcerts = "concerts"
	CategoryComedy   = "comedy"
	CategoryBroadway = "broadway"
	CategorySports   = "sports"
	CategoryMisc     = "misc"
)

// DefaultCategory is assigned when a scraper has no classification signal.
const DefaultCategory = CategoryConcerts

// Categories lists all valid category values in display order.
var Categories = []string{
	CategoryConcerts,
	CategoryComedy,
	CategoryBroadway,
	CategorySports,
	CategoryMisc,
}

// Artist is one entry in an event's ordered artist list. The first artist is
// the headliner and participates in slug identity; the rest are support acts.
// A blank name is tolerated: validation only requires the list itself to be
// non-empty, and slugging substitutes "unknown" for a nameless headliner.
type Artist struct {
	Name       string `json:"name"`
	Genre      string `json:"genre,omitempty"`
	SpotifyURL string `json:"spotify_url,omitempty"`
}

// Event represents one performance instance at a venue.
//
// Identity: Slug is derived from (Date, Venue, Stage, headliner name) and is
// unique within a single run's output. TicketURL is the stable natural key
// used by the merge engine; it survives display-text changes that would
// alter the slug.
//
// Lifecycle: FirstSeen is stamped once per slug and never regenerated while
// its seen-cache entry survives. IsNew is tri-state: nil means "derive from
// the freshness window", a false pointer is a sticky pin that survives every
// subsequent merge, and true is recomputed each run.
type Event struct {
	Venue     string   `json:"venue" validate:"required"`
	Stage     string   `json:"stage,omitempty"`
	Date      string   `json:"date" validate:"required"`
	EndDate   string   `json:"end_date,omitempty"`
	DoorsTime string   `json:"doors_time,omitempty"`
	ShowTime  string   `json:"show_time,omitempty"`
	Artists   []Artist `json:"artists" validate:"required,min=1"`
	TicketURL string   `json:"ticket_url" validate:"required"`
	InfoURL   string   `json:"info_url,omitempty"`
	ImageURL  string   `json:"image_url,omitempty"`
	Price     string   `json:"price,omitempty"`
	Category  string   `json:"category,omitempty" validate:"omitempty,oneof=concerts comedy broadway sports misc"`
	Slug      string   `json:"slug,omitempty"`
	FirstSeen string   `json:"first_seen,omitempty"`
	IsNew     *bool    `json:"is_new,omitempty"`
	LastSeen  string   `json:"last_seen,omitempty"`

	// Raw ADV/DOS price strings captured by The Earl scraper. Consolidated
	// into Price by pipeline.NormalizePrice; never persisted.
	AdvPrice string `json:"-"`
	DosPrice string `json:"-"`
}

// Headliner returns the name of the first artist, or "" when the artist list
// is empty.
func (e *Event) Headliner() string {
	if len(e.Artists) == 0 {
		return ""
	}
	return e.Artists[0].Name
}

// IsNewPinnedFalse reports whether IsNew carries the sticky false pin.
func (e *Event) IsNewPinnedFalse() bool {
	return e.IsNew != nil && !*e.IsNew
}

// SetIsNew replaces IsNew with a fresh pointer holding v.
func (e *Event) SetIsNew(v bool) {
	e.IsNew = &v
}

// ValidCategory reports whether c is one of the closed category values.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}
