// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package models

// SeenEntry records when a slug was first observed.
type SeenEntry struct {
	FirstSeen string `json:"first_seen"`
}

// SeenCache is the persisted freshness cache (seen-cache.json). It maps event
// slugs to their first-observed timestamps. Entries are created on first
// observation, consulted on every merge, and pruned once the slug is absent
// from both the live feed and every archive bucket.
type SeenCache struct {
	Events      map[string]SeenEntry `json:"events"`
	LastUpdated string               `json:"last_updated,omitempty"`
}

// NewSeenCache returns an empty cache with a non-nil entries map.
func NewSeenCache() *SeenCache {
	return &SeenCache{Events: make(map[string]SeenEntry)}
}

// MonthCount is one archive index row: a YYYY-MM bucket and its event count.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// ArchiveIndex summarizes the full archive (archive-index.json). Months not
// touched by a given run are preserved across index rewrites.
type ArchiveIndex struct {
	Months      []MonthCount `json:"months"`
	TotalEvents int          `json:"total_events"`
	LastUpdated string       `json:"last_updated,omitempty"`
}

// ArtistCache maps lowercased artist names to their Ticketmaster-derived
// category (artist-cache.json). A nil value is a cached negative result so
// unknown artists are not re-queried every run.
type ArtistCache map[string]*string

// SpotifyEntry is one cached Spotify lookup result, positive or negative.
// A negative result has an empty SpotifyURL and records why via Source.
type SpotifyEntry struct {
	SpotifyURL string `json:"spotify_url,omitempty"`
	SpotifyID  string `json:"spotify_id,omitempty"`
	Source     string `json:"source"`
	UpdatedAt  string `json:"updated_at"`
}

// SpotifyCache is the persisted artist link cache (artist-spotify-cache.json),
// keyed by normalized artist name.
type SpotifyCache struct {
	ByName map[string]SpotifyEntry `json:"by_name"`
}

// NewSpotifyCache returns an empty cache with a non-nil map.
func NewSpotifyCache() *SpotifyCache {
	return &SpotifyCache{ByName: make(map[string]SpotifyEntry)}
}
