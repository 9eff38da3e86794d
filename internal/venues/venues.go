// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

// Package venues implements the per-venue scrapers. Each scraper normalizes
// its source (HTML page, JSON API, or GraphQL endpoint) into the shared
// event record; reconciliation, enrichment, and persistence happen
// downstream in the pipeline.
package venues

import "strings"

// SpotifyRecorder receives artist Spotify links a scraper happens to see in
// its source data, so the enrichment cache can be warmed opportunistically.
// May be nil.
type SpotifyRecorder func(artistName, spotifyURL string)

// absoluteURL resolves a possibly-relative href against a site base.
func absoluteURL(base, href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return base + href
}
