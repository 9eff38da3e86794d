// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

// Package enrich fills in event metadata that no single venue source
// provides: category classification (keyword heuristics plus the
// Ticketmaster attractions API) and Spotify artist links.
package enrich

import (
	"strings"

	"github.com/tomtom215/gigwire/internal/models"
)

// Keyword tables for category detection. Checked in priority order:
// sports beats comedy beats concerts, because sports titles often contain
// tour-like words ("championship tour").
var (
	sportsKeywords = []string{
		"sports",
		"basketball", "hoops", "hoopsgiving", "nba",
		"football", "nfl", "gridiron",
		"soccer", "mls", "fifa",
		"hockey", "nhl",
		"baseball", "mlb",
		"wrestling", "wwe", "aew", "raw", "smackdown",
		"boxing", "ufc", "mma", "fight night",
		"championship", "tournament", "playoffs",
		"vs",
	}

	comedyKeywords = []string{
		"comedy", "comedian", "stand-up", "standup", "improv", "laugh",
	}

	concertKeywords = []string{
		"concert", "concerts", "tour", "jam", "fest", "festival",
		"live music", "in concert",
	}
)

// DetectCategoryFromText classifies a title or URL-path fragment by keyword.
// Returns "" when no keyword matches.
func DetectCategoryFromText(text string) string {
	lower := strings.ToLower(text)

	for _, kw := range sportsKeywords {
		if strings.Contains(lower, kw) {
			return models.CategorySports
		}
	}
	for _, kw := range comedyKeywords {
		if strings.Contains(lower, kw) {
			return models.CategoryComedy
		}
	}
	for _, kw := range concertKeywords {
		if strings.Contains(lower, kw) {
			return models.CategoryConcerts
		}
	}
	return ""
}

// DetectCategoryFromTicketURL extracts a category hint from a Ticketmaster
// URL path: the segment before "/event/" often names the listing section.
func DetectCategoryFromTicketURL(ticketURL string) string {
	if ticketURL == "" || !strings.Contains(ticketURL, "ticketmaster.com") {
		return ""
	}
	if !strings.Contains(ticketURL, "/event/") {
		return ""
	}

	after := ticketURL[strings.Index(ticketURL, "ticketmaster.com/")+len("ticketmaster.com/"):]
	path := strings.SplitN(after, "/event/", 2)[0]
	if path == "" || path == "event" {
		return ""
	}
	return DetectCategoryFromText(strings.ReplaceAll(path, "-", " "))
}

// TMCategoryMap translates Ticketmaster classification names (segment or
// genre) into feed categories.
var TMCategoryMap = map[string]string{
	"Music":                 models.CategoryConcerts,
	"Sports":                models.CategorySports,
	"Arts & Theatre":        models.CategoryBroadway,
	"Film":                  models.CategoryMisc,
	"Miscellaneous":         models.CategoryMisc,
	"Comedy":                models.CategoryComedy,
	"Stand-Up":              models.CategoryComedy,
	"Theatre":               models.CategoryBroadway,
	"Musical":               models.CategoryBroadway,
	"Miscellaneous Theatre": models.CategoryMisc,
	"Basketball":            models.CategorySports,
	"Wrestling":             models.CategorySports,
	"Hockey":                models.CategorySports,
	"Football":              models.CategorySports,
}

// TMClassification is the classification block on Ticketmaster events and
// attractions.
type TMClassification struct {
	Segment TMNamed `json:"segment"`
	Genre   TMNamed `json:"genre"`
}

// TMNamed is a name-carrying Ticketmaster sub-object.
type TMNamed struct {
	Name string `json:"name"`
}

// MapTMClassification maps a classification hierarchy to a feed category.
// Genre wins over segment; the more specific name is the better signal.
func MapTMClassification(classifications []TMClassification) string {
	if len(classifications) == 0 {
		return models.CategoryConcerts
	}
	primary := classifications[0]
	if c, ok := TMCategoryMap[primary.Genre.Name]; ok {
		return c
	}
	if c, ok := TMCategoryMap[primary.Segment.Name]; ok {
		return c
	}
	return models.CategoryConcerts
}

// CategoryFromGenres derives the category from the headliner's genre text.
// Openers are ignored; a comedy opener on a rock bill is still a concert.
func CategoryFromGenres(artists []models.Artist) string {
	if len(artists) == 0 {
		return models.CategoryConcerts
	}
	genre := strings.ToLower(artists[0].Genre)

	for _, kw := range []string{"comedy", "stand-up", "standup", "comedian"} {
		if strings.Contains(genre, kw) {
			return models.CategoryComedy
		}
	}
	for _, kw := range []string{"theatre", "theater", "broadway", "musical"} {
		if strings.Contains(genre, kw) {
			return models.CategoryBroadway
		}
	}
	return models.CategoryConcerts
}
