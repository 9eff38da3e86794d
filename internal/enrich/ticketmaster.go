// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package enrich

import (
	"context"
	"net/url"
	"strings"

	"github.com/tomtom215/gigwire/internal/logging"
	"github.com/tomtom215/gigwire/internal/metrics"
	"github.com/tomtom215/gigwire/internal/models"
	"github.com/tomtom215/gigwire/internal/scrape"
)

// tmDiscoveryBase is the Discovery API root used for attraction lookups.
const tmDiscoveryBase = "https://app.ticketmaster.com/discovery/v2"

// Venues whose events already arrive with authoritative Ticketmaster
// classifications, so re-querying their headliners is wasted quota.
var tmClassifiedVenues = map[string]bool{
	"Center Stage":     true,
	"The Loft":         true,
	"Vinyl":            true,
	"State Farm Arena": true,
	"The Masquerade":   true,
}

type tmAttractionsResponse struct {
	Embedded struct {
		Attractions []struct {
			Name            string             `json:"name"`
			Classifications []TMClassification `json:"classifications"`
			ExternalLinks   map[string]any     `json:"externalLinks"`
		} `json:"attractions"`
	} `json:"_embedded"`
}

// Classifier refines event categories by looking headliners up as Discovery
// API attractions. Results are cached, including misses, so each unknown
// headliner costs one API call ever.
type Classifier struct {
	client *scrape.Client
	apiKey string
	base   string

	// LinkFound, when set, receives any Spotify link carried in an
	// attraction payload so it can be cached opportunistically.
	LinkFound func(artistName, spotifyURL string)
}

// NewClassifier builds a Classifier. A Classifier with an empty API key is
// inert: ClassifyEvents becomes a no-op.
func NewClassifier(client *scrape.Client, apiKey string) *Classifier {
	return &Classifier{client: client, apiKey: apiKey, base: tmDiscoveryBase}
}

// shouldClassify reports whether an event's headliner is worth a lookup.
// Events already carrying a genre or a non-default category keep what the
// scraper produced.
func shouldClassify(ev *models.Event) bool {
	if tmClassifiedVenues[ev.Venue] {
		return false
	}
	if len(ev.Artists) == 0 || ev.Artists[0].Name == "" {
		return false
	}
	if ev.Artists[0].Genre != "" {
		return false
	}
	return ev.Category == "" || ev.Category == models.CategoryConcerts
}

// ClassifyEvents updates Category in place for events whose headliner
// resolves to a non-concert Ticketmaster attraction. cache persists across
// runs; nil entries are remembered misses.
func (c *Classifier) ClassifyEvents(ctx context.Context, events []models.Event, cache models.ArtistCache) {
	if c.apiKey == "" || cache == nil {
		return
	}
	for i := range events {
		ev := &events[i]
		if !shouldClassify(ev) {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(ev.Artists[0].Name))
		category, ok := cache[key]
		if !ok {
			category = c.lookupAttraction(ctx, ev.Artists[0].Name)
			cache[key] = category
		} else {
			metrics.EnrichmentLookups.WithLabelValues("ticketmaster", "cache_hit").Inc()
		}

		if category != nil && *category != models.CategoryConcerts {
			ev.Category = *category
		}
	}
}

// lookupAttraction searches Discovery attractions by keyword and maps the
// best match's classification. A nil return is a cacheable miss.
func (c *Classifier) lookupAttraction(ctx context.Context, name string) *string {
	q := url.Values{}
	q.Set("keyword", name)
	q.Set("size", "1")
	q.Set("apikey", c.apiKey)

	var resp tmAttractionsResponse
	if err := c.client.GetJSON(ctx, c.base+"/attractions.json?"+q.Encode(), nil, &resp); err != nil {
		logging.Warn().Err(err).Str("artist", name).Msg("ticketmaster: attraction lookup failed")
		metrics.EnrichmentLookups.WithLabelValues("ticketmaster", "error").Inc()
		return nil
	}
	if len(resp.Embedded.Attractions) == 0 {
		metrics.EnrichmentLookups.WithLabelValues("ticketmaster", "miss").Inc()
		return nil
	}

	attr := resp.Embedded.Attractions[0]
	if c.LinkFound != nil {
		if raw, ok := attr.ExternalLinks["spotify"]; ok {
			if link := externalLinkURL(raw); link != "" {
				c.LinkFound(attr.Name, link)
			}
		}
	}

	if len(attr.Classifications) == 0 {
		metrics.EnrichmentLookups.WithLabelValues("ticketmaster", "miss").Inc()
		return nil
	}
	category := MapTMClassification(attr.Classifications)
	metrics.EnrichmentLookups.WithLabelValues("ticketmaster", "hit").Inc()
	return &category
}

// externalLinkURL unwraps the shapes Ticketmaster uses for externalLinks
// values: a bare string, an object with a url field, or a list of such
// objects.
func externalLinkURL(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case map[string]any:
		if u, ok := v["url"].(string); ok {
			return u
		}
	case []any:
		if len(v) > 0 {
			if m, ok := v[0].(map[string]any); ok {
				if u, ok := m["url"].(string); ok {
					return u
				}
			}
		}
	}
	return ""
}
