// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package venues

import (
	"github.com/tomtom215/gigwire/internal/logging"
	"github.com/tomtom215/gigwire/internal/scrape"
)

// RegistryOptions selects and parameterizes the scraper set.
type RegistryOptions struct {
	// LiveNationAPIKey authenticates the Tabernacle and Coca-Cola Roxy
	// GraphQL scrapers.
	LiveNationAPIKey string

	// TMAPIKey, when set, switches State Farm Arena, The Masquerade, and
	// the Center Stage complex from HTML scraping to the Discovery API.
	TMAPIKey string

	// FoxFallback supplies previously persisted Fox Theatre events when
	// the site's session bootstrap fails outright.
	FoxFallback EventFallback

	// SpotifyRecorder is handed to scrapers whose sources carry artist
	// Spotify links. May be nil.
	SpotifyRecorder SpotifyRecorder

	// WrapBreaker wraps every scraper in a circuit breaker. Daemon mode
	// sets this so a broken venue site stops being hammered every cycle;
	// one-shot runs leave it off.
	WrapBreaker bool
}

// Registry returns the full scraper set in stable venue order.
func Registry(client *scrape.Client, opts RegistryOptions) []scrape.Scraper {
	scrapers := []scrape.Scraper{
		NewEarl(client),
		NewTerminalWest(client),
		NewTheEastern(client),
		NewVarietyPlayhouse(client),
		NewLiveNation(client, "Tabernacle", TabernacleVenueID, opts.LiveNationAPIKey),
		NewLiveNation(client, "Coca-Cola Roxy", RoxyVenueID, opts.LiveNationAPIKey),
		NewFox(client, opts.FoxFallback),
		NewMBS(client),
	}

	if opts.TMAPIKey != "" {
		logging.Info().Msg("registry: using Ticketmaster Discovery API for TM-ticketed venues")
		scrapers = append(scrapers,
			NewStateFarmTM(client, opts.TMAPIKey, opts.SpotifyRecorder),
			NewMasqueradeTM(client, opts.TMAPIKey, opts.SpotifyRecorder),
			NewCenterStageTM(client, opts.TMAPIKey, opts.SpotifyRecorder),
		)
	} else {
		scrapers = append(scrapers,
			NewStateFarm(client),
			NewMasquerade(client),
			NewCenterStage(client),
		)
	}

	if opts.WrapBreaker {
		for i, s := range scrapers {
			scrapers[i] = scrape.NewBreakerScraper(s)
		}
	}
	return scrapers
}
