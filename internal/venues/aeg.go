// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package venues

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/gigwire/internal/models"
	"github.com/tomtom215/gigwire/internal/scrape"
)

// AEG venue blob IDs in the shared events JSON store.
const (
	aegBlobURLFormat = "https://aegwebprod.blob.core.windows.net/json/events/%d/events.json"

	aegTerminalWestID     = 211
	aegTheEasternID       = 127
	aegVarietyPlayhouseID = 214
)

// aegResponse is the shared AEG events feed shape.
type aegResponse struct {
	Events []aegEvent `json:"events"`
}

type aegEvent struct {
	EventDateTime string `json:"eventDateTime"`
	DoorDateTime  string `json:"doorDateTime"`
	Title         struct {
		HeadlinersText string `json:"headlinersText"`
		SupportingText string `json:"supportingText"`
	} `json:"title"`
	Ticketing struct {
		URL string `json:"url"`
	} `json:"ticketing"`
	TicketPriceLow  string              `json:"ticketPriceLow"`
	TicketPriceHigh string              `json:"ticketPriceHigh"`
	Media           map[string]aegMedia `json:"media"`
}

type aegMedia struct {
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
}

// AEG scrapes one venue from AEG's shared JSON event store. Terminal West,
// The Eastern, and Variety Playhouse all publish through it under different
// blob IDs.
type AEG struct {
	client    *scrape.Client
	venueName string
	url       string
}

// NewAEG returns a scraper for one AEG venue blob.
func NewAEG(client *scrape.Client, venueName string, blobID int) *AEG {
	return &AEG{
		client:    client,
		venueName: venueName,
		url:       fmt.Sprintf(aegBlobURLFormat, blobID),
	}
}

// NewTerminalWest returns the Terminal West scraper.
func NewTerminalWest(client *scrape.Client) *AEG {
	return NewAEG(client, "Terminal West", aegTerminalWestID)
}

// NewTheEastern returns The Eastern scraper.
func NewTheEastern(client *scrape.Client) *AEG {
	return NewAEG(client, "The Eastern", aegTheEasternID)
}

// NewVarietyPlayhouse returns the Variety Playhouse scraper.
func NewVarietyPlayhouse(client *scrape.Client) *AEG {
	return NewAEG(client, "Variety Playhouse", aegVarietyPlayhouseID)
}

// Name implements scrape.Scraper.
func (a *AEG) Name() string { return a.venueName }

// Scrape fetches and transforms the venue's event blob.
func (a *AEG) Scrape(ctx context.Context) ([]models.Event, error) {
	var resp aegResponse
	if err := a.client.GetJSON(ctx, a.url, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch events blob: %w", err)
	}

	events := make([]models.Event, 0, len(resp.Events))
	for _, raw := range resp.Events {
		// Undated or TBD entries can't be slugged or archived.
		if raw.EventDateTime == "" || strings.Contains(raw.EventDateTime, "TBD") {
			continue
		}
		if len(raw.EventDateTime) < 16 {
			continue
		}

		var artists []models.Artist
		if raw.Title.HeadlinersText != "" {
			artists = append(artists, models.Artist{Name: raw.Title.HeadlinersText})
		}
		if raw.Title.SupportingText != "" {
			artists = append(artists, models.Artist{Name: raw.Title.SupportingText})
		}

		low, high := raw.TicketPriceLow, raw.TicketPriceHigh
		if low == "" {
			low = "$0.00"
		}
		if high == "" {
			high = "$0.00"
		}
		price := low
		if low != high {
			price = low + " - " + high
		}

		doors := ""
		if i := strings.Index(raw.DoorDateTime, "T"); i >= 0 && len(raw.DoorDateTime) >= i+6 {
			doors = raw.DoorDateTime[i+1 : i+6]
		}
		show := raw.EventDateTime[11:16]

		// The feed offers several renditions per image; 678px wide is the
		// card size the site itself uses.
		imageURL := ""
		for _, m := range raw.Media {
			if m.Width == 678 {
				imageURL = m.FileName
				break
			}
		}

		events = append(events, models.Event{
			Venue:     a.venueName,
			Date:      raw.EventDateTime[:10],
			DoorsTime: NormalizeTime(doors),
			ShowTime:  NormalizeTime(show),
			Artists:   artists,
			TicketURL: raw.Ticketing.URL,
			ImageURL:  imageURL,
			Price:     price,
			Category:  models.DefaultCategory,
		})
	}

	return events, nil
}
