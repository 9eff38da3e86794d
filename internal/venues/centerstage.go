// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package venues

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/gigwire/internal/enrich"
	"github.com/tomtom215/gigwire/internal/models"
	"github.com/tomtom215/gigwire/internal/scrape"
)

const (
	centerStageAPI       = "https://www.centerstage-atlanta.com/wp-json/centerstage/v2/events/"
	centerStageVenueName = "Center Stage"
	centerStagePageSize  = 20
	centerStageMaxPages  = 20
)

// centerStageStages maps the API's venue_room values to stage names. The
// complex is three rooms under one roof.
var centerStageStages = map[string]string{
	"center_stage": "Main",
	"the_loft":     "The Loft",
	"vinyl":        "Vinyl",
}

type centerStageEvent struct {
	Title         string `json:"title"`
	EventDate     string `json:"event_date"` // YYYYMMDD
	DoorTime      string `json:"door_time"`
	ShowTime      string `json:"show_time"`
	EventURL      string `json:"event_url"`
	EventImage    string `json:"event_image"`
	Permalink     string `json:"permalink"`
	ExternalVenue string `json:"external_venue"`
	VenueRoom     struct {
		Value string `json:"value"`
	} `json:"venue_room"`
}

// CenterStage scrapes the Center Stage complex's WordPress REST API.
type CenterStage struct {
	client *scrape.Client
	api    string
}

// NewCenterStage returns the Center Stage REST scraper.
func NewCenterStage(client *scrape.Client) *CenterStage {
	return &CenterStage{client: client, api: centerStageAPI}
}

// Name implements scrape.Scraper.
func (c *CenterStage) Name() string { return centerStageVenueName }

// Scrape pages the REST API until a short or empty page.
func (c *CenterStage) Scrape(ctx context.Context) ([]models.Event, error) {
	var events []models.Event

	for page := 1; page <= centerStageMaxPages; page++ {
		url := fmt.Sprintf("%s?page=%d", c.api, page)

		var raw []centerStageEvent
		if err := c.client.GetJSON(ctx, url, nil, &raw); err != nil {
			if page == 1 {
				return nil, fmt.Errorf("fetch page 1: %w", err)
			}
			// The API answers past-the-end pages with a bare string, which
			// fails list decoding. Either way there are no more events.
			break
		}
		if len(raw) == 0 {
			break
		}

		for _, item := range raw {
			if e, ok := c.transform(item); ok {
				events = append(events, e)
			}
		}

		if len(raw) < centerStagePageSize {
			break
		}
	}

	return events, nil
}

func (c *CenterStage) transform(item centerStageEvent) (models.Event, bool) {
	if item.ExternalVenue != "" {
		return models.Event{}, false
	}

	stage, ok := centerStageStages[strings.ToLower(item.VenueRoom.Value)]
	if !ok {
		return models.Event{}, false
	}

	if len(item.EventDate) != 8 {
		return models.Event{}, false
	}
	date, err := time.Parse("20060102", item.EventDate)
	if err != nil {
		return models.Event{}, false
	}

	title := strings.TrimSpace(item.Title)
	if title == "" || item.EventURL == "" {
		return models.Event{}, false
	}

	category := enrich.DetectCategoryFromText(title)
	if category == "" {
		category = models.CategoryConcerts
	}

	return models.Event{
		Venue:     centerStageVenueName,
		Stage:     stage,
		Date:      date.Format("2006-01-02"),
		DoorsTime: NormalizeTime(item.DoorTime),
		ShowTime:  NormalizeTime(item.ShowTime),
		Artists:   []models.Artist{{Name: title}},
		TicketURL: item.EventURL,
		InfoURL:   item.Permalink,
		ImageURL:  item.EventImage,
		Category:  category,
	}, true
}
