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

	"github.com/PuerkitoBio/goquery"

	"github.com/tomtom215/gigwire/internal/models"
	"github.com/tomtom215/gigwire/internal/scrape"
)

const (
	earlBase      = "https://badearl.com/show-calendar/"
	earlVenueName = "The Earl"
)

// earlHeaders mimics a desktop browser; the site's CDN rejects obviously
// programmatic clients.
var earlHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"Connection":      "keep-alive",
}

// Earl scrapes The Earl's paginated show calendar.
type Earl struct {
	client *scrape.Client
	base   string
}

// NewEarl returns The Earl scraper.
func NewEarl(client *scrape.Client) *Earl {
	return &Earl{client: client, base: earlBase}
}

// Name implements scrape.Scraper.
func (e *Earl) Name() string { return earlVenueName }

// Scrape walks the show calendar page by page until the site reports no
// more results.
func (e *Earl) Scrape(ctx context.Context) ([]models.Event, error) {
	var events []models.Event

	for page := 1; ; page++ {
		url := e.base
		if page > 1 {
			url = fmt.Sprintf("%s?sf_paged=%d", e.base, page)
		}

		body, err := e.client.Get(ctx, url, earlHeaders)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("fetch calendar: %w", err)
			}
			// A mid-pagination failure keeps what we have; the merge
			// engine preserves anything we missed from the prior feed.
			break
		}
		if strings.Contains(string(body), "No results found.") {
			break
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
		if err != nil {
			return nil, fmt.Errorf("parse page %d: %w", page, err)
		}
		events = append(events, e.parsePage(doc)...)
	}

	return events, nil
}

// parsePage extracts the show cards from one calendar page.
func (e *Earl) parsePage(doc *goquery.Document) []models.Event {
	var events []models.Event

	doc.Find("div.cl-layout__item").Each(func(_ int, card *goquery.Selection) {
		dateText := strings.TrimSpace(card.Find("p.show-listing-date").First().Text())
		if dateText == "" {
			return
		}
		// "Friday, Feb. 13, 2026"
		date, err := time.Parse("Monday, Jan. 2, 2006", dateText)
		if err != nil {
			return
		}

		var times []string
		card.Find("p.show-listing-time").Each(func(_ int, t *goquery.Selection) {
			times = append(times, strings.TrimSpace(t.Text()))
		})
		doors, show := "", ""
		if len(times) > 0 {
			doors = strings.Fields(times[0])[0]
		}
		if len(times) > 1 {
			show = strings.Fields(times[1])[0]
		}

		adv, dos := "", ""
		card.Find("p.show-listing-price").Each(func(_ int, p *goquery.Selection) {
			text := strings.TrimSpace(p.Text())
			switch {
			case strings.Contains(text, "ADV") && adv == "":
				adv = text
			case strings.Contains(text, "DOS") && dos == "":
				dos = text
			}
		})

		var artists []models.Artist
		card.Find("div.show-listing-headliner").Each(func(_ int, h *goquery.Selection) {
			if name := strings.TrimSpace(h.Text()); name != "" {
				artists = append(artists, models.Artist{Name: name})
			}
		})
		card.Find("div.show-listing-support").Each(func(_ int, s *goquery.Selection) {
			if name := strings.TrimSpace(s.Text()); name != "" {
				artists = append(artists, models.Artist{Name: name})
			}
		})

		ticketURL, infoURL := "", ""
		card.Find("a").Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok {
				return
			}
			switch strings.TrimSpace(a.Text()) {
			case "TIX":
				if ticketURL == "" {
					ticketURL = href
				}
			case "More Info":
				if infoURL == "" {
					infoURL = href
				}
			}
		})

		imageURL, _ := card.Find("div.cl-element-featured_media img").First().Attr("src")

		events = append(events, models.Event{
			Venue:     earlVenueName,
			Date:      date.Format("2006-01-02"),
			DoorsTime: NormalizeTime(doors),
			ShowTime:  NormalizeTime(show),
			Artists:   artists,
			AdvPrice:  adv,
			DosPrice:  dos,
			TicketURL: ticketURL,
			InfoURL:   infoURL,
			ImageURL:  imageURL,
			Category:  models.DefaultCategory,
		})
	})

	return events
}
