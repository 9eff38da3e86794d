// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package venues

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/tomtom215/gigwire/internal/models"
	"github.com/tomtom215/gigwire/internal/scrape"
)

const (
	masqueradeBase      = "https://www.masqueradeatlanta.com"
	masqueradeVenueName = "The Masquerade"
)

// MasqueradeStages are the in-house rooms. The listing page also promotes
// shows at external venues, which are filtered out.
var MasqueradeStages = []string{"Heaven", "Hell", "Purgatory", "Altar"}

var (
	masqueradeTimeRe    = regexp.MustCompile(`(?i)(\d{1,2}:\d{2})\s*(am|pm)`)
	masqueradeSupportRe = regexp.MustCompile(`,\s*|\s+&\s+|\s+and\s+`)
	masqueradeImageRe   = regexp.MustCompile(`url\(['"]?([^'")]+)['"]?\)`)
)

// Masquerade scrapes The Masquerade's HTML event listing.
type Masquerade struct {
	client *scrape.Client
}

// NewMasquerade returns The Masquerade scraper.
func NewMasquerade(client *scrape.Client) *Masquerade {
	return &Masquerade{client: client}
}

// Name implements scrape.Scraper.
func (m *Masquerade) Name() string { return masqueradeVenueName }

// Scrape parses the single events page.
func (m *Masquerade) Scrape(ctx context.Context) ([]models.Event, error) {
	doc, err := m.client.GetDocument(ctx, masqueradeBase+"/events/", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch events page: %w", err)
	}

	var events []models.Event
	doc.Find("article.event").Each(func(_ int, article *goquery.Selection) {
		if e, ok := m.parseArticle(article); ok {
			events = append(events, e)
		}
	})
	return events, nil
}

func (m *Masquerade) parseArticle(article *goquery.Selection) (models.Event, bool) {
	venueText := strings.TrimSpace(article.Find(".js-listVenue").First().Text())
	if venueText == "" {
		return models.Event{}, false
	}
	stage := ""
	for _, s := range MasqueradeStages {
		if strings.Contains(venueText, s) {
			stage = s
			break
		}
	}
	if stage == "" {
		return models.Event{}, false
	}

	dateEl := article.Find(".eventStartDate").First()
	if dateEl.Length() == 0 {
		return models.Event{}, false
	}

	eventDate, doorsTime := "", ""
	if content, ok := dateEl.Attr("content"); ok && content != "" {
		// "November 30, 2025 6:00 pm"
		for _, layout := range []string{"January 2, 2006 3:04 pm", "January 2, 2006 3:04 PM"} {
			if t, err := time.Parse(layout, content); err == nil {
				eventDate = t.Format("2006-01-02")
				doorsTime = t.Format("15:04")
				break
			}
		}
	}
	if eventDate == "" {
		month := strings.TrimSpace(dateEl.Find(".eventStartDate__month").First().Text())
		day := strings.TrimSpace(dateEl.Find(".eventStartDate__date").First().Text())
		year := strings.TrimSpace(dateEl.Find(".eventStartDate__year").First().Text())
		if month == "" || day == "" || year == "" {
			return models.Event{}, false
		}
		t, err := time.Parse("Jan 2, 2006", fmt.Sprintf("%s %s, %s", month, day, year))
		if err != nil {
			return models.Event{}, false
		}
		eventDate = t.Format("2006-01-02")
	}

	if doorsTime == "" {
		// "Doors 7:00 pm / All Ages"
		if timeText := strings.TrimSpace(article.Find(".time-show").First().Text()); timeText != "" {
			if m := masqueradeTimeRe.FindStringSubmatch(timeText); m != nil {
				doorsTime = NormalizeTime(m[1] + m[2])
			}
		}
	}

	headliner := strings.TrimSpace(article.Find(".eventHeader__title").First().Text())
	if headliner == "" {
		return models.Event{}, false
	}

	artists := []models.Artist{{Name: headliner}}
	if supportText := strings.TrimSpace(article.Find(".eventHeader__support").First().Text()); supportText != "" {
		for _, act := range masqueradeSupportRe.Split(supportText, -1) {
			act = strings.TrimSpace(act)
			if act != "" && act != headliner {
				artists = append(artists, models.Artist{Name: act})
			}
		}
	}

	ticketURL, _ := article.Find("a.btn-purple, a[itemprop='url']").First().Attr("href")
	if ticketURL == "" {
		ticketURL, _ = article.Find("a.wrapperLink").First().Attr("href")
	}
	if ticketURL == "" {
		return models.Event{}, false
	}

	detailURL, _ := article.Find("a.wrapperLink, a[href*='/events/']").First().Attr("href")
	detailURL = absoluteURL(masqueradeBase, detailURL)

	imageURL := ""
	if style, ok := article.Find(".event--featuredImage").First().Attr("style"); ok {
		if m := masqueradeImageRe.FindStringSubmatch(style); m != nil {
			imageURL = m[1]
		}
	}

	return models.Event{
		Venue:     masqueradeVenueName,
		Stage:     stage,
		Date:      eventDate,
		DoorsTime: doorsTime,
		Artists:   artists,
		TicketURL: ticketURL,
		InfoURL:   detailURL,
		ImageURL:  imageURL,
		Category:  models.DefaultCategory,
	}, true
}
