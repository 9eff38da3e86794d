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
	"golang.org/x/net/html"

	"github.com/tomtom215/gigwire/internal/enrich"
	"github.com/tomtom215/gigwire/internal/models"
	"github.com/tomtom215/gigwire/internal/scrape"
)

const (
	mbsBase      = "https://www.mercedesbenzstadium.com"
	mbsVenueName = "Mercedes-Benz Stadium"
)

// mbsCategoryMap translates the site's event tags to feed categories.
var mbsCategoryMap = map[string]string{
	"sports":              models.CategorySports,
	"concert":             models.CategoryConcerts,
	"other":               models.CategoryMisc,
	"conference":          models.CategoryMisc,
	"home depot backyard": models.CategoryMisc,
}

// mbsTeams drives the next-home-game blocks for the stadium's two tenants.
var mbsTeams = []struct {
	class       string
	titlePrefix string
	logoPattern string
}{
	{"falcons", "Atlanta Falcons vs. ", "falcons"},
	{"united", "Atlanta United vs. ", "AU_Primary"},
}

var mbsTimeRe = regexp.MustCompile(`(?i)(\d{1,2}:\d{2})\s*(am|pm)`)

// MBS scrapes Mercedes-Benz Stadium: regular event cards plus the Falcons
// and Atlanta United next-home-game teasers, which are not in the card list.
type MBS struct {
	client *scrape.Client
}

// NewMBS returns the Mercedes-Benz Stadium scraper.
func NewMBS(client *scrape.Client) *MBS {
	return &MBS{client: client}
}

// Name implements scrape.Scraper.
func (m *MBS) Name() string { return mbsVenueName }

// Scrape parses the events page.
func (m *MBS) Scrape(ctx context.Context) ([]models.Event, error) {
	doc, err := m.client.GetDocument(ctx, mbsBase+"/events", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch events page: %w", err)
	}

	var events []models.Event
	seen := make(map[string]struct{})

	doc.Find("div.events--item.w-dyn-item").Each(func(_ int, card *goquery.Selection) {
		if e, ok := m.parseCard(card, seen); ok {
			events = append(events, e)
		}
	})

	for _, team := range mbsTeams {
		if e, ok := m.parseTeamBlock(doc, team.class, team.titlePrefix, team.logoPattern, events); ok {
			events = append(events, e)
		}
	}

	return events, nil
}

func (m *MBS) parseCard(card *goquery.Selection, seen map[string]struct{}) (models.Event, bool) {
	title := strings.TrimSpace(card.Find("h3").First().Text())
	if title == "" {
		return models.Event{}, false
	}

	rawCategory := strings.ToLower(strings.TrimSpace(card.Find("div.events_tags--item.w-dyn-item").First().Text()))
	if rawCategory == "" {
		rawCategory = "other"
	}
	category, ok := mbsCategoryMap[rawCategory]
	if !ok {
		category = models.CategoryMisc
	}

	details := card.Find("div.events_feature_details_dt")
	dateStr := strings.TrimSpace(details.Eq(0).Text())
	timeStr := strings.TrimSpace(details.Eq(1).Text())

	eventDate := ""
	for _, layout := range []string{"January 2, 2006", "January 2006"} {
		if t, err := time.Parse(layout, dateStr); err == nil {
			eventDate = t.Format("2006-01-02")
			break
		}
	}
	if eventDate == "" {
		return models.Event{}, false
	}

	showTime := ""
	upper := strings.ToUpper(timeStr)
	if timeStr != "" && upper != "TBD" && upper != "TBA" {
		if match := mbsTimeRe.FindStringSubmatch(timeStr); match != nil {
			showTime = NormalizeTime(match[1] + match[2])
		}
	}

	detailURL, _ := card.Find("a.btn--3[href*='/events/']").First().Attr("href")
	detailURL = absoluteURL(mbsBase, detailURL)

	ticketURL, _ := card.Find("a.btn--1").First().Attr("href")
	if ticketURL == "" {
		ticketURL = detailURL
	}
	if ticketURL == "" {
		return models.Event{}, false
	}

	key := detailURL
	if key == "" {
		key = ticketURL
	}
	if _, dup := seen[key]; dup {
		return models.Event{}, false
	}
	seen[key] = struct{}{}

	imageURL := ""
	if img := card.Find("img.event_image").First(); img.Length() > 0 {
		imageURL, _ = img.Attr("src")
		if imageURL == "" {
			imageURL, _ = img.Attr("data-src")
		}
		imageURL = absoluteURL(mbsBase, imageURL)
	}

	if category == models.CategoryMisc {
		if detected := enrich.DetectCategoryFromText(title); detected != "" {
			category = detected
		} else if detected := enrich.DetectCategoryFromTicketURL(ticketURL); detected != "" {
			category = detected
		}
	}

	return models.Event{
		Venue:     mbsVenueName,
		Date:      eventDate,
		ShowTime:  showTime,
		Artists:   []models.Artist{{Name: title}},
		TicketURL: ticketURL,
		InfoURL:   detailURL,
		ImageURL:  imageURL,
		Category:  category,
	}, true
}

// parseTeamBlock extracts a team's next-home-game teaser. The block is a
// loose text pile, so the opponent and date are fished out of its segments.
func (m *MBS) parseTeamBlock(doc *goquery.Document, class, titlePrefix, logoPattern string, existing []models.Event) (models.Event, bool) {
	block := doc.Find("div.events_game--item." + class).First()
	if block.Length() == 0 {
		return models.Event{}, false
	}

	teamLogo := ""
	block.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		if src, ok := img.Attr("src"); ok && strings.Contains(src, logoPattern) {
			teamLogo = src
			return false
		}
		return true
	})

	text := strings.ReplaceAll(blockText(block), " ", " ")
	parts := strings.Split(text, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	opponent := ""
	for i, part := range parts {
		upper := strings.ToUpper(part)
		if strings.Contains(upper, "NEXT") && strings.Contains(upper, "HOME") {
			if i+1 < len(parts) {
				opponent = parts[i+1]
				if idx := strings.LastIndex(opponent, "vs."); idx >= 0 {
					opponent = strings.TrimSpace(opponent[idx+len("vs."):])
				}
			}
			break
		}
	}
	if opponent == "" {
		return models.Event{}, false
	}

	gameDate, gameTime := "", ""
	for _, part := range parts {
		if gameDate == "" {
			for _, layout := range []string{"January 2, 2006", "Jan 2, 2006"} {
				if t, err := time.Parse(layout, part); err == nil {
					gameDate = t.Format("2006-01-02")
					break
				}
			}
		}
		if gameTime == "" {
			if match := mbsTimeRe.FindStringSubmatch(part); match != nil {
				gameTime = NormalizeTime(match[1] + match[2])
			}
		}
	}
	if gameDate == "" {
		return models.Event{}, false
	}

	title := titlePrefix + opponent
	for _, e := range existing {
		if e.Date == gameDate && len(e.Artists) > 0 && strings.Contains(e.Artists[0].Name, title) {
			return models.Event{}, false
		}
	}

	ticketURL, _ := block.Find("a[href*='ticketmaster'], a[href*='tickets']").First().Attr("href")

	return models.Event{
		Venue:     mbsVenueName,
		Date:      gameDate,
		ShowTime:  gameTime,
		Artists:   []models.Artist{{Name: title}},
		TicketURL: ticketURL,
		ImageURL:  teamLogo,
		Category:  models.CategorySports,
	}, true
}

// blockText joins every text node under the selection with pipe separators,
// which is how the teaser's fields are split for parsing.
func blockText(sel *goquery.Selection) string {
	var parts []string
	for _, node := range sel.Nodes {
		collectText(node, &parts)
	}
	return strings.Join(parts, " | ")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
