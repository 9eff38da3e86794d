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

	"github.com/tomtom215/gigwire/internal/enrich"
	"github.com/tomtom215/gigwire/internal/logging"
	"github.com/tomtom215/gigwire/internal/models"
	"github.com/tomtom215/gigwire/internal/scrape"
)

const (
	sfaBase      = "https://www.statefarmarena.com"
	sfaVenueName = "State Farm Arena"
	sfaMaxPages  = 10
)

// sfaCategoryPages maps the arena's listing sections to feed categories.
var sfaCategoryPages = []struct {
	path     string
	category string
}{
	{"/events/category/concerts", models.CategoryConcerts},
	{"/events/category/family-shows", models.CategoryMisc},
	{"/events/category/hawks", models.CategorySports},
	{"/events/category/other", models.CategoryMisc},
}

// sfaCategoryPriority resolves category conflicts when the same event shows
// up in multiple listing sections. Lower wins.
var sfaCategoryPriority = map[string]int{
	models.CategoryConcerts: 0,
	models.CategoryComedy:   1,
	models.CategoryBroadway: 2,
	models.CategorySports:   3,
	models.CategoryMisc:     4,
}

var sfaTimeRe = regexp.MustCompile(`(?i)(\d{1,2}:\d{2})\s*(AM|PM)`)

// StateFarm scrapes State Farm Arena's category listing pages with
// load-more pagination. Events appearing under multiple categories keep the
// highest-priority one.
type StateFarm struct {
	client *scrape.Client
	base   string
}

// NewStateFarm returns the State Farm Arena HTML scraper.
func NewStateFarm(client *scrape.Client) *StateFarm {
	return &StateFarm{client: client, base: sfaBase}
}

// Name implements scrape.Scraper.
func (s *StateFarm) Name() string { return sfaVenueName }

// sfaEvent carries per-card fields until cross-category deduplication.
type sfaEvent struct {
	name      string
	date      string
	endDate   string
	showTime  string
	detailURL string
	ticketURL string
	imageURL  string
	category  string
}

// Scrape walks every category section. A single section's failure degrades
// to the remaining sections rather than failing the venue; only zero
// sections succeeding is an error.
func (s *StateFarm) Scrape(ctx context.Context) ([]models.Event, error) {
	all := make(map[string]*sfaEvent)
	order := make([]string, 0, 64)
	sectionsOK := 0
	var lastErr error

	for _, section := range sfaCategoryPages {
		url := s.base + section.path
		pages := 0

		for url != "" && pages < sfaMaxPages {
			pageEvents, nextURL, err := s.scrapePage(ctx, url, section.category)
			if err != nil {
				lastErr = fmt.Errorf("section %s: %w", section.path, err)
				logging.Warn().Err(err).Str("section", section.path).Msg("State Farm Arena section failed")
				break
			}
			pages++

			for i := range pageEvents {
				e := pageEvents[i]
				key := e.detailURL
				if key == "" {
					key = e.ticketURL
				}
				if existing, ok := all[key]; ok {
					if sfaCategoryPriority[section.category] < sfaCategoryPriority[existing.category] {
						existing.category = section.category
					}
					continue
				}
				all[key] = &e
				order = append(order, key)
			}
			url = nextURL
		}

		if pages > 0 {
			sectionsOK++
		}
	}

	if sectionsOK == 0 {
		return nil, fmt.Errorf("all listing sections failed: %w", lastErr)
	}

	events := make([]models.Event, 0, len(order))
	for _, key := range order {
		e := all[key]
		events = append(events, models.Event{
			Venue:     sfaVenueName,
			Date:      e.date,
			EndDate:   e.endDate,
			ShowTime:  e.showTime,
			Artists:   []models.Artist{{Name: e.name}},
			TicketURL: e.ticketURL,
			InfoURL:   e.detailURL,
			ImageURL:  e.imageURL,
			Category:  e.category,
		})
	}
	return events, nil
}

func (s *StateFarm) scrapePage(ctx context.Context, url, category string) ([]sfaEvent, string, error) {
	doc, err := s.client.GetDocument(ctx, url, nil)
	if err != nil {
		return nil, "", err
	}

	var events []sfaEvent
	doc.Find(".eventItem").Each(func(_ int, card *goquery.Selection) {
		name := strings.TrimSpace(card.Find(".title a").First().Text())
		if name == "" {
			name = strings.TrimSpace(card.Find(".title").First().Text())
		}
		if name == "" {
			return
		}

		detailURL, _ := card.Find("a.more, a[href*='/events/detail/']").First().Attr("href")
		detailURL = absoluteURL(sfaBase, detailURL)

		ticketURL, _ := card.Find("a.tickets, a[href*='ticketmaster']").First().Attr("href")
		if ticketURL == "" {
			ticketURL = detailURL
		}
		if ticketURL == "" {
			return
		}

		startDate, endDate := parseSFADate(card.Find(".date").First())
		if startDate == "" {
			return
		}
		if endDate == startDate {
			endDate = ""
		}

		showTime := ""
		if timeText := strings.TrimSpace(card.Find(".meta .time").First().Text()); timeText != "" {
			if m := sfaTimeRe.FindStringSubmatch(timeText); m != nil {
				showTime = NormalizeTime(m[1] + m[2])
			}
		}

		imageURL := ""
		if img := card.Find(".thumb img, img").First(); img.Length() > 0 {
			imageURL, _ = img.Attr("src")
			if imageURL == "" {
				imageURL, _ = img.Attr("data-src")
			}
			imageURL = absoluteURL(sfaBase, imageURL)
		}

		final := category
		if category == models.CategoryMisc {
			if detected := enrich.DetectCategoryFromText(name); detected != "" {
				final = detected
			} else if detected := enrich.DetectCategoryFromTicketURL(ticketURL); detected != "" {
				final = detected
			}
		}

		events = append(events, sfaEvent{
			name:      name,
			date:      startDate,
			endDate:   endDate,
			showTime:  showTime,
			detailURL: detailURL,
			ticketURL: ticketURL,
			imageURL:  imageURL,
			category:  final,
		})
	})

	nextURL := ""
	if href, ok := doc.Find("a.loadMore, a[href*='/events/index/']").First().Attr("href"); ok && href != "" {
		nextURL = absoluteURL(sfaBase, href)
	}
	return events, nextURL, nil
}

// parseSFADate reads the arena's structured date markup: either a single
// date or a first/last range.
func parseSFADate(dateDiv *goquery.Selection) (string, string) {
	if dateDiv.Length() == 0 {
		return "", ""
	}

	parse := func(month, day, year string) (time.Time, bool) {
		t, err := time.Parse("Jan 2, 2006", fmt.Sprintf("%s %s, %s", month, day, year))
		return t, err == nil
	}
	pick := func(sel *goquery.Selection, class string) string {
		return strings.TrimSpace(sel.Find(class).First().Text())
	}

	if single := dateDiv.Find(".m-date__singleDate").First(); single.Length() > 0 {
		month, day, year := pick(single, ".m-date__month"), pick(single, ".m-date__day"), pick(single, ".m-date__year")
		if t, ok := parse(month, day, year); ok {
			d := t.Format("2006-01-02")
			return d, d
		}
	}

	rangeFirst := dateDiv.Find(".m-date__rangeFirst").First()
	if rangeFirst.Length() == 0 {
		return "", ""
	}
	month, day := pick(rangeFirst, ".m-date__month"), pick(rangeFirst, ".m-date__day")
	year := pick(rangeFirst, ".m-date__year")
	if year == "" {
		year = pick(dateDiv, ".m-date__year")
	}
	start, ok := parse(month, day, year)
	if !ok {
		return "", ""
	}
	startDate := start.Format("2006-01-02")
	endDate := startDate

	if rangeLast := dateDiv.Find(".m-date__rangeLast").First(); rangeLast.Length() > 0 {
		endMonth := pick(rangeLast, ".m-date__month")
		if endMonth == "" {
			endMonth = month
		}
		endDay := pick(rangeLast, ".m-date__day")
		endYear := pick(rangeLast, ".m-date__year")
		if endYear == "" {
			endYear = year
		}
		if endDay != "" {
			if end, ok := parse(endMonth, endDay, endYear); ok {
				endDate = end.Format("2006-01-02")
			}
		}
	}
	return startDate, endDate
}
