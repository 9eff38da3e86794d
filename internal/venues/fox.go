// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package venues

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-json"

	"github.com/tomtom215/gigwire/internal/logging"
	"github.com/tomtom215/gigwire/internal/models"
	"github.com/tomtom215/gigwire/internal/scrape"
)

const (
	foxBase      = "https://www.foxtheatre.org"
	foxVenueName = "Fox Theatre"
	foxPerPage   = 60
)

var foxHeaders = map[string]string{
	"Accept":           "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language":  "en-US,en;q=0.9",
	"X-Requested-With": "XMLHttpRequest",
	"Referer":          foxBase + "/events",
	"Origin":           foxBase,
}

// EventFallback supplies previously persisted events for a venue. Fox's AJAX
// endpoint fails outright on occasion; stale listings beat an empty feed.
type EventFallback func(venue string) []models.Event

// Fox scrapes the Fox Theatre AJAX event listing. The endpoint paginates by
// offset and returns JSON-encoded HTML fragments; a 406 means the session
// cookies have gone stale and need re-initializing against the events page.
type Fox struct {
	client   *scrape.Client
	fallback EventFallback
}

// NewFox returns the Fox Theatre scraper. fallback may be nil.
func NewFox(client *scrape.Client, fallback EventFallback) *Fox {
	return &Fox{client: client, fallback: fallback}
}

// Name implements scrape.Scraper.
func (f *Fox) Name() string { return foxVenueName }

// initSession primes cookies by visiting the events page. The AJAX endpoint
// rejects cookie-less requests.
func (f *Fox) initSession(ctx context.Context) error {
	if f.client.HTTPClient().Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return fmt.Errorf("build cookie jar: %w", err)
		}
		f.client.HTTPClient().Jar = jar
	}
	if _, err := f.client.Get(ctx, foxBase+"/events", foxHeaders); err != nil {
		return fmt.Errorf("init session: %w", err)
	}
	return nil
}

// Scrape walks the AJAX listing. On total failure it falls back to the
// previously persisted Fox events when a fallback source is wired.
func (f *Fox) Scrape(ctx context.Context) ([]models.Event, error) {
	events, err := f.scrapeAll(ctx)
	if err != nil {
		if f.fallback != nil {
			if cached := f.fallback(foxVenueName); len(cached) > 0 {
				logging.Warn().Err(err).Int("cached", len(cached)).Msg("Fox Theatre scrape failed; reusing persisted events")
				return cached, nil
			}
		}
		return nil, err
	}
	return events, nil
}

func (f *Fox) scrapeAll(ctx context.Context) ([]models.Event, error) {
	if err := f.initSession(ctx); err != nil {
		return nil, err
	}

	var events []models.Event
	seenURLs := make(map[string]struct{})
	offset := 0

	for {
		url := fmt.Sprintf(
			"%s/events/events_ajax/%d?category=0&venue=0&team=0&exclude=&per_page=%d&came_from_page=event-list-page",
			foxBase, offset, foxPerPage,
		)

		html, err := f.fetchFragment(ctx, url)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(html) == "" || !strings.Contains(html, `<div class="eventItem`) {
			break
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return nil, fmt.Errorf("parse fragment at offset %d: %w", offset, err)
		}

		cards := doc.Find("div.eventItem")
		if cards.Length() == 0 {
			break
		}

		cards.Each(func(_ int, card *goquery.Selection) {
			if e, ok := f.parseCard(card, seenURLs); ok {
				events = append(events, e)
			}
		})

		if cards.Length() < foxPerPage {
			break
		}
		offset += cards.Length()
	}

	return events, nil
}

// fetchFragment GETs one AJAX page, re-initializing the session on 406.
// The body is sometimes a JSON-encoded HTML string, sometimes raw HTML.
func (f *Fox) fetchFragment(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", fmt.Errorf("build request: %w", err)
		}
		for k, v := range foxHeaders {
			req.Header.Set(k, v)
		}

		body, status, err := f.client.Do(req)
		if err != nil {
			return "", err
		}
		if status == http.StatusNotAcceptable {
			lastErr = fmt.Errorf("http 406 from fox ajax endpoint")
			if err := f.initSession(ctx); err != nil {
				return "", err
			}
			continue
		}
		if status < 200 || status > 299 {
			return "", fmt.Errorf("http %d from fox ajax endpoint", status)
		}

		var decoded string
		if err := json.Unmarshal(body, &decoded); err == nil {
			return decoded, nil
		}
		return string(body), nil
	}
	return "", lastErr
}

var foxDateTextRe = regexp.MustCompile(`([A-Z][a-z]{2,}\s+\d+(?:-(?:[A-Z][a-z]{2,}\s+)?\d+)?,\s*\d{4})`)

func (f *Fox) parseCard(card *goquery.Selection, seenURLs map[string]struct{}) (models.Event, bool) {
	title := strings.TrimSpace(card.Find("h3.title a").First().Text())
	if title == "" {
		title = strings.TrimSpace(card.Find("h3.title").First().Text())
	}
	if title == "" {
		if t, ok := card.Find("a[title*='More Info']").First().Attr("title"); ok {
			title = strings.TrimPrefix(t, "More Info for ")
		}
	}
	if title == "" {
		return models.Event{}, false
	}

	detailURL, _ := card.Find("h3.title a, a.more, a[href*='/events/detail/']").First().Attr("href")
	if detailURL == "" {
		return models.Event{}, false
	}
	detailURL = absoluteURL(foxBase, detailURL)
	if _, dup := seenURLs[detailURL]; dup {
		return models.Event{}, false
	}
	seenURLs[detailURL] = struct{}{}

	dateText := f.extractDateText(card)
	if dateText == "" {
		return models.Event{}, false
	}
	startDate, endDate := ParseFoxDateRange(dateText)
	if startDate == "" {
		return models.Event{}, false
	}

	imageURL := ""
	if img := card.Find("div.thumb img, .thumb img, img").First(); img.Length() > 0 {
		imageURL, _ = img.Attr("src")
		if imageURL == "" {
			imageURL, _ = img.Attr("data-src")
		}
		imageURL = absoluteURL(foxBase, imageURL)
	}

	ticketURL, _ := card.Find("a.tickets, a[href*='evenue.net']").First().Attr("href")
	ticketURL = strings.TrimSpace(ticketURL)
	if ticketURL == "" {
		ticketURL = detailURL
	}

	category := models.CategoryMisc
	if classes, ok := card.Attr("class"); ok {
		for _, c := range strings.Fields(classes) {
			switch c {
			case models.CategoryBroadway, models.CategoryComedy, models.CategoryConcerts:
				category = c
			}
		}
	}

	e := models.Event{
		Venue:     foxVenueName,
		Date:      startDate,
		Artists:   []models.Artist{{Name: title}},
		TicketURL: ticketURL,
		InfoURL:   detailURL,
		ImageURL:  imageURL,
		Category:  category,
	}
	if endDate != startDate {
		e.EndDate = endDate
	}
	return e, true
}

// extractDateText rebuilds the display date from the card's structured date
// spans, falling back to a regex over the card text.
func (f *Fox) extractDateText(card *goquery.Selection) string {
	dateDiv := card.Find("div.date").First()
	if dateDiv.Length() > 0 {
		month := strings.TrimSpace(dateDiv.Find(".m-date__month").First().Text())
		day := strings.TrimSpace(dateDiv.Find(".m-date__day").First().Text())
		year := strings.TrimSpace(dateDiv.Find(".m-date__year").First().Text())

		if month != "" && day != "" && year != "" {
			rangeLast := dateDiv.Find(".m-date__rangeLast").First()
			if rangeLast.Length() > 0 {
				endMonth := strings.TrimSpace(rangeLast.Find(".m-date__month").First().Text())
				endDay := strings.TrimSpace(rangeLast.Find(".m-date__day").First().Text())
				sep := ""
				if endMonth != "" {
					sep = endMonth + " "
				}
				return fmt.Sprintf("%s %s-%s%s%s", month, day, sep, endDay, year)
			}
			return fmt.Sprintf("%s %s%s", month, day, year)
		}
		return strings.TrimSpace(dateDiv.Text())
	}

	if m := foxDateTextRe.FindString(card.Text()); m != "" {
		return m
	}
	return ""
}

var (
	foxSingleRe     = regexp.MustCompile(`^([A-Za-z]+)\s+(\d+),\s*(\d{4})$`)
	foxSameMonthRe  = regexp.MustCompile(`^([A-Za-z]+)\s+(\d+)-(\d+),\s*(\d{4})$`)
	foxCrossMonthRe = regexp.MustCompile(`^([A-Za-z]+)\s+(\d+)-([A-Za-z]+)\s+(\d+),\s*(\d{4})$`)
)

var foxMonthAbbrev = map[string]string{
	"january": "Jan", "february": "Feb", "march": "Mar", "april": "Apr",
	"may": "May", "june": "Jun", "july": "Jul", "august": "Aug",
	"september": "Sep", "october": "Oct", "november": "Nov", "december": "Dec",
}

// ParseFoxDateRange parses Fox's display dates into ISO start/end dates.
// Three shapes occur: "Feb 10, 2026", "Feb 10-12, 2026", and
// "Feb 28-Mar 2, 2026". Returns empty strings when nothing matches.
func ParseFoxDateRange(text string) (string, string) {
	text = strings.Join(strings.Fields(text), " ")
	for _, sep := range []string{" - ", "- ", " -"} {
		text = strings.ReplaceAll(text, sep, "-")
	}
	for full, abbrev := range foxMonthAbbrev {
		re := regexp.MustCompile(`(?i)\b` + full + `\b`)
		text = re.ReplaceAllString(text, abbrev)
	}

	parse := func(month, day, year string) (time.Time, bool) {
		t, err := time.Parse("Jan 2, 2006", fmt.Sprintf("%s %s, %s", month, day, year))
		return t, err == nil
	}

	if m := foxSingleRe.FindStringSubmatch(text); m != nil {
		if t, ok := parse(m[1], m[2], m[3]); ok {
			d := t.Format("2006-01-02")
			return d, d
		}
	}
	if m := foxSameMonthRe.FindStringSubmatch(text); m != nil {
		start, okS := parse(m[1], m[2], m[4])
		end, okE := parse(m[1], m[3], m[4])
		if okS && okE {
			return start.Format("2006-01-02"), end.Format("2006-01-02")
		}
	}
	if m := foxCrossMonthRe.FindStringSubmatch(text); m != nil {
		start, okS := parse(m[1], m[2], m[5])
		end, okE := parse(m[3], m[4], m[5])
		if okS && okE {
			return start.Format("2006-01-02"), end.Format("2006-01-02")
		}
	}
	return "", ""
}
