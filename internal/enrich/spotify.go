// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package enrich

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	json "github.com/goccy/go-json"

	"github.com/tomtom215/gigwire/internal/logging"
	"github.com/tomtom215/gigwire/internal/metrics"
	"github.com/tomtom215/gigwire/internal/models"
	"github.com/tomtom215/gigwire/internal/scrape"
)

const (
	spotifyTokenURL  = "https://accounts.spotify.com/api/token" //nolint:gosec // OAuth endpoint, not a credential
	spotifySearchURL = "https://api.spotify.com/v1/search"

	// DefaultSearchBudget caps Web API searches per run so a large backlog
	// of unknown artists drains over several runs instead of one burst.
	DefaultSearchBudget = 50

	// infoPageDelay spaces out venue info-page fetches during link mining.
	infoPageDelay = 350 * time.Millisecond
)

// Cache entry sources.
const (
	sourceVenuePage = "venue_page"
	sourceSearch    = "search"
	sourceNonArtist = "non_artist"
	sourceAmbiguous = "ambiguous"
	sourceNotFound  = "not_found"
)

var (
	spotifyArtistURLRe = regexp.MustCompile(`open\.spotify\.com/artist/([A-Za-z0-9]+)`)
	spotifyArtistURIRe = regexp.MustCompile(`spotify:artist:([A-Za-z0-9]+)`)

	parentheticalRe = regexp.MustCompile(`\([^)]*\)`)
	featSuffixRe    = regexp.MustCompile(`(?i)\s+(?:feat\.?|ft\.?|featuring|with)\s+.*$`)
	nonAlnumRe      = regexp.MustCompile(`[^a-z0-9 ]+`)
	spacesRe        = regexp.MustCompile(`\s+`)
)

// Placeholder billing names that must never be looked up as artists.
var nonArtistNames = map[string]bool{
	"tba":             true,
	"tbd":             true,
	"unknown":         true,
	"surprise guest":  true,
	"surprise guests": true,
	"special guest":   true,
	"guests":          true,
}

// NormalizeArtistName reduces a billed artist name to a lookup key: lowercase,
// parentheticals and feat./with suffixes removed, separators and punctuation
// collapsed to single spaces.
func NormalizeArtistName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = parentheticalRe.ReplaceAllString(s, " ")
	s = featSuffixRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&", " ")
	s = strings.ReplaceAll(s, "+", " ")
	s = nonAlnumRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}

// IsNonArtistName reports whether name is a placeholder rather than an act.
func IsNonArtistName(name string) bool {
	return nonArtistNames[NormalizeArtistName(name)]
}

// ExtractSpotifyArtistID pulls an artist ID out of an open.spotify.com URL or
// a spotify:artist: URI. Returns "" when s carries neither.
func ExtractSpotifyArtistID(s string) string {
	if m := spotifyArtistURLRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if m := spotifyArtistURIRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

// NormalizeSpotifyURL converts any recognized artist link or URI into the
// canonical https form, stripping tracking query parameters.
func NormalizeSpotifyURL(s string) string {
	id := ExtractSpotifyArtistID(s)
	if id == "" {
		return ""
	}
	return "https://open.spotify.com/artist/" + id
}

type spotifyTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type spotifySearchResponse struct {
	Artists struct {
		Items []spotifyArtist `json:"items"`
	} `json:"artists"`
}

type spotifyArtist struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Genres       []string `json:"genres"`
	Popularity   int      `json:"popularity"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

// Spotify resolves artist profile links, first by mining venue info pages for
// embedded links and then by searching the Web API for artists still missing
// one. All results, including negatives, land in the persisted cache.
type Spotify struct {
	client       *scrape.Client
	clientID     string
	clientSecret string
	searchBudget int

	token     string
	pageLinks map[string]map[string]string // info URL -> normalized name -> link
	now       func() time.Time

	mu       sync.Mutex
	observed map[string]string // normalized name -> canonical link, drained each run
}

// NewSpotify returns an enricher. Searching is disabled when either
// credential is empty; link mining from venue pages still runs.
func NewSpotify(client *scrape.Client, clientID, clientSecret string, searchBudget int) *Spotify {
	if searchBudget <= 0 {
		searchBudget = DefaultSearchBudget
	}
	return &Spotify{
		client:       client,
		clientID:     clientID,
		clientSecret: clientSecret,
		searchBudget: searchBudget,
		pageLinks:    make(map[string]map[string]string),
		now:          time.Now,
		observed:     make(map[string]string),
	}
}

func (s *Spotify) canSearch() bool {
	return s.clientID != "" && s.clientSecret != ""
}

// EnrichEvents fills in Artist.SpotifyURL across events dated today or later.
// today is the run date in YYYY-MM-DD form.
func (s *Spotify) EnrichEvents(ctx context.Context, events []models.Event, cache *models.SpotifyCache, today string) {
	if cache.ByName == nil {
		cache.ByName = make(map[string]models.SpotifyEntry)
	}
	s.drainObserved(cache)

	budget := s.searchBudget
	for i := range events {
		ev := &events[i]
		if ev.Date < today {
			continue
		}
		for j := range ev.Artists {
			artist := &ev.Artists[j]
			if artist.SpotifyURL != "" {
				continue
			}
			s.resolveArtist(ctx, artist, ev.InfoURL, cache, &budget)
		}
	}
}

// Observe stashes a link seen while the fetch stage is still running, before
// the run's cache is loaded. Safe for concurrent use; EnrichEvents drains the
// stash into the cache. It is the callback handed to scrapers and the
// category classifier.
func (s *Spotify) Observe(artistName, spotifyURL string) {
	norm := NormalizeArtistName(artistName)
	canonical := NormalizeSpotifyURL(spotifyURL)
	if norm == "" || canonical == "" {
		return
	}
	s.mu.Lock()
	s.observed[norm] = canonical
	s.mu.Unlock()
}

func (s *Spotify) drainObserved(cache *models.SpotifyCache) {
	s.mu.Lock()
	links := s.observed
	s.observed = make(map[string]string)
	s.mu.Unlock()
	for name, link := range links {
		s.RecordLink(cache, name, link)
	}
}

// RecordLink caches a link discovered outside the enrichment pass, such as
// one carried in a Ticketmaster attraction payload.
func (s *Spotify) RecordLink(cache *models.SpotifyCache, artistName, spotifyURL string) {
	norm := NormalizeArtistName(artistName)
	canonical := NormalizeSpotifyURL(spotifyURL)
	if norm == "" || canonical == "" {
		return
	}
	if cache.ByName == nil {
		cache.ByName = make(map[string]models.SpotifyEntry)
	}
	if existing, ok := cache.ByName[norm]; ok && existing.SpotifyURL != "" {
		return
	}
	cache.ByName[norm] = models.SpotifyEntry{
		SpotifyURL: canonical,
		SpotifyID:  ExtractSpotifyArtistID(canonical),
		Source:     sourceVenuePage,
		UpdatedAt:  s.now().UTC().Format(time.RFC3339),
	}
}

func (s *Spotify) resolveArtist(ctx context.Context, artist *models.Artist, infoURL string, cache *models.SpotifyCache, budget *int) {
	norm := NormalizeArtistName(artist.Name)
	if norm == "" {
		return
	}
	if nonArtistNames[norm] {
		if _, ok := cache.ByName[norm]; !ok {
			cache.ByName[norm] = s.negative(sourceNonArtist)
		}
		return
	}

	if entry, ok := cache.ByName[norm]; ok {
		if entry.SpotifyURL != "" {
			artist.SpotifyURL = entry.SpotifyURL
			metrics.EnrichmentLookups.WithLabelValues("spotify", "cache_hit").Inc()
		}
		return
	}

	if link := s.linkFromInfoPage(ctx, infoURL, norm); link != "" {
		artist.SpotifyURL = link
		cache.ByName[norm] = models.SpotifyEntry{
			SpotifyURL: link,
			SpotifyID:  ExtractSpotifyArtistID(link),
			Source:     sourceVenuePage,
			UpdatedAt:  s.now().UTC().Format(time.RFC3339),
		}
		metrics.EnrichmentLookups.WithLabelValues("spotify", "venue_page").Inc()
		return
	}

	if !s.canSearch() || *budget <= 0 {
		return
	}
	*budget--

	entry := s.search(ctx, artist.Name, artist.Genre)
	cache.ByName[norm] = entry
	if entry.SpotifyURL != "" {
		artist.SpotifyURL = entry.SpotifyURL
		metrics.EnrichmentLookups.WithLabelValues("spotify", "search_hit").Inc()
	} else {
		metrics.EnrichmentLookups.WithLabelValues("spotify", "search_miss").Inc()
	}
}

// linkFromInfoPage fetches infoURL once per run and extracts every Spotify
// artist link on it, keyed by the link text's normalized form.
func (s *Spotify) linkFromInfoPage(ctx context.Context, infoURL, normName string) string {
	if infoURL == "" {
		return ""
	}
	links, ok := s.pageLinks[infoURL]
	if !ok {
		links = s.fetchPageLinks(ctx, infoURL)
		s.pageLinks[infoURL] = links
	}
	return links[normName]
}

func (s *Spotify) fetchPageLinks(ctx context.Context, infoURL string) map[string]string {
	links := make(map[string]string)

	doc, err := s.client.GetDocument(ctx, infoURL, nil)
	if err != nil {
		logging.Warn().Err(err).Str("url", infoURL).Msg("spotify: info page fetch failed")
		return links
	}

	doc.Find("a[href*='open.spotify.com/artist/']").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		canonical := NormalizeSpotifyURL(href)
		if canonical == "" {
			return
		}
		if name := NormalizeArtistName(sel.Text()); name != "" {
			if _, seen := links[name]; !seen {
				links[name] = canonical
			}
		}
	})

	// Stay polite toward venue sites during a pass over many events.
	timer := time.NewTimer(infoPageDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
	return links
}

func (s *Spotify) negative(source string) models.SpotifyEntry {
	return models.SpotifyEntry{Source: source, UpdatedAt: s.now().UTC().Format(time.RFC3339)}
}

func (s *Spotify) ensureToken(ctx context.Context) error {
	if s.token != "" {
		return nil
	}
	return s.refreshToken(ctx)
}

func (s *Spotify) refreshToken(ctx context.Context) error {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, spotifyTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	basic := base64.StdEncoding.EncodeToString([]byte(s.clientID + ":" + s.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, status, err := s.client.Do(req)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("spotify token request returned %d", status)
	}
	var tok spotifyTokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return fmt.Errorf("decoding spotify token response: %w", err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("spotify token response missing access_token")
	}
	s.token = tok.AccessToken
	return nil
}

// search queries the Web API and picks the best candidate. The zero-URL
// entry it returns on a miss is a cached negative.
func (s *Spotify) search(ctx context.Context, name, genreHint string) models.SpotifyEntry {
	items, err := s.searchArtists(ctx, name)
	if err != nil {
		logging.Warn().Err(err).Str("artist", name).Msg("spotify: search failed")
		return s.negative(sourceNotFound)
	}

	best, ambiguous := pickCandidate(items, name, genreHint)
	if ambiguous {
		return s.negative(sourceAmbiguous)
	}
	if best == nil {
		return s.negative(sourceNotFound)
	}

	link := best.ExternalURLs.Spotify
	if link == "" {
		link = "https://open.spotify.com/artist/" + best.ID
	}
	return models.SpotifyEntry{
		SpotifyURL: NormalizeSpotifyURL(link),
		SpotifyID:  best.ID,
		Source:     sourceSearch,
		UpdatedAt:  s.now().UTC().Format(time.RFC3339),
	}
}

func (s *Spotify) searchArtists(ctx context.Context, name string) ([]spotifyArtist, error) {
	if err := s.ensureToken(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", fmt.Sprintf("artist:%q", name))
	q.Set("type", "artist")
	q.Set("limit", "5")
	q.Set("market", "US")
	searchURL := spotifySearchURL + "?" + q.Encode()

	for attempt := 0; attempt < 2; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+s.token)

		body, status, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		if status == http.StatusUnauthorized && attempt == 0 {
			// Token expired mid-run. Refresh once and retry.
			s.token = ""
			if err := s.refreshToken(ctx); err != nil {
				return nil, err
			}
			continue
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("spotify search returned %d", status)
		}
		var resp spotifySearchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decoding spotify search response: %w", err)
		}
		return resp.Artists.Items, nil
	}
	return nil, fmt.Errorf("spotify search unauthorized after token refresh")
}

// pickCandidate selects a confident match among search results. A single
// exact-name match wins. Among several exact matches the tie breaks on genre
// token overlap with the venue-billed genre, then on a decisive popularity
// lead. An undecidable tie is reported as ambiguous so it caches negatively.
func pickCandidate(items []spotifyArtist, name, genreHint string) (*spotifyArtist, bool) {
	norm := NormalizeArtistName(name)

	var exact []spotifyArtist
	for _, it := range items {
		if NormalizeArtistName(it.Name) == norm {
			exact = append(exact, it)
		}
	}
	switch len(exact) {
	case 0:
		return nil, false
	case 1:
		return &exact[0], false
	}

	if genreHint != "" {
		hintTokens := strings.Fields(NormalizeArtistName(genreHint))
		var matched []spotifyArtist
		for _, it := range exact {
			if genreOverlap(it.Genres, hintTokens) {
				matched = append(matched, it)
			}
		}
		if len(matched) == 1 {
			return &matched[0], false
		}
		if len(matched) > 1 {
			exact = matched
		}
	}

	top, second := exact[0], exact[1]
	for _, it := range exact[1:] {
		if it.Popularity > top.Popularity {
			second = top
			top = it
		} else if it.Popularity > second.Popularity {
			second = it
		}
	}
	if top.Popularity-second.Popularity >= 20 {
		return &top, false
	}
	return nil, true
}

func genreOverlap(genres []string, hintTokens []string) bool {
	for _, g := range genres {
		for _, tok := range strings.Fields(NormalizeArtistName(g)) {
			for _, hint := range hintTokens {
				if tok == hint {
					return true
				}
			}
		}
	}
	return false
}
