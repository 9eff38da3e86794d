// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

// Package storage persists pipeline state as JSON files in a single data
// directory, optionally mirrored to R2. Every load is read-fully, every save
// is write-fully; a missing or corrupt file is first-run state, never a fatal
// error. The file set is the contract with the static site that consumes it.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gigwire/internal/logging"
	"github.com/tomtom215/gigwire/internal/models"
)

// State file names within the data directory.
const (
	EventsFile       = "events.json"
	SeenCacheFile    = "seen-cache.json"
	ArchiveIndexFile = "archive-index.json"
	StatusFile       = "scrape-status.json"
	ArtistCacheFile  = "artist-cache.json"
	SpotifyCacheFile = "artist-spotify-cache.json"
	RunLogFile       = "scrape-log.txt"

	archiveBucketPrefix = "archive-"
)

// Store reads and writes the JSON state files. It implements
// pipeline.ArchiveStore for the rotator and pruner.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir, creating it if necessary.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the data directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the absolute path of a state file name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// BucketFile returns the archive bucket file name for a YYYY-MM month.
func BucketFile(month string) string {
	return archiveBucketPrefix + month + ".json"
}

// readJSON decodes a state file into v. A missing file returns os.ErrNotExist
// wrapped; callers that want first-run semantics check with errors.Is or use
// the typed loaders below, which log and fall back to empty state.
func (s *Store) readJSON(name string, v any) error {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// writeJSON encodes v and writes it fully. Two-space indentation keeps the
// state files diffable in the site repository.
func (s *Store) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := os.WriteFile(s.Path(name), data, 0o644); err != nil { //nolint:gosec // Published feed data, world-readable on purpose
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// loadOrEmpty runs readJSON and degrades missing/corrupt files to empty
// state with a warn log for the corrupt case.
func (s *Store) loadOrEmpty(name string, v any) {
	err := s.readJSON(name, v)
	if err == nil || os.IsNotExist(err) {
		return
	}
	logging.Warn().Err(err).Str("file", name).Msg("State file unreadable; starting from empty state")
}

// LoadEvents returns the live feed, or an empty slice on first run or a
// corrupt file.
func (s *Store) LoadEvents() []models.Event {
	var events []models.Event
	s.loadOrEmpty(EventsFile, &events)
	return events
}

// SaveEvents persists the live feed.
func (s *Store) SaveEvents(events []models.Event) error {
	if events == nil {
		events = []models.Event{}
	}
	return s.writeJSON(EventsFile, events)
}

// LoadSeenCache returns the freshness cache, empty on first run.
func (s *Store) LoadSeenCache() *models.SeenCache {
	cache := models.NewSeenCache()
	s.loadOrEmpty(SeenCacheFile, cache)
	if cache.Events == nil {
		cache.Events = make(map[string]models.SeenEntry)
	}
	return cache
}

// SaveSeenCache persists the freshness cache.
func (s *Store) SaveSeenCache(cache *models.SeenCache) error {
	return s.writeJSON(SeenCacheFile, cache)
}

// LoadStatus returns the previous run's status, empty on first run.
func (s *Store) LoadStatus() *models.RunStatus {
	status := models.NewRunStatus()
	s.loadOrEmpty(StatusFile, status)
	if status.Venues == nil {
		status.Venues = make(map[string]models.VenueStatus)
	}
	return status
}

// SaveStatus persists the run status.
func (s *Store) SaveStatus(status *models.RunStatus) error {
	return s.writeJSON(StatusFile, status)
}

// LoadArtistCache returns the Ticketmaster classification cache.
func (s *Store) LoadArtistCache() models.ArtistCache {
	cache := make(models.ArtistCache)
	s.loadOrEmpty(ArtistCacheFile, &cache)
	if cache == nil {
		cache = make(models.ArtistCache)
	}
	return cache
}

// SaveArtistCache persists the Ticketmaster classification cache.
func (s *Store) SaveArtistCache(cache models.ArtistCache) error {
	return s.writeJSON(ArtistCacheFile, cache)
}

// LoadSpotifyCache returns the Spotify link cache.
func (s *Store) LoadSpotifyCache() *models.SpotifyCache {
	cache := models.NewSpotifyCache()
	s.loadOrEmpty(SpotifyCacheFile, cache)
	if cache.ByName == nil {
		cache.ByName = make(map[string]models.SpotifyEntry)
	}
	return cache
}

// SaveSpotifyCache persists the Spotify link cache.
func (s *Store) SaveSpotifyCache(cache *models.SpotifyCache) error {
	return s.writeJSON(SpotifyCacheFile, cache)
}

// LoadBucket returns one month's archived events. Unlike the loaders above
// it propagates decode errors: the rotator logs and starts the bucket empty,
// but wants to know the difference between missing and corrupt.
func (s *Store) LoadBucket(month string) ([]models.Event, error) {
	var events []models.Event
	err := s.readJSON(BucketFile(month), &events)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return events, err
}

// SaveBucket persists one month's archived events.
func (s *Store) SaveBucket(month string, events []models.Event) error {
	return s.writeJSON(BucketFile(month), events)
}

// LoadIndex returns the archive index, or nil when absent.
func (s *Store) LoadIndex() (*models.ArchiveIndex, error) {
	var idx models.ArchiveIndex
	err := s.readJSON(ArchiveIndexFile, &idx)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &idx, nil
}

// SaveIndex persists the archive index.
func (s *Store) SaveIndex(idx *models.ArchiveIndex) error {
	return s.writeJSON(ArchiveIndexFile, idx)
}

// ArchivedSlugs scans every archive bucket on disk and returns the union of
// their slugs. The pruner needs the full archive, not just months touched by
// the current run, or entries archived in earlier runs would be evicted.
func (s *Store) ArchivedSlugs() (map[string]struct{}, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("scan archive buckets: %w", err)
	}

	slugs := make(map[string]struct{})
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, archiveBucketPrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		if name == ArchiveIndexFile {
			continue
		}

		var events []models.Event
		if err := s.readJSON(name, &events); err != nil {
			logging.Warn().Err(err).Str("file", name).Msg("Archive bucket unreadable while collecting slugs; skipping")
			continue
		}
		for i := range events {
			if events[i].Slug != "" {
				slugs[events[i].Slug] = struct{}{}
			}
		}
	}
	return slugs, nil
}

// SyncedFiles lists the state files mirrored to R2, in upload order. Archive
// buckets present on disk are included after the fixed set.
func (s *Store) SyncedFiles() []string {
	files := []string{
		EventsFile,
		SeenCacheFile,
		ArchiveIndexFile,
		StatusFile,
		ArtistCacheFile,
		SpotifyCacheFile,
		RunLogFile,
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return files
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == ArchiveIndexFile {
			continue
		}
		if strings.HasPrefix(name, archiveBucketPrefix) && strings.HasSuffix(name, ".json") {
			files = append(files, name)
		}
	}
	return files
}
