// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package pipeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/gigwire/internal/logging"
	"github.com/tomtom215/gigwire/internal/metrics"
	"github.com/tomtom215/gigwire/internal/models"
)

// isoDateLen is the fixed width of a zero-padded ISO calendar date
// (YYYY-MM-DD). The rotator compares dates as strings, which is safe only
// because every serialized date has this exact shape; anything else is
// treated as unarchivable and left in the live set.
const isoDateLen = 10

// archivableDate reports whether a date has the exact YYYY-MM-DD shape the
// string comparison and month bucketing rely on. A malformed date that
// merely sorts below today (say "02/10/2002") must not reach bucketing: its
// first 7 bytes are not a month and would become a broken bucket filename.
func archivableDate(date string) bool {
	if len(date) != isoDateLen {
		return false
	}
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

// ArchiveStore persists month buckets and the archive index. The rotator
// only ever touches buckets for months that gained events this run;
// ArchivedSlugs scans every bucket so the cache pruner sees the full archive.
type ArchiveStore interface {
	LoadBucket(month string) ([]models.Event, error)
	SaveBucket(month string, events []models.Event) error
	LoadIndex() (*models.ArchiveIndex, error)
	SaveIndex(idx *models.ArchiveIndex) error
	ArchivedSlugs() (map[string]struct{}, error)
}

// Rotator moves past events out of the live feed into month-bucketed
// historical storage. No event ever transitions back from archived to live.
type Rotator struct {
	store ArchiveStore
}

// NewRotator returns a rotator backed by store.
func NewRotator(store ArchiveStore) *Rotator {
	return &Rotator{store: store}
}

// ArchivePast partitions events into the still-upcoming set and the archive,
// appending past events to their YYYY-MM buckets. It returns the upcoming
// events, the rewritten archive index, and the number of events newly
// archived this run.
//
// Rotation is idempotent: a bucket never gains a slug it already holds, so
// re-running against the same inputs archives nothing new. Events whose
// dates are not well-formed calendar dates are skipped silently and stay
// live, surfaced only through a metric and a warn log.
func (r *Rotator) ArchivePast(events []models.Event, now time.Time) ([]models.Event, *models.ArchiveIndex, int, error) {
	today := now.UTC().Format("2006-01-02")

	upcoming := make([]models.Event, 0, len(events))
	byMonth := make(map[string][]models.Event)

	for _, e := range events {
		if !archivableDate(e.Date) {
			metrics.UnarchivableDates.Inc()
			logging.Warn().Str("slug", e.Slug).Str("date", e.Date).Msg("Event date is not a calendar date; leaving live")
			upcoming = append(upcoming, e)
			continue
		}
		if e.Date < today {
			month := e.Date[:7]
			byMonth[month] = append(byMonth[month], e)
		} else {
			upcoming = append(upcoming, e)
		}
	}

	archived := 0
	touched := make(map[string]int, len(byMonth))

	for month, past := range byMonth {
		bucket, err := r.store.LoadBucket(month)
		if err != nil {
			// Missing or corrupt bucket starts empty; rotation must not
			// abort the run over one month's file.
			logging.Warn().Err(err).Str("month", month).Msg("Archive bucket unreadable; starting empty")
			bucket = nil
		}

		present := make(map[string]struct{}, len(bucket))
		for i := range bucket {
			present[bucket[i].Slug] = struct{}{}
		}

		for _, e := range past {
			if _, dup := present[e.Slug]; dup {
				continue
			}
			present[e.Slug] = struct{}{}
			bucket = append(bucket, e)
			archived++
		}

		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].Date > bucket[j].Date
		})

		if err := r.store.SaveBucket(month, bucket); err != nil {
			return nil, nil, 0, fmt.Errorf("save archive bucket %s: %w", month, err)
		}
		touched[month] = len(bucket)
	}

	idx, err := r.rewriteIndex(touched, now)
	if err != nil {
		return nil, nil, 0, err
	}

	metrics.EventsArchived.Add(float64(archived))
	return upcoming, idx, archived, nil
}

// rewriteIndex read-merge-writes the archive index: counts for months
// touched this run are replaced, every other month's entry is preserved.
func (r *Rotator) rewriteIndex(touched map[string]int, now time.Time) (*models.ArchiveIndex, error) {
	idx, err := r.store.LoadIndex()
	if err != nil || idx == nil {
		if err != nil {
			logging.Warn().Err(err).Msg("Archive index unreadable; rebuilding from touched months")
		}
		idx = &models.ArchiveIndex{}
	}

	counts := make(map[string]int, len(idx.Months)+len(touched))
	for _, m := range idx.Months {
		counts[m.Month] = m.Count
	}
	for month, n := range touched {
		counts[month] = n
	}

	months := make([]models.MonthCount, 0, len(counts))
	total := 0
	for month, n := range counts {
		months = append(months, models.MonthCount{Month: month, Count: n})
		total += n
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month > months[j].Month })

	idx.Months = months
	idx.TotalEvents = total
	idx.LastUpdated = now.UTC().Format(time.RFC3339)

	if err := r.store.SaveIndex(idx); err != nil {
		return nil, fmt.Errorf("save archive index: %w", err)
	}
	return idx, nil
}
