// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package pipeline

import (
	"github.com/tomtom215/gigwire/internal/models"
)

// Validate is the pure record-level predicate: true only when the event has
// a venue, a date, a ticket URL, and a non-empty artist list. Validation is
// binary: there is no partial validity and no retry path for invalid
// records.
func Validate(e *models.Event) bool {
	if e == nil {
		return false
	}
	return models.ValidateEvent(e) == nil
}

// FilterValid splits events into the valid subset (order preserved) and a
// count of dropped records for status reporting. Invalid records are dropped
// entirely, never errored.
func FilterValid(events []models.Event) ([]models.Event, int) {
	valid := make([]models.Event, 0, len(events))
	for i := range events {
		if Validate(&events[i]) {
			valid = append(valid, events[i])
		}
	}
	return valid, len(events) - len(valid)
}
