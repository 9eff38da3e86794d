// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package models

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance; validator.Validate caches struct metadata,
// so one instance is shared across the process.
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateEvent runs struct-tag validation against an event. It returns the
// underlying validator error for callers that want field detail; the pipeline
// treats any non-nil error as a binary invalid record.
func ValidateEvent(e *Event) error {
	return getValidator().Struct(e)
}
