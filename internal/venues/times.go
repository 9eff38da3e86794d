// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package venues

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeTime converts assorted venue time strings to HH:MM 24-hour
// format. Handles "8:00", "8:30pm", "20:00:00", "19:00", "8:00 PM".
// Returns "" when the input cannot be parsed; a missing time is display
// metadata, not an error.
func NormalizeTime(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	// "20:00:00" -> "20:00"
	if strings.Count(s, ":") == 2 {
		parts := strings.SplitN(s, ":", 3)
		s = parts[0] + ":" + parts[1]
	}

	isPM := strings.Contains(s, "pm")
	isAM := strings.Contains(s, "am")
	s = strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(s, "pm", ""), "am", ""))

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return ""
	}
	hours, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return ""
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return ""
	}

	if isPM && hours < 12 {
		hours += 12
	} else if isAM && hours == 12 {
		hours = 0
	}

	return fmt.Sprintf("%02d:%02d", hours, minutes)
}
