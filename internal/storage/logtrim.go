// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package storage

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tomtom215/gigwire/internal/logging"
)

// DefaultLogRetentionDays bounds the plain-text run log. The log is an
// append-only audit trail for eyeballing scrape history, not structured
// telemetry, so two weeks is plenty.
const DefaultLogRetentionDays = 14

// AppendRunLog appends timestamped lines to the run log. Each line is
// prefixed with an RFC3339 UTC timestamp, which TrimRunLog later parses for
// retention.
func (s *Store) AppendRunLog(now time.Time, lines ...string) error {
	f, err := os.OpenFile(s.Path(RunLogFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	defer f.Close()

	stamp := now.UTC().Format(time.RFC3339)
	for _, line := range lines {
		if _, err := fmt.Fprintf(f, "%s %s\n", stamp, line); err != nil {
			return fmt.Errorf("append run log: %w", err)
		}
	}
	return nil
}

// TrimRunLog rewrites the run log keeping only lines newer than the retention
// window. Lines without a parseable leading timestamp are kept: losing an odd
// line is worse than keeping it. Missing log file is a no-op.
func (s *Store) TrimRunLog(now time.Time, retentionDays int) (int, error) {
	if retentionDays <= 0 {
		retentionDays = DefaultLogRetentionDays
	}
	cutoff := now.UTC().AddDate(0, 0, -retentionDays)

	data, err := os.ReadFile(s.Path(RunLogFile))
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read run log: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	kept := make([]string, 0, len(lines))
	trimmed := 0

	for _, line := range lines {
		if line == "" {
			continue
		}
		stamp, _, found := strings.Cut(line, " ")
		if found {
			if ts, perr := time.Parse(time.RFC3339, stamp); perr == nil && ts.Before(cutoff) {
				trimmed++
				continue
			}
		}
		kept = append(kept, line)
	}

	if trimmed == 0 {
		return 0, nil
	}

	out := ""
	if len(kept) > 0 {
		out = strings.Join(kept, "\n") + "\n"
	}
	if err := os.WriteFile(s.Path(RunLogFile), []byte(out), 0o644); err != nil {
		return 0, fmt.Errorf("rewrite run log: %w", err)
	}

	logging.Debug().Int("trimmed", trimmed).Int("kept", len(kept)).Msg("Run log trimmed")
	return trimmed, nil
}
