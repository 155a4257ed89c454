// Package recency keeps only papers published inside a rolling lookback window.
package recency

import (
	"time"

	"MorningDigest/internal/domain"
)

// Stats reports why papers were dropped.
type Stats struct {
	Unparsable int
	Outside    int
}

// Filter returns the papers whose Published timestamp lies in
// [now-window, now]. Timestamps must be RFC 3339 with an explicit offset;
// anything else is dropped and counted. PublishedAt is set on kept papers.
func Filter(papers []domain.Paper, window time.Duration, now time.Time) ([]domain.Paper, Stats) {
	var stats Stats
	now = now.UTC()
	cutoff := now.Add(-window)

	kept := make([]domain.Paper, 0, len(papers))
	for _, p := range papers {
		published, ok := ParseTimestamp(p.Published)
		if !ok {
			stats.Unparsable++
			continue
		}
		if published.Before(cutoff) || published.After(now) {
			stats.Outside++
			continue
		}
		p.PublishedAt = published
		kept = append(kept, p)
	}
	return kept, stats
}

// DayWindow widens window so its lower bound falls on the start of the UTC
// day containing now-window. Sources stamped at midnight need it, otherwise
// the first day of the range never passes Filter.
func DayWindow(window time.Duration, now time.Time) time.Duration {
	now = now.UTC()
	cutoff := now.Add(-window)
	start := time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, time.UTC)
	return now.Sub(start)
}

// ParseTimestamp accepts RFC 3339 timestamps (which always carry "Z" or a
// numeric offset) and returns them in UTC.
func ParseTimestamp(value string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
