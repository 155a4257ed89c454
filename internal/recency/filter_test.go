package recency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MorningDigest/internal/domain"
)

func paper(id, published string) domain.Paper {
	return domain.Paper{ID: id, Published: published}
}

func ids(papers []domain.Paper) []string {
	out := make([]string, 0, len(papers))
	for _, p := range papers {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterInclusiveLowerBound(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 6, 0, 0, 0, time.UTC)
	window := 96 * time.Hour
	cutoff := now.Add(-window)

	papers := []domain.Paper{
		paper("at-cutoff", cutoff.Format(time.RFC3339Nano)),
		paper("just-before", cutoff.Add(-time.Microsecond).Format(time.RFC3339Nano)),
		paper("now", now.Format(time.RFC3339)),
		paper("future", now.Add(time.Minute).Format(time.RFC3339)),
	}

	kept, stats := Filter(papers, window, now)
	assert.Equal(t, []string{"at-cutoff", "now"}, ids(kept))
	assert.Equal(t, Stats{Outside: 2}, stats)
	assert.True(t, kept[0].PublishedAt.Equal(cutoff))
}

func TestDayWindowKeepsFirstCalendarDay(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 6, 0, 0, 0, time.UTC)
	window := 96 * time.Hour

	widened := DayWindow(window, now)
	assert.Equal(t, 102*time.Hour, widened)

	papers := []domain.Paper{
		paper("first-day", "2025-03-06T00:00:00Z"),
		paper("day-before", "2025-03-05T00:00:00Z"),
	}
	kept, _ := Filter(papers, window, now)
	assert.Empty(t, kept)

	kept, stats := Filter(papers, widened, now)
	assert.Equal(t, []string{"first-day"}, ids(kept))
	assert.Equal(t, Stats{Outside: 1}, stats)
}

func TestDayWindowUsesUTCDays(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, 47*time.Hour, DayWindow(48*time.Hour, now))
	assert.Equal(t, 24*time.Hour, DayWindow(24*time.Hour, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)))
}

func TestFilterDropsTimestampsWithoutOffset(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 6, 0, 0, 0, time.UTC)
	papers := []domain.Paper{
		paper("no-zone", "2025-03-09T12:00:00"),
		paper("date-only", "2025-03-09"),
		paper("garbage", "yesterday"),
		paper("empty", ""),
		paper("offset", "2025-03-09T14:00:00+02:00"),
	}

	kept, stats := Filter(papers, 48*time.Hour, now)
	require.Len(t, kept, 1)
	assert.Equal(t, "offset", kept[0].ID)
	assert.Equal(t, time.UTC, kept[0].PublishedAt.Location())
	assert.Equal(t, 12, kept[0].PublishedAt.Hour())
	assert.Equal(t, 4, stats.Unparsable)
}

func TestFilterConvertsNowToUTC(t *testing.T) {
	t.Parallel()

	tallinn := time.FixedZone("EET", 2*3600)
	now := time.Date(2025, time.March, 10, 8, 0, 0, 0, tallinn)
	kept, _ := Filter([]domain.Paper{paper("a", "2025-03-10T05:30:00Z")}, time.Hour, now)
	assert.Equal(t, []string{"a"}, ids(kept))
}
