package fulltext

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLimits() Limits {
	return Limits{
		MinTextChars:    100,
		IntroChars:      20,
		ConclusionChars: 30,
		TotalChars:      1000,
		Markers:         []string{"In conclusion", "results show"},
	}
}

func filler(word string, n int) string {
	return strings.TrimSpace(strings.Repeat(word+" ", n))
}

func TestExcerptAnchorsOnPostMidpointMarker(t *testing.T) {
	t.Parallel()

	// Marker once in the first quarter, once after the midpoint.
	text := "INTRO " + "in conclusion EARLY " + filler("aaaa", 40) + " " + filler("bbbb", 40) +
		" In Conclusion LATE findings " + filler("cccc", 10)

	got := Excerpt(text, testLimits())

	parts := strings.SplitN(got, ExcerptSeparator, 2)
	require.Len(t, parts, 2)
	assert.True(t, strings.HasPrefix(parts[0], "INTRO in conclusion"))
	assert.True(t, strings.HasPrefix(parts[1], "In Conclusion LATE"), parts[1])
	assert.NotContains(t, parts[1], "EARLY")
	assert.Equal(t, 30, utf8.RuneCountInString(parts[1]))
}

func TestExcerptPicksEarliestMarkerAfterMidpoint(t *testing.T) {
	t.Parallel()

	text := filler("aaaa", 40) + " results show X. " + filler("bbbb", 5) + " in conclusion Y. " + filler("cccc", 5)
	got := Excerpt(text, testLimits())
	assert.Contains(t, got, ExcerptSeparator+"results show X.")
}

func TestExcerptWithoutMarkerUsesTail(t *testing.T) {
	t.Parallel()

	text := "START " + filler("aaaa", 50) + " THE END"
	got := Excerpt(text, testLimits())

	parts := strings.SplitN(got, ExcerptSeparator, 2)
	require.Len(t, parts, 2)
	assert.True(t, strings.HasSuffix(parts[1], "THE END"))
	assert.Equal(t, 30, utf8.RuneCountInString(parts[1]))
	assert.Equal(t, 20, utf8.RuneCountInString(parts[0]))
}

func TestExcerptShortTextVerbatim(t *testing.T) {
	t.Parallel()

	text := "too short to bother in conclusion"
	assert.Equal(t, text, Excerpt(text, testLimits()))
}

func TestExcerptRespectsTotalBudget(t *testing.T) {
	t.Parallel()

	lim := testLimits()
	lim.TotalChars = 25
	got := Excerpt(filler("ääää", 60), lim)
	assert.Equal(t, 25, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
}

func TestMarkerIndexIsByteSafeWithMultibyteText(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("Ö", 50) + " Results Show gains"
	at := markerIndex(text, []string{"results show"})
	require.GreaterOrEqual(t, at, 0)
	assert.True(t, strings.HasPrefix(text[at:], "Results Show"))
}

func TestMarkerIndexUsesCharacterMidpoint(t *testing.T) {
	t.Parallel()

	// Past the byte midpoint but before the character midpoint.
	text := strings.Repeat("ä", 990) + " in conclusion " + strings.Repeat("a", 1530)
	assert.Equal(t, -1, markerIndex(text, []string{"in conclusion"}))

	text += " in conclusion tail"
	at := markerIndex(text, []string{"in conclusion"})
	require.GreaterOrEqual(t, at, 0)
	assert.Equal(t, " in conclusion tail", text[at-1:])
}

func TestPlainTextStripsNoise(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><head><style>p{}</style>
		<script>var x = 1;</script></head><body>
		<h1>Title</h1>
		<p>First   paragraph
		line.</p>
		<math><mi>x</mi></math>
		<figure><img src="a.png"><figcaption>Figure 1</figcaption></figure>
		<p>Second.</p></body></html>`))
	require.NoError(t, err)

	assert.Equal(t, "Title First paragraph line. Second.", PlainText(doc))
}
