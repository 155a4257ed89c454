package fulltext

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// ExcerptSeparator joins the introduction and conclusion excerpts.
const ExcerptSeparator = "\n[...]\n"

// noiseSelectors are dropped before taking text; they carry markup, code or
// captions rather than prose.
const noiseSelectors = "script, style, noscript, math, figure, svg"

// Limits bounds excerpt extraction. Lengths are in characters (runes).
type Limits struct {
	MinTextChars    int
	IntroChars      int
	ConclusionChars int
	TotalChars      int
	Markers         []string
}

// PlainText strips noise blocks and markup and collapses whitespace.
func PlainText(doc *goquery.Document) string {
	doc.Find(noiseSelectors).Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Excerpt picks the introduction and a conclusion window from plain text.
// The conclusion anchors on the earliest marker found at or after the text
// midpoint, so a marker echoed in the abstract or introduction is ignored.
// Without a marker the trailing window is used.
func Excerpt(text string, lim Limits) string {
	if utf8.RuneCountInString(text) < lim.MinTextChars {
		return text
	}

	intro := headRunes(text, lim.IntroChars)

	var conclusion string
	if at := markerIndex(text, lim.Markers); at >= 0 {
		conclusion = headRunes(text[at:], lim.ConclusionChars)
	} else {
		conclusion = tailRunes(text, lim.ConclusionChars)
	}

	return headRunes(intro+ExcerptSeparator+conclusion, lim.TotalChars)
}

// markerIndex returns the byte offset of the earliest marker occurrence at or
// after the character midpoint of text, or -1.
func markerIndex(text string, markers []string) int {
	mid := runeOffset(text, utf8.RuneCountInString(text)/2)
	lower := asciiLower(text[mid:])

	best := -1
	for _, m := range markers {
		m = asciiLower(strings.TrimSpace(m))
		if m == "" {
			continue
		}
		if i := strings.Index(lower, m); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	if best < 0 {
		return -1
	}
	return mid + best
}

// runeOffset returns the byte offset of the n-th rune in s.
func runeOffset(s string, n int) int {
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}

// asciiLower lower-cases ASCII letters only, keeping byte offsets stable for
// text containing multi-byte runes.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func headRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func tailRunes(s string, n int) string {
	total := utf8.RuneCountInString(s)
	if total <= n {
		return s
	}
	skip := total - n
	count := 0
	for i := range s {
		if count == skip {
			return s[i:]
		}
		count++
	}
	return ""
}
