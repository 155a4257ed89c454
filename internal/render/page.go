package render

import (
	"fmt"
	"slices"
	"strings"

	"MorningDigest/internal/config"
	"MorningDigest/internal/domain"
)

const (
	rowTitleRunes  = 100
	rowActionRunes = 120
	ellipsis       = "…"
)

// Page is the view model handed to the HTML template.
type Page struct {
	Lang        string
	Title       string
	Date        string
	Weekday     string
	GeneratedAt string
	Counters    []Counter
	TopPicks    []Item
	Sections    []Section
	Locale      config.LocaleConfig
	Footer      string
}

// Counter is one header statistic.
type Counter struct {
	Icon  string
	Count int
	Label string
}

// Section lists the papers of one category that did not make the top picks.
type Section struct {
	Name  string
	Label string
	Links bool
	Items []Item
}

// Badge holds the colours of a score badge.
type Badge struct {
	Background string
	Foreground string
}

// Item is a rendered paper, either a full card or a compact row.
type Item struct {
	Card          bool
	Link          bool
	URL           string
	Title         string
	Score         string
	Badge         Badge
	CategoryBadge string
	CategoryColor string
	Discovery     string
	Insight       string
	Action        string
	CanImplement  bool
	Tags          []string
	Locale        *config.LocaleConfig
}

// BuildPage partitions the digest into top picks and per-category sections.
// Top picks are analyzed papers scoring at least TopPickScore, best first.
// Remaining analyzed papers are listed under their category, best first,
// as cards from CardScore upwards and rows below it. Papers of links
// categories keep their order and render as plain rows.
func BuildPage(d domain.Digest, cfg config.RenderConfig, categories []config.CategoryConfig, footer string) Page {
	generated := d.GeneratedAt.UTC()
	page := Page{
		Lang:        cfg.Locale.Lang,
		Title:       fmt.Sprintf("%s · %s", cfg.Locale.Title, generated.Format("January 02, 2006")),
		Date:        generated.Format("January 02, 2006"),
		Weekday:     generated.Format("Monday"),
		GeneratedAt: generated.Format("15:04 UTC"),
		Locale:      cfg.Locale,
		Footer:      footer,
	}

	byCategory := make(map[string][]domain.AnalyzedPaper, len(categories))
	for _, p := range d.Papers {
		byCategory[p.Paper.Category] = append(byCategory[p.Paper.Category], p)
	}

	var top []domain.AnalyzedPaper
	rest := make(map[string][]domain.AnalyzedPaper, len(categories))
	for _, cat := range categories {
		for _, p := range byCategory[cat.Name] {
			if cat.Analyzed() && p.Score() >= cfg.TopPickScore {
				top = append(top, p)
				continue
			}
			rest[cat.Name] = append(rest[cat.Name], p)
		}
	}

	sortByScore(top)
	for _, p := range top {
		page.TopPicks = append(page.TopPicks, newItem(p, categoryOf(categories, p.Paper.Category), cfg, true))
	}

	for _, cat := range categories {
		page.Counters = append(page.Counters, Counter{Icon: cat.Icon, Count: d.Candidates[cat.Name], Label: cat.Label})

		section := Section{Name: cat.Name, Label: cat.Label, Links: !cat.Analyzed()}
		papers := rest[cat.Name]
		if cat.Analyzed() {
			sortByScore(papers)
		}
		for _, p := range papers {
			if !cat.Analyzed() {
				section.Items = append(section.Items, linkItem(p.Paper))
				continue
			}
			section.Items = append(section.Items, newItem(p, cat, cfg, p.Score() >= cfg.CardScore))
		}
		page.Sections = append(page.Sections, section)
	}
	page.Counters = append(page.Counters, Counter{Icon: "⭐", Count: len(top), Label: cfg.Locale.TopPicksCounter})

	return page
}

func sortByScore(papers []domain.AnalyzedPaper) {
	slices.SortStableFunc(papers, func(a, b domain.AnalyzedPaper) int {
		return b.Score() - a.Score()
	})
}

func categoryOf(categories []config.CategoryConfig, name string) config.CategoryConfig {
	for _, c := range categories {
		if c.Name == name {
			return c
		}
	}
	return config.CategoryConfig{Name: name, Badge: strings.ToUpper(name)}
}

func newItem(p domain.AnalyzedPaper, cat config.CategoryConfig, cfg config.RenderConfig, card bool) Item {
	item := Item{
		Card:          card,
		URL:           linkOrHash(p.Paper.URL),
		Title:         p.Paper.Title,
		Score:         fmt.Sprintf("%d/%d", p.Score(), cfg.MaxScore),
		Badge:         scoreBadge(p.Score()),
		CategoryBadge: cat.Badge,
		CategoryColor: cat.Color,
		Locale:        &cfg.Locale,
	}
	if a := p.Analysis; a != nil {
		item.Discovery = a.Discovery
		item.Insight = a.Insight
		item.Action = a.Action
		item.CanImplement = a.CanImplement
		item.Tags = a.Tags
	}
	if !card {
		item.Title = truncate(item.Title, rowTitleRunes)
		item.Action = truncate(item.Action, rowActionRunes)
	}
	return item
}

func linkItem(p domain.Paper) Item {
	return Item{Link: true, URL: linkOrHash(p.URL), Title: truncate(p.Title, rowTitleRunes)}
}

// scoreBadge maps a score onto the four colour tiers.
func scoreBadge(score int) Badge {
	switch {
	case score >= 8:
		return Badge{Background: "#e8f5e9", Foreground: "#2e7d32"}
	case score >= 6:
		return Badge{Background: "#fff8e1", Foreground: "#e65100"}
	case score >= 4:
		return Badge{Background: "#f5f5f5", Foreground: "#757575"}
	default:
		return Badge{Background: "#f5f5f5", Foreground: "#bdbdbd"}
	}
}

func linkOrHash(u string) string {
	if strings.TrimSpace(u) == "" {
		return "#"
	}
	return u
}

func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i] + ellipsis
		}
		count++
	}
	return s
}
