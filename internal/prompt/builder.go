// Package prompt serializes the persona and the candidate papers into the
// single request sent to the model.
package prompt

import (
	"fmt"
	"strings"

	"MorningDigest/internal/config"
	"MorningDigest/internal/domain"
	"MorningDigest/internal/response"
)

const (
	rule = "============================================================"

	// Provenance markers tell the model how much of the paper it sees.
	FullTextMarker = "FULL TEXT (intro + conclusion)"
	AbstractMarker = "ABSTRACT ONLY"
)

// Section is one analyzed category with its papers in final order.
type Section struct {
	Category config.CategoryConfig
	Papers   []domain.Paper
}

// Builder renders prompts. It is stateless apart from its configuration.
type Builder struct {
	persona        string
	fullTextBudget int
}

// NewBuilder returns a builder. Abstract-only entries are cut to the category
// content budget, full-text entries to fullTextBudget.
func NewBuilder(persona string, fullTextBudget int) *Builder {
	return &Builder{persona: strings.TrimSpace(persona), fullTextBudget: fullTextBudget}
}

// Build returns the prompt for the given sections. Sections for categories
// in links mode are skipped. Paper order is preserved.
func (b *Builder) Build(sections []Section) string {
	var sb strings.Builder
	sb.WriteString(b.persona)
	sb.WriteString("\n")

	var names []string
	for _, s := range sections {
		if !s.Category.Analyzed() {
			continue
		}
		names = append(names, s.Category.Name)

		fmt.Fprintf(&sb, "\n%s\n%s PAPERS (category: %s)\n%s\n", rule, strings.ToUpper(s.Category.Label), s.Category.Name, rule)
		for _, p := range s.Papers {
			b.writeEntry(&sb, s.Category, p)
		}
	}

	sb.WriteString("\n")
	sb.WriteString(formatInstruction(names))
	return sb.String()
}

func (b *Builder) writeEntry(sb *strings.Builder, cat config.CategoryConfig, p domain.Paper) {
	content := p.Content
	if content == "" {
		content = p.Abstract
	}

	marker, budget := AbstractMarker, cat.ContentBudget
	if p.IsFullText {
		marker, budget = FullTextMarker, b.fullTextBudget
	}
	if budget > 0 {
		content = truncate(content, budget)
	}

	fmt.Fprintf(sb, "\nID: %s\nTitle: %s\nURL: %s\nSource: %s\nContent: %s\n",
		domain.CanonicalID(p.ID), p.Title, p.URL, marker, content)
}

func formatInstruction(categories []string) string {
	quoted := make([]string, len(categories))
	for i, c := range categories {
		quoted[i] = fmt.Sprintf("%q", c)
	}

	return fmt.Sprintf(`Return ONLY valid JSON. No markdown. No text outside the JSON.
Structure:
{"%s":[{"id":"...","title":"...","url":"...","category":"...","score":7,"discovery":"They found...","insight":"This means...","action":"...","can_implement":true,"tags":["..."]}]}

Allowed category values: %s.
Use the exact ID given for each paper. Return one entry per paper.
IMPORTANT: Only analyze papers provided above. Do not add papers from your own knowledge.`,
		response.CanonicalKey, strings.Join(quoted, ", "))
}

func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
