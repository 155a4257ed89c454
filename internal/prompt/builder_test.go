package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MorningDigest/internal/config"
	"MorningDigest/internal/domain"
)

func sections() []Section {
	quant := config.CategoryConfig{Name: "quant", Label: "Quantitative Finance", Mode: config.ModeAnalyze, ContentBudget: 10}
	ai := config.CategoryConfig{Name: "ai", Label: "AI", Mode: config.ModeLinks, ContentBudget: 10}
	longevity := config.CategoryConfig{Name: "longevity", Label: "Longevity", Mode: config.ModeAnalyze, ContentBudget: 5}

	return []Section{
		{Category: quant, Papers: []domain.Paper{
			{ID: "2501.00002v1", Title: "Second", URL: "u2", Abstract: "abcdefghijklmnop"},
			{ID: "2501.00001", Title: "First", URL: "u1", Content: "intro [...] conclusion text", IsFullText: true},
		}},
		{Category: ai, Papers: []domain.Paper{{ID: "2501.09999", Title: "Skipped"}}},
		{Category: longevity, Papers: []domain.Paper{
			{ID: "10.1101/x", Title: "Aging", URL: "u3", Content: "ÄÖÜäöüß", Abstract: "ignored"},
		}},
	}
}

func TestBuildLayout(t *testing.T) {
	t.Parallel()

	out := NewBuilder("PERSONA", 12).Build(sections())

	assert.True(t, strings.HasPrefix(out, "PERSONA\n"))
	assert.NotContains(t, out, "Skipped")
	assert.NotContains(t, out, "ignored")

	second := strings.Index(out, "ID: 2501.00002\n")
	first := strings.Index(out, "ID: 2501.00001\n")
	aging := strings.Index(out, "ID: 10.1101/x\n")
	require.True(t, second > 0 && first > 0 && aging > 0)
	assert.Less(t, second, first, "order must be preserved")
	assert.Less(t, first, aging)

	assert.Contains(t, out, "Source: ABSTRACT ONLY\nContent: abcdefghij\n")
	assert.Contains(t, out, "Source: FULL TEXT (intro + conclusion)\nContent: intro [...] \n")
	assert.Contains(t, out, "Content: ÄÖÜäö\n")
	assert.Contains(t, out, "QUANTITATIVE FINANCE PAPERS (category: quant)")
	assert.Contains(t, out, `Allowed category values: "quant", "longevity".`)
	assert.Contains(t, out, `{"papers":[`)
}

func TestBuildIsDeterministic(t *testing.T) {
	t.Parallel()

	b := NewBuilder("P", 100)
	assert.Equal(t, b.Build(sections()), b.Build(sections()))
}

func TestBuildWithoutPapers(t *testing.T) {
	t.Parallel()

	out := NewBuilder("P", 100).Build(nil)
	assert.True(t, strings.HasPrefix(out, "P\n"))
	assert.Contains(t, out, "Allowed category values: .")
}
