package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MorningDigest/internal/config"
	"MorningDigest/internal/domain"
)

func newTestScorer() *Scorer {
	return NewScorer(config.RelevanceConfig{
		Strong:   []string{"Longevity", "rapamycin", "senescence", "longevity"},
		Weak:     []string{"exercise", "diet"},
		MinScore: 3,
	})
}

func TestScoreWeights(t *testing.T) {
	t.Parallel()

	s := newTestScorer()
	assert.Equal(t, 0, s.Score("Graph neural networks", "nothing relevant"))
	assert.Equal(t, StrongTitleWeight, s.Score("Rapamycin in mice", ""))
	assert.Equal(t, StrongBodyWeight, s.Score("A study", "we used rapamycin"))
	assert.Equal(t, StrongTitleWeight+StrongBodyWeight, s.Score("Rapamycin", "rapamycin dosing"))
	assert.Equal(t, WeakTitleWeight, s.Score("Exercise habits", ""))
	assert.Equal(t, 0, s.Score("A cohort", "exercise and diet were recorded"), "weak terms never count in body")
}

func TestScoreMonotonicInStrongTitleKeywords(t *testing.T) {
	t.Parallel()

	s := newTestScorer()
	body := "cells were cultured for senescence assays"
	base := s.Score("Effects on mouse cells", body)
	more := s.Score("Effects on mouse cells and senescence", body)
	most := s.Score("Rapamycin effects on mouse cells and senescence", body)

	assert.Greater(t, more, base)
	assert.Greater(t, most, more)
}

func TestDuplicateKeywordsCountOnce(t *testing.T) {
	t.Parallel()

	s := newTestScorer()
	assert.Equal(t, StrongTitleWeight, s.Score("Longevity", ""))
}

func TestRankAppliesThreshold(t *testing.T) {
	t.Parallel()

	s := newTestScorer()
	g := s.Rank(domain.SourceBatch{
		Source:     "medrxiv",
		ScoreBonus: 2,
		Papers: []domain.Paper{
			{ID: "keep", Title: "Senescence markers", Abstract: "x"},
			{ID: "drop", Title: "Exercise", Abstract: "rapamycin"},
		},
	})

	require.Len(t, g.Papers, 1)
	assert.Equal(t, "keep", g.Papers[0].Paper.ID)
	assert.Equal(t, 2, g.Bonus)
	assert.Equal(t, "medrxiv", g.Source)
}
