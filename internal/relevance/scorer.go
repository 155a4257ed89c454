// Package relevance pre-ranks secondary-source papers by keyword tiers so the
// expensive enrichment and model stages only see on-topic documents.
package relevance

import (
	"strings"

	"MorningDigest/internal/config"
)

// Tier weights. A weak keyword counts only in the title.
const (
	StrongTitleWeight = 3
	StrongBodyWeight  = 1
	WeakTitleWeight   = 1
)

// Scorer holds the two keyword tiers, lower-cased.
type Scorer struct {
	strong   []string
	weak     []string
	minScore int
}

// NewScorer builds a scorer from configuration; duplicate and empty keywords
// are dropped so every keyword counts once.
func NewScorer(cfg config.RelevanceConfig) *Scorer {
	return &Scorer{
		strong:   normalize(cfg.Strong),
		weak:     normalize(cfg.Weak),
		minScore: cfg.MinScore,
	}
}

// Score returns the keyword-tier score of a paper.
func (s *Scorer) Score(title, body string) int {
	title = strings.ToLower(title)
	body = strings.ToLower(body)

	score := 0
	for _, kw := range s.strong {
		if strings.Contains(title, kw) {
			score += StrongTitleWeight
		}
		if strings.Contains(body, kw) {
			score += StrongBodyWeight
		}
	}
	for _, kw := range s.weak {
		if strings.Contains(title, kw) {
			score += WeakTitleWeight
		}
	}
	return score
}

// Passes reports whether a score clears the inclusion threshold.
func (s *Scorer) Passes(score int) bool {
	return score >= s.minScore
}

func normalize(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}
