package relevance

import (
	"sort"

	"MorningDigest/internal/domain"
)

// Group is the scored output of one source. Groups are merged in priority
// order: on an ID collision the earlier group wins.
type Group struct {
	Source string
	Bonus  int
	Papers []domain.ScoredPaper
}

// Merge applies each group's bonus, deduplicates by canonical ID preferring
// the higher-priority group, orders by score (ties keep priority order) and
// truncates to max. A non-positive max keeps everything.
func Merge(groups []Group, max int) []domain.ScoredPaper {
	seen := map[string]struct{}{}
	var merged []domain.ScoredPaper

	for _, g := range groups {
		for _, sp := range g.Papers {
			key := domain.CanonicalID(sp.Paper.ID)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			sp.Relevance += g.Bonus
			merged = append(merged, sp)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Relevance > merged[j].Relevance
	})

	if max > 0 && len(merged) > max {
		merged = merged[:max]
	}
	return merged
}

// Rank scores a batch, drops papers below the threshold and returns the
// survivors as a merge group.
func (s *Scorer) Rank(batch domain.SourceBatch) Group {
	g := Group{Source: batch.Source, Bonus: batch.ScoreBonus}
	for _, p := range batch.Papers {
		score := s.Score(p.Title, p.Abstract)
		if !s.Passes(score) {
			continue
		}
		g.Papers = append(g.Papers, domain.ScoredPaper{Paper: p, Relevance: score})
	}
	return g
}
