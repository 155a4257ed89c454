package domain

import (
	"regexp"
	"strings"
	"time"
)

var versionSuffix = regexp.MustCompile(`v\d+$`)

// Paper is a candidate document fetched from an upstream source.
type Paper struct {
	ID          string
	URL         string
	Title       string
	Abstract    string
	Published   string
	PublishedAt time.Time
	Category    string
	Source      string

	// Content is either the truncated abstract or a full-text excerpt.
	Content    string
	IsFullText bool
}

// ScoredPaper carries the local relevance score used for pre-ranking.
type ScoredPaper struct {
	Paper     Paper
	Relevance int
}

// SourceBatch groups papers returned by one configured source.
type SourceBatch struct {
	Source     string
	ScoreBonus int
	// DayPrecision marks sources that publish calendar dates only.
	DayPrecision bool
	Papers       []Paper
}

// Analysis is the model verdict for one paper.
type Analysis struct {
	ID           string
	Score        int
	Discovery    string
	Insight      string
	Action       string
	CanImplement bool
	Tags         []string
}

// AnalysisSet is the normalized model response.
type AnalysisSet struct {
	Records   []Analysis
	Discarded int
}

// AnalyzedPaper joins a paper with its (optional) analysis.
type AnalyzedPaper struct {
	Paper    Paper
	Analysis *Analysis
}

// Score returns the analysis score or zero when the model skipped the paper.
func (a AnalyzedPaper) Score() int {
	if a.Analysis == nil {
		return 0
	}
	return a.Analysis.Score
}

// Digest is the final input of the render stage.
type Digest struct {
	GeneratedAt time.Time
	Papers      []AnalyzedPaper
	// Candidates counts papers per category that survived fetch and filtering.
	Candidates map[string]int
}

// CanonicalID reduces an identifier to the form used for matching:
// no abs URL prefix, no "arXiv:" prefix, no version suffix.
func CanonicalID(raw string) string {
	id := strings.TrimSpace(raw)
	if i := strings.LastIndex(id, "/abs/"); i >= 0 {
		id = id[i+len("/abs/"):]
	}
	if len(id) > 6 && strings.EqualFold(id[:6], "arxiv:") {
		id = id[6:]
	}
	if strings.HasPrefix(id, "10.") {
		return id
	}
	return versionSuffix.ReplaceAllString(id, "")
}

// CollapseSpace folds all whitespace runs, including newlines, into single spaces.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
