package ports

import (
	"context"
	"time"

	"MorningDigest/internal/config"
	"MorningDigest/internal/domain"
)

// PaperSource pulls fresh papers for one category from its configured sources.
type PaperSource interface {
	FetchCategory(ctx context.Context, cat config.CategoryConfig, now time.Time) ([]domain.SourceBatch, error)
}

// Enricher replaces a short abstract with a full-text excerpt when it can.
// It never fails: on any problem it returns the truncated abstract and false.
type Enricher interface {
	Enrich(ctx context.Context, paper domain.Paper) (content string, fullText bool)
}

// ChatClient sends a prompt to a text-generation service and returns the raw
// generated text.
type ChatClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Analyzer returns the normalized model verdicts for a prompt.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (domain.AnalysisSet, error)
}

// Publisher writes the final digest artifact.
type Publisher interface {
	Publish(ctx context.Context, digest domain.Digest) error
}
