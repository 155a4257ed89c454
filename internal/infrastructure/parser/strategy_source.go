package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"MorningDigest/internal/config"
	"MorningDigest/internal/domain"
	"MorningDigest/internal/ports"
	"MorningDigest/internal/scanner"
)

// StrategySource implements PaperSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	window   time.Duration
	logger   *slog.Logger
}

var _ ports.PaperSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with the recency window used
// to bound date-range listings.
func NewStrategySource(reg *scanner.Registry, window time.Duration, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		window:   window,
		logger:   log,
	}
}

// FetchCategory runs every source configured for the category, in order, and
// returns one batch per source.
func (s *StrategySource) FetchCategory(ctx context.Context, cat config.CategoryConfig, now time.Time) ([]domain.SourceBatch, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("fetch category", "category", cat.Name, "sources", len(cat.Sources))

	batches := make([]domain.SourceBatch, 0, len(cat.Sources))
	for _, src := range cat.Sources {
		strategy, err := s.registry.Resolve(src.Scanner)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Name, err)
		}

		req := scanner.Request{
			SourceName: src.Name,
			Category:   cat.Name,
			Topics:     src.Topics,
			MaxResults: src.MaxResults,
			Since:      now.Add(-s.window),
			Until:      now,
			Options:    src.Options,
		}

		papers, err := strategy.Scan(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("scan source %s: %w", src.Name, err)
		}

		for i := range papers {
			if papers[i].Source == "" {
				papers[i].Source = src.Name
			}
			papers[i].Category = cat.Name
		}
		s.debug("source produced papers", "source", src.Name, "count", len(papers))
		dayPrecise, _ := strategy.(scanner.DayPrecise)
		batches = append(batches, domain.SourceBatch{
			Source:       src.Name,
			ScoreBonus:   src.ScoreBonus,
			DayPrecision: dayPrecise != nil && dayPrecise.DayPrecision(),
			Papers:       papers,
		})
	}

	return batches, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
