package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"MorningDigest/internal/config"
	"MorningDigest/internal/domain"
	"MorningDigest/internal/logging"
	"MorningDigest/internal/ports"
	"MorningDigest/internal/prompt"
	"MorningDigest/internal/recency"
	"MorningDigest/internal/relevance"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.PaperSource
	Enricher   ports.Enricher
	Prompts    *prompt.Builder
	Analyzer   ports.Analyzer
	Publisher  ports.Publisher
	Categories []config.CategoryConfig
	Window     time.Duration
	Clock      func() time.Time
	Logger     *slog.Logger
}

// Pipeline implements the nightly digest workflow.
type Pipeline struct {
	source     ports.PaperSource
	enricher   ports.Enricher
	prompts    *prompt.Builder
	analyzer   ports.Analyzer
	publisher  ports.Publisher
	categories []config.CategoryConfig
	window     time.Duration
	clock      func() time.Time
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	log := deps.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &Pipeline{
		source:     deps.Source,
		enricher:   deps.Enricher,
		prompts:    deps.Prompts,
		analyzer:   deps.Analyzer,
		publisher:  deps.Publisher,
		categories: deps.Categories,
		window:     deps.Window,
		clock:      clock,
		logger:     log,
	}
}

// Run fetches, filters, analyzes and publishes one digest. An empty input
// still publishes an explicit empty page.
func (p *Pipeline) Run(ctx context.Context) error {
	now := p.clock().UTC()

	selected, candidates, err := p.collect(ctx, now)
	if err != nil {
		return err
	}

	digest := domain.Digest{GeneratedAt: now, Candidates: candidates}

	total := 0
	for _, papers := range selected {
		total += len(papers)
	}
	if total == 0 {
		p.logger.Info("no recent papers, publishing empty digest")
		return p.publish(ctx, digest)
	}

	p.enrich(ctx, selected)

	analyses, err := p.analyze(ctx, selected)
	if err != nil {
		return err
	}

	for _, cat := range p.categories {
		for _, paper := range selected[cat.Name] {
			ap := domain.AnalyzedPaper{Paper: paper}
			if a, ok := analyses[domain.CanonicalID(paper.ID)]; ok {
				ap.Analysis = &a
			}
			digest.Papers = append(digest.Papers, ap)
		}
	}

	return p.publish(ctx, digest)
}

// collect runs fetch, recency filter and per-category selection, then
// removes papers already claimed by an earlier category.
func (p *Pipeline) collect(ctx context.Context, now time.Time) (map[string][]domain.Paper, map[string]int, error) {
	selected := make(map[string][]domain.Paper, len(p.categories))
	candidates := make(map[string]int, len(p.categories))
	claimed := map[string]struct{}{}

	for _, cat := range p.categories {
		batches, err := p.source.FetchCategory(ctx, cat, now)
		if err != nil {
			return nil, nil, fmt.Errorf("fetch category %s: %w", cat.Name, err)
		}

		fetched := 0
		for i := range batches {
			fetched += len(batches[i].Papers)
			window := p.window
			if batches[i].DayPrecision {
				window = recency.DayWindow(window, now)
			}
			kept, stats := recency.Filter(batches[i].Papers, window, now)
			if stats.Unparsable > 0 || stats.Outside > 0 {
				p.logger.Debug("recency filter dropped papers",
					"category", cat.Name, "source", batches[i].Source,
					"unparsable", stats.Unparsable, "outside_window", stats.Outside)
			}
			batches[i].Papers = kept
		}

		papers := selectPapers(cat, batches)

		var unique []domain.Paper
		duplicates := 0
		for _, paper := range papers {
			key := domain.CanonicalID(paper.ID)
			if _, ok := claimed[key]; ok {
				duplicates++
				continue
			}
			claimed[key] = struct{}{}
			unique = append(unique, paper)
		}

		selected[cat.Name] = unique
		candidates[cat.Name] = len(unique)
		p.logger.Info("category collected",
			"category", cat.Name, "fetched", fetched, "selected", len(unique), "cross_category_duplicates", duplicates)
	}
	return selected, candidates, nil
}

// selectPapers applies the relevance ranking when configured, otherwise a
// first-seen dedupe in source order. Both truncate to the category cap.
func selectPapers(cat config.CategoryConfig, batches []domain.SourceBatch) []domain.Paper {
	if cat.Relevance != nil {
		scorer := relevance.NewScorer(*cat.Relevance)
		groups := make([]relevance.Group, 0, len(batches))
		for _, b := range batches {
			groups = append(groups, scorer.Rank(b))
		}
		merged := relevance.Merge(groups, cat.MaxPapers)
		out := make([]domain.Paper, len(merged))
		for i, sp := range merged {
			out[i] = sp.Paper
		}
		return out
	}

	seen := map[string]struct{}{}
	var out []domain.Paper
	for _, b := range batches {
		for _, paper := range b.Papers {
			key := domain.CanonicalID(paper.ID)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, paper)
		}
	}
	if cat.MaxPapers > 0 && len(out) > cat.MaxPapers {
		out = out[:cat.MaxPapers]
	}
	return out
}

func (p *Pipeline) enrich(ctx context.Context, selected map[string][]domain.Paper) {
	for _, cat := range p.categories {
		if !cat.Analyzed() {
			continue
		}
		papers := selected[cat.Name]
		fullText := 0
		for i := range papers {
			if p.enricher == nil {
				papers[i].Content = papers[i].Abstract
				continue
			}
			papers[i].Content, papers[i].IsFullText = p.enricher.Enrich(ctx, papers[i])
			if papers[i].IsFullText {
				fullText++
			}
		}
		if len(papers) > 0 {
			p.logger.Info("papers enriched", "category", cat.Name, "full_text", fullText, "abstract_only", len(papers)-fullText)
		}
	}
}

// analyze sends every analyzed paper in one prompt and indexes the verdicts
// by canonical ID. Records for IDs that were never sent are dropped.
func (p *Pipeline) analyze(ctx context.Context, selected map[string][]domain.Paper) (map[string]domain.Analysis, error) {
	var sections []prompt.Section
	sent := map[string]struct{}{}
	for _, cat := range p.categories {
		if !cat.Analyzed() || len(selected[cat.Name]) == 0 {
			continue
		}
		sections = append(sections, prompt.Section{Category: cat, Papers: selected[cat.Name]})
		for _, paper := range selected[cat.Name] {
			sent[domain.CanonicalID(paper.ID)] = struct{}{}
		}
	}

	out := map[string]domain.Analysis{}
	if len(sections) == 0 || p.analyzer == nil || p.prompts == nil {
		return out, nil
	}

	text := p.prompts.Build(sections)
	p.logger.Info("sending papers to model", "papers", len(sent), "prompt_chars", len(text))

	set, err := p.analyzer.Analyze(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("analyze papers: %w", err)
	}

	unknown, repeated := 0, 0
	for _, rec := range set.Records {
		if _, ok := sent[rec.ID]; !ok {
			unknown++
			continue
		}
		if _, ok := out[rec.ID]; ok {
			repeated++
			continue
		}
		out[rec.ID] = rec
	}
	if unknown > 0 || repeated > 0 {
		p.logger.Warn("dropped model records", "unknown_ids", unknown, "repeated_ids", repeated)
	}
	p.logger.Info("papers analyzed", "returned", len(out), "missing", len(sent)-len(out))
	return out, nil
}

func (p *Pipeline) publish(ctx context.Context, digest domain.Digest) error {
	if p.publisher == nil {
		return nil
	}
	if err := p.publisher.Publish(ctx, digest); err != nil {
		return fmt.Errorf("publish digest: %w", err)
	}
	return nil
}
