package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"MorningDigest/internal/config"
	"MorningDigest/internal/infrastructure/fulltext"
	"MorningDigest/internal/infrastructure/llm"
	"MorningDigest/internal/infrastructure/parser"
	"MorningDigest/internal/logging"
	"MorningDigest/internal/prompt"
	"MorningDigest/internal/render"
	"MorningDigest/internal/scanner"
	"MorningDigest/internal/usecase"
)

// Application wires configs to use cases.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	closers  []io.Closer
	logger   *slog.Logger
}

// New builds a runnable application. The model client is created first so a
// missing credential fails before any network traffic.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	baseLogger = baseLogger.With("run_id", uuid.NewString())

	chatClient, err := llm.NewChatClient(ctx, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("model client: %w", err)
	}
	var closers []io.Closer
	if c, ok := chatClient.(io.Closer); ok {
		closers = append(closers, c)
	}

	httpClient := &http.Client{Timeout: cfg.Providers.RequestTimeout}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewArxivScanner(httpClient, parser.ArxivOptions{
		BaseURL:   cfg.Providers.ArxivAPIURL,
		UserAgent: cfg.Providers.UserAgent,
		Pause:     cfg.Providers.Pause,
	}, baseLogger.With("component", "scanner.arxiv")))
	for _, server := range []string{"biorxiv", "medrxiv"} {
		registry.Register(parser.NewRxivScanner(server, httpClient, parser.RxivOptions{
			BaseURL:   cfg.Providers.RxivAPIURL,
			UserAgent: cfg.Providers.UserAgent,
			Pause:     cfg.Providers.Pause,
			PageCap:   cfg.Providers.RxivPageCap,
		}, baseLogger.With("component", "scanner."+server)))
	}

	source := parser.NewStrategySource(registry, cfg.Run.Window(), baseLogger.With("component", "source"))

	enricher := fulltext.NewEnricher(cfg.FullText, cfg.Categories, nil, cfg.Providers.UserAgent,
		baseLogger.With("component", "fulltext"))

	footer := fmt.Sprintf("%s · %s %s · %dh", cfg.Render.Locale.Footer, cfg.Model.Provider, cfg.Model.Name, cfg.Run.HoursBack)
	renderer := render.NewRenderer(cfg.Run.OutputPath, cfg.Render, cfg.Categories, footer,
		baseLogger.With("component", "render"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Enricher:   enricher,
		Prompts:    prompt.NewBuilder(cfg.Persona, cfg.FullText.TotalChars),
		Analyzer:   llm.NewAnalyzer(chatClient, baseLogger.With("component", "llm")),
		Publisher:  renderer,
		Categories: cfg.Categories,
		Window:     cfg.Run.Window(),
		Logger:     baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, pipeline: pipeline, closers: closers, logger: baseLogger}, nil
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context) error {
	analyzed := make([]string, 0, len(a.cfg.Categories))
	for _, cat := range a.cfg.AnalyzedCategories() {
		analyzed = append(analyzed, cat.Name)
	}
	a.logger.Info("digest run started",
		"categories", len(a.cfg.Categories), "analyzed", analyzed, "hours_back", a.cfg.Run.HoursBack)
	if err := a.pipeline.Run(ctx); err != nil {
		return err
	}
	a.logger.Info("digest run finished", "output", a.cfg.Run.OutputPath)
	return nil
}

// Close releases clients that hold connections.
func (a *Application) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
