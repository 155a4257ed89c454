// Package llm talks to the text-generation service and turns its reply into
// normalized analysis records.
package llm

import (
	"context"
	"fmt"
	"log/slog"

	"MorningDigest/internal/config"
	"MorningDigest/internal/domain"
	"MorningDigest/internal/logging"
	"MorningDigest/internal/ports"
	"MorningDigest/internal/response"
)

// NewChatClient returns the client for the configured provider.
func NewChatClient(ctx context.Context, cfg config.ModelConfig) (ports.ChatClient, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewChatGPTClient(cfg, nil)
	case config.ProviderGemini, "":
		return NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

// Analyzer implements ports.Analyzer on top of a ChatClient.
type Analyzer struct {
	client ports.ChatClient
	logger *slog.Logger
}

var _ ports.Analyzer = (*Analyzer)(nil)

func NewAnalyzer(client ports.ChatClient, log *slog.Logger) *Analyzer {
	if log == nil {
		log = logging.Discard()
	}
	return &Analyzer{client: client, logger: log}
}

// Analyze completes the prompt, recovers the JSON document from the reply
// and normalizes it into records.
func (a *Analyzer) Analyze(ctx context.Context, prompt string) (domain.AnalysisSet, error) {
	text, err := a.client.Complete(ctx, prompt)
	if err != nil {
		return domain.AnalysisSet{}, fmt.Errorf("complete prompt: %w", err)
	}

	raw, err := response.ExtractJSON(text)
	if err != nil {
		return domain.AnalysisSet{}, err
	}

	set := response.Normalize(raw)
	if set.Discarded > 0 {
		a.logger.Warn("discarded malformed records", "count", set.Discarded)
	}
	a.logger.Info("model response normalized", "records", len(set.Records), "response_chars", len(text))
	return set, nil
}
