package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"MorningDigest/internal/config"
	"MorningDigest/internal/ports"
)

// GeminiClient implements ports.ChatClient for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

var _ ports.ChatClient = (*GeminiClient)(nil)

// NewGeminiClient creates a Gemini client. A missing API key fails before
// any network call.
func NewGeminiClient(ctx context.Context, cfg config.ModelConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: set %s", ErrMissingAPIKey, cfg.APIKeyEnv())
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Name)
	model.SetTemperature(cfg.Temperature)
	model.SetMaxOutputTokens(cfg.MaxOutputTokens)
	model.ResponseMIMEType = "application/json"

	return &GeminiClient{client: client, model: model, name: cfg.Name}, nil
}

// Complete sends the prompt and returns the concatenated text parts.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return "", fmt.Errorf("%w: %s", ErrEmptyResponse, blocked.Error())
		}
		return "", fmt.Errorf("gemini %s: %w", c.name, err)
	}
	return responseText(resp)
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// responseText joins the text parts of the first candidate. An empty result
// reports the finish or block reason so truncation is distinguishable from
// a parse failure.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", ErrEmptyResponse)
	}
	if len(resp.Candidates) == 0 {
		reason := "no candidates"
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
			reason = "blocked: " + resp.PromptFeedback.BlockReason.String()
		}
		return "", fmt.Errorf("%w: %s", ErrEmptyResponse, reason)
	}

	candidate := resp.Candidates[0]
	var sb strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: finish reason %s", ErrEmptyResponse, candidate.FinishReason.String())
	}
	return text, nil
}
