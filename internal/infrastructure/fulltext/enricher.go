// Package fulltext fetches the HTML rendering of a paper and cuts a bounded
// introduction + conclusion excerpt from it.
package fulltext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"MorningDigest/internal/config"
	"MorningDigest/internal/domain"
	"MorningDigest/internal/logging"
	"MorningDigest/internal/ports"
	"MorningDigest/internal/throttle"
)

const (
	maxBodyBytes = 16 << 20
	// DefaultTimeout is used when configuration leaves the timeout unset.
	DefaultTimeout = 15 * time.Second
)

// Enricher implements ports.Enricher over plain HTTP.
type Enricher struct {
	client        *http.Client
	userAgent     string
	templates     map[string]string
	minBytes      int
	abstractChars int
	limits        Limits
	readability   bool
	pacer         *throttle.Pacer
	logger        *slog.Logger
}

var _ ports.Enricher = (*Enricher)(nil)

// NewEnricher builds an enricher for every category with full text enabled.
// The request timeout comes from cfg.Timeout unless client is supplied.
func NewEnricher(cfg config.FullTextConfig, categories []config.CategoryConfig, client *http.Client, userAgent string, log *slog.Logger) *Enricher {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	if log == nil {
		log = logging.Discard()
	}

	templates := map[string]string{}
	for _, cat := range categories {
		if cat.FullText && cat.FullTextURL != "" {
			templates[cat.Name] = cat.FullTextURL
		}
	}

	return &Enricher{
		client:        client,
		userAgent:     userAgent,
		templates:     templates,
		minBytes:      cfg.MinBytes,
		abstractChars: cfg.AbstractChars,
		limits: Limits{
			MinTextChars:    cfg.MinTextChars,
			IntroChars:      cfg.IntroChars,
			ConclusionChars: cfg.ConclusionChars,
			TotalChars:      cfg.TotalChars,
			Markers:         cfg.Markers,
		},
		readability: cfg.Readability,
		pacer:       throttle.NewPacer(cfg.Pause),
		logger:      log,
	}
}

// Enrich returns a full-text excerpt, or the truncated abstract and false
// when the category has no full-text source or anything goes wrong.
func (e *Enricher) Enrich(ctx context.Context, paper domain.Paper) (string, bool) {
	fallback := headRunes(paper.Abstract, e.abstractChars)

	tmpl, ok := e.templates[paper.Category]
	if !ok {
		return fallback, false
	}
	if err := e.pacer.Wait(ctx); err != nil {
		return fallback, false
	}

	pageURL := strings.ReplaceAll(tmpl, "{id}", domain.CanonicalID(paper.ID))
	excerpt, err := e.fetchExcerpt(ctx, pageURL)
	if err != nil {
		e.logger.Debug("full text unavailable", "id", paper.ID, "url", pageURL, "error", err)
		return fallback, false
	}
	return excerpt, true
}

func (e *Enricher) fetchExcerpt(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request full text: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("full text returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read full text: %w", err)
	}
	if len(body) < e.minBytes {
		return "", fmt.Errorf("full text too short: %d bytes", len(body))
	}

	if e.readability {
		body = e.mainContent(body, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse full text: %w", err)
	}

	excerpt := Excerpt(PlainText(doc), e.limits)
	if excerpt == "" {
		return "", fmt.Errorf("full text has no prose")
	}
	return excerpt, nil
}

// mainContent narrows the page to its article body; on failure the original
// HTML is kept.
func (e *Enricher) mainContent(body []byte, pageURL string) []byte {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return body
	}
	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(body), parsedURL)
	if err != nil || strings.TrimSpace(article.Content) == "" {
		return body
	}
	return []byte(article.Content)
}
