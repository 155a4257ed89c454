package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"MorningDigest/internal/domain"
	"MorningDigest/internal/logging"
	"MorningDigest/internal/scanner"
	"MorningDigest/internal/throttle"
)

const (
	arxivBaseURL   = "https://export.arxiv.org/api/query"
	arxivErrorsTag = "/api/errors"
)

// ArxivScanner queries the arXiv Atom API for the newest submissions in a set
// of categories. It is a primary source: any failure aborts the scan.
type ArxivScanner struct {
	client    *http.Client
	baseURL   string
	userAgent string
	pacer     *throttle.Pacer
	logger    *slog.Logger
}

// ArxivOptions tunes the scanner; zero values fall back to defaults.
type ArxivOptions struct {
	BaseURL   string
	UserAgent string
	Pause     time.Duration
}

// NewArxivScanner wires an HTTP client; the default timeout is 30s.
func NewArxivScanner(client *http.Client, opts ArxivOptions, log *slog.Logger) *ArxivScanner {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = arxivBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "MorningDigest/1.0"
	}
	if log == nil {
		log = logging.Discard()
	}
	return &ArxivScanner{
		client:    client,
		baseURL:   opts.BaseURL,
		userAgent: opts.UserAgent,
		pacer:     throttle.NewPacer(opts.Pause),
		logger:    log,
	}
}

// Name identifies the strategy inside the registry.
func (a *ArxivScanner) Name() string {
	return "arxiv"
}

// Scan returns the newest papers for the requested categories, newest first.
func (a *ArxivScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Paper, error) {
	if len(req.Topics) == 0 {
		return nil, fmt.Errorf("no topics provided for source %s", req.SourceName)
	}

	queryURL, err := buildQueryURL(a.baseURL, req.Topics, req.MaxResults)
	if err != nil {
		return nil, err
	}

	if err := a.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := a.fetchFeed(ctx, queryURL)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", req.SourceName, err)
	}

	if msg, ok := feedError(feed); ok {
		return nil, fmt.Errorf("source %s: arxiv rejected query: %s", req.SourceName, msg)
	}

	papers := make([]domain.Paper, 0, len(feed.Items))
	seen := map[string]struct{}{}
	for _, item := range feed.Items {
		paper, ok := parseEntry(item, req.SourceName, req.Category)
		if !ok {
			continue
		}
		if _, dup := seen[paper.ID]; dup {
			continue
		}
		seen[paper.ID] = struct{}{}
		papers = append(papers, paper)
		if req.MaxResults > 0 && len(papers) >= req.MaxResults {
			break
		}
	}

	a.logger.Debug("arxiv scan done", "source", req.SourceName, "entries", len(feed.Items), "papers", len(papers))
	return papers, nil
}

func (a *ArxivScanner) fetchFeed(ctx context.Context, queryURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned %s", resp.Status)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// feedError reports the message of an arXiv error entry, which the API
// returns with a 200 status when the query is malformed.
func feedError(feed *gofeed.Feed) (string, bool) {
	for _, item := range feed.Items {
		if item == nil || !strings.Contains(item.GUID, arxivErrorsTag) {
			continue
		}
		msg := domain.CollapseSpace(item.Description)
		if msg == "" {
			msg = domain.CollapseSpace(item.Title)
		}
		return msg, true
	}
	return "", false
}

func parseEntry(item *gofeed.Item, sourceName, category string) (domain.Paper, bool) {
	if item == nil {
		return domain.Paper{}, false
	}

	rawID := strings.TrimSpace(item.GUID)
	if rawID == "" {
		rawID = strings.TrimSpace(item.Link)
	}
	if rawID == "" || strings.Contains(rawID, arxivErrorsTag) {
		return domain.Paper{}, false
	}

	link := rawID
	if !strings.HasPrefix(link, "http") {
		link = item.Link
	}

	return domain.Paper{
		ID:        domain.CanonicalID(rawID),
		URL:       link,
		Title:     domain.CollapseSpace(item.Title),
		Abstract:  domain.CollapseSpace(item.Description),
		Published: strings.TrimSpace(item.Published),
		Category:  category,
		Source:    sourceName,
	}, true
}

func buildQueryURL(base string, topics []string, maxResults int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid arxiv url %s: %w", base, err)
	}

	terms := make([]string, 0, len(topics))
	for _, t := range topics {
		terms = append(terms, "cat:"+strings.TrimSpace(t))
	}

	query := parsed.Query()
	query.Set("search_query", strings.Join(terms, " OR "))
	query.Set("sortBy", "submittedDate")
	query.Set("sortOrder", "descending")
	if maxResults > 0 {
		query.Set("max_results", strconv.Itoa(maxResults))
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
