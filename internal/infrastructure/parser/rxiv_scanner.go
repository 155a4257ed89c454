package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"MorningDigest/internal/domain"
	"MorningDigest/internal/logging"
	"MorningDigest/internal/scanner"
	"MorningDigest/internal/throttle"
)

const (
	rxivBaseURL   = "https://api.biorxiv.org/details"
	rxivDayLayout = "2006-01-02"
)

// RxivScanner pages through the bioRxiv/medRxiv "details" listing for a date
// range. It is a secondary source: a failing page stops pagination and the
// papers collected so far are returned.
type RxivScanner struct {
	server    string
	client    *http.Client
	baseURL   string
	userAgent string
	pageCap   int
	pacer     *throttle.Pacer
	logger    *slog.Logger
}

// RxivOptions tunes the scanner; zero values fall back to defaults.
type RxivOptions struct {
	BaseURL   string
	UserAgent string
	Pause     time.Duration
	PageCap   int
}

type rxivPage struct {
	Messages   []rxivMessage `json:"messages"`
	Collection []rxivRecord  `json:"collection"`
}

type rxivMessage struct {
	Status string          `json:"status"`
	Total  json.RawMessage `json:"total"`
}

type rxivRecord struct {
	DOI      string `json:"doi"`
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	Date     string `json:"date"`
	Version  string `json:"version"`
	Category string `json:"category"`
}

// NewRxivScanner builds a scanner for one server ("biorxiv" or "medrxiv").
func NewRxivScanner(server string, client *http.Client, opts RxivOptions, log *slog.Logger) *RxivScanner {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = rxivBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "MorningDigest/1.0"
	}
	if opts.PageCap <= 0 {
		opts.PageCap = 20
	}
	if log == nil {
		log = logging.Discard()
	}
	return &RxivScanner{
		server:    server,
		client:    client,
		baseURL:   strings.TrimSuffix(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		pageCap:   opts.PageCap,
		pacer:     throttle.NewPacer(opts.Pause),
		logger:    log,
	}
}

// Name identifies the strategy inside the registry.
func (r *RxivScanner) Name() string {
	return r.server
}

// Scan lists papers posted between req.Since and req.Until, filtered to the
// requested subject categories, newest first.
func (r *RxivScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Paper, error) {
	if req.Since.IsZero() || req.Until.IsZero() {
		return nil, fmt.Errorf("source %s: date range is required", req.SourceName)
	}

	topics := topicSet(req.Topics)
	seen := map[string]struct{}{}
	var papers []domain.Paper

	cursor := 0
	for page := 0; page < r.pageCap; page++ {
		if err := r.pacer.Wait(ctx); err != nil {
			return papers, err
		}

		batch, total, err := r.fetchPage(ctx, req.Since, req.Until, cursor)
		if err != nil {
			r.logger.Warn("stop paginating after page failure",
				"source", req.SourceName, "cursor", cursor, "collected", len(papers), "error", err)
			break
		}

		for _, rec := range batch {
			if len(topics) > 0 {
				if _, ok := topics[normalizeTopic(rec.Category)]; !ok {
					continue
				}
			}
			if _, dup := seen[rec.DOI]; dup || rec.DOI == "" {
				continue
			}
			seen[rec.DOI] = struct{}{}
			papers = append(papers, r.toPaper(rec, req))
		}

		cursor += len(batch)
		if len(batch) == 0 || cursor >= total {
			break
		}
	}

	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].Published > papers[j].Published
	})
	if req.MaxResults > 0 && len(papers) > req.MaxResults {
		papers = papers[:req.MaxResults]
	}

	r.logger.Debug("rxiv scan done", "source", req.SourceName, "papers", len(papers))
	return papers, nil
}

func (r *RxivScanner) fetchPage(ctx context.Context, since, until time.Time, cursor int) ([]rxivRecord, int, error) {
	pageURL := fmt.Sprintf("%s/%s/%s/%s/%d",
		r.baseURL, r.server, since.UTC().Format(rxivDayLayout), until.UTC().Format(rxivDayLayout), cursor)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("%s returned %s", r.server, resp.Status)
	}

	var page rxivPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, 0, fmt.Errorf("decode page: %w", err)
	}
	if len(page.Messages) == 0 {
		return nil, 0, fmt.Errorf("%s page without status message", r.server)
	}

	msg := page.Messages[0]
	if !strings.EqualFold(msg.Status, "ok") {
		// "no posts found" and friends end the listing normally.
		return nil, 0, nil
	}
	return page.Collection, looseCount(msg.Total), nil
}

// DayPrecision reports that listings carry posting dates without a time.
func (r *RxivScanner) DayPrecision() bool {
	return true
}

func (r *RxivScanner) toPaper(rec rxivRecord, req scanner.Request) domain.Paper {
	published := rec.Date
	if day, err := time.Parse(rxivDayLayout, strings.TrimSpace(rec.Date)); err == nil {
		published = day.UTC().Format(time.RFC3339)
	}

	link := fmt.Sprintf("https://www.%s.org/content/%s", r.server, rec.DOI)
	if v := strings.TrimSpace(rec.Version); v != "" {
		link += "v" + v
	}

	return domain.Paper{
		ID:        rec.DOI,
		URL:       link,
		Title:     domain.CollapseSpace(rec.Title),
		Abstract:  domain.CollapseSpace(rec.Abstract),
		Published: published,
		Category:  req.Category,
		Source:    req.SourceName,
	}
}

func topicSet(topics []string) map[string]struct{} {
	set := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		if t = normalizeTopic(t); t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

func normalizeTopic(s string) string {
	s = strings.ReplaceAll(strings.ToLower(s), "_", " ")
	return domain.CollapseSpace(s)
}

// looseCount reads the reported total, which the API emits as either a
// number or a numeric string.
func looseCount(raw json.RawMessage) int {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return v
		}
	}
	return 0
}
