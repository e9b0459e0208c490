// Package search turns a free-text query into a bounded, readable
// digest of web results.
//
// The DuckDuckGo Lite page is treated as a replaceable collaborator:
// callers depend only on the Search contract, not on the scraping
// strategy.
package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/voyago-ai/voyago/internal/errors"
)

// Client performs a web lookup for a plain-text query.
type Client interface {
	// Search returns a formatted digest of results. Transport and parse
	// failures surface as a SEARCH_UNAVAILABLE error; a search that ran
	// but matched nothing returns the no-results sentinel instead.
	Search(ctx context.Context, query string) (string, error)
}

// Result page markers for DuckDuckGo Lite. Titles and snippets sit on
// single lines inside a fixed table layout.
const (
	titleMarker   = `class="result-link"`
	snippetMarker = `class="result-snippet"`
	titleEnd      = "</a>"
	snippetEnd    = "</td>"
	captureStart  = `">`
)

// Config configures the DuckDuckGo client.
type Config struct {
	// Endpoint is a printf-style URL template receiving the encoded query.
	Endpoint   string
	MaxResults int
	Timeout    time.Duration
	Logger     *zap.Logger
}

// DuckDuckGo scrapes the DuckDuckGo Lite results page.
type DuckDuckGo struct {
	endpoint   string
	maxResults int
	client     *http.Client
	logger     *zap.Logger
}

// NewDuckDuckGo creates a search client.
func NewDuckDuckGo(cfg *Config) *DuckDuckGo {
	if cfg == nil {
		cfg = &Config{}
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://lite.duckduckgo.com/lite/?q=%s"
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DuckDuckGo{
		endpoint:   endpoint,
		maxResults: maxResults,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Search fetches and parses the results page for query.
func (d *DuckDuckGo) Search(ctx context.Context, query string) (string, error) {
	target := fmt.Sprintf(d.endpoint, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, "GET", target, nil)
	if err != nil {
		return "", unavailable(err, "failed to build search request")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn("web search request failed", zap.Error(err))
		return "", unavailable(err, "web search failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		d.logger.Warn("web search returned non-200", zap.Int("status", resp.StatusCode))
		return "", unavailable(nil, fmt.Sprintf("web search returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", unavailable(err, "failed to read search response")
	}
	html := string(body)
	if !strings.Contains(html, "<") {
		// Not an HTML page; treat as undecodable.
		return "", unavailable(nil, "search response was not a results page")
	}

	digest := d.parseResults(html, query)
	d.logger.Debug("web search completed",
		zap.String("query", query),
		zap.Int("digest_len", len(digest)))
	return digest, nil
}

// parseResults scans the page line by line and extracts up to
// maxResults title/snippet pairs in page order.
func (d *DuckDuckGo) parseResults(html, query string) string {
	results := []string{fmt.Sprintf("Web search results for: %q\n", query)}

	var current string
	count := 0

	for _, line := range strings.Split(html, "\n") {
		if strings.Contains(line, titleMarker) {
			if current != "" && count < d.maxResults {
				results = append(results, fmt.Sprintf("\n[%d] %s", count+1, current))
				count++
				current = ""
			}
			if title, ok := extractBetween(line, captureStart, titleEnd); ok {
				current = cleanHTML(title)
			}
		}

		if strings.Contains(line, snippetMarker) {
			if snippet, ok := extractBetween(line, captureStart, snippetEnd); ok {
				if cleaned := cleanHTML(snippet); cleaned != "" {
					current += "\n   " + cleaned
				}
			}
		}

		if count >= d.maxResults {
			break
		}
	}

	if current != "" && count < d.maxResults {
		results = append(results, fmt.Sprintf("\n[%d] %s", count+1, current))
		count++
	}

	if count == 0 {
		return NoResults(query)
	}

	return strings.Join(results, "\n")
}

// NoResults returns the sentinel used when a search ran but matched
// nothing. Downstream stages treat it as "no usable information",
// never as content to repeat verbatim.
func NoResults(query string) string {
	return "no results found for: " + query
}

// extractBetween captures the text between the first occurrence of
// start and the following occurrence of end on the same line.
func extractBetween(line, start, end string) (string, bool) {
	i := strings.Index(line, start)
	if i < 0 {
		return "", false
	}
	rest := line[i+len(start):]
	j := strings.Index(rest, end)
	if j < 0 {
		return "", false
	}
	return rest[:j], true
}

// unavailable wraps a transport/parse failure as SEARCH_UNAVAILABLE.
// This is the "none" outcome, distinct from the no-results sentinel.
func unavailable(err error, message string) error {
	if err == nil {
		return apperrors.Temporary(apperrors.CodeSearchUnavailable, message)
	}
	return apperrors.Wrap(err, apperrors.CodeSearchUnavailable, message, apperrors.CategoryTemporary)
}
