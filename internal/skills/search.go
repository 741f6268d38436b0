package skills

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
	"github.com/tmc/langchaingo/tools/duckduckgo"

	"github.com/rahul/nexus/internal/intent"
)

const searchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

var urlPattern = regexp.MustCompile(`https?://[^\s"<>]+`)

// Search answers SEARCH_WEB via DuckDuckGo, enriched with the readable text
// of the top result so the narrator has substance to report.
type Search struct {
	client    *duckduckgo.Tool
	sanitizer *bluemonday.Policy
	http      *http.Client
}

func NewSearch() (*Search, error) {
	ddg, err := duckduckgo.New(5, searchUserAgent)
	if err != nil {
		return nil, err
	}
	return &Search{
		client:    ddg,
		sanitizer: bluemonday.StrictPolicy(),
		http:      &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (s *Search) Kind() intent.Kind { return intent.KindSearchWeb }

func (s *Search) Execute(ctx context.Context, step intent.Step) intent.StepResult {
	query := step.Arg("query")

	results, err := s.client.Call(ctx, query)
	if err != nil {
		return fail(step, fmt.Sprintf("search failed: %v", err))
	}
	if strings.TrimSpace(results) == "" {
		return ok(step, fmt.Sprintf("No results found for %q.", query))
	}

	// Best effort: pull readable text out of the first linked page.
	if top := urlPattern.FindString(results); top != "" {
		if article := s.readPage(ctx, top); article != "" {
			results += "\n\nTop result content:\n" + article
		}
	}
	return ok(step, results)
}

// readPage fetches a page and extracts its main content as sanitized text.
// Any failure returns "" so a broken page never fails the search step.
func (s *Search) readPage(ctx context.Context, pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", searchUserAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return ""
	}

	text := strings.TrimSpace(s.sanitizer.Sanitize(article.TextContent))
	const maxChars = 2000
	if len(text) > maxChars {
		text = text[:maxChars] + "…"
	}
	return text
}
