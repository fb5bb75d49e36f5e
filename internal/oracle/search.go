package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

const defaultSearchBaseURL = "https://serpapi.com"

// maxSearchResults caps how many organic results a query returns
const maxSearchResults = 10

// SearchResult is one organic or news result
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet,omitempty"`
	Source  string `json:"source,omitempty"`
}

// SearchResults is what the search oracle hands to the pipeline. A failed
// search is an empty result set with Error filled, never an abort.
type SearchResults struct {
	Query    string         `json:"query"`
	Overview string         `json:"overview,omitempty"`
	Results  []SearchResult `json:"results"`
	Error    string         `json:"error,omitempty"`
}

// Context renders the results as prompt text for the reasoning oracle
func (r *SearchResults) Context() string {
	if r.Error != "" || (r.Overview == "" && len(r.Results) == 0) {
		return ""
	}

	var b strings.Builder
	if r.Overview != "" {
		fmt.Fprintf(&b, "Search overview: %s\n\n", r.Overview)
	}
	for i, res := range r.Results {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, res.Title, res.Link)
		if res.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", res.Snippet)
		}
	}
	return strings.TrimSpace(b.String())
}

// SearchClient queries a SerpAPI-compatible endpoint
type SearchClient struct {
	http    *retryablehttp.Client
	apiKey  string
	baseURL string
}

// NewSearchClient creates a search oracle client. baseURL overrides the
// endpoint, mainly for tests; empty means the public API.
func NewSearchClient(apiKey, baseURL string) *SearchClient {
	if baseURL == "" {
		baseURL = defaultSearchBaseURL
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil

	return &SearchClient{
		http:    rc,
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// serpResponse is the subset of the SerpAPI payload we read
type serpResponse struct {
	OrganicResults []serpResult `json:"organic_results"`
	NewsResults    []serpResult `json:"news_results"`
	AIOverview     struct {
		PageToken  string `json:"page_token"`
		TextBlocks []struct {
			Snippet string `json:"snippet"`
		} `json:"text_blocks"`
	} `json:"ai_overview"`
	AnswerBox struct {
		Answer  string `json:"answer"`
		Snippet string `json:"snippet"`
	} `json:"answer_box"`
	Error string `json:"error"`
}

type serpResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// Search runs the two-step query: organic results first, then the AI
// overview when the payload advertises one. It never returns an error;
// failures come back as an empty result set with Error set so the
// analysis can proceed without web context.
func (c *SearchClient) Search(ctx context.Context, query string) *SearchResults {
	out := &SearchResults{Query: query, Results: []SearchResult{}}

	if c.apiKey == "" {
		out.Error = "search api key not configured"
		return out
	}

	params := url.Values{
		"engine":  {"google"},
		"q":       {query},
		"num":     {fmt.Sprintf("%d", maxSearchResults)},
		"gl":      {"us"},
		"hl":      {"en"},
		"api_key": {c.apiKey},
	}

	var step1 serpResponse
	if err := c.get(ctx, params, &step1); err != nil {
		out.Error = err.Error()
		slog.Warn("search oracle failed", "query", query, "error", err)
		return out
	}
	if step1.Error != "" {
		out.Error = step1.Error
		return out
	}

	results := step1.OrganicResults
	if len(results) == 0 {
		results = step1.NewsResults
	}
	for _, r := range results {
		if len(out.Results) >= maxSearchResults {
			break
		}
		out.Results = append(out.Results, SearchResult(r))
	}

	out.Overview = c.fetchOverview(ctx, step1)

	slog.Info("search complete", "query", query, "results", len(out.Results), "overview", out.Overview != "")
	return out
}

// fetchOverview resolves the AI overview: inline text blocks first, then
// the page_token second request, then the answer box
func (c *SearchClient) fetchOverview(ctx context.Context, step1 serpResponse) string {
	if text := joinBlocks(step1); text != "" {
		return text
	}

	if token := step1.AIOverview.PageToken; token != "" {
		params := url.Values{
			"engine":     {"google_ai_overview"},
			"page_token": {token},
			"api_key":    {c.apiKey},
		}

		var step2 serpResponse
		if err := c.get(ctx, params, &step2); err != nil {
			slog.Debug("ai overview fetch failed", "error", err)
		} else if text := joinBlocks(step2); text != "" {
			return text
		}
	}

	if step1.AnswerBox.Answer != "" {
		return step1.AnswerBox.Answer
	}
	return step1.AnswerBox.Snippet
}

func joinBlocks(r serpResponse) string {
	var parts []string
	for _, b := range r.AIOverview.TextBlocks {
		if s := strings.TrimSpace(b.Snippet); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func (c *SearchClient) get(ctx context.Context, params url.Values, v any) error {
	reqURL := c.baseURL + "/search.json?" + params.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("search api status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}
