package oracle

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchOrganicResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search.json", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "google", q.Get("engine"))
		require.Equal(t, "test-key", q.Get("api_key"))
		require.Equal(t, "us", q.Get("gl"))

		fmt.Fprint(w, `{
			"organic_results": [
				{"title": "Fact check: the claim", "link": "https://factcheck.example.org/a", "snippet": "The claim is false.", "source": "FactCheck"},
				{"title": "Background", "link": "https://news.example.com/b", "snippet": "Context here."}
			],
			"answer_box": {"answer": "The claim is false."}
		}`)
	}))
	defer srv.Close()

	res := NewSearchClient("test-key", srv.URL).Search(context.Background(), "the claim")

	assert.Empty(t, res.Error)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "Fact check: the claim", res.Results[0].Title)
	assert.Equal(t, "The claim is false.", res.Overview, "answer box backs up a missing AI overview")
}

func TestSearchNewsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"news_results": [{"title": "Breaking", "link": "https://n.example.com/1"}]}`)
	}))
	defer srv.Close()

	res := NewSearchClient("k", srv.URL).Search(context.Background(), "q")

	require.Len(t, res.Results, 1)
	assert.Equal(t, "Breaking", res.Results[0].Title)
}

func TestSearchAIOverviewSecondStep(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		engine := r.URL.Query().Get("engine")
		calls = append(calls, engine)

		switch engine {
		case "google":
			fmt.Fprint(w, `{
				"organic_results": [{"title": "t", "link": "l"}],
				"ai_overview": {"page_token": "tok123"}
			}`)
		case "google_ai_overview":
			require.Equal(t, "tok123", r.URL.Query().Get("page_token"))
			fmt.Fprint(w, `{"ai_overview": {"text_blocks": [{"snippet": "Overview part one."}, {"snippet": "Part two."}]}}`)
		default:
			t.Errorf("unexpected engine %q", engine)
		}
	}))
	defer srv.Close()

	res := NewSearchClient("k", srv.URL).Search(context.Background(), "q")

	assert.Equal(t, []string{"google", "google_ai_overview"}, calls)
	assert.Equal(t, "Overview part one. Part two.", res.Overview)
}

func TestSearchMissingKeyDegrades(t *testing.T) {
	res := NewSearchClient("", "http://127.0.0.1:0").Search(context.Background(), "q")

	assert.NotEmpty(t, res.Error)
	assert.Empty(t, res.Results)
	assert.Empty(t, res.Context(), "failed search contributes no prompt context")
}

func TestSearchAPIErrorDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error": "quota exceeded"}`)
	}))
	defer srv.Close()

	res := NewSearchClient("k", srv.URL).Search(context.Background(), "q")

	assert.Equal(t, "quota exceeded", res.Error)
	assert.Empty(t, res.Results)
}

func TestSearchResultsContext(t *testing.T) {
	r := &SearchResults{
		Query:    "q",
		Overview: "Short overview.",
		Results: []SearchResult{
			{Title: "A", Link: "https://a.example.com", Snippet: "snip"},
		},
	}

	ctx := r.Context()
	assert.Contains(t, ctx, "Short overview.")
	assert.Contains(t, ctx, "1. A (https://a.example.com)")
	assert.Contains(t, ctx, "snip")
}
