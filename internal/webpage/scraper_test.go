package webpage

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/vigil-app/vigil/internal/config"
	"github.com/vigil-app/vigil/internal/fetch"
)

func testLimits() config.ScrapeConfig {
	return config.ScrapeConfig{MaxTextChars: 10000, MaxImages: 10, MaxLinks: 20}
}

func newTestScraper(limits config.ScrapeConfig) *Scraper {
	return NewScraper(fetch.New(5*time.Second), limits)
}

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Miracle Cure Discovered</title></head>
<body>
<header>Site navigation lives here</header>
<nav><a href="/home">Home</a></nav>
<article>
<h1>Miracle Cure Discovered</h1>
<p>Scientists announced today a breakthrough that experts are calling
remarkable. The treatment reportedly cured every patient in the trial,
although the study has not yet been peer reviewed and the sample size
was only four people. Independent researchers urged caution until the
results can be replicated in a larger controlled setting.</p>
<img src="/images/lab.jpg" alt="lab">
<img src="https://cdn.example.net/chart.png">
<a href="https://journal.example.org/study">the published study</a>
<a href="/about">About us</a>
</article>
<script>console.log("ignore me")</script>
<footer>Copyright</footer>
</body>
</html>`

func TestScrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articleHTML)
	}))
	defer srv.Close()

	page, err := newTestScraper(testLimits()).Scrape(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}

	if page.Title != "Miracle Cure Discovered" {
		t.Errorf("Title = %q", page.Title)
	}
	if !strings.Contains(page.Text, "breakthrough") {
		t.Errorf("Text missing article body: %q", page.Text)
	}
	if strings.Contains(page.Text, "console.log") {
		t.Error("Text contains script content")
	}
	if page.Truncated {
		t.Error("Truncated = true for small page")
	}

	wantImg := srv.URL + "/images/lab.jpg"
	foundRelative := false
	for _, img := range page.Images {
		if img == wantImg {
			foundRelative = true
		}
	}
	if !foundRelative {
		t.Errorf("Images = %v, want to include resolved %s", page.Images, wantImg)
	}

	foundStudy := false
	for _, l := range page.Links {
		if l.URL == "https://journal.example.org/study" && l.Text == "the published study" {
			foundStudy = true
		}
	}
	if !foundStudy {
		t.Errorf("Links = %v, want study link with anchor text", page.Links)
	}
}

func TestScrapeCaps(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><head><title>Caps</title></head><body><article><p>")
	b.WriteString(strings.Repeat("word ", 2000))
	b.WriteString("</p>")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, `<img src="/img/%d.png">`, i)
		fmt.Fprintf(&b, `<a href="/link/%d">link %d</a>`, i, i)
	}
	b.WriteString("</article></body></html>")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, b.String())
	}))
	defer srv.Close()

	limits := config.ScrapeConfig{MaxTextChars: 500, MaxImages: 10, MaxLinks: 20}
	page, err := newTestScraper(limits).Scrape(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}

	if len(page.Text) != 500 {
		t.Errorf("len(Text) = %d, want 500", len(page.Text))
	}
	if !page.Truncated {
		t.Error("Truncated = false, want true after text cap")
	}
	if len(page.Images) != 10 {
		t.Errorf("len(Images) = %d, want 10", len(page.Images))
	}
	if len(page.Links) != 20 {
		t.Errorf("len(Links) = %d, want 20", len(page.Links))
	}
}

func TestScrapeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := newTestScraper(testLimits()).Scrape(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"under cap", "short", 10, "short"},
		{"ascii at cap", "exactly10!", 10, "exactly10!"},
		{"ascii over cap", "hello world", 5, "hello"},
		{"multibyte split", "日本語", 4, "日"},
		{"multibyte clean cut", "日本語", 6, "日本"},
		{"emoji split", "ab\U0001F600cd", 4, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateText(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("truncateText(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncateText produced invalid UTF-8: %q", got)
			}
		})
	}
}

func TestResolveURL(t *testing.T) {
	base, _ := url.Parse("https://example.com/news/article")

	tests := []struct {
		ref  string
		want string
	}{
		{"/images/a.png", "https://example.com/images/a.png"},
		{"b.png", "https://example.com/news/b.png"},
		{"https://cdn.example.net/c.png", "https://cdn.example.net/c.png"},
		{"#section", ""},
		{"javascript:void(0)", ""},
		{"mailto:tips@example.com", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			if got := resolveURL(base, tt.ref); got != tt.want {
				t.Errorf("resolveURL(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}
