// Package webpage turns an article URL into capped, analyzable content:
// title, main text, image URLs and outbound links.
package webpage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/vigil-app/vigil/internal/config"
	"github.com/vigil-app/vigil/internal/fetch"
)

// Link is an outbound link with its anchor text
type Link struct {
	URL  string `json:"url"`
	Text string `json:"text,omitempty"`
}

// Page is the scraped content of one webpage
type Page struct {
	URL       string   `json:"url"`
	Title     string   `json:"title"`
	Text      string   `json:"text"`
	Truncated bool     `json:"truncated,omitempty"`
	Images    []string `json:"images,omitempty"`
	Links     []Link   `json:"links,omitempty"`
}

// Scraper fetches and extracts webpages under configured caps
type Scraper struct {
	client *fetch.Client
	limits config.ScrapeConfig
}

// NewScraper creates a Scraper using the shared HTTP client
func NewScraper(client *fetch.Client, limits config.ScrapeConfig) *Scraper {
	return &Scraper{client: client, limits: limits}
}

// Scrape fetches rawURL and extracts its content. Body truncation (by the
// byte cap or the text cap) is reported on the page, not as an error.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*Page, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("bad url %q: %w", rawURL, err)
	}

	body, bodyTruncated, err := s.client.Get(ctx, rawURL, fetch.MaxPageBytes)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	page := &Page{
		URL:       rawURL,
		Truncated: bodyTruncated,
	}

	article, artErr := readability.FromReader(bytes.NewReader(body), pageURL)

	page.Title = extractTitle(article, artErr, doc)

	text := ""
	if artErr == nil {
		text = strings.TrimSpace(article.TextContent)
	}
	if text == "" {
		text = fallbackText(doc)
	}
	if len(text) > s.limits.MaxTextChars {
		text = truncateText(text, s.limits.MaxTextChars)
		page.Truncated = true
	}
	page.Text = text

	page.Images = s.collectImages(doc, pageURL)
	page.Links = s.collectLinks(doc, pageURL)

	slog.Info("scraped webpage",
		"url", rawURL,
		"title", page.Title,
		"chars", len(page.Text),
		"images", len(page.Images),
		"links", len(page.Links),
		"truncated", page.Truncated)

	return page, nil
}

// extractTitle prefers the readability title and falls back through the
// usual suspects: <title>, first <h1>, og:title, meta name=title
func extractTitle(article readability.Article, artErr error, doc *goquery.Document) string {
	if artErr == nil {
		if title := strings.TrimSpace(article.Title); title != "" {
			return title
		}
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		return title
	}
	if title, exists := doc.Find("meta[property='og:title']").Attr("content"); exists && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	if title, exists := doc.Find("meta[name='title']").Attr("content"); exists && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	return ""
}

// fallbackText is the goquery path for pages readability cannot parse:
// drop the non-content elements and flatten what remains
func fallbackText(doc *goquery.Document) string {
	working := doc.Clone()
	working.Find("script, style, nav, footer, header").Remove()

	text := working.Find("body").Text()
	return strings.Join(strings.Fields(text), " ")
}

func (s *Scraper) collectImages(doc *goquery.Document, pageURL *url.URL) []string {
	var images []string
	seen := map[string]bool{}

	doc.Find("img").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		src, ok := sel.Attr("src")
		if !ok || src == "" {
			src, ok = sel.Attr("data-src")
			if !ok || src == "" {
				return true
			}
		}

		abs := resolveURL(pageURL, src)
		if abs == "" || seen[abs] {
			return true
		}
		seen[abs] = true
		images = append(images, abs)
		return len(images) < s.limits.MaxImages
	})

	return images
}

func (s *Scraper) collectLinks(doc *goquery.Document, pageURL *url.URL) []Link {
	var links []Link
	seen := map[string]bool{}

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		abs := resolveURL(pageURL, href)
		if abs == "" || seen[abs] {
			return true
		}
		seen[abs] = true
		links = append(links, Link{
			URL:  abs,
			Text: strings.TrimSpace(sel.Text()),
		})
		return len(links) < s.limits.MaxLinks
	})

	return links
}

// truncateText cuts s at the byte cap, backing off so a multi-byte rune
// is never split
func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// resolveURL makes a possibly relative reference absolute against the
// page URL, returning "" for anchors, javascript: and other non-http
// schemes
func resolveURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") {
		return ""
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}

	abs := base.ResolveReference(u)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}
