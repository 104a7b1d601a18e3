// Package scraper fetches the full article body when a feed only carries a
// teaser. Extraction is selector-based and best effort; callers fall back to
// the feed snippet when it fails.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Page is the extracted article text.
type Page struct {
	Title   string
	Content string
	URL     string
}

type Scraper struct {
	client *http.Client
}

func New(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Scraper{client: &http.Client{Timeout: timeout}}
}

// Extract downloads the page and pulls out the article title and body text.
func (s *Scraper) Extract(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "librenews/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error parsing page: %w", err)
	}

	content := cleanContent(extractBody(doc))
	if content == "" {
		return nil, fmt.Errorf("no article content found at %s", url)
	}

	return &Page{
		Title:   extractTitle(doc),
		Content: content,
		URL:     url,
	}, nil
}

// bodySelectors are tried in order; news sites mark their article body with
// one of these often enough for a generic extractor to work.
var bodySelectors = []string{
	"article p",
	".article-body p",
	".article-content p",
	".post-content p",
	".entry-content p",
	".content p",
	"main p",
}

func extractBody(doc *goquery.Document) string {
	for _, selector := range bodySelectors {
		var paragraphs []string
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if len(text) > 10 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) > 0 {
			return strings.Join(paragraphs, "\n\n")
		}
	}
	return ""
}

func extractTitle(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	if t, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		return strings.TrimSpace(t)
	}
	return strings.TrimSpace(doc.Find("title").Text())
}

// junkMarkers identify boilerplate paragraphs worth dropping: cookie notices,
// subscription prompts, social buttons.
var junkMarkers = []string{
	"cookie", "subscribe", "newsletter", "advertisement",
	"share this", "follow us", "sign up", "accept all",
}

func cleanContent(content string) string {
	var kept []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 20 {
			continue
		}
		lower := strings.ToLower(line)
		junk := false
		for _, marker := range junkMarkers {
			if strings.Contains(lower, marker) {
				junk = true
				break
			}
		}
		if !junk {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n\n")
}
