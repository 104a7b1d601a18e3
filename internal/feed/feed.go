package feed

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// Item is one parsed feed entry with all content variants preserved. The
// orchestrator resolves the variants through an ordered fallback chain; the
// fetcher never decides which one wins.
type Item struct {
	Title           string
	Link            string
	ImageURL        string // lead image, when the feed declares one
	EncodedContent  string // content:encoded, usually full HTML body
	Snippet         string // plain-text rendering of the description
	Content         string // raw description/content block
	Summary         string // atom summary or equivalent
	Published       string
	PublishedParsed *time.Time
}

// Fetcher retrieves the items of a single source. Implementations must be
// safe for concurrent use; ingestion fans out one fetch per source.
type Fetcher interface {
	Fetch(ctx context.Context, src Source) ([]Item, error)
}

// Client fetches and parses RSS/Atom feeds with gofeed. The parser is an
// explicit handle owned by the client, scoped to its lifetime.
type Client struct {
	parser *gofeed.Parser
}

// NewClient builds a feed client with the given per-request timeout.
func NewClient(timeout time.Duration) *Client {
	p := gofeed.NewParser()
	p.Client = &http.Client{Timeout: timeout}
	p.UserAgent = "librenews/1.0"
	return &Client{parser: p}
}

// Fetch downloads and parses one source's feed. Errors are returned to the
// caller; the orchestrator decides that they are non-fatal.
func (c *Client) Fetch(ctx context.Context, src Source) ([]Item, error) {
	feed, err := c.parser.ParseURLWithContext(src.RSSURL, ctx)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		items = append(items, convertItem(it))
	}
	return items, nil
}

// convertItem maps a gofeed item onto the content-variant model. gofeed puts
// content:encoded (RSS) and <content> (Atom) into Content, and the
// description/summary into Description.
func convertItem(it *gofeed.Item) Item {
	item := Item{
		Title:           it.Title,
		Link:            it.Link,
		EncodedContent:  it.Content,
		Snippet:         stripTags(it.Description),
		Content:         it.Description,
		Published:       it.Published,
		PublishedParsed: it.PublishedParsed,
	}
	if s, ok := it.Custom["summary"]; ok {
		item.Summary = s
	}
	if it.Image != nil {
		item.ImageURL = it.Image.URL
	}
	return item
}

// stripTags removes markup from a description so the snippet variant is plain
// text. Character-level scan, same approach the scraper uses for article
// bodies.
func stripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return strings.TrimSpace(s)
	}
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(strings.Join(strings.Fields(b.String()), " "))
}
