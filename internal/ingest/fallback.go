package ingest

import (
	"strings"
	"time"

	"librenews/internal/feed"
)

// Feeds disagree wildly about where the body text lives. These accessors are
// ordered richest-first; the first non-empty one wins.
var contentAccessors = []func(feed.Item) string{
	func(it feed.Item) string { return it.EncodedContent },
	func(it feed.Item) string { return it.Snippet },
	func(it feed.Item) string { return it.Content },
	func(it feed.Item) string { return it.Summary },
}

func resolveContent(it feed.Item) string {
	for _, get := range contentAccessors {
		if v := strings.TrimSpace(get(it)); v != "" {
			return v
		}
	}
	return ""
}

func resolveTitle(it feed.Item) string {
	if t := strings.TrimSpace(it.Title); t != "" {
		return t
	}
	return "Untitled"
}

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
}

// resolvePublished prefers the parser's timestamp, then tries the common RSS
// date layouts, and finally falls back to the fetch time so every article
// sorts somewhere sensible.
func resolvePublished(it feed.Item, now time.Time) time.Time {
	if it.PublishedParsed != nil {
		return *it.PublishedParsed
	}
	if raw := strings.TrimSpace(it.Published); raw != "" {
		for _, layout := range pubDateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t
			}
		}
	}
	return now
}
