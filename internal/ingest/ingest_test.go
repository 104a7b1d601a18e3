package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"librenews/internal/feed"
	"librenews/internal/metrics"
)

// stubFetcher serves canned items per source name and fails listed sources.
type stubFetcher struct {
	items map[string][]feed.Item
	fail  map[string]bool
}

func (s *stubFetcher) Fetch(_ context.Context, src feed.Source) ([]feed.Item, error) {
	if s.fail[src.Name] {
		return nil, errors.New("connection refused")
	}
	return s.items[src.Name], nil
}

func source(name, country string, orientation feed.Orientation) feed.Source {
	return feed.Source{
		Name:            name,
		RSSURL:          "https://example.com/" + name + ".rss",
		Country:         country,
		Orientation:     orientation,
		Language:        "en",
		Trustworthiness: 80,
		FactCheck:       feed.FactCheckGood,
	}
}

func TestIngestEndToEnd(t *testing.T) {
	// Two sources in different countries carrying the same story, plus an
	// unrelated item. The pair must co-cluster and trend; the loner must not.
	fetcher := &stubFetcher{items: map[string][]feed.Item{
		"alpha": {
			{Title: "Parliament approves landmark energy legislation", Snippet: "The parliament passed the energy bill."},
			{Title: "Quiet weekend expected across the region", Snippet: "Nothing much happening."},
		},
		"beta": {
			{Title: "Landmark energy legislation approved by parliament", Snippet: "Lawmakers voted for the energy bill."},
		},
	}}

	sources := []feed.Source{
		source("alpha", "us", feed.OrientationCenter),
		source("beta", "gb", feed.OrientationCenterLeft),
	}

	orch := New(fetcher, metrics.New(), Options{MaxItemsPerFeed: 5, Concurrency: 2})
	articles, err := orch.Ingest(context.Background(), sources)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(articles))
	}

	// Source order is preserved: alpha's items first.
	if articles[0].SourceName != "alpha" || articles[2].SourceName != "beta" {
		t.Errorf("batch not in source order: %q, %q, %q",
			articles[0].SourceName, articles[1].SourceName, articles[2].SourceName)
	}

	story1 := articles[0]
	story2 := articles[2]
	if story1.ClusterID == "" || story1.ClusterID != story2.ClusterID {
		t.Errorf("same story must share a cluster id: %q vs %q", story1.ClusterID, story2.ClusterID)
	}
	if !story1.IsTrending || !story2.IsTrending {
		t.Error("two-country story must trend")
	}
	if story1.TrendingScore != 14 {
		t.Errorf("expected trending score 14, got %d", story1.TrendingScore)
	}

	loner := articles[1]
	if loner.ClusterID != "" {
		t.Errorf("singleton must have empty cluster id, got %q", loner.ClusterID)
	}
	if loner.IsTrending {
		t.Error("singleton must not trend")
	}

	// Source metadata flows onto every article.
	if story2.Country != "gb" || story2.Orientation != "center-left" {
		t.Errorf("source metadata not copied: %+v", story2)
	}
	if story1.Topic != "energy" && story1.Topic != "politics" {
		t.Errorf("expected a classified topic, got %q", story1.Topic)
	}
}

func TestIngestFailingSourceIsolated(t *testing.T) {
	fetcher := &stubFetcher{
		items: map[string][]feed.Item{
			"good": {{Title: "Markets rally on strong earnings", Snippet: "Stocks rose."}},
		},
		fail: map[string]bool{"bad": true},
	}

	m := metrics.New()
	orch := New(fetcher, m, Options{})
	articles, err := orch.Ingest(context.Background(), []feed.Source{
		source("bad", "us", feed.OrientationCenter),
		source("good", "gb", feed.OrientationCenter),
	})
	if err != nil {
		t.Fatalf("one failing source must not fail the batch: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("expected 1 article from the healthy source, got %d", len(articles))
	}

	snapshot := m.Snapshot()
	if snapshot["feed_failures"].(int64) != 1 {
		t.Errorf("expected 1 recorded feed failure, got %v", snapshot["feed_failures"])
	}
	if snapshot["feeds_fetched"].(int64) != 1 {
		t.Errorf("expected 1 successful feed, got %v", snapshot["feeds_fetched"])
	}
}

func TestIngestAllSourcesFailing(t *testing.T) {
	fetcher := &stubFetcher{fail: map[string]bool{"a": true, "b": true}}

	orch := New(fetcher, metrics.New(), Options{})
	articles, err := orch.Ingest(context.Background(), []feed.Source{
		source("a", "us", feed.OrientationCenter),
		source("b", "gb", feed.OrientationCenter),
	})
	if err != nil {
		t.Fatalf("empty batch is a valid outcome, not an error: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("expected empty batch, got %d articles", len(articles))
	}
}

func TestIngestPerFeedCap(t *testing.T) {
	items := make([]feed.Item, 12)
	for i := range items {
		items[i] = feed.Item{Title: "Item", Snippet: "body"}
	}
	fetcher := &stubFetcher{items: map[string][]feed.Item{"prolific": items}}

	orch := New(fetcher, metrics.New(), Options{MaxItemsPerFeed: 5})
	articles, err := orch.Ingest(context.Background(), []feed.Source{
		source("prolific", "us", feed.OrientationCenter),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 5 {
		t.Errorf("expected per-feed cap of 5, got %d articles", len(articles))
	}
}

func TestResolveContentFallbackChain(t *testing.T) {
	cases := []struct {
		name string
		item feed.Item
		want string
	}{
		{"encoded wins", feed.Item{EncodedContent: "full", Snippet: "snip", Content: "desc", Summary: "sum"}, "full"},
		{"snippet next", feed.Item{Snippet: "snip", Content: "desc", Summary: "sum"}, "snip"},
		{"content next", feed.Item{Content: "desc", Summary: "sum"}, "desc"},
		{"summary last", feed.Item{Summary: "sum"}, "sum"},
		{"all empty", feed.Item{}, ""},
		{"whitespace skipped", feed.Item{EncodedContent: "   ", Snippet: "snip"}, "snip"},
	}
	for _, tc := range cases {
		if got := resolveContent(tc.item); got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestResolveTitleFallback(t *testing.T) {
	if got := resolveTitle(feed.Item{Title: "  "}); got != "Untitled" {
		t.Errorf("expected Untitled for blank title, got %q", got)
	}
	if got := resolveTitle(feed.Item{Title: "Real headline"}); got != "Real headline" {
		t.Errorf("expected original title, got %q", got)
	}
}

func TestResolvePublishedFallback(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	parsed := time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC)
	if got := resolvePublished(feed.Item{PublishedParsed: &parsed}, now); !got.Equal(parsed) {
		t.Errorf("expected parser timestamp, got %v", got)
	}

	raw := feed.Item{Published: "Sun, 30 Aug 2026 09:30:00 +0000"}
	if got := resolvePublished(raw, now); !got.Equal(parsed) {
		t.Errorf("expected parsed RFC1123Z time, got %v", got)
	}

	if got := resolvePublished(feed.Item{Published: "not a date"}, now); !got.Equal(now) {
		t.Errorf("expected fetch-time fallback, got %v", got)
	}
	if got := resolvePublished(feed.Item{}, now); !got.Equal(now) {
		t.Errorf("expected fetch-time fallback for missing date, got %v", got)
	}
}
