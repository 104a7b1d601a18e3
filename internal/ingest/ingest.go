// Package ingest drives one refresh cycle: fetch every configured source,
// classify the items, then cluster and trend-score the complete batch.
package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"librenews/internal/classify"
	"librenews/internal/cluster"
	"librenews/internal/feed"
	"librenews/internal/logger"
	"librenews/internal/metrics"
	"librenews/internal/news"
	"librenews/internal/trending"
)

// Orchestrator owns one batch per Ingest call. No state is shared across
// calls, so concurrent ingestions cannot corrupt each other.
type Orchestrator struct {
	fetcher     feed.Fetcher
	metrics     *metrics.Metrics
	log         *slog.Logger
	perFeedCap  int
	concurrency int
}

type Options struct {
	// MaxItemsPerFeed caps how many of a source's most recent items enter the
	// batch, so one prolific feed cannot dominate it.
	MaxItemsPerFeed int
	// Concurrency bounds the fetch fan-out.
	Concurrency int
}

func New(fetcher feed.Fetcher, m *metrics.Metrics, opts Options) *Orchestrator {
	if opts.MaxItemsPerFeed < 1 {
		opts.MaxItemsPerFeed = 5
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 8
	}
	return &Orchestrator{
		fetcher:     fetcher,
		metrics:     m,
		log:         logger.With("ingest"),
		perFeedCap:  opts.MaxItemsPerFeed,
		concurrency: opts.Concurrency,
	}
}

// Ingest fetches all sources concurrently, joins the results in source order,
// and runs classification, clustering and trending over the full batch.
//
// A failing source is logged and skipped; its articles are simply absent from
// the result. An empty result is a valid outcome, not an error. Deduplication
// against previously stored articles is the store's job, not done here.
func (o *Orchestrator) Ingest(ctx context.Context, sources []feed.Source) ([]news.Article, error) {
	start := time.Now()
	defer func() {
		o.metrics.RecordIngestTime(time.Since(start))
		o.metrics.SetLastRun()
	}()

	// Indexed by source so the batch order is the configured order, not the
	// order fetches happen to finish in. Clustering is order-sensitive.
	perSource := make([][]news.Article, len(sources))
	sem := make(chan struct{}, o.concurrency)
	var wg sync.WaitGroup

	for i := range sources {
		wg.Add(1)
		go func(i int, src feed.Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			items, err := o.fetcher.Fetch(ctx, src)
			if err != nil {
				o.log.Warn("feed fetch failed", "source", src.Name, "url", src.RSSURL, "error", err)
				o.metrics.RecordFeed(false)
				return
			}
			o.metrics.RecordFeed(true)
			o.metrics.AddItemsSeen(len(items))

			if len(items) > o.perFeedCap {
				items = items[:o.perFeedCap]
			}
			perSource[i] = o.classifyItems(src, items)
			o.log.Debug("feed fetched", "source", src.Name, "items", len(perSource[i]))
		}(i, sources[i])
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var articles []news.Article
	for _, batch := range perSource {
		articles = append(articles, batch...)
	}

	clusters := cluster.Build(articles)
	trending.Apply(clusters, articles)

	trendingCount := 0
	for _, c := range clusters {
		if _, hot := trending.Score(c, articles); hot {
			trendingCount++
		}
	}
	o.metrics.RecordBatch(len(articles), len(clusters), trendingCount)
	o.log.Info("ingestion complete",
		"sources", len(sources), "articles", len(articles),
		"clusters", len(clusters), "trending", trendingCount)

	return articles, nil
}

// classifyItems turns one source's feed items into classified articles with
// placeholder cluster/trending fields. Those are filled once the whole batch
// is known.
func (o *Orchestrator) classifyItems(src feed.Source, items []feed.Item) []news.Article {
	now := time.Now()
	out := make([]news.Article, 0, len(items))
	for _, it := range items {
		title := resolveTitle(it)
		content := resolveContent(it)
		topic, confidence := classify.Classify(title, content)

		out = append(out, news.Article{
			Title:            title,
			Content:          content,
			URL:              it.Link,
			ImageURL:         it.ImageURL,
			SourceName:       src.Name,
			Country:          src.Country,
			Orientation:      string(src.Orientation),
			OriginalLanguage: src.Language,
			Trustworthiness:  src.Trustworthiness,
			FactCheckRecord:  string(src.FactCheck),
			PublishedAt:      resolvePublished(it, now),
			FetchedAt:        now,
			Topic:            topic,
			TopicConfidence:  confidence,
		})
	}
	return out
}
