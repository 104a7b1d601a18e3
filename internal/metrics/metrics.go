package metrics

import (
	"sync"
	"time"
)

// Metrics collects ingestion and analysis counters. Constructed in main and
// passed to the components that record into it; the /metrics endpoint reads
// it through Snapshot.
type Metrics struct {
	mu sync.RWMutex

	// Ingestion counters
	FeedsFetched     int64
	FeedFailures     int64
	ItemsSeen        int64
	ArticlesIngested int64
	ClustersFormed   int64
	TrendingStories  int64

	// Analysis counters
	LLMRequests  int64
	LLMFailures  int64
	CacheHits    int64
	InputTokens  int64
	OutputTokens int64
	EstimatedUSD float64

	// Timings
	LastIngestTime    time.Duration
	TotalIngestTime   time.Duration
	IngestCount       int64
	AverageIngestTime time.Duration

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

func New() *Metrics {
	return &Metrics{IsHealthy: true}
}

func (m *Metrics) RecordFeed(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.FeedsFetched++
	} else {
		m.FeedFailures++
	}
}

func (m *Metrics) AddItemsSeen(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsSeen += int64(n)
}

func (m *Metrics) RecordBatch(articles, clusters, trending int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesIngested += int64(articles)
	m.ClustersFormed += int64(clusters)
	m.TrendingStories += int64(trending)
}

func (m *Metrics) RecordLLMRequest(inputTokens, outputTokens int64, costUSD float64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LLMRequests++
	if err != nil {
		m.LLMFailures++
		return
	}
	m.InputTokens += inputTokens
	m.OutputTokens += outputTokens
	m.EstimatedUSD += costUSD
}

func (m *Metrics) RecordCacheHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *Metrics) RecordIngestTime(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastIngestTime = d
	m.TotalIngestTime += d
	m.IngestCount++
	m.AverageIngestTime = m.TotalIngestTime / time.Duration(m.IngestCount)
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.IsHealthy
}

func (m *Metrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"feeds_fetched":          m.FeedsFetched,
		"feed_failures":          m.FeedFailures,
		"items_seen":             m.ItemsSeen,
		"articles_ingested":      m.ArticlesIngested,
		"clusters_formed":        m.ClustersFormed,
		"trending_stories":       m.TrendingStories,
		"llm_requests":           m.LLMRequests,
		"llm_failures":           m.LLMFailures,
		"cache_hits":             m.CacheHits,
		"input_tokens":           m.InputTokens,
		"output_tokens":          m.OutputTokens,
		"estimated_usd":          m.EstimatedUSD,
		"last_ingest_time_ms":    m.LastIngestTime.Milliseconds(),
		"average_ingest_time_ms": m.AverageIngestTime.Milliseconds(),
		"last_run_time":          m.LastRunTime.Format(time.RFC3339),
		"last_error_time":        m.LastErrorTime.Format(time.RFC3339),
		"last_error":             m.LastError,
		"is_healthy":             m.IsHealthy,
	}
}
