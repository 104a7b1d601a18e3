// Package storage persists articles and analysis output. Two backends share
// one interface: PostgreSQL when DATABASE_URL is set, a JSON file otherwise.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"librenews/internal/news"
)

// LLMUsage is one logged model request, kept for cost accounting.
type LLMUsage struct {
	ID           string    `json:"id"`
	Operation    string    `json:"operation"`
	Model        string    `json:"model"`
	InputTokens  int64     `json:"inputTokens"`
	OutputTokens int64     `json:"outputTokens"`
	CostUSD      float64   `json:"costUsd"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Store is the persistence surface the pipeline writes through.
//
// SaveArticles deduplicates by URL key: an article whose key is already
// stored is skipped, and the return value counts only the inserts.
type Store interface {
	SaveArticles(ctx context.Context, articles []news.Article) (int, error)
	RecentArticles(ctx context.Context, limit int) ([]news.Article, error)
	ArticlesByCountry(ctx context.Context, country string, limit int) ([]news.Article, error)
	SavedArticles(ctx context.Context) ([]news.Article, error)
	SetSaved(ctx context.Context, articleID string, saved bool) error
	DeleteArticle(ctx context.Context, articleID string) error

	SaveInsight(ctx context.Context, in news.Insight) error
	Insights(ctx context.Context, articleID string) ([]news.Insight, error)

	SaveCorrelation(ctx context.Context, c news.Correlation) error
	Correlations(ctx context.Context, limit int) ([]news.Correlation, error)

	LogUsage(ctx context.Context, u LLMUsage) error
	TotalCost(ctx context.Context) (float64, error)

	Preferences(ctx context.Context) (news.Preferences, error)
	SavePreferences(ctx context.Context, p news.Preferences) error

	Close() error
}

// ArticleKey derives the dedup key from an article URL. Scheme, www prefix
// and trailing slash are stripped so syndicated variants of the same link
// collapse to one key.
func ArticleKey(rawURL string) string {
	u := strings.TrimSpace(strings.ToLower(rawURL))
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	u = strings.TrimPrefix(u, "www.")
	u = strings.TrimSuffix(u, "/")

	h := sha256.New()
	h.Write([]byte(u))
	return hex.EncodeToString(h.Sum(nil))[:16]
}
