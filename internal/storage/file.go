package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"librenews/internal/news"
)

// FileStore is the zero-dependency backend: everything lives in one JSON
// file, loaded into memory at startup and written back after mutations.
// It keeps development and small deployments from needing a database.
type FileStore struct {
	mu       sync.RWMutex
	filePath string

	data fileData
}

type fileData struct {
	Articles     []news.Article     `json:"articles"`
	Insights     []news.Insight     `json:"insights"`
	Correlations []news.Correlation `json:"correlations"`
	Usage        []LLMUsage         `json:"llmUsage"`
	Prefs        *news.Preferences  `json:"preferences,omitempty"`

	// seen maps url keys to avoid re-inserting syndicated duplicates.
	seen map[string]bool
}

func NewFileStore(filePath string) (*FileStore, error) {
	fs := &FileStore{filePath: filePath}
	fs.data.seen = make(map[string]bool)

	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) load() error {
	raw, err := os.ReadFile(fs.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read store file: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, &fs.data); err != nil {
		return fmt.Errorf("failed to unmarshal store file: %w", err)
	}
	for _, a := range fs.data.Articles {
		fs.data.seen[ArticleKey(a.URL)] = true
	}
	return nil
}

// flush writes the store to disk. Callers hold at least a read lock.
func (fs *FileStore) flush() error {
	raw, err := json.MarshalIndent(fs.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}
	if err := os.WriteFile(fs.filePath, raw, 0644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	return nil
}

func (fs *FileStore) SaveArticles(_ context.Context, articles []news.Article) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	saved := 0
	for _, a := range articles {
		key := ArticleKey(a.URL)
		if fs.data.seen[key] {
			continue
		}
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		fs.data.Articles = append(fs.data.Articles, a)
		fs.data.seen[key] = true
		saved++
	}

	if saved == 0 {
		return 0, nil
	}
	return saved, fs.flush()
}

func (fs *FileStore) RecentArticles(_ context.Context, limit int) ([]news.Article, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	// Newest first; articles append in fetch order.
	n := len(fs.data.Articles)
	if limit > n {
		limit = n
	}
	out := make([]news.Article, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, fs.data.Articles[i])
	}
	return out, nil
}

func (fs *FileStore) ArticlesByCountry(_ context.Context, country string, limit int) ([]news.Article, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	var out []news.Article
	for i := len(fs.data.Articles) - 1; i >= 0 && len(out) < limit; i-- {
		if fs.data.Articles[i].Country == country {
			out = append(out, fs.data.Articles[i])
		}
	}
	return out, nil
}

func (fs *FileStore) SavedArticles(_ context.Context) ([]news.Article, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	var out []news.Article
	for i := len(fs.data.Articles) - 1; i >= 0; i-- {
		if fs.data.Articles[i].Saved {
			out = append(out, fs.data.Articles[i])
		}
	}
	return out, nil
}

func (fs *FileStore) SetSaved(_ context.Context, articleID string, saved bool) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	for i := range fs.data.Articles {
		if fs.data.Articles[i].ID == articleID {
			fs.data.Articles[i].Saved = saved
			return fs.flush()
		}
	}
	return fmt.Errorf("article %q not found", articleID)
}

func (fs *FileStore) DeleteArticle(_ context.Context, articleID string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	for i := range fs.data.Articles {
		if fs.data.Articles[i].ID != articleID {
			continue
		}
		delete(fs.data.seen, ArticleKey(fs.data.Articles[i].URL))
		fs.data.Articles = append(fs.data.Articles[:i], fs.data.Articles[i+1:]...)

		kept := fs.data.Insights[:0]
		for _, in := range fs.data.Insights {
			if in.ArticleID != articleID {
				kept = append(kept, in)
			}
		}
		fs.data.Insights = kept
		return fs.flush()
	}
	return fmt.Errorf("article %q not found", articleID)
}

func (fs *FileStore) SaveInsight(_ context.Context, in news.Insight) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}
	fs.data.Insights = append(fs.data.Insights, in)
	return fs.flush()
}

func (fs *FileStore) Insights(_ context.Context, articleID string) ([]news.Insight, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	var out []news.Insight
	for _, in := range fs.data.Insights {
		if in.ArticleID == articleID {
			out = append(out, in)
		}
	}
	return out, nil
}

func (fs *FileStore) SaveCorrelation(_ context.Context, c news.Correlation) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	fs.data.Correlations = append(fs.data.Correlations, c)
	return fs.flush()
}

func (fs *FileStore) Correlations(_ context.Context, limit int) ([]news.Correlation, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	n := len(fs.data.Correlations)
	if limit > n {
		limit = n
	}
	out := make([]news.Correlation, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, fs.data.Correlations[i])
	}
	return out, nil
}

func (fs *FileStore) LogUsage(_ context.Context, u LLMUsage) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	fs.data.Usage = append(fs.data.Usage, u)
	return fs.flush()
}

func (fs *FileStore) TotalCost(_ context.Context) (float64, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	var total float64
	for _, u := range fs.data.Usage {
		total += u.CostUSD
	}
	return total, nil
}

func (fs *FileStore) Preferences(_ context.Context) (news.Preferences, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if fs.data.Prefs == nil {
		return defaultPreferences(), nil
	}
	return *fs.data.Prefs, nil
}

func (fs *FileStore) SavePreferences(_ context.Context, p news.Preferences) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	p.ID = preferencesRowID
	fs.data.Prefs = &p
	return fs.flush()
}

func (fs *FileStore) Close() error {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.flush()
}
