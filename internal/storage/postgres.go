package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"librenews/internal/logger"
	"librenews/internal/news"
)

// PostgresStore persists the pipeline's output in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("postgres store connected")
	return ps, nil
}

func (ps *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		id VARCHAR(64) PRIMARY KEY,
		url_key VARCHAR(16) UNIQUE NOT NULL,
		title TEXT NOT NULL,
		content TEXT,
		url TEXT NOT NULL,
		image_url TEXT,
		source VARCHAR(100),
		country VARCHAR(10),
		orientation VARCHAR(20),
		original_language VARCHAR(10),
		trustworthiness INTEGER,
		fact_check_record VARCHAR(20),
		published_at TIMESTAMP,
		fetched_at TIMESTAMP NOT NULL DEFAULT NOW(),
		topic VARCHAR(50),
		topic_confidence DOUBLE PRECISION,
		cluster_id VARCHAR(32),
		cluster_name TEXT,
		trending_score INTEGER DEFAULT 0,
		is_trending BOOLEAN DEFAULT FALSE,
		extra JSONB
	);

	CREATE INDEX IF NOT EXISTS idx_articles_url_key ON articles(url_key);
	CREATE INDEX IF NOT EXISTS idx_articles_fetched_at ON articles(fetched_at);
	CREATE INDEX IF NOT EXISTS idx_articles_topic ON articles(topic);

	CREATE TABLE IF NOT EXISTS insights (
		id VARCHAR(64) PRIMARY KEY,
		article_id VARCHAR(64) NOT NULL,
		type VARCHAR(20) NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_insights_article_id ON insights(article_id);

	CREATE TABLE IF NOT EXISTS correlations (
		id VARCHAR(64) PRIMARY KEY,
		article_ids JSONB NOT NULL,
		topic VARCHAR(50),
		analysis TEXT NOT NULL,
		countries JSONB,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS llm_usage (
		id VARCHAR(64) PRIMARY KEY,
		operation VARCHAR(40) NOT NULL,
		model VARCHAR(60),
		input_tokens BIGINT DEFAULT 0,
		output_tokens BIGINT DEFAULT 0,
		cost_usd DOUBLE PRECISION DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS preferences (
		id VARCHAR(64) PRIMARY KEY,
		data JSONB NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);
	`

	if _, err := ps.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// extraFields holds the optional enrichment columns that do not warrant their
// own schema, serialized into the extra JSONB column.
type extraFields struct {
	TranslatedTitle   string              `json:"translatedTitle,omitempty"`
	TranslatedContent string              `json:"translatedContent,omitempty"`
	TargetLanguage    string              `json:"targetLanguage,omitempty"`
	Bias              *news.BiasAnalysis  `json:"biasAnalysis,omitempty"`
	TrustScore        *int                `json:"trustScore,omitempty"`
	FakeNewsScore     *float64            `json:"fakeNewsScore,omitempty"`
	Image             *news.ImageAnalysis `json:"imageAnalysis,omitempty"`
	Saved             bool                `json:"saved,omitempty"`
}

func (ps *PostgresStore) SaveArticles(ctx context.Context, articles []news.Article) (int, error) {
	query := `
		INSERT INTO articles (
			id, url_key, title, content, url, image_url, source, country,
			orientation, original_language, trustworthiness, fact_check_record,
			published_at, fetched_at, topic, topic_confidence,
			cluster_id, cluster_name, trending_score, is_trending, extra
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (url_key) DO NOTHING
	`

	saved := 0
	for _, a := range articles {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}

		extra, err := json.Marshal(extraFields{
			TranslatedTitle:   a.TranslatedTitle,
			TranslatedContent: a.TranslatedContent,
			TargetLanguage:    a.TargetLanguage,
			Bias:              a.Bias,
			TrustScore:        a.TrustScore,
			FakeNewsScore:     a.FakeNewsScore,
			Image:             a.Image,
			Saved:             a.Saved,
		})
		if err != nil {
			return saved, fmt.Errorf("failed to marshal article extras: %w", err)
		}

		res, err := ps.db.ExecContext(ctx, query,
			a.ID, ArticleKey(a.URL), a.Title, a.Content, a.URL, a.ImageURL,
			a.SourceName, a.Country, a.Orientation, a.OriginalLanguage,
			a.Trustworthiness, a.FactCheckRecord,
			a.PublishedAt, a.FetchedAt, a.Topic, a.TopicConfidence,
			a.ClusterID, a.ClusterName, a.TrendingScore, a.IsTrending, extra,
		)
		if err != nil {
			return saved, fmt.Errorf("failed to save article %q: %w", a.URL, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			saved++
		}
	}
	return saved, nil
}

func (ps *PostgresStore) RecentArticles(ctx context.Context, limit int) ([]news.Article, error) {
	if limit <= 0 {
		limit = 50
	}

	query := articleColumns + `
		FROM articles
		ORDER BY fetched_at DESC
		LIMIT $1
	`

	rows, err := ps.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()
	return scanArticles(rows)
}

func (ps *PostgresStore) ArticlesByCountry(ctx context.Context, country string, limit int) ([]news.Article, error) {
	if limit <= 0 {
		limit = 50
	}

	query := articleColumns + `
		FROM articles
		WHERE country = $1
		ORDER BY fetched_at DESC
		LIMIT $2
	`

	rows, err := ps.db.QueryContext(ctx, query, country, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles by country: %w", err)
	}
	defer rows.Close()
	return scanArticles(rows)
}

func (ps *PostgresStore) SavedArticles(ctx context.Context) ([]news.Article, error) {
	query := articleColumns + `
		FROM articles
		WHERE extra->>'saved' = 'true'
		ORDER BY fetched_at DESC
	`

	rows, err := ps.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query saved articles: %w", err)
	}
	defer rows.Close()
	return scanArticles(rows)
}

func (ps *PostgresStore) SetSaved(ctx context.Context, articleID string, saved bool) error {
	_, err := ps.db.ExecContext(ctx, `
		UPDATE articles
		SET extra = jsonb_set(COALESCE(extra, '{}'::jsonb), '{saved}', to_jsonb($2::boolean))
		WHERE id = $1
	`, articleID, saved)
	if err != nil {
		return fmt.Errorf("failed to update saved flag: %w", err)
	}
	return nil
}

func (ps *PostgresStore) DeleteArticle(ctx context.Context, articleID string) error {
	if _, err := ps.db.ExecContext(ctx,
		`DELETE FROM insights WHERE article_id = $1`, articleID); err != nil {
		return fmt.Errorf("failed to delete article insights: %w", err)
	}
	if _, err := ps.db.ExecContext(ctx,
		`DELETE FROM articles WHERE id = $1`, articleID); err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	return nil
}

const articleColumns = `
	SELECT id, title, content, url, image_url, source, country, orientation,
	       original_language, trustworthiness, fact_check_record,
	       published_at, fetched_at, topic, topic_confidence,
	       cluster_id, cluster_name, trending_score, is_trending, extra
`

func scanArticles(rows *sql.Rows) ([]news.Article, error) {
	var articles []news.Article
	for rows.Next() {
		var a news.Article
		var extra []byte
		err := rows.Scan(
			&a.ID, &a.Title, &a.Content, &a.URL, &a.ImageURL, &a.SourceName, &a.Country,
			&a.Orientation, &a.OriginalLanguage, &a.Trustworthiness,
			&a.FactCheckRecord, &a.PublishedAt, &a.FetchedAt,
			&a.Topic, &a.TopicConfidence, &a.ClusterID, &a.ClusterName,
			&a.TrendingScore, &a.IsTrending, &extra,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}

		var ex extraFields
		if len(extra) > 0 {
			if err := json.Unmarshal(extra, &ex); err == nil {
				a.TranslatedTitle = ex.TranslatedTitle
				a.TranslatedContent = ex.TranslatedContent
				a.TargetLanguage = ex.TargetLanguage
				a.Bias = ex.Bias
				a.TrustScore = ex.TrustScore
				a.FakeNewsScore = ex.FakeNewsScore
				a.Image = ex.Image
				a.Saved = ex.Saved
			}
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (ps *PostgresStore) SaveInsight(ctx context.Context, in news.Insight) error {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}

	_, err := ps.db.ExecContext(ctx, `
		INSERT INTO insights (id, article_id, type, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, in.ID, in.ArticleID, in.Type, in.Content, in.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save insight: %w", err)
	}
	return nil
}

func (ps *PostgresStore) Insights(ctx context.Context, articleID string) ([]news.Insight, error) {
	rows, err := ps.db.QueryContext(ctx, `
		SELECT id, article_id, type, content, created_at
		FROM insights
		WHERE article_id = $1
		ORDER BY created_at DESC
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}
	defer rows.Close()

	var insights []news.Insight
	for rows.Next() {
		var in news.Insight
		if err := rows.Scan(&in.ID, &in.ArticleID, &in.Type, &in.Content, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan insight row: %w", err)
		}
		insights = append(insights, in)
	}
	return insights, rows.Err()
}

func (ps *PostgresStore) SaveCorrelation(ctx context.Context, c news.Correlation) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	ids, err := json.Marshal(c.ArticleIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal article ids: %w", err)
	}
	countries, err := json.Marshal(c.Countries)
	if err != nil {
		return fmt.Errorf("failed to marshal countries: %w", err)
	}

	_, err = ps.db.ExecContext(ctx, `
		INSERT INTO correlations (id, article_ids, topic, analysis, countries, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, ids, c.Topic, c.Analysis, countries, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save correlation: %w", err)
	}
	return nil
}

func (ps *PostgresStore) Correlations(ctx context.Context, limit int) ([]news.Correlation, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := ps.db.QueryContext(ctx, `
		SELECT id, article_ids, topic, analysis, countries, created_at
		FROM correlations
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query correlations: %w", err)
	}
	defer rows.Close()

	var correlations []news.Correlation
	for rows.Next() {
		var c news.Correlation
		var ids, countries []byte
		if err := rows.Scan(&c.ID, &ids, &c.Topic, &c.Analysis, &countries, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan correlation row: %w", err)
		}
		_ = json.Unmarshal(ids, &c.ArticleIDs)
		_ = json.Unmarshal(countries, &c.Countries)
		correlations = append(correlations, c)
	}
	return correlations, rows.Err()
}

func (ps *PostgresStore) LogUsage(ctx context.Context, u LLMUsage) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}

	_, err := ps.db.ExecContext(ctx, `
		INSERT INTO llm_usage (id, operation, model, input_tokens, output_tokens, cost_usd, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.Operation, u.Model, u.InputTokens, u.OutputTokens, u.CostUSD, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to log usage: %w", err)
	}
	return nil
}

func (ps *PostgresStore) TotalCost(ctx context.Context) (float64, error) {
	var total sql.NullFloat64
	err := ps.db.QueryRowContext(ctx, `SELECT SUM(cost_usd) FROM llm_usage`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum usage cost: %w", err)
	}
	return total.Float64, nil
}

// preferencesRowID keys the single preferences row; there is one user.
const preferencesRowID = "default"

func (ps *PostgresStore) Preferences(ctx context.Context) (news.Preferences, error) {
	var data []byte
	err := ps.db.QueryRowContext(ctx,
		`SELECT data FROM preferences WHERE id = $1`, preferencesRowID).Scan(&data)
	if err == sql.ErrNoRows {
		return defaultPreferences(), nil
	}
	if err != nil {
		return news.Preferences{}, fmt.Errorf("failed to load preferences: %w", err)
	}

	var p news.Preferences
	if err := json.Unmarshal(data, &p); err != nil {
		return news.Preferences{}, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}
	return p, nil
}

func (ps *PostgresStore) SavePreferences(ctx context.Context, p news.Preferences) error {
	p.ID = preferencesRowID
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	_, err = ps.db.ExecContext(ctx, `
		INSERT INTO preferences (id, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, preferencesRowID, data)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

func (ps *PostgresStore) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}

func defaultPreferences() news.Preferences {
	return news.Preferences{
		ID:             preferencesRowID,
		TargetLanguage: "en",
		AutoTranslate:  true,
	}
}
