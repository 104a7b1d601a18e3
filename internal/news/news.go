// Package news defines the article records produced by one ingestion batch.
package news

import "time"

// Article is a classified feed item enriched with source metadata and, after
// clustering, story-group and trending fields. Ingestion creates it once per
// batch; downstream analysis may attach translation and insight fields, but
// the ingestion core never mutates an article after the batch is returned.
type Article struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	URL      string `json:"url"`
	ImageURL string `json:"imageUrl,omitempty"`

	// Copied from the source descriptor at ingestion time.
	SourceName       string `json:"source"`
	Country          string `json:"country"`
	Orientation      string `json:"orientation"`
	OriginalLanguage string `json:"originalLanguage"`
	Trustworthiness  int    `json:"trustworthiness"`
	FactCheckRecord  string `json:"factCheckRecord"`

	PublishedAt time.Time `json:"publishedAt"`
	FetchedAt   time.Time `json:"fetchedAt"`

	// Local classification.
	Topic           string  `json:"topic"`
	TopicConfidence float64 `json:"topicConfidence"`

	// Story grouping. ClusterID is empty for singletons: "no grouping", not
	// "group of one". All members of a cluster carry identical values.
	ClusterID     string `json:"clusterId"`
	ClusterName   string `json:"clusterName,omitempty"`
	TrendingScore int    `json:"trendingScore"`
	IsTrending    bool   `json:"isTrending"`

	// Optional downstream enrichment, persisted but not produced by the
	// ingestion core.
	TranslatedTitle   string         `json:"translatedTitle,omitempty"`
	TranslatedContent string         `json:"translatedContent,omitempty"`
	TargetLanguage    string         `json:"targetLanguage,omitempty"`
	Bias              *BiasAnalysis  `json:"biasAnalysis,omitempty"`
	TrustScore        *int           `json:"trustScore,omitempty"`
	FakeNewsScore     *float64       `json:"fakeNewsScore,omitempty"`
	Image             *ImageAnalysis `json:"imageAnalysis,omitempty"`
	Saved             bool           `json:"saved"`
}

// BiasAnalysis is the political-bias verdict for one article.
type BiasAnalysis struct {
	Score       float64  `json:"score"` // -1 (far left) .. 1 (far right)
	Confidence  float64  `json:"confidence"`
	Explanation string   `json:"explanation"`
	Indicators  []string `json:"indicators"`
}

// ImageAnalysis is the manipulation verdict for an article's lead image.
type ImageAnalysis struct {
	IsManipulated     bool     `json:"isManipulated"`
	ManipulationScore int      `json:"manipulationScore"` // 0-100
	MisleadingScore   int      `json:"misleadingScore"`   // 0-100
	Findings          []string `json:"findings"`
	Explanation       string   `json:"explanation"`
}

// Insight is a stored piece of LLM analysis attached to an article.
type Insight struct {
	ID        string    `json:"id"`
	ArticleID string    `json:"articleId"`
	Type      string    `json:"type"` // bias | trust | fakeness | summary
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Correlation is a stored cross-regional comparison over a set of articles.
type Correlation struct {
	ID         string    `json:"id"`
	ArticleIDs []string  `json:"articleIds"`
	Topic      string    `json:"topic"`
	Analysis   string    `json:"analysis"`
	Countries  []string  `json:"countries"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Preferences holds per-user settings consumed by the UI and the analysis
// auto-run toggles consumed by the pipeline.
type Preferences struct {
	ID                string   `json:"id"`
	TargetLanguage    string   `json:"targetLanguage"`
	SelectedCountries []string `json:"selectedCountries"`
	AutoTranslate     bool     `json:"autoTranslate"`
	AutoAnalyzeBias   bool     `json:"autoAnalyzeBias"`
	AutoAssessTrust   bool     `json:"autoAssessTrust"`
	AutoDetectFake    bool     `json:"autoDetectFakeNews"`
	AutoAnalyzeImages bool     `json:"autoAnalyzeImages"`
}
