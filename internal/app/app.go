// Package app wires the pipeline together and runs one refresh cycle:
// ingest, enrich, persist, report.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"librenews/internal/cache"
	"librenews/internal/config"
	"librenews/internal/feed"
	"librenews/internal/ingest"
	"librenews/internal/llm"
	"librenews/internal/logger"
	"librenews/internal/metrics"
	"librenews/internal/news"
	"librenews/internal/ratelimit"
	"librenews/internal/retry"
	"librenews/internal/scraper"
	"librenews/internal/storage"
	"librenews/internal/translate"
)

// Feeds that only carry a teaser leave too little text for useful analysis;
// below this many characters the article page itself is fetched.
const thinContentLen = 300

type App struct {
	cfg        *config.Config
	metrics    *metrics.Metrics
	sources    []feed.Source
	orch       *ingest.Orchestrator
	store      storage.Store
	analyst    *llm.Analyst          // nil without an API key
	translator *translate.Translator // free-endpoint fallback
	scraper    *scraper.Scraper
	log        *slog.Logger
}

// New builds the full pipeline from configuration. The store backend and the
// analyst are optional by configuration; the ingestion core always runs.
func New(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*App, error) {
	sources, err := feed.LoadSources(cfg.SourcesConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:        cfg,
		metrics:    m,
		sources:    sources,
		store:      store,
		translator: translate.New(cfg.OpenAIAPIKey),
		scraper:    scraper.New(cfg.RequestTimeout),
		log:        logger.With("app"),
	}

	a.orch = ingest.New(
		feed.NewClient(cfg.FeedTimeout),
		m,
		ingest.Options{
			MaxItemsPerFeed: cfg.MaxItemsPerFeed,
			Concurrency:     cfg.FetchConcurrency,
		},
	)

	if cfg.GeminiAPIKey != "" {
		a.analyst, err = llm.New(ctx, llm.Options{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			Cache:   cache.New(cfg.CacheTTL),
			Budget:  ratelimit.NewBudget(cfg.MaxLLMRequests),
			Metrics: m,
			Store:   store,
			Retry:   retry.Config{Attempts: cfg.RetryAttempts, Delay: cfg.RetryDelay, Backoff: true},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create analyst: %w", err)
		}
	} else {
		a.log.Info("no model API key configured, running without analysis")
	}

	return a, nil
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.DatabaseURL != "" {
		store, err := storage.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return store, nil
	}
	store, err := storage.NewFileStore(cfg.StoreFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file store: %w", err)
	}
	return store, nil
}

// Run executes one refresh cycle and returns the enriched batch.
func (a *App) Run(ctx context.Context) ([]news.Article, error) {
	articles, err := a.orch.Ingest(ctx, a.sources)
	if err != nil {
		a.metrics.SetError(err.Error())
		return nil, err
	}

	if len(articles) == 0 {
		a.log.Info("no articles in this cycle")
		return nil, nil
	}

	// IDs are assigned before persistence so insights and correlations can
	// reference articles from this same cycle.
	for i := range articles {
		if articles[i].ID == "" {
			articles[i].ID = uuid.NewString()
		}
	}

	prefs, err := a.store.Preferences(ctx)
	if err != nil {
		a.log.Warn("failed to load preferences, using defaults", "error", err)
		prefs = news.Preferences{TargetLanguage: a.cfg.TargetLanguage, AutoTranslate: true}
	}
	if prefs.TargetLanguage == "" {
		prefs.TargetLanguage = a.cfg.TargetLanguage
	}

	a.hydrateThinContent(ctx, articles)
	a.enrich(ctx, articles, prefs)

	saved, err := a.store.SaveArticles(ctx, articles)
	if err != nil {
		a.metrics.SetError(err.Error())
		return articles, fmt.Errorf("failed to persist batch: %w", err)
	}

	a.CorrelateTrending(ctx, articles)

	a.log.Info("cycle complete",
		"articles", len(articles), "saved", saved,
		"duplicates", len(articles)-saved)
	return articles, nil
}

// Close releases the store and the model client.
func (a *App) Close() {
	if a.analyst != nil {
		a.analyst.Close()
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("failed to close store", "error", err)
	}
}

// ReportCost logs the cumulative model spend recorded in the store.
func (a *App) ReportCost(ctx context.Context) {
	total, err := a.store.TotalCost(ctx)
	if err != nil {
		a.log.Warn("failed to read usage cost", "error", err)
		return
	}
	a.log.Info("cumulative model spend", "usd", fmt.Sprintf("%.4f", total))
}

// hydrateThinContent fetches the article page for entries whose feed gave
// only a teaser. Best effort: scrape failures keep the feed text.
func (a *App) hydrateThinContent(ctx context.Context, articles []news.Article) {
	for i := range articles {
		art := &articles[i]
		if len(art.Content) >= thinContentLen || art.URL == "" {
			continue
		}
		page, err := a.scraper.Extract(ctx, art.URL)
		if err != nil {
			a.log.Debug("full-text fetch failed", "article", art.URL, "error", err)
			continue
		}
		art.Content = page.Content
	}
}

// enrich applies the analysis steps the preferences enable. Every step is
// per-article best effort: one failure is logged and the loop moves on.
func (a *App) enrich(ctx context.Context, articles []news.Article, prefs news.Preferences) {
	if prefs.AutoTranslate {
		a.translateAll(ctx, articles, prefs.TargetLanguage)
	}

	if a.analyst == nil {
		return
	}

	a.nameTrendingClusters(ctx, articles)

	for i := range articles {
		art := &articles[i]

		if prefs.AutoAnalyzeBias {
			if bias, err := a.analyst.AnalyzeBias(ctx, art.Content, art.SourceName); err != nil {
				a.log.Warn("bias analysis failed", "article", art.URL, "error", err)
			} else {
				art.Bias = &bias
				a.recordInsight(ctx, art.ID, "bias", bias.Explanation)
			}
		}

		if prefs.AutoAssessTrust {
			if trust, err := a.analyst.AssessTrust(ctx, art.Content, art.SourceName); err != nil {
				a.log.Warn("trust assessment failed", "article", art.URL, "error", err)
			} else {
				art.TrustScore = &trust.Score
				a.recordInsight(ctx, art.ID, "trust", trust.Explanation)
			}
		}

		if prefs.AutoAnalyzeImages && art.ImageURL != "" {
			if image, err := a.analyst.AnalyzeImage(ctx, art.ImageURL, art.Title, art.Content); err != nil {
				a.log.Warn("image analysis failed", "article", art.URL, "error", err)
			} else {
				art.Image = &image
			}
		}

		if prefs.AutoDetectFake {
			if verdict, err := a.analyst.DetectFakeNews(ctx, art.Content); err != nil {
				a.log.Warn("fake-news detection failed", "article", art.URL, "error", err)
			} else {
				score := verdict.Confidence
				if !verdict.IsFake {
					score = 1 - verdict.Confidence
				}
				art.FakeNewsScore = &score
				a.recordInsight(ctx, art.ID, "fakeness", verdict.Explanation)
			}
		}

		// Summaries are limited to trending stories to keep the per-cycle
		// request count proportional to what surfaces, not to feed volume.
		if art.IsTrending {
			if summary, err := a.analyst.Summarize(ctx, art.Content); err != nil {
				a.log.Warn("summarization failed", "article", art.URL, "error", err)
			} else {
				a.recordInsight(ctx, art.ID, "summary", summary)
			}
		}
	}
}

func (a *App) recordInsight(ctx context.Context, articleID, kind, content string) {
	if content == "" {
		return
	}
	in := news.Insight{ArticleID: articleID, Type: kind, Content: content}
	if err := a.store.SaveInsight(ctx, in); err != nil {
		a.log.Warn("failed to store insight", "article", articleID, "type", kind, "error", err)
	}
}

// translateAll fills the translated title and content for articles whose
// original language differs from the target. The model is preferred; the
// free endpoint covers articles when no analyst is configured.
func (a *App) translateAll(ctx context.Context, articles []news.Article, target string) {
	for i := range articles {
		art := &articles[i]
		if art.OriginalLanguage == target {
			continue
		}

		var title, content string
		var err error
		if a.analyst != nil {
			title, err = a.analyst.TranslateTitle(ctx, art.Title, art.OriginalLanguage, target)
			if err == nil {
				content, err = a.analyst.TranslateContent(ctx, art.Content, art.OriginalLanguage, target)
			}
		}
		if a.analyst == nil || err != nil {
			if err != nil {
				a.log.Debug("model translation failed, using fallback", "article", art.URL, "error", err)
			}
			title, _ = a.translator.Text(ctx, art.Title, art.OriginalLanguage, target)
			content, _ = a.translator.Text(ctx, art.Content, art.OriginalLanguage, target)
		}

		if title != "" && title != art.Title {
			art.TranslatedTitle = title
		}
		if content != "" && content != art.Content {
			art.TranslatedContent = content
		}
		if art.TranslatedTitle != "" || art.TranslatedContent != "" {
			art.TargetLanguage = target
		}
	}
}

// nameTrendingClusters asks the model for a short display name per trending
// cluster and broadcasts it to the members.
func (a *App) nameTrendingClusters(ctx context.Context, articles []news.Article) {
	titlesByCluster := make(map[string][]string)
	for _, art := range articles {
		if art.ClusterID != "" && art.IsTrending {
			titlesByCluster[art.ClusterID] = append(titlesByCluster[art.ClusterID], art.Title)
		}
	}

	names := make(map[string]string, len(titlesByCluster))
	for clusterID, titles := range titlesByCluster {
		name, err := a.analyst.NameCluster(ctx, titles)
		if err != nil {
			a.log.Warn("cluster naming failed", "cluster", clusterID, "error", err)
			continue
		}
		names[clusterID] = name
	}

	for i := range articles {
		if name, ok := names[articles[i].ClusterID]; ok {
			articles[i].ClusterName = name
		}
	}
}

// CorrelateTrending runs the cross-regional comparison for each trending
// cluster with articles from at least two countries, storing the result.
func (a *App) CorrelateTrending(ctx context.Context, articles []news.Article) {
	if a.analyst == nil {
		return
	}

	byCluster := make(map[string][]news.Article)
	for _, art := range articles {
		if art.ClusterID != "" && art.IsTrending {
			byCluster[art.ClusterID] = append(byCluster[art.ClusterID], art)
		}
	}

	for clusterID, members := range byCluster {
		countries := make(map[string]bool)
		for _, m := range members {
			countries[m.Country] = true
		}
		if len(countries) < 2 {
			continue
		}

		report, err := a.analyst.Correlate(ctx, members)
		if err != nil {
			a.log.Warn("correlation failed", "cluster", clusterID, "error", err)
			continue
		}

		ids := make([]string, 0, len(members))
		countryList := make([]string, 0, len(countries))
		for _, m := range members {
			ids = append(ids, m.ID)
		}
		for c := range countries {
			countryList = append(countryList, c)
		}

		corr := news.Correlation{
			ArticleIDs: ids,
			Topic:      report.Topic,
			Analysis:   report.Analysis,
			Countries:  countryList,
			CreatedAt:  time.Now(),
		}
		if err := a.store.SaveCorrelation(ctx, corr); err != nil {
			a.log.Warn("failed to store correlation", "cluster", clusterID, "error", err)
		}
	}
}
