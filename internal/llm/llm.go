// Package llm runs model-backed analysis over ingested articles: translation,
// bias and trust verdicts, fake-news detection, cluster naming, summaries and
// cross-country correlation. Every request goes through the result cache and
// the daily budget before it costs anything.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"librenews/internal/cache"
	"librenews/internal/logger"
	"librenews/internal/metrics"
	"librenews/internal/ratelimit"
	"librenews/internal/retry"
	"librenews/internal/storage"
)

// Pricing per million tokens, used for the cost estimate attached to every
// logged request.
const (
	inputCostPerMTok  = 3.0
	outputCostPerMTok = 15.0
)

// Prompt input is clipped to keep token spend predictable.
const maxPromptContent = 6000

type Analyst struct {
	client  *genai.Client
	model   string
	cache   *cache.Cache
	budget  *ratelimit.Budget
	metrics *metrics.Metrics
	store   storage.Store
	retry   retry.Config
	log     *slog.Logger
}

// Options configures an Analyst. Cache and Store are optional: nil disables
// result caching and usage logging. A nil Budget or Metrics gets a private
// default (unlimited budget, standalone counters) so callers can omit them.
type Options struct {
	APIKey  string
	Model   string
	Cache   *cache.Cache
	Budget  *ratelimit.Budget
	Metrics *metrics.Metrics
	Store   storage.Store
	Retry   retry.Config
}

func New(ctx context.Context, opts Options) (*Analyst, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	if opts.Model == "" {
		opts.Model = "gemini-1.5-flash"
	}
	if opts.Retry.Attempts == 0 {
		opts.Retry = retry.Config{Attempts: 3, Delay: 2 * time.Second, Backoff: true}
	}
	if opts.Budget == nil {
		opts.Budget = ratelimit.NewBudget(0)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}

	return &Analyst{
		client:  client,
		model:   opts.Model,
		cache:   opts.Cache,
		budget:  opts.Budget,
		metrics: opts.Metrics,
		store:   opts.Store,
		retry:   opts.Retry,
		log:     logger.With("llm"),
	}, nil
}

func (a *Analyst) Close() {
	if a.client != nil {
		a.client.Close()
	}
}

// generate is the single path to the model. It consults the cache, reserves
// budget, retries transient failures, and accounts tokens and cost on the way
// out. The returned string is the raw model text.
func (a *Analyst) generate(ctx context.Context, op string, prompt string) (string, error) {
	key := cache.Key(op, prompt)
	if a.cache != nil {
		if cached, ok := a.cache.Get(key); ok {
			if text, ok := cached.(string); ok {
				a.budget.RecordCacheHit(estimateTokens(prompt))
				a.metrics.RecordCacheHit()
				return text, nil
			}
		}
	}

	if err := a.budget.Allow(op); err != nil {
		return "", fmt.Errorf("%s skipped: %w", op, err)
	}

	model := a.client.GenerativeModel(a.model)

	var resp *genai.GenerateContentResponse
	err := retry.Do(ctx, a.retry, func() error {
		var genErr error
		resp, genErr = model.GenerateContent(ctx, genai.Text(prompt))
		return genErr
	})
	if err != nil {
		a.metrics.RecordLLMRequest(0, 0, 0, err)
		return "", fmt.Errorf("%s request failed: %w", op, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		err := fmt.Errorf("%s returned no candidates", op)
		a.metrics.RecordLLMRequest(0, 0, 0, err)
		return "", err
	}

	text := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	var inTokens, outTokens int64
	if resp.UsageMetadata != nil {
		inTokens = int64(resp.UsageMetadata.PromptTokenCount)
		outTokens = int64(resp.UsageMetadata.CandidatesTokenCount)
	}
	cost := float64(inTokens)/1e6*inputCostPerMTok + float64(outTokens)/1e6*outputCostPerMTok
	a.metrics.RecordLLMRequest(inTokens, outTokens, cost, nil)

	if a.store != nil {
		usage := storage.LLMUsage{
			Operation:    op,
			Model:        a.model,
			InputTokens:  inTokens,
			OutputTokens: outTokens,
			CostUSD:      cost,
		}
		if err := a.store.LogUsage(ctx, usage); err != nil {
			a.log.Warn("failed to log model usage", "op", op, "error", err)
		}
	}

	if a.cache != nil {
		a.cache.Set(key, text)
	}

	a.log.Debug("model request complete", "op", op,
		"input_tokens", inTokens, "output_tokens", outTokens,
		"cost_usd", fmt.Sprintf("%.6f", cost))

	return text, nil
}

// clip bounds article content before it enters a prompt, cutting on a rune
// boundary and preferring a sentence end.
func clip(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(content) <= maxPromptContent {
		return content
	}
	runes := []rune(content)
	trimmed := string(runes[:maxPromptContent])
	if idx := strings.LastIndex(trimmed, ". "); idx > 1200 {
		trimmed = trimmed[:idx+1]
	}
	return trimmed
}

// cutRunes truncates s to at most n runes, never splitting a multi-byte
// sequence. Used by operations with tighter limits than clip's.
func cutRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// estimateTokens is the rough chars/4 heuristic used for cache-savings stats.
func estimateTokens(text string) int {
	return len(text) / 4
}
