// Package translate converts article text into the reader's language. It
// tries the free Google Translate endpoint first and falls back to OpenAI
// when a key is configured, so translation degrades instead of failing.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"

	"librenews/internal/logger"
)

// Input longer than this is truncated before the request; the free endpoint
// rejects oversized queries.
const maxTranslateLen = 4000

type Translator struct {
	httpClient *http.Client
	openai     *openai.Client // nil when no API key is configured
}

func New(openaiAPIKey string) *Translator {
	t := &Translator{
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	if openaiAPIKey != "" {
		t.openai = openai.NewClient(openaiAPIKey)
	}
	return t
}

// Text translates text from one language to another. When every backend
// fails the original text comes back with a nil error; an untranslated
// article is better than a dropped one.
func (t *Translator) Text(ctx context.Context, text, from, to string) (string, error) {
	if text == "" || from == to {
		return text, nil
	}

	original := text
	text = truncate(normalize(text))

	result, err := t.viaGoogle(ctx, text, from, to)
	if err == nil && result != "" && result != text {
		return result, nil
	}
	logger.Debug("free translation endpoint failed", "from", from, "to", to, "error", err)

	if t.openai != nil {
		result, err = t.viaOpenAI(ctx, text, from, to)
		if err == nil && result != "" {
			return result, nil
		}
		logger.Debug("openai translation failed", "from", from, "to", to, "error", err)
	}

	logger.Warn("translation unavailable, keeping original", "from", from, "to", to)
	return original, nil
}

func (t *Translator) viaGoogle(ctx context.Context, text, from, to string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", from)
	params.Set("tl", to)
	params.Set("dt", "t")
	params.Set("q", text)

	endpoint := "https://translate.googleapis.com/translate_a/single?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading translation response: %w", err)
	}

	return parseGoogleResponse(body)
}

// parseGoogleResponse unpacks the endpoint's nested-array format: the first
// element is a list of [translatedSegment, originalSegment, ...] tuples.
func parseGoogleResponse(body []byte) (string, error) {
	var response []interface{}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if len(response) == 0 {
		return "", errors.New("empty translation response")
	}

	segments, ok := response[0].([]interface{})
	if !ok {
		return "", errors.New("unexpected translation response format")
	}

	var result strings.Builder
	for _, seg := range segments {
		tuple, ok := seg.([]interface{})
		if !ok || len(tuple) == 0 {
			continue
		}
		if translated, ok := tuple[0].(string); ok {
			result.WriteString(translated)
		}
	}
	return result.String(), nil
}

func (t *Translator) viaOpenAI(ctx context.Context, text, from, to string) (string, error) {
	prompt := fmt.Sprintf(`Translate the following news text from language code %q to language code %q.
Keep the meaning, tone and journalistic style of the original.
Return only the translated text, without additional comments.

Text to translate:
%s`, from, to, text)

	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	resp, err := t.openai.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT3Dot5Turbo,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: 2000,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no translation in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// truncate bounds the request size, cutting on a rune boundary so non-ASCII
// source text is never split mid-character.
func truncate(text string) string {
	if utf8.RuneCountInString(text) <= maxTranslateLen {
		return text
	}
	return string([]rune(text)[:maxTranslateLen]) + "..."
}

// normalize collapses whitespace and drops fragment lines that are too short
// to carry meaning, which keeps boilerplate out of the token count.
func normalize(text string) string {
	lines := strings.Split(text, "\n")
	var kept []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) > 5 {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, " ")
}
