package llm

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"librenews/internal/news"
)

func TestStripFences(t *testing.T) {
	cases := []struct{ name, in, want string }{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"leading whitespace", "  ```json\n{\"a\":1}\n``` ", `{"a":1}`},
		{"no closing fence", "```json\n{\"a\":1}", `{"a":1}`},
	}
	for _, tc := range cases {
		if got := stripFences(tc.in); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestBiasVerdictDecoding(t *testing.T) {
	raw := "```json\n" + `{
		"score": -0.4,
		"confidence": 0.8,
		"explanation": "Leans left in framing",
		"indicators": ["loaded adjectives", "selective sourcing"]
	}` + "\n```"

	var verdict news.BiasAnalysis
	if err := json.Unmarshal([]byte(stripFences(raw)), &verdict); err != nil {
		t.Fatalf("fenced verdict must decode: %v", err)
	}
	if verdict.Score != -0.4 || verdict.Confidence != 0.8 {
		t.Errorf("unexpected verdict: %+v", verdict)
	}
	if len(verdict.Indicators) != 2 {
		t.Errorf("expected 2 indicators, got %v", verdict.Indicators)
	}
}

func TestFakeNewsVerdictDecoding(t *testing.T) {
	raw := `{"isFake": true, "confidence": 0.9, "redFlags": ["anonymous sourcing"], "explanation": "unverifiable claims"}`

	var verdict FakeNewsVerdict
	if err := json.Unmarshal([]byte(stripFences(raw)), &verdict); err != nil {
		t.Fatal(err)
	}
	if !verdict.IsFake || verdict.Confidence != 0.9 {
		t.Errorf("unexpected verdict: %+v", verdict)
	}
}

func TestClipShortensOnSentence(t *testing.T) {
	sentence := "This is a fairly normal news sentence that keeps going for a while. "
	long := strings.Repeat(sentence, 200)

	clipped := clip(long)
	if len(clipped) > maxPromptContent+1 {
		t.Errorf("clip exceeded bound: %d chars", len(clipped))
	}
	if !strings.HasSuffix(clipped, ".") {
		t.Errorf("clip should end on a sentence, got ...%q", clipped[len(clipped)-10:])
	}
}

func TestClipKeepsShortContent(t *testing.T) {
	in := "Short   article \n body"
	if got := clip(in); got != "Short article body" {
		t.Errorf("expected whitespace collapse only, got %q", got)
	}
}

func TestCutRunesKeepsRuneBoundaries(t *testing.T) {
	// Three bytes per rune; a byte-indexed cut at 5 would split the second one.
	in := strings.Repeat("новини ", 100)

	cut := cutRunes(in, 5)
	if !utf8.ValidString(cut) {
		t.Errorf("cut produced invalid UTF-8: %q", cut)
	}
	if got := utf8.RuneCountInString(cut); got != 5 {
		t.Errorf("expected 5 runes, got %d", got)
	}
	if cut != "новин" {
		t.Errorf("unexpected prefix %q", cut)
	}

	if got := cutRunes("short", 100); got != "short" {
		t.Errorf("content under the limit must pass through, got %q", got)
	}
}

func TestNewDefaultsOptionalCollaborators(t *testing.T) {
	// Client construction performs no request, so a placeholder key is fine.
	a, err := New(context.Background(), Options{APIKey: "test-key"})
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if a.budget == nil || a.metrics == nil {
		t.Fatal("budget and metrics must be defaulted, not nil")
	}
	if err := a.budget.Allow("translate"); err != nil {
		t.Errorf("default budget must be unlimited: %v", err)
	}
	if a.model != "gemini-1.5-flash" {
		t.Errorf("unexpected default model %q", a.model)
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := estimateTokens(strings.Repeat("a", 400)); got != 100 {
		t.Errorf("expected 100, got %d", got)
	}
}

func TestCostAccounting(t *testing.T) {
	// 1M input at $3 + 200k output at $15: 3 + 3 = 6.
	cost := float64(1_000_000)/1e6*inputCostPerMTok + float64(200_000)/1e6*outputCostPerMTok
	if cost != 6.0 {
		t.Errorf("expected 6.0, got %v", cost)
	}
}
