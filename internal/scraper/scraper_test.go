package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestExtractBody(t *testing.T) {
	d := doc(t, `<html><body>
		<article>
			<p>First paragraph of the actual story text.</p>
			<p>Second paragraph with more detail on the event.</p>
			<p>ok</p>
		</article>
	</body></html>`)

	body := extractBody(d)
	if !strings.Contains(body, "First paragraph") || !strings.Contains(body, "Second paragraph") {
		t.Errorf("article paragraphs missing: %q", body)
	}
	if strings.Contains(body, "ok") {
		t.Error("paragraphs of 10 chars or fewer should be dropped")
	}
}

func TestExtractBodySelectorFallback(t *testing.T) {
	d := doc(t, `<html><body>
		<div class="entry-content">
			<p>Content hidden behind a blog-style selector.</p>
		</div>
	</body></html>`)

	if body := extractBody(d); !strings.Contains(body, "blog-style selector") {
		t.Errorf("fallback selector not tried: %q", body)
	}
}

func TestExtractTitle(t *testing.T) {
	d := doc(t, `<html><head><title>Tab Title</title></head><body><h1> Headline </h1></body></html>`)
	if got := extractTitle(d); got != "Headline" {
		t.Errorf("expected h1 to win, got %q", got)
	}

	d = doc(t, `<html><head><meta property="og:title" content="OG Headline"><title>Tab Title</title></head><body></body></html>`)
	if got := extractTitle(d); got != "OG Headline" {
		t.Errorf("expected og:title fallback, got %q", got)
	}
}

func TestCleanContentDropsBoilerplate(t *testing.T) {
	in := strings.Join([]string{
		"This is the real story text and it is long enough to keep.",
		"Subscribe to our newsletter for more updates every day!",
		"We use cookie tracking to improve your experience on this site.",
		"short",
		"Another genuine paragraph describing what actually happened there.",
	}, "\n")

	out := cleanContent(in)
	if !strings.Contains(out, "real story text") || !strings.Contains(out, "genuine paragraph") {
		t.Errorf("real content dropped: %q", out)
	}
	for _, junk := range []string{"Subscribe", "cookie", "short"} {
		if strings.Contains(out, junk) {
			t.Errorf("boilerplate %q survived: %q", junk, out)
		}
	}
}
