package feed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSources(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: "AP News"
    url: "https://apnews.com"
    rss_url: "https://apnews.com/world.rss"
    country: "us"
    orientation: "center"
    language: "en"
    trustworthiness: 92
    fact_check_record: "excellent"
  - name: "RT"
    rss_url: "https://www.rt.com/rss/news/"
    country: "ru"
    orientation: "state"
    language: "en"
    trustworthiness: 20
    fact_check_record: "unreliable"
`)

	sources, err := LoadSources(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].Name != "AP News" || sources[0].Orientation != OrientationCenter {
		t.Errorf("first source mismatch: %+v", sources[0])
	}
	if sources[1].FactCheck != FactCheckUnreliable {
		t.Errorf("expected unreliable fact-check grade, got %q", sources[1].FactCheck)
	}
}

func TestLoadSourcesRejectsBadOrientation(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: "Weird Source"
    rss_url: "https://example.com/rss"
    country: "us"
    orientation: "upward"
    language: "en"
    trustworthiness: 50
    fact_check_record: "mixed"
`)

	if _, err := LoadSources(path); err == nil {
		t.Fatal("expected error for unknown orientation")
	} else if !strings.Contains(err.Error(), "orientation") {
		t.Errorf("error should name the bad field: %v", err)
	}
}

func TestLoadSourcesRejectsMissingFeedURL(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: "No Feed"
    country: "us"
    orientation: "center"
    language: "en"
    trustworthiness: 50
    fact_check_record: "mixed"
`)

	if _, err := LoadSources(path); err == nil {
		t.Fatal("expected error for missing rss_url")
	}
}

func TestLoadSourcesRejectsTrustOutOfRange(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: "Overconfident"
    rss_url: "https://example.com/rss"
    country: "us"
    orientation: "center"
    language: "en"
    trustworthiness: 140
    fact_check_record: "good"
`)

	if _, err := LoadSources(path); err == nil {
		t.Fatal("expected error for trustworthiness out of range")
	}
}

func TestLoadSourcesMissingFile(t *testing.T) {
	if _, err := LoadSources(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestStripTags(t *testing.T) {
	cases := []struct{ in, want string }{
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"plain text", "plain text"},
		{"  <div>\n spaced \n</div>  ", "spaced"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := stripTags(tc.in); got != tc.want {
			t.Errorf("stripTags(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
