package cluster

import (
	"testing"

	"librenews/internal/news"
)

func withTitles(titles ...string) []news.Article {
	articles := make([]news.Article, len(titles))
	for i, t := range titles {
		articles[i].Title = t
	}
	return articles
}

func TestBuildEmptyBatch(t *testing.T) {
	if clusters := Build(nil); len(clusters) != 0 {
		t.Errorf("expected no clusters for empty batch, got %d", len(clusters))
	}
}

func TestBuildCompleteness(t *testing.T) {
	articles := withTitles(
		"Parliament votes on energy bill tonight",
		"Energy bill passes parliament vote",
		"Stock markets tumble on rate fears",
		"Local festival draws record attendance",
	)
	clusters := Build(articles)

	seen := make(map[int]int)
	for _, c := range clusters {
		for _, idx := range c.Members {
			seen[idx]++
		}
	}
	if len(seen) != len(articles) {
		t.Fatalf("expected all %d articles assigned, got %d", len(articles), len(seen))
	}
	for idx, count := range seen {
		if count != 1 {
			t.Errorf("article %d assigned %d times", idx, count)
		}
	}
}

func TestBuildGroupsSimilarTitles(t *testing.T) {
	articles := withTitles(
		"President announces sweeping trade tariffs china",
		"President announces major trade tariffs against china",
		"Completely unrelated village bake sale",
	)
	clusters := Build(articles)

	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}
	if clusters[0].Size() != 2 {
		t.Errorf("expected first cluster of size 2, got %d", clusters[0].Size())
	}
	if clusters[0].ID != "cluster-0" {
		t.Errorf("expected multi-member cluster id cluster-0, got %q", clusters[0].ID)
	}
	if clusters[1].ID != "" {
		t.Errorf("singleton must have empty id, got %q", clusters[1].ID)
	}
}

func TestBuildSingletonsConsumeIndices(t *testing.T) {
	// Cluster list: [singleton, pair]. The pair sits at index 1 of the full
	// list, so its id is cluster-1 even though it is the first real group.
	articles := withTitles(
		"Quiet morning in the harbor town",
		"Central bank raises interest rates again today",
		"Interest rates raised again by central bank today",
	)
	clusters := Build(articles)

	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}
	if clusters[0].ID != "" {
		t.Errorf("singleton id should be empty, got %q", clusters[0].ID)
	}
	if clusters[1].ID != "cluster-1" {
		t.Errorf("expected positional id cluster-1, got %q", clusters[1].ID)
	}
}

func TestBuildOrderSensitive(t *testing.T) {
	// B resembles both A and C; A and C do not resemble each other. With A
	// first, A seeds and absorbs B, leaving C alone. Seed-based membership
	// means the outcome is legitimately order-dependent.
	a := "alpha shared bravo unique"
	b := "alpha shared charlie delta"
	c := "charlie delta echo foxtrot"

	first := Build(withTitles(a, b, c))
	if len(first) != 2 {
		t.Fatalf("expected 2 clusters with A first, got %d", len(first))
	}
	if first[0].Size() != 2 {
		t.Errorf("expected A to absorb B, got cluster size %d", first[0].Size())
	}

	second := Build(withTitles(b, a, c))
	if len(second) != 1 {
		t.Fatalf("expected 1 cluster with B first (B absorbs both), got %d", len(second))
	}
}

func TestBuildThresholdIsStrict(t *testing.T) {
	// Exactly 2 shared tokens out of 6 union = 0.333... > 0.3: clusters.
	// 1 shared of 7 = 0.14: does not.
	over := Build(withTitles(
		"shared tokens first headline",
		"shared tokens other thing",
	))
	if len(over) != 1 {
		t.Errorf("similarity above threshold should cluster, got %d clusters", len(over))
	}

	under := Build(withTitles(
		"shared word only here today",
		"shared something else entirely different",
	))
	if len(under) != 2 {
		t.Errorf("similarity below threshold should not cluster, got %d clusters", len(under))
	}
}
