// Package cluster groups same-story articles within one ingestion batch.
package cluster

import (
	"fmt"

	"librenews/internal/news"
	"librenews/internal/similarity"
)

// Threshold is the minimum headline similarity for two articles to be
// considered the same story.
const Threshold = 0.3

// Cluster is one story group: the batch indices of its member articles plus
// an identifier. ID is empty for singletons, meaning "no grouping" rather
// than "group of one". IDs are batch-local; persistence decides whether they
// need to be stable across refreshes.
type Cluster struct {
	ID      string
	Members []int
}

// Size returns the number of member articles.
func (c Cluster) Size() int { return len(c.Members) }

// Build partitions a batch into story clusters with a single greedy pass.
// Every article lands in exactly one cluster; singletons are kept.
//
// Two properties are intentional, not bugs:
//   - The result depends on input order: the first unassigned article seeds
//     each cluster and scans the remainder.
//   - Membership is seed-based, not pairwise: an article joins because it
//     resembles the seed, even if it does not resemble members added later.
//
// Worst case O(n²) similarity comparisons.
func Build(articles []news.Article) []Cluster {
	assigned := make(map[int]struct{}, len(articles))
	var clusters []Cluster

	for i := range articles {
		if _, ok := assigned[i]; ok {
			continue
		}
		members := []int{i}
		assigned[i] = struct{}{}

		for j := i + 1; j < len(articles); j++ {
			if _, ok := assigned[j]; ok {
				continue
			}
			if similarity.Titles(articles[i].Title, articles[j].Title) > Threshold {
				members = append(members, j)
				assigned[j] = struct{}{}
			}
		}

		clusters = append(clusters, Cluster{Members: members})
	}

	// Identifiers are positional over the full cluster list, so singleton
	// clusters still consume an index even though they stay unnamed.
	for idx := range clusters {
		if clusters[idx].Size() > 1 {
			clusters[idx].ID = fmt.Sprintf("cluster-%d", idx)
		}
	}
	return clusters
}
