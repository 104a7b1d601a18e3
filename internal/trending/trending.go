// Package trending scores story clusters by breadth of coverage.
package trending

import (
	"librenews/internal/cluster"
	"librenews/internal/news"
)

// Score caps and weights. The score rewards diversity, not raw volume: a
// hundred articles from one outlet in one country tops out at 15.
const (
	sourceWeight   = 2
	maxSourceScore = 10
	countryWeight  = 3
	maxCountry     = 15
	orientWeight   = 2
	maxOrient      = 10

	// trendingFloor: a same-country story needs this much diversity score.
	trendingFloor = 15
	minSources    = 2
)

// Score computes the trending score and flag for one cluster.
//
//	score = min(2n,10) + min(3C,15) + min(2O,10)
//
// where n is member count, C distinct countries, O distinct orientations.
// A story trends only with at least two sources, and then only if it spans
// two countries or its diversity score reaches the floor. Singletons never
// trend. Pure function of its inputs; safe to re-run.
func Score(c cluster.Cluster, articles []news.Article) (int, bool) {
	countries := make(map[string]struct{})
	orientations := make(map[string]struct{})
	for _, idx := range c.Members {
		countries[articles[idx].Country] = struct{}{}
		orientations[articles[idx].Orientation] = struct{}{}
	}

	n := c.Size()
	score := capped(n*sourceWeight, maxSourceScore) +
		capped(len(countries)*countryWeight, maxCountry) +
		capped(len(orientations)*orientWeight, maxOrient)

	isTrending := n >= minSources && (len(countries) >= 2 || score >= trendingFloor)
	return score, isTrending
}

// Apply scores every cluster and broadcasts cluster id, score and flag to all
// member articles in place. Every member of a cluster carries identical
// values.
func Apply(clusters []cluster.Cluster, articles []news.Article) {
	for _, c := range clusters {
		score, isTrending := Score(c, articles)
		for _, idx := range c.Members {
			articles[idx].ClusterID = c.ID
			articles[idx].TrendingScore = score
			articles[idx].IsTrending = isTrending
		}
	}
}

func capped(v, max int) int {
	if v > max {
		return max
	}
	return v
}
