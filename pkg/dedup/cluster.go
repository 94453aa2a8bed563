package dedup

import (
	"sort"
	"unicode/utf8"
)

// clusterSimilar groups near-duplicate sentences with complete-linkage
// agglomerative clustering over cosine distance and keeps one representative
// per cluster (the longest member). With one sentence or fewer there is
// nothing to merge and the input is returned unchanged.
func clusterSimilar(informative []informativeSentence, matrix tfidfResult, similarityThreshold float64) []informativeSentence {
	if len(informative) <= 1 {
		return informative
	}

	distanceThreshold := 1 - similarityThreshold

	// Pairwise cosine distances between the selected rows.
	n := len(informative)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := 1 - cosineSimilarity(matrix.rows[informative[i].Index], matrix.rows[informative[j].Index])
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	// Each sentence starts as its own cluster; merge the closest pair while
	// its complete-linkage distance stays below the threshold.
	clusters := make([][]int, n)
	for i := range clusters {
		clusters[i] = []int{i}
	}

	for len(clusters) > 1 {
		bestA, bestB := -1, -1
		bestDist := distanceThreshold

		for a := 0; a < len(clusters); a++ {
			for b := a + 1; b < len(clusters); b++ {
				d := completeLinkage(clusters[a], clusters[b], dist)
				if d < bestDist {
					bestDist = d
					bestA, bestB = a, b
				}
			}
		}

		if bestA < 0 {
			break
		}

		clusters[bestA] = append(clusters[bestA], clusters[bestB]...)
		clusters = append(clusters[:bestB], clusters[bestB+1:]...)
	}

	// Order clusters by their earliest member so output stays stable, then
	// pick the longest sentence of each cluster as its representative.
	for _, members := range clusters {
		sort.Ints(members)
	}
	sort.Slice(clusters, func(a, b int) bool {
		return clusters[a][0] < clusters[b][0]
	})

	unique := make([]informativeSentence, 0, len(clusters))
	for _, members := range clusters {
		best := members[0]
		bestLen := utf8.RuneCountInString(informative[best].Text)
		for _, m := range members[1:] {
			if l := utf8.RuneCountInString(informative[m].Text); l > bestLen {
				best = m
				bestLen = l
			}
		}
		unique = append(unique, informative[best])
	}
	return unique
}

// completeLinkage is the farthest pairwise distance between two clusters.
func completeLinkage(a, b []int, dist [][]float64) float64 {
	var max float64
	for _, i := range a {
		for _, j := range b {
			if dist[i][j] > max {
				max = dist[i][j]
			}
		}
	}
	return max
}
