package graph

import (
	"sort"
	"strings"

	"github.com/poiesic/issuegraph/core"
)

// SimilarityThreshold is the value a pair must exceed to get a similarity edge.
const SimilarityThreshold = 0.3

const (
	titleOverlapWeight = 0.4
	labelOverlapWeight = 0.3
	sameRepoBonus      = 0.2
	sameAuthorBonus    = 0.1
)

// Similarity estimates how related two records are, in [0, 1].
//
// Title word overlap contributes up to 0.4 and label overlap up to 0.3, each
// as |A∩B| / max(|A|, |B|). A shared non-empty repository adds 0.2 and a
// shared non-empty author login adds 0.1. The result is symmetric.
func Similarity(a, b *core.Record) float64 {
	if a == nil || b == nil {
		return 0
	}

	sim := overlap(titleWords(a.Title), titleWords(b.Title)) * titleOverlapWeight
	sim += overlap(labelSet(a), labelSet(b)) * labelOverlapWeight

	if a.Repository != "" && a.Repository == b.Repository {
		sim += sameRepoBonus
	}
	if a.Author.Login != "" && a.Author.Login == b.Author.Login {
		sim += sameAuthorBonus
	}

	return min(max(sim, 0), 1)
}

// overlap is |A∩B| / max(|A|, |B|), or 0 when both sets are empty.
func overlap(a, b map[string]struct{}) float64 {
	denom := max(len(a), len(b))
	if denom == 0 {
		return 0
	}
	shared := 0
	for k := range a {
		if _, ok := b[k]; ok {
			shared++
		}
	}
	return float64(shared) / float64(denom)
}

func titleWords(title string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(title))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func labelSet(r *core.Record) map[string]struct{} {
	set := make(map[string]struct{}, len(r.Labels))
	for _, l := range r.Labels {
		if l.Name != "" {
			set[l.Name] = struct{}{}
		}
	}
	return set
}

// candidatePairs returns the index pairs (i < j) to compare, in ascending order.
// Without the prefilter every unordered pair is a candidate. With it, only
// pairs sharing a repository, author or label are compared.
func candidatePairs(records []*core.Record, prefilter bool) [][2]int {
	if !prefilter {
		pairs := make([][2]int, 0, len(records)*(len(records)-1)/2)
		for i := range records {
			for j := i + 1; j < len(records); j++ {
				pairs = append(pairs, [2]int{i, j})
			}
		}
		return pairs
	}

	buckets := make(map[string][]int)
	for i, r := range records {
		if r.Repository != "" {
			buckets["repo:"+r.Repository] = append(buckets["repo:"+r.Repository], i)
		}
		if r.Author.Login != "" {
			buckets["user:"+r.Author.Login] = append(buckets["user:"+r.Author.Login], i)
		}
		for name := range labelSet(r) {
			buckets["label:"+name] = append(buckets["label:"+name], i)
		}
	}

	seen := make(map[[2]int]struct{})
	for _, members := range buckets {
		for x := range members {
			for y := x + 1; y < len(members); y++ {
				seen[[2]int{members[x], members[y]}] = struct{}{}
			}
		}
	}

	pairs := make([][2]int, 0, len(seen))
	for p := range seen {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	return pairs
}
