package search

import (
	"strings"

	"github.com/poiesic/issuegraph/core"
)

// Score weights per matched term.
const (
	titleMatchWeight  = 0.4
	titleExactWeight  = 0.3
	bodyMatchWeight   = 0.2
	bodyRepeatWeight  = 0.05
	bodyRepeatCap     = 3
	labelMatchWeight  = 0.3
	maxRelevanceScore = 1.0
)

// Score computes the relevance of a record to a set of search terms.
//
// For each term: a title containing it adds 0.4, and a title equal to it adds
// a further 0.3; a body containing it adds 0.2 plus 0.05 for each repeat
// occurrence (counting at most three); a label containing it adds 0.3 once.
// Matching is case-insensitive. The total is clamped to 1.0. The match type
// is the single field category that matched, or MatchTypeCombined when
// several (or none) did.
func Score(record *core.Record, terms []string) (float64, core.MatchType) {
	if record == nil || len(terms) == 0 {
		return 0, core.MatchTypeCombined
	}

	title := strings.ToLower(record.Title)
	body := strings.ToLower(record.Body)
	labels := make([]string, len(record.Labels))
	for i, l := range record.Labels {
		labels[i] = strings.ToLower(l.Name)
	}

	var total float64
	var titleHit, bodyHit, labelHit bool

	for _, term := range terms {
		term = strings.ToLower(term)
		if term == "" {
			continue
		}

		if title != "" && strings.Contains(title, term) {
			total += titleMatchWeight
			titleHit = true
			if title == term {
				total += titleExactWeight
			}
		}

		if body != "" {
			if n := strings.Count(body, term); n > 0 {
				total += bodyMatchWeight + float64(min(n, bodyRepeatCap)-1)*bodyRepeatWeight
				bodyHit = true
			}
		}

		for _, l := range labels {
			if l != "" && strings.Contains(l, term) {
				total += labelMatchWeight
				labelHit = true
				break
			}
		}
	}

	return min(total, maxRelevanceScore), matchType(titleHit, bodyHit, labelHit)
}

func matchType(title, body, labels bool) core.MatchType {
	hits := 0
	result := core.MatchTypeCombined
	if title {
		hits++
		result = core.MatchTypeTitle
	}
	if body {
		hits++
		result = core.MatchTypeBody
	}
	if labels {
		hits++
		result = core.MatchTypeLabels
	}
	if hits != 1 {
		return core.MatchTypeCombined
	}
	return result
}
