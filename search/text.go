package search

import (
	"regexp"
	"strings"
)

// MaxTerms caps the number of search terms kept from a query.
const MaxTerms = 10

// Common English function words dropped from queries.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "up": true, "about": true, "into": true,
	"through": true, "during": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true, "have": true, "has": true, "had": true,
	"do": true, "does": true, "did": true, "will": true, "would": true, "could": true,
	"should": true, "may": true, "might": true, "must": true, "can": true, "this": true,
	"that": true, "these": true, "those": true, "not": true, "how": true, "what": true,
	"when": true, "where": true, "why": true, "you": true, "it": true,
}

var nonTermChars = regexp.MustCompile(`[^a-z0-9_\s-]`)

// ExtractTerms normalizes a free-text query into search terms.
//
// The query is lowercased, every character other than a-z, 0-9, underscore,
// hyphen and whitespace becomes a space, and the result is split on
// whitespace. Tokens of two characters or fewer and stop words are dropped.
// At most MaxTerms terms are returned, in query order. Duplicates are kept.
func ExtractTerms(query string) []string {
	cleaned := nonTermChars.ReplaceAllString(strings.ToLower(query), " ")
	words := strings.Fields(cleaned)

	terms := make([]string, 0, min(len(words), MaxTerms))
	for _, word := range words {
		if len(word) <= 2 || stopWords[word] {
			continue
		}
		terms = append(terms, word)
		if len(terms) == MaxTerms {
			break
		}
	}
	return terms
}
