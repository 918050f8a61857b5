package summary

import (
	"sort"
	"strings"
	"unicode"

	"adpulse/domain/dataset"
)

// maxTermsPerCampaign caps the term list handed to the creative stages.
const maxTermsPerCampaign = 30

// buildTextTerms tokenizes creative messages per campaign and keeps the
// most frequent terms. Tokens are lowercased, stripped of anything
// outside [a-z0-9], and must be longer than two characters.
func buildTextTerms(records []record) map[string][]dataset.TermCount {
	counts := map[string]map[string]int{}
	for _, r := range records {
		if r.creative == "" {
			continue
		}
		c := counts[r.campaign]
		if c == nil {
			c = map[string]int{}
			counts[r.campaign] = c
		}
		for _, tok := range tokenize(r.creative) {
			c[tok]++
		}
	}

	out := make(map[string][]dataset.TermCount, len(counts))
	for campaign, c := range counts {
		terms := make([]dataset.TermCount, 0, len(c))
		for term, n := range c {
			terms = append(terms, dataset.TermCount{Term: term, Count: n})
		}
		// Descending count, term as tiebreak, for a stable ordering.
		sort.Slice(terms, func(i, j int) bool {
			if terms[i].Count != terms[j].Count {
				return terms[i].Count > terms[j].Count
			}
			return terms[i].Term < terms[j].Term
		})
		if len(terms) > maxTermsPerCampaign {
			terms = terms[:maxTermsPerCampaign]
		}
		out[campaign] = terms
	}
	return out
}

// tokenize splits text into lowercase alphanumeric tokens longer than two
// characters.
func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return ' '
	}, text)

	fields := strings.Fields(cleaned)
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) > 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
