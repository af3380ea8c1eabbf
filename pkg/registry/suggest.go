package registry

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

type match struct {
	name  string
	score float64
}

// closestMatches ranks candidates by similarity to the query and returns
// the top n above a relevance threshold. Used to build "did you mean"
// hints when a verb or role lookup misses.
func closestMatches(query string, candidates []string, n int) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || len(candidates) == 0 {
		return nil
	}

	var matches []match
	for _, cand := range candidates {
		score := similarity(query, strings.ToLower(cand))
		if score > 0.4 {
			matches = append(matches, match{name: cand, score: score})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].name < matches[j].name
	})

	if len(matches) > n {
		matches = matches[:n]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}

// similarity returns a 0..1 score combining substring containment with
// normalized Levenshtein distance.
func similarity(query, candidate string) float64 {
	if query == candidate {
		return 1.0
	}
	if strings.Contains(candidate, query) || strings.Contains(query, candidate) {
		return 0.9
	}

	dist := levenshtein.Distance(query, candidate, nil)
	maxLen := len(query)
	if len(candidate) > maxLen {
		maxLen = len(candidate)
	}
	if maxLen == 0 {
		return 0
	}
	score := 1.0 - float64(dist)/float64(maxLen)
	if score < 0 {
		return 0
	}
	return score
}
