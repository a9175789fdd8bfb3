// Package fuzzy provides the Skim-style fuzzy scorer spec §4.7 requires:
// subsequence matching with bonuses for word-boundary, consecutive-character,
// and case matches, returning an integer score where higher is better. Not
// present in the retrieved pack; adopted from github.com/sahilm/fuzzy, the
// standard Go port of the fzf/skim algorithm.
package fuzzy

import "github.com/sahilm/fuzzy"

// Match pairs a candidate with its fuzzy score.
type Match struct {
	Index int
	Score int
}

// source adapts a plain string slice to fuzzy.Source.
type source []string

func (s source) String(i int) string { return s[i] }
func (s source) Len() int            { return len(s) }

// Rank scores every candidate against query and returns matches sorted
// descending by score, highest first. Candidates that do not match the
// subsequence at all are omitted, matching github.com/sahilm/fuzzy's own
// contract.
func Rank(query string, candidates []string) []Match {
	if query == "" {
		matches := make([]Match, len(candidates))
		for i := range candidates {
			matches[i] = Match{Index: i, Score: 0}
		}
		return matches
	}
	results := fuzzy.FindFrom(query, source(candidates))
	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{Index: r.Index, Score: r.Score}
	}
	return matches
}

// Top returns the top n matches for query among candidates, by descending
// score. Used by both the symbol index actor (spec §4.7) and the path-fuzzy
// actor (spec §4.9), which share this ranking routine but apply different
// caps.
func Top(query string, candidates []string, n int) []Match {
	matches := Rank(query, candidates)
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches
}
