// Package similarity scores how alike two command tokens are.
//
// Scores are normalized to [0, 1]. Tokens of three runes or fewer use a
// character-overlap measure because a single transposition ("gti" for
// "git") already costs a third of the string under edit distance. Longer
// tokens use normalized Levenshtein distance.
package similarity

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// ShortLength is the rune length at or below which both tokens are
// compared by character overlap instead of edit distance.
const ShortLength = 3

// Score returns the similarity of a and b in [0, 1]. It is symmetric,
// case-insensitive and Score(x, x) == 1.
func Score(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1.0
	}

	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	longest := max(la, lb)
	if la == 0 || lb == 0 {
		return 0
	}

	if la <= ShortLength && lb <= ShortLength {
		return float64(overlap(a, b)) / float64(longest)
	}

	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}

// overlap counts the distinct runes present in both strings.
func overlap(a, b string) int {
	var inB [ShortLength]rune
	n := 0
	for _, r := range b {
		inB[n] = r
		n++
	}

	count := 0
	var seen [ShortLength]rune
	seenN := 0
	for _, r := range a {
		if containsRune(seen[:seenN], r) {
			continue
		}
		seen[seenN] = r
		seenN++
		if containsRune(inB[:n], r) {
			count++
		}
	}
	return count
}

func containsRune(set []rune, r rune) bool {
	for _, x := range set {
		if x == r {
			return true
		}
	}
	return false
}

// Match is a scored candidate.
type Match struct {
	Text  string
	Score float64
}

// Best returns the highest scoring candidate at or above threshold.
// On equal scores the earliest candidate wins. An empty query never
// matches.
func Best(query string, candidates []string, threshold float64) (Match, bool) {
	if query == "" {
		return Match{}, false
	}

	best := Match{Score: -1}
	for _, c := range candidates {
		s := Score(query, c)
		if s > best.Score {
			best = Match{Text: c, Score: s}
			if s == 1.0 {
				break
			}
		}
	}

	if best.Score < threshold || best.Text == "" {
		return Match{}, false
	}
	return best, true
}
