package client

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
)

// exactSubstringDistance is the distance of a query found verbatim inside a
// longer field. Only a whole-field match scores 0.
const exactSubstringDistance = 0.001

// fieldDistance returns the distance between a lowercased query and a
// lowercased field, or false when neither tier matches within threshold.
func fieldDistance(query []rune, qs, field string, threshold float64) (float64, bool) {
	if field == "" {
		return 1, false
	}
	if strings.TrimSpace(field) == qs {
		return 0, true
	}

	var best float64
	if edits := substringEdits(query, field); edits == 0 {
		best = exactSubstringDistance
	} else {
		best = float64(edits) / float64(len(query))
	}
	if best > exactSubstringDistance {
		if d, ok := gapDistance(qs, len(query), field); ok && d < best {
			best = d
		}
	}
	if best > threshold {
		return best, false
	}
	return best, true
}

// substringEdits is Sellers' approximate substring match: the minimum edit
// distance between pattern and any substring of text.
func substringEdits(pattern []rune, text string) int {
	m := len(pattern)
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for i := range prev {
		prev[i] = i
	}
	best := m
	for _, c := range text {
		cur[0] = 0
		for i := 1; i <= m; i++ {
			cost := 1
			if pattern[i-1] == c {
				cost = 0
			}
			cur[i] = min(prev[i-1]+cost, prev[i]+1, cur[i-1]+1)
		}
		if cur[m] < best {
			best = cur[m]
			if best == 0 {
				return 0
			}
		}
		prev, cur = cur, prev
	}
	return best
}

// gapDistance scores an in-order subsequence match by how many extra runes
// the matched span covers.
func gapDistance(query string, queryRunes int, field string) (float64, bool) {
	matches := fuzzy.Find(query, []string{field})
	if len(matches) == 0 {
		return 1, false
	}
	idx := matches[0].MatchedIndexes
	first, last := idx[0], idx[len(idx)-1]
	_, size := utf8.DecodeRuneInString(field[last:])
	span := utf8.RuneCountInString(field[first : last+size])
	if span <= 0 {
		return 1, false
	}
	d := 1 - float64(queryRunes)/float64(span)
	return math.Max(d, exactSubstringDistance), true
}

// fieldNorm shortens the reach of long fields: 1/sqrt(tokens), rounded to
// three decimals.
func fieldNorm(field string) float64 {
	n := len(strings.Fields(field))
	if n == 0 {
		return 1
	}
	return math.Round(1000/math.Sqrt(float64(n))) / 1000
}
