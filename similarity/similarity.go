// Package similarity scores how alike two strings are on a 0 to 1 scale.
package similarity

import (
	"strings"

	"github.com/xrash/smetrics"
)

const (
	// Exact is returned for strings equal after lowercasing.
	Exact = 1.0
	// Containment is returned when one lowercased string contains the other.
	Containment = 0.8
)

// Score returns the similarity of a and b in [0, 1]. Comparison ignores
// case. The first matching rule wins: equality scores Exact, containment in
// either direction scores Containment, anything else scores
// 1 - distance/max(len(a), len(b)). An empty string is never considered
// contained, so it scores 0 against any non-empty string.
func Score(a, b string) float64 {
	la := strings.ToLower(a)
	lb := strings.ToLower(b)

	if la == lb {
		return Exact
	}
	if la != "" && lb != "" && (strings.Contains(la, lb) || strings.Contains(lb, la)) {
		return Containment
	}

	longest := max(len(la), len(lb))
	if longest == 0 {
		return Exact
	}
	return 1 - float64(distance(la, lb))/float64(longest)
}

// Distance returns the Levenshtein distance between the lowercased forms of
// a and b, with unit cost for insertion, deletion and substitution.
func Distance(a, b string) int {
	return distance(strings.ToLower(a), strings.ToLower(b))
}

func distance(a, b string) int {
	return smetrics.WagnerFischer(a, b, 1, 1, 1)
}
