// Package intent guesses which taxonomy categories a free-text query is
// about, so callers can pre-fill a category filter while the user types.
package intent

import (
	"sort"
	"strings"
	"sync"

	"github.com/letmevibethatforyou/smartsearch"
	"github.com/letmevibethatforyou/smartsearch/similarity"
	"github.com/letmevibethatforyou/smartsearch/taxonomy"
)

// Confidence values assigned by the detector.
const (
	// KeywordConfidence is assigned when the query and a keyword contain
	// one another.
	KeywordConfidence = 0.9
	// SynonymConfidence is assigned when the query and a synonym of a
	// keyword contain one another.
	SynonymConfidence = 0.85
	// FuzzyThreshold is the similarity a keyword must exceed to count as a
	// fuzzy match.
	FuzzyThreshold = 0.7
	// MinConfidence is the confidence a category must exceed to be reported.
	MinConfidence = 0.6
)

// CategoryMatch is a category the query appears to be about.
type CategoryMatch struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Icon       string  `json:"icon"`
}

// Detector matches queries against a fixed taxonomy. It is safe for
// concurrent use.
type Detector struct {
	entries  []taxonomy.Entry
	synonyms map[string][]string
}

// New creates a detector over tax.
func New(tax *taxonomy.Taxonomy) *Detector {
	return &Detector{
		entries:  tax.Entries(),
		synonyms: tax.SynonymTable(),
	}
}

var defaultDetector = sync.OnceValue(func() *Detector {
	return New(taxonomy.Default())
})

// Detect runs the default detector over query.
func Detect(query string) []CategoryMatch {
	return defaultDetector().Detect(query)
}

// Detect returns the categories whose confidence exceeds MinConfidence,
// highest confidence first. Categories with equal confidence keep taxonomy
// order. A blank query or a query matching nothing yields an empty result.
func (d *Detector) Detect(query string) []CategoryMatch {
	q := smartsearch.NormalizeQuery(query)
	if q == "" {
		return nil
	}

	var matches []CategoryMatch
	for _, e := range d.entries {
		confidence := d.confidence(q, e.Keywords)
		if confidence > MinConfidence {
			matches = append(matches, CategoryMatch{
				Category:   e.Name,
				Confidence: confidence,
				Icon:       e.Icon,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

// Best returns the highest-confidence category for query.
func (d *Detector) Best(query string) (CategoryMatch, bool) {
	matches := d.Detect(query)
	if len(matches) == 0 {
		return CategoryMatch{}, false
	}
	return matches[0], true
}

// confidence is the best score any keyword of a category reaches against
// the normalized query q.
func (d *Detector) confidence(q string, keywords []string) float64 {
	best := 0.0
	for _, kw := range keywords {
		if strings.Contains(q, kw) || strings.Contains(kw, q) {
			best = max(best, KeywordConfidence)
		} else if s := similarity.Score(q, kw); s > FuzzyThreshold {
			best = max(best, s)
		}

		if containsEither(q, d.synonyms[kw]) {
			best = max(best, SynonymConfidence)
		}
	}
	return best
}

func containsEither(q string, variants []string) bool {
	for _, v := range variants {
		if strings.Contains(q, v) || strings.Contains(v, q) {
			return true
		}
	}
	return false
}
