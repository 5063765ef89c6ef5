// Package suggest produces autocomplete suggestions for partially typed
// queries from taxonomy keywords and known locations.
package suggest

import (
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/letmevibethatforyou/smartsearch"
	"github.com/letmevibethatforyou/smartsearch/similarity"
	"github.com/letmevibethatforyou/smartsearch/taxonomy"
)

const (
	// DefaultLimit is the number of suggestions returned when no positive
	// limit is given.
	DefaultLimit = 5
	// MinQueryLength is the shortest partial query, in characters, that
	// produces suggestions.
	MinQueryLength = 2
)

// Scores assigned to candidates.
const (
	prefixScore    = 1.0
	containsScore  = 0.8
	locationScore  = 0.9
	fuzzyThreshold = 0.7
)

// Suggestion is a candidate completion with its score.
type Suggestion struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Generator builds suggestions from a fixed taxonomy. It is safe for
// concurrent use.
type Generator struct {
	keywords  []string
	locations []string
}

// New creates a generator over the keywords and locations of tax.
func New(tax *taxonomy.Taxonomy) *Generator {
	g := &Generator{locations: tax.Locations()}
	for _, e := range tax.Entries() {
		g.keywords = append(g.keywords, e.Keywords...)
	}
	return g
}

var defaultGenerator = sync.OnceValue(func() *Generator {
	return New(taxonomy.Default())
})

// Generate runs the default generator.
func Generate(partial string, limit int) []string {
	return defaultGenerator().Generate(partial, limit)
}

// Generate returns up to limit distinct suggestions for partial, best
// first. Queries shorter than MinQueryLength yield no suggestions.
func (g *Generator) Generate(partial string, limit int) []string {
	scored := g.GenerateScored(partial, limit)
	if len(scored) == 0 {
		return nil
	}
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.Text
	}
	return out
}

// GenerateScored is Generate with the score of every suggestion.
//
// A keyword scores 1.0 when it starts with the query, 0.8 when it merely
// contains it, and its similarity to the query when that exceeds 0.7.
// A location starting with the query contributes "Jobs in <location>" at
// 0.9. Duplicate texts keep their highest score; equal scores keep
// candidate order.
func (g *Generator) GenerateScored(partial string, limit int) []Suggestion {
	q := smartsearch.NormalizeQuery(partial)
	if utf8.RuneCountInString(q) < MinQueryLength {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	pool := newCandidatePool()
	for _, kw := range g.keywords {
		switch {
		case strings.HasPrefix(kw, q):
			pool.add(kw, prefixScore)
		case strings.Contains(kw, q):
			pool.add(kw, containsScore)
		default:
			if s := similarity.Score(q, kw); s > fuzzyThreshold {
				pool.add(kw, s)
			}
		}
	}
	for _, loc := range g.locations {
		if strings.HasPrefix(strings.ToLower(loc), q) {
			pool.add("Jobs in "+loc, locationScore)
		}
	}

	out := pool.items
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// candidatePool deduplicates suggestions by exact text, remembering first
// insertion order.
type candidatePool struct {
	items []Suggestion
	index map[string]int
}

func newCandidatePool() *candidatePool {
	return &candidatePool{index: make(map[string]int)}
}

func (p *candidatePool) add(text string, score float64) {
	if i, ok := p.index[text]; ok {
		p.items[i].Score = max(p.items[i].Score, score)
		return
	}
	p.index[text] = len(p.items)
	p.items = append(p.items, Suggestion{Text: text, Score: score})
}
