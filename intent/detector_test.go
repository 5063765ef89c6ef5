package intent

import (
	"math"
	"strings"
	"testing"

	"github.com/letmevibethatforyou/smartsearch/taxonomy"
)

const testTaxonomy = `
[synonyms]
chef = ["cook", "culinary"]

[[category]]
name = "Kitchen"
icon = "K"
priority = 1
keywords = ["chef", "baker"]

[[category]]
name = "Garden"
icon = "G"
priority = 2
keywords = ["gardener", "landscaper"]

[[category]]
name = "Tech"
icon = "T"
priority = 1
keywords = ["developer", "programmer"]
`

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	tax, err := taxonomy.Load(strings.NewReader(testTaxonomy))
	if err != nil {
		t.Fatalf("Failed to load test taxonomy: %v", err)
	}
	return New(tax)
}

func TestDetect(t *testing.T) {
	d := newTestDetector(t)

	tests := map[string]struct {
		query    string
		expected []CategoryMatch
	}{
		"keyword_exact": {
			query:    "chef",
			expected: []CategoryMatch{{Category: "Kitchen", Confidence: 0.9, Icon: "K"}},
		},
		"keyword_inside_query": {
			query:    "Head Chef wanted",
			expected: []CategoryMatch{{Category: "Kitchen", Confidence: 0.9, Icon: "K"}},
		},
		"query_inside_keyword": {
			query:    "landscape",
			expected: []CategoryMatch{{Category: "Garden", Confidence: 0.9, Icon: "G"}},
		},
		"synonym": {
			query:    "cook",
			expected: []CategoryMatch{{Category: "Kitchen", Confidence: 0.85, Icon: "K"}},
		},
		"fuzzy_keyword": {
			query:    "gardner",
			expected: []CategoryMatch{{Category: "Garden", Confidence: 1 - 1.0/8.0, Icon: "G"}},
		},
		"fuzzy_misspelling": {
			query:    "develper",
			expected: []CategoryMatch{{Category: "Tech", Confidence: 1 - 1.0/9.0, Icon: "T"}},
		},
		"ranked_by_confidence": {
			query: "culinary developer",
			expected: []CategoryMatch{
				{Category: "Tech", Confidence: 0.9, Icon: "T"},
				{Category: "Kitchen", Confidence: 0.85, Icon: "K"},
			},
		},
		"ties_keep_taxonomy_order": {
			query: "developer chef",
			expected: []CategoryMatch{
				{Category: "Kitchen", Confidence: 0.9, Icon: "K"},
				{Category: "Tech", Confidence: 0.9, Icon: "T"},
			},
		},
		"no_match": {
			query:    "xyz",
			expected: nil,
		},
		"empty_query": {
			query:    "",
			expected: nil,
		},
		"blank_query": {
			query:    "   ",
			expected: nil,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := d.Detect(tc.query)
			if len(got) != len(tc.expected) {
				t.Fatalf("Expected %d matches, got %d: %+v", len(tc.expected), len(got), got)
			}
			for i := range got {
				want := tc.expected[i]
				if got[i].Category != want.Category || got[i].Icon != want.Icon {
					t.Errorf("At %d: expected %+v, got %+v", i, want, got[i])
				}
				if math.Abs(got[i].Confidence-want.Confidence) > 1e-9 {
					t.Errorf("At %d: expected confidence %v, got %v", i, want.Confidence, got[i].Confidence)
				}
			}
		})
	}
}

func TestDetectThreshold(t *testing.T) {
	d := newTestDetector(t)

	for _, q := range []string{"a", "ch", "plumber", "teacher", "gardening tools", "bakery"} {
		for _, m := range d.Detect(q) {
			if m.Confidence <= MinConfidence || m.Confidence > 1 {
				t.Errorf("Query %q returned %q with confidence %v", q, m.Category, m.Confidence)
			}
		}
	}
}

func TestDetectSorted(t *testing.T) {
	for _, q := range []string{"chef", "security guard", "boat captain", "nurse", "web developer"} {
		matches := Detect(q)
		for i := 1; i < len(matches); i++ {
			if matches[i].Confidence > matches[i-1].Confidence {
				t.Errorf("Query %q: results not sorted at %d: %+v", q, i, matches)
			}
		}
	}
}

func TestBest(t *testing.T) {
	d := newTestDetector(t)

	m, ok := d.Best("culinary developer")
	if !ok {
		t.Fatal("Expected a best match")
	}
	if m.Category != "Tech" {
		t.Errorf("Expected Tech, got %q", m.Category)
	}

	if _, ok := d.Best("xyz"); ok {
		t.Error("Expected no best match for xyz")
	}
}

func TestDetectDefaultTaxonomy(t *testing.T) {
	tests := map[string]struct {
		query    string
		category string
		minConf  float64
	}{
		"plumber":          {query: "plumber", category: "Trades & Construction", minConf: 0.9},
		"plumber_mixed":    {query: "Plumber", category: "Trades & Construction", minConf: 0.9},
		"plumbing_synonym": {query: "plumbing", category: "Trades & Construction", minConf: 0.85},
		"web_developer":    {query: "web developer", category: "Technology & IT", minConf: 0.9},
		"bartender":        {query: "bartender", category: "Hospitality & Tourism", minConf: 0.9},
		"misspelt_nurse":   {query: "nurses", category: "Healthcare & Medical", minConf: 0.9},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			matches := Detect(tc.query)
			found := false
			for _, m := range matches {
				if m.Category == tc.category {
					found = true
					if m.Confidence < tc.minConf {
						t.Errorf("Expected confidence >= %v for %q, got %v", tc.minConf, tc.category, m.Confidence)
					}
					if m.Icon == "" {
						t.Errorf("Expected icon for %q", tc.category)
					}
				}
			}
			if !found {
				t.Errorf("Expected %q in matches for %q, got %+v", tc.category, tc.query, matches)
			}
		})
	}

	best, ok := New(taxonomy.Default()).Best("plumber")
	if !ok || best.Category != "Trades & Construction" {
		t.Errorf("Expected Trades & Construction as best match, got %+v", best)
	}
}
