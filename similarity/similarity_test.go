package similarity

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestScore(t *testing.T) {
	tests := map[string]struct {
		a, b     string
		expected float64
	}{
		"exact":                 {a: "plumber", b: "plumber", expected: 1.0},
		"exact_ignoring_case":   {a: "Plumber", b: "PLUMBER", expected: 1.0},
		"query_inside_title":    {a: "plumber", b: "Plumber Needed", expected: 0.8},
		"title_inside_query":    {a: "senior web developer", b: "Web Developer", expected: 0.8},
		"one_substitution":      {a: "cook", b: "look", expected: 0.75},
		"transposed_letters":    {a: "chef", b: "cehf", expected: 0.5},
		"nothing_in_common":     {a: "abc", b: "xyz", expected: 0},
		"empty_vs_text":         {a: "", b: "nurse", expected: 0},
		"plumber_vs_plumbing":   {a: "plumber", b: "plumbing", expected: 1 - 3.0/8.0},
		"electrician_misspelt":  {a: "electrician", b: "electricain", expected: 1 - 2.0/11.0},
		"both_empty":            {a: "", b: "", expected: 1.0},
		"different_lengths":     {a: "it", b: "tax", expected: 1 - 3.0/3.0},
		"single_insertion_tail": {a: "driver", b: "drivers", expected: 0.8},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := Score(tc.a, tc.b)
			if math.Abs(got-tc.expected) > epsilon {
				t.Errorf("Score(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.expected)
			}
		})
	}
}

func TestScoreReflexive(t *testing.T) {
	for _, s := range []string{"a", "chef", "Trades & Construction", "Jobs in Nassau", "ÉCOLE"} {
		if got := Score(s, s); got != 1.0 {
			t.Errorf("Score(%q, %q) = %v, want 1", s, s, got)
		}
	}
}

func TestScoreSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"plumber", "plumbing"},
		{"nurse", "Nursing Assistant"},
		{"developer", "devloper"},
		{"mechanic", "technician"},
		{"", "cashier"},
	}

	for _, p := range pairs {
		ab := Score(p[0], p[1])
		ba := Score(p[1], p[0])
		if math.Abs(ab-ba) > epsilon {
			t.Errorf("Score not symmetric for %q/%q: %v vs %v", p[0], p[1], ab, ba)
		}
	}
}

func TestScoreRange(t *testing.T) {
	inputs := []string{"", "a", "ab", "teacher", "accountant", "receptionist", "x y z"}
	for _, a := range inputs {
		for _, b := range inputs {
			got := Score(a, b)
			if got < 0 || got > 1 {
				t.Errorf("Score(%q, %q) = %v out of range", a, b, got)
			}
		}
	}
}

func TestDistance(t *testing.T) {
	tests := map[string]struct {
		a, b     string
		expected int
	}{
		"identical":      {a: "kitten", b: "kitten", expected: 0},
		"classic":        {a: "kitten", b: "sitting", expected: 3},
		"case_folded":    {a: "Nassau", b: "nassau", expected: 0},
		"empty_left":     {a: "", b: "abc", expected: 3},
		"empty_right":    {a: "abcd", b: "", expected: 4},
		"both_empty":     {a: "", b: "", expected: 0},
		"one_deletion":   {a: "chefs", b: "chef", expected: 1},
		"one_insertion":  {a: "gardner", b: "gardener", expected: 1},
		"substitutions":  {a: "flaw", b: "lawn", expected: 2},
		"different_word": {a: "nurse", b: "teacher", expected: 6},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Distance(tc.a, tc.b); got != tc.expected {
				t.Errorf("Distance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.expected)
			}
		})
	}
}
