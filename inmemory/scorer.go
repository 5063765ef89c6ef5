package inmemory

import (
	"strings"

	"github.com/letmevibethatforyou/smartsearch"
	"github.com/letmevibethatforyou/smartsearch/similarity"
)

// MaxScore is the highest relevance a listing can reach.
const MaxScore = 100.0

// Field weights and thresholds. Weighted fields add similarity*weight when
// similarity exceeds fieldThreshold; flat bonuses are added as is.
const (
	titleWeight      = 40.0
	categoryWeight   = 25.0
	companyWeight    = 10.0
	descriptionBonus = 15.0
	skillBonus       = 5.0
	locationBonus    = 10.0

	fieldThreshold  = 0.5
	strictThreshold = 0.7
)

// Score computes the relevance of listing to query in [0, MaxScore] and the
// fields that contributed, in evaluation order. A blank query scores every
// listing MaxScore with no matched fields. Empty listing fields never
// contribute.
func Score(listing smartsearch.Listing, query string) (float64, []string) {
	if isBlank(query) {
		return MaxScore, []string{}
	}

	var (
		score   float64
		matched = make([]string, 0, 6)
	)

	if s, ok := weighted(query, listing.Title); ok {
		score += s * titleWeight
		matched = append(matched, smartsearch.FieldTitle)
	}

	if s, ok := weighted(query, listing.Category); ok {
		score += s * categoryWeight
		matched = append(matched, smartsearch.FieldCategory)
	}

	if listing.Description != "" &&
		strings.Contains(strings.ToLower(listing.Description), strings.ToLower(query)) {
		score += descriptionBonus
		matched = append(matched, smartsearch.FieldDescription)
	}

	if listing.HasCompany() {
		if s, ok := weighted(query, listing.Company); ok {
			score += s * companyWeight
			matched = append(matched, smartsearch.FieldCompany)
		}
	}

	skillHits := 0
	for _, skill := range listing.Skills {
		if skill != "" && similarity.Score(query, skill) > strictThreshold {
			skillHits++
		}
	}
	if skillHits > 0 {
		score += float64(skillHits) * skillBonus
		matched = append(matched, smartsearch.FieldSkills)
	}

	if listing.Location != "" && similarity.Score(query, listing.Location) > strictThreshold {
		score += locationBonus
		matched = append(matched, smartsearch.FieldLocation)
	}

	return min(MaxScore, score), matched
}

// weighted returns the similarity of query to a non-empty field value when
// it clears fieldThreshold.
func weighted(query, value string) (float64, bool) {
	if value == "" {
		return 0, false
	}
	s := similarity.Score(query, value)
	return s, s > fieldThreshold
}

func isBlank(query string) bool {
	return strings.TrimSpace(query) == ""
}
