package smartsearch

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

// Field names reported in Result.MatchedFields and accepted by filter
// expressions. The order of the block is the order fields are scored in.
const (
	FieldTitle       = "title"
	FieldCategory    = "category"
	FieldDescription = "description"
	FieldCompany     = "company"
	FieldSkills      = "skills"
	FieldLocation    = "location"
)

// Listing is a job or service posting supplied by the caller.
// Company and Skills are optional; an empty value means absent and never
// contributes to a relevance score.
type Listing struct {
	ID          string   `json:"id" dynamodbav:"id"`
	Title       string   `json:"title" dynamodbav:"title"`
	Description string   `json:"description" dynamodbav:"description"`
	Category    string   `json:"category" dynamodbav:"category"`
	Location    string   `json:"location" dynamodbav:"location"`
	Company     string   `json:"company,omitempty" dynamodbav:"company,omitempty"`
	Skills      []string `json:"skills,omitempty" dynamodbav:"skills,omitempty"`
}

// HasCompany reports whether the optional company field is present.
func (l Listing) HasCompany() bool {
	return l.Company != ""
}

// Values returns the values stored under the named field. Scalar fields
// yield a single value, skills yields every skill. The second return is
// false for unknown field names.
func (l Listing) Values(field string) ([]string, bool) {
	switch field {
	case "id":
		return []string{l.ID}, true
	case FieldTitle:
		return []string{l.Title}, true
	case FieldDescription:
		return []string{l.Description}, true
	case FieldCategory:
		return []string{l.Category}, true
	case FieldLocation:
		return []string{l.Location}, true
	case FieldCompany:
		return []string{l.Company}, true
	case FieldSkills:
		return l.Skills, true
	default:
		return nil, false
	}
}

// Validate checks that a listing can be identified. Ranking never calls it;
// it is used by listing sources before storing a record.
func (l Listing) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return ErrInvalidListing
	}
	return nil
}

// DecodeListings reads a JSON array of listings.
func DecodeListings(r io.Reader) ([]Listing, error) {
	var listings []Listing
	if err := json.NewDecoder(r).Decode(&listings); err != nil {
		return nil, errors.Wrap(err, "failed to decode listings")
	}
	return listings, nil
}
