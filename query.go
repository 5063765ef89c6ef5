package smartsearch

import "strings"

// NormalizeQuery lowercases q, trims it and collapses runs of whitespace
// to a single space. Category detection and suggestions match against the
// normalized form; relevance scoring uses the query as given.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
