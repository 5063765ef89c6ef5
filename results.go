package smartsearch

// Result is a listing enriched with its relevance for one search call.
type Result struct {
	Listing

	// Score is the relevance score in the range [0, 100].
	Score float64 `json:"relevanceScore"`

	// MatchedFields names the listing fields that contributed to Score,
	// in evaluation order.
	MatchedFields []string `json:"matchedFields"`
}

// Results represents a collection of search results with metadata.
type Results struct {
	// Items contains the ranked results, highest score first.
	Items []Result `json:"items"`

	// Total is the number of listings that survived filtering.
	Total int64 `json:"total"`

	// Took is the time taken to execute the search in milliseconds.
	Took int64 `json:"took_ms"`

	// MaxScore is the maximum relevance score across all results.
	MaxScore float64 `json:"max_score"`

	// Query is the original query string for reference.
	Query string `json:"query"`
}

// NewResults wraps ranked items in a Results envelope.
func NewResults(query string, items []Result) *Results {
	res := &Results{
		Items: items,
		Total: int64(len(items)),
		Query: query,
	}
	for _, item := range items {
		if item.Score > res.MaxScore {
			res.MaxScore = item.Score
		}
	}
	return res
}
