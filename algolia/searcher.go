package algolia

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	"github.com/letmevibethatforyou/smartsearch"
	"github.com/letmevibethatforyou/smartsearch/inmemory"
)

// Searcher implements smartsearch.Searcher over the listings of an Algolia
// index. Algolia is only the listing source: every call fetches the index
// and ranks it locally, so results match inmemory.Search exactly.
type Searcher struct {
	client    *Client
	indexName string
	pushdown  bool
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithFilterPushdown sends equality filters to Algolia so fewer listings
// are fetched. The filtered attributes must be declared in the index's
// attributesForFaceting.
func WithFilterPushdown() SearcherOption {
	return func(s *Searcher) {
		s.pushdown = true
	}
}

// NewSearcher creates a new Algolia searcher for the specified index.
func NewSearcher(client *Client, indexName string, opts ...SearcherOption) *Searcher {
	s := &Searcher{
		client:    client,
		indexName: indexName,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Search implements the smartsearch.Searcher interface.
func (s *Searcher) Search(ctx context.Context, query string, opts ...smartsearch.SearchOption) (*smartsearch.Results, error) {
	startTime := time.Now()

	select {
	case <-ctx.Done():
		return nil, smartsearch.ErrCanceled
	default:
	}

	cfg := smartsearch.NewSearchConfig(opts...)

	var browseOpts []interface{}
	if s.pushdown {
		if filter := buildFilter(cfg.Filters); filter != "" {
			browseOpts = append(browseOpts, opt.Filters(filter))
		}
	}

	listings, err := s.client.Listings(ctx, s.indexName, browseOpts...)
	if err != nil {
		return nil, err
	}

	results := smartsearch.NewResults(query, inmemory.Search(listings, query, opts...))
	results.Took = time.Since(startTime).Milliseconds()
	return results, nil
}

// buildFilter converts the filters Algolia can evaluate into one filter
// string. The string may admit listings the filters reject, never the
// reverse; the ranking pass applies the full filters again.
func buildFilter(filters []smartsearch.Expression) string {
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		if s := convertExpressionToFilter(f); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 1 {
		return parts[0]
	}
	for i, p := range parts {
		parts[i] = "(" + p + ")"
	}
	return strings.Join(parts, " AND ")
}

// convertExpressionToFilter returns an Algolia filter matching at least the
// listings expr matches, or "" when no useful filter exists.
func convertExpressionToFilter(expr smartsearch.Expression) string {
	switch e := expr.(type) {
	case smartsearch.AndExpr:
		return buildFilter(e.Exprs)
	case smartsearch.OrExpr:
		return convertOrExpression(e)
	case smartsearch.EqExpr:
		return convertEqExpression(e)
	default:
		// Contains and Not have no superset form in Algolia's filter syntax.
		return ""
	}
}

func convertOrExpression(expr smartsearch.OrExpr) string {
	if len(expr.Exprs) == 0 {
		return ""
	}
	filters := make([]string, 0, len(expr.Exprs))
	for _, e := range expr.Exprs {
		filter := convertExpressionToFilter(e)
		if filter == "" {
			return ""
		}
		filters = append(filters, "("+filter+")")
	}
	return strings.Join(filters, " OR ")
}

func convertEqExpression(expr smartsearch.EqExpr) string {
	if expr.Field == "id" {
		return fmt.Sprintf("objectID:%s", escapeValue(expr.Value))
	}
	return fmt.Sprintf("%s:%s", escapeField(expr.Field), escapeValue(expr.Value))
}

// escapeField escapes field names for Algolia filters
func escapeField(field string) string {
	if strings.ContainsAny(field, " :-()") {
		return fmt.Sprintf(`"%s"`, field)
	}
	return field
}

// escapeValue quotes a string value and escapes internal quotes.
func escapeValue(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
}
