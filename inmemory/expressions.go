package inmemory

import (
	"strings"

	"github.com/letmevibethatforyou/smartsearch"
)

// matchesFilters checks if a listing matches all the filter expressions.
func matchesFilters(listing smartsearch.Listing, filters []smartsearch.Expression) bool {
	for _, filter := range filters {
		if !evaluateExpression(listing, filter) {
			return false
		}
	}
	return true
}

// evaluateExpression evaluates a single expression against a listing.
func evaluateExpression(listing smartsearch.Listing, expr smartsearch.Expression) bool {
	switch e := expr.(type) {
	case smartsearch.AndExpr:
		return evaluateAnd(listing, e)
	case smartsearch.OrExpr:
		return evaluateOr(listing, e)
	case smartsearch.NotExpr:
		return !evaluateExpression(listing, e.Inner)
	case smartsearch.EqExpr:
		return evaluateEq(listing, e)
	case smartsearch.ContainsExpr:
		return evaluateContains(listing, e)
	case smartsearch.ExistsExpr:
		return evaluateExists(listing, e)
	default:
		// Unknown expression type, return true to not filter out
		return true
	}
}

func evaluateAnd(listing smartsearch.Listing, expr smartsearch.AndExpr) bool {
	for _, e := range expr.Exprs {
		if !evaluateExpression(listing, e) {
			return false
		}
	}
	return true
}

func evaluateOr(listing smartsearch.Listing, expr smartsearch.OrExpr) bool {
	for _, e := range expr.Exprs {
		if evaluateExpression(listing, e) {
			return true
		}
	}
	return false
}

// evaluateEq is an exact, case-sensitive comparison.
func evaluateEq(listing smartsearch.Listing, expr smartsearch.EqExpr) bool {
	values, known := listing.Values(expr.Field)
	if !known {
		return false
	}
	for _, v := range values {
		if v == expr.Value {
			return true
		}
	}
	return false
}

// evaluateContains is a case-insensitive substring test.
func evaluateContains(listing smartsearch.Listing, expr smartsearch.ContainsExpr) bool {
	values, known := listing.Values(expr.Field)
	if !known {
		return false
	}
	needle := strings.ToLower(expr.Value)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

func evaluateExists(listing smartsearch.Listing, expr smartsearch.ExistsExpr) bool {
	values, known := listing.Values(expr.Field)
	if !known {
		return false
	}
	for _, v := range values {
		if v != "" {
			return true
		}
	}
	return false
}
