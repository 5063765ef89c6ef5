package smartsearch

// Expression represents a composable filter expression.
// All Expressions are SearchOptions, but not all SearchOptions are Expressions.
type Expression interface {
	SearchOption
	// expr is a marker method to distinguish expressions from other options.
	expr()
}

// baseExpr provides the expr marker method for all expression types.
type baseExpr struct{}

func (baseExpr) expr() {}

// AndExpr represents an AND combination of expressions.
type AndExpr struct {
	baseExpr
	// Exprs contains the expressions to combine with AND logic.
	Exprs []Expression
}

// Apply implements the SearchOption interface for AndExpr.
func (a AndExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, a)
}

// And creates an AND expression combining multiple expressions.
func And(exprs ...Expression) Expression {
	return AndExpr{Exprs: exprs}
}

// OrExpr represents an OR combination of expressions.
type OrExpr struct {
	baseExpr
	// Exprs contains the expressions to combine with OR logic.
	Exprs []Expression
}

// Apply implements the SearchOption interface for OrExpr.
func (o OrExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, o)
}

// Or creates an OR expression combining multiple expressions.
func Or(exprs ...Expression) Expression {
	return OrExpr{Exprs: exprs}
}

// NotExpr represents a NOT negation of an expression.
type NotExpr struct {
	baseExpr
	// Inner is the expression to negate.
	Inner Expression
}

// Apply implements the SearchOption interface for NotExpr.
func (n NotExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, n)
}

// Not creates a NOT expression negating the given expression.
func Not(expr Expression) Expression {
	return NotExpr{Inner: expr}
}

// EqExpr is a case-sensitive equality test on a listing field. For
// skills it matches when any skill is equal.
type EqExpr struct {
	baseExpr
	// Field is the name of the listing field to compare.
	Field string
	// Value is the value to compare against.
	Value string
}

// Apply implements the SearchOption interface for EqExpr.
func (e EqExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, e)
}

// Eq creates an equality comparison expression.
func Eq(field, value string) Expression {
	return EqExpr{Field: field, Value: value}
}

// ContainsExpr is a case-insensitive substring test on a listing field.
type ContainsExpr struct {
	baseExpr
	// Field is the name of the listing field to inspect.
	Field string
	// Value is the substring to look for.
	Value string
}

// Apply implements the SearchOption interface for ContainsExpr.
func (c ContainsExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, c)
}

// Contains creates a substring expression.
func Contains(field, value string) Expression {
	return ContainsExpr{Field: field, Value: value}
}

// ExistsExpr matches listings where the field holds a non-empty value.
type ExistsExpr struct {
	baseExpr
	// Field is the name of the field to check for existence.
	Field string
}

// Apply implements the SearchOption interface for ExistsExpr.
func (e ExistsExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, e)
}

// Exists creates a field existence check expression.
func Exists(field string) Expression {
	return ExistsExpr{Field: field}
}
