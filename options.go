package smartsearch

// DefaultMinRelevance is the score a listing must reach to be returned
// when none of its fields matched.
const DefaultMinRelevance = 30.0

// SearchOption represents a search configuration option.
type SearchOption interface {
	Apply(*SearchConfig)
}

// SearchConfig holds all search configuration parameters.
type SearchConfig struct {
	// Filters contains filter expressions to apply. A listing must satisfy
	// every filter to be returned.
	Filters []Expression

	// MinRelevance is the inclusion threshold for listings without any
	// matched field.
	MinRelevance float64

	// Workers is the number of goroutines used to score listings.
	// Values below 2 score sequentially.
	Workers int
}

// NewSearchConfig returns a config holding the defaults with opts applied
// in order.
func NewSearchConfig(opts ...SearchOption) *SearchConfig {
	cfg := &SearchConfig{
		MinRelevance: DefaultMinRelevance,
		Workers:      1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(cfg)
		}
	}
	return cfg
}

// optionFunc is a function that implements SearchOption.
type optionFunc func(*SearchConfig)

// Apply implements the SearchOption interface for optionFunc.
func (f optionFunc) Apply(cfg *SearchConfig) {
	f(cfg)
}

// WithCategory restricts results to listings whose category equals c
// exactly. An empty c leaves the search unfiltered.
func WithCategory(c string) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		if c == "" {
			return
		}
		cfg.Filters = append(cfg.Filters, Eq(FieldCategory, c))
	})
}

// WithLocation restricts results to listings whose location contains loc,
// ignoring case. An empty loc leaves the search unfiltered.
func WithLocation(loc string) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		if loc == "" {
			return
		}
		cfg.Filters = append(cfg.Filters, Contains(FieldLocation, loc))
	})
}

// WithMinRelevance sets the inclusion threshold. See DefaultMinRelevance.
func WithMinRelevance(v float64) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.MinRelevance = v
	})
}

// WithWorkers scores listings on a pool of n workers. Output is identical
// to sequential scoring.
func WithWorkers(n int) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Workers = n
	})
}
