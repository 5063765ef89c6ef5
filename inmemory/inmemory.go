// Package inmemory implements relevance scoring and ranking of listings held
// in memory. Search ranks a caller-supplied collection; Searcher keeps a
// collection and serves it through the smartsearch.Searcher interface.
package inmemory

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/smartsearch"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Searcher implements the smartsearch.Searcher interface over a listing
// collection kept in memory. Insertion order is preserved and acts as the
// tie-breaker between equally relevant listings.
type Searcher struct {
	mu       sync.RWMutex
	listings []smartsearch.Listing
	idIndex  map[string]int // maps listing ID to index in listings slice
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// New creates a new in-memory searcher.
// The searcher is ready to use and is safe for concurrent operations.
func New(opts ...Option) *Searcher {
	s := &Searcher{
		listings: make([]smartsearch.Listing, 0),
		idIndex:  make(map[string]int),
		logger:   slog.Default(),
		tracer:   otel.Tracer("smartsearch-inmemory"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddListing adds a listing to the store.
// If a listing with the same ID already exists, it will be replaced in place.
func (s *Searcher) AddListing(l smartsearch.Listing) error {
	if err := l.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, exists := s.idIndex[l.ID]; exists {
		s.listings[idx] = l
	} else {
		s.idIndex[l.ID] = len(s.listings)
		s.listings = append(s.listings, l)
	}
	return nil
}

// AddListings adds listings in order, stopping at the first invalid one.
func (s *Searcher) AddListings(listings ...smartsearch.Listing) error {
	for i, l := range listings {
		if err := s.AddListing(l); err != nil {
			return errors.Wrapf(err, "listing %d", i)
		}
	}
	return nil
}

// AddJSON adds a listing encoded as a JSON object.
func (s *Searcher) AddJSON(data []byte) error {
	var l smartsearch.Listing
	if err := json.Unmarshal(data, &l); err != nil {
		return errors.Wrap(err, "failed to unmarshal JSON")
	}
	return s.AddListing(l)
}

// RemoveListing removes a listing by ID.
// Returns true if the listing was found and removed.
func (s *Searcher) RemoveListing(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, exists := s.idIndex[id]
	if !exists {
		return false
	}

	s.listings = append(s.listings[:idx], s.listings[idx+1:]...)

	delete(s.idIndex, id)
	for i := idx; i < len(s.listings); i++ {
		s.idIndex[s.listings[i].ID] = i
	}

	return true
}

// Clear removes all listings from the store.
func (s *Searcher) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listings = make([]smartsearch.Listing, 0)
	s.idIndex = make(map[string]int)
}

// Size returns the number of listings currently stored.
func (s *Searcher) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listings)
}

// Listings returns a snapshot of the stored listings in insertion order.
func (s *Searcher) Listings() []smartsearch.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]smartsearch.Listing, len(s.listings))
	copy(out, s.listings)
	return out
}

// Search implements the smartsearch.Searcher interface.
// Ranking runs on a snapshot, so writers are not blocked while it runs.
func (s *Searcher) Search(ctx context.Context, query string, opts ...smartsearch.SearchOption) (*smartsearch.Results, error) {
	startTime := time.Now()

	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	cfg := smartsearch.NewSearchConfig(opts...)
	listings := s.Listings()

	ctx, span := s.tracer.Start(ctx, "inmemory.search",
		trace.WithAttributes(
			attribute.Int("smartsearch.query_length", len(query)),
			attribute.Int("smartsearch.listing_count", len(listings)),
			attribute.Int("smartsearch.filter_count", len(cfg.Filters)),
			attribute.Float64("smartsearch.min_relevance", cfg.MinRelevance),
		),
	)
	defer span.End()

	items := rank(listings, query, cfg)

	results := smartsearch.NewResults(query, items)
	results.Took = time.Since(startTime).Milliseconds()

	span.SetAttributes(attribute.Int("smartsearch.result_count", len(items)))
	s.logger.DebugContext(ctx, "search completed",
		"query", query,
		"listings", len(listings),
		"results", len(items),
		"max_score", results.MaxScore,
		"took_ms", results.Took,
	)

	return results, nil
}

// ctxErr maps a finished context to the package's error values.
func ctxErr(ctx context.Context) error {
	switch err := ctx.Err(); {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return smartsearch.ErrTimeout
	default:
		return smartsearch.ErrCanceled
	}
}
