package inmemory

import (
	"sort"
	"sync"

	"github.com/letmevibethatforyou/smartsearch"
	"github.com/panjf2000/ants/v2"
)

// Search ranks listings against query. It never fails: empty queries,
// empty collections and queries matching nothing yield a valid, possibly
// empty, result.
//
// With a blank query and no filters every listing is returned in input
// order with MaxScore. Otherwise listings failing a filter are dropped,
// the rest are scored and kept when they reach the minimum relevance or
// matched at least one field, and the survivors are sorted by score,
// highest first, with ties in input order.
func Search(listings []smartsearch.Listing, query string, opts ...smartsearch.SearchOption) []smartsearch.Result {
	return rank(listings, query, smartsearch.NewSearchConfig(opts...))
}

func rank(listings []smartsearch.Listing, query string, cfg *smartsearch.SearchConfig) []smartsearch.Result {
	if isBlank(query) && len(cfg.Filters) == 0 {
		out := make([]smartsearch.Result, len(listings))
		for i, l := range listings {
			out[i] = smartsearch.Result{Listing: l, Score: MaxScore, MatchedFields: []string{}}
		}
		return out
	}

	candidates := make([]smartsearch.Listing, 0, len(listings))
	for _, l := range listings {
		if matchesFilters(l, cfg.Filters) {
			candidates = append(candidates, l)
		}
	}

	scored := scoreAll(candidates, query, cfg.Workers)

	results := make([]smartsearch.Result, 0, len(scored))
	for _, r := range scored {
		if r.Score >= cfg.MinRelevance || len(r.MatchedFields) > 0 {
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// parallelMinListings is the collection size below which a worker pool
// costs more than it saves.
const parallelMinListings = 256

// scoreAll scores every listing, in order. With more than one worker the
// work is split into contiguous chunks run on an ants pool; each chunk
// writes its own slots so no locking is needed.
func scoreAll(listings []smartsearch.Listing, query string, workers int) []smartsearch.Result {
	out := make([]smartsearch.Result, len(listings))
	if workers < 2 || len(listings) < parallelMinListings {
		scoreRange(listings, query, out, 0, len(listings))
		return out
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		scoreRange(listings, query, out, 0, len(listings))
		return out
	}
	defer pool.Release()

	chunk := (len(listings) + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < len(listings); start += chunk {
		end := min(start+chunk, len(listings))
		wg.Add(1)
		task := func() {
			defer wg.Done()
			scoreRange(listings, query, out, start, end)
		}
		if err := pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()
	return out
}

func scoreRange(listings []smartsearch.Listing, query string, out []smartsearch.Result, start, end int) {
	for i := start; i < end; i++ {
		score, matched := Score(listings[i], query)
		out[i] = smartsearch.Result{
			Listing:       listings[i],
			Score:         score,
			MatchedFields: matched,
		}
	}
}
