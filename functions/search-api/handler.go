package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/letmevibethatforyou/smartsearch"
	"github.com/letmevibethatforyou/smartsearch/inmemory"
	"github.com/letmevibethatforyou/smartsearch/intent"
	"github.com/letmevibethatforyou/smartsearch/suggest"
	"github.com/letmevibethatforyou/smartsearch/taxonomy"
)

// LoadListings returns the full listing collection.
type LoadListings func(ctx context.Context) ([]smartsearch.Listing, error)

// Handler serves search, suggestion and category requests from API Gateway.
// Listings are loaded on the first request that needs them and kept for
// the life of the execution environment.
type Handler struct {
	load      LoadListings
	tax       *taxonomy.Taxonomy
	detector  *intent.Detector
	generator *suggest.Generator

	mu       sync.Mutex
	searcher *inmemory.Searcher
}

func NewHandler(load LoadListings, tax *taxonomy.Taxonomy) *Handler {
	return &Handler{
		load:      load,
		tax:       tax,
		detector:  intent.New(tax),
		generator: suggest.New(tax),
	}
}

type searchResponse struct {
	*smartsearch.Results
	DetectedCategories []intent.CategoryMatch `json:"detected_categories"`
}

type suggestResponse struct {
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
}

type categoriesResponse struct {
	Categories []taxonomy.Entry `json:"categories"`
}

type detectResponse struct {
	Query   string                 `json:"query"`
	Matches []intent.CategoryMatch `json:"matches"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleRequest routes on the last path segment.
func (h *Handler) HandleRequest(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := req.RequestContext.HTTP.Method
	if method != "" && method != http.MethodGet {
		return respond(http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"}), nil
	}

	path := strings.TrimSuffix(req.RawPath, "/")
	params := req.QueryStringParameters

	switch {
	case strings.HasSuffix(path, "/search"):
		return h.search(ctx, params), nil
	case strings.HasSuffix(path, "/suggest"):
		return h.suggest(params), nil
	case strings.HasSuffix(path, "/detect"):
		q := params["q"]
		return respond(http.StatusOK, detectResponse{Query: q, Matches: orEmpty(h.detector.Detect(q))}), nil
	case strings.HasSuffix(path, "/categories"):
		return respond(http.StatusOK, categoriesResponse{Categories: h.tax.Entries()}), nil
	default:
		return respond(http.StatusNotFound, errorResponse{Error: "not found"}), nil
	}
}

func (h *Handler) search(ctx context.Context, params map[string]string) events.APIGatewayV2HTTPResponse {
	query := params["q"]

	opts := []smartsearch.SearchOption{
		smartsearch.WithCategory(params["category"]),
		smartsearch.WithLocation(params["location"]),
	}
	if raw := params["min_relevance"]; raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return respond(http.StatusBadRequest, errorResponse{Error: "min_relevance must be a non-negative number"})
		}
		opts = append(opts, smartsearch.WithMinRelevance(v))
	}

	searcher, err := h.listings(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load listings", "error", err)
		return respond(http.StatusServiceUnavailable, errorResponse{Error: "listings unavailable"})
	}

	results, err := searcher.Search(ctx, query, opts...)
	if err != nil {
		slog.ErrorContext(ctx, "search failed", "error", err)
		return respond(http.StatusInternalServerError, errorResponse{Error: "search failed"})
	}

	return respond(http.StatusOK, searchResponse{
		Results:            results,
		DetectedCategories: orEmpty(h.detector.Detect(query)),
	})
}

func (h *Handler) suggest(params map[string]string) events.APIGatewayV2HTTPResponse {
	limit := suggest.DefaultLimit
	if raw := params["limit"]; raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return respond(http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
		}
		limit = v
	}

	suggestions := h.generator.Generate(params["q"], limit)
	if suggestions == nil {
		suggestions = []string{}
	}
	return respond(http.StatusOK, suggestResponse{Query: params["q"], Suggestions: suggestions})
}

// listings returns the loaded store, loading it on first use. A failed
// load is retried by the next request.
func (h *Handler) listings(ctx context.Context) (*inmemory.Searcher, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.searcher != nil {
		return h.searcher, nil
	}

	listings, err := h.load(ctx)
	if err != nil {
		return nil, err
	}

	s := inmemory.New()
	if err := s.AddListings(listings...); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "loaded listings", "count", s.Size())

	h.searcher = s
	return s, nil
}

func orEmpty(matches []intent.CategoryMatch) []intent.CategoryMatch {
	if matches == nil {
		return []intent.CategoryMatch{}
	}
	return matches
}

func respond(status int, body any) events.APIGatewayV2HTTPResponse {
	data, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{"error":"failed to encode response"}`)
	}

	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(data),
	}
}
