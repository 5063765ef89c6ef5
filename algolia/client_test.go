package algolia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/smartsearch"
	"go.opentelemetry.io/otel"
)

// mockIndex records writes and serves BrowseObjects from fixed batches.
type mockIndex struct {
	pages   [][]map[string]interface{}
	err     error
	nextErr error

	saved      []interface{}
	deleted    []string
	browseOpts [][]interface{}
	iterators  []*mockIterator
}

func (m *mockIndex) SaveObject(object interface{}, opts ...interface{}) (search.SaveObjectRes, error) {
	if m.err != nil {
		return search.SaveObjectRes{}, m.err
	}
	m.saved = append(m.saved, object)
	return search.SaveObjectRes{}, nil
}

func (m *mockIndex) SaveObjects(objects interface{}, opts ...interface{}) (search.GroupBatchRes, error) {
	if m.err != nil {
		return search.GroupBatchRes{}, m.err
	}
	m.saved = append(m.saved, objects)
	return search.GroupBatchRes{}, nil
}

func (m *mockIndex) DeleteObject(objectID string, opts ...interface{}) (search.DeleteTaskRes, error) {
	if m.err != nil {
		return search.DeleteTaskRes{}, m.err
	}
	m.deleted = append(m.deleted, objectID)
	return search.DeleteTaskRes{}, nil
}

func (m *mockIndex) BrowseObjects(opts ...interface{}) (objectIterator, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.browseOpts = append(m.browseOpts, opts)
	it := &mockIterator{pages: m.pages, err: m.nextErr}
	m.iterators = append(m.iterators, it)
	return it, nil
}

// mockIterator walks pages one batch at a time, the way a browse cursor
// does, and decodes each record into the target passed to Next.
type mockIterator struct {
	pages [][]map[string]interface{}
	err   error

	batches int
	page    int
	pos     int
}

func (it *mockIterator) Next(opts ...interface{}) (interface{}, error) {
	if it.err != nil {
		return nil, it.err
	}
	for it.page < len(it.pages) && it.pos >= len(it.pages[it.page]) {
		it.page++
		it.pos = 0
	}
	if it.page >= len(it.pages) {
		return nil, io.EOF
	}
	if it.pos == 0 {
		it.batches++
	}

	hit := it.pages[it.page][it.pos]
	it.pos++
	if len(opts) > 0 {
		data, err := json.Marshal(hit)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, opts[0]); err != nil {
			return nil, err
		}
	}
	return hit, nil
}

func newTestClient(idx index) *Client {
	return &Client{
		getIndex: func(string) (index, error) { return idx, nil },
		pageSize: 2,
		tracer:   otel.Tracer("test"),
	}
}

func toJSONMap(t *testing.T, v interface{}) map[string]interface{} {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestNewClientLazySecrets(t *testing.T) {
	calls := 0
	client := NewClient(func() (Secrets, error) {
		calls++
		return Secrets{}, errors.New("no credentials")
	})

	if calls != 0 {
		t.Fatalf("Expected secrets not to be fetched at construction, got %d calls", calls)
	}

	for i := 0; i < 2; i++ {
		err := client.DeleteListing(context.Background(), "listings", "1")
		if err == nil {
			t.Fatal("Expected error from failed secrets fetch")
		}
	}
	if calls != 1 {
		t.Errorf("Expected secrets fetched once, got %d", calls)
	}
}

func TestNewClientRejectsIncompleteSecrets(t *testing.T) {
	tests := map[string]Secrets{
		"missing_app_id":  {WriteApiKey: "key"},
		"missing_api_key": {AppID: "app"},
	}

	for name, secrets := range tests {
		t.Run(name, func(t *testing.T) {
			client := NewClient(StaticSecrets(secrets.AppID, secrets.WriteApiKey))
			if _, err := client.Listings(context.Background(), "listings"); !errors.Is(err, smartsearch.ErrBackendUnavailable) {
				t.Errorf("Expected ErrBackendUnavailable, got %v", err)
			}
		})
	}
}

func TestSaveListing(t *testing.T) {
	idx := &mockIndex{}
	client := newTestClient(idx)

	l := smartsearch.Listing{ID: "a1", Title: "Chef", Skills: []string{"grill"}}
	if err := client.SaveListing(context.Background(), "listings", l); err != nil {
		t.Fatalf("SaveListing failed: %v", err)
	}

	if len(idx.saved) != 1 {
		t.Fatalf("Expected 1 save, got %d", len(idx.saved))
	}
	obj := toJSONMap(t, idx.saved[0])
	if obj["objectID"] != "a1" || obj["id"] != "a1" || obj["title"] != "Chef" {
		t.Errorf("Unexpected object: %v", obj)
	}

	if err := client.SaveListing(context.Background(), "listings", smartsearch.Listing{}); !errors.Is(err, smartsearch.ErrInvalidListing) {
		t.Errorf("Expected ErrInvalidListing, got %v", err)
	}
	if len(idx.saved) != 1 {
		t.Errorf("Expected invalid listing not to be sent")
	}
}

func TestSaveListingError(t *testing.T) {
	client := newTestClient(&mockIndex{err: errors.New("unreachable")})

	err := client.SaveListing(context.Background(), "listings", smartsearch.Listing{ID: "a1"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !contains(err.Error(), "failed to save listing to Algolia index listings") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestDeleteListing(t *testing.T) {
	idx := &mockIndex{}

	if err := newTestClient(idx).DeleteListing(context.Background(), "listings", "gone"); err != nil {
		t.Fatalf("DeleteListing failed: %v", err)
	}
	if len(idx.deleted) != 1 || idx.deleted[0] != "gone" {
		t.Errorf("Expected delete of 'gone', got %v", idx.deleted)
	}
}

func TestBatchSaveListings(t *testing.T) {
	idx := &mockIndex{}
	client := newTestClient(idx)

	if err := client.BatchSaveListings(context.Background(), "listings", nil); err != nil {
		t.Fatalf("Expected empty batch to succeed, got %v", err)
	}
	if len(idx.saved) != 0 {
		t.Fatalf("Expected empty batch not to be sent")
	}

	bad := []smartsearch.Listing{{ID: "1"}, {ID: ""}}
	if err := client.BatchSaveListings(context.Background(), "listings", bad); !errors.Is(err, smartsearch.ErrInvalidListing) {
		t.Errorf("Expected ErrInvalidListing, got %v", err)
	}
	if len(idx.saved) != 0 {
		t.Fatalf("Expected batch with an invalid listing not to be sent")
	}

	good := []smartsearch.Listing{{ID: "1", Title: "Chef"}, {ID: "2", Title: "Nurse"}}
	if err := client.BatchSaveListings(context.Background(), "listings", good); err != nil {
		t.Fatalf("BatchSaveListings failed: %v", err)
	}
	objects, ok := idx.saved[0].([]listingObject)
	if !ok || len(objects) != 2 {
		t.Fatalf("Expected 2 listing objects, got %#v", idx.saved[0])
	}
	if objects[1].ObjectID != "2" {
		t.Errorf("Expected objectID 2, got %s", objects[1].ObjectID)
	}
}

func TestListings(t *testing.T) {
	idx := &mockIndex{
		pages: [][]map[string]interface{}{
			{
				{"objectID": "1", "title": "Chef", "category": "Hospitality & Tourism"},
				{"objectID": "2", "id": "stale", "title": "Plumber", "skills": []interface{}{"pipes"}},
			},
			{
				{"title": "No ID"},
				{"objectID": "3", "title": "Nurse", "location": "Freeport"},
			},
		},
	}

	listings, err := newTestClient(idx).Listings(context.Background(), "listings")
	if err != nil {
		t.Fatalf("Listings failed: %v", err)
	}

	if len(idx.browseOpts) != 1 {
		t.Errorf("Expected a single browse request, got %d", len(idx.browseOpts))
	}
	if n := idx.iterators[0].batches; n != 2 {
		t.Errorf("Expected 2 browse batches, got %d", n)
	}

	want := []string{"1", "2", "3"}
	if len(listings) != len(want) {
		t.Fatalf("Expected %d listings, got %d", len(want), len(listings))
	}
	for i, id := range want {
		if listings[i].ID != id {
			t.Errorf("At %d: expected ID %s, got %s", i, id, listings[i].ID)
		}
	}
	if len(listings[1].Skills) != 1 || listings[1].Skills[0] != "pipes" {
		t.Errorf("Skills mismatch: %v", listings[1].Skills)
	}
	if listings[2].Location != "Freeport" {
		t.Errorf("Location mismatch: %s", listings[2].Location)
	}
}

func TestListingsEmptyIndex(t *testing.T) {
	idx := &mockIndex{}

	listings, err := newTestClient(idx).Listings(context.Background(), "listings")
	if err != nil {
		t.Fatalf("Listings failed: %v", err)
	}
	if len(listings) != 0 {
		t.Errorf("Expected no listings, got %d", len(listings))
	}
	if len(idx.browseOpts) != 1 {
		t.Errorf("Expected a single browse request, got %d", len(idx.browseOpts))
	}
}

func TestListingsBrowsesPastPaginationLimit(t *testing.T) {
	// Five batches of three records each. A search capped at ten hits
	// would stop short; browsing must return all fifteen.
	var pages [][]map[string]interface{}
	for b := range 5 {
		var batch []map[string]interface{}
		for i := range 3 {
			id := fmt.Sprintf("%d", b*3+i+1)
			batch = append(batch, map[string]interface{}{"objectID": id, "title": "Listing " + id})
		}
		pages = append(pages, batch)
	}
	idx := &mockIndex{pages: pages}

	listings, err := newTestClient(idx).Listings(context.Background(), "listings")
	if err != nil {
		t.Fatalf("Listings failed: %v", err)
	}
	if len(listings) != 15 {
		t.Fatalf("Expected 15 listings, got %d", len(listings))
	}
	if listings[0].ID != "1" || listings[14].ID != "15" {
		t.Errorf("Unexpected order: first %s, last %s", listings[0].ID, listings[14].ID)
	}
	if n := idx.iterators[0].batches; n != 5 {
		t.Errorf("Expected 5 browse batches, got %d", n)
	}

	opts := idx.browseOpts[0]
	if len(opts) != 1 {
		t.Fatalf("Expected only the batch size option, got %d", len(opts))
	}
	if got, ok := opts[0].(*opt.HitsPerPageOption); !ok || got.Get() != 2 {
		t.Errorf("Expected hitsPerPage 2, got %#v", opts[0])
	}
}

func TestListingsErrors(t *testing.T) {
	client := newTestClient(&mockIndex{err: errors.New("boom")})
	if _, err := client.Listings(context.Background(), "listings"); !errors.Is(err, smartsearch.ErrBackendUnavailable) {
		t.Errorf("Expected ErrBackendUnavailable, got %v", err)
	}

	cursorErr := errors.New("cursor expired")
	idx := &mockIndex{pages: [][]map[string]interface{}{{{"objectID": "1"}}}, nextErr: cursorErr}
	_, err := newTestClient(idx).Listings(context.Background(), "listings")
	if !errors.Is(err, smartsearch.ErrBackendUnavailable) {
		t.Errorf("Expected ErrBackendUnavailable, got %v", err)
	}
	if err == nil || !contains(fmt.Sprintf("%+v", err), "cursor expired") {
		t.Errorf("Expected cursor error in details, got %+v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestClient(&mockIndex{}).Listings(ctx, "listings"); !errors.Is(err, smartsearch.ErrCanceled) {
		t.Errorf("Expected ErrCanceled, got %v", err)
	}

	ctx, cancel = context.WithTimeout(context.Background(), 0)
	defer cancel()
	if _, err := newTestClient(&mockIndex{}).Listings(ctx, "listings"); !errors.Is(err, smartsearch.ErrTimeout) {
		t.Errorf("Expected ErrTimeout, got %v", err)
	}
}

// contains reports whether substr is within s.
func contains(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
