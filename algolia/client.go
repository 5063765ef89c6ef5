// Package algolia keeps an Algolia index in step with the listing store and
// reads listings back out of it. Credentials are fetched lazily on first use.
package algolia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/smartsearch"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultPageSize is the number of records fetched per browse batch by Listings.
const DefaultPageSize = 1000

// index is the subset of *search.Index used by Client.
type index interface {
	SaveObject(object interface{}, opts ...interface{}) (search.SaveObjectRes, error)
	SaveObjects(objects interface{}, opts ...interface{}) (search.GroupBatchRes, error)
	DeleteObject(objectID string, opts ...interface{}) (search.DeleteTaskRes, error)
	BrowseObjects(opts ...interface{}) (objectIterator, error)
}

// objectIterator is the subset of *search.ObjectIterator used by Listings.
// Next decodes the following record into opts[0] and returns io.EOF once
// the index is exhausted.
type objectIterator interface {
	Next(opts ...interface{}) (interface{}, error)
}

// searchIndex adapts *search.Index to index.
type searchIndex struct {
	*search.Index
}

func (i searchIndex) BrowseObjects(opts ...interface{}) (objectIterator, error) {
	it, err := i.Index.BrowseObjects(opts...)
	if err != nil {
		return nil, err
	}
	return it, nil
}

// Client writes listings to and reads listings from Algolia indices.
type Client struct {
	getIndex func(name string) (index, error)
	pageSize int
	tracer   trace.Tracer
}

// NewClient creates a client. fetchSecrets is not called until the first
// operation; a failure is remembered and returned by every later call.
func NewClient(fetchSecrets FetchSecrets) *Client {
	getClient := sync.OnceValues(func() (*search.Client, error) {
		secrets, err := fetchSecrets()
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch secrets")
		}
		if err := secrets.validate(); err != nil {
			return nil, err
		}
		return search.NewClient(secrets.AppID, secrets.WriteApiKey), nil
	})

	return &Client{
		getIndex: func(name string) (index, error) {
			client, err := getClient()
			if err != nil {
				return nil, err
			}
			return searchIndex{client.InitIndex(name)}, nil
		},
		pageSize: DefaultPageSize,
		tracer:   otel.Tracer("smartsearch-algolia"),
	}
}

// listingObject is the shape a listing takes in an Algolia index.
type listingObject struct {
	ObjectID string `json:"objectID"`
	smartsearch.Listing
}

func toObject(l smartsearch.Listing) listingObject {
	return listingObject{ObjectID: l.ID, Listing: l}
}

// SaveListing creates or replaces the listing's object. The listing ID is
// the objectID.
func (c *Client) SaveListing(ctx context.Context, indexName string, l smartsearch.Listing) error {
	ctx, span := c.tracer.Start(ctx, "algolia.save_listing",
		trace.WithAttributes(
			attribute.String("algolia.index_name", indexName),
			attribute.String("algolia.object_id", l.ID),
		),
	)
	defer span.End()

	if err := l.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid listing")
		return err
	}

	idx, err := c.getIndex(indexName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return err
	}

	if _, err := idx.SaveObject(toObject(l)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("failed to save listing to index %s", indexName))
		return errors.Wrapf(err, "failed to save listing to Algolia index %s", indexName)
	}

	span.SetStatus(codes.Ok, "listing saved")
	return nil
}

// DeleteListing removes the object with the given listing ID.
func (c *Client) DeleteListing(ctx context.Context, indexName string, id string) error {
	ctx, span := c.tracer.Start(ctx, "algolia.delete_listing",
		trace.WithAttributes(
			attribute.String("algolia.index_name", indexName),
			attribute.String("algolia.object_id", id),
		),
	)
	defer span.End()

	idx, err := c.getIndex(indexName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return err
	}

	if _, err := idx.DeleteObject(id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("failed to delete listing from index %s", indexName))
		return errors.Wrapf(err, "failed to delete listing from Algolia index %s", indexName)
	}

	span.SetStatus(codes.Ok, "listing deleted")
	return nil
}

// BatchSaveListings saves listings in one batch. Nothing is sent when any
// listing is invalid.
func (c *Client) BatchSaveListings(ctx context.Context, indexName string, listings []smartsearch.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	ctx, span := c.tracer.Start(ctx, "algolia.batch_save_listings",
		trace.WithAttributes(
			attribute.String("algolia.index_name", indexName),
			attribute.Int("algolia.object_count", len(listings)),
		),
	)
	defer span.End()

	objects := make([]listingObject, len(listings))
	for i, l := range listings {
		if err := l.Validate(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "invalid listing")
			return errors.Wrapf(err, "listing %d", i)
		}
		objects[i] = toObject(l)
	}

	idx, err := c.getIndex(indexName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return err
	}

	if _, err := idx.SaveObjects(objects); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("failed to batch save %d listings to index %s", len(listings), indexName))
		return errors.Wrapf(err, "failed to batch save listings to Algolia index %s", indexName)
	}

	span.SetStatus(codes.Ok, fmt.Sprintf("batch saved %d listings", len(listings)))
	return nil
}

// Listings browses the whole index and returns every listing in it, in
// Algolia's order. Browse is not subject to the index's pagination limit.
// Extra options such as opt.Filters are passed to the browse request.
func (c *Client) Listings(ctx context.Context, indexName string, browseOpts ...interface{}) ([]smartsearch.Listing, error) {
	ctx, span := c.tracer.Start(ctx, "algolia.listings",
		trace.WithAttributes(attribute.String("algolia.index_name", indexName)),
	)
	defer span.End()

	idx, err := c.getIndex(indexName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return nil, errors.WithSecondaryError(smartsearch.ErrBackendUnavailable, err)
	}

	browseFailed := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, "browse failed")
		return errors.WithSecondaryError(
			smartsearch.ErrBackendUnavailable,
			errors.Wrapf(err, "Algolia browse on %s failed", indexName),
		)
	}

	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	params := append([]interface{}{opt.HitsPerPage(c.pageSize)}, browseOpts...)
	it, err := idx.BrowseObjects(params...)
	if err != nil {
		return nil, browseFailed(err)
	}

	var listings []smartsearch.Listing
	for {
		if err := ctxErr(ctx); err != nil {
			return nil, err
		}

		var hit map[string]interface{}
		if _, err := it.Next(&hit); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, browseFailed(err)
		}

		l, err := hitToListing(hit)
		if err != nil {
			span.RecordError(err)
			continue
		}
		listings = append(listings, l)
	}

	span.SetAttributes(attribute.Int("algolia.listing_count", len(listings)))
	span.SetStatus(codes.Ok, "listings fetched")
	return listings, nil
}

func ctxErr(ctx context.Context) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return smartsearch.ErrTimeout
	case ctx.Err() != nil:
		return smartsearch.ErrCanceled
	}
	return nil
}

// hitToListing decodes a browsed record. objectID becomes the listing ID.
func hitToListing(hit map[string]interface{}) (smartsearch.Listing, error) {
	data, err := json.Marshal(hit)
	if err != nil {
		return smartsearch.Listing{}, errors.Wrap(err, "failed to encode hit")
	}

	var obj listingObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return smartsearch.Listing{}, errors.Wrap(err, "failed to decode hit")
	}

	l := obj.Listing
	if obj.ObjectID != "" {
		l.ID = obj.ObjectID
	}
	if err := l.Validate(); err != nil {
		return smartsearch.Listing{}, err
	}
	return l, nil
}
