package ddb

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/smartsearch"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Client is the subset of the DynamoDB API used by Store.
type Client interface {
	dynamodb.ScanAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Store reads and writes listing records in one table.
type Store struct {
	client    Client
	tableName string
	logger    *slog.Logger
	tracer    trace.Tracer
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a store over tableName.
func NewStore(client Client, tableName string, opts ...StoreOption) *Store {
	s := &Store{
		client:    client,
		tableName: tableName,
		logger:    slog.Default(),
		tracer:    otel.Tracer("smartsearch-ddb"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Listings scans the whole table and returns every listing record in scan
// order. Items of other kinds are skipped.
func (s *Store) Listings(ctx context.Context) ([]smartsearch.Listing, error) {
	ctx, span := s.tracer.Start(ctx, "ddb.listings",
		trace.WithAttributes(attribute.String("ddb.table", s.tableName)),
	)
	defer span.End()

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	})

	var (
		listings []smartsearch.Listing
		pages    int
		skipped  int
	)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "scan failed")
			return nil, errors.Mark(errors.Wrapf(err, "scan %s", s.tableName), smartsearch.ErrBackendUnavailable)
		}
		pages++

		for _, item := range page.Items {
			record, err := UnmarshalRecord(item)
			if err != nil || !record.IsListing() || record.ID == "" {
				skipped++
				continue
			}
			listings = append(listings, record.ToListing())
		}
	}

	span.SetAttributes(
		attribute.Int("ddb.pages", pages),
		attribute.Int("ddb.listing_count", len(listings)),
	)
	s.logger.DebugContext(ctx, "loaded listings from DynamoDB",
		"table", s.tableName,
		"listings", len(listings),
		"skipped", skipped,
		"pages", pages,
	)

	return listings, nil
}

// PutListing writes a listing record, replacing any existing one.
func (s *Store) PutListing(ctx context.Context, l smartsearch.Listing) error {
	if err := l.Validate(); err != nil {
		return err
	}

	item, err := MarshalRecord(NewRecord(l))
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to put listing %s", l.ID)
	}
	return nil
}

// DeleteListing removes a listing record by ID.
func (s *Store) DeleteListing(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: id},
			"sk": &types.AttributeValueMemberS{Value: ListingKind},
		},
	})
	if err != nil {
		return errors.Wrapf(err, "failed to delete listing %s", id)
	}
	return nil
}
