// Package ddb stores listings in a single DynamoDB table and decodes the
// stream events that table emits.
//
// Items are keyed by pk (the listing ID) and sk (the record kind). Listing
// records carry sk "listing" and the listing itself under "object"; other
// kinds may share the table and are ignored by this package.
package ddb

import (
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/smartsearch"
)

// ListingKind is the sk value of listing records.
const ListingKind = "listing"

// DynamoDBEvent represents a DynamoDB stream event
type DynamoDBEvent struct {
	Records []DynamoDBEventRecord `json:"Records"`
}

// DynamoDBEventRecord represents a single DynamoDB stream record
type DynamoDBEventRecord struct {
	AWSRegion      string               `json:"awsRegion"`
	Change         DynamoDBStreamRecord `json:"dynamodb"`
	EventID        string               `json:"eventID"`
	EventName      string               `json:"eventName"`
	EventSource    string               `json:"eventSource"`
	EventVersion   string               `json:"eventVersion"`
	EventSourceArn string               `json:"eventSourceARN"`
}

// DynamoDBStreamRecord represents the DynamoDB stream data. Images are
// decoded from DynamoDB JSON by UnmarshalJSON.
type DynamoDBStreamRecord struct {
	ApproximateCreationDateTime int64                           `json:"ApproximateCreationDateTime,omitempty"`
	Keys                        map[string]types.AttributeValue `json:"Keys,omitempty"`
	NewImage                    map[string]types.AttributeValue `json:"NewImage,omitempty"`
	OldImage                    map[string]types.AttributeValue `json:"OldImage,omitempty"`
	SequenceNumber              string                          `json:"SequenceNumber"`
	SizeBytes                   int64                           `json:"SizeBytes"`
	StreamViewType              string                          `json:"StreamViewType"`
}

// DynamoDBOperationType represents the type of DynamoDB operation
type DynamoDBOperationType string

const (
	DynamoDBOperationTypeInsert DynamoDBOperationType = "INSERT"
	DynamoDBOperationTypeModify DynamoDBOperationType = "MODIFY"
	DynamoDBOperationTypeRemove DynamoDBOperationType = "REMOVE"
)

// Record is a listing item as stored in the table.
type Record struct {
	ID      string              `dynamodbav:"pk"`
	Kind    string              `dynamodbav:"sk"`
	Listing smartsearch.Listing `dynamodbav:"object"`
}

// NewRecord wraps a listing for storage.
func NewRecord(l smartsearch.Listing) Record {
	return Record{ID: l.ID, Kind: ListingKind, Listing: l}
}

// IsListing reports whether the record holds a listing.
func (r Record) IsListing() bool {
	return r.Kind == ListingKind
}

// ToListing returns the stored listing. The pk is authoritative for the
// listing ID.
func (r Record) ToListing() smartsearch.Listing {
	l := r.Listing
	l.ID = r.ID
	return l
}

// UnmarshalRecord converts a DynamoDB item or stream image into a Record.
func UnmarshalRecord(item map[string]types.AttributeValue) (Record, error) {
	var record Record
	if err := attributevalue.UnmarshalMap(item, &record); err != nil {
		return Record{}, errors.Wrap(err, "failed to unmarshal record")
	}
	return record, nil
}

// MarshalRecord converts a Record into a DynamoDB item.
func MarshalRecord(record Record) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal record")
	}
	return item, nil
}
