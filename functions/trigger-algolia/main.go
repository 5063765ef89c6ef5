package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/letmevibethatforyou/smartsearch"
	"github.com/letmevibethatforyou/smartsearch/algolia"
	"github.com/letmevibethatforyou/smartsearch/internal/ddb"
	"github.com/urfave/cli/v2"
)

// listingIndex is the part of algolia.Client the handler writes through.
type listingIndex interface {
	SaveListing(ctx context.Context, indexName string, l smartsearch.Listing) error
	DeleteListing(ctx context.Context, indexName string, id string) error
}

type Handler struct {
	indexName string
	index     listingIndex
}

func NewHandler(indexName string, index listingIndex) *Handler {
	return &Handler{
		indexName: indexName,
		index:     index,
	}
}

func (h *Handler) HandleDynamoDBEvent(ctx context.Context, e ddb.DynamoDBEvent) error {
	slog.InfoContext(ctx, "Processing DynamoDB stream records", "record_count", len(e.Records))

	for _, record := range e.Records {
		if err := h.processRecord(ctx, record); err != nil {
			slog.ErrorContext(ctx, "Error processing record", "error", err, "event_id", record.EventID)
			return err
		}
	}

	return nil
}

func (h *Handler) processRecord(ctx context.Context, record ddb.DynamoDBEventRecord) error {
	switch ddb.DynamoDBOperationType(record.EventName) {
	case ddb.DynamoDBOperationTypeInsert, ddb.DynamoDBOperationTypeModify:
		if record.Change.NewImage == nil {
			slog.WarnContext(ctx, "No new image for insert/modify operation, skipping record")
			return nil
		}

		parsed, err := ddb.UnmarshalRecord(record.Change.NewImage)
		if err != nil {
			slog.WarnContext(ctx, "Failed to unmarshal record, skipping", "error", err)
			return nil
		}
		if !parsed.IsListing() {
			slog.DebugContext(ctx, "Ignoring non-listing record", "id", parsed.ID, "kind", parsed.Kind)
			return nil
		}
		if parsed.ID == "" {
			slog.WarnContext(ctx, "Missing ID (pk) in record, skipping record")
			return nil
		}

		listing := parsed.ToListing()
		slog.InfoContext(ctx, "Saving listing to Algolia", "object_id", listing.ID, "index", h.indexName)
		return h.index.SaveListing(ctx, h.indexName, listing)

	case ddb.DynamoDBOperationTypeRemove:
		parsed, err := ddb.UnmarshalRecord(record.Change.Keys)
		if err != nil {
			slog.WarnContext(ctx, "Failed to unmarshal keys for delete operation, skipping", "error", err)
			return nil
		}
		if !parsed.IsListing() || parsed.ID == "" {
			slog.DebugContext(ctx, "Ignoring delete of non-listing record", "id", parsed.ID, "kind", parsed.Kind)
			return nil
		}

		slog.InfoContext(ctx, "Deleting listing from Algolia", "object_id", parsed.ID, "index", h.indexName)
		return h.index.DeleteListing(ctx, h.indexName, parsed.ID)

	default:
		slog.InfoContext(ctx, "Ignoring event type", "event_type", record.EventName)
		return nil
	}
}

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	app := &cli.App{
		Name:  "dynamodb-algolia-sync",
		Usage: "Sync listing records from a DynamoDB stream to Algolia",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "algolia-index",
				Usage:   "Algolia index receiving listings",
				EnvVars: []string{"ALGOLIA_INDEX"},
				Value:   "listings",
			},
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Environment name for AWS Secrets Manager (takes precedence over API key/ID flags)",
				EnvVars: []string{"ENV", "ENVIRONMENT"},
			},
			&cli.StringFlag{
				Name:    "algolia-secret-arn",
				Usage:   "ARN of AWS Secrets Manager secret containing Algolia credentials",
				EnvVars: []string{"ALGOLIA_SECRET_ARN"},
			},
			&cli.StringFlag{
				Name:    "algolia-app-id",
				Usage:   "Algolia application ID",
				EnvVars: []string{"ALGOLIA_APP_ID"},
			},
			&cli.StringFlag{
				Name:    "algolia-api-key",
				Usage:   "Algolia API key",
				EnvVars: []string{"ALGOLIA_API_KEY"},
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	ctx := c.Context
	indexName := c.String("algolia-index")
	env := c.String("env")
	secretArn := c.String("algolia-secret-arn")
	algoliaAppID := c.String("algolia-app-id")
	algoliaAPIKey := c.String("algolia-api-key")

	slog.InfoContext(ctx, "Starting DynamoDB to Algolia sync", "index", indexName, "environment", env)

	var fetchSecrets algolia.FetchSecrets
	switch {
	case env != "" || secretArn != "":
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load AWS config", "error", err)
			return err
		}
		client := secretsmanager.NewFromConfig(cfg)

		if env != "" {
			slog.InfoContext(ctx, "Using AWS Secrets Manager for credentials", "environment", env)
			fetchSecrets = algolia.AWSSecrets(ctx, client, env)
		} else {
			slog.InfoContext(ctx, "Using AWS Secrets Manager for credentials", "secret_arn", secretArn)
			fetchSecrets = algolia.AWSSecretsFromARN(ctx, client, secretArn)
		}
	case algoliaAppID != "" && algoliaAPIKey != "":
		slog.InfoContext(ctx, "Using static credentials from flags")
		fetchSecrets = algolia.StaticSecrets(algoliaAppID, algoliaAPIKey)
	default:
		slog.InfoContext(ctx, "Using environment variables for credentials")
		fetchSecrets = algolia.EnvSecrets()
	}

	handler := NewHandler(indexName, algolia.NewClient(fetchSecrets))

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		slog.InfoContext(ctx, "Running in Lambda environment")
		lambda.Start(handler.HandleDynamoDBEvent)
	} else {
		slog.InfoContext(ctx, "Function cannot run outside of AWS Lambda environment")
	}

	return nil
}
