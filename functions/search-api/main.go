package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/letmevibethatforyou/smartsearch/internal/ddb"
	"github.com/letmevibethatforyou/smartsearch/taxonomy"
	"github.com/urfave/cli/v2"
)

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	app := &cli.App{
		Name:  "search-api",
		Usage: "Serve listing search, suggestions and categories over API Gateway",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "table-name",
				Usage:    "DynamoDB table holding listing records",
				EnvVars:  []string{"TABLE_NAME"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "taxonomy",
				Usage:   "Path to a TOML taxonomy replacing the built-in one",
				EnvVars: []string{"TAXONOMY_FILE"},
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
	tableName := c.String("table-name")

	tax := taxonomy.Default()
	if path := c.String("taxonomy"); path != "" {
		var err error
		if tax, err = taxonomy.LoadFile(path); err != nil {
			slog.ErrorContext(ctx, "Failed to load taxonomy", "error", err, "path", path)
			return err
		}
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load AWS config", "error", err)
		return err
	}

	store := ddb.NewStore(dynamodb.NewFromConfig(cfg), tableName)
	handler := NewHandler(store.Listings, tax)

	slog.InfoContext(ctx, "Starting search API", "table", tableName)

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		lambda.Start(handler.HandleRequest)
	} else {
		slog.InfoContext(ctx, "Function cannot run outside of AWS Lambda environment")
	}

	return nil
}
