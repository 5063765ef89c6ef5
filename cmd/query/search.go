package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/letmevibethatforyou/smartsearch"
	"github.com/letmevibethatforyou/smartsearch/algolia"
	"github.com/letmevibethatforyou/smartsearch/inmemory"
	"github.com/letmevibethatforyou/smartsearch/intent"
	"github.com/letmevibethatforyou/smartsearch/internal/ddb"
	"github.com/urfave/cli/v2"
)

const defaultTimeout = 30 * time.Second

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Rank listings against a query and print the results as JSON",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "JSON file holding an array of listings; - reads stdin",
			},
			&cli.StringFlag{
				Name:    "table",
				Aliases: []string{"t"},
				Usage:   "DynamoDB table holding listing records",
				EnvVars: []string{"TABLE_NAME"},
			},
			&cli.StringFlag{
				Name:    "algolia-index",
				Usage:   "Algolia index holding listings",
				EnvVars: []string{"ALGOLIA_INDEX"},
			},
			&cli.StringFlag{
				Name:    "algolia-secret-arn",
				Usage:   "ARN of AWS Secrets Manager secret containing Algolia credentials",
				EnvVars: []string{"ALGOLIA_SECRET_ARN"},
			},
			&cli.BoolFlag{
				Name:  "pushdown",
				Usage: "Send equality filters to Algolia before ranking",
			},
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Query string to search for; positional arg is a fallback",
			},
			&cli.StringFlag{
				Name:    "category",
				Aliases: []string{"c"},
				Usage:   "Only listings whose category equals this name",
			},
			&cli.StringFlag{
				Name:    "location",
				Aliases: []string{"l"},
				Usage:   "Only listings whose location contains this text",
			},
			&cli.Float64Flag{
				Name:  "min-relevance",
				Usage: "Minimum score for listings that matched no field",
				Value: smartsearch.DefaultMinRelevance,
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of goroutines used for scoring",
				Value: 1,
			},
			&cli.BoolFlag{
				Name:  "auto-category",
				Usage: "Filter by the best detected category when --category is not set",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout for loading and ranking",
				Value: defaultTimeout,
			},
		},
		Action: runSearch,
	}
}

func runSearch(c *cli.Context) error {
	query := queryArg(c)

	timeout := c.Duration("timeout")
	if timeout <= 0 {
		slog.WarnContext(c.Context, "timeout must be positive; using default", "timeout", timeout, "default", defaultTimeout)
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(c.Context, timeout)
	defer cancel()

	category := strings.TrimSpace(c.String("category"))
	if category == "" && c.Bool("auto-category") && query != "" {
		tax, err := loadTaxonomy(c)
		if err != nil {
			return err
		}
		if match, ok := intent.New(tax).Best(query); ok {
			slog.InfoContext(ctx, "detected category", "category", match.Category, "confidence", match.Confidence)
			category = match.Category
		}
	}

	opts := []smartsearch.SearchOption{
		smartsearch.WithCategory(category),
		smartsearch.WithLocation(strings.TrimSpace(c.String("location"))),
		smartsearch.WithMinRelevance(c.Float64("min-relevance")),
		smartsearch.WithWorkers(c.Int("workers")),
	}

	searcher, err := newSearcher(ctx, c)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "executing query",
		"query", query,
		"category", category,
		"location", c.String("location"),
		"min_relevance", c.Float64("min-relevance"),
	)

	results, err := searcher.Search(ctx, query, opts...)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	return printJSON(results)
}

// newSearcher builds a searcher over the single listing source named by
// the flags.
func newSearcher(ctx context.Context, c *cli.Context) (smartsearch.Searcher, error) {
	file := strings.TrimSpace(c.String("file"))
	table := strings.TrimSpace(c.String("table"))
	indexName := strings.TrimSpace(c.String("algolia-index"))

	set := 0
	for _, s := range []string{file, table, indexName} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one of --file, --table or --algolia-index is required")
	}

	if indexName != "" {
		fetchSecrets, err := algoliaSecrets(ctx, c.String("algolia-secret-arn"))
		if err != nil {
			return nil, err
		}
		var opts []algolia.SearcherOption
		if c.Bool("pushdown") {
			opts = append(opts, algolia.WithFilterPushdown())
		}
		return algolia.NewSearcher(algolia.NewClient(fetchSecrets), indexName, opts...), nil
	}

	var (
		listings []smartsearch.Listing
		err      error
	)
	if file != "" {
		listings, err = readListingsFile(file)
	} else {
		listings, err = scanTable(ctx, table)
	}
	if err != nil {
		return nil, err
	}

	store := inmemory.New()
	if err := store.AddListings(listings...); err != nil {
		return nil, fmt.Errorf("failed to load listings: %w", err)
	}
	slog.InfoContext(ctx, "loaded listings", "count", store.Size())
	return store, nil
}

func readListingsFile(path string) ([]smartsearch.Listing, error) {
	if path == "-" {
		return smartsearch.DecodeListings(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open listings file: %w", err)
	}
	defer f.Close()

	return smartsearch.DecodeListings(f)
}

func scanTable(ctx context.Context, table string) ([]smartsearch.Listing, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return ddb.NewStore(dynamodb.NewFromConfig(cfg), table).Listings(ctx)
}

func algoliaSecrets(ctx context.Context, secretArn string) (algolia.FetchSecrets, error) {
	secretArn = strings.TrimSpace(secretArn)
	if secretArn == "" {
		return algolia.EnvSecrets(), nil
	}

	slog.InfoContext(ctx, "using AWS Secrets Manager for Algolia credentials", "secret_arn", secretArn)
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return algolia.AWSSecretsFromARN(ctx, secretsmanager.NewFromConfig(cfg), secretArn), nil
}
