package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/letmevibethatforyou/smartsearch"
	"github.com/letmevibethatforyou/smartsearch/internal/ddb"
	"github.com/letmevibethatforyou/smartsearch/taxonomy"
	"github.com/segmentio/ksuid"
	"github.com/urfave/cli/v2"
)

var (
	seniority = []string{"", "", "Senior", "Junior", "Lead", "Experienced", "Part-time"}

	companies = []string{
		"", "", "Island Tech", "Ocean Resort", "Harbour Builders", "Coral Health",
		"Blue Lagoon Hotel", "Conch Logistics", "Pineapple Media", "Sandbar Grill",
	}
)

// listingGenerator draws listings from a taxonomy.
type listingGenerator struct {
	rng     *rand.Rand
	entries []taxonomy.Entry
	places  []string
}

func newListingGenerator(rng *rand.Rand, tax *taxonomy.Taxonomy) *listingGenerator {
	return &listingGenerator{
		rng:     rng,
		entries: tax.Entries(),
		places:  tax.Locations(),
	}
}

func (g *listingGenerator) pick(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[g.rng.IntN(len(items))]
}

func (g *listingGenerator) generate() smartsearch.Listing {
	entry := g.entries[g.rng.IntN(len(g.entries))]
	keyword := g.pick(entry.Keywords)
	location := g.pick(g.places)

	title := titleCase(keyword)
	if prefix := g.pick(seniority); prefix != "" {
		title = prefix + " " + title
	}

	skills := make([]string, 0, 3)
	for i, n := 0, g.rng.IntN(4); i < n; i++ {
		skill := g.pick(entry.Keywords)
		if skill != keyword && !contains(skills, skill) {
			skills = append(skills, skill)
		}
	}

	return smartsearch.Listing{
		ID:          ksuid.New().String(),
		Title:       title,
		Description: fmt.Sprintf("Seeking a %s in %s.", keyword, location),
		Category:    entry.Name,
		Location:    location,
		Company:     g.pick(companies),
		Skills:      skills,
	}
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}

// titleCase upper-cases the first letter of every word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func runAction(c *cli.Context) error {
	ctx := c.Context
	env := c.String("env")
	tableName := c.String("table-name")
	count := c.Int("count")

	slog.InfoContext(ctx, "Starting listing generator",
		"environment", env,
		"table", tableName,
		"count", count,
	)

	tax := taxonomy.Default()
	if path := c.String("taxonomy"); path != "" {
		var err error
		if tax, err = taxonomy.LoadFile(path); err != nil {
			return fmt.Errorf("failed to load taxonomy: %w", err)
		}
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	store := ddb.NewStore(dynamodb.NewFromConfig(cfg), tableName)
	gen := newListingGenerator(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), tax)

	return insertListings(ctx, store, gen, count)
}

type listingWriter interface {
	PutListing(ctx context.Context, l smartsearch.Listing) error
}

func insertListings(ctx context.Context, store listingWriter, gen *listingGenerator, count int) error {
	for i := 0; i < count; i++ {
		listing := gen.generate()
		if err := store.PutListing(ctx, listing); err != nil {
			return fmt.Errorf("failed to insert listing %d: %w", i+1, err)
		}

		slog.InfoContext(ctx, "Successfully inserted listing",
			"id", listing.ID,
			"title", listing.Title,
			"category", listing.Category,
			"location", listing.Location,
		)
	}

	slog.InfoContext(ctx, "Successfully generated and inserted all listings", "count", count)
	return nil
}

func main() {
	// Configure JSON logging for AWS environments
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	app := &cli.App{
		Name:  "generator",
		Usage: "Generate random job listings and insert them into DynamoDB",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "env",
				Aliases:  []string{"e"},
				Usage:    "Environment name",
				EnvVars:  []string{"ENVIRONMENT"},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "table-name",
				Aliases:  []string{"t"},
				Usage:    "DynamoDB table name",
				EnvVars:  []string{"TABLE_NAME"},
				Required: true,
			},
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"c"},
				Usage:   "Number of listings to generate",
				Value:   1,
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
