package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/letmevibethatforyou/smartsearch/taxonomy"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "query",
		Usage: "Rank listings, suggest completions and detect categories",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level: debug, info, warn or error",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "taxonomy",
				Usage:   "Path to a TOML taxonomy replacing the built-in one",
				EnvVars: []string{"TAXONOMY_FILE"},
			},
		},
		Before: func(c *cli.Context) error {
			return setupLogging(c.String("log-level"))
		},
		Commands: []*cli.Command{
			searchCommand(),
			suggestCommand(),
			detectCommand(),
			categoriesCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

// setupLogging installs the default logger. Output is JSON when running on
// AWS and text on stderr otherwise, so stdout carries only results.
func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, opts)))
		return nil
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	return nil
}

// loadTaxonomy returns the taxonomy named by --taxonomy or the built-in one.
func loadTaxonomy(c *cli.Context) (*taxonomy.Taxonomy, error) {
	path := strings.TrimSpace(c.String("taxonomy"))
	if path == "" {
		return taxonomy.Default(), nil
	}

	tax, err := taxonomy.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomy: %w", err)
	}
	slog.InfoContext(c.Context, "loaded taxonomy", "path", path, "categories", len(tax.Names()))
	return tax, nil
}

// queryArg returns --query, falling back to the first positional argument.
func queryArg(c *cli.Context) string {
	query := strings.TrimSpace(c.String("query"))
	if query == "" && c.NArg() > 0 {
		query = strings.TrimSpace(c.Args().First())
	}
	return query
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	fmt.Println(string(data))
	return nil
}
