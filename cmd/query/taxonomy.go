package main

import (
	"fmt"

	"github.com/letmevibethatforyou/smartsearch/intent"
	"github.com/letmevibethatforyou/smartsearch/suggest"
	"github.com/urfave/cli/v2"
)

func suggestCommand() *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Usage:     "Print completions for a partial query",
		ArgsUsage: "[partial]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Partial query; positional arg is a fallback",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of suggestions",
				Value:   suggest.DefaultLimit,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Print each suggestion with its score",
			},
		},
		Action: func(c *cli.Context) error {
			tax, err := loadTaxonomy(c)
			if err != nil {
				return err
			}

			gen := suggest.New(tax)
			if c.Bool("verbose") {
				for _, s := range gen.GenerateScored(queryArg(c), c.Int("limit")) {
					fmt.Printf("%.2f\t%s\n", s.Score, s.Text)
				}
				return nil
			}
			for _, s := range gen.Generate(queryArg(c), c.Int("limit")) {
				fmt.Println(s)
			}
			return nil
		},
	}
}

func detectCommand() *cli.Command {
	return &cli.Command{
		Name:      "detect",
		Usage:     "Print the categories a query most likely refers to as JSON",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Query; positional arg is a fallback",
			},
		},
		Action: func(c *cli.Context) error {
			tax, err := loadTaxonomy(c)
			if err != nil {
				return err
			}

			matches := intent.New(tax).Detect(queryArg(c))
			if matches == nil {
				matches = []intent.CategoryMatch{}
			}
			return printJSON(matches)
		},
	}
}

func categoriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "Print the taxonomy's categories as JSON",
		Action: func(c *cli.Context) error {
			tax, err := loadTaxonomy(c)
			if err != nil {
				return err
			}
			return printJSON(tax.Entries())
		},
	}
}
