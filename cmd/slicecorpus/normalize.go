package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/slicecorpus/internal/output"
	"github.com/panbanda/slicecorpus/pkg/normalize"
	"github.com/panbanda/slicecorpus/pkg/scope"
)

const rejected = "(rejected)"

type normalized struct {
	Input  string `json:"input" toon:"input"`
	Output string `json:"output" toon:"output"`
}

func normalizeCmd() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "language",
			Aliases: []string{"l"},
			Value:   string(normalize.LangTypeScript),
			Usage:   "Source language: typescript, python",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   "text",
			Usage:   "Output format: text, json, markdown, toon",
		},
	}

	return &cli.Command{
		Name:  "normalize",
		Usage: "Show how raw names are normalized",
		Subcommands: []*cli.Command{
			{
				Name:      "type",
				Usage:     "Normalize type names into labels",
				ArgsUsage: "<type>...",
				Flags:     flags,
				Action: normalizeAction("Types", func(d normalize.Dialect, raw string) string {
					return d.Label(raw)
				}),
			},
			{
				Name:      "call",
				Usage:     "Normalize call names",
				ArgsUsage: "<call>...",
				Flags:     flags,
				Action: normalizeAction("Calls", func(d normalize.Dialect, raw string) string {
					name, ok := d.CallName(raw)
					if !ok {
						return rejected
					}
					return name
				}),
			},
			{
				Name:      "scope",
				Usage:     "Resolve scope paths to their enclosing name",
				ArgsUsage: "<scope-path>...",
				Flags:     flags,
				Action: normalizeAction("Scopes", func(d normalize.Dialect, raw string) string {
					return scope.NewResolver(d.AnonymousScopePrefix, d.ProgramScope).EnclosingName(raw)
				}),
			},
		},
	}
}

func normalizeAction(title string, fn func(normalize.Dialect, string) string) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.Args().Len() == 0 {
			return fmt.Errorf("at least one value is required")
		}

		lang, ok := normalize.LookupLanguage(c.String("language"))
		if !ok {
			return fmt.Errorf("unsupported language %q (want typescript or python)", c.String("language"))
		}
		d := normalize.NewDialect(lang)

		results := make([]normalized, 0, c.Args().Len())
		rows := make([][]string, 0, c.Args().Len())
		for _, raw := range c.Args().Slice() {
			out := fn(d, raw)
			results = append(results, normalized{Input: raw, Output: out})
			rows = append(rows, []string{raw, out})
		}

		table := output.NewTable(title, []string{"Input", "Output"}, rows, nil, results)
		f := output.NewWriterFormatter(output.ParseFormat(c.String("format")), c.App.Writer, !c.Bool("no-color"))
		return f.Output(table)
	}
}
