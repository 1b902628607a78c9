package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/dhamidi/hdoc/c"
	"github.com/dhamidi/hdoc/c/parser"
	"github.com/dhamidi/hdoc/format"
)

func newParseCmd() *cobra.Command {
	var outputFormat string
	var predefined []string
	var debug bool

	cmd := &cobra.Command{
		Use:   "parse <file.h>",
		Short: "Parse a single header and dump the result",
		Long: `Parse a single header and dump the result.

Without a project file, the header is built on its own. --debug dumps
the raw declarations found by the extractor instead of the built tree.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			extractor := parser.NewExtractor(parser.WithPredefined(predefined))

			if debug {
				data, err := os.ReadFile(filename)
				if err != nil {
					return fmt.Errorf("read header: %w", err)
				}
				file, err := extractor.Extract(filename, data)
				if err != nil {
					return fmt.Errorf("parse header: %w", err)
				}
				pp.Println(file)
				return nil
			}

			var encoder format.Encoder
			switch outputFormat {
			case "json":
				encoder = format.NewJSONEncoder(os.Stdout)
			case "yaml":
				encoder = format.NewYAMLEncoder(os.Stdout)
			case "md":
				encoder = format.NewMarkdownEncoder(os.Stdout, format.DefaultRender())
			case "line":
				encoder = format.NewLineEncoder(os.Stdout)
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}

			builder := c.NewBuilder(
				c.WithFS(os.DirFS(filepath.Dir(filename))),
				c.WithFrontend(extractor),
			)
			tree, report, err := builder.Build(cmd.Context(), []string{filepath.Base(filename)})
			if err != nil {
				return fmt.Errorf("parse header: %w", err)
			}
			for _, w := range report.Warnings() {
				log.Warning(w.String())
			}

			if err := encoder.Encode(tree); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "output format (json, yaml, md, line)")
	cmd.Flags().StringSliceVarP(&predefined, "define", "D", nil, "predefine an object-like macro, NAME or NAME=VALUE")
	cmd.Flags().BoolVar(&debug, "debug", false, "dump the raw extractor declarations")

	return cmd
}
