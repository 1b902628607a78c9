package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/hdoc/c/codebase"
	"github.com/dhamidi/hdoc/format"
)

func newDocCmd(projectDir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc [name]",
		Short: "Show documentation for a function, type, macro or group",
		Long: `Show documentation for a function, type, macro or group.

The name can be:
  - A C name (e.g., ZSTD_compress)
  - A typedef name (e.g., ZSTD_CCtx)
  - An id (e.g., ZSTD_inBuffer.size for a struct member)

With no arguments, lists every documented entity.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := buildProject(cmd.Context(), *projectDir)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return format.NewLineEncoder(os.Stdout).Encode(result.tree)
			}

			cb := codebase.New(nil)
			cb.SetTree(result.tree, result.project.Style())
			text, ok := cb.Hover(args[0])
			if !ok {
				return fmt.Errorf("%s is not documented", args[0])
			}
			loc, _ := cb.Definition(args[0])
			fmt.Println(text)
			fmt.Printf("\n%s\n", loc)
			return nil
		},
	}

	return cmd
}
