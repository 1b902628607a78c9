package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dhamidi/hdoc/project"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a starter hdoc.hcl",
		Long: `Write a starter hdoc.hcl.

The sources list holds every .h file under the directory in lexical
order; reorder it to control the order of the generated reference.

Examples:
  hdoc init                 # hdoc.hcl for the current directory
  hdoc init lib/include     # hdoc.hcl in lib/include`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			target := filepath.Join(dir, project.HCLFile)
			if _, err := os.Stat(target); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", target)
			}

			var buf bytes.Buffer
			if err := project.Init(dir, &buf); err != nil {
				return fmt.Errorf("init project: %w", err)
			}
			if err := os.WriteFile(target, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("write %s: %w", target, err)
			}
			fmt.Printf("Created %s\n", target)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing hdoc.hcl")

	return cmd
}
