package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd(projectDir *string) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Build the documentation tree and list its warnings",
		Long: `Build the documentation tree and list its warnings without writing
any output. With --strict, any warning fails the command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := buildProject(cmd.Context(), *projectDir)
			if err != nil {
				return err
			}
			for _, w := range result.report.Warnings() {
				fmt.Println(w)
			}
			fmt.Printf("%d entities, %s\n", result.tree.Len(), result.report.Summary())
			if strict && result.report.Len() > 0 {
				return fmt.Errorf("check: %d warnings", result.report.Len())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail when there are warnings")

	return cmd
}
