package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/hdoc/c/codebase"
)

func newLSPCmd(projectDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the Language Server Protocol server on stdio.

The project is built once when the client connects. Use --log to see
server logs; stdout carries the protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if cmd.Flags().Changed("project") {
				dir = *projectDir
			}
			server := codebase.NewLSPServer(version, dir)
			return server.RunStdio()
		},
	}
}
