package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

var log = commonlog.GetLogger("hdoc.cmd")

func main() {
	var verbosity int
	var logFile string
	var projectDir string

	rootCmd := &cobra.Command{
		Use:          "hdoc",
		Short:        "Reference documentation for C headers",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var path *string
			if logFile != "" {
				path = &logFile
			}
			commonlog.Configure(verbosity, path)
		},
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "write logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "C", ".", "directory holding hdoc.hcl or hdoc.yaml")

	rootCmd.AddCommand(newBuildCmd(&projectDir))
	rootCmd.AddCommand(newCheckCmd(&projectDir))
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newDocCmd(&projectDir))
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newLSPCmd(&projectDir))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
