package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "matchload",
		Short: "Match-cycle load dashboard",
		Long: `matchload serves a player's GPS, capability, recovery and priority
exports as a JSON API and dashboard, and answers load calendar questions from
the command line or over MCP.

QUICK START:

  $ matchload generate --out data/CFC\ GPS\ Data.csv   # Synthetic GPS export
  $ matchload serve                                    # HTTP API on :9080
  $ matchload cycles --file data/CFC\ GPS\ Data.csv --length 7

CONFIGURATION:

  Defaults are overridden by the YAML file named in MATCHLOAD_CONFIG and then
  by MATCHLOAD_* environment variables, e.g. MATCHLOAD_ADDR=:8080.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		// serve is the default command.
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(
		newServeCmd(),
		newCyclesCmd(),
		newGenerateCmd(),
		newMCPCmd(),
	)
	return root
}
