package commands

import (
	"github.com/spf13/cobra"

	"github.com/riskledger/riskledger/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "riskledger",
		Short:   "Risk-rank transaction ledgers",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "path to riskledger.yaml (env RISKLEDGER_CONFIG)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newScanCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newProfilesCommand())

	return rootCmd
}
