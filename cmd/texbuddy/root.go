// Package main provides the entry point for the texbuddy CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for texbuddy.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "texbuddy",
		Short: "Aggregated checks for LaTeX documents",
		Long: `texbuddy checks LaTeX documents for spelling, grammar, and LaTeX
usage problems. It runs a set of checker modules (aspell, chktex,
LanguageTool, built-in LaTeX rules, and external plugins) over the
document and aggregates their findings into one report.

Findings can be suppressed permanently via a persistent whitelist or
per document via %buddy magic comments in the LaTeX source.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewWhitelistCmd())
	cmd.AddCommand(NewModulesCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
