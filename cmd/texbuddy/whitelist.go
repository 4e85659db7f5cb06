package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/texbuddy/texbuddy/internal/config"
	"github.com/texbuddy/texbuddy/internal/log"
	"github.com/texbuddy/texbuddy/internal/whitelist"
)

// NewWhitelistCmd creates the whitelist command and its subcommands.
func NewWhitelistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whitelist",
		Short: "Manage the persistent whitelist",
		Long: `Whitelist manages the database of permanently suppressed findings.

Every finding carries a whitelist key (shown in reports). Adding a key
here suppresses all future findings with the same key, across runs and
documents. Spelling keys are language-qualified, e.g.

  en_spelling_latexmk`,
	}

	cmd.PersistentFlags().StringP("whitelist", "w", "",
		"Whitelist database path (default: XDG data directory)")

	cmd.AddCommand(newWhitelistAddCmd())
	cmd.AddCommand(newWhitelistRemoveCmd())
	cmd.AddCommand(newWhitelistListCmd())
	cmd.AddCommand(newWhitelistFromWordlistCmd())

	return cmd
}

// openWhitelistStore opens the whitelist database at the path from the
// --whitelist flag, falling back to the default location.
func openWhitelistStore(cmd *cobra.Command) (*whitelist.Store, error) {
	path, err := cmd.Flags().GetString("whitelist")
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = config.DefaultWhitelistPath()
	}

	store, err := whitelist.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open whitelist database %s: %w", path, err)
	}
	return store, nil
}

// setupWhitelistLogger wires the default logger for whitelist subcommands.
func setupWhitelistLogger(cmd *cobra.Command) {
	slog.SetDefault(log.NewLogger(os.Stderr, getVerboseFlag(cmd)))
}

// newWhitelistAddCmd creates the whitelist add command.
func newWhitelistAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add key...",
		Short: "Add whitelist keys",
		Long: `Add stores one or more whitelist keys. Findings with a stored key
are suppressed in all future runs. Keys already present are kept
unchanged.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupWhitelistLogger(cmd)

			store, err := openWhitelistStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := context.Background()
			for _, key := range args {
				if err := store.Add(ctx, key, key); err != nil {
					return fmt.Errorf("failed to add %q: %w", key, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d key(s) to %s\n", len(args), store.Path())
			return nil
		},
	}
}

// newWhitelistRemoveCmd creates the whitelist remove command.
func newWhitelistRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove key...",
		Short: "Remove whitelist keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupWhitelistLogger(cmd)

			store, err := openWhitelistStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := context.Background()
			removed := 0
			for _, key := range args {
				ok, err := store.Remove(ctx, key)
				if err != nil {
					return fmt.Errorf("failed to remove %q: %w", key, err)
				}
				if !ok {
					fmt.Fprintf(cmd.OutOrStdout(), "Not in whitelist: %s\n", key)
					continue
				}
				removed++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d key(s)\n", removed)
			return nil
		},
	}
}

// newWhitelistListCmd creates the whitelist list command.
func newWhitelistListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all whitelist keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			setupWhitelistLogger(cmd)

			store, err := openWhitelistStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Entries(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list whitelist: %w", err)
			}
			for _, entry := range entries {
				fmt.Fprintln(cmd.OutOrStdout(), entry.Fingerprint)
			}
			return nil
		},
	}
}

// newWhitelistFromWordlistCmd creates the whitelist from-wordlist command.
func newWhitelistFromWordlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "from-wordlist file",
		Short: "Import a plain wordlist as spelling whitelist keys",
		Long: `From-wordlist reads a plain text file with one word per line and
stores a language-qualified spelling key for each word, so spelling
checkers no longer flag them. Blank lines and lines starting with #
are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupWhitelistLogger(cmd)

			lang, err := cmd.Flags().GetString("language")
			if err != nil {
				return err
			}

			store, err := openWhitelistStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := store.ImportWordlist(context.Background(), args[0], lang)
			if err != nil {
				return fmt.Errorf("failed to import wordlist: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d word(s) into %s\n", count, store.Path())
			return nil
		},
	}

	cmd.Flags().StringP("language", "l", config.DefaultLanguage,
		"Language the words belong to (BCP 47 tag)")

	return cmd
}
