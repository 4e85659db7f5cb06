package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/texbuddy/texbuddy/internal/checker"
	"github.com/texbuddy/texbuddy/internal/config"
	"github.com/texbuddy/texbuddy/internal/log"
)

// NewModulesCmd creates the modules command.
func NewModulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List available checker modules",
		Long: `Modules lists all checker modules texbuddy knows about: the built-in
ones plus external executables discovered in --module-dir directories.

For each module it shows whether the configuration enables it for a
default run (no --enable-modules/--disable-modules).`,
		Args: cobra.NoArgs,
		RunE: runModulesCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .texbuddy in current or home directory)")
	cmd.Flags().StringArray("module-dir", nil,
		"Directory to search for external checker executables (repeatable)")

	return cmd
}

// runModulesCmd executes the modules command.
func runModulesCmd(cmd *cobra.Command, _ []string) error {
	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	moduleDirs, err := cmd.Flags().GetStringArray("module-dir")
	if err != nil {
		return err
	}

	var file *config.File
	if found := config.FindConfigFile(configPath); found != "" {
		file, err = config.LoadConfigFile(found)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", found, err)
		}
	} else if configPath != "" {
		return fmt.Errorf("%w: %s", config.ErrConfigNotFound, configPath)
	}

	resolver := config.NewResolver(file, config.WithResolverLogger(logger))
	registry := checker.Builtin(checker.WithRegistryLogger(logger))
	registry.Discover(moduleDirs)

	defaultEnabled := resolver.Bool(config.GlobalOwner, "enable-modules-by-default", true)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODULE\tKIND\tENABLED")
	for _, name := range registry.Names() {
		f, _ := registry.Lookup(name)

		kind := "built-in"
		if _, external := f().(*checker.External); external {
			kind = "external"
		}

		enabled := "no"
		if resolver.Bool(name, "enabled", defaultEnabled) {
			enabled = "yes"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\n", name, kind, enabled)
	}
	return w.Flush()
}
