package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/texbuddy/texbuddy/internal/checker"
	"github.com/texbuddy/texbuddy/internal/config"
	"github.com/texbuddy/texbuddy/internal/engine"
	"github.com/texbuddy/texbuddy/internal/log"
	"github.com/texbuddy/texbuddy/internal/preprocessor"
	"github.com/texbuddy/texbuddy/internal/problem"
	"github.com/texbuddy/texbuddy/internal/report"
	"github.com/texbuddy/texbuddy/internal/texdoc"
	"github.com/texbuddy/texbuddy/internal/whitelist"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file...]",
		Short: "Check LaTeX documents for problems",
		Long: `Check runs the configured checker modules over one or more LaTeX
documents and aggregates their findings into a report.

Built-in modules: aspell, chktex, languagetool, unreferenced-figures,
siunitx, empty-sections, url-format, native-ref. External checker
executables found in --module-dir directories run alongside them.

Findings whose whitelist key is stored in the whitelist database are
suppressed, as are findings covered by %buddy magic comments in the
document source.

Examples:
  # Check a single document, report on stdout
  texbuddy check thesis.tex

  # Check several documents and write markdown reports to a directory
  texbuddy check --format markdown --output reports/ ch1.tex ch2.tex

  # Run only the spelling and LaTeX rule modules
  texbuddy check --enable-modules aspell,chktex thesis.tex

  # Use a custom configuration file
  texbuddy check -c myconfig.yaml thesis.tex

Configuration file (.texbuddy) example:
  texbuddy:
    language: en
    format: markdown
  modules:
    chktex:
      enabled: false
    siunitx:
      number-threshold: 5`,
		Args: cobra.ArbitraryArgs,
		RunE: runCheckCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .texbuddy in current or home directory)")
	cmd.Flags().StringP("language", "l", "",
		"Document language as a BCP 47 tag (e.g. en, de-DE)")
	cmd.Flags().StringP("output", "o", "",
		"Directory to write report files to (default: report on stdout)")
	cmd.Flags().StringP("format", "f", "",
		"Report format: text, json or markdown (default: text)")
	cmd.Flags().StringSlice("enable-modules", nil,
		"Run only the listed modules (mutually exclusive with --disable-modules)")
	cmd.Flags().StringSlice("disable-modules", nil,
		"Run all but the listed modules (mutually exclusive with --enable-modules)")
	cmd.Flags().StringP("whitelist", "w", "",
		"Whitelist database path (default: XDG data directory)")
	cmd.Flags().StringArray("module-dir", nil,
		"Directory to search for external checker executables (repeatable)")

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCheckConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCheck(ctx, cfg, logger)
}

// buildCheckConfig creates a Config from cobra command flags.
func buildCheckConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg.Language, err = cmd.Flags().GetString("language")
	if err != nil {
		return nil, err
	}

	cfg.OutputDir, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}
	if format != "" {
		cfg.Format = format
	}
	cfg.FormatSet = cmd.Flags().Changed("format")

	cfg.EnableModules, err = cmd.Flags().GetStringSlice("enable-modules")
	if err != nil {
		return nil, err
	}

	cfg.DisableModules, err = cmd.Flags().GetStringSlice("disable-modules")
	if err != nil {
		return nil, err
	}

	cfg.WhitelistPath, err = cmd.Flags().GetString("whitelist")
	if err != nil {
		return nil, err
	}

	cfg.ModuleDirs, err = cmd.Flags().GetStringArray("module-dir")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Targets = args

	// Load the configuration file.
	// If the user explicitly specified a path, a missing file is an
	// error. The default search falls back to an empty configuration.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.File, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	return cfg, nil
}

// newResolver builds the option resolver, layering explicit flag
// values over the configuration file.
func newResolver(cfg *config.Config, logger *slog.Logger) *config.Resolver {
	resolver := config.NewResolver(cfg.File, config.WithResolverLogger(logger))
	if cfg.Language != "" {
		resolver.SetFlag(config.GlobalOwner, "language", cfg.Language)
	}
	if cfg.OutputDir != "" {
		resolver.SetFlag(config.GlobalOwner, "output", cfg.OutputDir)
	}
	if cfg.FormatSet {
		resolver.SetFlag(config.GlobalOwner, "format", cfg.Format)
	}
	if cfg.WhitelistPath != "" {
		resolver.SetFlag(config.GlobalOwner, "whitelist", cfg.WhitelistPath)
	}
	return resolver
}

// moduleSelection maps the mutually exclusive selection flags onto a
// registry selection.
func moduleSelection(cfg *config.Config) checker.Selection {
	if len(cfg.EnableModules) > 0 {
		return checker.Selection{Mode: checker.SelectionModeWhitelist, Names: cfg.EnableModules}
	}
	return checker.Selection{Mode: checker.SelectionModeBlacklist, Names: cfg.DisableModules}
}

// runCheck executes the check run for all targets.
func runCheck(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	resolver := newResolver(cfg, logger)

	registry := checker.Builtin(checker.WithRegistryLogger(logger))
	registry.Discover(cfg.ModuleDirs)

	checkers, err := registry.Select(moduleSelection(cfg), resolver)
	if err != nil {
		// Unknown module names are reported but do not abort the run.
		var notFound *checker.ModuleNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if len(checkers) == 0 {
		return fmt.Errorf("%w (check --enable-modules/--disable-modules and the configuration file)", checker.ErrNoChecker)
	}

	logger.Info("starting check",
		"targets", cfg.Targets,
		"modules", len(checkers),
		"language", resolver.Language(),
	)

	matcher, closeStore, err := openWhitelist(ctx, resolver, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	eng := engine.New(engine.WithLogger(logger))

	var failed int
	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := checkTarget(ctx, eng, resolver, checkers, matcher, cfg, target, logger); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			logger.Error("check failed", "file", target, "error", err)
			fmt.Fprintf(os.Stderr, "Check error for %s: %v\n", target, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) could not be checked", failed, len(cfg.Targets))
	}
	return nil
}

// openWhitelist opens the whitelist store and loads a point-in-time
// matcher from it. A missing or unopenable store degrades to no
// whitelisting rather than failing the run.
func openWhitelist(ctx context.Context, resolver *config.Resolver, logger *slog.Logger) (problem.Matcher, func(), error) {
	path := resolver.String(config.GlobalOwner, "whitelist", config.DefaultWhitelistPath())

	store, err := whitelist.Open(path)
	if err != nil {
		logger.Warn("whitelist database unavailable, continuing without it", "path", path, "error", err)
		return nil, func() {}, nil
	}

	matcher, err := store.LoadAll(ctx)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to load whitelist: %w", err)
	}

	closeStore := func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close whitelist database", "error", err)
		}
	}
	return matcher, closeStore, nil
}

// checkTarget runs all selected checkers over one document and writes
// its report.
func checkTarget(ctx context.Context, eng *engine.Engine, resolver *config.Resolver, checkers []checker.Checker, matcher problem.Matcher, cfg *config.Config, target string, logger *slog.Logger) error {
	markup, err := os.ReadFile(target) //nolint:gosec // User-provided document path is intentional
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	doc := texdoc.New(string(markup), texdoc.WithLogger(logger))
	if doc.Faulty {
		logger.Warn("document could not be fully parsed, position mapping degraded", "file", target)
	}

	pre := preprocessor.New(preprocessor.WithLogger(logger))
	pre.Parse(doc.Markup)

	startTime := time.Now()
	result, err := eng.Execute(ctx, engine.Run{
		Doc:       doc,
		Resolver:  resolver,
		Checkers:  checkers,
		Whitelist: matcher,
		Filter:    pre.Suppress,
	})
	if err != nil {
		return err
	}
	logger.Info("check completed",
		"file", target,
		"problems", result.Set.Len(),
		"whitelisted", result.Whitelisted,
		"filtered", result.Filtered,
		"elapsed", time.Since(startTime).Round(time.Millisecond).String(),
	)

	rep := report.Build(target, resolver.Language(), result.Set, result.Timings, result.Failures)
	rep.Whitelisted = result.Whitelisted
	rep.Filtered = result.Filtered

	return outputReport(resolver, cfg, target, rep)
}

// outputReport renders the report in the configured format, either to
// stdout or to a file in the output directory.
func outputReport(resolver *config.Resolver, cfg *config.Config, target string, rep *report.Report) error {
	format := resolver.String(config.GlobalOwner, "format", config.DefaultFormat)
	outDir := resolver.String(config.GlobalOwner, "output", "")

	var output io.Writer = os.Stdout
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		path := filepath.Join(outDir, reportFileName(target, format))
		f, err := os.Create(path) //nolint:gosec // Report path derives from user-provided flags
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		output = f
	}

	writer, err := newReportWriter(format, output, cfg.Verbose)
	if err != nil {
		return err
	}
	if _, err := writer.Write(rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// newReportWriter returns the report writer for the given format.
func newReportWriter(format string, output io.Writer, verbose bool) (report.Writer, error) {
	switch format {
	case "text":
		return report.NewTextWriter(output, report.WithVerboseText(verbose)), nil
	case "json":
		return report.NewJSONWriter(output, report.WithPrettyPrint()), nil
	case "markdown":
		return report.NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownFormat, format)
	}
}

// reportFileName derives the report file name for a target document.
func reportFileName(target, format string) string {
	base := filepath.Base(target)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	ext := "txt"
	switch format {
	case "json":
		ext = "json"
	case "markdown":
		ext = "md"
	}
	return fmt.Sprintf("texbuddy_%s.%s", base, ext)
}
