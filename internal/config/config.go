package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values. Where a value mirrors an option key,
// the option takes precedence when set.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "texbuddy"

	// GlobalOwner is the option owner name for the orchestrator's own
	// settings, as opposed to per-checker options. A lookup with an
	// empty owner resolves here.
	GlobalOwner = "texbuddy"

	// DefaultConfigFile is the default configuration file name searched
	// for in the working directory and the user's home directory.
	DefaultConfigFile = ".texbuddy"

	// DefaultLanguage is used when no document language is configured.
	// Language-dependent checkers and the whitelist fingerprint scheme
	// fall back to it.
	DefaultLanguage = "en"

	// DefaultFormat is the default report format.
	DefaultFormat = "text"

	// WhitelistDBFile is the SQLite file name holding whitelist entries
	// inside the data directory.
	WhitelistDBFile = "whitelist.db"
)

// Config holds the per-run options assembled from CLI flags.
// It is populated by the CLI layer, validated once, and passed through
// the application by reference rather than via global state.
type Config struct {
	// Targets are the LaTeX files to check.
	Targets []string

	// ConfigFilePath is an explicit configuration file path. Empty
	// means search ./.texbuddy then $HOME/.texbuddy.
	ConfigFilePath string

	// Language is the document language override (BCP 47 tag).
	Language string

	// OutputDir is the directory report files are written to.
	// Empty means write the report to standard output.
	OutputDir string

	// Format selects the report format: text, json or markdown.
	Format string

	// FormatSet records whether Format came from an explicit flag.
	// An explicit flag overrides the configuration file even when it
	// names the default format.
	FormatSet bool

	// EnableModules lists modules to run exclusively (whitelist
	// selection mode). Mutually exclusive with DisableModules.
	EnableModules []string

	// DisableModules lists modules to skip (blacklist selection mode).
	// Mutually exclusive with EnableModules.
	DisableModules []string

	// ModuleDirs are extra directories searched for external checker
	// executables.
	ModuleDirs []string

	// WhitelistPath overrides the default whitelist database location.
	WhitelistPath string

	// File holds the loaded configuration file, or nil when none was
	// found. Flag values recorded above take precedence over it.
	File *File

	// Verbose enables debug-level logging.
	Verbose bool
}

// NewConfig returns a Config with defaults applied.
func NewConfig() *Config {
	return &Config{
		Format: DefaultFormat,
	}
}

// Validate checks cross-flag consistency.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if len(c.EnableModules) > 0 && len(c.DisableModules) > 0 {
		return ErrConflictingSelection
	}
	switch c.Format {
	case "text", "json", "markdown":
	default:
		return ErrUnknownFormat
	}
	return nil
}

// XDGDataDir returns the XDG data directory for texbuddy.
// This follows the XDG Base Directory Specification.
// On Linux, this is typically ~/.local/share/texbuddy.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// DefaultWhitelistPath returns the default whitelist database path
// inside the XDG data directory.
func DefaultWhitelistPath() string {
	return filepath.Join(XDGDataDir(), WhitelistDBFile)
}
