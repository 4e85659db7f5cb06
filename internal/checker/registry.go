package checker

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/texbuddy/texbuddy/internal/config"
)

// Factory creates a fresh checker instance. Factories are invoked once
// per selection so checkers never share state between runs.
type Factory func() Checker

// Registry holds the known checker factories, keyed by checker name.
//
// Design decision: The registry is an explicit value passed to callers
// rather than package-level mutable state. The CLI builds one registry
// per invocation from Builtin plus Discover; tests build small ones by
// hand.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	order     []string
	logger    *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used for discovery and selection
// diagnostics. Defaults to slog.Default.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty checker registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Builtin creates a registry pre-populated with all built-in checkers.
func Builtin(opts ...RegistryOption) *Registry {
	r := NewRegistry(opts...)
	builtins := []Factory{
		func() Checker { return NewAspell() },
		func() Checker { return NewChktex() },
		func() Checker { return NewLanguageTool() },
		func() Checker { return NewUnreferencedFigures() },
		func() Checker { return NewSiUnitx() },
		func() Checker { return NewEmptySections() },
		func() Checker { return NewURLFormat() },
		func() Checker { return NewNativeRef() },
	}
	for _, f := range builtins {
		// Built-in names are unique by construction.
		_ = r.Register(f().Name(), f)
	}
	return r
}

// Register adds a factory under the given name. Registering an already
// taken name returns ErrDuplicateChecker and leaves the existing entry
// in place.
func (r *Registry) Register(name string, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[name]; ok {
		return ErrDuplicateChecker
	}
	r.factories[name] = f
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[name]
	return f, ok
}

// Names returns all registered checker names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Discover scans the given directories for executable checker plugins
// and registers each as an external checker named after its file.
//
// Non-executable entries, subdirectories, and names that collide with
// an already registered checker are skipped with a logged reason.
// Missing directories are skipped silently so users can configure
// plugin paths that do not exist yet.
func (r *Registry) Discover(dirs []string) {
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				r.logger.Warn("skipping module directory",
					slog.String("dir", dir),
					slog.String("reason", err.Error()))
			}
			continue
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			info, err := entry.Info()
			if err != nil {
				r.logger.Warn("skipping module candidate",
					slog.String("path", path),
					slog.String("reason", err.Error()))
				continue
			}
			if !info.Mode().IsRegular() {
				r.logger.Debug("skipping module candidate: not a regular file",
					slog.String("path", path))
				continue
			}
			if info.Mode().Perm()&0o111 == 0 {
				r.logger.Debug("skipping module candidate: not executable",
					slog.String("path", path))
				continue
			}

			name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
			if err := r.Register(name, externalFactory(name, path, r.logger)); err != nil {
				r.logger.Warn("skipping module candidate: name taken",
					slog.String("path", path),
					slog.String("name", name))
				continue
			}
			r.logger.Debug("discovered external checker",
				slog.String("name", name),
				slog.String("path", path))
		}
	}
}

// SelectionMode controls how a selection list is interpreted.
type SelectionMode int

const (
	// SelectionModeBlacklist runs every registered checker except the
	// listed ones. An empty list means run everything.
	SelectionModeBlacklist SelectionMode = iota

	// SelectionModeWhitelist runs only the listed checkers.
	SelectionModeWhitelist
)

// Selection describes which checkers a run should execute.
type Selection struct {
	Mode  SelectionMode
	Names []string
}

// Select instantiates the checkers the selection and the configuration
// jointly enable.
//
// A checker runs only if the selection list admits it and its `enabled`
// config option resolves to true. The per-checker `enabled` option
// defaults to the global `enable-modules-by-default` option, which
// defaults to true.
//
// Unknown names in the selection list produce joined ModuleNotFound
// errors alongside the successfully selected checkers; callers log
// them and continue. The returned slice is sorted by checker name so
// two runs with the same configuration select in the same order.
func (r *Registry) Select(sel Selection, cfg *config.Resolver) ([]Checker, error) {
	listed := make(map[string]bool, len(sel.Names))
	var errs []error
	for _, name := range sel.Names {
		if _, ok := r.Lookup(name); !ok {
			errs = append(errs, &ModuleNotFoundError{Name: name})
			continue
		}
		listed[name] = true
	}

	defaultEnabled := cfg.Bool(config.GlobalOwner, "enable-modules-by-default", true)

	var selected []Checker
	for _, name := range r.Names() {
		switch sel.Mode {
		case SelectionModeWhitelist:
			if !listed[name] {
				continue
			}
		case SelectionModeBlacklist:
			if listed[name] {
				continue
			}
		}
		if !cfg.Bool(name, "enabled", defaultEnabled) {
			continue
		}

		f, _ := r.Lookup(name)
		selected = append(selected, f())
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Name() < selected[j].Name()
	})
	return selected, errors.Join(errs...)
}
