package checker

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/texbuddy/texbuddy/internal/config"
	"github.com/texbuddy/texbuddy/internal/problem"
	"github.com/texbuddy/texbuddy/internal/texdoc"
)

// fakeChecker is a no-op checker for registry tests.
type fakeChecker struct {
	name string
}

func (f *fakeChecker) Name() string { return f.name }

func (f *fakeChecker) Check(_ context.Context, _ *config.Resolver, _ *texdoc.Document) ([]problem.Problem, error) {
	return nil, nil
}

func fakeFactory(name string) Factory {
	return func() Checker { return &fakeChecker{name: name} }
}

// testRegistry builds a registry with three fake checkers.
func testRegistry(t *testing.T) *Registry {
	t.Helper()

	r := NewRegistry()
	for _, name := range []string{"alpha", "beta", "gamma"} {
		if err := r.Register(name, fakeFactory(name)); err != nil {
			t.Fatalf("Register(%q): %v", name, err)
		}
	}
	return r
}

func selectedNames(checkers []Checker) []string {
	var names []string
	for _, c := range checkers {
		names = append(names, c.Name())
	}
	return names
}

// TestRegistryRegister tests registration and duplicate handling.
func TestRegistryRegister(t *testing.T) {
	t.Parallel()

	t.Run("registers and looks up factories", func(t *testing.T) {
		t.Parallel()

		r := testRegistry(t)
		f, ok := r.Lookup("beta")
		if !ok {
			t.Fatal("Lookup(beta) = false, want true")
		}
		if got := f().Name(); got != "beta" {
			t.Errorf("factory produced checker %q, want %q", got, "beta")
		}
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		t.Parallel()

		r := testRegistry(t)
		err := r.Register("alpha", fakeFactory("alpha"))
		if !errors.Is(err, ErrDuplicateChecker) {
			t.Errorf("Register duplicate = %v, want ErrDuplicateChecker", err)
		}
	})

	t.Run("names keeps registration order", func(t *testing.T) {
		t.Parallel()

		r := testRegistry(t)
		want := []string{"alpha", "beta", "gamma"}
		if got := r.Names(); !reflect.DeepEqual(got, want) {
			t.Errorf("Names = %v, want %v", got, want)
		}
	})
}

// TestRegistrySelect tests the selection truth table: mode, list
// membership, and the per-module enabled option combine with AND
// semantics.
func TestRegistrySelect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sel  Selection
		file *config.File
		want []string
	}{
		{
			name: "empty blacklist selects everything",
			sel:  Selection{Mode: SelectionModeBlacklist},
			want: []string{"alpha", "beta", "gamma"},
		},
		{
			name: "blacklist removes listed checkers",
			sel:  Selection{Mode: SelectionModeBlacklist, Names: []string{"beta"}},
			want: []string{"alpha", "gamma"},
		},
		{
			name: "whitelist keeps only listed checkers",
			sel:  Selection{Mode: SelectionModeWhitelist, Names: []string{"gamma", "alpha"}},
			want: []string{"alpha", "gamma"},
		},
		{
			name: "empty whitelist selects nothing",
			sel:  Selection{Mode: SelectionModeWhitelist},
			want: nil,
		},
		{
			name: "disabled module loses even when whitelisted",
			sel:  Selection{Mode: SelectionModeWhitelist, Names: []string{"alpha", "beta"}},
			file: &config.File{
				Modules: map[string]map[string]any{
					"beta": {"enabled": false},
				},
			},
			want: []string{"alpha"},
		},
		{
			name: "global default off needs per-module opt-in",
			sel:  Selection{Mode: SelectionModeBlacklist},
			file: &config.File{
				Global: map[string]any{"enable-modules-by-default": false},
				Modules: map[string]map[string]any{
					"gamma": {"enabled": true},
				},
			},
			want: []string{"gamma"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := testRegistry(t)
			got, err := r.Select(tt.sel, config.NewResolver(tt.file))
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			if !reflect.DeepEqual(selectedNames(got), tt.want) {
				t.Errorf("Select = %v, want %v", selectedNames(got), tt.want)
			}
		})
	}

	t.Run("unknown names warn but do not abort", func(t *testing.T) {
		t.Parallel()

		r := testRegistry(t)
		sel := Selection{Mode: SelectionModeWhitelist, Names: []string{"alpha", "missing"}}
		got, err := r.Select(sel, config.NewResolver(nil))

		var notFound *ModuleNotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("expected ModuleNotFoundError, got %v", err)
		}
		if notFound.Name != "missing" {
			t.Errorf("ModuleNotFoundError.Name = %q, want %q", notFound.Name, "missing")
		}
		if want := []string{"alpha"}; !reflect.DeepEqual(selectedNames(got), want) {
			t.Errorf("Select = %v, want %v", selectedNames(got), want)
		}
	})
}

// TestBuiltin checks that every built-in checker is registered under
// its own name.
func TestBuiltin(t *testing.T) {
	t.Parallel()

	r := Builtin()
	for _, name := range []string{
		"aspell", "chktex", "languagetool",
		"unreferenced-figures", "siunitx", "empty-sections",
		"url-format", "native-ref",
	} {
		f, ok := r.Lookup(name)
		if !ok {
			t.Errorf("Lookup(%q) = false, want registered", name)
			continue
		}
		if got := f().Name(); got != name {
			t.Errorf("factory for %q produced %q", name, got)
		}
	}
}

// TestIdentity tests name resolution across representations.
func TestIdentity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "string passes through", in: "aspell", want: "aspell"},
		{name: "checker instance", in: &fakeChecker{name: "beta"}, want: "beta"},
		{name: "struct value", in: SiUnitx{}, want: "siunitx"},
		{name: "pointer to struct", in: &SiUnitx{}, want: "siunitx"},
		{name: "reflect type", in: reflect.TypeOf(Chktex{}), want: "chktex"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Identity(tt.in); got != tt.want {
				t.Errorf("Identity(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
