package checker

import (
	"context"
	"reflect"
	"strings"

	"github.com/texbuddy/texbuddy/internal/config"
	"github.com/texbuddy/texbuddy/internal/problem"
	"github.com/texbuddy/texbuddy/internal/texdoc"
)

// Checker inspects a document and reports the problems it finds.
//
// Check must honor ctx cancellation and must not retain references to
// the document after returning. Any subprocess a checker spawns must
// have terminated before Check returns.
type Checker interface {
	// Name returns the checker's stable name. It is used for config
	// lookups, selection lists, problem attribution, and timing.
	Name() string

	// Check runs the checker against doc and returns found problems.
	// A non-nil error marks the whole checker as failed; partial
	// results returned alongside an error are discarded.
	Check(ctx context.Context, cfg *config.Resolver, doc *texdoc.Document) ([]problem.Problem, error)
}

// Identity resolves any common representation of a checker to its
// stable name: a Checker instance, a plain name string, a reflect.Type,
// or an arbitrary value whose type name stands in for the checker.
//
// Design decision: Config lookups, selection lists, and problem
// attribution all key on this one string, so every code path funnels
// through Identity instead of each caller normalizing on its own.
func Identity(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case Checker:
		return t.Name()
	case reflect.Type:
		return typeName(t)
	default:
		return typeName(reflect.TypeOf(v))
	}
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return strings.ToLower(t.Name())
}
