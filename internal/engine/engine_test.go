package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/texbuddy/texbuddy/internal/checker"
	"github.com/texbuddy/texbuddy/internal/config"
	"github.com/texbuddy/texbuddy/internal/problem"
	"github.com/texbuddy/texbuddy/internal/texdoc"
)

// stubChecker returns canned problems, an error, or panics.
type stubChecker struct {
	name     string
	problems []problem.Problem
	err      error
	panics   bool
}

func (s *stubChecker) Name() string { return s.name }

func (s *stubChecker) Check(_ context.Context, _ *config.Resolver, _ *texdoc.Document) ([]problem.Problem, error) {
	if s.panics {
		panic("stub checker exploded")
	}
	return s.problems, s.err
}

func mustProblem(t *testing.T, checkerName, text string, opts ...problem.Option) problem.Problem {
	t.Helper()

	p, err := problem.New(checkerName, text, opts...)
	if err != nil {
		t.Fatalf("problem.New: %v", err)
	}
	return p
}

func testRun(checkers ...checker.Checker) Run {
	return Run{
		Doc:      texdoc.New("some text\n"),
		Resolver: config.NewResolver(nil),
		Checkers: checkers,
	}
}

// mapMatcher is a whitelist stub.
type mapMatcher map[string]bool

func (m mapMatcher) Contains(key string) bool { return m[key] }

// TestEngineExecute tests aggregation across healthy checkers.
func TestEngineExecute(t *testing.T) {
	t.Parallel()

	t.Run("merges problems from all checkers", func(t *testing.T) {
		t.Parallel()

		a := &stubChecker{name: "a", problems: []problem.Problem{
			mustProblem(t, "a", "one", problem.WithPosition(0, 0)),
		}}
		b := &stubChecker{name: "b", problems: []problem.Problem{
			mustProblem(t, "b", "two"),
		}}

		result, err := New().Execute(context.Background(), testRun(a, b))
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if got := result.Set.Len(); got != 2 {
			t.Errorf("Set.Len = %d, want 2", got)
		}
		if len(result.Failures) != 0 {
			t.Errorf("Failures = %v, want none", result.Failures)
		}
	})

	t.Run("records a timing for every checker", func(t *testing.T) {
		t.Parallel()

		a := &stubChecker{name: "a"}
		b := &stubChecker{name: "b", err: errors.New("boom")}

		result, err := New(WithLimit(1)).Execute(context.Background(), testRun(a, b))
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		for _, name := range []string{"a", "b"} {
			if _, ok := result.Timings[name]; !ok {
				t.Errorf("no timing recorded for %q", name)
			}
		}
	})

	t.Run("result is stable across runs", func(t *testing.T) {
		t.Parallel()

		checkers := []checker.Checker{
			&stubChecker{name: "a", problems: []problem.Problem{
				mustProblem(t, "a", "one", problem.WithPosition(2, 1)),
			}},
			&stubChecker{name: "b", problems: []problem.Problem{
				mustProblem(t, "b", "two", problem.WithPosition(0, 3)),
			}},
		}

		first, err := New().Execute(context.Background(), testRun(checkers...))
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		second, err := New(WithLimit(1)).Execute(context.Background(), testRun(checkers...))
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}

		firstProblems := first.Set.Problems()
		secondProblems := second.Set.Problems()
		if len(firstProblems) != len(secondProblems) {
			t.Fatalf("lengths differ: %d vs %d", len(firstProblems), len(secondProblems))
		}
		for i := range firstProblems {
			if firstProblems[i].Text != secondProblems[i].Text {
				t.Errorf("order differs at %d: %q vs %q", i, firstProblems[i].Text, secondProblems[i].Text)
			}
		}
	})
}

// TestEngineFaultIsolation tests that a failing or panicking checker
// does not affect its siblings.
func TestEngineFaultIsolation(t *testing.T) {
	t.Parallel()

	a := &stubChecker{name: "a", problems: []problem.Problem{
		mustProblem(t, "a", "fine"),
	}}
	b := &stubChecker{name: "b", err: errors.New("tool missing")}
	c := &stubChecker{name: "c", panics: true}
	d := &stubChecker{name: "d", problems: []problem.Problem{
		mustProblem(t, "d", "also fine"),
	}}

	result, err := New().Execute(context.Background(), testRun(a, b, c, d))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if got := result.Set.Len(); got != 2 {
		t.Errorf("Set.Len = %d, want 2 from the healthy checkers", got)
	}
	if len(result.Failures) != 2 {
		t.Fatalf("Failures = %v, want entries for b and c", result.Failures)
	}
	if result.Failures["b"] == nil || !errors.Is(result.Failures["b"], b.err) {
		t.Errorf("Failures[b] = %v, want wrapped tool error", result.Failures["b"])
	}
	if result.Failures["c"] == nil {
		t.Error("Failures[c] = nil, want panic captured as error")
	}
}

// TestEngineWhitelistAndFilter tests suppression accounting.
func TestEngineWhitelistAndFilter(t *testing.T) {
	t.Parallel()

	t.Run("whitelist removes keyed problems", func(t *testing.T) {
		t.Parallel()

		a := &stubChecker{name: "a", problems: []problem.Problem{
			mustProblem(t, "a", "keep me"),
			mustProblem(t, "a", "drop me", problem.WithKey("drop-key")),
		}}

		run := testRun(a)
		run.Whitelist = mapMatcher{"drop-key": true}

		result, err := New().Execute(context.Background(), run)
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if result.Whitelisted != 1 {
			t.Errorf("Whitelisted = %d, want 1", result.Whitelisted)
		}
		if got := result.Set.Len(); got != 1 {
			t.Errorf("Set.Len = %d, want 1", got)
		}
	})

	t.Run("filter drops problems before they enter the set", func(t *testing.T) {
		t.Parallel()

		a := &stubChecker{name: "a", problems: []problem.Problem{
			mustProblem(t, "a", "line one", problem.WithPosition(0, 0)),
			mustProblem(t, "a", "line five", problem.WithPosition(4, 0)),
		}}

		run := testRun(a)
		run.Filter = func(p problem.Problem) bool {
			return p.Position != nil && p.Position.Line == 4
		}

		result, err := New().Execute(context.Background(), run)
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if result.Filtered != 1 {
			t.Errorf("Filtered = %d, want 1", result.Filtered)
		}
		if got := result.Set.Len(); got != 1 {
			t.Errorf("Set.Len = %d, want 1", got)
		}
	})
}

// TestEngineCancellation tests that a cancelled context aborts the run.
func TestEngineCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := &stubChecker{name: "a"}
	if _, err := New().Execute(ctx, testRun(a)); !errors.Is(err, context.Canceled) {
		t.Errorf("Execute = %v, want context.Canceled", err)
	}
}
