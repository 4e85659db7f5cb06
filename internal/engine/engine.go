package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/texbuddy/texbuddy/internal/checker"
	"github.com/texbuddy/texbuddy/internal/config"
	"github.com/texbuddy/texbuddy/internal/problem"
	"github.com/texbuddy/texbuddy/internal/texdoc"
)

// Run carries everything one execution needs.
type Run struct {
	// Doc is the document under check.
	Doc *texdoc.Document

	// Resolver provides configuration to the checkers.
	Resolver *config.Resolver

	// Checkers are the selected checkers, already instantiated.
	Checkers []checker.Checker

	// Whitelist suppresses problems whose key it contains. Optional.
	Whitelist problem.Matcher

	// Filter reports whether a problem should be dropped before it
	// enters the result set. Optional.
	Filter func(problem.Problem) bool
}

// Result is the aggregated outcome of one run.
type Result struct {
	// Set holds the surviving problems, deduplicated and ordered.
	Set *problem.Set

	// Timings records the wall-clock duration of every selected
	// checker, including failed ones.
	Timings map[string]time.Duration

	// Failures maps the name of each failed checker to its error.
	// Failed checkers contribute zero problems.
	Failures map[string]error

	// Whitelisted is the number of problems the whitelist removed.
	Whitelisted int

	// Filtered is the number of problems the filter dropped.
	Filtered int
}

// Engine executes checkers concurrently with fault isolation.
type Engine struct {
	limit  int
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLimit caps the number of concurrently running checkers.
// Default is runtime.NumCPU.
func WithLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.limit = n
		}
	}
}

// WithLogger sets the logger for per-checker diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an execution engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		limit: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Execute fans the checkers out over a bounded worker pool, collects
// their findings, and merges them in checker order so the outcome does
// not depend on completion order.
//
// A checker that returns an error or panics is recorded in
// Result.Failures and contributes nothing; its siblings keep running.
// Execute itself fails only when ctx is cancelled before all checkers
// finished.
func (e *Engine) Execute(ctx context.Context, run Run) (*Result, error) {
	n := len(run.Checkers)
	found := make([][]problem.Problem, n)
	errs := make([]error, n)
	timings := make([]time.Duration, n)

	g := &errgroup.Group{}
	g.SetLimit(e.limit)

	for i, c := range run.Checkers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}

			start := time.Now()
			defer func() {
				timings[i] = time.Since(start)
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("checker panicked: %v", r)
				}
			}()

			problems, err := c.Check(ctx, run.Resolver, run.Doc)
			if err != nil {
				errs[i] = err
				return nil
			}
			found[i] = problems
			return nil
		})
	}

	// Tasks never return errors; failures are per-checker data.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		Set:      problem.NewSet(),
		Timings:  make(map[string]time.Duration, n),
		Failures: make(map[string]error),
	}

	for i, c := range run.Checkers {
		name := c.Name()
		result.Timings[name] = timings[i]

		if errs[i] != nil {
			result.Failures[name] = errs[i]
			e.logger.Error("checker failed",
				slog.String("checker", name),
				slog.String("error", errs[i].Error()),
				slog.Duration("took", timings[i]))
			continue
		}

		e.logger.Debug("checker finished",
			slog.String("checker", name),
			slog.Int("problems", len(found[i])),
			slog.Duration("took", timings[i]))

		for _, p := range found[i] {
			if run.Filter != nil && run.Filter(p) {
				result.Filtered++
				continue
			}
			result.Set.Add(p)
		}
	}

	if run.Whitelist != nil {
		result.Whitelisted = result.Set.ApplyWhitelist(run.Whitelist)
	}

	return result, nil
}
