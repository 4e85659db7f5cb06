package checker

import (
	"errors"
	"fmt"
)

// Registry errors.
var (
	// ErrDuplicateChecker is returned when a checker name is registered
	// twice. Names must be unique; the first registration wins.
	ErrDuplicateChecker = errors.New("checker name already registered")

	// ErrNoChecker is returned when a selection resolves to zero
	// runnable checkers.
	ErrNoChecker = errors.New("no checkers selected")
)

// ModuleNotFoundError is returned when a selection list names a checker
// that is not registered. Selection treats it as a warning: the run
// continues with the checkers that do exist.
type ModuleNotFoundError struct {
	// Name is the unknown checker name from the selection list.
	Name string
}

// Error implements the error interface.
func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("checker module %q is not registered", e.Name)
}

// ExecutableNotFoundError is returned by a tool-wrapping checker when
// its external executable is not in PATH. The engine treats it like any
// other checker failure; sibling checkers keep running.
type ExecutableNotFoundError struct {
	// Name is the executable that was looked up.
	Name string

	// Guidance tells the user how to install the tool.
	Guidance string
}

// Error implements the error interface.
func (e *ExecutableNotFoundError) Error() string {
	if e.Guidance == "" {
		return fmt.Sprintf("executable %q not found in PATH", e.Name)
	}
	return fmt.Sprintf("executable %q not found in PATH (%s)", e.Name, e.Guidance)
}
