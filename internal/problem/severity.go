package problem

import (
	"encoding/json"
	"fmt"
)

// Severity grades how serious a problem is. The order matters: problems
// at the same position are reported most severe first.
//
// Design decision: We use iota-based constants rather than strings for
// cheap comparison and sorting; JSON (de)serialization goes through the
// string form so reports and external checker output stay readable.
type Severity int

const (
	// SeverityNone marks findings that are reported but not highlighted,
	// for example purely informational notices from a LaTeX log.
	SeverityNone Severity = iota

	// SeverityInfo marks suggestions that do not criticise the text,
	// such as a style hint to prefer "lots" over "a lot".
	SeverityInfo

	// SeverityWarning marks problematic areas that still compile and
	// work, such as using "$$" in LaTeX. This is the default severity.
	SeverityWarning

	// SeverityError marks problems that break the document, such as an
	// unclosed environment or a misspelled word.
	SeverityError
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a severity name into a Severity.
// It accepts the lowercase names produced by String.
func ParseSeverity(name string) (Severity, error) {
	switch name {
	case "none":
		return SeverityNone, nil
	case "info":
		return SeverityInfo, nil
	case "warning":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	default:
		return SeverityWarning, fmt.Errorf("unknown severity %q", name)
	}
}

// MarshalJSON encodes the severity as its string form.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity from its string form.
// This is used when parsing output from external checker executables.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
