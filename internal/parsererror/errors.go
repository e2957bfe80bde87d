// Package parsererror defines the typed errors raised by statement parsing.
package parsererror

import "fmt"

// ParseError represents a structural anomaly within one statement section.
type ParseError struct {
	Section string
	Field   string
	Value   string
	Reason  string
	Err     error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s: failed to parse", e.Section)
	if e.Field != "" {
		msg += fmt.Sprintf(" %s", e.Field)
	}
	if e.Value != "" {
		msg += fmt.Sprintf("='%s'", e.Value)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError represents an input that does not meet an expected
// convention, such as a statement file name without an embedded date.
type ValidationError struct {
	FilePath string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.FilePath, e.Reason)
}
