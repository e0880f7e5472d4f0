package errors

import "fmt"

// ParseError wraps a specific error with context about where it occurred.
type ParseError struct {
	Line   int
	Record []string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %v (record: %v)", e.Line, e.Err, e.Record)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// PeriodLabelError wraps a specific error with the period label that caused it.
type PeriodLabelError struct {
	Label string
	Err   error
}

func (e *PeriodLabelError) Error() string {
	return fmt.Sprintf("period label %q: %v", e.Label, e.Err)
}

func (e *PeriodLabelError) Unwrap() error {
	return e.Err
}

// Define specific error types for better error handling
var (
	ErrInvalidFieldCount     = fmt.Errorf("invalid field count")
	ErrUnknownBusinessUnit   = fmt.Errorf("unknown business unit")
	ErrUnknownLineOfBusiness = fmt.Errorf("unknown line of business")
	ErrUnknownTeam           = fmt.Errorf("unknown team")
	ErrUnknownField          = fmt.Errorf("unknown field")
	ErrInvalidValue          = fmt.Errorf("invalid numeric value")
	ErrEmptyRecord           = fmt.Errorf("empty record")

	// ErrMalformedPeriodLabel signals a period label that does not match the
	// "FWk<n>: MM/DD-MM/DD (YYYY)" / "FMo<n>: MM/DD-MM/DD (YYYY)" pattern.
	// Labels generated by the calendar package always parse; this fires only
	// for externally constructed labels.
	ErrMalformedPeriodLabel = fmt.Errorf("malformed period label")
)
