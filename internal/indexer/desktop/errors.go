package desktop

import "fmt"

// IOError wraps a failure to read or write a .desktop file
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to read file: %v", e.Err)
	}
	return fmt.Sprintf("failed to access %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// MissingFieldError reports a required key that is absent or empty
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing required field: " + e.Field
}

// InvalidValueError reports a field holding a value outside its allowed set
type InvalidValueError struct {
	Field string
	Value string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for field %s: %q", e.Field, e.Value)
}

// ParseError is reserved for structural grammar failures.
// The current grammar is permissive and never produces it.
type ParseError struct {
	Detail string
}

func (e *ParseError) Error() string {
	return "invalid desktop file format: " + e.Detail
}
