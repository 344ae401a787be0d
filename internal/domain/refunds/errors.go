package refunds

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedInput      = errors.New("malformed input")
	ErrConfigurationLookup = errors.New("configuration lookup failed")
	ErrParse               = errors.New("parse error")
)

// MalformedInputError reports an absent record, a missing required field or
// an unrecognized enumerated value.
type MalformedInputError struct {
	Field   string
	Message string
}

func (e MalformedInputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed input: %s", e.Message)
	}
	return fmt.Sprintf("malformed input %s: %s", e.Field, e.Message)
}

func (e MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

// ConfigurationLookupError reports a key missing from one of the injected
// lookup tables.
type ConfigurationLookupError struct {
	Table string
	Key   string
}

func (e ConfigurationLookupError) Error() string {
	return fmt.Sprintf("no %s entry for %q", e.Table, e.Key)
}

func (e ConfigurationLookupError) Is(target error) bool {
	return target == ErrConfigurationLookup
}

// ParseError reports a date or time value that does not match the layout
// configured for its location.
type ParseError struct {
	Field  string
	Value  string
	Layout string
	Err    error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("parse %s %q with layout %q: %v", e.Field, e.Value, e.Layout, e.Err)
}

func (e ParseError) Is(target error) bool {
	return target == ErrParse
}

func (e ParseError) Unwrap() error {
	return e.Err
}

// ErrorKind returns a short label for the error family, used in logs and
// metric labels.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedInput):
		return "malformed_input"
	case errors.Is(err, ErrConfigurationLookup):
		return "configuration_lookup"
	case errors.Is(err, ErrParse):
		return "parse"
	default:
		return "other"
	}
}
