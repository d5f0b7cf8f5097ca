package calculator

import (
	"errors"
	"fmt"

	"hatchery-backend/internal/domain/hatchcycle"
)

var (
	ErrNotEditable  = errors.New("field is not editable")
	ErrUnknownField = errors.New("unknown field")
)

// ParseError means the draft text does not match the field's type.
type ParseError struct {
	Field  hatchcycle.Field
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: cannot use %q: %s", e.Field.Label(), e.Value, e.Reason)
}

// RangeError means the parsed value lies outside the field's declared bounds.
type RangeError struct {
	Field hatchcycle.Field
	Value string
	Bound string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: %s %s", e.Field.Label(), e.Value, e.Bound)
}

// IsValidation reports whether err is a local validation failure that blocks a commit
// until the draft is corrected or cancelled.
func IsValidation(err error) bool {
	var pe *ParseError
	var re *RangeError
	return errors.As(err, &pe) || errors.As(err, &re) || errors.Is(err, ErrNotEditable) || errors.Is(err, ErrUnknownField)
}
