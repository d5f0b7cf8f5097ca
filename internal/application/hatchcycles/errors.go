package hatchcycles

import "errors"

var (
	ErrNotFound        = errors.New("Hatch cycle not found")
	ErrHatchNoTaken    = errors.New("Hatch number is already in use")
	ErrComputedField   = errors.New("field is computed and cannot be entered")
	ErrNothingToRecord = errors.New("no candling values given")
)
