package calculator

import (
	"math"
	"strconv"
	"strings"
	"time"

	"hatchery-backend/internal/domain"
	"hatchery-backend/internal/domain/hatchcycle"

	"github.com/shopspring/decimal"
)

var (
	zero    = decimal.Zero
	hundred = decimal.NewFromInt(100)
)

// maxCases keeps the derived EGGS RECVD within 32 bits.
const maxCases = math.MaxInt32 / EggsPerCase

// Parse converts draft text into the canonical patch value of f (see hatchcycle.Patch).
// Blank text clears optional fields and is rejected for required ones.
func Parse(f hatchcycle.Field, raw string) (any, error) {
	if !f.Valid() {
		return nil, ErrUnknownField
	}
	text := strings.TrimSpace(raw)
	if text == "" && f.Required() {
		return nil, &ParseError{Field: f, Value: raw, Reason: "a value is required"}
	}

	switch f.Kind() {
	case hatchcycle.KindText:
		return text, nil
	case hatchcycle.KindList:
		return domain.ParseFlockList(text), nil
	case hatchcycle.KindInt:
		if text == "" {
			return (*int)(nil), nil
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			return nil, &ParseError{Field: f, Value: raw, Reason: "expected a whole number"}
		}
		return &n, nil
	case hatchcycle.KindDecimal:
		if text == "" {
			return decimal.NullDecimal{}, nil
		}
		d, err := decimal.NewFromString(text)
		if err != nil {
			return nil, &ParseError{Field: f, Value: raw, Reason: "expected a number"}
		}
		if !d.Equal(d.Round(2)) {
			return nil, &ParseError{Field: f, Value: raw, Reason: "at most two decimal places"}
		}
		return decimal.NewNullDecimal(d), nil
	case hatchcycle.KindDate:
		if text == "" {
			return (*time.Time)(nil), nil
		}
		t, err := time.Parse(hatchcycle.DateLayout, text)
		if err != nil {
			return nil, &ParseError{Field: f, Value: raw, Reason: "expected a date (YYYY-MM-DD)"}
		}
		return &t, nil
	case hatchcycle.KindColour:
		if text == "" {
			return domain.ColourCode(""), nil
		}
		c, err := domain.ParseColourCode(text)
		if err != nil {
			return nil, &ParseError{Field: f, Value: raw, Reason: "expected one of the six hatch colours"}
		}
		return c, nil
	case hatchcycle.KindStatus:
		s, err := domain.ParseStatus(text)
		if err != nil {
			return nil, &ParseError{Field: f, Value: raw, Reason: "expected OPEN or CLOSED"}
		}
		return s, nil
	case hatchcycle.KindTimestamp:
		t, err := time.Parse(time.RFC3339, text)
		if err != nil {
			return nil, &ParseError{Field: f, Value: raw, Reason: "expected an RFC 3339 timestamp"}
		}
		return t, nil
	}
	return nil, ErrUnknownField
}

// Check enforces the domain bounds of a parsed value.
func Check(f hatchcycle.Field, v any) error {
	switch f {
	case hatchcycle.PctAdj:
		if d, ok := v.(decimal.NullDecimal); ok && d.Valid && (d.Decimal.LessThan(zero) || d.Decimal.GreaterThan(hundred)) {
			return &RangeError{Field: f, Value: d.Decimal.String(), Bound: "must be between 0 and 100"}
		}
	case hatchcycle.AvgEggWgt, hatchcycle.AvgChicksWgt:
		if d, ok := v.(decimal.NullDecimal); ok && d.Valid && !d.Decimal.IsPositive() {
			return &RangeError{Field: f, Value: d.Decimal.String(), Bound: "must be greater than 0"}
		}
	case hatchcycle.CasesRecd:
		if n, ok := v.(*int); ok && n != nil && (*n < 0 || *n > maxCases) {
			return &RangeError{Field: f, Value: strconv.Itoa(*n), Bound: "must be between 0 and " + strconv.Itoa(maxCases)}
		}
	default:
		if n, ok := v.(*int); ok && n != nil && *n < 0 {
			return &RangeError{Field: f, Value: strconv.Itoa(*n), Bound: "must not be negative"}
		}
	}
	return nil
}
