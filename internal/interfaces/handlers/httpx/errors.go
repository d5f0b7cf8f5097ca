// Package httpx holds what every handler package shares: the mapping from
// application errors to HTTP responses and request decoding helpers.
package httpx

import (
	"errors"

	"hatchery-backend/internal/application/calculator"
	"hatchery-backend/internal/application/catalog"
	"hatchery-backend/internal/application/gateway"
	"hatchery-backend/internal/application/grid"
	"hatchery-backend/internal/application/hatchcycles"
	"hatchery-backend/internal/application/listview"
	"hatchery-backend/internal/middleware"
	"hatchery-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// MsgStoreUnavailable is the banner text for a failed read or write of the hosted tables.
const MsgStoreUnavailable = "The hatchery records could not be reached. Your change was not saved."

// Fail writes err as an error response. Validation failures are 422 with the
// offending field in details, bad input 400, missing rows 404, conflicts 409 and
// store failures 502. Anything else goes to the global error handler.
func Fail(c *fiber.Ctx, err error) error {
	return FailWith(c, err, nil)
}

// FailWith is Fail with extra entries merged into details.
func FailWith(c *fiber.Ctx, err error, extra fiber.Map) error {
	code, details := Classify(err)
	if code == 0 {
		return err
	}
	for k, v := range extra {
		details[k] = v
	}
	message := err.Error()
	if code == fiber.StatusBadGateway {
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("gateway: store request failed")
		message = MsgStoreUnavailable
	}
	return response.Error(c, message, code, details)
}

// Classify returns the status code and details for err, or 0 when err is not an
// application error.
func Classify(err error) (int, fiber.Map) {
	var (
		pe *calculator.ParseError
		re *calculator.RangeError
		ve *catalog.ValidationError
		ge *gateway.Error
	)
	details := fiber.Map{}
	switch {
	case errors.As(err, &pe):
		details["field"] = pe.Field.Column()
		details["label"] = pe.Field.Label()
		details["value"] = pe.Value
		details["reason"] = pe.Reason
		return fiber.StatusUnprocessableEntity, details
	case errors.As(err, &re):
		details["field"] = re.Field.Column()
		details["label"] = re.Field.Label()
		details["value"] = re.Value
		details["reason"] = re.Bound
		return fiber.StatusUnprocessableEntity, details
	case errors.Is(err, calculator.ErrNotEditable), errors.Is(err, hatchcycles.ErrComputedField):
		return fiber.StatusUnprocessableEntity, details
	case errors.As(err, &ve),
		errors.Is(err, calculator.ErrUnknownField),
		errors.Is(err, listview.ErrUnknownColumn),
		errors.Is(err, listview.ErrInvalidQuery),
		errors.Is(err, ErrInvalidBody),
		errors.Is(err, gateway.ErrUnknownColumn),
		errors.Is(err, hatchcycles.ErrNothingToRecord):
		return fiber.StatusBadRequest, details
	case errors.Is(err, hatchcycles.ErrNotFound),
		errors.Is(err, gateway.ErrNotFound),
		errors.Is(err, grid.ErrRowNotFound):
		return fiber.StatusNotFound, details
	case errors.Is(err, hatchcycles.ErrHatchNoTaken),
		errors.Is(err, gateway.ErrDuplicate),
		errors.Is(err, grid.ErrNoWorkspace),
		errors.Is(err, grid.ErrNotEditing):
		return fiber.StatusConflict, details
	case errors.As(err, &ge):
		details["op"] = ge.Op
		details["table"] = ge.Table
		return fiber.StatusBadGateway, details
	}
	return 0, nil
}
