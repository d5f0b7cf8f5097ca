package hatchcycles

import (
	"net/url"

	cyclesvc "hatchery-backend/internal/application/hatchcycles"
	"hatchery-backend/internal/domain/hatchcycle"
	"hatchery-backend/internal/interfaces/handlers/httpx"
	"hatchery-backend/internal/middleware"
	"hatchery-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *cyclesvc.Service
}

// GET /api/v1/hatch-cycles?sort=-set_date&filter.hatch_no=H-
func (h *Handlers) List(c *fiber.Ctx) error {
	view, err := httpx.ParseView(c, hatchcycle.Lookup)
	if err != nil {
		return httpx.Fail(c, err)
	}
	rows, err := h.Service.List(c.UserContext(), view)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return response.List(c, "Hatch cycles fetched successfully", rows,
		httpx.ListMeta(view, hatchcycle.Field.Column, len(rows), 0))
}

// GET /api/v1/hatch-cycles/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	rec, err := h.Service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return httpx.Fail(c, err)
	}
	return response.Success(c, "Hatch cycle fetched successfully", rec, nil)
}

// POST /api/v1/hatch-cycles — 201 with the created cycle and its derived fields
func (h *Handlers) Create(c *fiber.Ctx) error {
	form, err := httpx.Form(c.Body())
	if err != nil {
		return httpx.Fail(c, err)
	}
	rec, err := h.Service.Create(c.UserContext(), form, middleware.Actor(c))
	if err != nil {
		return httpx.Fail(c, err)
	}
	return response.SuccessCreated(c, "Hatch cycle created successfully", rec, nil)
}

// PATCH /api/v1/hatch-cycles/:id/cells/:field with {"value": ...} — commits one cell
// and returns the record with every derived field refreshed. A null value clears.
func (h *Handlers) CommitCell(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("field"))
	if err != nil {
		return response.BadRequest(c, "Invalid field")
	}
	f, ok := hatchcycle.Lookup(name)
	if !ok {
		return response.Error(c, "Unknown field", fiber.StatusBadRequest, fiber.Map{"field": name})
	}

	form, err := httpx.Form(c.Body())
	if err != nil {
		return httpx.Fail(c, err)
	}
	draft, ok := form["value"]
	if !ok {
		return response.BadRequest(c, "Missing required field: value")
	}

	rec, err := h.Service.Commit(c.UserContext(), c.Params("id"), f, draft, middleware.Actor(c))
	if err != nil {
		return httpx.Fail(c, err)
	}
	return response.Success(c, "Hatch cycle updated successfully", rec, fiber.Map{"field": f})
}

// POST /api/v1/hatch-cycles/:id/toggle-status
func (h *Handlers) ToggleStatus(c *fiber.Ctx) error {
	rec, err := h.Service.ToggleStatus(c.UserContext(), c.Params("id"), middleware.Actor(c))
	if err != nil {
		return httpx.Fail(c, err)
	}
	return response.Success(c, "Hatch cycle is now "+string(rec.Status), rec, nil)
}

// PUT /api/v1/hatch-cycles/:id/candling
func (h *Handlers) RecordCandling(c *fiber.Ctx) error {
	form, err := httpx.Form(c.Body())
	if err != nil {
		return httpx.Fail(c, err)
	}
	rec, err := h.Service.RecordCandling(c.UserContext(), c.Params("id"), form, middleware.Actor(c))
	if err != nil {
		return httpx.Fail(c, err)
	}
	return response.Success(c, "Candling recorded successfully", rec, nil)
}

// GET /api/v1/hatch-cycles/:id/history
func (h *Handlers) History(c *fiber.Ctx) error {
	events, err := h.Service.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return httpx.Fail(c, err)
	}
	return response.Success(c, "History fetched successfully", events, fiber.Map{"count": len(events)})
}

// GET /api/v1/hatch-cycles/flock-options — flocks for the supplier flock number picker
func (h *Handlers) FlockOptions(c *fiber.Ctx) error {
	flocks, err := h.Service.FlockOptions(c.UserContext())
	if err != nil {
		return httpx.Fail(c, err)
	}
	return response.Success(c, "Flocks fetched successfully", flocks, nil)
}

// Register mounts the routes on r.
func (h *Handlers) Register(r fiber.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/flock-options", h.FlockOptions)
	r.Get("/:id", h.Get)
	r.Patch("/:id/cells/:field", h.CommitCell)
	r.Post("/:id/toggle-status", h.ToggleStatus)
	r.Put("/:id/candling", h.RecordCandling)
	r.Get("/:id/history", h.History)
}
