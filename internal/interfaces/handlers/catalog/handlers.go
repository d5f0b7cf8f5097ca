package catalog

import (
	catalogsvc "hatchery-backend/internal/application/catalog"
	"hatchery-backend/internal/interfaces/handlers/httpx"
	"hatchery-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Resource serves list/get/create/update/delete for one reference table.
// Noun is the singular display name used in messages ("Flock").
type Resource[T any] struct {
	Service *catalogsvc.Service[T]
	Noun    string
	Plural  string
}

func (h *Resource[T]) List(c *fiber.Ctx) error {
	view, err := httpx.ParseView(c, h.Service.Resolve)
	if err != nil {
		return httpx.Fail(c, err)
	}
	rows, err := h.Service.List(c.UserContext(), view)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return response.List(c, h.Plural+" fetched successfully", rows,
		httpx.ListMeta(view, func(s string) string { return s }, len(rows), 0))
}

func (h *Resource[T]) Get(c *fiber.Ctx) error {
	row, err := h.Service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return httpx.Fail(c, err)
	}
	return response.Success(c, h.Noun+" fetched successfully", row, nil)
}

func (h *Resource[T]) Create(c *fiber.Ctx) error {
	row, err := h.Service.Create(c.UserContext(), c.Body())
	if err != nil {
		return httpx.Fail(c, err)
	}
	return response.SuccessCreated(c, h.Noun+" created successfully", row, nil)
}

func (h *Resource[T]) Update(c *fiber.Ctx) error {
	row, err := h.Service.Update(c.UserContext(), c.Params("id"), c.Body())
	if err != nil {
		return httpx.Fail(c, err)
	}
	return response.Success(c, h.Noun+" updated successfully", row, nil)
}

func (h *Resource[T]) Delete(c *fiber.Ctx) error {
	if err := h.Service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return httpx.Fail(c, err)
	}
	return response.Success(c, h.Noun+" deleted successfully", fiber.Map{"id": c.Params("id")}, nil)
}

// Register mounts the routes on r.
func (h *Resource[T]) Register(r fiber.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/:id", h.Get)
	r.Put("/:id", h.Update)
	r.Delete("/:id", h.Delete)
}

func mount[T any](r fiber.Router, path string, svc *catalogsvc.Service[T], noun, plural string) {
	(&Resource[T]{Service: svc, Noun: noun, Plural: plural}).Register(r.Group(path))
}

// Mount registers every catalog table under r.
func Mount(r fiber.Router, cat *catalogsvc.Catalog) {
	mount(r, "/flocks", cat.Flocks, "Flock", "Flocks")
	mount(r, "/breeds", cat.Breeds, "Breed", "Breeds")
	mount(r, "/suppliers", cat.Suppliers, "Supplier", "Suppliers")
	mount(r, "/staff", cat.Staff, "Staff member", "Staff")
	mount(r, "/egg-procurements", cat.EggProcurements, "Egg procurement", "Egg procurements")
	mount(r, "/chick-processing", cat.ChickProcessing, "Chick processing record", "Chick processing records")
	mount(r, "/egg-disposals", cat.EggDisposals, "Egg disposal", "Egg disposals")
}
