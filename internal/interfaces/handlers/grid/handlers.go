package grid

import (
	"encoding/json"
	"time"

	gridsvc "hatchery-backend/internal/application/grid"
	"hatchery-backend/internal/application/listview"
	"hatchery-backend/internal/domain"
	"hatchery-backend/internal/domain/hatchcycle"
	"hatchery-backend/internal/interfaces/handlers/httpx"
	"hatchery-backend/internal/middleware"
	"hatchery-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Registry *gridsvc.Registry
}

// Page is the grid as the client renders it.
type Page struct {
	Rows     []*domain.HatchCycle `json:"rows"`
	Flocks   []domain.Flock       `json:"flocks"`
	Editor   gridsvc.Snapshot     `json:"editor"`
	LoadedAt time.Time            `json:"loaded_at"`
}

type selectBody struct {
	RecordID string `json:"record_id"`
	Field    string `json:"field"`
}

type editBody struct {
	Draft json.RawMessage `json:"draft"`
}

type viewBody struct {
	Filters map[string]string `json:"filters"`
	Sort    string            `json:"sort"`
}

// workspaceKey names the caller's workspace: the session, or the user without one.
func workspaceKey(c *fiber.Ctx) string {
	if sid := middleware.GetSessionID(c); sid != "" {
		return sid
	}
	return middleware.Actor(c)
}

func (h *Handlers) workspace(c *fiber.Ctx) (*gridsvc.Workspace, error) {
	return h.Registry.Get(workspaceKey(c))
}

func page(ws *gridsvc.Workspace) (Page, response.ListMeta) {
	rows := ws.Sheet.Visible()
	p := Page{
		Rows:     rows,
		Flocks:   ws.Sheet.Flocks(),
		Editor:   ws.Editor.Snapshot(),
		LoadedAt: ws.Sheet.LoadedAt(),
	}
	return p, httpx.ListMeta(ws.Sheet.View(), hatchcycle.Field.Column, len(rows), ws.Sheet.Len())
}

func (h *Handlers) reply(c *fiber.Ctx, ws *gridsvc.Workspace, message string) error {
	p, meta := page(ws)
	return response.List(c, message, p, meta)
}

// editorFail reports an editor error with the editor state in details, so the
// client can keep the draft and show the inline error or banner.
func editorFail(c *fiber.Ctx, ws *gridsvc.Workspace, err error) error {
	return httpx.FailWith(c, err, fiber.Map{"editor": ws.Editor.Snapshot()})
}

// POST /api/v1/grid/load — opens the caller's workspace and refetches the working set.
func (h *Handlers) Load(c *fiber.Ctx) error {
	ws := h.Registry.Open(workspaceKey(c), middleware.Actor(c))
	if err := ws.Sheet.Load(c.UserContext()); err != nil {
		return httpx.Fail(c, err)
	}
	return h.reply(c, ws, "Grid loaded successfully")
}

// GET /api/v1/grid
func (h *Handlers) Get(c *fiber.Ctx) error {
	ws, err := h.workspace(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return h.reply(c, ws, "Grid fetched successfully")
}

// PUT /api/v1/grid/view with {"filters": {"hatch_no": "h-"}, "sort": "-set_date"}
func (h *Handlers) SetView(c *fiber.Ctx) error {
	ws, err := h.workspace(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	var body viewBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return httpx.Fail(c, httpx.ErrInvalidBody)
	}
	view, err := listview.ParseQuery(httpx.ViewQuery(body.Filters, body.Sort), hatchcycle.Lookup)
	if err != nil {
		return httpx.Fail(c, err)
	}
	ws.Sheet.SetView(view)
	return h.reply(c, ws, "View updated successfully")
}

// POST /api/v1/grid/select with {"record_id": "...", "field": "eggs_set"}
func (h *Handlers) Select(c *fiber.Ctx) error {
	ws, err := h.workspace(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	var body selectBody
	if err := json.Unmarshal(c.Body(), &body); err != nil || body.RecordID == "" {
		return httpx.Fail(c, httpx.ErrInvalidBody)
	}
	f, ok := hatchcycle.Lookup(body.Field)
	if !ok {
		return response.Error(c, "Unknown field", fiber.StatusBadRequest, fiber.Map{"field": body.Field})
	}
	if err := ws.Editor.Select(c.UserContext(), body.RecordID, f); err != nil {
		return editorFail(c, ws, err)
	}
	return response.Success(c, "Editing "+f.Label(), ws.Editor.Snapshot(), nil)
}

// POST /api/v1/grid/edit with {"draft": ...}
func (h *Handlers) Edit(c *fiber.Ctx) error {
	ws, err := h.workspace(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	var body editBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return httpx.Fail(c, httpx.ErrInvalidBody)
	}
	draft := ""
	if len(body.Draft) > 0 {
		var v any
		if err := json.Unmarshal(body.Draft, &v); err != nil {
			return httpx.Fail(c, httpx.ErrInvalidBody)
		}
		if draft, err = httpx.Draft(v); err != nil {
			return httpx.Fail(c, httpx.ErrInvalidBody)
		}
	}
	if err := ws.Editor.Edit(draft); err != nil {
		return editorFail(c, ws, err)
	}
	return response.Success(c, "Draft updated", ws.Editor.Snapshot(), nil)
}

// POST /api/v1/grid/confirm — Enter/Tab: save and move to the next editable field.
func (h *Handlers) Confirm(c *fiber.Ctx) error {
	ws, err := h.workspace(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	if err := ws.Editor.Confirm(c.UserContext()); err != nil {
		return editorFail(c, ws, err)
	}
	return h.reply(c, ws, "Cell saved successfully")
}

// POST /api/v1/grid/blur — focus left the grid: save and stop editing.
func (h *Handlers) Blur(c *fiber.Ctx) error {
	ws, err := h.workspace(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	if err := ws.Editor.Blur(c.UserContext()); err != nil {
		return editorFail(c, ws, err)
	}
	return h.reply(c, ws, "Cell saved successfully")
}

// POST /api/v1/grid/cancel — Escape: drop the draft.
func (h *Handlers) Cancel(c *fiber.Ctx) error {
	ws, err := h.workspace(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	ws.Editor.Cancel()
	return response.Success(c, "Edit cancelled", ws.Editor.Snapshot(), nil)
}

// DELETE /api/v1/grid/banner
func (h *Handlers) DismissBanner(c *fiber.Ctx) error {
	ws, err := h.workspace(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	ws.Editor.DismissBanner()
	return response.Success(c, "Banner dismissed", ws.Editor.Snapshot(), nil)
}

// Register mounts the routes on r.
func (h *Handlers) Register(r fiber.Router) {
	r.Get("/", h.Get)
	r.Post("/load", h.Load)
	r.Put("/view", h.SetView)
	r.Post("/select", h.Select)
	r.Post("/edit", h.Edit)
	r.Post("/confirm", h.Confirm)
	r.Post("/blur", h.Blur)
	r.Post("/cancel", h.Cancel)
	r.Delete("/banner", h.DismissBanner)
}
