package grid

import (
	"context"
	"fmt"
	"sync"

	"hatchery-backend/internal/application/calculator"
	"hatchery-backend/internal/domain/hatchcycle"

	"github.com/rs/zerolog/log"
)

// Committer is what the editor needs from the page it edits.
type Committer interface {
	CellText(id string, f hatchcycle.Field) (string, bool)
	Commit(ctx context.Context, id string, f hatchcycle.Field, draft, actor string) error
}

type State int

const (
	Idle State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "idle"
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Cell addresses one field of one record.
type Cell struct {
	RecordID string           `json:"record_id"`
	Field    hatchcycle.Field `json:"field"`
}

// Snapshot is the editor state reported to the client. Invalid is the validation
// message blocking the current draft; Banner is the page-level error from the last
// failed save.
type Snapshot struct {
	State   State  `json:"state"`
	Cell    *Cell  `json:"cell,omitempty"`
	Draft   string `json:"draft,omitempty"`
	Invalid string `json:"invalid,omitempty"`
	Banner  string `json:"banner,omitempty"`
}

// Editor is the inline cell editor: Idle, or Editing one cell with a draft.
// Switching cells saves the outgoing draft in the background without waiting for
// it; concurrent saves to the same record are last-write-wins.
type Editor struct {
	page  Committer
	actor string

	mu      sync.Mutex
	state   State
	cell    Cell
	draft   string
	invalid error
	banner  string

	inflight sync.WaitGroup
}

func NewEditor(page Committer, actor string) *Editor {
	return &Editor{page: page, actor: actor}
}

// Select starts editing a cell, its draft set to the cell's current text. When
// another cell is being edited its draft is saved in the background first.
func (e *Editor) Select(ctx context.Context, id string, f hatchcycle.Field) error {
	if !f.Editable() {
		return ErrNotEditable
	}
	text, ok := e.page.CellText(id, f)
	if !ok {
		return ErrRowNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	next := Cell{RecordID: id, Field: f}
	if e.state == Editing {
		if e.cell == next {
			return nil
		}
		e.saveInBackground(ctx, e.cell, e.draft)
	}
	e.state, e.cell, e.draft, e.invalid = Editing, next, text, nil
	return nil
}

// Edit replaces the draft.
func (e *Editor) Edit(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Editing {
		return ErrNotEditing
	}
	e.draft, e.invalid = text, nil
	return nil
}

// Confirm saves the draft and moves to the next editable field of the same record,
// or to Idle after the last one. A draft that fails validation keeps the editor on
// the cell; a failed save leaves editing with the row unchanged.
func (e *Editor) Confirm(ctx context.Context) error {
	return e.finish(ctx, true)
}

// Blur saves the draft and returns to Idle.
func (e *Editor) Blur(ctx context.Context) error {
	return e.finish(ctx, false)
}

// Cancel drops the draft without saving.
func (e *Editor) Cancel() {
	e.mu.Lock()
	e.state, e.cell, e.draft, e.invalid = Idle, Cell{}, "", nil
	e.mu.Unlock()
}

func (e *Editor) finish(ctx context.Context, advance bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Editing {
		return ErrNotEditing
	}

	cell := e.cell
	err := e.page.Commit(ctx, cell.RecordID, cell.Field, e.draft, e.actor)
	if err != nil && calculator.IsValidation(err) {
		e.invalid = err
		return err
	}
	e.state, e.cell, e.draft, e.invalid = Idle, Cell{}, "", nil
	if err != nil {
		log.Warn().Err(err).Str("record_id", cell.RecordID).Str("field", cell.Field.Column()).Msg("grid: save failed")
		e.banner = saveFailed(cell, err)
		return err
	}
	e.banner = ""

	if !advance {
		return nil
	}
	f, ok := hatchcycle.NextEditable(cell.Field)
	if !ok {
		return nil
	}
	text, ok := e.page.CellText(cell.RecordID, f)
	if !ok {
		return nil
	}
	e.state, e.cell, e.draft = Editing, Cell{RecordID: cell.RecordID, Field: f}, text
	return nil
}

// saveInBackground commits a draft nobody waits for. Its failure, validation
// included, can only be reported through the banner. Callers hold e.mu.
func (e *Editor) saveInBackground(ctx context.Context, cell Cell, draft string) {
	ctx = context.WithoutCancel(ctx)
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		if err := e.page.Commit(ctx, cell.RecordID, cell.Field, draft, e.actor); err != nil {
			log.Warn().Err(err).Str("record_id", cell.RecordID).Str("field", cell.Field.Column()).Msg("grid: background save failed")
			e.mu.Lock()
			e.banner = saveFailed(cell, err)
			e.mu.Unlock()
		}
	}()
}

// Snapshot returns the current state.
func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := Snapshot{State: e.state, Banner: e.banner}
	if e.state == Editing {
		c := e.cell
		s.Cell, s.Draft = &c, e.draft
		if e.invalid != nil {
			s.Invalid = e.invalid.Error()
		}
	}
	return s
}

func (e *Editor) Banner() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.banner
}

func (e *Editor) DismissBanner() {
	e.mu.Lock()
	e.banner = ""
	e.mu.Unlock()
}

// Wait blocks until every background save has finished.
func (e *Editor) Wait() {
	e.inflight.Wait()
}

func saveFailed(c Cell, err error) string {
	return fmt.Sprintf("Could not save %s on %s: %v", c.Field.Label(), c.RecordID, err)
}
