package hatchcycles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"hatchery-backend/internal/application/calculator"
	"hatchery-backend/internal/application/gateway"
	"hatchery-backend/internal/application/listview"
	"hatchery-backend/internal/domain"
	"hatchery-backend/internal/domain/hatchcycle"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// candlingFields are written together by RecordCandling.
var candlingFields = []hatchcycle.Field{hatchcycle.DateCandled, hatchcycle.CandlingClears, hatchcycle.CandlingEarlyDead}

// Service owns hatch cycle creation and every write that follows it.
type Service struct {
	Cycles    *gateway.Table[domain.HatchCycle]
	Events    *gateway.Table[domain.HatchCycleEvent]
	Flocks    *gateway.Table[domain.Flock]
	Suppliers calculator.SupplierResolver
	Calc      calculator.Calculator
	Now       func() time.Time
}

// NewService binds the hatch cycle, event and flock tables of db.
func NewService(db *gorm.DB, policy calculator.Policy) (*Service, error) {
	cycles, err := gateway.NewTable[domain.HatchCycle](db)
	if err != nil {
		return nil, err
	}
	events, err := gateway.NewTable[domain.HatchCycleEvent](db)
	if err != nil {
		return nil, err
	}
	flocks, err := gateway.NewTable[domain.Flock](db)
	if err != nil {
		return nil, err
	}
	return &Service{
		Cycles:    cycles,
		Events:    events,
		Flocks:    flocks,
		Suppliers: FlockDirectory{Flocks: flocks},
		Calc:      calculator.Calculator{Policy: policy},
		Now:       time.Now,
	}, nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// Create enters a new hatch cycle from a creation form keyed by column name or label.
// Derived fields are computed once here and the cycle starts OPEN.
func (s *Service) Create(ctx context.Context, form map[string]string, actor string) (*domain.HatchCycle, error) {
	patch := hatchcycle.Patch{}
	for key, raw := range form {
		f, ok := hatchcycle.Lookup(key)
		if !ok {
			return nil, fmt.Errorf("%w %q", calculator.ErrUnknownField, key)
		}
		if f == hatchcycle.Status {
			continue
		}
		if !f.Editable() && f != hatchcycle.HatchNo && !isCandling(f) {
			return nil, fmt.Errorf("%s: %w", f.Label(), ErrComputedField)
		}
		v, err := calculator.Parse(f, raw)
		if err != nil {
			return nil, err
		}
		if err := calculator.Check(f, v); err != nil {
			return nil, err
		}
		patch[f] = v
	}
	for _, f := range []hatchcycle.Field{hatchcycle.HatchNo, hatchcycle.EggsSet, hatchcycle.SetDate} {
		if _, ok := patch[f]; !ok {
			return nil, &calculator.ParseError{Field: f, Reason: "a value is required"}
		}
	}

	rec := &domain.HatchCycle{}
	patch.Apply(rec)

	if _, err := s.Cycles.FindOne(ctx, "hatch_no", rec.HatchNo); err == nil {
		return nil, ErrHatchNoTaken
	} else if !errors.Is(err, gateway.ErrNotFound) {
		return nil, err
	}

	rec.SupplierName = s.supplierName(ctx, rec.SupplierFlockNumber)
	s.Calc.Derive(rec)
	now := s.now()
	rec.Status = domain.StatusOpen
	rec.CreatedBy, rec.UpdatedBy = actor, actor
	rec.CreatedAt, rec.UpdatedAt = now, now

	if err := s.Cycles.Insert(ctx, rec); err != nil {
		if errors.Is(err, gateway.ErrDuplicate) {
			return nil, ErrHatchNoTaken
		}
		return nil, err
	}
	s.record(ctx, rec.ID, domain.EventCreated, actor, patch)
	log.Info().Str("hatch_no", rec.HatchNo).Str("actor", actor).Msg("hatchcycles: created")
	return rec, nil
}

// List returns the cycles visible under view.
func (s *Service) List(ctx context.Context, view listview.View[hatchcycle.Field]) ([]*domain.HatchCycle, error) {
	rows, err := s.Cycles.List(ctx, "hatch_no")
	if err != nil {
		return nil, err
	}
	recs := make([]*domain.HatchCycle, len(rows))
	for i := range rows {
		recs[i] = &rows[i]
	}
	return listview.Apply(view, recs, hatchcycle.Value), nil
}

// Get loads one cycle.
func (s *Service) Get(ctx context.Context, id string) (*domain.HatchCycle, error) {
	rec, err := s.Cycles.Get(ctx, id)
	if errors.Is(err, gateway.ErrNotFound) {
		return nil, ErrNotFound
	}
	return rec, err
}

// Prepare validates raw as the new value of f on rec and returns the full patch to
// write: the field, its dependents, the resolved supplier name and the audit stamp.
// rec is not modified.
func (s *Service) Prepare(ctx context.Context, rec *domain.HatchCycle, f hatchcycle.Field, raw, actor string) (hatchcycle.Patch, error) {
	res, err := s.Calc.ComputePatch(rec, f, raw)
	if err != nil {
		return nil, err
	}
	if res.ResolveSupplier {
		res.Patch[hatchcycle.SupplierName] = s.supplierName(ctx, res.FlockNumber)
	}
	s.stamp(res.Patch, actor)
	return res.Patch, nil
}

// Persist writes patch to the cycle and appends it to the cycle's history.
func (s *Service) Persist(ctx context.Context, id string, patch hatchcycle.Patch, action, actor string) error {
	if err := s.Cycles.Update(ctx, id, patch.Columns()); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.record(ctx, id, action, actor, patch)
	return nil
}

// Commit applies a single-cell edit to the stored cycle and returns the result.
func (s *Service) Commit(ctx context.Context, id string, f hatchcycle.Field, raw, actor string) (*domain.HatchCycle, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch, err := s.Prepare(ctx, rec, f, raw, actor)
	if err != nil {
		return nil, err
	}
	if err := s.Persist(ctx, id, patch, domain.EventEdited, actor); err != nil {
		return nil, err
	}
	patch.Apply(rec)
	return rec, nil
}

// ToggleStatus flips OPEN and CLOSED. Nothing else changes.
func (s *Service) ToggleStatus(ctx context.Context, id, actor string) (*domain.HatchCycle, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch := hatchcycle.Patch{hatchcycle.Status: rec.Status.Toggle()}
	s.stamp(patch, actor)
	if err := s.Persist(ctx, id, patch, domain.EventStatus, actor); err != nil {
		return nil, err
	}
	patch.Apply(rec)
	return rec, nil
}

// RecordCandling writes the candling group. Keys absent from form are left alone;
// blank values clear.
func (s *Service) RecordCandling(ctx context.Context, id string, form map[string]string, actor string) (*domain.HatchCycle, error) {
	patch := hatchcycle.Patch{}
	for key, raw := range form {
		f, ok := hatchcycle.Lookup(key)
		if !ok || !isCandling(f) {
			return nil, fmt.Errorf("%w %q", calculator.ErrUnknownField, key)
		}
		v, err := calculator.Parse(f, raw)
		if err != nil {
			return nil, err
		}
		if err := calculator.Check(f, v); err != nil {
			return nil, err
		}
		patch[f] = v
	}
	if len(patch) == 0 {
		return nil, ErrNothingToRecord
	}

	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.stamp(patch, actor)
	if err := s.Persist(ctx, id, patch, domain.EventCandling, actor); err != nil {
		return nil, err
	}
	patch.Apply(rec)
	return rec, nil
}

// History returns the cycle's change trail, oldest first.
func (s *Service) History(ctx context.Context, id string) ([]domain.HatchCycleEvent, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.Events.FindAll(ctx, "hatch_cycle_id", id, "created_at")
}

// FlockOptions lists every flock for the supplier flock number picker.
func (s *Service) FlockOptions(ctx context.Context) ([]domain.Flock, error) {
	return s.Flocks.List(ctx, "flock_number")
}

func (s *Service) supplierName(ctx context.Context, flockNumber string) string {
	if s.Suppliers == nil || strings.TrimSpace(flockNumber) == "" {
		return ""
	}
	name, err := s.Suppliers.SupplierFor(ctx, flockNumber)
	if err != nil {
		log.Warn().Err(err).Str("flock_number", flockNumber).Msg("hatchcycles: supplier lookup failed")
		return ""
	}
	return name
}

func (s *Service) stamp(p hatchcycle.Patch, actor string) {
	p[hatchcycle.UpdatedBy] = actor
	p[hatchcycle.UpdatedAt] = s.now()
}

// record appends to the history. A failure is logged and does not undo the write.
func (s *Service) record(ctx context.Context, id, action, actor string, patch hatchcycle.Patch) {
	if s.Events == nil {
		return
	}
	body, err := json.Marshal(patch)
	if err != nil {
		log.Warn().Err(err).Str("hatch_cycle_id", id).Msg("hatchcycles: encode history patch")
		return
	}
	ev := &domain.HatchCycleEvent{
		HatchCycleID: id,
		Action:       action,
		Actor:        actor,
		Patch:        datatypes.JSON(body),
		CreatedAt:    s.now(),
	}
	if err := s.Events.Insert(context.WithoutCancel(ctx), ev); err != nil {
		log.Warn().Err(err).Str("hatch_cycle_id", id).Str("action", action).Msg("hatchcycles: history write failed")
	}
}

func isCandling(f hatchcycle.Field) bool {
	for _, c := range candlingFields {
		if c == f {
			return true
		}
	}
	return false
}
