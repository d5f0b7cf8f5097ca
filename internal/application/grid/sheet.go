package grid

import (
	"context"
	"sync"
	"time"

	"hatchery-backend/internal/application/hatchcycles"
	"hatchery-backend/internal/application/listview"
	"hatchery-backend/internal/domain"
	"hatchery-backend/internal/domain/hatchcycle"

	"golang.org/x/sync/errgroup"
)

// Sheet is the in-memory working set of one hatch cycle page plus its filter and
// sort state. Rows are replaced, never mutated, so a slice returned by Visible
// stays valid after later commits.
type Sheet struct {
	svc *hatchcycles.Service

	mu       sync.RWMutex
	rows     []*domain.HatchCycle
	index    map[string]int
	flocks   []domain.Flock
	view     listview.View[hatchcycle.Field]
	loadedAt time.Time
}

func NewSheet(svc *hatchcycles.Service) *Sheet {
	return &Sheet{svc: svc, index: map[string]int{}}
}

// Load refetches the cycles and the flock picker options.
func (s *Sheet) Load(ctx context.Context) error {
	var (
		cycles []domain.HatchCycle
		flocks []domain.Flock
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cycles, err = s.svc.Cycles.List(gctx, "hatch_no")
		return err
	})
	g.Go(func() error {
		var err error
		flocks, err = s.svc.FlockOptions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	rows := make([]*domain.HatchCycle, len(cycles))
	index := make(map[string]int, len(cycles))
	for i := range cycles {
		rows[i] = &cycles[i]
		index[cycles[i].ID] = i
	}

	s.mu.Lock()
	s.rows, s.index, s.flocks = rows, index, flocks
	s.loadedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// Visible is the filtered, sorted view of the loaded rows.
func (s *Sheet) Visible() []*domain.HatchCycle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listview.Apply(s.view, s.rows, hatchcycle.Value)
}

func (s *Sheet) View() listview.View[hatchcycle.Field] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.Clone()
}

func (s *Sheet) SetView(v listview.View[hatchcycle.Field]) {
	s.mu.Lock()
	s.view = v.Clone()
	s.mu.Unlock()
}

// Len is the number of loaded rows, before filtering.
func (s *Sheet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

func (s *Sheet) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

func (s *Sheet) Flocks() []domain.Flock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flocks
}

// Row returns the loaded record with the given id.
func (s *Sheet) Row(id string) (*domain.HatchCycle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.rows[i], true
}

// CellText is the editor text of one loaded cell.
func (s *Sheet) CellText(id string, f hatchcycle.Field) (string, bool) {
	rec, ok := s.Row(id)
	if !ok {
		return "", false
	}
	return hatchcycle.Text(rec, f), true
}

// Commit validates draft against the loaded row, writes the resulting patch and,
// only once the write succeeded, merges the patch into the loaded row.
func (s *Sheet) Commit(ctx context.Context, id string, f hatchcycle.Field, draft, actor string) error {
	current, ok := s.Row(id)
	if !ok {
		return ErrRowNotFound
	}
	patch, err := s.svc.Prepare(ctx, current, f, draft, actor)
	if err != nil {
		return err
	}
	if err := s.svc.Persist(ctx, id, patch, domain.EventEdited, actor); err != nil {
		return err
	}
	s.merge(id, patch)
	return nil
}

func (s *Sheet) merge(id string, patch hatchcycle.Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return
	}
	next := *s.rows[i]
	patch.Apply(&next)
	s.rows[i] = &next
}
