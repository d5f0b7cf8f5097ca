package grid

import (
	"context"
	"testing"
	"time"

	"hatchery-backend/internal/application/calculator"
	"hatchery-backend/internal/application/hatchcycles"
	"hatchery-backend/internal/application/listview"
	"hatchery-backend/internal/domain"
	"hatchery-backend/internal/domain/hatchcycle"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupSheet(t *testing.T) (*Sheet, *hatchcycles.Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.HatchCycle{}, &domain.HatchCycleEvent{}, &domain.Flock{}))

	svc, err := hatchcycles.NewService(db, calculator.Policy{})
	require.NoError(t, err)
	return NewSheet(svc), svc, db
}

func seedCycle(t *testing.T, svc *hatchcycles.Service, hatchNo, eggsSet, cases string) *domain.HatchCycle {
	form := map[string]string{"hatch_no": hatchNo, "eggs_set": eggsSet, "set_date": "2024-03-01"}
	if cases != "" {
		form["cases_recd"] = cases
	}
	rec, err := svc.Create(context.Background(), form, "seed")
	require.NoError(t, err)
	return rec
}

func TestSheet_LoadAndView(t *testing.T) {
	sheet, svc, db := setupSheet(t)
	require.NoError(t, db.Create(&domain.Flock{FlockNumber: "FL-1", SupplierName: "North"}).Error)
	seedCycle(t, svc, "H-002", "200", "")
	seedCycle(t, svc, "H-001", "300", "")
	seedCycle(t, svc, "X-003", "100", "")

	require.NoError(t, sheet.Load(context.Background()))
	assert.Equal(t, 3, sheet.Len())
	assert.Len(t, sheet.Flocks(), 1)
	assert.False(t, sheet.LoadedAt().IsZero())

	sheet.SetView(listview.View[hatchcycle.Field]{
		Filters: map[hatchcycle.Field]string{hatchcycle.HatchNo: "h-"},
		Sort:    &listview.SortKey[hatchcycle.Field]{Column: hatchcycle.EggsSet, Desc: true},
	})
	rows := sheet.Visible()
	require.Len(t, rows, 2)
	assert.Equal(t, "H-001", rows[0].HatchNo)
	assert.Equal(t, "H-002", rows[1].HatchNo)
	assert.Equal(t, 3, sheet.Len())
}

func TestSheet_CommitMergesOnSuccess(t *testing.T) {
	sheet, svc, _ := setupSheet(t)
	rec := seedCycle(t, svc, "H-001", "14000", "40")
	require.NoError(t, sheet.Load(context.Background()))
	before, _ := sheet.Row(rec.ID)

	require.NoError(t, sheet.Commit(context.Background(), rec.ID, hatchcycle.EggsSet, "14300", "ops"))

	after, ok := sheet.Row(rec.ID)
	require.True(t, ok)
	assert.Equal(t, 14300, after.EggsSet)
	assert.Equal(t, 100, *after.EggsCracked)
	assert.Equal(t, "ops", after.UpdatedBy)
	assert.Equal(t, 14000, before.EggsSet, "earlier snapshots are not mutated")

	stored, err := svc.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, *stored.EggsCracked)
}

func TestSheet_ValidationFailureLeavesRow(t *testing.T) {
	sheet, svc, _ := setupSheet(t)
	rec := seedCycle(t, svc, "H-001", "14000", "")
	require.NoError(t, sheet.Load(context.Background()))

	err := sheet.Commit(context.Background(), rec.ID, hatchcycle.PctAdj, "150", "ops")
	assert.True(t, calculator.IsValidation(err))
	row, _ := sheet.Row(rec.ID)
	assert.False(t, row.PctAdj.Valid)
}

func TestSheet_GatewayFailureLeavesRow(t *testing.T) {
	sheet, svc, db := setupSheet(t)
	rec := seedCycle(t, svc, "H-001", "14000", "")
	require.NoError(t, sheet.Load(context.Background()))
	require.NoError(t, db.Migrator().DropTable(&domain.HatchCycle{}))

	err := sheet.Commit(context.Background(), rec.ID, hatchcycle.ChicksSold, "900", "ops")
	require.Error(t, err)
	assert.False(t, calculator.IsValidation(err))
	row, _ := sheet.Row(rec.ID)
	assert.Nil(t, row.ChicksSold)
}

func TestSheet_CommitUnknownRow(t *testing.T) {
	sheet, _, _ := setupSheet(t)
	assert.ErrorIs(t, sheet.Commit(context.Background(), "nope", hatchcycle.EggsSet, "1", "ops"), ErrRowNotFound)
}

func TestSheet_EditorEndToEnd(t *testing.T) {
	sheet, svc, db := setupSheet(t)
	require.NoError(t, db.Create(&domain.Flock{FlockNumber: "FL-9", SupplierName: "Hillside"}).Error)
	rec := seedCycle(t, svc, "H-001", "14000", "")
	require.NoError(t, sheet.Load(context.Background()))

	e := NewEditor(sheet, "ops")
	ctx := context.Background()
	require.NoError(t, e.Select(ctx, rec.ID, hatchcycle.SupplierFlockNumber))
	require.NoError(t, e.Edit("FL-9"))
	require.NoError(t, e.Confirm(ctx))

	s := e.Snapshot()
	assert.Equal(t, hatchcycle.CasesRecd, s.Cell.Field)
	row, _ := sheet.Row(rec.ID)
	assert.Equal(t, "Hillside", row.SupplierName)

	require.NoError(t, e.Edit("39"))
	require.NoError(t, e.Select(ctx, rec.ID, hatchcycle.PctAdj))
	e.Wait()
	row, _ = sheet.Row(rec.ID)
	assert.Equal(t, 14040, *row.EggsRecd)
	assert.Equal(t, 40, *row.EggsCracked)
}

func TestRegistry_OpenGetSweep(t *testing.T) {
	_, svc, _ := setupSheet(t)
	reg := NewRegistry(svc, 30*time.Minute)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	a := reg.Open("sess-a", "ops")
	assert.Same(t, a, reg.Open("sess-a", "ops"))
	_, err := reg.Get("sess-b")
	assert.ErrorIs(t, err, ErrNoWorkspace)

	now = now.Add(20 * time.Minute)
	reg.Open("sess-b", "ops")

	assert.Equal(t, 0, reg.Sweep(now.Add(5*time.Minute)))
	assert.Equal(t, 1, reg.Sweep(now.Add(15*time.Minute)))
	assert.Equal(t, 1, reg.Len())
	_, err = reg.Get("sess-a")
	assert.ErrorIs(t, err, ErrNoWorkspace)

	ws, err := reg.Get("sess-b")
	require.NoError(t, err)
	assert.NotNil(t, ws.Editor)
	assert.Equal(t, 1, reg.Sweep(now.Add(31*time.Minute)))
}
