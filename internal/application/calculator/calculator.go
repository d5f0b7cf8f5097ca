// Package calculator keeps the derived fields of a hatch cycle consistent with the
// fields they are computed from. It is pure: the supplier lookup a flock-number edit
// needs is reported back to the caller instead of being performed here.
package calculator

import (
	"context"

	"hatchery-backend/internal/domain"
	"hatchery-backend/internal/domain/hatchcycle"

	"github.com/shopspring/decimal"
)

// EggsPerCase is the fixed size of an egg case.
const EggsPerCase = 360

// baselineHatchability is the expected share of set eggs that hatch (80%).
var baselineHatchability = decimal.New(8, -1)

// Policy selects whether the creation-time expectations follow later edits.
// The zero value freezes them, which is how the dashboard has always behaved.
type Policy struct {
	// RecomputeExpected refreshes exp_hatch_qty when EGGS SET is edited.
	RecomputeExpected bool
	// RecomputeCulled refreshes outcome_culled when CHICKS HATCHED or CHICKS SOLD is edited.
	RecomputeCulled bool
}

// SupplierResolver finds the supplier of a flock by its flock number.
// An unknown flock resolves to "" with a nil error.
type SupplierResolver interface {
	SupplierFor(ctx context.Context, flockNumber string) (string, error)
}

// Result is an accepted edit: the patch to persist and, for flock number edits, the
// flock whose supplier the caller must resolve into SupplierName.
type Result struct {
	Patch           hatchcycle.Patch
	ResolveSupplier bool
	FlockNumber     string
}

// Calculator computes edit patches under a Policy.
type Calculator struct {
	Policy Policy
}

// ComputePatch validates raw as the new value of f on current and returns the
// target field plus every dependent field it changes.
func (c Calculator) ComputePatch(current *domain.HatchCycle, f hatchcycle.Field, raw string) (Result, error) {
	if !f.Valid() {
		return Result{}, ErrUnknownField
	}
	if !f.Editable() {
		return Result{}, ErrNotEditable
	}
	v, err := Parse(f, raw)
	if err != nil {
		return Result{}, err
	}
	if err := Check(f, v); err != nil {
		return Result{}, err
	}

	res := Result{Patch: hatchcycle.Patch{f: v}}
	p := res.Patch

	switch f {
	case hatchcycle.CasesRecd:
		cases := v.(*int)
		if cases == nil {
			p[hatchcycle.EggsRecd] = (*int)(nil)
			p[hatchcycle.EggsCracked] = (*int)(nil)
			break
		}
		recd := eggsReceived(*cases)
		p[hatchcycle.EggsRecd] = &recd
		cracked := recd - current.EggsSet
		p[hatchcycle.EggsCracked] = &cracked

	case hatchcycle.EggsSet:
		set := *v.(*int)
		if current.EggsRecd != nil {
			cracked := *current.EggsRecd - set
			p[hatchcycle.EggsCracked] = &cracked
		}
		if current.PctAdj.Valid {
			adj := adjusted(set, current.PctAdj.Decimal)
			p[hatchcycle.ExpHatchQtyAdj] = &adj
		}
		if c.Policy.RecomputeExpected {
			exp := expected(set)
			p[hatchcycle.ExpHatchQty] = &exp
		}

	case hatchcycle.PctAdj:
		pct := v.(decimal.NullDecimal)
		if !pct.Valid {
			p[hatchcycle.ExpHatchQtyAdj] = (*int)(nil)
			break
		}
		adj := adjusted(current.EggsSet, pct.Decimal)
		p[hatchcycle.ExpHatchQtyAdj] = &adj

	case hatchcycle.SupplierFlockNumber:
		res.ResolveSupplier = true
		res.FlockNumber = v.(string)

	case hatchcycle.ChicksHatched:
		if c.Policy.RecomputeCulled {
			if culled, ok := culledOf(v.(*int), current.ChicksSold); ok {
				p[hatchcycle.ChicksCulled] = &culled
			}
		}

	case hatchcycle.ChicksSold:
		if c.Policy.RecomputeCulled {
			if culled, ok := culledOf(current.Outcome.Hatched, v.(*int)); ok {
				p[hatchcycle.ChicksCulled] = &culled
			}
		}
	}
	return res, nil
}

// Derive fills every derived field of a freshly entered record from its inputs.
// It runs once, when the record is created.
func (c Calculator) Derive(rec *domain.HatchCycle) {
	rec.EggsRecd, rec.EggsCracked = nil, nil
	if rec.CasesRecd != nil {
		recd := eggsReceived(*rec.CasesRecd)
		cracked := recd - rec.EggsSet
		rec.EggsRecd, rec.EggsCracked = &recd, &cracked
	}
	exp := expected(rec.EggsSet)
	rec.ExpHatchQty = &exp
	rec.ExpHatchQtyAdj = nil
	if rec.PctAdj.Valid {
		adj := adjusted(rec.EggsSet, rec.PctAdj.Decimal)
		rec.ExpHatchQtyAdj = &adj
	}
	rec.Outcome.Culled = nil
	if culled, ok := culledOf(rec.Outcome.Hatched, rec.ChicksSold); ok {
		rec.Outcome.Culled = &culled
	}
}

func eggsReceived(cases int) int {
	return cases * EggsPerCase
}

func expected(eggsSet int) int {
	return int(decimal.NewFromInt(int64(eggsSet)).Mul(baselineHatchability).Round(0).IntPart())
}

func adjusted(eggsSet int, pct decimal.Decimal) int {
	return int(decimal.NewFromInt(int64(eggsSet)).Mul(pct).Div(hundred).Round(0).IntPart())
}

func culledOf(hatched, sold *int) (int, bool) {
	if hatched == nil || sold == nil {
		return 0, false
	}
	return *hatched - *sold, true
}
