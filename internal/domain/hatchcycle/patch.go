package hatchcycle

import (
	"encoding/json"
	"sort"
	"time"

	"hatchery-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// Patch is a set of field updates for one hatch cycle. Values use the canonical type
// of the field's kind:
//
//	KindText       string
//	KindInt        *int (nil clears)
//	KindDecimal    decimal.NullDecimal
//	KindDate       *time.Time (nil clears)
//	KindColour     domain.ColourCode
//	KindStatus     domain.Status
//	KindList       domain.FlockList
//	KindTimestamp  time.Time
type Patch map[Field]any

// Fields returns the patched fields in table order.
func (p Patch) Fields() []Field {
	out := make([]Field, 0, len(p))
	for f := range p {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Columns maps the patch onto persistence column names.
func (p Patch) Columns() map[string]any {
	out := make(map[string]any, len(p))
	for f, v := range p {
		out[f.Column()] = v
	}
	return out
}

// MarshalJSON encodes the patch keyed by column name.
func (p Patch) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Columns())
}

// Merge copies other's entries into p, overwriting.
func (p Patch) Merge(other Patch) {
	for f, v := range other {
		p[f] = v
	}
}

// Apply writes every patched value onto rec. Values of the wrong type are ignored.
func (p Patch) Apply(rec *domain.HatchCycle) {
	for f, v := range p {
		switch f {
		case HatchNo:
			setString(&rec.HatchNo, v)
		case ColourCode:
			if c, ok := v.(domain.ColourCode); ok {
				rec.ColourCode = c
			}
		case FlocksRecd:
			if l, ok := v.(domain.FlockList); ok {
				rec.FlocksRecd = l
			}
		case SupplierFlockNumber:
			setString(&rec.SupplierFlockNumber, v)
		case SupplierName:
			setString(&rec.SupplierName, v)
		case CasesRecd:
			setInt(&rec.CasesRecd, v)
		case EggsRecd:
			setInt(&rec.EggsRecd, v)
		case AvgEggWgt:
			setDecimal(&rec.AvgEggWgt, v)
		case EggsCracked:
			setInt(&rec.EggsCracked, v)
		case EggsSet:
			if n, ok := v.(*int); ok && n != nil {
				rec.EggsSet = *n
			}
		case DatePacked:
			setDate(&rec.DatePacked, v)
		case SetDate:
			if t, ok := v.(*time.Time); ok && t != nil {
				rec.SetDate = *t
			}
		case DateCandled:
			setDate(&rec.DateCandled, v)
		case CandlingClears:
			setInt(&rec.Candling.Clears, v)
		case CandlingEarlyDead:
			setInt(&rec.Candling.EarlyDead, v)
		case ExpHatchQty:
			setInt(&rec.ExpHatchQty, v)
		case PctAdj:
			setDecimal(&rec.PctAdj, v)
		case ExpHatchQtyAdj:
			setInt(&rec.ExpHatchQtyAdj, v)
		case HatchDate:
			setDate(&rec.HatchDate, v)
		case AvgChicksWgt:
			setDecimal(&rec.AvgChicksWgt, v)
		case ChicksHatched:
			setInt(&rec.Outcome.Hatched, v)
		case ChicksCulled:
			setInt(&rec.Outcome.Culled, v)
		case VaccinationProfile:
			setString(&rec.VaccinationProfile, v)
		case ChicksSold:
			setInt(&rec.ChicksSold, v)
		case Status:
			if s, ok := v.(domain.Status); ok {
				rec.Status = s
			}
		case CreatedBy:
			setString(&rec.CreatedBy, v)
		case CreatedAt:
			if t, ok := v.(time.Time); ok {
				rec.CreatedAt = t
			}
		case UpdatedBy:
			setString(&rec.UpdatedBy, v)
		case UpdatedAt:
			if t, ok := v.(time.Time); ok {
				rec.UpdatedAt = t
			}
		}
	}
}

func setString(dst *string, v any) {
	if s, ok := v.(string); ok {
		*dst = s
	}
}

// setInt copies the pointee so the record never aliases a patch value.
func setInt(dst **int, v any) {
	n, ok := v.(*int)
	if !ok {
		return
	}
	if n == nil {
		*dst = nil
		return
	}
	x := *n
	*dst = &x
}

func setDecimal(dst *decimal.NullDecimal, v any) {
	if d, ok := v.(decimal.NullDecimal); ok {
		*dst = d
	}
}

func setDate(dst **time.Time, v any) {
	t, ok := v.(*time.Time)
	if !ok {
		return
	}
	if t == nil {
		*dst = nil
		return
	}
	x := *t
	*dst = &x
}
