package hatchcycle

import (
	"strconv"
	"time"

	"hatchery-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// DateLayout is the text form of calendar dates.
const DateLayout = "2006-01-02"

// Value returns the typed value of f on rec, or nil when the value is absent.
// Integers come back as int, decimals as decimal.Decimal, dates as time.Time and
// tags/lists/free text as string.
func Value(rec *domain.HatchCycle, f Field) any {
	switch f {
	case HatchNo:
		return str(rec.HatchNo)
	case ColourCode:
		return str(string(rec.ColourCode))
	case FlocksRecd:
		if len(rec.FlocksRecd) == 0 {
			return nil
		}
		return rec.FlocksRecd.String()
	case SupplierFlockNumber:
		return str(rec.SupplierFlockNumber)
	case SupplierName:
		return str(rec.SupplierName)
	case CasesRecd:
		return intp(rec.CasesRecd)
	case EggsRecd:
		return intp(rec.EggsRecd)
	case AvgEggWgt:
		return dec(rec.AvgEggWgt)
	case EggsCracked:
		return intp(rec.EggsCracked)
	case EggsSet:
		return rec.EggsSet
	case DatePacked:
		return datep(rec.DatePacked)
	case SetDate:
		return date(rec.SetDate)
	case DateCandled:
		return datep(rec.DateCandled)
	case CandlingClears:
		return intp(rec.Candling.Clears)
	case CandlingEarlyDead:
		return intp(rec.Candling.EarlyDead)
	case ExpHatchQty:
		return intp(rec.ExpHatchQty)
	case PctAdj:
		return dec(rec.PctAdj)
	case ExpHatchQtyAdj:
		return intp(rec.ExpHatchQtyAdj)
	case HatchDate:
		return datep(rec.HatchDate)
	case AvgChicksWgt:
		return dec(rec.AvgChicksWgt)
	case ChicksHatched:
		return intp(rec.Outcome.Hatched)
	case ChicksCulled:
		return intp(rec.Outcome.Culled)
	case VaccinationProfile:
		return str(rec.VaccinationProfile)
	case ChicksSold:
		return intp(rec.ChicksSold)
	case Status:
		return str(string(rec.Status))
	case CreatedBy:
		return str(rec.CreatedBy)
	case CreatedAt:
		return date(rec.CreatedAt)
	case UpdatedBy:
		return str(rec.UpdatedBy)
	case UpdatedAt:
		return date(rec.UpdatedAt)
	}
	return nil
}

// Text is the editor's text form of f on rec; absent values give "".
func Text(rec *domain.HatchCycle, f Field) string {
	return Format(Value(rec, f), f.Kind())
}

// Format renders a value returned by Value.
func Format(v any, kind Kind) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case decimal.Decimal:
		return x.String()
	case time.Time:
		if kind == KindTimestamp {
			return x.Format(time.RFC3339)
		}
		return x.Format(DateLayout)
	}
	return ""
}

func str(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func intp(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func dec(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal
}

func datep(t *time.Time) any {
	if t == nil {
		return nil
	}
	return date(*t)
}

func date(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
