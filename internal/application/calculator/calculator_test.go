package calculator

import (
	"strconv"
	"testing"
	"time"

	"hatchery-backend/internal/domain"
	"hatchery-backend/internal/domain/hatchcycle"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func baseCycle() *domain.HatchCycle {
	return &domain.HatchCycle{
		ID:      "c1",
		HatchNo: "H-001",
		EggsSet: 14000,
		SetDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:  domain.StatusOpen,
	}
}

func patchInt(t *testing.T, p hatchcycle.Patch, f hatchcycle.Field) int {
	t.Helper()
	v, ok := p[f]
	require.True(t, ok, "patch is missing %s", f)
	n, ok := v.(*int)
	require.True(t, ok, "%s is %T", f, v)
	require.NotNil(t, n, "%s is nil", f)
	return *n
}

func TestCasesReceived_EggsAreCasesTimes360(t *testing.T) {
	calc := Calculator{}
	for _, cases := range []int{0, 1, 7, 39, 1000} {
		res, err := calc.ComputePatch(baseCycle(), hatchcycle.CasesRecd, strconv.Itoa(cases))
		require.NoError(t, err)
		assert.Equal(t, cases, patchInt(t, res.Patch, hatchcycle.CasesRecd))
		assert.Equal(t, cases*360, patchInt(t, res.Patch, hatchcycle.EggsRecd))
	}
}

func TestCasesReceived_RejectsCountsThatWouldOverflow(t *testing.T) {
	for _, raw := range []string{"25620477880152159", strconv.Itoa(maxCases + 1), "-3"} {
		_, err := Calculator{}.ComputePatch(baseCycle(), hatchcycle.CasesRecd, raw)
		var re *RangeError
		require.ErrorAs(t, err, &re, raw)
		assert.Equal(t, hatchcycle.CasesRecd, re.Field)
	}

	res, err := Calculator{}.ComputePatch(baseCycle(), hatchcycle.CasesRecd, strconv.Itoa(maxCases))
	require.NoError(t, err)
	assert.Equal(t, maxCases*360, patchInt(t, res.Patch, hatchcycle.EggsRecd))
	assert.Positive(t, patchInt(t, res.Patch, hatchcycle.EggsCracked))
}

func TestCasesReceived_RefreshesCracked(t *testing.T) {
	res, err := Calculator{}.ComputePatch(baseCycle(), hatchcycle.CasesRecd, "40")
	require.NoError(t, err)
	assert.Equal(t, 14400-14000, patchInt(t, res.Patch, hatchcycle.EggsCracked))
}

func TestCasesReceived_ClearedClearsDerived(t *testing.T) {
	rec := baseCycle()
	rec.CasesRecd, rec.EggsRecd = intPtr(40), intPtr(14400)
	res, err := Calculator{}.ComputePatch(rec, hatchcycle.CasesRecd, "  ")
	require.NoError(t, err)
	assert.Nil(t, res.Patch[hatchcycle.EggsRecd].(*int))
	assert.Nil(t, res.Patch[hatchcycle.EggsCracked].(*int))
}

func TestEggsSet_CrackedIsReceivedMinusSet(t *testing.T) {
	cases := []struct{ recd, set int }{{14200, 14000}, {14400, 14400}, {100, 250}, {0, 1}}
	for _, c := range cases {
		rec := baseCycle()
		rec.EggsRecd = intPtr(c.recd)
		res, err := Calculator{}.ComputePatch(rec, hatchcycle.EggsSet, strconv.Itoa(c.set))
		require.NoError(t, err)
		assert.Equal(t, c.recd-c.set, patchInt(t, res.Patch, hatchcycle.EggsCracked))
	}
}

func TestEggsSet_Scenario14200(t *testing.T) {
	rec := baseCycle()
	rec.EggsRecd = intPtr(14200)
	res, err := Calculator{}.ComputePatch(rec, hatchcycle.EggsSet, "14000")
	require.NoError(t, err)
	assert.Equal(t, 200, patchInt(t, res.Patch, hatchcycle.EggsCracked))
	assert.Equal(t, 14000, patchInt(t, res.Patch, hatchcycle.EggsSet))
}

func TestEggsSet_UnknownReceivedLeavesCrackedAlone(t *testing.T) {
	res, err := Calculator{}.ComputePatch(baseCycle(), hatchcycle.EggsSet, "9000")
	require.NoError(t, err)
	_, ok := res.Patch[hatchcycle.EggsCracked]
	assert.False(t, ok)
}

func TestEggsSet_RequiredAndWholeNumber(t *testing.T) {
	var pe *ParseError
	_, err := Calculator{}.ComputePatch(baseCycle(), hatchcycle.EggsSet, "")
	require.ErrorAs(t, err, &pe)
	_, err = Calculator{}.ComputePatch(baseCycle(), hatchcycle.EggsSet, "12.5")
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, hatchcycle.EggsSet, pe.Field)

	var re *RangeError
	_, err = Calculator{}.ComputePatch(baseCycle(), hatchcycle.EggsSet, "-5")
	require.ErrorAs(t, err, &re)
}

func TestEggsSet_ExpectedFollowsOnlyUnderPolicy(t *testing.T) {
	res, err := Calculator{}.ComputePatch(baseCycle(), hatchcycle.EggsSet, "1000")
	require.NoError(t, err)
	_, ok := res.Patch[hatchcycle.ExpHatchQty]
	assert.False(t, ok)

	res, err = Calculator{Policy: Policy{RecomputeExpected: true}}.ComputePatch(baseCycle(), hatchcycle.EggsSet, "1001")
	require.NoError(t, err)
	assert.Equal(t, 801, patchInt(t, res.Patch, hatchcycle.ExpHatchQty))
}

func TestEggsSet_RefreshesAdjustedWhenPctKnown(t *testing.T) {
	rec := baseCycle()
	rec.PctAdj = decimal.NewNullDecimal(decimal.NewFromInt(85))
	res, err := Calculator{}.ComputePatch(rec, hatchcycle.EggsSet, "1000")
	require.NoError(t, err)
	assert.Equal(t, 850, patchInt(t, res.Patch, hatchcycle.ExpHatchQtyAdj))
}

func TestPctAdj_RejectsOutOfRange(t *testing.T) {
	for _, raw := range []string{"-0.01", "-1", "100.5", "250"} {
		_, err := Calculator{}.ComputePatch(baseCycle(), hatchcycle.PctAdj, raw)
		var re *RangeError
		require.ErrorAs(t, err, &re, raw)
		assert.Equal(t, hatchcycle.PctAdj, re.Field)
	}
}

func TestPctAdj_AdjustedIsRoundedShare(t *testing.T) {
	cases := []struct {
		set  int
		pct  string
		want int
	}{
		{14000, "0", 0},
		{14000, "100", 14000},
		{14000, "82.5", 11550},
		{333, "50", 167},
		{1001, "33.3", 333},
	}
	for _, c := range cases {
		rec := baseCycle()
		rec.EggsSet = c.set
		res, err := Calculator{}.ComputePatch(rec, hatchcycle.PctAdj, c.pct)
		require.NoError(t, err)
		assert.Equal(t, c.want, patchInt(t, res.Patch, hatchcycle.ExpHatchQtyAdj), "%d @ %s%%", c.set, c.pct)
	}
}

func TestDecimals_AtMostTwoPlaces(t *testing.T) {
	for _, f := range []hatchcycle.Field{hatchcycle.PctAdj, hatchcycle.AvgEggWgt, hatchcycle.AvgChicksWgt} {
		_, err := Calculator{}.ComputePatch(baseCycle(), f, "33.333")
		var pe *ParseError
		require.ErrorAs(t, err, &pe, f.Label())
		assert.Equal(t, f, pe.Field)

		res, err := Calculator{}.ComputePatch(baseCycle(), f, "33.330")
		require.NoError(t, err, f.Label())
		assert.Equal(t, "33.33", res.Patch[f].(decimal.NullDecimal).Decimal.StringFixed(2))
	}
}

func TestPctAdj_NotANumber(t *testing.T) {
	_, err := Calculator{}.ComputePatch(baseCycle(), hatchcycle.PctAdj, "eighty")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.True(t, IsValidation(err))
}

func TestSupplierFlockNumber_AsksForLookup(t *testing.T) {
	res, err := Calculator{}.ComputePatch(baseCycle(), hatchcycle.SupplierFlockNumber, " FL-22 ")
	require.NoError(t, err)
	assert.True(t, res.ResolveSupplier)
	assert.Equal(t, "FL-22", res.FlockNumber)
	assert.Equal(t, "FL-22", res.Patch[hatchcycle.SupplierFlockNumber])
	_, ok := res.Patch[hatchcycle.SupplierName]
	assert.False(t, ok)
}

func TestNonEditableFieldsAreRejected(t *testing.T) {
	for _, f := range []hatchcycle.Field{hatchcycle.HatchNo, hatchcycle.SupplierName, hatchcycle.EggsRecd, hatchcycle.ExpHatchQtyAdj, hatchcycle.ChicksCulled, hatchcycle.UpdatedAt} {
		_, err := Calculator{}.ComputePatch(baseCycle(), f, "1")
		assert.ErrorIs(t, err, ErrNotEditable, f.String())
	}
}

func TestSimpleFieldsPatchOnlyThemselves(t *testing.T) {
	cases := []struct {
		f   hatchcycle.Field
		raw string
		v   any
	}{
		{hatchcycle.ColourCode, "green", domain.ColourGreen},
		{hatchcycle.FlocksRecd, "FL-1, FL-2,,FL-3", domain.FlockList{"FL-1", "FL-2", "FL-3"}},
		{hatchcycle.VaccinationProfile, "Marek + IB", "Marek + IB"},
		{hatchcycle.Status, "closed", domain.StatusClosed},
	}
	for _, c := range cases {
		res, err := Calculator{}.ComputePatch(baseCycle(), c.f, c.raw)
		require.NoError(t, err)
		assert.Len(t, res.Patch, 1)
		assert.Equal(t, c.v, res.Patch[c.f])
	}
}

func TestDateFields(t *testing.T) {
	res, err := Calculator{}.ComputePatch(baseCycle(), hatchcycle.HatchDate, "2024-03-22")
	require.NoError(t, err)
	got := res.Patch[hatchcycle.HatchDate].(*time.Time)
	assert.True(t, got.Equal(time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC)))

	_, err = Calculator{}.ComputePatch(baseCycle(), hatchcycle.HatchDate, "22/03/2024")
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)

	_, err = Calculator{}.ComputePatch(baseCycle(), hatchcycle.SetDate, "")
	assert.ErrorAs(t, err, &pe)
}

func TestCulledUnderPolicy(t *testing.T) {
	rec := baseCycle()
	rec.ChicksSold = intPtr(9000)
	off, err := Calculator{}.ComputePatch(rec, hatchcycle.ChicksHatched, "11000")
	require.NoError(t, err)
	_, ok := off.Patch[hatchcycle.ChicksCulled]
	assert.False(t, ok)

	on, err := Calculator{Policy: Policy{RecomputeCulled: true}}.ComputePatch(rec, hatchcycle.ChicksHatched, "11000")
	require.NoError(t, err)
	assert.Equal(t, 2000, patchInt(t, on.Patch, hatchcycle.ChicksCulled))
}

func TestDerive(t *testing.T) {
	rec := baseCycle()
	rec.CasesRecd = intPtr(40)
	rec.PctAdj = decimal.NewNullDecimal(decimal.RequireFromString("82.5"))
	rec.Outcome.Hatched = intPtr(11200)
	rec.ChicksSold = intPtr(11000)

	Calculator{}.Derive(rec)

	assert.Equal(t, 14400, *rec.EggsRecd)
	assert.Equal(t, 400, *rec.EggsCracked)
	assert.Equal(t, 11200, *rec.ExpHatchQty)
	assert.Equal(t, 11550, *rec.ExpHatchQtyAdj)
	assert.Equal(t, 200, *rec.Outcome.Culled)
}

func TestDerive_MissingInputsLeaveDerivedUnset(t *testing.T) {
	rec := baseCycle()
	Calculator{}.Derive(rec)
	assert.Nil(t, rec.EggsRecd)
	assert.Nil(t, rec.EggsCracked)
	assert.Nil(t, rec.ExpHatchQtyAdj)
	assert.Nil(t, rec.Outcome.Culled)
	assert.Equal(t, 11200, *rec.ExpHatchQty)
}
