// Package hatchcycle describes the columns of a hatch cycle record: a closed set of
// field identifiers, each mapped once to its persistence column, display label, value
// kind and editability. Nothing outside this table dispatches on label strings.
package hatchcycle

import (
	"fmt"
	"strings"
)

// Field identifies one column of a hatch cycle.
type Field int

const (
	HatchNo Field = iota + 1
	ColourCode
	FlocksRecd
	SupplierFlockNumber
	SupplierName
	CasesRecd
	EggsRecd
	AvgEggWgt
	EggsCracked
	EggsSet
	DatePacked
	SetDate
	DateCandled
	CandlingClears
	CandlingEarlyDead
	ExpHatchQty
	PctAdj
	ExpHatchQtyAdj
	HatchDate
	AvgChicksWgt
	ChicksHatched
	ChicksCulled
	VaccinationProfile
	ChicksSold
	Status
	CreatedBy
	CreatedAt
	UpdatedBy
	UpdatedAt
)

// Kind is the value type a field's draft text is parsed into.
type Kind int

const (
	KindText Kind = iota + 1
	KindInt
	KindDecimal
	KindDate
	KindColour
	KindStatus
	KindList
	KindTimestamp
)

type spec struct {
	column   string
	label    string
	kind     Kind
	editable bool
	required bool
}

var specs = map[Field]spec{
	HatchNo:             {"hatch_no", "HATCH NO", KindText, false, true},
	ColourCode:          {"colour_code", "HATCH COLOUR", KindColour, true, false},
	FlocksRecd:          {"flocks_recd", "FLOCKS RECVD", KindList, true, false},
	SupplierFlockNumber: {"supplier_flock_number", "SUPPLIER FLOCK NUMBER", KindText, true, false},
	SupplierName:        {"supplier_name", "SUPPLIER NAME", KindText, false, false},
	CasesRecd:           {"cases_recd", "CASES RECVD", KindInt, true, false},
	EggsRecd:            {"eggs_recd", "EGGS RECVD", KindInt, false, false},
	AvgEggWgt:           {"avg_egg_wgt", "AVG EGG WGT", KindDecimal, true, false},
	EggsCracked:         {"eggs_cracked", "EGGS CRACKED", KindInt, false, false},
	EggsSet:             {"eggs_set", "EGGS SET", KindInt, true, true},
	DatePacked:          {"date_packed", "DATE PACKED", KindDate, true, false},
	SetDate:             {"set_date", "DATE SET", KindDate, true, true},
	DateCandled:         {"date_candled", "DATE CANDLED", KindDate, true, false},
	CandlingClears:      {"candling_clears", "CLEARS", KindInt, false, false},
	CandlingEarlyDead:   {"candling_early_dead", "EARLY DEAD", KindInt, false, false},
	ExpHatchQty:         {"exp_hatch_qty", "EXP HATCH QTY", KindInt, false, false},
	PctAdj:              {"pct_adj", "PCT ADJ", KindDecimal, true, false},
	ExpHatchQtyAdj:      {"exp_hatch_qty_adj", "EXP HATCH QTY ADJ", KindInt, false, false},
	HatchDate:           {"hatch_date", "HATCH DATE", KindDate, true, false},
	AvgChicksWgt:        {"avg_chicks_wgt", "AVG CHICKS WGT", KindDecimal, true, false},
	ChicksHatched:       {"outcome_hatched", "CHICKS HATCHED", KindInt, true, false},
	ChicksCulled:        {"outcome_culled", "CHICKS CULLED", KindInt, false, false},
	VaccinationProfile:  {"vaccination_profile", "VACCINATION PROFILE", KindText, true, false},
	ChicksSold:          {"chicks_sold", "CHICKS SOLD", KindInt, true, false},
	Status:              {"status", "STATUS", KindStatus, true, true},
	CreatedBy:           {"created_by", "CREATED BY", KindText, false, false},
	CreatedAt:           {"created_at", "CREATED AT", KindTimestamp, false, false},
	UpdatedBy:           {"updated_by", "UPDATED BY", KindText, false, false},
	UpdatedAt:           {"updated_at", "UPDATED AT", KindTimestamp, false, false},
}

// Columns lists every field in table display order.
var Columns = []Field{
	HatchNo, ColourCode, FlocksRecd, SupplierFlockNumber, SupplierName, CasesRecd, EggsRecd,
	AvgEggWgt, EggsCracked, EggsSet, DatePacked, SetDate, DateCandled, CandlingClears,
	CandlingEarlyDead, ExpHatchQty, PctAdj, ExpHatchQtyAdj, HatchDate, AvgChicksWgt,
	ChicksHatched, ChicksCulled, VaccinationProfile, ChicksSold, Status,
	CreatedBy, CreatedAt, UpdatedBy, UpdatedAt,
}

// EditableOrder is the fixed tab/enter navigation order of the inline editor.
var EditableOrder = []Field{
	ColourCode, FlocksRecd, SupplierFlockNumber, CasesRecd, AvgEggWgt, EggsSet,
	DatePacked, SetDate, DateCandled, PctAdj, HatchDate, AvgChicksWgt,
	ChicksHatched, VaccinationProfile, ChicksSold, Status,
}

func (f Field) Valid() bool {
	_, ok := specs[f]
	return ok
}

// Column is the persistence column name.
func (f Field) Column() string { return specs[f].column }

// Label is the table header shown to users.
func (f Field) Label() string { return specs[f].label }

func (f Field) Kind() Kind { return specs[f].kind }

// Editable reports whether the inline editor may target the field.
func (f Field) Editable() bool { return specs[f].editable }

// Required fields cannot be cleared.
func (f Field) Required() bool { return specs[f].required }

func (f Field) String() string {
	if s, ok := specs[f]; ok {
		return s.label
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// MarshalText encodes the field as its column name.
func (f Field) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("invalid field %d", int(f))
	}
	return []byte(f.Column()), nil
}

// UnmarshalText accepts a column name or a label.
func (f *Field) UnmarshalText(b []byte) error {
	got, ok := Lookup(string(b))
	if !ok {
		return fmt.Errorf("unknown field %q", string(b))
	}
	*f = got
	return nil
}

// Lookup resolves a column name or display label, ignoring case and surrounding blanks.
func Lookup(name string) (Field, bool) {
	n := strings.TrimSpace(name)
	for _, f := range Columns {
		s := specs[f]
		if strings.EqualFold(n, s.column) || strings.EqualFold(n, s.label) {
			return f, true
		}
	}
	return 0, false
}

// NextEditable returns the editable field after f in EditableOrder.
func NextEditable(f Field) (Field, bool) {
	for i, e := range EditableOrder {
		if e == f && i+1 < len(EditableOrder) {
			return EditableOrder[i+1], true
		}
	}
	return 0, false
}
