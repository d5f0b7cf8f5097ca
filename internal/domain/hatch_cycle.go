package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Status is the open/closed flag of a hatch cycle.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// Toggle returns the opposite status.
func (s Status) Toggle() Status {
	if s == StatusClosed {
		return StatusOpen
	}
	return StatusClosed
}

// ParseStatus accepts OPEN/CLOSED in any case.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusOpen:
		return StatusOpen, nil
	case StatusClosed:
		return StatusClosed, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// ColourCode tags a hatch with one of six tray colours. Persisted as the full literal ("3-GREEN").
type ColourCode string

const (
	ColourRed    ColourCode = "1-RED"
	ColourBlue   ColourCode = "2-BLUE"
	ColourGreen  ColourCode = "3-GREEN"
	ColourYellow ColourCode = "4-YELLOW"
	ColourOrange ColourCode = "5-ORANGE"
	ColourPurple ColourCode = "6-PURPLE"
)

// ColourCodes lists the tags in display order.
var ColourCodes = []ColourCode{ColourRed, ColourBlue, ColourGreen, ColourYellow, ColourOrange, ColourPurple}

// ParseColourCode accepts the full literal, the number alone ("3") or the colour name ("green").
func ParseColourCode(s string) (ColourCode, error) {
	in := strings.ToUpper(strings.TrimSpace(s))
	for _, c := range ColourCodes {
		num, name, _ := strings.Cut(string(c), "-")
		if in == string(c) || in == num || in == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown colour code %q", s)
}

// Candling holds the mid-incubation inspection counts.
type Candling struct {
	Clears    *int `gorm:"column:clears" json:"clears"`
	EarlyDead *int `gorm:"column:early_dead" json:"early_dead"`
}

// Outcome holds the hatch result counts. Culled is derived from Hatched and ChicksSold.
type Outcome struct {
	Hatched *int `gorm:"column:hatched" json:"hatched"`
	Culled  *int `gorm:"column:culled" json:"culled"`
}

// HatchCycle is one batch of eggs set together through incubation to hatch.
type HatchCycle struct {
	ID                  string              `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	HatchNo             string              `gorm:"column:hatch_no;not null;uniqueIndex" json:"hatch_no"`
	ColourCode          ColourCode          `gorm:"column:colour_code;type:varchar(12)" json:"colour_code"`
	FlocksRecd          FlockList           `gorm:"column:flocks_recd;type:text" json:"flocks_recd"`
	SupplierFlockNumber string              `gorm:"column:supplier_flock_number" json:"supplier_flock_number"`
	SupplierName        string              `gorm:"column:supplier_name" json:"supplier_name"`
	CasesRecd           *int                `gorm:"column:cases_recd" json:"cases_recd"`
	EggsRecd            *int                `gorm:"column:eggs_recd" json:"eggs_recd"`
	AvgEggWgt           decimal.NullDecimal `gorm:"column:avg_egg_wgt;type:decimal(8,2)" json:"avg_egg_wgt"`
	EggsCracked         *int                `gorm:"column:eggs_cracked" json:"eggs_cracked"`
	EggsSet             int                 `gorm:"column:eggs_set;not null" json:"eggs_set"`
	DatePacked          *time.Time          `gorm:"column:date_packed;type:date" json:"date_packed"`
	SetDate             time.Time           `gorm:"column:set_date;type:date;not null" json:"set_date"`
	DateCandled         *time.Time          `gorm:"column:date_candled;type:date" json:"date_candled"`
	Candling            Candling            `gorm:"embedded;embeddedPrefix:candling_" json:"candling"`
	ExpHatchQty         *int                `gorm:"column:exp_hatch_qty" json:"exp_hatch_qty"`
	PctAdj              decimal.NullDecimal `gorm:"column:pct_adj;type:decimal(5,2)" json:"pct_adj"`
	ExpHatchQtyAdj      *int                `gorm:"column:exp_hatch_qty_adj" json:"exp_hatch_qty_adj"`
	HatchDate           *time.Time          `gorm:"column:hatch_date;type:date" json:"hatch_date"`
	AvgChicksWgt        decimal.NullDecimal `gorm:"column:avg_chicks_wgt;type:decimal(8,2)" json:"avg_chicks_wgt"`
	Outcome             Outcome             `gorm:"embedded;embeddedPrefix:outcome_" json:"outcome"`
	VaccinationProfile  string              `gorm:"column:vaccination_profile;type:text" json:"vaccination_profile"`
	ChicksSold          *int                `gorm:"column:chicks_sold" json:"chicks_sold"`
	Status              Status              `gorm:"column:status;type:varchar(10);not null;default:'OPEN'" json:"status"`
	CreatedBy           string              `gorm:"column:created_by" json:"created_by"`
	CreatedAt           time.Time           `gorm:"column:created_at" json:"created_at"`
	UpdatedBy           string              `gorm:"column:updated_by" json:"updated_by"`
	UpdatedAt           time.Time           `gorm:"column:updated_at" json:"updated_at"`
}

func (HatchCycle) TableName() string {
	return "hatch_cycles"
}

// BeforeCreate assigns the record id when the caller did not.
func (h *HatchCycle) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.Status == "" {
		h.Status = StatusOpen
	}
	return nil
}
