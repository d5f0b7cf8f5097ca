package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Breed is a bird line the hatchery sets eggs from.
type Breed struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Line      string    `gorm:"column:line" json:"line"`
	Notes     string    `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Breed) TableName() string { return "breeds" }

func (b *Breed) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

func (b *Breed) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

// Supplier delivers hatching eggs.
type Supplier struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Contact   string    `gorm:"column:contact" json:"contact"`
	Phone     string    `gorm:"column:phone" json:"phone"`
	Email     string    `gorm:"column:email" json:"email"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Supplier) TableName() string { return "suppliers" }

func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (s *Supplier) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

// EggProcurement is one receipt of hatching eggs from a supplier flock.
type EggProcurement struct {
	ID           string              `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SupplierName string              `gorm:"column:supplier_name;not null" json:"supplier_name"`
	FlockNumber  string              `gorm:"column:flock_number" json:"flock_number"`
	ReceivedOn   time.Time           `gorm:"column:received_on;type:date;not null" json:"received_on"`
	Cases        int                 `gorm:"column:cases;not null" json:"cases"`
	Eggs         int                 `gorm:"column:eggs;not null" json:"eggs"`
	AvgEggWgt    decimal.NullDecimal `gorm:"column:avg_egg_wgt;type:decimal(8,2)" json:"avg_egg_wgt"`
	Notes        string              `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt    time.Time           `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time           `gorm:"column:updated_at" json:"updated_at"`
}

func (EggProcurement) TableName() string { return "egg_procurements" }

func (p *EggProcurement) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (p *EggProcurement) Validate() error {
	if strings.TrimSpace(p.SupplierName) == "" {
		return errors.New("supplier_name is required")
	}
	if p.ReceivedOn.IsZero() {
		return errors.New("received_on is required")
	}
	if p.Cases < 0 || p.Eggs < 0 {
		return errors.New("cases and eggs must not be negative")
	}
	return nil
}

// ChickProcessing records grading and dispatch of the chicks from one hatch.
type ChickProcessing struct {
	ID           string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	HatchNo      string    `gorm:"column:hatch_no;not null;index" json:"hatch_no"`
	ProcessedOn  time.Time `gorm:"column:processed_on;type:date;not null" json:"processed_on"`
	Graded       int       `gorm:"column:graded" json:"graded"`
	Culled       int       `gorm:"column:culled" json:"culled"`
	Dispatched   int       `gorm:"column:dispatched" json:"dispatched"`
	CustomerName string    `gorm:"column:customer_name" json:"customer_name"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (ChickProcessing) TableName() string { return "chick_processing" }

func (p *ChickProcessing) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (p *ChickProcessing) Validate() error {
	if strings.TrimSpace(p.HatchNo) == "" {
		return errors.New("hatch_no is required")
	}
	if p.ProcessedOn.IsZero() {
		return errors.New("processed_on is required")
	}
	if p.Graded < 0 || p.Culled < 0 || p.Dispatched < 0 {
		return errors.New("counts must not be negative")
	}
	return nil
}

// EggDisposal records the disposal of non-viable eggs from one hatch.
type EggDisposal struct {
	ID         string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	HatchNo    string    `gorm:"column:hatch_no;not null;index" json:"hatch_no"`
	DisposedOn time.Time `gorm:"column:disposed_on;type:date;not null" json:"disposed_on"`
	Clears     int       `gorm:"column:clears" json:"clears"`
	EarlyDead  int       `gorm:"column:early_dead" json:"early_dead"`
	LateDead   int       `gorm:"column:late_dead" json:"late_dead"`
	Method     string    `gorm:"column:method" json:"method"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (EggDisposal) TableName() string { return "egg_disposals" }

func (d *EggDisposal) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

func (d *EggDisposal) Validate() error {
	if strings.TrimSpace(d.HatchNo) == "" {
		return errors.New("hatch_no is required")
	}
	if d.DisposedOn.IsZero() {
		return errors.New("disposed_on is required")
	}
	if d.Clears < 0 || d.EarlyDead < 0 || d.LateDead < 0 {
		return errors.New("counts must not be negative")
	}
	return nil
}
