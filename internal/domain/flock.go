package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Flock is a supplier's group of breeder birds, keyed by its flock number.
type Flock struct {
	ID           string     `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	FlockNumber  string     `gorm:"column:flock_number;not null;uniqueIndex" json:"flock_number"`
	SupplierName string     `gorm:"column:supplier_name;not null" json:"supplier_name"`
	BreedName    string     `gorm:"column:breed_name" json:"breed_name"`
	PlacedOn     *time.Time `gorm:"column:placed_on;type:date" json:"placed_on"`
	Birds        *int       `gorm:"column:birds" json:"birds"`
	Notes        string     `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Flock) TableName() string {
	return "flocks"
}

func (f *Flock) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// Validate checks the fields required on the flock form.
func (f *Flock) Validate() error {
	f.FlockNumber = strings.TrimSpace(f.FlockNumber)
	if f.FlockNumber == "" {
		return errors.New("flock_number is required")
	}
	if strings.TrimSpace(f.SupplierName) == "" {
		return errors.New("supplier_name is required")
	}
	if f.Birds != nil && *f.Birds < 0 {
		return errors.New("birds must not be negative")
	}
	return nil
}
