package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Hatch cycle event actions.
const (
	EventCreated  = "CREATED"
	EventEdited   = "EDITED"
	EventStatus   = "STATUS"
	EventCandling = "CANDLING"
)

// HatchCycleEvent is one entry in the append-only change trail of a hatch cycle.
// Patch holds the column/value map that was written.
type HatchCycleEvent struct {
	ID           string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	HatchCycleID string         `gorm:"column:hatch_cycle_id;type:uuid;not null;index" json:"hatch_cycle_id"`
	Action       string         `gorm:"column:action;type:varchar(20);not null" json:"action"`
	Actor        string         `gorm:"column:actor" json:"actor"`
	Patch        datatypes.JSON `gorm:"column:patch" json:"patch"`
	CreatedAt    time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (HatchCycleEvent) TableName() string {
	return "hatch_cycle_events"
}

func (e *HatchCycleEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
