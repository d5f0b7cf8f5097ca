package domain

import (
	"errors"
	"strings"
	"time"

	"hatchery-backend/internal/pkg/constants"
	"hatchery-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Staff is a dashboard user account. Password is only accepted on input and is hashed
// into PasswordHash before the row is written.
type Staff struct {
	ID           string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Fullname     string    `gorm:"column:fullname;not null" json:"fullname"`
	Email        string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Role         string    `gorm:"column:role;not null;default:viewer" json:"role"`
	Active       bool      `gorm:"column:active;not null;default:true" json:"active"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Password     string    `gorm:"-" json:"password,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Staff) TableName() string { return "staff" }

func (s *Staff) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Validate normalises and checks the account form.
func (s *Staff) Validate() error {
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	s.Fullname = strings.TrimSpace(s.Fullname)
	if !validation.IsValidEmail(s.Email) {
		return errors.New("Invalid email format")
	}
	if !validation.IsValidFullname(s.Fullname) {
		return errors.New("Full name contains invalid characters (only letters, spaces, hyphens, and apostrophes allowed)")
	}
	if s.Role == "" {
		s.Role = constants.Viewer
	}
	if !constants.IsValidRole(s.Role) {
		return errors.New("Invalid role")
	}
	return nil
}
