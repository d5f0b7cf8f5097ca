package catalog

import (
	"errors"

	"hatchery-backend/internal/domain"
	"hatchery-backend/internal/pkg/validation"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordRequired = errors.New("Password is required")
	ErrWeakPassword     = errors.New("Password must be at least 8 characters and contain a letter, a number and a symbol")
)

// hashStaffPassword turns the write-only password of a staff form into its bcrypt
// hash. A password is required on create and optional on update.
func hashStaffPassword(s *domain.Staff, creating bool) ([]string, error) {
	if s.Password == "" {
		if creating {
			return nil, ErrPasswordRequired
		}
		return nil, nil
	}
	if !validation.IsValidPassword(s.Password) {
		return nil, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	s.PasswordHash = string(hash)
	s.Password = ""
	return []string{"password_hash"}, nil
}
