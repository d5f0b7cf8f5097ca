package grid

import (
	"errors"

	"hatchery-backend/internal/application/calculator"
)

var (
	ErrNotEditable = calculator.ErrNotEditable
	ErrNotEditing  = errors.New("no cell is being edited")
	ErrNoWorkspace = errors.New("no grid is open for this session")
	ErrRowNotFound = errors.New("row is not loaded")
)
