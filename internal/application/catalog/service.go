// Package catalog serves the reference tables around hatch cycles: flocks, breeds,
// suppliers, staff and the egg/chick movement logs. Each is a thin service over
// one gateway table.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"hatchery-backend/internal/application/gateway"
	"hatchery-backend/internal/application/listview"
	"hatchery-backend/internal/domain/hatchcycle"

	"gorm.io/gorm"
)

// readOnly columns are never taken from a request body.
var readOnly = map[string]bool{"id": true, "created_at": true, "updated_at": true, "password_hash": true}

var bareDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidationError is a rejected form. Its message is safe to show.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Err: err}
}

type validator interface {
	Validate() error
}

// Service lists, creates, updates and deletes rows of one table.
type Service[T any] struct {
	Table   *gateway.Table[T]
	OrderBy string
	// Prepare runs after validation on every create and update and returns extra
	// columns it wrote into the row.
	Prepare func(row *T, creating bool) ([]string, error)
}

func NewService[T any](db *gorm.DB, orderBy string) (*Service[T], error) {
	table, err := gateway.NewTable[T](db)
	if err != nil {
		return nil, err
	}
	return &Service[T]{Table: table, OrderBy: orderBy}, nil
}

// List returns the rows visible under view, whose columns are column names.
func (s *Service[T]) List(ctx context.Context, view listview.View[string]) ([]T, error) {
	rows, err := s.Table.List(ctx, s.OrderBy)
	if err != nil {
		return nil, err
	}
	ptrs := make([]*T, len(rows))
	for i := range rows {
		ptrs[i] = &rows[i]
	}
	visible := listview.Apply(view, ptrs, s.Table.Value)
	out := make([]T, len(visible))
	for i, p := range visible {
		out[i] = *p
	}
	return out, nil
}

// Resolve accepts column names of the table, for listview.ParseQuery.
func (s *Service[T]) Resolve(name string) (string, bool) {
	return name, s.Table.HasColumn(name) && name != "password_hash"
}

func (s *Service[T]) Get(ctx context.Context, id string) (*T, error) {
	return s.Table.Get(ctx, id)
}

// Create decodes a JSON form into a new row and inserts it.
func (s *Service[T]) Create(ctx context.Context, body []byte) (*T, error) {
	body, err := normalizeDates(body)
	if err != nil {
		return nil, invalid(err)
	}
	row := new(T)
	if err := json.Unmarshal(body, row); err != nil {
		return nil, invalid(err)
	}
	if err := s.check(row, true); err != nil {
		return nil, err
	}
	if err := s.Table.Insert(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

// Update overlays a partial JSON form onto the stored row and writes the
// columns the form named.
func (s *Service[T]) Update(ctx context.Context, id string, body []byte) (*T, error) {
	body, err := normalizeDates(body)
	if err != nil {
		return nil, invalid(err)
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		return nil, invalid(err)
	}
	row, err := s.Table.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, row); err != nil {
		return nil, invalid(err)
	}

	var columns []string
	for k := range keys {
		if s.Table.HasColumn(k) && !readOnly[k] {
			columns = append(columns, k)
		}
	}
	extra, err := s.prepare(row, false)
	if err != nil {
		return nil, err
	}
	columns = append(columns, extra...)
	if len(columns) == 0 {
		return nil, invalid(errors.New("nothing to update"))
	}
	if err := s.Table.Save(ctx, id, row, columns); err != nil {
		return nil, err
	}
	return s.Table.Get(ctx, id)
}

func (s *Service[T]) Delete(ctx context.Context, id string) error {
	return s.Table.Delete(ctx, id)
}

// normalizeDates widens bare calendar dates in a JSON object to RFC 3339, the only
// form time.Time decodes.
func normalizeDates(body []byte) ([]byte, error) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	changed := false
	for k, v := range fields {
		str, ok := v.(string)
		if !ok || !bareDate.MatchString(str) {
			continue
		}
		if _, err := time.Parse(hatchcycle.DateLayout, str); err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		fields[k] = str + "T00:00:00Z"
		changed = true
	}
	if !changed {
		return body, nil
	}
	return json.Marshal(fields)
}

func (s *Service[T]) check(row *T, creating bool) error {
	_, err := s.prepare(row, creating)
	return err
}

func (s *Service[T]) prepare(row *T, creating bool) ([]string, error) {
	if v, ok := any(row).(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, invalid(err)
		}
	}
	if s.Prepare == nil {
		return nil, nil
	}
	cols, err := s.Prepare(row, creating)
	return cols, invalid(err)
}
