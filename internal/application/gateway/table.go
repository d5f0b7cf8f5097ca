// Package gateway is the thin layer between the services and the hosted tables.
// A Table wraps one gorm model and exposes the handful of operations the
// dashboard needs; every store failure comes back as an *Error.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Table is a typed handle on one table. T must be a gorm model with an "id" primary key.
type Table[T any] struct {
	db     *gorm.DB
	schema *schema.Schema
}

// NewTable parses T's model and binds it to db.
func NewTable[T any](db *gorm.DB) (*Table[T], error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(new(T)); err != nil {
		return nil, fmt.Errorf("parse model %T: %w", *new(T), err)
	}
	return &Table[T]{db: db, schema: stmt.Schema}, nil
}

// Name is the table name.
func (t *Table[T]) Name() string { return t.schema.Table }

// DB exposes the underlying handle for callers that need a transaction.
func (t *Table[T]) DB() *gorm.DB { return t.db }

// HasColumn reports whether column is a column of the table.
func (t *Table[T]) HasColumn(column string) bool {
	_, ok := t.schema.FieldsByDBName[column]
	return ok
}

// Columns lists the table's columns in model order.
func (t *Table[T]) Columns() []string {
	return append([]string(nil), t.schema.DBNames...)
}

// List returns every row. orderBy is a comma-separated list of columns, each
// optionally prefixed with "-" for descending order.
func (t *Table[T]) List(ctx context.Context, orderBy string) ([]T, error) {
	q, err := t.ordered(t.db.WithContext(ctx), orderBy)
	if err != nil {
		return nil, t.fail("list", err)
	}
	var rows []T
	if err := q.Find(&rows).Error; err != nil {
		return nil, t.fail("list", err)
	}
	return rows, nil
}

// Get loads the row with the given id.
func (t *Table[T]) Get(ctx context.Context, id string) (*T, error) {
	return t.FindOne(ctx, "id", id)
}

// FindOne returns the first row whose column equals value, or ErrNotFound.
func (t *Table[T]) FindOne(ctx context.Context, column string, value any) (*T, error) {
	if !t.HasColumn(column) {
		return nil, t.fail("find", fmt.Errorf("%w %q", ErrUnknownColumn, column))
	}
	var row T
	err := t.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
		Take(&row).Error
	if err != nil {
		return nil, t.fail("find", err)
	}
	return &row, nil
}

// FindAll returns every row whose column equals value.
func (t *Table[T]) FindAll(ctx context.Context, column string, value any, orderBy string) ([]T, error) {
	if !t.HasColumn(column) {
		return nil, t.fail("find", fmt.Errorf("%w %q", ErrUnknownColumn, column))
	}
	q, err := t.ordered(t.db.WithContext(ctx), orderBy)
	if err != nil {
		return nil, t.fail("find", err)
	}
	var rows []T
	if err := q.Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).Find(&rows).Error; err != nil {
		return nil, t.fail("find", err)
	}
	return rows, nil
}

// Insert creates row. Defaults assigned by hooks or the store are written back into it.
func (t *Table[T]) Insert(ctx context.Context, row *T) error {
	if err := t.db.WithContext(ctx).Create(row).Error; err != nil {
		return t.fail("insert", err)
	}
	return nil
}

// Update writes changes, keyed by column name, to the row with the given id.
func (t *Table[T]) Update(ctx context.Context, id string, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}
	for col := range changes {
		if !t.HasColumn(col) || col == "id" {
			return t.fail("update", fmt.Errorf("%w %q", ErrUnknownColumn, col))
		}
	}
	res := t.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return t.fail("update", res.Error)
	}
	if res.RowsAffected == 0 {
		return t.fail("update", ErrNotFound)
	}
	return nil
}

// Save writes the named columns of row to the row with the given id.
func (t *Table[T]) Save(ctx context.Context, id string, row *T, columns []string) error {
	if len(columns) == 0 {
		return nil
	}
	for _, col := range columns {
		if !t.HasColumn(col) || col == "id" {
			return t.fail("update", fmt.Errorf("%w %q", ErrUnknownColumn, col))
		}
	}
	res := t.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Select(columns).Updates(row)
	if res.Error != nil {
		return t.fail("update", res.Error)
	}
	if res.RowsAffected == 0 {
		return t.fail("update", ErrNotFound)
	}
	return nil
}

// Delete removes the row with the given id.
func (t *Table[T]) Delete(ctx context.Context, id string) error {
	res := t.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return t.fail("delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return t.fail("delete", ErrNotFound)
	}
	return nil
}

// Value reads column from row, normalised for comparison: absent values are nil,
// pointers are dereferenced, integers become int, decimals decimal.Decimal and
// list types their String form.
func (t *Table[T]) Value(row *T, column string) any {
	field, ok := t.schema.FieldsByDBName[column]
	if !ok || row == nil {
		return nil
	}
	v, _ := field.ValueOf(context.Background(), reflect.ValueOf(row).Elem())
	return normalize(v)
}

func (t *Table[T]) ordered(q *gorm.DB, orderBy string) (*gorm.DB, error) {
	for _, part := range strings.Split(orderBy, ",") {
		col := strings.TrimSpace(part)
		if col == "" {
			continue
		}
		desc := strings.HasPrefix(col, "-")
		col = strings.TrimPrefix(col, "-")
		if !t.HasColumn(col) {
			return nil, fmt.Errorf("%w %q", ErrUnknownColumn, col)
		}
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: desc})
	}
	return q, nil
}

func (t *Table[T]) fail(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		err = fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return &Error{Op: op, Table: t.Name(), Err: err}
}

// isUniqueViolation catches drivers that do not translate their errors.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func normalize(v any) any {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil
	}
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	}
	switch x := v.(type) {
	case decimal.NullDecimal:
		if !x.Valid {
			return nil
		}
		return x.Decimal
	case decimal.Decimal:
		return x
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return x
	}
	switch rv.Kind() {
	case reflect.String:
		if rv.String() == "" {
			return nil
		}
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int())
	case reflect.Bool:
		return rv.Bool()
	case reflect.Slice:
		if rv.Len() == 0 {
			return nil
		}
		if s, ok := v.(fmt.Stringer); ok {
			return s.String()
		}
	}
	return v
}
