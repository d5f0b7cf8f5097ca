// Package listview derives the visible rows of a table page from its full
// in-memory collection, per-column filter substrings and an optional sort key.
package listview

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SortKey orders rows by one column.
type SortKey[C comparable] struct {
	Column C    `json:"column"`
	Desc   bool `json:"desc"`
}

// View is the filter and sort state of one list.
type View[C comparable] struct {
	Filters map[C]string `json:"filters"`
	Sort    *SortKey[C]  `json:"sort,omitempty"`
}

// SetFilter sets or, for an empty needle, removes the filter on col.
func (v *View[C]) SetFilter(col C, needle string) {
	if needle == "" {
		delete(v.Filters, col)
		return
	}
	if v.Filters == nil {
		v.Filters = map[C]string{}
	}
	v.Filters[col] = needle
}

// Clone returns a copy that shares nothing with v.
func (v View[C]) Clone() View[C] {
	out := View[C]{Filters: make(map[C]string, len(v.Filters))}
	for c, s := range v.Filters {
		out.Filters[c] = s
	}
	if v.Sort != nil {
		k := *v.Sort
		out.Sort = &k
	}
	return out
}

// Apply is VisibleRows with the view's filters and sort key.
func Apply[R any, C comparable](v View[C], rows []R, get func(R, C) any) []R {
	return VisibleRows(rows, get, v.Filters, v.Sort)
}

// VisibleRows returns the rows that pass every non-empty filter, ordered by key.
// get reads a column of a row and returns nil for absent values. Filters match
// case-insensitively against the value's text form; absent values never match.
// Absent values sort last in either direction and ties keep their input order.
// rows is never modified.
func VisibleRows[R any, C comparable](rows []R, get func(R, C) any, filters map[C]string, key *SortKey[C]) []R {
	needles := make(map[C]string, len(filters))
	for c, s := range filters {
		if s != "" {
			needles[c] = strings.ToLower(s)
		}
	}

	out := make([]R, 0, len(rows))
	for _, r := range rows {
		if matches(r, get, needles) {
			out = append(out, r)
		}
	}

	if key != nil {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := get(out[i], key.Column), get(out[j], key.Column)
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			}
			c := Compare(a, b)
			if key.Desc {
				return c > 0
			}
			return c < 0
		})
	}
	return out
}

func matches[R any, C comparable](r R, get func(R, C) any, needles map[C]string) bool {
	for c, needle := range needles {
		v := get(r, c)
		if v == nil {
			return false
		}
		if !strings.Contains(strings.ToLower(Text(v)), needle) {
			return false
		}
	}
	return true
}

// Compare orders two present values of the same column: text lexicographically,
// numbers numerically, dates chronologically. Mixed types fall back to text.
func Compare(a, b any) int {
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case int:
		if y, ok := b.(int); ok {
			return cmpInt(int64(x), int64(y))
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmpInt(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return decimal.NewFromFloat(x).Cmp(decimal.NewFromFloat(y))
		}
	case decimal.Decimal:
		if y, ok := b.(decimal.Decimal); ok {
			return x.Cmp(y)
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			return cmpInt(boolInt(x), boolInt(y))
		}
	}
	return strings.Compare(Text(a), Text(b))
}

// Text is the form a value is filtered on.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case decimal.Decimal:
		return x.String()
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
