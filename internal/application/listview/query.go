package listview

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownColumn is returned by ParseQuery for a column the list does not have.
	ErrUnknownColumn = errors.New("unknown column")
	ErrInvalidQuery  = errors.New("invalid list query")
)

// ParseQuery reads list-view parameters from a request query:
//
//	sort=<col>            sort ascending by col; "-<col>" sorts descending
//	dir=asc|desc          direction for sort
//	filter.<col>=<text>   substring filter on col (filter[<col>] also accepted)
//
// resolve maps a query column name onto the list's column identifier.
func ParseQuery[C comparable](query map[string]string, resolve func(string) (C, bool)) (View[C], error) {
	v := View[C]{Filters: map[C]string{}}
	for k, val := range query {
		name, ok := filterColumn(k)
		if !ok || val == "" {
			continue
		}
		col, ok := resolve(name)
		if !ok {
			return View[C]{}, fmt.Errorf("%w %q", ErrUnknownColumn, name)
		}
		v.Filters[col] = val
	}

	s := strings.TrimSpace(query["sort"])
	if s == "" {
		return v, nil
	}
	desc := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	col, ok := resolve(s)
	if !ok {
		return View[C]{}, fmt.Errorf("%w %q", ErrUnknownColumn, s)
	}
	switch strings.ToLower(strings.TrimSpace(query["dir"])) {
	case "desc":
		desc = true
	case "asc":
		desc = false
	case "":
	default:
		return View[C]{}, fmt.Errorf("%w: dir must be asc or desc, got %q", ErrInvalidQuery, query["dir"])
	}
	v.Sort = &SortKey[C]{Column: col, Desc: desc}
	return v, nil
}

func filterColumn(key string) (string, bool) {
	if name, ok := strings.CutPrefix(key, "filter."); ok && name != "" {
		return name, true
	}
	if rest, ok := strings.CutPrefix(key, "filter["); ok && strings.HasSuffix(rest, "]") && len(rest) > 1 {
		return strings.TrimSuffix(rest, "]"), true
	}
	return "", false
}

// Columns resolves names against a fixed set of column names.
func Columns(names ...string) func(string) (string, bool) {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(s string) (string, bool) {
		_, ok := set[s]
		return s, ok
	}
}
