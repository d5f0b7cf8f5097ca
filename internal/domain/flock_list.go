package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// FlockList is the ordered list of flock references a hatch received eggs from.
// It is stored as a comma-delimited string and travels as a JSON array.
type FlockList []string

// ParseFlockList splits on commas, trimming blanks and dropping empty entries.
func ParseFlockList(s string) FlockList {
	var out FlockList
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// String renders the list the way the editor shows it.
func (l FlockList) String() string {
	return strings.Join(l, ", ")
}

// Scan implements sql.Scanner.
func (l *FlockList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*l = nil
	case []byte:
		*l = ParseFlockList(string(v))
	case string:
		*l = ParseFlockList(v)
	default:
		return errors.New("unsupported type for FlockList")
	}
	return nil
}

// Value implements driver.Valuer.
func (l FlockList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	return strings.Join(l, ","), nil
}

// MarshalJSON always emits an array, never null.
func (l FlockList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// UnmarshalJSON accepts either an array or a comma-delimited string.
func (l *FlockList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = ParseFlockList(strings.Join(arr, ","))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = ParseFlockList(s)
	return nil
}
