package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"hatchery-backend/internal/application/listview"
	"hatchery-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ErrInvalidBody is returned for request bodies that are not the expected JSON shape.
var ErrInvalidBody = errors.New("Invalid request body")

// Form decodes a flat JSON object into draft texts keyed as sent. Numbers keep their
// literal form, null becomes "" and arrays are joined with ", ".
func Form(body []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil || raw == nil {
		return nil, ErrInvalidBody
	}
	form := make(map[string]string, len(raw))
	for k, v := range raw {
		s, err := Draft(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidBody, k, err)
		}
		form[k] = s
	}
	return form, nil
}

// Draft renders one decoded JSON value as editor text.
func Draft(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	case []any:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			s, err := Draft(e)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ", "), nil
	}
	return "", fmt.Errorf("unsupported value %T", v)
}

// ParseView reads list-view query parameters (?sort=-col&filter.col=x).
func ParseView[C comparable](c *fiber.Ctx, resolve func(string) (C, bool)) (listview.View[C], error) {
	return listview.ParseQuery(c.Queries(), resolve)
}

// ListMeta describes view for a list response of count rows.
func ListMeta[C comparable](v listview.View[C], name func(C) string, count, total int) response.ListMeta {
	meta := response.ListMeta{Count: count, Total: total}
	if v.Sort != nil {
		meta.Sort = name(v.Sort.Column)
		if v.Sort.Desc {
			meta.Sort = "-" + meta.Sort
		}
	}
	if len(v.Filters) > 0 {
		meta.Filters = make(map[string]string, len(v.Filters))
		for col, needle := range v.Filters {
			meta.Filters[name(col)] = needle
		}
	}
	return meta
}

// ViewQuery turns a JSON view body into the query form ParseView reads.
func ViewQuery(filters map[string]string, sortBy string) map[string]string {
	q := map[string]string{}
	if sortBy != "" {
		q["sort"] = sortBy
	}
	for k, v := range filters {
		q["filter."+k] = v
	}
	return q
}
