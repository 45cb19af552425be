// Package parser structured object extractor
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Field aliases, English key first. The first key present with a non-null
// value wins, even when that value is empty.
var (
	nameKeys      = []string{"name", "nome"}
	ageKeys       = []string{"age", "idade"}
	phoneKeys     = []string{"phone", "telefone"}
	lastVisitKeys = []string{"lastVisit", "ultimaVisita", "data"}
)

// ParseJSON parses a single object or an array of objects.
// Malformed input returns an error wrapping ErrMalformedJSON and no records.
func (p *Parser) ParseJSON(content string) (*ImportResult, error) {
	result := newResult(FormatJSON)

	if strings.TrimSpace(content) == "" {
		return result, nil
	}

	data, err := decodeJSON(content)
	if err != nil {
		return nil, err
	}

	items, ok := data.([]any)
	if !ok {
		items = []any{data}
	}

	rows := make([]rawRow, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			rows = append(rows, rawRow{position: i, dropped: dropNotObject})
			continue
		}

		rows = append(rows, rawRow{
			position:  i,
			name:      lookupField(obj, nameKeys),
			age:       lookupField(obj, ageKeys),
			phone:     lookupField(obj, phoneKeys),
			lastVisit: lookupField(obj, lastVisitKeys),
		})
	}

	return result.finish(p.assemble(rows)), nil
}

// decodeJSON decodes exactly one JSON value. Numbers keep their literal
// text so long phone numbers are not turned into floats.
func decodeJSON(content string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()

	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after top-level value", ErrMalformedJSON)
	}

	return data, nil
}

// lookupField returns the first alias present with a non-null value
func lookupField(obj map[string]any, keys []string) string {
	for _, key := range keys {
		v, exists := obj[key]
		if !exists || v == nil {
			continue
		}
		return stringify(v)
	}
	return ""
}

// stringify coerces a decoded JSON value to text
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return numberText(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if e == nil {
				parts = append(parts, "")
				continue
			}
			parts = append(parts, stringify(e))
		}
		return strings.Join(parts, ",")
	default:
		// nested objects carry no usable text
		return ""
	}
}

// numberText integer literals verbatim so long phones stay exact; fraction
// and exponent forms in plain decimal ("1.1987654321e10" -> "11987654321")
func numberText(n json.Number) string {
	lit := n.String()
	if !strings.ContainsAny(lit, ".eE") {
		return lit
	}
	f, err := n.Float64()
	if err != nil {
		return lit
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
