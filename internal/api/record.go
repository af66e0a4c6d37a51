package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is one entity as returned by the API. Numbers are kept as
// json.Number so ids and amounts survive untouched.
type Record map[string]any

// Pagination mirrors the descriptor the server attaches to list replies.
type Pagination struct {
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasPrev bool `json:"has_prev"`
	HasNext bool `json:"has_next"`
}

// Get walks a dotted path ("fornecedor.razao_social") through nested objects.
func (r Record) Get(path string) any {
	var cur any = map[string]any(r)
	for _, key := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Record:
		return m, true
	}
	return nil, false
}

// Text renders the value at path as plain text; nil becomes "".
func (r Record) Text(path string) string {
	switch v := r.Get(path).(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Bool reads a boolean flag, accepting the loose forms older rows carry.
func (r Record) Bool(path string) bool {
	switch v := r.Get(path).(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	case json.Number:
		return v.String() != "0"
	}
	return false
}

// Records reads a nested array of objects, such as an invoice's items.
func (r Record) Records(path string) []Record {
	items, _ := r.Get(path).([]any)
	out := make([]Record, 0, len(items))
	for _, it := range items {
		if m, ok := asMap(it); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

// ID is the server-assigned identity as a string.
func (r Record) ID() string {
	return r.Text("id")
}

func decodeRecords(raw json.RawMessage) ([]Record, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var out []Record
	if err := decodeNumbers(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeRecord(raw json.RawMessage) (Record, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var out Record
	if err := decodeNumbers(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeNumbers(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}
