package app

import (
	"github.com/mikelcalvo/financeiro-cli/internal/api"
)

// Cell is one rendered value; Class is set for status badges.
type Cell struct {
	Text  string
	Class string
}

// Row is one rendered record, or the placeholder row of an empty table.
type Row struct {
	ID          string
	Cells       []Cell
	Actions     []Action
	Placeholder bool
	Span        int // columns covered by the placeholder
}

// Has reports whether the row exposes action a.
func (r Row) Has(a Action) bool {
	for _, x := range r.Actions {
		if x == a {
			return true
		}
	}
	return false
}

// Table is a fully rendered list. Headers include "Ações" when rows carry
// actions.
type Table struct {
	Headers []string
	Rows    []Row
}

// RenderTable turns records into rows. It never patches a previous table.
func RenderTable(spec TableSpec, records []api.Record) Table {
	t := Table{Headers: make([]string, 0, spec.ColumnCount())}
	for _, c := range spec.Columns {
		t.Headers = append(t.Headers, c.Title)
	}
	if spec.Actions != nil {
		t.Headers = append(t.Headers, "Ações")
	}

	if len(records) == 0 {
		t.Rows = []Row{{
			Cells:       []Cell{{Text: spec.Empty}},
			Placeholder: true,
			Span:        spec.ColumnCount(),
		}}
		return t
	}

	t.Rows = make([]Row, 0, len(records))
	for _, rec := range records {
		row := Row{ID: rec.ID(), Cells: make([]Cell, len(spec.Columns))}
		for i, c := range spec.Columns {
			row.Cells[i].Text = c.Value(rec)
			if c.Badge != nil {
				row.Cells[i].Class = c.Badge(rec)
			}
		}
		if spec.Actions != nil {
			row.Actions = spec.Actions(rec)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
