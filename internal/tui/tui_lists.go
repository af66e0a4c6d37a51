package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mikelcalvo/financeiro-cli/internal/app"
)

const actionsWidth = 12

// actionKeys are the keys shown in the actions column, in display order.
var actionKeys = []struct {
	action app.Action
	key    string
}{
	{app.ActionView, "v"},
	{app.ActionPay, "p"},
	{app.ActionEdit, "e"},
	{app.ActionDelete, "d"},
}

func columnsFor(e *app.Entity) []table.Column {
	cols := make([]table.Column, 0, e.ColumnCount())
	for _, c := range e.Columns {
		cols = append(cols, table.Column{Title: c.Title, Width: c.Width})
	}
	if e.Actions != nil {
		cols = append(cols, table.Column{Title: "Ações", Width: actionsWidth})
	}
	return cols
}

// rowsFor flattens a rendered table. The placeholder row is left out; the
// widget cannot span columns, so renderList prints its message instead.
func rowsFor(t app.Table) []table.Row {
	rows := make([]table.Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		if r.Placeholder {
			continue
		}
		row := make(table.Row, 0, len(r.Cells)+1)
		for _, c := range r.Cells {
			row = append(row, c.Text)
		}
		if len(t.Headers) > len(r.Cells) {
			row = append(row, actionHints(r))
		}
		rows = append(rows, row)
	}
	return rows
}

func actionHints(r app.Row) string {
	hints := make([]string, 0, len(actionKeys))
	for _, a := range actionKeys {
		if r.Has(a.action) {
			hints = append(hints, a.key)
		}
	}
	return strings.Join(hints, " ")
}

func (m *Model) syncTable() {
	lv := m.app.Current()
	if lv == nil {
		return
	}
	if m.tableFor != lv.Entity.Key {
		// rows first, so no row outgrows the new column set
		m.table.SetRows(nil)
		m.table.SetColumns(columnsFor(lv.Entity))
		m.tableFor = lv.Entity.Key
		m.table.SetRows(rowsFor(lv.Table))
		m.table.SetCursor(0)
		return
	}
	m.table.SetRows(rowsFor(lv.Table))
	// SetCursor clamps to the row count, which is -1 on an empty table
	m.table.SetCursor(max(0, min(m.table.Cursor(), len(lv.Table.Rows)-1)))
}

// selectedRow is the record row under the cursor; false on the placeholder.
func (m *Model) selectedRow() (app.Row, bool) {
	lv := m.app.Current()
	if lv == nil {
		return app.Row{}, false
	}
	i := m.table.Cursor()
	if i < 0 || i >= len(lv.Table.Rows) || lv.Table.Rows[i].Placeholder {
		return app.Row{}, false
	}
	return lv.Table.Rows[i], true
}

func (m *Model) handleListKey(msg tea.KeyMsg) tea.Cmd {
	lv := m.app.Current()
	e := lv.Entity
	row, ok := m.selectedRow()

	switch msg.String() {
	case "/":
		m.openFilters(lv)
		return nil

	case "x":
		lv.ClearFilters()
		return lv.Refresh(1)

	case "left", "[":
		return selectPage(lv.Pager, "«")

	case "right", "]":
		return selectPage(lv.Pager, "»")

	case "n":
		if f, found := m.app.Forms[e.Key]; found {
			f.New()
			m.openForm(f)
		}
		return nil

	case "enter":
		if !ok {
			return nil
		}
		if row.Has(app.ActionView) {
			return m.app.View(e, row.ID)
		}
		if row.Has(app.ActionEdit) {
			return m.app.Forms[e.Key].LoadForEdit(row.ID)
		}
		return nil

	case "v":
		if ok && row.Has(app.ActionView) {
			return m.app.View(e, row.ID)
		}
		return nil

	case "e":
		if ok && row.Has(app.ActionEdit) {
			return m.app.Forms[e.Key].LoadForEdit(row.ID)
		}
		return nil

	case "d":
		if ok && row.Has(app.ActionDelete) {
			m.confirm = confirmDelete(e, row.ID)
		}
		return nil

	case "p":
		if ok && row.Has(app.ActionPay) {
			id := row.ID
			m.confirm = &confirmation{
				message: app.PromptPay,
				run: func(m *Model) tea.Cmd {
					m.openPay(id)
					return nil
				},
			}
		}
		return nil

	case "u":
		if e == app.Invoices {
			m.openUpload()
		}
		return nil

	case "o":
		if e == app.Payables {
			return m.app.MarkOverdue()
		}
		return nil

	case "c":
		if e == app.Suppliers {
			m.openCNPJLookup()
		}
		return nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return cmd
}

// selectPage fires the pager control with the given label when it is enabled.
func selectPage(pager []app.PageControl, label string) tea.Cmd {
	for _, c := range pager {
		if c.Label == label && c.Select != nil {
			return c.Select()
		}
	}
	return nil
}

func listHelp(e *app.Entity) string {
	parts := []string{}
	if e.HasForm() {
		parts = append(parts, "n: novo")
	}
	switch e {
	case app.Invoices:
		parts = append(parts, "enter/v: ver", "u: importar XML")
	case app.Payables:
		parts = append(parts, "p: pagar", "o: atualizar vencidas")
	case app.Suppliers:
		parts = append(parts, "c: buscar CNPJ")
	}
	if e.HasForm() {
		parts = append(parts, "enter/e: editar")
	}
	parts = append(parts, "d: excluir")
	return strings.Join(parts, " • ")
}

func (m Model) renderList() string {
	lv := m.app.Current()

	var b strings.Builder
	b.WriteString(titleStyle.Render(" " + lv.Entity.Title + " "))
	b.WriteString("  ")
	b.WriteString(m.renderFilterSummary(lv))
	b.WriteString("\n\n")

	if !lv.Loaded && m.app.Busy.Active() {
		b.WriteString(fmt.Sprintf("  %s Carregando...", m.spinner.View()))
		return b.String()
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")
	if rows := lv.Table.Rows; len(rows) == 1 && rows[0].Placeholder {
		b.WriteString(helpStyle.Render("  " + rows[0].Cells[0].Text))
		b.WriteString("\n")
	}
	b.WriteString(renderPager(lv))
	return b.String()
}

func (m Model) renderFilterSummary(lv *app.ListView) string {
	var active []string
	for _, c := range lv.Filters {
		if c.Value == "" || c.Value == c.Default || (c.Kind == app.KindBool && c.Value != "true") {
			continue
		}
		active = append(active, c.Label+": "+c.Display())
	}
	if len(active) == 0 {
		return helpStyle.Render("sem filtros")
	}
	return breadcrumbStyle.Render("Filtros: " + strings.Join(active, " • "))
}

func renderPager(lv *app.ListView) string {
	p := lv.Pagination
	summary := helpStyle.Render(fmt.Sprintf("  %d registro(s)", p.Total))
	if len(lv.Pager) == 0 {
		return summary
	}

	parts := make([]string, 0, len(lv.Pager))
	for _, c := range lv.Pager {
		switch {
		case c.Current:
			parts = append(parts, selectedStyle.Render("["+c.Label+"]"))
		case c.Disabled:
			parts = append(parts, helpStyle.Render(c.Label))
		default:
			parts = append(parts, c.Label)
		}
	}
	return "  " + strings.Join(parts, " ") + summary +
		helpStyle.Render(fmt.Sprintf(" • página %d de %d", p.Page, p.Pages))
}
