package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mikelcalvo/financeiro-cli/internal/app"
	"github.com/mikelcalvo/financeiro-cli/internal/format"
)

// editor edits a set of controls: an entity form, a filter bar or a short
// prompt. Text controls are backed by a textinput; selects and flags are
// cycled in place.
type editor struct {
	title    string
	hint     string
	controls []*app.Control
	inputs   []textinput.Model
	focus    int
	errMsg   string

	form   *app.Form // set when editing an entity form
	submit func(m *Model) tea.Cmd
	cancel func(m *Model)
}

func newEditor(title string, controls []*app.Control) *editor {
	ed := &editor{
		title:    title,
		controls: controls,
		inputs:   make([]textinput.Model, len(controls)),
	}
	for i, c := range controls {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 200
		ti.Width = 40
		ti.Placeholder = placeholderFor(c)
		ti.Cursor.SetMode(cursor.CursorStatic)
		ti.SetValue(c.Value)
		ed.inputs[i] = ti
	}
	ed.setFocus(0)
	return ed
}

func placeholderFor(c *app.Control) string {
	if c.Placeholder != "" {
		return c.Placeholder
	}
	switch c.Kind {
	case app.KindDate:
		return "dd/mm/aaaa"
	case app.KindNumber:
		return "0,00"
	}
	return ""
}

func cycles(c *app.Control) bool {
	return c.Kind == app.KindSelect || c.Kind == app.KindBool
}

// setFocus updates which input has focus
func (ed *editor) setFocus(i int) {
	n := len(ed.inputs)
	if n == 0 {
		return
	}
	ed.focus = (i%n + n) % n
	for j := range ed.inputs {
		if j == ed.focus && !cycles(ed.controls[j]) {
			ed.inputs[j].Focus()
		} else {
			ed.inputs[j].Blur()
		}
	}
}

// updateEditor handles editor input updates
func (m *Model) updateEditor(msg tea.KeyMsg) tea.Cmd {
	ed := m.editor

	switch msg.String() {
	case "tab", "down":
		ed.setFocus(ed.focus + 1)
		return nil

	case "shift+tab", "up":
		ed.setFocus(ed.focus - 1)
		return nil

	case "enter":
		return ed.submit(m)

	case "esc":
		m.editor = nil
		if ed.cancel != nil {
			ed.cancel(m)
		}
		return nil
	}

	if len(ed.controls) == 0 {
		return nil
	}

	c := ed.controls[ed.focus]
	if cycles(c) {
		switch msg.String() {
		case "left":
			c.Cycle(-1)
		case "right", " ":
			c.Cycle(1)
		}
		return nil
	}

	// Update the focused input, then let the control mask it
	var cmd tea.Cmd
	in := &ed.inputs[ed.focus]
	*in, cmd = in.Update(msg)
	c.Set(in.Value())
	if c.Value != in.Value() {
		in.SetValue(c.Value)
		in.CursorEnd()
	}
	return cmd
}

// openForm shows the create/edit form of an entity.
func (m *Model) openForm(f *app.Form) {
	title := "Novo registro"
	if f.Editing() {
		title = "Editar #" + f.EditID
	}

	ed := newEditor(title, f.Visible())
	ed.form = f
	ed.submit = func(m *Model) tea.Cmd {
		if f.Saving {
			return nil
		}
		if missing := f.Missing(); len(missing) > 0 {
			ed.errMsg = "Preencha os campos obrigatórios: " + strings.Join(missing, ", ")
			return nil
		}
		ed.errMsg = ""
		return f.Submit()
	}
	ed.cancel = func(*Model) { f.Close() }
	m.editor = ed
}

// openFilters edits the filter controls of a list; submitting reloads page 1.
func (m *Model) openFilters(lv *app.ListView) {
	ed := newEditor("Filtros", lv.Filters)
	ed.submit = func(m *Model) tea.Cmd {
		m.editor = nil
		return lv.Refresh(1)
	}
	m.editor = ed
}

func (m *Model) openPay(id string) {
	date := &app.Control{Field: app.Field{Key: "data_pagamento", Label: "Data do pagamento", Kind: app.KindDate, Placeholder: "hoje"}}
	amount := &app.Control{Field: app.Field{Key: "valor_pago", Label: "Valor pago", Kind: app.KindNumber, Placeholder: "valor original"}}

	ed := newEditor("Pagar #"+id, []*app.Control{date, amount})
	ed.hint = "Deixe em branco para pagar hoje o valor original."
	ed.submit = func(m *Model) tea.Cmd {
		if v := strings.TrimSpace(date.Value); v != "" {
			if _, ok := format.ParseDisplayDate(v); !ok {
				ed.errMsg = "Data inválida, use dd/mm/aaaa"
				return nil
			}
		}
		if v := strings.TrimSpace(amount.Value); v != "" {
			if _, err := format.ParseAmount(v); err != nil {
				ed.errMsg = app.InvalidAmount
				return nil
			}
		}
		m.editor = nil
		return m.app.Pay(id, strings.TrimSpace(date.Value), strings.TrimSpace(amount.Value))
	}
	m.editor = ed
}

func (m *Model) openUpload() {
	file := &app.Control{Field: app.Field{Key: "arquivo", Label: "Arquivo XML", Placeholder: "/caminho/para/nfe.xml", Required: true}}

	ed := newEditor("Importar NF-e", []*app.Control{file})
	ed.submit = func(m *Model) tea.Cmd {
		path := strings.TrimSpace(file.Value)
		if !strings.HasSuffix(strings.ToLower(path), ".xml") {
			ed.errMsg = "Selecione um arquivo XML"
			return nil
		}
		m.editor = nil
		return m.app.Upload(path)
	}
	m.editor = ed
}

func (m *Model) openCNPJLookup() {
	cnpj := &app.Control{Field: app.Field{Key: "cnpj", Label: "CNPJ", Mask: format.CNPJ, Required: true}}

	ed := newEditor("Buscar por CNPJ", []*app.Control{cnpj})
	ed.submit = func(m *Model) tea.Cmd {
		digits := format.Digits(cnpj.Value, 14)
		if len(digits) != 14 {
			ed.errMsg = "CNPJ deve ter 14 dígitos"
			return nil
		}
		m.editor = nil
		return m.app.EditSupplierByCNPJ(digits)
	}
	m.editor = ed
}

func (m Model) renderEditor() string {
	ed := m.editor

	var b strings.Builder
	b.WriteString(titleStyle.Render(" " + ed.title + " "))
	b.WriteString("\n\n")

	width := 0
	for _, c := range ed.controls {
		width = max(width, len([]rune(c.Label))+2)
	}

	for i, c := range ed.controls {
		label := c.Label
		if c.Required {
			label += " *"
		}
		pad := strings.Repeat(" ", max(0, width-len([]rune(label))))

		var value string
		if cycles(c) {
			value = "‹ " + c.Display() + " ›"
		} else {
			value = ed.inputs[i].View()
		}

		if i == ed.focus {
			b.WriteString(selectedStyle.Render("> "+label) + pad + "  " + value + "\n")
		} else {
			b.WriteString("  " + label + pad + "  " + value + "\n")
		}
	}

	if ed.hint != "" {
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(ed.hint))
	}

	errText := ed.errMsg
	if errText == "" && ed.form != nil {
		errText = ed.form.Err
	}
	if errText != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render("Erro: " + errText))
	}
	if ed.form != nil && ed.form.Saving {
		b.WriteString(fmt.Sprintf("\n\n%s Salvando...", m.spinner.View()))
	}

	return boxStyle.Render(b.String())
}
