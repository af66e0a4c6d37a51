package app

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mikelcalvo/financeiro-cli/internal/api"
	"github.com/mikelcalvo/financeiro-cli/internal/format"
)

// NotFound is shown when a lookup answers successfully with no record.
const NotFound = "Registro não encontrado"

// FormSavedMsg carries the result of a create or update. EditID is the edit
// target captured when the form was submitted; empty means create. Session
// identifies the form session that submitted it.
type FormSavedMsg struct {
	Entity  string
	EditID  string
	Session int
	Saved   *api.Saved
	Err     error
}

// RecordLoadedMsg carries a single record fetched for editing or viewing.
// EditID is the update target used when the record carries no id of its own.
type RecordLoadedMsg struct {
	Entity string
	ID     string
	EditID string
	Record api.Record
	Err    error
	View   bool // true for read-only detail, false to pre-fill the form
}

// Form is the create/edit modal of an entity. Open is the only visibility
// flag; EditID selects update over create.
type Form struct {
	Entity   *Entity
	Controls []*Control
	Open     bool
	EditID   string
	Saving   bool
	Err      string

	session int
	app     *App
}

func newForm(a *App, e *Entity) *Form {
	return &Form{Entity: e, Controls: newControls(e.Fields), app: a}
}

// Editing reports whether the next submit updates an existing record.
func (f *Form) Editing() bool {
	return f.EditID != ""
}

// Control returns the control with the given key, or nil.
func (f *Form) Control(key string) *Control {
	for _, c := range f.Controls {
		if c.Key == key {
			return c
		}
	}
	return nil
}

// Visible lists the controls shown for the current mode.
func (f *Form) Visible() []*Control {
	out := make([]*Control, 0, len(f.Controls))
	for _, c := range f.Controls {
		if c.CreateOnly && f.Editing() {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Missing lists the labels of required visible controls left empty.
func (f *Form) Missing() []string {
	var out []string
	for _, c := range f.Visible() {
		if c.Required && strings.TrimSpace(c.Value) == "" {
			out = append(out, c.Label)
		}
	}
	return out
}

// Values snapshots the raw control values.
func (f *Form) Values() map[string]string {
	out := make(map[string]string, len(f.Controls))
	for _, c := range f.Controls {
		out[c.Key] = c.Value
	}
	return out
}

// New opens an empty form for a create.
func (f *Form) New() {
	f.clear()
	f.Open = true
}

// Close hides the form and forgets the edit target.
func (f *Form) Close() {
	f.Open = false
	f.clear()
}

func (f *Form) clear() {
	for _, c := range f.Controls {
		c.Reset()
	}
	f.EditID = ""
	f.Err = ""
	f.Saving = false
	f.session++
}

// LoadForEdit fetches a record and, once it arrives, fills the form with it
// and makes it the edit target.
func (f *Form) LoadForEdit(id string) tea.Cmd {
	path := f.Entity.Path
	return f.load(id, id, func(ctx context.Context, b Backend) (api.Record, error) {
		return b.Get(ctx, path, id)
	})
}

func (f *Form) load(id, editID string, fetch func(context.Context, Backend) (api.Record, error)) tea.Cmd {
	f.app.Busy.Acquire()
	backend, ctx, key := f.app.backend, f.app.ctx, f.Entity.Key
	return func() tea.Msg {
		rec, err := fetch(ctx, backend)
		return RecordLoadedMsg{Entity: key, ID: id, EditID: editID, Record: rec, Err: err}
	}
}

func (f *Form) applyLoaded(msg RecordLoadedMsg) tea.Cmd {
	f.app.Busy.Release()
	if msg.Err != nil {
		return f.app.Notify(LevelError, api.UserMessage(msg.Err, f.Entity.Messages.LoadError))
	}
	editID := msg.Record.ID()
	if editID == "" {
		editID = msg.EditID
	}
	if msg.Record == nil || editID == "" {
		return f.app.Notify(LevelWarning, NotFound)
	}

	f.clear()
	for _, c := range f.Controls {
		if c.Transient {
			continue
		}
		c.Value = fieldValue(c, msg.Record)
	}
	f.EditID = editID
	f.Open = true
	return nil
}

func fieldValue(c *Control, rec api.Record) string {
	raw := rec.Get(c.Key)
	if raw == nil {
		return c.Default
	}
	switch c.Kind {
	case KindBool:
		if rec.Bool(c.Key) {
			return "true"
		}
		return "false"
	case KindNumber:
		return format.Amount(raw).StringFixed(2)
	case KindDate:
		s := rec.Text(c.Key)
		if len(s) > 10 {
			s = s[:10]
		}
		return s
	}
	v := rec.Text(c.Key)
	if c.Mask != nil {
		v = c.Mask(v)
	}
	return v
}

// Payload encodes the controls as the JSON body of a create or update.
func (f *Form) Payload() map[string]any {
	editing := f.Editing()
	p := make(map[string]any, len(f.Controls))
	for _, c := range f.Controls {
		if c.Transient || (c.CreateOnly && editing) {
			continue
		}
		v := strings.TrimSpace(c.Value)
		switch c.Kind {
		case KindNumber:
			if v == "" {
				continue
			}
			if d, err := format.ParseAmount(v); err == nil {
				p[c.Key] = json.Number(d.String())
			} else {
				p[c.Key] = v
			}
		case KindSelect:
			if v == "" {
				continue
			}
			if n, err := strconv.Atoi(v); err == nil {
				p[c.Key] = n
			} else {
				p[c.Key] = v
			}
		case KindDate:
			if iso, ok := format.ParseDisplayDate(v); ok {
				p[c.Key] = iso
			} else {
				p[c.Key] = v
			}
		case KindBool:
			p[c.Key] = v == "true"
		default:
			p[c.Key] = v
		}
	}
	if f.Entity.Prepare != nil {
		f.Entity.Prepare(p, f.Values(), editing)
	}
	return p
}

// Submit creates or updates depending on the edit target at this moment.
func (f *Form) Submit() tea.Cmd {
	payload := f.Payload()
	editID, session := f.EditID, f.session
	f.Saving = true
	f.Err = ""
	f.app.Busy.Acquire()

	backend, ctx := f.app.backend, f.app.ctx
	path, key := f.Entity.Path, f.Entity.Key
	return func() tea.Msg {
		var saved *api.Saved
		var err error
		if editID == "" {
			saved, err = backend.Create(ctx, path, payload)
		} else {
			saved, err = backend.Update(ctx, path, editID, payload)
		}
		return FormSavedMsg{Entity: key, EditID: editID, Session: session, Saved: saved, Err: err}
	}
}

func (f *Form) applySaved(msg FormSavedMsg) tea.Cmd {
	f.app.Busy.Release()
	// a reply for a session the user already left must not touch the form
	// they are in now
	current := f.Open && msg.Session == f.session
	if current {
		f.Saving = false
	}

	if msg.Err != nil {
		text := api.UserMessage(msg.Err, f.Entity.Messages.SaveError)
		f.app.log.Warn().Err(msg.Err).Str("entity", msg.Entity).Str("edit_id", msg.EditID).Msg("save failed")
		if current {
			f.Err = text
		}
		return f.app.Notify(LevelError, text)
	}

	text := f.Entity.Messages.Saved
	if msg.Saved != nil && msg.Saved.Message != "" {
		text = msg.Saved.Message
	}

	if current {
		f.Open = false
		f.clear()
	}

	cmds := []tea.Cmd{
		f.app.Notify(LevelSuccess, text),
		f.app.Lists[f.Entity.Key].Refresh(0),
	}
	return tea.Batch(append(cmds, f.app.dependents(f.Entity)...)...)
}
