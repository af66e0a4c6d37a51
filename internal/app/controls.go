package app

import (
	"github.com/mikelcalvo/financeiro-cli/internal/format"
)

// FieldKind tells the UI how to edit a control and the form how to encode it.
type FieldKind int

const (
	KindText FieldKind = iota
	KindNumber
	KindDate
	KindSelect
	KindBool
)

// Option is one entry of a selection control.
type Option struct {
	ID    string
	Label string
}

// Field describes an input: a filter above a list or a field in a form.
type Field struct {
	Key         string
	Label       string
	Kind        FieldKind
	Source      string   // lookup feeding a select; empty for static options
	Options     []Option // static options for selects
	Placeholder string   // label of the empty select option
	Default     string
	Mask        func(string) string
	Required    bool
	CreateOnly  bool // hidden when editing
	Transient   bool // read by the entity's Prepare hook, never sent as-is
}

// Control is the live state of one Field.
type Control struct {
	Field
	Value string
}

func newControls(fields []Field) []*Control {
	out := make([]*Control, len(fields))
	for i, f := range fields {
		c := &Control{Field: f, Value: f.Default}
		c.Options = append([]Option(nil), f.Options...)
		out[i] = c
	}
	return out
}

// Set stores v, masked when the field has an input mask.
func (c *Control) Set(v string) {
	if c.Mask != nil {
		v = c.Mask(v)
	}
	c.Value = v
}

// Reset restores the control's initial value.
func (c *Control) Reset() {
	c.Value = c.Default
}

// Cycle moves a select through placeholder plus options, or flips a bool.
func (c *Control) Cycle(delta int) {
	switch c.Kind {
	case KindBool:
		if c.Value == "true" {
			c.Value = "false"
		} else {
			c.Value = "true"
		}
	case KindSelect:
		ids := make([]string, 0, len(c.Options)+1)
		ids = append(ids, "")
		cur := 0
		for i, o := range c.Options {
			ids = append(ids, o.ID)
			if o.ID == c.Value {
				cur = i + 1
			}
		}
		n := len(ids)
		c.Value = ids[((cur+delta)%n+n)%n]
	}
}

// Display is the text a UI shows for the current value.
func (c *Control) Display() string {
	switch c.Kind {
	case KindSelect:
		if c.Value == "" {
			return c.Placeholder
		}
		for _, o := range c.Options {
			if o.ID == c.Value {
				return o.Label
			}
		}
		return c.Value
	case KindBool:
		if c.Value == "true" {
			return "Sim"
		}
		return "Não"
	}
	return c.Value
}

// Publish replaces the options of a select, keeping the selection when it is
// still offered and falling back to the placeholder otherwise.
func (c *Control) Publish(opts []Option) {
	c.Options = append([]Option(nil), opts...)
	if c.Value == "" {
		return
	}
	for _, o := range opts {
		if o.ID == c.Value {
			return
		}
	}
	c.Value = ""
}

// queryValue is the value a filter sends; dates typed as dd/mm/yyyy are sent
// as ISO.
func (c *Control) queryValue() string {
	if c.Kind == KindDate {
		if iso, ok := format.ParseDisplayDate(c.Value); ok {
			return iso
		}
	}
	if c.Kind == KindBool && c.Value != "true" {
		return ""
	}
	return c.Value
}
