package app

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Nav is the section state machine. The section set is fixed; Current is
// always one of Sections.
type Nav struct {
	Sections []string
	Current  string
}

func newNav(initial string) Nav {
	n := Nav{Sections: []string{SectionDashboard}}
	for _, e := range Entities() {
		n.Sections = append(n.Sections, e.Key)
	}
	n.Current = SectionDashboard
	if n.Has(initial) {
		n.Current = initial
	}
	return n
}

// Has reports whether id is a known section.
func (n Nav) Has(id string) bool {
	for _, s := range n.Sections {
		if s == id {
			return true
		}
	}
	return false
}

// Index is the position of the current section.
func (n Nav) Index() int {
	for i, s := range n.Sections {
		if s == n.Current {
			return i
		}
	}
	return 0
}

// SectionTitle is the label of a section in menus and breadcrumbs.
func SectionTitle(id string) string {
	if id == SectionDashboard {
		return "Dashboard"
	}
	if e := EntityByKey(id); e != nil {
		return e.Title
	}
	return id
}

// Activate switches to section id and loads its data. Unknown ids are ignored.
func (a *App) Activate(id string) tea.Cmd {
	if !a.Nav.Has(id) {
		return nil
	}
	a.Nav.Current = id
	a.Detail = nil
	if id == SectionDashboard {
		return a.Dashboard.Refresh()
	}
	return a.Lists[id].Refresh(0)
}

// Step moves delta sections forward or back, wrapping around.
func (a *App) Step(delta int) tea.Cmd {
	n := len(a.Nav.Sections)
	i := ((a.Nav.Index()+delta)%n + n) % n
	return a.Activate(a.Nav.Sections[i])
}
