package app

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mikelcalvo/financeiro-cli/internal/api"
)

// pageWindow is how many page numbers are shown on each side of the current one.
const pageWindow = 2

// PageControl is one entry of the pager strip.
type PageControl struct {
	Label    string
	Page     int
	Disabled bool
	Current  bool
	// Select issues the page load; nil when the control is disabled.
	Select func() tea.Cmd
}

// RenderPager builds the pager strip for a descriptor. It returns nothing
// when there is a single page.
func RenderPager(p api.Pagination, onPageSelect func(page int) tea.Cmd) []PageControl {
	if p.Pages <= 1 {
		return nil
	}

	bind := func(page int) func() tea.Cmd {
		return func() tea.Cmd { return onPageSelect(page) }
	}

	controls := make([]PageControl, 0, 2*pageWindow+3)

	prev := PageControl{Label: "«", Page: p.Page - 1, Disabled: !p.HasPrev}
	if !prev.Disabled {
		prev.Select = bind(prev.Page)
	}
	controls = append(controls, prev)

	from := max(1, p.Page-pageWindow)
	to := min(p.Pages, p.Page+pageWindow)
	for i := from; i <= to; i++ {
		controls = append(controls, PageControl{
			Label:   strconv.Itoa(i),
			Page:    i,
			Current: i == p.Page,
			Select:  bind(i),
		})
	}

	next := PageControl{Label: "»", Page: p.Page + 1, Disabled: !p.HasNext}
	if !next.Disabled {
		next.Select = bind(next.Page)
	}
	controls = append(controls, next)

	return controls
}
