package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mikelcalvo/financeiro-cli/internal/api"
)

// DashboardLoadedMsg carries the payables summary.
type DashboardLoadedMsg struct {
	Seq  uint64
	Data *api.Dashboard
	Err  error
}

// Dashboard is the home section: totals per status and the next due payables.
type Dashboard struct {
	Data      *api.Dashboard
	Upcoming  Table
	Loaded    bool
	UpdatedAt time.Time

	app *App
	seq uint64
}

// Refresh fetches the summary.
func (d *Dashboard) Refresh() tea.Cmd {
	d.seq++
	seq := d.seq
	d.app.Busy.Acquire()

	backend, ctx := d.app.backend, d.app.ctx
	return func() tea.Msg {
		data, err := backend.Dashboard(ctx)
		return DashboardLoadedMsg{Seq: seq, Data: data, Err: err}
	}
}

func (d *Dashboard) apply(msg DashboardLoadedMsg) tea.Cmd {
	d.app.Busy.Release()
	if msg.Seq != d.seq {
		return nil
	}
	if msg.Err != nil {
		d.app.log.Warn().Err(msg.Err).Msg("dashboard refresh failed")
		return d.app.Notify(LevelError, api.UserMessage(msg.Err, "Erro ao carregar dashboard"))
	}
	d.Data = msg.Data
	d.Upcoming = RenderTable(Upcoming, msg.Data.Upcoming)
	d.Loaded = true
	d.UpdatedAt = d.app.now()
	return nil
}
