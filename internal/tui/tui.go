// Package tui is the terminal front end of the back office. It renders the
// state held by app.App and turns key presses into app operations.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mikelcalvo/financeiro-cli/internal/api"
	"github.com/mikelcalvo/financeiro-cli/internal/app"
)

// Version info
const (
	Version = "1.0.0"
	Author  = "Mikel Calvo"
	Year    = "2026"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#333333")).
			Padding(0, 1)

	lanStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	internetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF9500")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	creditStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(1, 2)

	// Badge styles for status indicators
	pendingBadge = lipgloss.NewStyle().
			Background(lipgloss.Color("#7D56F4")).
			Foreground(lipgloss.Color("#FFF")).
			Padding(0, 1)

	paidBadge = lipgloss.NewStyle().
			Background(lipgloss.Color("#04B575")).
			Foreground(lipgloss.Color("#FFF")).
			Padding(0, 1)

	overdueBadge = lipgloss.NewStyle().
			Background(lipgloss.Color("#FF4444")).
			Foreground(lipgloss.Color("#FFF")).
			Padding(0, 1)

	cancelledBadge = lipgloss.NewStyle().
			Background(lipgloss.Color("#626262")).
			Foreground(lipgloss.Color("#FFF")).
			Padding(0, 1)

	notificationSuccess = lipgloss.NewStyle().
				Background(lipgloss.Color("#04B575")).
				Foreground(lipgloss.Color("#FFF")).
				Padding(0, 1).
				Bold(true)

	notificationError = lipgloss.NewStyle().
				Background(lipgloss.Color("#FF4444")).
				Foreground(lipgloss.Color("#FFF")).
				Padding(0, 1).
				Bold(true)

	notificationWarning = lipgloss.NewStyle().
				Background(lipgloss.Color("#FF9500")).
				Foreground(lipgloss.Color("#000")).
				Padding(0, 1).
				Bold(true)

	notificationInfo = lipgloss.NewStyle().
				Background(lipgloss.Color("#333333")).
				Foreground(lipgloss.Color("#FFF")).
				Padding(0, 1)

	breadcrumbStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// Status is the connection summary shown in the status bar.
type Status struct {
	Brand string
	Mode  string
	URL   string
}

type confirmation struct {
	message string
	note    string
	run     func(m *Model) tea.Cmd
}

// Model is the main TUI model
type Model struct {
	app    *app.App
	status Status
	width  int
	height int

	table    table.Model
	tableFor string // section whose columns the table holds

	editor  *editor
	confirm *confirmation

	spinner       spinner.Model
	viewport      viewport.Model
	viewportReady bool
}

// NewTUI creates a new TUI model over a.
func NewTUI(a *app.App, status Status) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	t := table.New(table.WithFocused(true), table.WithHeight(10))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#7D56F4")).
		BorderBottom(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4")).
		Bold(true)
	t.SetStyles(styles)

	if status.Brand == "" {
		status.Brand = "Financeiro"
	}

	return Model{
		app:     a,
		status:  status,
		table:   t,
		spinner: s,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.app.Init(),
		m.spinner.Tick,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		cmd = m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	default:
		cmd = m.app.Update(msg)
	}

	m.sync()
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	m.table.SetWidth(width - 4)
	m.table.SetHeight(max(3, height-14))

	headerHeight := 5 // status bar + breadcrumbs + tabs + notification
	footerHeight := 4 // help + credits
	m.viewport = viewport.New(width-4, max(3, height-headerHeight-footerHeight))
	m.viewport.YPosition = headerHeight
	m.viewportReady = true
}

// sync brings the widgets in line with the app state after every update.
func (m *Model) sync() {
	if m.editor != nil && m.editor.form != nil && !m.editor.form.Open {
		m.editor = nil
	}
	if m.editor == nil {
		for _, e := range app.Entities() {
			if f, ok := m.app.Forms[e.Key]; ok && f.Open {
				m.openForm(f)
				break
			}
		}
	}

	m.syncTable()

	if m.viewportReady {
		m.viewport.SetContent(m.renderDashboardContent())
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	if m.confirm != nil {
		switch key {
		case "y", "Y":
			c := m.confirm
			m.confirm = nil
			return c.run(m)
		case "n", "N", "esc":
			m.confirm = nil
		}
		return nil
	}

	if m.editor != nil {
		return m.updateEditor(msg)
	}

	if m.app.Detail != nil {
		return m.handleDetailKey(key)
	}

	switch key {
	case "q":
		return tea.Quit
	case "1", "2", "3", "4", "5":
		i := int(key[0] - '1')
		if i < len(m.app.Nav.Sections) {
			return m.app.Activate(m.app.Nav.Sections[i])
		}
		return nil
	case "tab":
		return m.app.Step(1)
	case "shift+tab":
		return m.app.Step(-1)
	case "r":
		if lv := m.app.Current(); lv != nil {
			return lv.Refresh(0)
		}
		return m.app.Dashboard.Refresh()
	case "esc":
		if m.app.Nav.Current != app.SectionDashboard {
			return m.app.Activate(app.SectionDashboard)
		}
		return nil
	}

	if m.app.Current() == nil {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return m.handleListKey(msg)
}

func (m *Model) handleDetailKey(key string) tea.Cmd {
	d := m.app.Detail
	switch key {
	case "q":
		return tea.Quit
	case "esc", "backspace":
		m.app.Detail = nil
	case "d":
		e, id := d.Entity, d.Record.ID()
		if e == nil || id == "" {
			return nil
		}
		m.confirm = confirmDelete(e, id)
	}
	return nil
}

func (m Model) View() string {
	if m.width == 0 {
		return "Carregando..."
	}

	var content string
	switch {
	case m.confirm != nil:
		content = m.renderConfirm()
	case m.editor != nil:
		content = m.renderEditor()
	case m.app.Detail != nil:
		content = m.renderDetail()
	case m.app.Current() == nil:
		content = m.renderDashboard()
	default:
		content = m.renderList()
	}

	var b strings.Builder

	// Status bar
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")

	// Breadcrumbs
	b.WriteString(m.renderBreadcrumbs())
	b.WriteString("\n")

	// Sections
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	// Notifications, oldest first
	if toasts := m.renderToasts(); toasts != "" {
		b.WriteString(toasts)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(content)

	// Help
	b.WriteString("\n\n")
	b.WriteString(m.renderHelp())

	// Credits
	b.WriteString("\n")
	b.WriteString(m.renderCredits())

	return b.String()
}

func (m Model) renderStatusBar() string {
	var mode string
	if m.status.Mode == api.ModeLAN {
		mode = lanStyle.Render("● LAN")
	} else {
		mode = internetStyle.Render("● Internet")
	}

	status := fmt.Sprintf(" %s | %s | %s ", m.status.Brand, mode, m.status.URL)
	if m.app.Busy.Active() {
		status += m.spinner.View() + " "
	}
	return statusBarStyle.Render(status)
}

func (m Model) breadcrumbs() []string {
	crumbs := []string{m.status.Brand, app.SectionTitle(m.app.Nav.Current)}
	switch {
	case m.editor != nil:
		crumbs = append(crumbs, m.editor.title)
	case m.app.Detail != nil:
		crumbs = append(crumbs, detailTitle(m.app.Detail))
	}
	return crumbs
}

func (m Model) renderBreadcrumbs() string {
	return breadcrumbStyle.Render("  " + strings.Join(m.breadcrumbs(), " > "))
}

func (m Model) renderTabs() string {
	tabs := make([]string, len(m.app.Nav.Sections))
	for i, id := range m.app.Nav.Sections {
		label := fmt.Sprintf("%d %s", i+1, app.SectionTitle(id))
		if id == m.app.Nav.Current {
			tabs[i] = selectedStyle.Render("[" + label + "]")
		} else {
			tabs[i] = helpStyle.Render(" " + label + " ")
		}
	}
	return "  " + strings.Join(tabs, " ")
}

func (m Model) renderToasts() string {
	lines := make([]string, 0, len(m.app.Toasts))
	for _, t := range m.app.Toasts {
		var line string
		switch t.Level {
		case app.LevelSuccess:
			line = notificationSuccess.Render("✓ " + t.Message)
		case app.LevelError:
			line = notificationError.Render("✗ " + t.Level.Title() + ": " + t.Message)
		case app.LevelWarning:
			line = notificationWarning.Render("! " + t.Message)
		default:
			line = notificationInfo.Render("i " + t.Message)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHelp() string {
	var help string
	switch {
	case m.confirm != nil:
		help = "y: confirmar • n: cancelar"
	case m.editor != nil:
		help = "tab/↑/↓: campo • ←/→/espaço: alternar opção • enter: salvar • esc: cancelar"
	case m.app.Detail != nil:
		help = "esc: voltar • d: excluir"
	case m.app.Current() == nil:
		help = "1-5/tab: seção • ↑/↓/pgup/pgdn: rolar • r: atualizar • q: sair"
	default:
		help = "↑/↓: navegar • ←/→: página • /: filtrar • x: limpar filtros • r: atualizar • " +
			listHelp(m.app.Current().Entity) + " • esc: dashboard • q: sair"
	}
	return helpStyle.Render(help)
}

func (m Model) renderCredits() string {
	return creditStyle.Render(fmt.Sprintf("Created by %s in %s • v%s", Author, Year, Version))
}

func (m Model) renderConfirm() string {
	var b strings.Builder
	b.WriteString("\n  " + m.confirm.message + "\n\n")
	if m.confirm.note != "" {
		b.WriteString("  " + m.confirm.note + "\n\n")
	}
	b.WriteString("  [y] Sim    [n] Não, cancelar\n")
	return boxStyle.Render(b.String())
}

func confirmDelete(e *app.Entity, id string) *confirmation {
	return &confirmation{
		message: e.Messages.ConfirmDelete,
		note:    "Esta ação não pode ser desfeita.",
		run: func(m *Model) tea.Cmd {
			return m.app.Delete(e, id)
		},
	}
}

// formatStatusBadge returns a styled status badge
func formatStatusBadge(text, class string) string {
	style := helpStyle
	switch class {
	case app.StatusClass(app.StatusPending):
		style = pendingBadge
	case app.StatusClass(app.StatusPaid):
		style = paidBadge
	case app.StatusClass(app.StatusOverdue):
		style = overdueBadge
	case app.StatusClass(app.StatusCancelled):
		style = cancelledBadge
	}
	return style.Render(text)
}

// RunTUI starts the TUI
func RunTUI(a *app.App, status Status) error {
	p := tea.NewProgram(NewTUI(a, status), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
