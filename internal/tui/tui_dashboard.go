package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mikelcalvo/financeiro-cli/internal/app"
	"github.com/mikelcalvo/financeiro-cli/internal/format"
)

// renderDashboard renders the dashboard view with scrollable viewport
func (m Model) renderDashboard() string {
	d := m.app.Dashboard
	if !d.Loaded {
		if m.app.Busy.Active() {
			return fmt.Sprintf("\n  %s Carregando dashboard...", m.spinner.View())
		}
		return "\n  Sem dados"
	}

	if !m.viewportReady {
		return "\n  Inicializando..."
	}

	// Show viewport with scroll indicator
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	scrollPercent := m.viewport.ScrollPercent() * 100
	if m.viewport.TotalLineCount() > m.viewport.VisibleLineCount() {
		b.WriteString(helpStyle.Render(fmt.Sprintf("  ↑↓ rolar • %.0f%% ", scrollPercent)))
	}

	return b.String()
}

// renderDashboardContent returns the dashboard content for the viewport
func (m Model) renderDashboardContent() string {
	d := m.app.Dashboard
	if !d.Loaded || d.Data == nil {
		return "Sem dados"
	}
	data := d.Data

	var b strings.Builder

	b.WriteString(titleStyle.Render(" CONTAS A PAGAR "))
	b.WriteString("\n\n")

	cards := []string{
		summaryCard("PENDENTE", data.Counts.Pending, format.Currency(data.Totals.Pending), pendingBadge),
		summaryCard("VENCIDO", data.Counts.Overdue, format.Currency(data.Totals.Overdue), overdueBadge),
		summaryCard("PAGO", data.Counts.Paid, format.Currency(data.Totals.Paid), paidBadge),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	b.WriteString("\n\n")

	b.WriteString(selectedStyle.Render("PRÓXIMOS VENCIMENTOS"))
	b.WriteString("\n\n")
	b.WriteString(renderStaticTable(app.Upcoming, d.Upcoming))
	b.WriteString("\n\n")

	b.WriteString(helpStyle.Render(fmt.Sprintf("Atualizado: %s | Modo: %s",
		d.UpdatedAt.Format("02/01/2006 15:04:05"), m.status.Mode)))

	return b.String()
}

func summaryCard(label string, count int, total string, badge lipgloss.Style) string {
	body := badge.Render(label) + "\n\n" +
		fmt.Sprintf("%d conta(s)\n", count) +
		successStyle.Render(total)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Padding(0, 2).
		MarginRight(1).
		Render(body)
}

// renderStaticTable prints a rendered table as padded text, with badges for
// status cells. Used where there is no cursor to move.
func renderStaticTable(spec app.TableSpec, t app.Table) string {
	var b strings.Builder

	b.WriteString(" ")
	for i, h := range t.Headers {
		b.WriteString(padRight(h, columnWidth(spec, i)))
		b.WriteString(" ")
	}
	b.WriteString("\n")

	for _, r := range t.Rows {
		if r.Placeholder {
			b.WriteString(helpStyle.Render("  " + r.Cells[0].Text))
			b.WriteString("\n")
			continue
		}
		b.WriteString(" ")
		for i, c := range r.Cells {
			w := columnWidth(spec, i)
			text := truncate(c.Text, w)
			if c.Class != "" {
				b.WriteString(formatStatusBadge(text, c.Class))
				b.WriteString(strings.Repeat(" ", max(0, w-len([]rune(text))-2)))
			} else {
				b.WriteString(padRight(text, w))
			}
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func columnWidth(spec app.TableSpec, i int) int {
	if i < len(spec.Columns) {
		return spec.Columns[i].Width
	}
	return actionsWidth
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func padRight(s string, n int) string {
	s = truncate(s, n)
	return s + strings.Repeat(" ", max(0, n-len([]rune(s))))
}

func detailTitle(d *app.Detail) string {
	if d.Entity == app.Invoices {
		return "NF " + d.Record.Text("numero") + "/" + d.Record.Text("serie")
	}
	return "#" + d.Record.ID()
}

// renderDetail renders the invoice detail with its items
func (m Model) renderDetail() string {
	d := m.app.Detail
	r := d.Record

	var b strings.Builder
	b.WriteString(titleStyle.Render(" Nota Fiscal: " + r.Text("numero") + "/" + r.Text("serie") + " "))
	b.WriteString("\n\n")

	fields := []struct{ label, value string }{
		{"Chave de acesso", r.Text("chave_acesso")},
		{"Fornecedor", orDash(r.Text("fornecedor.razao_social"))},
		{"CNPJ", format.CNPJ(r.Text("fornecedor.cnpj"))},
		{"Emissão", format.Date(r.Text("data_emissao"))},
		{"Entrada", format.Date(r.Text("data_entrada"))},
		{"Produtos", format.Currency(r.Get("valor_produtos"))},
		{"Total", format.Currency(r.Get("valor_total"))},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		b.WriteString(fmt.Sprintf("  %-16s %s\n", f.label+":", f.value))
	}
	if status := r.Text("status"); status != "" {
		b.WriteString(fmt.Sprintf("  %-16s %s\n", "Status:", formatStatusBadge(status, app.StatusClass(status))))
	}

	items := d.Items.Rows
	count := len(items)
	if count == 1 && items[0].Placeholder {
		count = 0
	}
	b.WriteString(fmt.Sprintf("\n  Itens (%d):\n\n", count))
	b.WriteString(renderStaticTable(app.InvoiceItems, d.Items))

	return boxStyle.Render(b.String())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
