// Package cli holds the one-shot command verbs of fin-cli. Each verb talks to
// the back office through api.Client and prints coloured text.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mikelcalvo/financeiro-cli/internal/api"
	"github.com/mikelcalvo/financeiro-cli/internal/app"
	"github.com/mikelcalvo/financeiro-cli/internal/format"
)

// Colors for terminal output
const (
	Red    = "\033[0;31m"
	Green  = "\033[0;32m"
	Yellow = "\033[1;33m"
	Blue   = "\033[0;34m"
	Cyan   = "\033[0;36m"
	Reset  = "\033[0m"
)

// Runner executes verbs against one client.
type Runner struct {
	Client *api.Client
	Out    io.Writer
	Now    func() time.Time
}

// New returns a Runner writing to out.
func New(client *api.Client, out io.Writer) *Runner {
	return &Runner{Client: client, Out: out, Now: time.Now}
}

func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.Out, format, args...)
}

// Run routes a command line (without the program name) to its verb.
func (r *Runner) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		r.Usage()
		return nil
	}

	cmd, rest := args[0], args[1:]

	// Detect connection mode (except for ping/config which do it themselves)
	if cmd != "ping" && cmd != "config" {
		r.Client.DetectConnection(ctx)
	}

	switch cmd {
	case "ping":
		return r.Ping(ctx)
	case "config":
		return r.Config(ctx)
	case "dashboard":
		return r.Dashboard(ctx)
	case "nf", api.PathInvoices:
		return r.Entity(ctx, app.Invoices, rest)
	case "cp", api.PathPayables:
		return r.Entity(ctx, app.Payables, rest)
	case api.PathSuppliers:
		return r.Entity(ctx, app.Suppliers, rest)
	case api.PathExpenseTypes:
		return r.Entity(ctx, app.ExpenseTypes, rest)
	}

	r.Usage()
	return fmt.Errorf("unknown command: %s", cmd)
}

// Ping tests the connection
func (r *Runner) Ping(ctx context.Context) error {
	r.printf("%sTestando conexão com o financeiro...%s\n", Blue, Reset)

	r.Client.DetectConnection(ctx)

	d, err := r.Client.Dashboard(ctx)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	r.printf("%s✓ Conexão OK%s\n", Green, Reset)
	r.printf("  Contas pendentes: %s%d%s\n", Yellow, d.Counts.Pending, Reset)
	r.printMode()
	return nil
}

func (r *Runner) printMode() {
	if r.Client.Mode == api.ModeLAN {
		r.printf("  Modo: %sLAN direto%s (%s)\n", Cyan, Reset, r.Client.ActiveURL)
	} else {
		r.printf("  Modo: %sInternet%s (%s)\n", Yellow, Reset, r.Client.ActiveURL)
	}
}

// Config shows current configuration
func (r *Runner) Config(ctx context.Context) error {
	cfg := r.Client.Config

	r.printf("%sConfiguração atual:%s\n", Blue, Reset)
	if cfg.LANURL != "" {
		r.printf("  URL LAN: %s\n", cfg.LANURL)
	} else {
		r.printf("  URL LAN: %snão configurada%s\n", Yellow, Reset)
	}
	r.printf("  URL Internet: %s\n", cfg.URL)

	if cfg.Token != "" {
		r.printf("  Token: %s...\n", cfg.Token[:min(8, len(cfg.Token))])
	} else {
		r.printf("  Token: %snão configurado%s\n", Yellow, Reset)
	}

	if cfg.ProxyCookie != "" {
		r.printf("  Cookie do proxy: configurado (%s)\n", cfg.ProxyCookieName)
	} else {
		r.printf("  Cookie do proxy: %snão configurado%s (necessário no modo internet)\n", Yellow, Reset)
	}
	r.printf("  Timeout: %s\n", cfg.Timeout)
	r.printf("  Log: %s (%s)\n", cfg.LogFile, cfg.LogLevel)

	r.printf("\n")
	r.Client.DetectConnection(ctx)
	r.printMode()
	return nil
}

// Dashboard prints the payables summary and the next due payables.
func (r *Runner) Dashboard(ctx context.Context) error {
	r.printf("%sCarregando dashboard...%s\n", Blue, Reset)

	d, err := r.Client.Dashboard(ctx)
	if err != nil {
		return err
	}

	r.printf("\n%sContas a pagar:%s\n", Cyan, Reset)
	r.printf("  %sPendente%s  %3d  %s\n", Yellow, Reset, d.Counts.Pending, format.Currency(d.Totals.Pending))
	r.printf("  %sVencido%s   %3d  %s\n", Red, Reset, d.Counts.Overdue, format.Currency(d.Totals.Overdue))
	r.printf("  %sPago%s      %3d  %s\n", Green, Reset, d.Counts.Paid, format.Currency(d.Totals.Paid))

	r.printf("\n%sPróximos vencimentos:%s\n", Cyan, Reset)
	r.printTable(app.Upcoming, app.RenderTable(app.Upcoming, d.Upcoming))
	return nil
}

// Usage prints the command summary.
func (r *Runner) Usage() {
	r.printf(`%sFinanceiro CLI%s - contas a pagar no terminal

Uso: fin-cli <comando> [subcomando] [args...]
Sem argumentos, abre a interface interativa.

%sComandos:%s
  %sping%s                              Testa conexão e autenticação
  %sconfig%s                            Mostra a configuração atual
  %sversion%s                           Mostra a versão
  %sdashboard%s                         Resumo de contas e próximos vencimentos

%sListas (notas-fiscais, contas-pagar, fornecedores, tipos-despesa):%s
  %s<entidade> list [--page=N] [--search=X]%s
                                      Lista uma página
  %s<entidade> get <id>%s               Mostra um registro
  %s<entidade> delete <id>%s            Exclui um registro

%sContas a pagar:%s
  %scontas-pagar list [--status=X] [--fornecedor=ID] [--tipo=ID]%s
            %s[--de=DATA] [--ate=DATA] [--vencidas]%s
  %scontas-pagar pay <id> [--data=DATA] [--valor=X]%s
                                      Registra o pagamento
  %scontas-pagar overdue%s              Marca as contas vencidas

%sNotas fiscais e fornecedores:%s
  %snotas-fiscais upload <nfe.xml>%s    Importa uma NF-e
  %sfornecedores cnpj <cnpj>%s          Busca fornecedor pelo CNPJ

%sExemplos:%s
  fin-cli ping
  fin-cli contas-pagar list --status=PENDENTE --de=01/10/2026
  fin-cli contas-pagar pay 12 --data=19/10/2026
  fin-cli notas-fiscais upload ~/Downloads/nfe.xml

`,
		Blue, Reset,
		Yellow, Reset,
		Green, Reset, Green, Reset, Green, Reset, Green, Reset,
		Yellow, Reset,
		Green, Reset, Green, Reset, Green, Reset,
		Yellow, Reset,
		Green, Reset, Green, Reset, Green, Reset, Green, Reset,
		Yellow, Reset,
		Green, Reset, Green, Reset,
		Yellow, Reset,
	)
}
