package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/pflag"

	"github.com/mikelcalvo/financeiro-cli/internal/api"
	"github.com/mikelcalvo/financeiro-cli/internal/app"
	"github.com/mikelcalvo/financeiro-cli/internal/format"
)

// Entity handles the verbs shared by every entity plus the ones only some have.
func (r *Runner) Entity(ctx context.Context, e *app.Entity, args []string) error {
	if len(args) == 0 {
		r.printf("Uso: fin-cli %s <subcomando> [args...]\n", e.Key)
		r.printf("Subcomandos: %s\n", strings.Join(subcommands(e), ", "))
		return nil
	}

	switch args[0] {
	case "list":
		return r.list(ctx, e, args[1:])
	case "get":
		if len(args) < 2 {
			return fmt.Errorf("usage: fin-cli %s get <id>", e.Key)
		}
		return r.get(ctx, e, args[1])
	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("usage: fin-cli %s delete <id>", e.Key)
		}
		return r.remove(ctx, e, args[1])
	}

	switch {
	case e == app.Payables && args[0] == "pay":
		return r.pay(ctx, args[1:])
	case e == app.Payables && args[0] == "overdue":
		return r.overdue(ctx)
	case e == app.Invoices && args[0] == "upload":
		if len(args) < 2 {
			return fmt.Errorf("usage: fin-cli %s upload <nfe.xml>", e.Key)
		}
		return r.upload(ctx, args[1])
	case e == app.Suppliers && args[0] == "cnpj":
		if len(args) < 2 {
			return fmt.Errorf("usage: fin-cli %s cnpj <cnpj>", e.Key)
		}
		return r.supplierByCNPJ(ctx, args[1])
	}

	return fmt.Errorf("unknown %s subcommand: %s", e.Key, args[0])
}

func subcommands(e *app.Entity) []string {
	subs := []string{"list", "get", "delete"}
	switch e {
	case app.Payables:
		subs = append(subs, "pay", "overdue")
	case app.Invoices:
		subs = append(subs, "upload")
	case app.Suppliers:
		subs = append(subs, "cnpj")
	}
	return subs
}

// listFlags maps command-line flags to the filter keys they set.
var listFlags = []struct {
	flag, key, usage string
}{
	{"search", "search", "texto de busca"},
	{"status", "status", "PENDENTE, VENCIDO, PAGO ou CANCELADO"},
	{"fornecedor", "fornecedor_id", "id do fornecedor"},
	{"tipo", "tipo_despesa_id", "id do tipo de despesa"},
	{"de", "data_inicio", "vencimento a partir de (dd/mm/aaaa)"},
	{"ate", "data_fim", "vencimento até (dd/mm/aaaa)"},
}

// parseListArgs reads page and filters, keeping only the filters e declares.
func parseListArgs(e *app.Entity, args []string) (api.Query, error) {
	fs := pflag.NewFlagSet(e.Key+" list", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	page := fs.Int("page", 1, "página")
	values := make(map[string]*string, len(listFlags))
	for _, f := range listFlags {
		values[f.key] = fs.String(f.flag, "", f.usage)
	}
	overdue := fs.Bool("vencidas", false, "somente contas vencidas")

	if err := fs.Parse(args); err != nil {
		return api.Query{}, err
	}

	q := api.Query{Page: max(1, *page), PerPage: app.PageSize, Filters: map[string]string{}}
	for _, field := range e.Filters {
		switch {
		case field.Kind == app.KindBool:
			if *overdue {
				q.Filters[field.Key] = "true"
			}
		case values[field.Key] != nil && *values[field.Key] != "":
			v := *values[field.Key]
			if field.Kind == app.KindDate {
				iso, ok := format.ParseDisplayDate(v)
				if !ok {
					return api.Query{}, fmt.Errorf("invalid date for --%s: %s", flagFor(field.Key), v)
				}
				v = iso
			}
			q.Filters[field.Key] = v
		}
	}
	return q, nil
}

func flagFor(key string) string {
	for _, f := range listFlags {
		if f.key == key {
			return f.flag
		}
	}
	return key
}

func (r *Runner) list(ctx context.Context, e *app.Entity, args []string) error {
	q, err := parseListArgs(e, args)
	if err != nil {
		return err
	}

	r.printf("%sCarregando %s...%s\n", Blue, strings.ToLower(e.Title), Reset)

	res, err := r.Client.List(ctx, e.Path, q)
	if err != nil {
		return fmt.Errorf("%s: %s", e.Messages.LoadError, api.UserMessage(err, "falha de conexão"))
	}

	r.printf("\n%s%s (%d):%s\n", Cyan, e.Title, res.Pagination.Total, Reset)
	r.printTable(e.TableSpec, app.RenderTable(e.TableSpec, res.Records))

	if strip := pagerLine(res.Pagination); strip != "" {
		r.printf("\n%s\n", strip)
	}
	return nil
}

// pagerLine prints the pager strip; the CLI never selects a page from it.
func pagerLine(p api.Pagination) string {
	controls := app.RenderPager(p, nil)
	if len(controls) == 0 {
		return ""
	}
	parts := make([]string, 0, len(controls))
	for _, c := range controls {
		if c.Current {
			parts = append(parts, Cyan+"["+c.Label+"]"+Reset)
		} else {
			parts = append(parts, c.Label)
		}
	}
	return fmt.Sprintf("  %s  página %d de %d (--page=N)", strings.Join(parts, " "), p.Page, p.Pages)
}

// printTable writes the data columns of a rendered table. Row actions are
// not printed; the CLI exposes them as verbs.
func (r *Runner) printTable(spec app.TableSpec, t app.Table) {
	if len(t.Rows) == 1 && t.Rows[0].Placeholder {
		r.printf("%s%s%s\n", Yellow, t.Rows[0].Cells[0].Text, Reset)
		return
	}

	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(runewidth.FillRight("#", 6))
	for _, c := range spec.Columns {
		b.WriteString(" ")
		b.WriteString(runewidth.FillRight(c.Title, c.Width))
	}
	r.printf("%s%s%s\n", Blue, strings.TrimRight(b.String(), " "), Reset)

	for _, row := range t.Rows {
		b.Reset()
		b.WriteString("  ")
		b.WriteString(runewidth.FillRight(row.ID, 6))
		for i, cell := range row.Cells {
			w := spec.Columns[i].Width
			text := runewidth.FillRight(runewidth.Truncate(cell.Text, w, "..."), w)
			b.WriteString(" ")
			if color := badgeColor(cell.Class); color != "" {
				b.WriteString(color + text + Reset)
			} else {
				b.WriteString(text)
			}
		}
		r.printf("%s\n", strings.TrimRight(b.String(), " "))
	}
}

func badgeColor(class string) string {
	switch class {
	case app.StatusClass(app.StatusPending):
		return Yellow
	case app.StatusClass(app.StatusPaid):
		return Green
	case app.StatusClass(app.StatusOverdue):
		return Red
	case app.StatusClass(app.StatusCancelled):
		return Cyan
	}
	return ""
}

func (r *Runner) get(ctx context.Context, e *app.Entity, id string) error {
	r.printf("%sCarregando #%s...%s\n", Blue, id, Reset)

	rec, err := r.Client.Get(ctx, e.Path, id)
	if err != nil {
		return fmt.Errorf("%s: %s", e.Messages.LoadError, api.UserMessage(err, "falha de conexão"))
	}
	r.printRecord(rec)

	if e == app.Invoices {
		r.printf("\n%sItens:%s\n", Cyan, Reset)
		r.printTable(app.InvoiceItems, app.RenderTable(app.InvoiceItems, rec.Records("itens")))
	}
	return nil
}

// printRecord lists scalar fields in key order; nested objects are flattened
// to dotted keys and lists are skipped.
func (r *Runner) printRecord(rec api.Record) {
	fields := map[string]string{}
	flatten("", rec, fields)

	keys := make([]string, 0, len(fields))
	width := 0
	for k := range fields {
		keys = append(keys, k)
		width = max(width, runewidth.StringWidth(k))
	}
	sort.Strings(keys)

	for _, k := range keys {
		r.printf("  %s%s%s %s\n", Yellow, runewidth.FillRight(k+":", width+1), Reset, fields[k])
	}
}

func flatten(prefix string, m map[string]any, out map[string]string) {
	for k, v := range m {
		key := prefix + k
		switch val := v.(type) {
		case map[string]any:
			flatten(key+".", val, out)
		case []any:
			continue
		default:
			out[key] = api.Record{k: v}.Text(k)
		}
	}
}

func (r *Runner) remove(ctx context.Context, e *app.Entity, id string) error {
	r.printf("%sExcluindo #%s...%s\n", Blue, id, Reset)

	msg, err := r.Client.Remove(ctx, e.Path, id)
	if err != nil {
		return fmt.Errorf("%s: %s", e.Messages.DeleteError, api.UserMessage(err, "falha de conexão"))
	}
	if msg == "" {
		msg = e.Messages.Deleted
	}
	r.printf("%s✓ %s%s\n", Green, msg, Reset)
	return nil
}

func (r *Runner) pay(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("contas-pagar pay", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	date := fs.String("data", "", "data do pagamento (dd/mm/aaaa ou aaaa-mm-dd); hoje quando vazia")
	amount := fs.String("valor", "", "valor pago; o valor original quando vazio")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: fin-cli contas-pagar pay <id> [--data=DATA] [--valor=X]")
	}
	id := fs.Arg(0)

	body := api.Payment{Date: format.ISODate(r.Now())}
	if *date != "" {
		iso, ok := format.ParseDisplayDate(*date)
		if !ok {
			return fmt.Errorf("invalid date: %s", *date)
		}
		body.Date = iso
	}
	if *amount != "" {
		d, err := format.ParseAmount(*amount)
		if err != nil {
			return fmt.Errorf("invalid amount: %s", *amount)
		}
		body.Amount = &d
	}

	r.printf("%sPagando #%s em %s...%s\n", Blue, id, format.Date(body.Date), Reset)

	saved, err := r.Client.Pay(ctx, id, body)
	if err != nil {
		return fmt.Errorf("Erro ao processar pagamento: %s", api.UserMessage(err, "falha de conexão"))
	}
	msg := saved.Message
	if msg == "" {
		msg = "Conta marcada como paga"
	}
	r.printf("%s✓ %s%s\n", Green, msg, Reset)
	return nil
}

func (r *Runner) overdue(ctx context.Context) error {
	r.printf("%sAtualizando contas vencidas...%s\n", Blue, Reset)

	msg, err := r.Client.UpdateOverdue(ctx)
	if err != nil {
		return fmt.Errorf("Erro ao atualizar status das contas: %s", api.UserMessage(err, "falha de conexão"))
	}
	if msg == "" {
		msg = "Status das contas atualizado"
	}
	r.printf("%s✓ %s%s\n", Green, msg, Reset)
	return nil
}

func (r *Runner) upload(ctx context.Context, path string) error {
	if !strings.HasSuffix(strings.ToLower(path), ".xml") {
		return fmt.Errorf("not an XML file: %s", path)
	}
	r.printf("%sEnviando %s...%s\n", Blue, path, Reset)

	saved, err := r.Client.UploadFile(ctx, path)
	if err != nil {
		return fmt.Errorf("%s: %s", app.Invoices.Messages.SaveError, api.UserMessage(err, "falha de conexão"))
	}
	msg := saved.Message
	if msg == "" {
		msg = app.Invoices.Messages.Saved
	}
	r.printf("%s✓ %s%s\n", Green, msg, Reset)
	if saved.Record != nil {
		r.printf("  NF %s/%s - %s\n", saved.Record.Text("numero"), saved.Record.Text("serie"),
			format.Currency(saved.Record.Get("valor_total")))
	}
	return nil
}

func (r *Runner) supplierByCNPJ(ctx context.Context, cnpj string) error {
	digits := format.Digits(cnpj, 14)
	if len(digits) != 14 {
		return fmt.Errorf("CNPJ deve ter 14 dígitos")
	}
	r.printf("%sBuscando CNPJ %s...%s\n", Blue, format.CNPJ(digits), Reset)

	rec, err := r.Client.FindSupplierByCNPJ(ctx, digits)
	if err != nil {
		return fmt.Errorf("%s: %s", app.Suppliers.Messages.LoadError, api.UserMessage(err, "falha de conexão"))
	}
	if rec == nil {
		r.printf("%sFornecedor não encontrado%s\n", Yellow, Reset)
		return nil
	}
	r.printRecord(rec)
	return nil
}
