package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mikelcalvo/financeiro-cli/internal/api"
)

func seedSuppliers(b *memBackend, names ...string) {
	for i, n := range names {
		b.records[api.PathSuppliers] = append(b.records[api.PathSuppliers],
			rec("id", json.Number(string(rune('1'+i))), "razao_social", n))
	}
}

func TestInitLoadsLookupsAndDashboard(t *testing.T) {
	b := newMemBackend()
	seedSuppliers(b, "ACME", "Beta")
	b.records[api.PathPayables] = []api.Record{payable(1, StatusPending), payable(2, StatusPaid)}
	a := newTestApp(t, b)

	require.Equal(t, SectionDashboard, a.Nav.Current)
	drain(a, a.Init())

	require.Equal(t, []string{"all fornecedores", "all tipos-despesa", "dashboard"}, b.calls)
	require.True(t, a.Dashboard.Loaded)
	require.Equal(t, testNow, a.Dashboard.UpdatedAt)
	require.Len(t, a.Dashboard.Upcoming.Rows, 1)
	require.Equal(t, "1", a.Dashboard.Upcoming.Rows[0].ID)
	require.Empty(t, a.Dashboard.Upcoming.Rows[0].Actions)

	want := []Option{{ID: "1", Label: "ACME"}, {ID: "2", Label: "Beta"}}
	require.Equal(t, want, a.Lists[SectionPayables].Filter("fornecedor_id").Options)
	require.Equal(t, want, a.Forms[SectionPayables].Control("fornecedor_id").Options)
	require.Zero(t, a.Busy.Count())
}

func TestLookupPublishKeepsValidSelection(t *testing.T) {
	b := newMemBackend()
	seedSuppliers(b, "ACME", "Beta")
	a := newTestApp(t, b)
	l := a.Lookups[SectionSuppliers]
	drain(a, l.Reload())

	filter := a.Lists[SectionPayables].Filter("fornecedor_id")
	field := a.Forms[SectionPayables].Control("fornecedor_id")
	filter.Value = "1"
	field.Value = "2"

	b.records[api.PathSuppliers] = b.records[api.PathSuppliers][1:]
	drain(a, l.Reload())

	require.Equal(t, []Option{{ID: "2", Label: "Beta"}}, filter.Options)
	require.Empty(t, filter.Value)
	require.Equal(t, "Todos", filter.Display())
	require.Equal(t, "2", field.Value)
	require.Equal(t, "Beta", field.Display())
}

func TestStaleLookupIgnored(t *testing.T) {
	b := newMemBackend()
	seedSuppliers(b, "ACME")
	a := newTestApp(t, b)
	l := a.Lookups[SectionSuppliers]

	stale := l.Reload()()
	seedSuppliers(b, "Beta")
	fresh := l.Reload()()

	a.Update(fresh)
	a.Update(stale)
	require.Len(t, l.Options, 2)
	require.Zero(t, a.Busy.Count())
}

func TestLookupFailureWarns(t *testing.T) {
	b := newMemBackend()
	b.failAll = &api.TransportError{Op: "GET fornecedores", Err: errors.New("timeout")}
	a := newTestApp(t, b)

	drain(a, a.Lookups[SectionSuppliers].Reload())
	require.Equal(t, Toast{ID: 1, Level: LevelWarning, Message: "Erro ao carregar fornecedores"}, lastToast(t, a))
}

func TestNavigation(t *testing.T) {
	b := newMemBackend()
	a := newTestApp(t, b)

	drain(a, a.Activate(SectionSuppliers))
	require.Equal(t, SectionSuppliers, a.Nav.Current)
	require.Equal(t, []string{"list fornecedores 1"}, b.calls)
	require.Same(t, a.Lists[SectionSuppliers], a.Current())

	require.Nil(t, a.Activate("relatorios"))
	require.Equal(t, SectionSuppliers, a.Nav.Current)

	drain(a, a.Step(2))
	require.Equal(t, SectionDashboard, a.Nav.Current)
	require.Nil(t, a.Current())

	drain(a, a.Step(-1))
	require.Equal(t, SectionExpenseTypes, a.Nav.Current)
	require.Equal(t, "Tipos de Despesa", SectionTitle(a.Nav.Current))
	require.Equal(t, "Dashboard", SectionTitle(SectionDashboard))

	unknown := New(a.ctx, b, Options{Section: "nope"})
	require.Equal(t, SectionDashboard, unknown.Nav.Current)
}

func TestPayRefreshesListAndDashboard(t *testing.T) {
	b := newMemBackend()
	b.records[api.PathPayables] = []api.Record{payable(12, StatusPending)}
	a := newTestApp(t, b)
	drain(a, a.Activate(SectionPayables))
	require.True(t, a.Current().Table.Rows[0].Has(ActionPay))

	drain(a, a.Pay("12", "", "R$ 99,90"))

	require.Equal(t, 1, b.count("pay 12 2026-10-19"))
	require.NotNil(t, b.payments[0].Amount)
	require.Equal(t, "99.9", b.payments[0].Amount.String())
	require.Equal(t, 2, b.count("list contas-pagar"))
	require.Equal(t, 1, b.count("dashboard"))
	require.Equal(t, Toast{ID: 1, Level: LevelSuccess, Message: "Pagamento registrado com sucesso"}, lastToast(t, a))
	require.False(t, a.Current().Table.Rows[0].Has(ActionPay))

	drain(a, a.Pay("12", "20/10/2026", ""))
	require.Equal(t, 1, b.count("pay 12 2026-10-20"))
	require.Nil(t, b.payments[1].Amount)
	require.Equal(t, "Conta já está paga", lastToast(t, a).Message)
	require.Zero(t, a.Busy.Count())
}

func TestDeleteSupplierReloadsLookup(t *testing.T) {
	b := newMemBackend()
	seedSuppliers(b, "ACME", "Beta")
	a := newTestApp(t, b)
	drain(a, a.Activate(SectionSuppliers))

	drain(a, a.Delete(Suppliers, "1"))

	require.Equal(t, []string{
		"list fornecedores 1",
		"remove fornecedores 1",
		"list fornecedores 1",
		"all fornecedores",
	}, b.calls)
	require.Len(t, a.Current().Records, 1)
	require.Equal(t, []Option{{ID: "2", Label: "Beta"}}, a.Lookups[SectionSuppliers].Options)
	require.Equal(t, "Fornecedor excluído", lastToast(t, a).Message)
}

func TestActionFailureUsesFallbackOnTransport(t *testing.T) {
	b := newMemBackend()
	b.failAll = &api.TransportError{Op: "POST", Err: errors.New("connection reset")}
	a := newTestApp(t, b)

	drain(a, a.Pay("1", "", ""))
	require.Equal(t, "Erro ao processar pagamento", lastToast(t, a).Message)

	drain(a, a.Upload("/tmp/nfe.xml"))
	require.Equal(t, "Erro ao processar arquivo XML", lastToast(t, a).Message)

	drain(a, a.Delete(ExpenseTypes, "3"))
	require.Equal(t, "Erro ao excluir tipo de despesa", lastToast(t, a).Message)
	require.Zero(t, b.count("list"))
	require.Zero(t, a.Busy.Count())
}

func TestUploadRefreshesInvoicesAndSuppliers(t *testing.T) {
	b := newMemBackend()
	a := newTestApp(t, b)

	drain(a, a.Upload("/tmp/nfe.xml"))

	require.Equal(t, []string{"upload /tmp/nfe.xml", "list notas-fiscais 1", "all fornecedores"}, b.calls)
	require.Equal(t, "Nota fiscal processada com sucesso", lastToast(t, a).Message)
}

func TestMarkOverdue(t *testing.T) {
	b := newMemBackend()
	a := newTestApp(t, b)

	drain(a, a.MarkOverdue())

	require.Equal(t, []string{"overdue", "list contas-pagar 1", "dashboard"}, b.calls)
	require.Equal(t, "3 contas atualizadas para VENCIDO", lastToast(t, a).Message)
}

func TestViewInvoiceItems(t *testing.T) {
	b := newMemBackend()
	b.records[api.PathInvoices] = []api.Record{rec(
		"id", json.Number("5"),
		"numero", "100",
		"itens", []any{
			map[string]any{"codigo_produto": "P1", "descricao": "Parafuso", "quantidade": json.Number("10"),
				"valor_unitario": json.Number("0.5"), "valor_total": json.Number("5")},
		},
	)}
	a := newTestApp(t, b)

	drain(a, a.View(Invoices, "5"))
	require.NotNil(t, a.Detail)
	require.Same(t, Invoices, a.Detail.Entity)
	require.Len(t, a.Detail.Items.Rows, 1)
	require.Equal(t, "Parafuso", a.Detail.Items.Rows[0].Cells[1].Text)

	drain(a, a.Delete(Invoices, "5"))
	require.Nil(t, a.Detail)
}

func TestEditSupplierByCNPJ(t *testing.T) {
	b := newMemBackend()
	b.records[api.PathSuppliers] = []api.Record{
		rec("id", json.Number("9"), "cnpj", "12345678000190", "razao_social", "ACME"),
	}
	a := newTestApp(t, b)
	f := a.Forms[SectionSuppliers]

	drain(a, a.EditSupplierByCNPJ("12345678000190"))
	require.True(t, f.Open)
	require.Equal(t, "9", f.EditID)

	f.Close()
	drain(a, a.EditSupplierByCNPJ("00000000000000"))
	require.False(t, f.Open)
	require.Equal(t, "Fornecedor não encontrado", lastToast(t, a).Message)
}

// emptyCNPJBackend answers every CNPJ lookup with success and no record.
type emptyCNPJBackend struct {
	*memBackend
}

func (e emptyCNPJBackend) FindSupplierByCNPJ(_ context.Context, cnpj string) (api.Record, error) {
	e.called("cnpj %s", cnpj)
	return nil, nil
}

func TestEditSupplierByCNPJWithoutRecord(t *testing.T) {
	b := newMemBackend()
	a := newTestApp(t, emptyCNPJBackend{b})
	f := a.Forms[SectionSuppliers]

	drain(a, a.EditSupplierByCNPJ("12345678000190"))

	require.Equal(t, 1, b.count("cnpj 12345678000190"))
	require.False(t, f.Open)
	require.Empty(t, f.EditID)
	require.Equal(t, Toast{ID: 1, Level: LevelWarning, Message: NotFound}, lastToast(t, a))
	require.Zero(t, a.Busy.Count())
}

func TestPayRejectsBadAmount(t *testing.T) {
	b := newMemBackend()
	b.records[api.PathPayables] = []api.Record{payable(12, StatusPending)}
	a := newTestApp(t, b)

	drain(a, a.Pay("12", "", "doze reais"))

	require.Zero(t, b.count("pay"))
	require.Equal(t, Toast{ID: 1, Level: LevelWarning, Message: InvalidAmount}, lastToast(t, a))
	require.Zero(t, a.Busy.Count())
}

func TestToastExpiry(t *testing.T) {
	a := newTestApp(t, newMemBackend())
	a.Notify(LevelInfo, "um")
	a.Notify(LevelSuccess, "dois")

	a.Update(ToastExpiredMsg{ID: 1})
	require.Equal(t, []Toast{{ID: 2, Level: LevelSuccess, Message: "dois"}}, a.Toasts)

	a.Update(ToastExpiredMsg{ID: 1})
	require.Len(t, a.Toasts, 1)
	require.Equal(t, "Informação", LevelInfo.Title())
}

func TestBusyNeverNegative(t *testing.T) {
	var b Busy
	b.Release()
	require.Zero(t, b.Count())
	b.Acquire()
	b.Acquire()
	b.Release()
	require.True(t, b.Active())
}
