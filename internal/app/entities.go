package app

import (
	"strings"

	"github.com/mikelcalvo/financeiro-cli/internal/api"
	"github.com/mikelcalvo/financeiro-cli/internal/format"
)

// Action is a per-row operation.
type Action string

const (
	ActionView   Action = "view"
	ActionPay    Action = "pay"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Payable statuses
const (
	StatusPending   = "PENDENTE"
	StatusPaid      = "PAGO"
	StatusOverdue   = "VENCIDO"
	StatusCancelled = "CANCELADO"
)

// Column is one data column of a table.
type Column struct {
	Title string
	Width int
	Value func(api.Record) string
	Badge func(api.Record) string // badge class; nil for plain cells
}

// TableSpec is everything the table renderer needs about an entity.
type TableSpec struct {
	Columns []Column
	Empty   string
	Actions func(api.Record) []Action // nil means no actions column
}

// ColumnCount includes the actions column when there is one.
func (t TableSpec) ColumnCount() int {
	if t.Actions != nil {
		return len(t.Columns) + 1
	}
	return len(t.Columns)
}

// LookupSpec marks an entity as the source of selection controls.
type LookupSpec struct {
	Label func(api.Record) string
}

// Messages are the texts shown around an entity's operations. The error
// texts are used for transport failures; domain failures show the server's
// own message.
type Messages struct {
	LoadError     string
	SaveError     string
	DeleteError   string
	Saved         string
	Deleted       string
	ConfirmDelete string
}

// Entity describes one back-office resource: where it lives, how its list
// looks, which filters and form fields it has and which rows allow what.
type Entity struct {
	Key   string
	Path  string
	Title string
	TableSpec
	Filters  []Field
	Fields   []Field // empty when records are not created through a form
	Lookup   *LookupSpec
	Prepare  func(payload map[string]any, values map[string]string, editing bool)
	Messages Messages
}

// HasForm reports whether records are created and edited through a form.
func (e *Entity) HasForm() bool {
	return len(e.Fields) > 0
}

// Section ids shared by entities and navigation
const (
	SectionDashboard    = "dashboard"
	SectionInvoices     = api.PathInvoices
	SectionPayables     = api.PathPayables
	SectionSuppliers    = api.PathSuppliers
	SectionExpenseTypes = api.PathExpenseTypes
)

// StatusClass is the badge style class for a status value.
func StatusClass(status string) string {
	return "status-" + strings.ToLower(status)
}

func text(path string) func(api.Record) string {
	return func(r api.Record) string { return r.Text(path) }
}

func textOr(path, fallback string) func(api.Record) string {
	return func(r api.Record) string {
		if v := r.Text(path); v != "" {
			return v
		}
		return fallback
	}
}

func currencyOf(path string) func(api.Record) string {
	return func(r api.Record) string { return format.Currency(r.Get(path)) }
}

func dateOf(path string) func(api.Record) string {
	return func(r api.Record) string { return format.Date(r.Text(path)) }
}

func statusBadge(r api.Record) string {
	return StatusClass(r.Text("status"))
}

var payableStatusOptions = []Option{
	{ID: StatusPending, Label: "Pendente"},
	{ID: StatusPaid, Label: "Pago"},
	{ID: StatusOverdue, Label: "Vencido"},
	{ID: StatusCancelled, Label: "Cancelado"},
}

// Invoices are created by uploading NF-e XML, so they have no form.
var Invoices = &Entity{
	Key:   SectionInvoices,
	Path:  api.PathInvoices,
	Title: "Notas Fiscais",
	TableSpec: TableSpec{
		Columns: []Column{
			{Title: "Número", Width: 14, Value: func(r api.Record) string {
				return r.Text("numero") + "/" + r.Text("serie")
			}},
			{Title: "Fornecedor", Width: 30, Value: textOr("fornecedor.razao_social", "N/A")},
			{Title: "Emissão", Width: 11, Value: dateOf("data_emissao")},
			{Title: "Valor", Width: 16, Value: currencyOf("valor_total")},
			{Title: "Status", Width: 11, Value: text("status"), Badge: statusBadge},
		},
		Empty: "Nenhuma nota fiscal encontrada",
		Actions: func(api.Record) []Action {
			return []Action{ActionView, ActionDelete}
		},
	},
	Filters: []Field{
		{Key: "search", Label: "Buscar", Kind: KindText},
	},
	Messages: Messages{
		LoadError:     "Erro ao carregar notas fiscais",
		SaveError:     "Erro ao processar arquivo XML",
		DeleteError:   "Erro ao excluir nota fiscal",
		Saved:         "Nota fiscal importada",
		Deleted:       "Nota fiscal excluída",
		ConfirmDelete: "Confirma a exclusão desta nota fiscal?",
	},
}

// Payables expose "pay" only while pending.
var Payables = &Entity{
	Key:   SectionPayables,
	Path:  api.PathPayables,
	Title: "Contas a Pagar",
	TableSpec: TableSpec{
		Columns: []Column{
			{Title: "Fornecedor", Width: 26, Value: textOr("fornecedor.razao_social", "N/A")},
			{Title: "Descrição", Width: 30, Value: text("descricao")},
			{Title: "Tipo", Width: 16, Value: textOr("tipo_despesa.nome", "N/A")},
			{Title: "Vencimento", Width: 11, Value: dateOf("data_vencimento")},
			{Title: "Valor", Width: 16, Value: currencyOf("valor_original")},
			{Title: "Status", Width: 11, Value: text("status"), Badge: statusBadge},
		},
		Empty: "Nenhuma conta encontrada",
		Actions: func(r api.Record) []Action {
			if r.Text("status") == StatusPending {
				return []Action{ActionPay, ActionEdit, ActionDelete}
			}
			return []Action{ActionEdit, ActionDelete}
		},
	},
	Filters: []Field{
		{Key: "search", Label: "Buscar", Kind: KindText},
		{Key: "status", Label: "Status", Kind: KindSelect, Options: payableStatusOptions, Placeholder: "Todos"},
		{Key: "fornecedor_id", Label: "Fornecedor", Kind: KindSelect, Source: SectionSuppliers, Placeholder: "Todos"},
		{Key: "tipo_despesa_id", Label: "Tipo", Kind: KindSelect, Source: SectionExpenseTypes, Placeholder: "Todos"},
		{Key: "data_inicio", Label: "De", Kind: KindDate},
		{Key: "data_fim", Label: "Até", Kind: KindDate},
		{Key: "vencidas", Label: "Só vencidas", Kind: KindBool},
	},
	Fields: []Field{
		{Key: "fornecedor_id", Label: "Fornecedor", Kind: KindSelect, Source: SectionSuppliers, Placeholder: "Selecione...", Required: true},
		{Key: "tipo_despesa_id", Label: "Tipo de despesa", Kind: KindSelect, Source: SectionExpenseTypes, Placeholder: "Selecione...", Required: true},
		{Key: "descricao", Label: "Descrição", Required: true},
		{Key: "numero_documento", Label: "Nº documento"},
		{Key: "valor_original", Label: "Valor", Kind: KindNumber, Required: true},
		{Key: "data_vencimento", Label: "Vencimento", Kind: KindDate, Required: true},
		{Key: "parcelas", Label: "Parcelas", Kind: KindNumber, Placeholder: "1", CreateOnly: true, Transient: true},
		{Key: "observacoes", Label: "Observações"},
	},
	Prepare: prepareInstallments,
	Messages: Messages{
		LoadError:     "Erro ao carregar contas a pagar",
		SaveError:     "Erro ao salvar conta a pagar",
		DeleteError:   "Erro ao excluir conta a pagar",
		Saved:         "Conta a pagar salva",
		Deleted:       "Conta a pagar excluída",
		ConfirmDelete: "Confirma a exclusão desta conta a pagar?",
	},
}

// Suppliers feed the supplier selects of payables.
var Suppliers = &Entity{
	Key:   SectionSuppliers,
	Path:  api.PathSuppliers,
	Title: "Fornecedores",
	TableSpec: TableSpec{
		Columns: []Column{
			{Title: "CNPJ", Width: 19, Value: func(r api.Record) string { return format.CNPJ(r.Text("cnpj")) }},
			{Title: "Razão Social", Width: 30, Value: text("razao_social")},
			{Title: "Nome Fantasia", Width: 22, Value: textOr("nome_fantasia", "-")},
			{Title: "Cidade/UF", Width: 20, Value: func(r api.Record) string {
				return textOr("cidade", "-")(r) + "/" + textOr("uf", "-")(r)
			}},
			{Title: "Telefone", Width: 15, Value: textOr("telefone", "-")},
		},
		Empty: "Nenhum fornecedor encontrado",
		Actions: func(api.Record) []Action {
			return []Action{ActionEdit, ActionDelete}
		},
	},
	Filters: []Field{
		{Key: "search", Label: "Buscar", Kind: KindText},
	},
	Fields: []Field{
		{Key: "cnpj", Label: "CNPJ", Mask: format.CNPJ, Required: true},
		{Key: "razao_social", Label: "Razão social", Required: true},
		{Key: "nome_fantasia", Label: "Nome fantasia"},
		{Key: "inscricao_estadual", Label: "Inscrição estadual"},
		{Key: "endereco", Label: "Endereço"},
		{Key: "cidade", Label: "Cidade"},
		{Key: "uf", Label: "UF", Mask: stateCode},
		{Key: "cep", Label: "CEP", Mask: format.CEP},
		{Key: "telefone", Label: "Telefone"},
		{Key: "email", Label: "E-mail"},
	},
	Lookup: &LookupSpec{Label: text("razao_social")},
	Messages: Messages{
		LoadError:     "Erro ao carregar fornecedores",
		SaveError:     "Erro ao salvar fornecedor",
		DeleteError:   "Erro ao excluir fornecedor",
		Saved:         "Fornecedor salvo",
		Deleted:       "Fornecedor excluído",
		ConfirmDelete: "Confirma a exclusão deste fornecedor?",
	},
}

// ExpenseTypes feed the expense-type selects of payables.
var ExpenseTypes = &Entity{
	Key:   SectionExpenseTypes,
	Path:  api.PathExpenseTypes,
	Title: "Tipos de Despesa",
	TableSpec: TableSpec{
		Columns: []Column{
			{Title: "Nome", Width: 24, Value: text("nome")},
			{Title: "Descrição", Width: 40, Value: textOr("descricao", "-")},
			{Title: "Status", Width: 9,
				Value: func(r api.Record) string {
					if r.Bool("ativo") {
						return "Ativo"
					}
					return "Inativo"
				},
				Badge: func(r api.Record) string {
					if r.Bool("ativo") {
						return StatusClass(StatusPaid)
					}
					return StatusClass(StatusCancelled)
				},
			},
		},
		Empty: "Nenhum tipo de despesa encontrado",
		Actions: func(api.Record) []Action {
			return []Action{ActionEdit, ActionDelete}
		},
	},
	Fields: []Field{
		{Key: "nome", Label: "Nome", Required: true},
		{Key: "descricao", Label: "Descrição"},
		{Key: "ativo", Label: "Ativo", Kind: KindBool, Default: "true"},
	},
	Lookup: &LookupSpec{Label: text("nome")},
	Messages: Messages{
		LoadError:     "Erro ao carregar tipos de despesa",
		SaveError:     "Erro ao salvar tipo de despesa",
		DeleteError:   "Erro ao excluir tipo de despesa",
		Saved:         "Tipo de despesa salvo",
		Deleted:       "Tipo de despesa excluído",
		ConfirmDelete: "Confirma a exclusão deste tipo de despesa?",
	},
}

// Upcoming is the dashboard's next-due table. It has no row actions.
var Upcoming = TableSpec{
	Columns: []Column{
		{Title: "Fornecedor", Width: 26, Value: textOr("fornecedor.razao_social", "N/A")},
		{Title: "Descrição", Width: 30, Value: text("descricao")},
		{Title: "Vencimento", Width: 11, Value: dateOf("data_vencimento")},
		{Title: "Valor", Width: 16, Value: currencyOf("valor_original")},
		{Title: "Status", Width: 11, Value: text("status"), Badge: statusBadge},
	},
	Empty: "Nenhum vencimento próximo",
}

// Entities lists every entity in navigation order.
func Entities() []*Entity {
	return []*Entity{Invoices, Payables, Suppliers, ExpenseTypes}
}

// EntityByKey finds an entity by section id or path.
func EntityByKey(key string) *Entity {
	for _, e := range Entities() {
		if e.Key == key {
			return e
		}
	}
	return nil
}

func stateCode(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
			if b.Len() == 2 {
				break
			}
		}
	}
	return b.String()
}
