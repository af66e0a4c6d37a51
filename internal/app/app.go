// Package app is the UI-independent core of the back-office client: one
// root App holding the section state, a list view and form per entity, the
// lookup caches behind selection controls, the dashboard, the busy counter
// and pending notifications.
//
// Every operation returns a tea.Cmd that performs the network call and
// yields a message; feeding that message back through App.Update applies it.
// Both the TUI and the tests drive the core this way.
package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/mikelcalvo/financeiro-cli/internal/api"
	"github.com/mikelcalvo/financeiro-cli/internal/format"
)

var _ Backend = (*api.Client)(nil)

// Backend is the subset of the API client the core needs.
type Backend interface {
	List(ctx context.Context, path string, q api.Query) (*api.ListResult, error)
	ListAll(ctx context.Context, path string, filters map[string]string) ([]api.Record, error)
	Get(ctx context.Context, path, id string) (api.Record, error)
	Create(ctx context.Context, path string, payload any) (*api.Saved, error)
	Update(ctx context.Context, path, id string, payload any) (*api.Saved, error)
	Remove(ctx context.Context, path, id string) (string, error)
	Pay(ctx context.Context, payableID string, body api.Payment) (*api.Saved, error)
	UploadFile(ctx context.Context, path string) (*api.Saved, error)
	UpdateOverdue(ctx context.Context) (string, error)
	FindSupplierByCNPJ(ctx context.Context, cnpj string) (api.Record, error)
	Dashboard(ctx context.Context) (*api.Dashboard, error)
}

// Non-row actions
const (
	ActionUpload      Action = "upload"
	ActionMarkOverdue Action = "overdue"
)

// Prompts shown before destructive actions
const (
	PromptPay = "Confirma o pagamento desta conta?"
)

// ActionDoneMsg carries the result of pay, delete, upload and mark-overdue.
type ActionDoneMsg struct {
	Entity  string
	Action  Action
	ID      string
	Message string
	Err     error
}

// Detail is a read-only record view, such as an invoice with its items.
type Detail struct {
	Entity *Entity
	Record api.Record
	Items  Table
}

// InvoiceItems is the item table of an invoice detail.
var InvoiceItems = TableSpec{
	Columns: []Column{
		{Title: "Código", Width: 12, Value: text("codigo_produto")},
		{Title: "Descrição", Width: 36, Value: text("descricao")},
		{Title: "Qtd", Width: 8, Value: text("quantidade")},
		{Title: "Unitário", Width: 14, Value: currencyOf("valor_unitario")},
		{Title: "Total", Width: 14, Value: currencyOf("valor_total")},
	},
	Empty: "Nenhum item",
}

// App is the root controller. It is not safe for concurrent use; all
// mutation happens in Update and the methods that build commands, which
// bubbletea runs on its single update goroutine.
type App struct {
	Nav       Nav
	Lists     map[string]*ListView
	Forms     map[string]*Form
	Lookups   map[string]*Lookup
	Dashboard *Dashboard
	Detail    *Detail
	Busy      Busy
	Toasts    []Toast

	backend   Backend
	ctx       context.Context
	log       zerolog.Logger
	now       func() time.Time
	tick      func(time.Duration, func(time.Time) tea.Msg) tea.Cmd
	nextToast int
}

// Options tunes a new App.
type Options struct {
	Section string // initial section; dashboard when empty or unknown
	Log     zerolog.Logger
	Now     func() time.Time
	// Tick schedules toast expiry; tea.Tick when nil.
	Tick func(time.Duration, func(time.Time) tea.Msg) tea.Cmd
}

// New wires a list view per entity, a form per entity with fields and a
// lookup per entity that feeds selects.
func New(ctx context.Context, backend Backend, opts Options) *App {
	a := &App{
		Nav:     newNav(opts.Section),
		Lists:   make(map[string]*ListView),
		Forms:   make(map[string]*Form),
		Lookups: make(map[string]*Lookup),
		backend: backend,
		ctx:     ctx,
		log:     opts.Log,
		now:     opts.Now,
		tick:    opts.Tick,
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.tick == nil {
		a.tick = tea.Tick
	}
	a.Dashboard = &Dashboard{app: a}
	a.Dashboard.Upcoming = RenderTable(Upcoming, nil)

	for _, e := range Entities() {
		a.Lists[e.Key] = newListView(a, e)
		if e.HasForm() {
			a.Forms[e.Key] = newForm(a, e)
		}
		if e.Lookup != nil {
			a.Lookups[e.Key] = &Lookup{Entity: e, app: a}
		}
	}
	return a
}

// Init loads the lookups and the initial section.
func (a *App) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(a.Lookups)+1)
	for _, e := range Entities() {
		if l, ok := a.Lookups[e.Key]; ok {
			cmds = append(cmds, l.Reload())
		}
	}
	cmds = append(cmds, a.Activate(a.Nav.Current))
	return tea.Batch(cmds...)
}

// Update applies a message produced by one of the core's commands and
// returns the follow-up work. Messages it does not know are ignored.
func (a *App) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ListLoadedMsg:
		if lv, ok := a.Lists[msg.Entity]; ok {
			return lv.apply(msg)
		}
	case FormSavedMsg:
		if f, ok := a.Forms[msg.Entity]; ok {
			return f.applySaved(msg)
		}
	case RecordLoadedMsg:
		if msg.View {
			return a.applyDetail(msg)
		}
		if f, ok := a.Forms[msg.Entity]; ok {
			return f.applyLoaded(msg)
		}
	case LookupLoadedMsg:
		if l, ok := a.Lookups[msg.Source]; ok {
			return l.apply(msg)
		}
	case DashboardLoadedMsg:
		return a.Dashboard.apply(msg)
	case ActionDoneMsg:
		return a.applyAction(msg)
	case ToastExpiredMsg:
		a.Dismiss(msg.ID)
	}
	return nil
}

// Notify queues a toast and schedules its removal.
func (a *App) Notify(level Level, message string) tea.Cmd {
	a.nextToast++
	id := a.nextToast
	a.Toasts = append(a.Toasts, Toast{ID: id, Level: level, Message: message})
	return a.tick(ToastTTL, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: id}
	})
}

// Dismiss removes a toast.
func (a *App) Dismiss(id int) {
	for i, t := range a.Toasts {
		if t.ID == id {
			a.Toasts = append(a.Toasts[:i], a.Toasts[i+1:]...)
			return
		}
	}
}

// Current returns the list view of the active section, nil on the dashboard.
func (a *App) Current() *ListView {
	return a.Lists[a.Nav.Current]
}

// publish pushes lookup options to every select fed by source.
func (a *App) publish(source string, opts []Option) {
	for _, e := range Entities() {
		for _, c := range a.Lists[e.Key].Filters {
			if c.Source == source {
				c.Publish(opts)
			}
		}
		if f, ok := a.Forms[e.Key]; ok {
			for _, c := range f.Controls {
				if c.Source == source {
					c.Publish(opts)
				}
			}
		}
	}
}

// dependents are the reloads owed to others after e changed.
func (a *App) dependents(e *Entity) []tea.Cmd {
	var cmds []tea.Cmd
	if l, ok := a.Lookups[e.Key]; ok {
		cmds = append(cmds, l.Reload())
	}
	if e == Payables {
		cmds = append(cmds, a.Dashboard.Refresh())
	}
	return cmds
}

// InvalidAmount is shown when a payment amount does not parse.
const InvalidAmount = "Valor inválido"

// Pay marks a payable as paid on date (YYYY-MM-DD; today when empty).
// amount may be empty to settle the original value.
func (a *App) Pay(id, date, amount string) tea.Cmd {
	if date == "" {
		date = format.ISODate(a.now())
	} else if iso, ok := format.ParseDisplayDate(date); ok {
		date = iso
	}
	body := api.Payment{Date: date}
	if amount != "" {
		d, err := format.ParseAmount(amount)
		if err != nil {
			return a.Notify(LevelWarning, InvalidAmount)
		}
		body.Amount = &d
	}
	return a.run(Payables, ActionPay, id, func(ctx context.Context) (string, error) {
		saved, err := a.backend.Pay(ctx, id, body)
		if err != nil {
			return "", err
		}
		return saved.Message, nil
	})
}

// Delete removes a record of e.
func (a *App) Delete(e *Entity, id string) tea.Cmd {
	return a.run(e, ActionDelete, id, func(ctx context.Context) (string, error) {
		return a.backend.Remove(ctx, e.Path, id)
	})
}

// Upload sends an NF-e XML file.
func (a *App) Upload(path string) tea.Cmd {
	return a.run(Invoices, ActionUpload, "", func(ctx context.Context) (string, error) {
		saved, err := a.backend.UploadFile(ctx, path)
		if err != nil {
			return "", err
		}
		return saved.Message, nil
	})
}

// MarkOverdue asks the server to flag past-due payables.
func (a *App) MarkOverdue() tea.Cmd {
	return a.run(Payables, ActionMarkOverdue, "", a.backend.UpdateOverdue)
}

// View loads a record for the read-only detail pane.
func (a *App) View(e *Entity, id string) tea.Cmd {
	a.Busy.Acquire()
	backend, ctx := a.backend, a.ctx
	return func() tea.Msg {
		rec, err := backend.Get(ctx, e.Path, id)
		return RecordLoadedMsg{Entity: e.Key, ID: id, Record: rec, Err: err, View: true}
	}
}

// EditSupplierByCNPJ opens the supplier form on the supplier holding cnpj.
func (a *App) EditSupplierByCNPJ(cnpj string) tea.Cmd {
	f := a.Forms[SectionSuppliers]
	return f.load(cnpj, "", func(ctx context.Context, b Backend) (api.Record, error) {
		return b.FindSupplierByCNPJ(ctx, cnpj)
	})
}

func (a *App) run(e *Entity, action Action, id string, call func(context.Context) (string, error)) tea.Cmd {
	a.Busy.Acquire()
	ctx := a.ctx
	return func() tea.Msg {
		msg, err := call(ctx)
		return ActionDoneMsg{Entity: e.Key, Action: action, ID: id, Message: msg, Err: err}
	}
}

func (a *App) applyAction(msg ActionDoneMsg) tea.Cmd {
	a.Busy.Release()
	e := EntityByKey(msg.Entity)
	if e == nil {
		return nil
	}

	if msg.Err != nil {
		a.log.Warn().Err(msg.Err).
			Str("entity", msg.Entity).
			Str("action", string(msg.Action)).
			Str("id", msg.ID).
			Msg("action failed")
		return a.Notify(LevelError, api.UserMessage(msg.Err, actionError(e, msg.Action)))
	}

	text := msg.Message
	if text == "" {
		text = actionDone(e, msg.Action)
	}
	cmds := []tea.Cmd{a.Notify(LevelSuccess, text), a.Lists[e.Key].Refresh(0)}

	switch msg.Action {
	case ActionDelete:
		if a.Detail != nil && a.Detail.Record.ID() == msg.ID {
			a.Detail = nil
		}
		cmds = append(cmds, a.dependents(e)...)
	case ActionPay, ActionMarkOverdue:
		cmds = append(cmds, a.Dashboard.Refresh())
	case ActionUpload:
		// the import may have registered a new supplier
		cmds = append(cmds, a.Lookups[SectionSuppliers].Reload())
	}
	return tea.Batch(cmds...)
}

func (a *App) applyDetail(msg RecordLoadedMsg) tea.Cmd {
	a.Busy.Release()
	e := EntityByKey(msg.Entity)
	if msg.Err != nil {
		fallback := "Erro ao carregar registro"
		if e != nil {
			fallback = e.Messages.LoadError
		}
		return a.Notify(LevelError, api.UserMessage(msg.Err, fallback))
	}
	a.Detail = &Detail{Entity: e, Record: msg.Record, Items: RenderTable(InvoiceItems, msg.Record.Records("itens"))}
	return nil
}

func actionError(e *Entity, action Action) string {
	switch action {
	case ActionPay:
		return "Erro ao processar pagamento"
	case ActionUpload:
		return e.Messages.SaveError
	case ActionMarkOverdue:
		return "Erro ao atualizar status das contas"
	}
	return e.Messages.DeleteError
}

func actionDone(e *Entity, action Action) string {
	switch action {
	case ActionPay:
		return "Conta marcada como paga"
	case ActionUpload:
		return e.Messages.Saved
	case ActionMarkOverdue:
		return "Status das contas atualizado"
	}
	return e.Messages.Deleted
}
