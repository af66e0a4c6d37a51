package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mikelcalvo/financeiro-cli/internal/api"
)

// memBackend serves records from memory and records every call it receives.
type memBackend struct {
	records map[string][]api.Record

	listErr error
	saveErr error
	failAll error

	calls    []string
	queries  []api.Query
	payloads []map[string]any
	payments []api.Payment
	nextID   int
}

func newMemBackend() *memBackend {
	return &memBackend{records: make(map[string][]api.Record), nextID: 100}
}

func (m *memBackend) called(format string, args ...any) {
	m.calls = append(m.calls, fmt.Sprintf(format, args...))
}

func (m *memBackend) List(_ context.Context, path string, q api.Query) (*api.ListResult, error) {
	m.called("list %s %d", path, q.Page)
	m.queries = append(m.queries, q)
	if m.failAll != nil {
		return nil, m.failAll
	}
	if m.listErr != nil {
		return nil, m.listErr
	}

	var all []api.Record
	for _, r := range m.records[path] {
		if s := q.Filters["status"]; s != "" && r.Text("status") != s {
			continue
		}
		all = append(all, r)
	}

	per := q.PerPage
	if per <= 0 {
		per = PageSize
	}
	pages := max(1, (len(all)+per-1)/per)
	page := max(1, q.Page)
	from := min(len(all), (page-1)*per)
	to := min(len(all), from+per)

	return &api.ListResult{
		Records: all[from:to],
		Pagination: api.Pagination{
			Page:    page,
			PerPage: per,
			Total:   len(all),
			Pages:   pages,
			HasPrev: page > 1,
			HasNext: page < pages,
		},
	}, nil
}

func (m *memBackend) ListAll(_ context.Context, path string, _ map[string]string) ([]api.Record, error) {
	m.called("all %s", path)
	if m.failAll != nil {
		return nil, m.failAll
	}
	return append([]api.Record(nil), m.records[path]...), nil
}

func (m *memBackend) find(path, id string) (int, api.Record) {
	for i, r := range m.records[path] {
		if r.ID() == id {
			return i, r
		}
	}
	return -1, nil
}

func (m *memBackend) Get(_ context.Context, path, id string) (api.Record, error) {
	m.called("get %s %s", path, id)
	if _, r := m.find(path, id); r != nil {
		return r, nil
	}
	return nil, &api.DomainError{Status: 404, Message: "registro não encontrado"}
}

func (m *memBackend) Create(_ context.Context, path string, payload any) (*api.Saved, error) {
	m.called("create %s", path)
	m.payloads = append(m.payloads, payload.(map[string]any))
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	m.nextID++
	rec := api.Record{"id": json.Number(strconv.Itoa(m.nextID))}
	for k, v := range payload.(map[string]any) {
		rec[k] = v
	}
	m.records[path] = append(m.records[path], rec)
	return &api.Saved{Record: rec}, nil
}

func (m *memBackend) Update(_ context.Context, path, id string, payload any) (*api.Saved, error) {
	m.called("update %s %s", path, id)
	m.payloads = append(m.payloads, payload.(map[string]any))
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	i, rec := m.find(path, id)
	if rec == nil {
		return nil, &api.DomainError{Status: 404, Message: "registro não encontrado"}
	}
	for k, v := range payload.(map[string]any) {
		rec[k] = v
	}
	m.records[path][i] = rec
	return &api.Saved{Record: rec, Message: "Atualizado com sucesso"}, nil
}

func (m *memBackend) Remove(_ context.Context, path, id string) (string, error) {
	m.called("remove %s %s", path, id)
	if m.failAll != nil {
		return "", m.failAll
	}
	i, rec := m.find(path, id)
	if rec == nil {
		return "", &api.DomainError{Status: 404, Message: "registro não encontrado"}
	}
	m.records[path] = append(m.records[path][:i], m.records[path][i+1:]...)
	return "", nil
}

func (m *memBackend) Pay(_ context.Context, id string, body api.Payment) (*api.Saved, error) {
	m.called("pay %s %s", id, body.Date)
	m.payments = append(m.payments, body)
	if m.failAll != nil {
		return nil, m.failAll
	}
	_, rec := m.find(api.PathPayables, id)
	if rec == nil {
		return nil, &api.DomainError{Status: 404, Message: "Conta não encontrada"}
	}
	if rec.Text("status") == StatusPaid {
		return nil, &api.DomainError{Status: 400, Message: "Conta já está paga"}
	}
	rec["status"] = StatusPaid
	rec["data_pagamento"] = body.Date
	return &api.Saved{Record: rec, Message: "Pagamento registrado com sucesso"}, nil
}

func (m *memBackend) UploadFile(_ context.Context, path string) (*api.Saved, error) {
	m.called("upload %s", path)
	if m.failAll != nil {
		return nil, m.failAll
	}
	return &api.Saved{Message: "Nota fiscal processada com sucesso"}, nil
}

func (m *memBackend) UpdateOverdue(context.Context) (string, error) {
	m.called("overdue")
	if m.failAll != nil {
		return "", m.failAll
	}
	return "3 contas atualizadas para VENCIDO", nil
}

func (m *memBackend) FindSupplierByCNPJ(_ context.Context, cnpj string) (api.Record, error) {
	m.called("cnpj %s", cnpj)
	for _, r := range m.records[api.PathSuppliers] {
		if r.Text("cnpj") == cnpj {
			return r, nil
		}
	}
	return nil, &api.DomainError{Status: 404, Message: "Fornecedor não encontrado"}
}

func (m *memBackend) Dashboard(context.Context) (*api.Dashboard, error) {
	m.called("dashboard")
	if m.failAll != nil {
		return nil, m.failAll
	}
	var upcoming []api.Record
	for _, r := range m.records[api.PathPayables] {
		if r.Text("status") == StatusPending {
			upcoming = append(upcoming, r)
		}
	}
	return &api.Dashboard{Upcoming: upcoming}, nil
}

func (m *memBackend) count(prefix string) int {
	n := 0
	for _, c := range m.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

var testNow = time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC)

// newTestApp builds an App whose toasts never expire on their own.
func newTestApp(t *testing.T, b Backend) *App {
	t.Helper()
	return New(context.Background(), b, Options{
		Log: zerolog.Nop(),
		Now: func() time.Time { return testNow },
		Tick: func(time.Duration, func(time.Time) tea.Msg) tea.Cmd {
			return nil
		},
	})
}

// drain runs cmd and everything it leads to, feeding each message back
// through the app the way the bubbletea runtime would.
func drain(a *App, cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			queue = append(queue, a.Update(msg))
		}
	}
}

func rec(kv ...any) api.Record {
	r := api.Record{}
	for i := 0; i+1 < len(kv); i += 2 {
		r[kv[i].(string)] = kv[i+1]
	}
	return r
}

func payable(id int, status string) api.Record {
	return rec(
		"id", json.Number(strconv.Itoa(id)),
		"descricao", fmt.Sprintf("Conta %d", id),
		"status", status,
		"valor_original", json.Number("150.00"),
		"data_vencimento", "2026-11-05",
		"fornecedor", map[string]any{"razao_social": "ACME Ltda"},
	)
}

func lastToast(t *testing.T, a *App) Toast {
	t.Helper()
	require.NotEmpty(t, a.Toasts)
	return a.Toasts[len(a.Toasts)-1]
}
