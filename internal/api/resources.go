package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// Query is what a list call sends: page, page size and entity filters.
// Empty filter values are not sent.
type Query struct {
	Page    int
	PerPage int
	Filters map[string]string
}

// Values encodes the query in a stable order.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if val := q.Filters[k]; val != "" {
			v.Set(k, val)
		}
	}
	return v
}

// ListResult is a page of records plus its pagination descriptor.
type ListResult struct {
	Records    []Record
	Pagination Pagination
}

// Saved is the reply to create/update/pay/upload calls. Installment creates
// return several records; Record is then the first one.
type Saved struct {
	Record  Record
	Records []Record
	Message string
}

// List fetches one page of an entity. Endpoints that are not paginated get a
// single-page descriptor.
func (c *Client) List(ctx context.Context, path string, q Query) (*ListResult, error) {
	env, err := c.Request(ctx, http.MethodGet, path, q.Values(), nil)
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords(env.Data)
	if err != nil {
		return nil, &TransportError{Op: "failed to parse " + path, Err: err}
	}

	result := &ListResult{Records: records}
	if env.Pagination != nil {
		result.Pagination = *env.Pagination
	} else {
		result.Pagination = Pagination{Page: 1, Pages: 1, PerPage: len(records), Total: len(records)}
	}
	return result, nil
}

// ListAll walks every page of a paginated entity.
func (c *Client) ListAll(ctx context.Context, path string, filters map[string]string) ([]Record, error) {
	var all []Record
	page := 1
	for {
		res, err := c.List(ctx, path, Query{Page: page, PerPage: 100, Filters: filters})
		if err != nil {
			return nil, err
		}
		all = append(all, res.Records...)
		if !res.Pagination.HasNext || len(res.Records) == 0 {
			return all, nil
		}
		page++
	}
}

// Get fetches a single record.
func (c *Client) Get(ctx context.Context, path, id string) (Record, error) {
	env, err := c.Request(ctx, http.MethodGet, path+"/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	rec, err := decodeRecord(env.Data)
	if err != nil {
		return nil, &TransportError{Op: "failed to parse " + path, Err: err}
	}
	if rec == nil {
		return nil, &DomainError{Status: http.StatusOK, Message: "registro não encontrado"}
	}
	return rec, nil
}

// Create posts a new record.
func (c *Client) Create(ctx context.Context, path string, payload any) (*Saved, error) {
	env, err := c.Request(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return nil, err
	}
	return savedFrom(env, path)
}

// Update replaces the editable fields of a record.
func (c *Client) Update(ctx context.Context, path, id string, payload any) (*Saved, error) {
	env, err := c.Request(ctx, http.MethodPut, path+"/"+url.PathEscape(id), nil, payload)
	if err != nil {
		return nil, err
	}
	return savedFrom(env, path)
}

// Remove deletes a record and returns the server's confirmation text.
func (c *Client) Remove(ctx context.Context, path, id string) (string, error) {
	env, err := c.Request(ctx, http.MethodDelete, path+"/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// Payment is the body of a pay call. A nil Amount lets the server settle the
// original value.
type Payment struct {
	Date   string           `json:"data_pagamento"`
	Amount *decimal.Decimal `json:"valor_pago,omitempty"`
}

// MarkPaid settles a payable on paymentDate (YYYY-MM-DD).
func (c *Client) MarkPaid(ctx context.Context, payableID, paymentDate string) (*Saved, error) {
	return c.Pay(ctx, payableID, Payment{Date: paymentDate})
}

// Pay settles a payable with an explicit payment body.
func (c *Client) Pay(ctx context.Context, payableID string, body Payment) (*Saved, error) {
	env, err := c.Request(ctx, http.MethodPost, PathPayables+"/"+url.PathEscape(payableID)+"/pagar", nil, body)
	if err != nil {
		return nil, err
	}
	return savedFrom(env, PathPayables)
}

// UpdateOverdue asks the server to flip past-due pending payables to VENCIDO.
func (c *Client) UpdateOverdue(ctx context.Context) (string, error) {
	env, err := c.Request(ctx, http.MethodPost, PathPayables+"/atualizar-status", nil, map[string]any{})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// FindSupplierByCNPJ looks a supplier up by tax id, masked or not.
func (c *Client) FindSupplierByCNPJ(ctx context.Context, cnpj string) (Record, error) {
	env, err := c.Request(ctx, http.MethodGet, PathSuppliers+"/buscar-cnpj/"+url.PathEscape(cnpj), nil, nil)
	if err != nil {
		return nil, err
	}
	rec, err := decodeRecord(env.Data)
	if err != nil {
		return nil, &TransportError{Op: "failed to parse supplier", Err: err}
	}
	return rec, nil
}

// UploadDocument sends an NF-e XML as multipart field "file"; the server
// parses it and answers with the stored invoice.
func (c *Client) UploadDocument(ctx context.Context, filename string, content io.Reader) (*Saved, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	endpoint := PathInvoices + "/upload"
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, nil, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	env, err := c.send(req, endpoint)
	if err != nil {
		return nil, err
	}
	return savedFrom(env, PathInvoices)
}

// UploadFile opens path and uploads it with UploadDocument.
func (c *Client) UploadFile(ctx context.Context, path string) (*Saved, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("não foi possível abrir %s: %w", path, err)
	}
	defer f.Close()
	return c.UploadDocument(ctx, path, f)
}

func savedFrom(env *Envelope, path string) (*Saved, error) {
	saved := &Saved{Message: env.Message}
	raw := bytes.TrimSpace(env.Data)
	if len(raw) == 0 {
		return saved, nil
	}
	var err error
	if raw[0] == '[' {
		saved.Records, err = decodeRecords(raw)
		if len(saved.Records) > 0 {
			saved.Record = saved.Records[0]
		}
	} else {
		saved.Record, err = decodeRecord(raw)
		if saved.Record != nil {
			saved.Records = []Record{saved.Record}
		}
	}
	if err != nil {
		return nil, &TransportError{Op: "failed to parse " + path, Err: err}
	}
	return saved, nil
}

// DashboardTotals are the money sums per payable status.
type DashboardTotals struct {
	Pending decimal.Decimal `json:"pendente"`
	Paid    decimal.Decimal `json:"pago"`
	Overdue decimal.Decimal `json:"vencido"`
}

// DashboardCounts are the number of payables per status.
type DashboardCounts struct {
	Pending int `json:"pendente"`
	Paid    int `json:"pago"`
	Overdue int `json:"vencido"`
}

// Dashboard is the payables summary shown on the home section.
type Dashboard struct {
	Totals   DashboardTotals `json:"totais"`
	Counts   DashboardCounts `json:"contadores"`
	Upcoming []Record        `json:"proximos_vencimentos"`
}

// Dashboard fetches the payables summary.
func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	env, err := c.Request(ctx, http.MethodGet, PathPayables+"/dashboard", nil, nil)
	if err != nil {
		return nil, err
	}
	var d Dashboard
	if err := decodeNumbers(env.Data, &d); err != nil {
		return nil, &TransportError{Op: "failed to parse dashboard", Err: err}
	}
	return &d, nil
}
