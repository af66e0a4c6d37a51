package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&Config{URL: srv.URL, Token: "tok", ProxyCookie: "c00k", ProxyCookieName: "auth_cookie"}, zerolog.Nop())
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

func TestListEncodesQueryAndReadsPagination(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		writeJSON(w, `{"success":true,"data":[{"id":7,"descricao":"Aluguel","valor_original":"1500.00"}],
			"pagination":{"page":2,"per_page":20,"total":41,"pages":3,"has_prev":true,"has_next":true}}`)
	})

	res, err := c.List(context.Background(), PathPayables, Query{
		Page:    2,
		PerPage: 20,
		Filters: map[string]string{"status": "PENDENTE", "search": "", "fornecedor_id": "3"},
	})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	require.Equal(t, "7", res.Records[0].ID())
	require.Equal(t, Pagination{Page: 2, PerPage: 20, Total: 41, Pages: 3, HasPrev: true, HasNext: true}, res.Pagination)

	require.Equal(t, "/contas-pagar", got.URL.Path)
	q := got.URL.Query()
	require.Equal(t, "2", q.Get("page"))
	require.Equal(t, "20", q.Get("per_page"))
	require.Equal(t, "PENDENTE", q.Get("status"))
	require.Equal(t, "3", q.Get("fornecedor_id"))
	_, hasSearch := q["search"]
	require.False(t, hasSearch, "empty filters are not sent")

	require.NotEmpty(t, got.Header.Get("X-Request-ID"))
	require.Equal(t, "Bearer tok", got.Header.Get("Authorization"))
	cookie, err := got.Cookie("auth_cookie")
	require.NoError(t, err)
	require.Equal(t, "c00k", cookie.Value)
}

func TestListWithoutPaginationIsSinglePage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"success":true,"data":[{"id":1,"nome":"Energia"},{"id":2,"nome":"Aluguel"}]}`)
	})

	res, err := c.List(context.Background(), PathExpenseTypes, Query{Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	require.Equal(t, 1, res.Pagination.Pages)
	require.False(t, res.Pagination.HasNext)
	require.False(t, res.Pagination.HasPrev)
}

func TestDomainErrorCarriesServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, `{"success":false,"error":"CNPJ já cadastrado"}`)
	})

	_, err := c.Create(context.Background(), PathSuppliers, map[string]any{"cnpj": "11222333000181"})
	require.Error(t, err)

	var de *DomainError
	require.True(t, errors.As(err, &de))
	require.Equal(t, http.StatusBadRequest, de.Status)
	require.False(t, IsTransport(err))
	require.Equal(t, "CNPJ já cadastrado", UserMessage(err, "Erro ao salvar fornecedor"))
}

func TestMissingSuccessIsDomainFailureEvenOn200(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"data":[]}`)
	})

	_, err := c.List(context.Background(), PathInvoices, Query{})
	var de *DomainError
	require.True(t, errors.As(err, &de))
	require.Equal(t, "requisição falhou (HTTP 200)", de.Message)
}

func TestMalformedJSONIsTransportError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>502 Bad Gateway</html>")
	})

	_, err := c.List(context.Background(), PathInvoices, Query{})
	require.Error(t, err)
	require.True(t, IsTransport(err))
	require.Equal(t, "Erro ao carregar notas fiscais", UserMessage(err, "Erro ao carregar notas fiscais"))
}

func TestUnreachableServerIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(&Config{URL: url}, zerolog.Nop())
	_, err := c.Dashboard(context.Background())
	require.Error(t, err)
	require.True(t, IsTransport(err))
}

func TestProxyCookieOnlyInInternetMode(t *testing.T) {
	var cookies []*http.Cookie
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		cookies = r.Cookies()
		writeJSON(w, `{"success":true,"data":[]}`)
	})
	c.Mode = ModeLAN

	_, err := c.List(context.Background(), PathSuppliers, Query{})
	require.NoError(t, err)
	require.Empty(t, cookies)
}

func TestDetectConnectionPrefersLAN(t *testing.T) {
	lan := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"success":true,"data":{}}`)
	}))
	t.Cleanup(lan.Close)

	c := NewClient(&Config{URL: "http://127.0.0.1:1", LANURL: lan.URL}, zerolog.Nop())
	c.DetectConnection(context.Background())
	require.Equal(t, ModeLAN, c.Mode)
	require.Equal(t, lan.URL, c.ActiveURL)
}

func TestGetUpdateRemove(t *testing.T) {
	var methods []string
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, `{"success":true,"data":{"id":4,"razao_social":"ACME LTDA","ativo":true}}`)
		case http.MethodPut:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			writeJSON(w, `{"success":true,"data":{"id":4},"message":"Fornecedor atualizado"}`)
		case http.MethodDelete:
			writeJSON(w, `{"success":true,"message":"Fornecedor excluído"}`)
		}
	})
	ctx := context.Background()

	rec, err := c.Get(ctx, PathSuppliers, "4")
	require.NoError(t, err)
	require.Equal(t, "ACME LTDA", rec.Text("razao_social"))
	require.True(t, rec.Bool("ativo"))

	saved, err := c.Update(ctx, PathSuppliers, "4", map[string]any{"razao_social": "ACME SA"})
	require.NoError(t, err)
	require.Equal(t, "Fornecedor atualizado", saved.Message)
	require.Equal(t, "4", saved.Record.ID())
	require.Equal(t, "ACME SA", body["razao_social"])

	msg, err := c.Remove(ctx, PathSuppliers, "4")
	require.NoError(t, err)
	require.Equal(t, "Fornecedor excluído", msg)

	require.Equal(t, []string{
		"GET /fornecedores/4",
		"PUT /fornecedores/4",
		"DELETE /fornecedores/4",
	}, methods)
}

func TestCreateInstallmentsReturnsAllRecords(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"success":true,"data":[{"id":10,"numero_parcela":1},{"id":11,"numero_parcela":2}],"message":"2 parcelas criadas"}`)
	})

	saved, err := c.Create(context.Background(), PathPayables, map[string]any{"total_parcelas": 2})
	require.NoError(t, err)
	require.Len(t, saved.Records, 2)
	require.Equal(t, "10", saved.Record.ID())
}

func TestMarkPaidPostsPaymentDate(t *testing.T) {
	var path string
	var body map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.Method + " " + r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, `{"success":true,"message":"Conta marcada como paga"}`)
	})

	saved, err := c.MarkPaid(context.Background(), "12", "2026-10-19")
	require.NoError(t, err)
	require.Equal(t, "Conta marcada como paga", saved.Message)
	require.Equal(t, "POST /contas-pagar/12/pagar", path)
	require.Equal(t, map[string]string{"data_pagamento": "2026-10-19"}, body)

	amount := decimal.RequireFromString("99.90")
	_, err = c.Pay(context.Background(), "12", Payment{Date: "2026-10-20", Amount: &amount})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"data_pagamento": "2026-10-20", "valor_pago": "99.9"}, body)
}

func TestUploadDocumentSendsMultipartFile(t *testing.T) {
	var filename, content string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/notas-fiscais/upload", r.URL.Path)
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)
		filename, content = hdr.Filename, string(b)
		writeJSON(w, `{"success":true,"data":{"id":99,"numero":"1234"},"message":"Nota fiscal importada"}`)
	})

	saved, err := c.UploadDocument(context.Background(), "/tmp/nfe/35261012.xml", strings.NewReader("<nfeProc/>"))
	require.NoError(t, err)
	require.Equal(t, "35261012.xml", filename)
	require.Equal(t, "<nfeProc/>", content)
	require.Equal(t, "1234", saved.Record.Text("numero"))
}

func TestUpdateOverdueAndCNPJLookup(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "atualizar-status") {
			writeJSON(w, `{"success":true,"message":"3 contas atualizadas para VENCIDO"}`)
			return
		}
		writeJSON(w, `{"success":true,"data":{"id":5,"cnpj":"11222333000181"}}`)
	})
	ctx := context.Background()

	msg, err := c.UpdateOverdue(ctx)
	require.NoError(t, err)
	require.Equal(t, "3 contas atualizadas para VENCIDO", msg)

	rec, err := c.FindSupplierByCNPJ(ctx, "11222333000181")
	require.NoError(t, err)
	require.Equal(t, "5", rec.ID())

	require.Equal(t, []string{
		"POST /contas-pagar/atualizar-status",
		"GET /fornecedores/buscar-cnpj/11222333000181",
	}, paths)
}

func TestDashboardDecodesTotals(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/contas-pagar/dashboard", r.URL.Path)
		writeJSON(w, `{"success":true,"data":{
			"totais":{"pendente":1234.5,"pago":"10.10","vencido":0},
			"contadores":{"pendente":3,"pago":1,"vencido":0},
			"proximos_vencimentos":[{"id":1,"descricao":"Luz","fornecedor":{"razao_social":"CEMIG"}}]}}`)
	})

	d, err := c.Dashboard(context.Background())
	require.NoError(t, err)
	require.True(t, d.Totals.Pending.Equal(decimal.RequireFromString("1234.5")))
	require.True(t, d.Totals.Paid.Equal(decimal.RequireFromString("10.10")))
	require.True(t, d.Totals.Overdue.IsZero())
	require.Equal(t, 3, d.Counts.Pending)
	require.Len(t, d.Upcoming, 1)
	require.Equal(t, "CEMIG", d.Upcoming[0].Text("fornecedor.razao_social"))
}

func TestListAllFollowsHasNext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			writeJSON(w, `{"success":true,"data":[{"id":1}],"pagination":{"page":1,"pages":2,"has_next":true}}`)
			return
		}
		writeJSON(w, `{"success":true,"data":[{"id":2}],"pagination":{"page":2,"pages":2,"has_prev":true}}`)
	})

	all, err := c.ListAll(context.Background(), PathSuppliers, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "2", all[1].ID())
}
