// Package api is the REST boundary of the accounts-payable back office: it
// builds requests, reads the {success, data, error, pagination} envelope and
// splits failures into domain and transport errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Connection modes
const (
	ModeLAN      = "lan"
	ModeInternet = "internet"
)

// Resource paths under the API root
const (
	PathInvoices     = "notas-fiscais"
	PathPayables     = "contas-pagar"
	PathSuppliers    = "fornecedores"
	PathExpenseTypes = "tipos-despesa"
)

// Client handles API requests
type Client struct {
	Config     *Config
	HTTPClient *http.Client
	ActiveURL  string
	Mode       string // "lan" or "internet"
	Log        zerolog.Logger
}

// Envelope is the reply shape shared by every endpoint.
type Envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
	Message    string          `json:"message,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

// NewClient creates a new API client. Until DetectConnection runs, requests
// go to the internet URL.
func NewClient(config *Config, log zerolog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		Config: config,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		ActiveURL: config.URL,
		Mode:      ModeInternet,
		Log:       log,
	}
}

// DetectConnection tries the LAN root first, falls back to internet
func (c *Client) DetectConnection(ctx context.Context) {
	if c.Config.LANURL != "" {
		probe := &http.Client{Timeout: 2 * time.Second}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Config.LANURL+"/"+PathPayables+"/dashboard", nil)
		if err == nil {
			c.authorize(req, ModeLAN)
			resp, err := probe.Do(req)
			if err == nil {
				resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					c.Mode = ModeLAN
					c.ActiveURL = c.Config.LANURL
					c.Log.Debug().Str("url", c.ActiveURL).Msg("using LAN connection")
					return
				}
			}
		}
	}

	c.Mode = ModeInternet
	c.ActiveURL = c.Config.URL
	c.Log.Debug().Str("url", c.ActiveURL).Msg("using internet connection")
}

func (c *Client) authorize(req *http.Request, mode string) {
	if c.Config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Config.Token)
	}
	if mode == ModeInternet && c.Config.ProxyCookie != "" {
		req.AddCookie(&http.Cookie{Name: c.Config.ProxyCookieName, Value: c.Config.ProxyCookie})
	}
}

// Request makes a JSON API request and returns the envelope of a successful
// reply. query may be nil; body is marshalled as JSON when non-nil.
func (c *Client) Request(ctx context.Context, method, endpoint string, query url.Values, body any) (*Envelope, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := c.newRequest(ctx, method, endpoint, query, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, endpoint)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, query url.Values, body io.Reader) (*http.Request, error) {
	fullURL := c.ActiveURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	c.authorize(req, c.Mode)
	return req, nil
}

func (c *Client) send(req *http.Request, endpoint string) (*Envelope, error) {
	start := time.Now()
	reqID := req.Header.Get("X-Request-ID")
	log := c.Log.With().
		Str("request_id", reqID).
		Str("method", req.Method).
		Str("endpoint", endpoint).
		Logger()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Error().Err(err).Dur("latency", time.Since(start)).Msg("request failed")
		return nil, &TransportError{Op: "request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error().Err(err).Int("status", resp.StatusCode).Msg("failed to read response")
		return nil, &TransportError{Op: "failed to read response", Err: err}
	}

	var env Envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		log.Error().Err(err).
			Int("status", resp.StatusCode).
			Str("body", truncate(string(respBody), 200)).
			Msg("failed to parse response")
		return nil, &TransportError{Op: "failed to parse response", Err: err}
	}

	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = fmt.Sprintf("requisição falhou (HTTP %d)", resp.StatusCode)
		}
		log.Warn().Int("status", resp.StatusCode).Str("error", msg).Msg("api error")
		return nil, &DomainError{Status: resp.StatusCode, Message: msg}
	}

	log.Info().Int("status", resp.StatusCode).Dur("latency", time.Since(start)).Msg("request done")
	return &env, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
