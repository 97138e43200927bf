// Package tracker is the HTTP client for the test-case backend.
//
// The backend owns storage and the issue tracker integration; this client
// only speaks its JSON API. Every call takes a context and is recorded in
// the tracker metrics.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JonMunkholm/casedesk/internal/core"
	"github.com/JonMunkholm/casedesk/internal/metrics"
)

// DefaultTimeout bounds a single tracker request.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// APIError is a non-2xx answer from the tracker.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: tracker returned %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: tracker returned %d: %s", e.Op, e.Status, e.Message)
}

// HTTPStatus returns the status the tracker answered with.
func (e *APIError) HTTPStatus() int {
	return e.Status
}

// Is maps 404 to core.ErrNotFound and every other status to core.ErrTrackerRejected.
func (e *APIError) Is(target error) bool {
	if e.Status == http.StatusNotFound {
		return target == core.ErrNotFound
	}
	return target == core.ErrTrackerRejected
}

// Client talks to the tracker API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. A nil client is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout on a copy of the current client,
// leaving a client passed to WithHTTPClient untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			cp := *c.http
			cp.Timeout = d
			c.http = &cp
		}
	}
}

// New creates a Client for the tracker at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse tracker url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("tracker url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("tracker url %q: missing host", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ core.Tracker = (*Client)(nil)

// ListCases returns the cases under parentID.
func (c *Client) ListCases(ctx context.Context, parentID string) (core.CaseList, error) {
	var out core.CaseList
	err := c.doJSON(ctx, "list_cases", http.MethodGet, "/api/casos-teste/"+url.PathEscape(parentID), nil, &out)
	return out, err
}

// GetCase returns one case.
func (c *Client) GetCase(ctx context.Context, key string) (core.TestCase, error) {
	var out core.TestCase
	err := c.doJSON(ctx, "get_case", http.MethodGet, "/api/caso-teste/"+url.PathEscape(key), nil, &out)
	return out, err
}

// CreateCase creates a case under req.IssuePai.
func (c *Client) CreateCase(ctx context.Context, req core.SaveRequest) (core.MutationResult, error) {
	var out core.MutationResult
	err := c.doJSON(ctx, "create_case", http.MethodPost, "/api/caso-teste", req, &out)
	return out, err
}

// UpdateCase replaces case key.
func (c *Client) UpdateCase(ctx context.Context, key string, req core.SaveRequest) (core.MutationResult, error) {
	var out core.MutationResult
	err := c.doJSON(ctx, "update_case", http.MethodPut, "/api/caso-teste/"+url.PathEscape(key), req, &out)
	return out, err
}

// DeleteCase removes case key.
func (c *Client) DeleteCase(ctx context.Context, key string) (core.MutationResult, error) {
	var out core.MutationResult
	err := c.doJSON(ctx, "delete_case", http.MethodDelete, "/api/caso-teste/"+url.PathEscape(key), nil, &out)
	return out, err
}

// exportCase is the grid row shape the export endpoint expects:
// components travel as one comma-separated string.
type exportCase struct {
	Titulo       string `json:"titulo"`
	Status       string `json:"status"`
	TipoExecucao string `json:"tipo_execucao"`
	TipoTeste    string `json:"tipo_teste"`
	Componentes  string `json:"componentes"`
	Objetivo     string `json:"objetivo"`
	PreCondicoes string `json:"pre_condicoes"`
	Descricao    string `json:"descricao"`
}

type exportBody struct {
	IssuePai string       `json:"issue_pai"`
	Casos    []exportCase `json:"casos"`
}

// ExportCases creates every row of req under req.IssuePai in one call.
func (c *Client) ExportCases(ctx context.Context, req core.ExportRequest) (core.ExportResult, error) {
	body := exportBody{IssuePai: req.IssuePai, Casos: make([]exportCase, len(req.Casos))}
	for i, rec := range req.Casos {
		body.Casos[i] = exportCase{
			Titulo:       rec.Titulo,
			Status:       string(rec.Status),
			TipoExecucao: string(rec.TipoExecucao),
			TipoTeste:    string(rec.TipoTeste),
			Componentes:  rec.Componentes.String(),
			Objetivo:     rec.Objetivo,
			PreCondicoes: rec.PreCondicoes,
			Descricao:    rec.Descricao,
		}
	}

	var out core.ExportResult
	err := c.doJSON(ctx, "export_cases", http.MethodPost, "/api/exportar-planilha-manual", body, &out)
	return out, err
}

// ExportSpreadsheet streams the spreadsheet of parentID's cases.
// The caller must close the returned Body.
func (c *Client) ExportSpreadsheet(ctx context.Context, parentID string) (core.Download, error) {
	const op = "export_spreadsheet"
	path := "/api/casos-teste/" + url.PathEscape(parentID) + "/exportar-excel"

	resp, err := c.send(ctx, op, http.MethodGet, path, nil, "")
	if err != nil {
		return core.Download{}, err
	}

	dl := core.Download{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		dl.Filename = params["filename"]
	}
	return dl, nil
}

// UploadEvidence sends an HTML test-run log as the multipart field log_file.
func (c *Client) UploadEvidence(ctx context.Context, name string, r io.Reader) (core.EvidenceUploadResult, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("log_file", name)
	if err != nil {
		return core.EvidenceUploadResult{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return core.EvidenceUploadResult{}, fmt.Errorf("copy log file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return core.EvidenceUploadResult{}, fmt.Errorf("close multipart writer: %w", err)
	}

	resp, err := c.send(ctx, "upload_evidence", http.MethodPost, "/api/evidencias/upload", body, writer.FormDataContentType())
	if err != nil {
		return core.EvidenceUploadResult{}, err
	}
	defer resp.Body.Close()

	var out core.EvidenceUploadResult
	if err := decode(resp.Body, &out); err != nil {
		return core.EvidenceUploadResult{}, fmt.Errorf("upload_evidence: %w", err)
	}
	return out, nil
}

// EvidenceStatus returns the counters of the processed evidence.
func (c *Client) EvidenceStatus(ctx context.Context) (core.EvidenceStats, error) {
	var out core.EvidenceStats
	err := c.doJSON(ctx, "evidence_status", http.MethodGet, "/api/evidencias/status", nil, &out)
	return out, err
}

type evidenceList struct {
	Sucesso    bool            `json:"sucesso"`
	Erro       string          `json:"erro"`
	Evidencias []core.Evidence `json:"evidencias"`
	Total      int             `json:"total"`
}

// ListEvidence returns the extracted evidence files.
func (c *Client) ListEvidence(ctx context.Context) ([]core.Evidence, error) {
	const op = "list_evidence"

	var out evidenceList
	if err := c.doJSON(ctx, op, http.MethodGet, "/api/evidencias/lista", nil, &out); err != nil {
		return nil, err
	}
	// the list endpoint reports failures in a 200 body
	if !out.Sucesso && out.Erro != "" {
		return nil, &APIError{Op: op, Status: http.StatusOK, Message: out.Erro}
	}
	return out.Evidencias, nil
}

// SendEvidence attaches the extracted evidence to the given issues.
func (c *Client) SendEvidence(ctx context.Context, keys []string) (core.EvidenceSendResult, error) {
	var out core.EvidenceSendResult
	body := struct {
		IssueKeys []string `json:"issue_keys"`
	}{keys}
	err := c.doJSON(ctx, "send_evidence", http.MethodPost, "/api/evidencias/enviar", body, &out)
	return out, err
}

// ClearEvidence removes the extracted evidence.
func (c *Client) ClearEvidence(ctx context.Context) (core.MutationResult, error) {
	var out core.MutationResult
	err := c.doJSON(ctx, "clear_evidence", http.MethodPost, "/api/evidencias/limpar", nil, &out)
	return out, err
}

// doJSON sends in as a JSON body (when non-nil) and decodes the answer into out.
func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	var (
		body        io.Reader
		contentType string
	)
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	resp, err := c.send(ctx, op, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := decode(resp.Body, out); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// send performs a request and returns the response only for 2xx statuses.
// On success the caller owns resp.Body.
func (c *Client) send(ctx context.Context, op, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	target := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveTracker(op, "unavailable", time.Since(start))
		return nil, fmt.Errorf("%s: %w: %w", op, core.ErrTrackerUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		metrics.ObserveTracker(op, fmt.Sprintf("http_%d", resp.StatusCode), time.Since(start))
		return nil, &APIError{Op: op, Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	metrics.ObserveTracker(op, "ok", time.Since(start))
	return resp, nil
}

func decode(r io.Reader, out any) error {
	if err := json.NewDecoder(r).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage extracts the "erro" field of an error body, falling back to
// the raw text.
func errorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))

	var payload struct {
		Erro  string `json:"erro"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Erro != "" {
			return payload.Erro
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
