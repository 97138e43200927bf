package web

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/casedesk/internal/core"
	"github.com/JonMunkholm/casedesk/internal/logging"
	"github.com/JonMunkholm/casedesk/internal/metrics"
	"github.com/JonMunkholm/casedesk/internal/web/templates"
)

// PreviewResponse is the JSON answer of a paste preview.
type PreviewResponse struct {
	Records       []core.TestCaseRecord `json:"records"`
	Preview       []core.PreviewRow     `json:"preview"`
	Total         int                   `json:"total"`
	Rows          int                   `json:"rows"`
	Dropped       int                   `json:"dropped"`
	HeaderSkipped bool                  `json:"header_skipped"`
	Delimiter     string                `json:"delimiter"`
}

// GridResponse carries the records handed to the grid.
type GridResponse struct {
	Casos []core.TestCaseRecord `json:"casos"`
	Total int                   `json:"total"`
}

// handlePreviewImport parses pasted text and stages it in the session.
func (s *Server) handlePreviewImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Text string `json:"text"`
	}
	if isJSONBody(r) {
		if err := decodeJSON(w, r, s.cfg.Import.MaxPasteBytes, &req); err != nil {
			s.respondError(w, r, err)
			return
		}
	} else {
		if err := parseForm(w, r, s.cfg.Import.MaxPasteBytes); err != nil {
			s.respondError(w, r, err)
			return
		}
		req.Text = r.FormValue("text")
	}

	res, err := s.service.PreviewImport(workspaceFrom(ctx), req.Text)
	metrics.ObservePaste(len(res.Records), res.Dropped, res.HeaderSkipped)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(ctx).Info("paste staged",
		"records", len(res.Records),
		"rows", res.Rows,
		"dropped", res.Dropped,
		"delimiter", res.DelimiterName(),
		"header_skipped", res.HeaderSkipped,
	)

	preview := core.BuildPreview(res.Records, s.cfg.Import.PreviewLength)
	if isHTMX(r) {
		templates.ImportPreview(res, preview).Render(ctx, w)
		return
	}
	writeJSON(w, r, http.StatusOK, PreviewResponse{
		Records:       res.Records,
		Preview:       preview,
		Total:         len(res.Records),
		Rows:          res.Rows,
		Dropped:       res.Dropped,
		HeaderSkipped: res.HeaderSkipped,
		Delimiter:     res.DelimiterName(),
	})
}

// handleFillGrid hands the staged records to the grid and clears the buffer.
func (s *Server) handleFillGrid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	records, err := s.service.FillGrid(workspaceFrom(ctx))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		templates.GridRows(records).Render(ctx, w)
		return
	}
	writeJSON(w, r, http.StatusOK, GridResponse{Casos: records, Total: len(records)})
}

// handleClearImport drops the staged records.
func (s *Server) handleClearImport(w http.ResponseWriter, r *http.Request) {
	s.service.ClearImport(workspaceFrom(r.Context()))

	if isHTMX(r) {
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, r, http.StatusOK, core.MutationResult{Sucesso: true, Mensagem: "import cleared"})
}

// handleExportGrid sends the grid rows to the tracker in one batch.
// The parent defaults to the session's parent.
func (s *Server) handleExportGrid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req core.ExportRequest
	if isJSONBody(r) {
		if err := decodeJSON(w, r, s.cfg.Import.MaxPasteBytes, &req); err != nil {
			s.respondError(w, r, err)
			return
		}
	} else {
		if err := parseForm(w, r, s.cfg.Import.MaxPasteBytes); err != nil {
			s.respondError(w, r, err)
			return
		}
		req = core.ExportRequest{IssuePai: r.FormValue("issue_pai"), Casos: recordsFromForm(r)}
	}

	ws := workspaceFrom(ctx)
	if req.IssuePai == "" {
		req.IssuePai = ws.ParentID()
	}

	res, err := s.service.ExportGrid(ctx, req.IssuePai, req.Casos)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		templates.ExportSummary(res).Render(ctx, w)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// stagedPreview renders the rows staged in ws, or nil when nothing is staged.
func (s *Server) stagedPreview(ws *core.Workspace) templ.Component {
	res, ok := ws.Staged()
	if !ok || len(res.Records) == 0 {
		return nil
	}
	return templates.ImportPreview(res, core.BuildPreview(res.Records, s.cfg.Import.PreviewLength))
}
