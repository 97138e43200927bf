package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/casedesk/internal/core"
	"github.com/JonMunkholm/casedesk/internal/logging"
	"github.com/JonMunkholm/casedesk/internal/web/templates"
)

// multipartOverhead is allowed on top of the log size for form framing.
const multipartOverhead = 1 << 20

// EvidenceStatusResponse combines the tracker counters with local processing state.
type EvidenceStatusResponse struct {
	Estatisticas core.EvidenceStats       `json:"estatisticas"`
	Processando  core.EvidenceGuardStatus `json:"processando"`
	Pendente     *core.PendingFile        `json:"pendente,omitempty"`
}

// EvidenceListResponse wraps the extracted evidence.
type EvidenceListResponse struct {
	Evidencias []core.Evidence `json:"evidencias"`
	Total      int             `json:"total"`
}

// handleEvidenceUpload forwards an HTML test-run log for processing.
func (s *Server) handleEvidenceUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws := workspaceFrom(ctx)

	if err := parseForm(w, r, s.cfg.Evidence.MaxFileSize+multipartOverhead); err != nil {
		s.respondError(w, r, err)
		return
	}

	file, header, err := r.FormFile("log_file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			err = core.ErrNoEvidenceFile
		}
		s.respondError(w, r, err)
		return
	}
	defer file.Close()

	ws.SetPendingEvidence(header.Filename, header.Size)
	defer ws.ClearPendingEvidence()

	logger := logging.WithFields(ctx, "file", header.Filename, "size", header.Size)
	logger.Info("evidence upload started")

	res, err := s.service.UploadEvidence(ctx, header.Filename, file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		templates.EvidenceStatus(res.Estatisticas).Render(ctx, w)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// handleEvidenceStatus reports the last processed log and whether one is running.
func (s *Server) handleEvidenceStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := s.service.EvidenceStatus(ctx)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		templates.EvidenceStatus(stats).Render(ctx, w)
		return
	}

	resp := EvidenceStatusResponse{
		Estatisticas: stats,
		Processando:  s.service.Guard().Status(),
	}
	if pending, ok := workspaceFrom(ctx).PendingEvidence(); ok {
		resp.Pendente = &pending
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// handleEvidenceList returns the extracted evidence files.
func (s *Server) handleEvidenceList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := s.service.EvidenceList(ctx)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		templates.EvidenceList(list).Render(ctx, w)
		return
	}
	writeJSON(w, r, http.StatusOK, EvidenceListResponse{Evidencias: list, Total: len(list)})
}

// handleSendEvidence attaches the extracted evidence to issues.
func (s *Server) handleSendEvidence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		IssueKeys []string `json:"issue_keys"`
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
		req.IssueKeys = splitKeys(r.FormValue("issue_keys"))
	}

	res, err := s.service.SendEvidence(ctx, req.IssueKeys)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		templates.SuccessToast(fmt.Sprintf("%d evidence files sent to %d issues", res.Enviados, len(res.Issues))).Render(ctx, w)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// handleClearEvidence removes the extracted evidence.
func (s *Server) handleClearEvidence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := s.service.ClearEvidence(ctx)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		templates.EvidenceList(nil).Render(ctx, w)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}
