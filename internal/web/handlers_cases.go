package web

import (
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/casedesk/internal/core"
	"github.com/JonMunkholm/casedesk/internal/logging"
	"github.com/JonMunkholm/casedesk/internal/web/templates"
)

const spreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// casesChanged tells HTMX listeners to refresh the case list.
const casesChanged = "cases-changed"

// handleSearchParent loads the parent named by the ?parent= query.
func (s *Server) handleSearchParent(w http.ResponseWriter, r *http.Request) {
	s.loadCases(w, r, r.URL.Query().Get("parent"))
}

// handleListCases returns the cases of one parent requirement.
func (s *Server) handleListCases(w http.ResponseWriter, r *http.Request) {
	s.loadCases(w, r, chi.URLParam(r, "parentID"))
}

func (s *Server) loadCases(w http.ResponseWriter, r *http.Request, parentID string) {
	ctx := r.Context()
	ws := workspaceFrom(ctx)

	list, err := s.service.LoadParent(ctx, ws, parentID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.rememberParent(w, list.IssuePai)

	if isHTMX(r) {
		templates.CaseList(list, viewParam(r)).Render(ctx, w)
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}

// handleExportSpreadsheet streams the tracker's spreadsheet of a parent's cases.
func (s *Server) handleExportSpreadsheet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dl, err := s.service.ExportSpreadsheet(ctx, chi.URLParam(r, "parentID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer dl.Body.Close()

	contentType := dl.ContentType
	if contentType == "" {
		contentType = spreadsheetContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.Filename}))

	if _, err := io.Copy(w, dl.Body); err != nil {
		logging.FromContext(ctx).Error("spreadsheet copy failed", "file", dl.Filename, "error", err)
	}
}

// handleCreateCase creates a case under the session's parent.
func (s *Server) handleCreateCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rec, err := decodeRecord(w, r, s.cfg.Import.MaxPasteBytes)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.service.CreateCase(ctx, workspaceFrom(ctx), rec)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondMutation(w, r, http.StatusCreated, res, fmt.Sprintf("Test case %s created", res.ID))
}

// handleGetCase returns one case.
func (s *Server) handleGetCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tc, err := s.service.GetCase(ctx, chi.URLParam(r, "key"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		templates.CaseCard(tc).Render(ctx, w)
		return
	}
	writeJSON(w, r, http.StatusOK, tc)
}

// handleEditCase loads a case into the edit form.
func (s *Server) handleEditCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tc, err := s.service.EditCase(ctx, workspaceFrom(ctx), chi.URLParam(r, "key"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		templates.CaseForm(&tc).Render(ctx, w)
		return
	}
	writeJSON(w, r, http.StatusOK, tc)
}

// handleUpdateCase replaces a case. Without a key in the path the session's
// edit target is saved.
func (s *Server) handleUpdateCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws := workspaceFrom(ctx)
	key := chi.URLParam(r, "key")
	if key == "" {
		key = ws.EditingKey()
	}
	if key == "" {
		s.respondError(w, r, core.ErrNotEditing)
		return
	}
	rec, err := decodeRecord(w, r, s.cfg.Import.MaxPasteBytes)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.service.UpdateCase(ctx, ws, key, rec)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondMutation(w, r, http.StatusOK, res, fmt.Sprintf("Test case %s updated", key))
}

// fieldUpdate is the body of an inline single-field edit.
type fieldUpdate struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// handleUpdateField changes one field of a case in place.
func (s *Server) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := chi.URLParam(r, "key")

	var req fieldUpdate
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
		req = fieldUpdate{Field: r.FormValue("field"), Value: r.FormValue("value")}
	}

	res, err := s.service.UpdateField(ctx, workspaceFrom(ctx), key, req.Field, req.Value)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondMutation(w, r, http.StatusOK, res, fmt.Sprintf("Test case %s updated", key))
}

// handleDeleteCase removes a case. HTMX gets an empty body so the row is swapped out.
func (s *Server) handleDeleteCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := s.service.DeleteCase(ctx, workspaceFrom(ctx), chi.URLParam(r, "key"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("HX-Trigger", casesChanged)
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// respondMutation answers a create or update: a toast for HTMX, the tracker
// acknowledgement as JSON otherwise.
func (s *Server) respondMutation(w http.ResponseWriter, r *http.Request, status int, res core.MutationResult, toast string) {
	if isHTMX(r) {
		w.Header().Set("HX-Trigger", casesChanged)
		w.WriteHeader(status)
		templates.SuccessToast(toast).Render(r.Context(), w)
		return
	}
	writeJSON(w, r, status, res)
}
