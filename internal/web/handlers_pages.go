package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/casedesk/internal/core"
	"github.com/JonMunkholm/casedesk/internal/logging"
	"github.com/JonMunkholm/casedesk/internal/web/templates"
)

// viewParam returns the requested case list view.
func viewParam(r *http.Request) string {
	if r.URL.Query().Get("view") == templates.ViewCards {
		return templates.ViewCards
	}
	return templates.ViewList
}

// handleIndex renders the main page, restoring the session's parent, the case
// being edited and any staged import.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws := workspaceFrom(ctx)
	logger := logging.FromContext(ctx)

	params := templates.IndexParams{
		ParentID: ws.ParentID(),
		View:     viewParam(r),
		Staged:   s.stagedPreview(ws),
	}
	if key := ws.EditingKey(); key != "" {
		tc, err := s.service.EditCase(ctx, ws, key)
		if err != nil {
			logger.Warn("reload edit target failed", "key", key, "error", err)
			ws.EndEdit()
		} else {
			params.Editing = &tc
		}
	}
	if params.ParentID != "" {
		list, err := s.service.LoadParent(ctx, ws, params.ParentID)
		if err != nil {
			// The page still works without the list; the search box shows the key.
			logger.Warn("reload parent failed", "parent", params.ParentID, "error", err)
		} else {
			params.List = &list
		}
	}

	templates.IndexPage(params).Render(ctx, w)
}

// handleParentPage is a deep link to the cases of one parent requirement.
func (s *Server) handleParentPage(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if !core.ValidIssueKey(key) {
		http.NotFound(w, r)
		return
	}

	ctx := r.Context()
	ws := workspaceFrom(ctx)
	list, err := s.service.LoadParent(ctx, ws, key)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.rememberParent(w, key)

	templates.IndexPage(templates.IndexParams{
		ParentID: key,
		List:     &list,
		View:     viewParam(r),
	}).Render(ctx, w)
}

// handleGridPage renders the manual spreadsheet.
func (s *Server) handleGridPage(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	templates.GridPage(ws.ParentID(), s.stagedPreview(ws)).Render(r.Context(), w)
}

// handleEvidencePage renders the evidence page. Tracker failures leave the
// panels empty instead of failing the page.
func (s *Server) handleEvidencePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	stats, err := s.service.EvidenceStatus(ctx)
	if err != nil {
		logger.Warn("evidence status unavailable", "error", err)
	}
	list, err := s.service.EvidenceList(ctx)
	if err != nil {
		logger.Warn("evidence list unavailable", "error", err)
	}

	templates.EvidencePage(stats, list).Render(ctx, w)
}
