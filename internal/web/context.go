package web

import (
	"context"
	"net/http"
	"time"

	"github.com/JonMunkholm/casedesk/internal/core"
	"github.com/JonMunkholm/casedesk/internal/metrics"
)

// parentCookie remembers the last loaded parent across sessions.
const parentCookie = "casedesk_parent"

type workspaceKey struct{}

// withWorkspace stores ws in ctx.
func withWorkspace(ctx context.Context, ws *core.Workspace) context.Context {
	return context.WithValue(ctx, workspaceKey{}, ws)
}

// workspaceFrom returns the session workspace set by the workspace middleware.
// It never returns nil so handlers used without the middleware (tests) still work.
func workspaceFrom(ctx context.Context) *core.Workspace {
	if ws, ok := ctx.Value(workspaceKey{}).(*core.Workspace); ok && ws != nil {
		return ws
	}
	return core.NewWorkspace("")
}

// workspaceMiddleware attaches the caller's workspace to the request,
// issuing a session cookie for new sessions. A new session starts on the
// parent remembered in the parent cookie.
func (s *Server) workspaceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(s.cfg.Import.SessionCookie); err == nil {
			id = c.Value
		}

		ws, created := s.workspaces.Load(id)
		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     s.cfg.Import.SessionCookie,
				Value:    ws.ID(),
				Path:     "/",
				HttpOnly: true,
				Secure:   s.cfg.Security.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			})
			if c, err := r.Cookie(parentCookie); err == nil && core.ValidIssueKey(c.Value) {
				ws.SetParent(c.Value)
			}
		}
		metrics.ActiveWorkspaces.Set(float64(s.workspaces.Len()))

		next.ServeHTTP(w, r.WithContext(withWorkspace(r.Context(), ws)))
	})
}

// rememberParent persists the selected parent for future sessions.
func (s *Server) rememberParent(w http.ResponseWriter, parentID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     parentCookie,
		Value:    parentID,
		Path:     "/",
		MaxAge:   int(s.cfg.Import.ParentCookieMaxAge / time.Second),
		HttpOnly: true,
		Secure:   s.cfg.Security.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
