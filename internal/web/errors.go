package web

// errors.go provides unified error response handling for the web layer.
//
// Every handler error goes through respondError, which:
//  1. maps the error with core.MapError to a user message and code
//  2. logs the technical error with the request id (warnings at warn level)
//  3. renders JSON, an HTMX fragment or plain text depending on the request

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/casedesk/internal/core"
	"github.com/JonMunkholm/casedesk/internal/logging"
	"github.com/JonMunkholm/casedesk/internal/metrics"
	"github.com/JonMunkholm/casedesk/internal/web/templates"
)

// Response levels of an ErrorResponse.
const (
	LevelError   = "error"
	LevelWarning = "warning"
)

// ErrorResponse represents the JSON structure for API error responses.
// Erro keeps the field name the browser scripts read.
type ErrorResponse struct {
	Erro     string                 `json:"erro"`
	Message  string                 `json:"message"`
	Action   string                 `json:"action,omitempty"`
	Code     string                 `json:"code"`
	Level    string                 `json:"level"`
	Detalhes []core.ValidationError `json:"detalhes,omitempty"`
}

// statusCoder is implemented by tracker errors that carry the backend status.
type statusCoder interface {
	HTTPStatus() int
}

// statusFor picks the HTTP status of an error response.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrEvidenceInProgress):
		return http.StatusConflict
	case core.IsWarning(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrValidation),
		errors.Is(err, core.ErrInvalidIssueKey),
		errors.Is(err, core.ErrInvalidBody),
		errors.Is(err, core.ErrInvalidEvidenceFile):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTrackerUnavailable):
		return http.StatusBadGateway
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		if st := sc.HTTPStatus(); st >= 400 && st < 500 {
			return st
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondError handles error responses with user-friendly messages.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, err, statusFor(err))
}

func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)
	logger := logging.FromContext(r.Context())

	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if userMsg.Warning {
		metrics.Warnings.WithLabelValues(userMsg.Code).Inc()
		logger.Warn("request warning", attrs...)
	} else {
		logger.Error("request error", attrs...)
	}

	var details core.ValidationErrors
	errors.As(err, &details)

	switch {
	case wantsJSON(r):
		respondErrorJSON(w, userMsg, details, statusCode)
	case isHTMX(r):
		renderErrorPartial(w, r, userMsg, statusCode)
	default:
		respondErrorText(w, userMsg, statusCode)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, details core.ValidationErrors, statusCode int) {
	level := LevelError
	if msg.Warning {
		level = LevelWarning
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Erro:     msg.Message,
		Message:  msg.Message,
		Action:   msg.Action,
		Code:     msg.Code,
		Level:    level,
		Detalhes: details,
	})
}

// respondErrorText writes a plain text error response.
func respondErrorText(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	http.Error(w, msg.Message+" ("+msg.Code+")", statusCode)
}

// renderErrorPartial renders an HTMX fragment into the toast area.
// HTMX does not swap non-2xx responses by default, so the retarget
// headers move the fragment into #toasts.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("HX-Retarget", "#toasts")
	w.Header().Set("HX-Reswap", "afterbegin")
	w.WriteHeader(statusCode)

	if msg.Warning {
		templates.WarningToast(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
		return
	}
	templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers a JSON response.
// API calls default to JSON unless they come from HTMX.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if isHTMX(r) {
		return false
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
