package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Error is mapped via core.MapError to a coded user message and status
//  4. Technical error is logged with the request ID for correlation
//  5. User message and the error's row/token context are rendered as JSON,
//     an HTMX fragment or plain text

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/sizetable/internal/core"
	"github.com/JonMunkholm/sizetable/internal/logging"
	"github.com/JonMunkholm/sizetable/internal/translate"
	"github.com/JonMunkholm/sizetable/internal/web/templates"
)

var (
	errNoFile      = errors.New("no file provided")
	errRateLimited = core.MapError(errors.New("rate limit exceeded"))
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code, Context) and human-readable
// (Message, Action, Detail) fields.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Action  string            `json:"action,omitempty"`
	Code    string            `json:"code"`
	Detail  string            `json:"detail,omitempty"`
	Context *core.ErrorDetail `json:"context,omitempty"`
}

// errorDetail gathers the row, token and upstream context of err.
func errorDetail(err error) core.ErrorDetail {
	d := core.DetailOf(err)
	d.Upstream = translate.UpstreamMessage(err)
	return d
}

// statusForCode picks the HTTP status of a user message code.
func statusForCode(code string) int {
	switch {
	case code == "FILE001":
		return http.StatusRequestEntityTooLarge
	case code == "FILE004", code == "REQ001":
		return http.StatusBadRequest
	case code == "RUN001", code == "TRN002", code == "GLS001":
		return http.StatusServiceUnavailable
	case code == "RUN002":
		return 499
	case code == "RUN003":
		return http.StatusGatewayTimeout
	case code == "TRN001":
		return http.StatusBadGateway
	case code == "RATE001":
		return http.StatusTooManyRequests
	case code == "ERR000":
		return http.StatusInternalServerError
	case strings.HasPrefix(code, "FILE"):
		return http.StatusUnsupportedMediaType
	default:
		// Sheet content problems the user can fix
		return http.StatusUnprocessableEntity
	}
}

// respondError handles error responses with user-friendly messages.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	userMsg := core.MapError(err)
	status := statusForCode(userMsg.Code)
	detail := errorDetail(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, userMsg, detail, status)
	case wantsJSON(r):
		respondErrorJSON(w, userMsg, detail, status)
	default:
		text := userMsg.Message + " (" + userMsg.Code + ")"
		if !detail.IsZero() {
			text += ": " + detail.String()
		}
		http.Error(w, text, status)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, detail core.ErrorDetail, status int) {
	resp := ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}
	if !detail.IsZero() {
		resp.Detail = detail.String()
		resp.Context = &detail
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, detail core.ErrorDetail, status int) {
	var text string
	if !detail.IsZero() {
		text = detail.String()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.ErrorAlert(templates.AlertParams{
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
		Detail:  text,
	}).Render(r.Context(), w)
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
