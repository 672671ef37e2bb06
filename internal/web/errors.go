package web

// errors.go turns handler errors into responses. The technical error is
// logged with the request ID; the client gets the mapped user message in
// the format it asked for (JSON for the API, an HTML page otherwise).

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/CleanCSV/internal/core"
	"github.com/JonMunkholm/CleanCSV/internal/logging"
	"github.com/JonMunkholm/CleanCSV/internal/web/templates"
)

// ErrorResponse is the JSON body of an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes the mapped user message. A zero status
// is derived from the error.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if status == 0 {
		status = statusFor(err)
	}
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	if wantsHTML(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		templates.ErrorPage(userMsg.Message, userMsg.Action, userMsg.Code).Render(r.Context(), w)
		return
	}

	writeJSONStatus(r.Context(), w, status, ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var fe *core.FileError
	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManySessions), errors.Is(err, core.ErrTooManyLoads):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrStoreNotConfigured):
		return http.StatusNotImplemented
	case errors.Is(err, core.ErrNoFile), errors.Is(err, core.ErrInvalidTableName),
		errors.Is(err, core.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.As(err, &fe):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// wantsHTML reports whether the client is a browser expecting a page:
// an HTML Accept header and no JSON on either side.
func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return false
	}
	return strings.Contains(accept, "text/html")
}

func writeJSON(ctx context.Context, w http.ResponseWriter, v any) {
	writeJSONStatus(ctx, w, http.StatusOK, v)
}

// writeJSONStatus encodes v as the response body. Encoding errors are only
// logged since the header is already sent.
func writeJSONStatus(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(ctx).Error("json encode error", "error", err)
	}
}
