package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/DukeRupert/storyshelf/internal/domain"
	"github.com/DukeRupert/storyshelf/internal/middleware"
)

// ErrorResponse maps a domain error to an HTTP status and writes it in the
// form the caller expects: JSON for API clients, an alert fragment swapped
// into the admin layout's error region for htmx, plain text otherwise.
// Only the error's user-facing message reaches the client.
func ErrorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code := domain.ErrorCode(err)
	message := domain.ErrorMessage(err)
	status := ErrorCodeToHTTPStatus(code)

	logError(logger, r, err, code, status)

	if acceptsJSON(r) {
		writeJSONError(w, status, code, message)
		return
	}
	middleware.Error(w, r, message, status)
}

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
// Failures of the story API surface as 502.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.ERATELIMIT:
		return http.StatusTooManyRequests
	case domain.EUPSTREAM:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NotFoundResponse answers an unknown story or category.
func NotFoundResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	ErrorResponse(w, r, logger, domain.Errorf(domain.ENOTFOUND, "", "The requested page was not found"))
}

// InternalErrorResponse hides err behind a generic 500.
func InternalErrorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	ErrorResponse(w, r, logger, domain.Internal(err, "", "An unexpected error occurred"))
}

func logError(logger *slog.Logger, r *http.Request, err error, code string, status int) {
	attrs := []any{
		"error", err.Error(),
		"code", code,
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
	}
	if op := domain.ErrorOp(err); op != "" {
		attrs = append(attrs, "op", op)
	}
	if id := middleware.GetRequestID(r.Context()); id != "" {
		attrs = append(attrs, "request_id", id)
	}

	switch {
	case code == domain.EUPSTREAM:
		// storyapi already logged the failed call itself.
		logger.Warn("story API unavailable", attrs...)
	case status >= 500:
		logger.Error("server error", attrs...)
	default:
		logger.Info("client error", attrs...)
	}
}

// acceptsJSON reports whether the client asked for JSON. htmx requests
// always get HTML.
func acceptsJSON(r *http.Request) bool {
	if middleware.IsHTMX(r) {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
