// Package middleware contains HTTP middleware for the storyshelf servers.
//
// Middleware follows the standard func(http.Handler) http.Handler shape and
// is composed with Stack.
package middleware

import (
	"html/template"
	"net"
	"net/http"
	"strings"
)

// Stack composes middleware so the first one given is the outermost.
//
//	stack := Stack(requestID, logging.Handler, security.Handler)
//	mux.Handle("GET /stories", stack(storiesHandler))
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// ErrorRegionID is the admin layout element that receives htmx error
// fragments.
const ErrorRegionID = "errors"

// Error writes message with status. htmx requests get an alert fragment
// retargeted into the error region, leaving the swapped content on screen;
// other requests get plain text.
func Error(w http.ResponseWriter, r *http.Request, message string, status int) {
	if !IsHTMX(r) {
		http.Error(w, message, status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("HX-Retarget", "#"+ErrorRegionID)
	w.Header().Set("HX-Reswap", "innerHTML")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`<p class="flash flash-error" role="alert">` + template.HTMLEscapeString(message) + `</p>`))
}

// getClientIP extracts the client IP, preferring proxy headers.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
