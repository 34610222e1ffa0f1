package middleware

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/storyshelf/internal/session"
	"github.com/DukeRupert/storyshelf/internal/storylist"
)

// ConsoleMiddleware attaches the browser's story list state to the request.
type ConsoleMiddleware struct {
	store    *session.Store[*storylist.List]
	isSecure bool
	logger   *slog.Logger
}

// NewConsoleMiddleware creates a ConsoleMiddleware over store. isSecure sets
// the Secure flag of the session cookie.
func NewConsoleMiddleware(store *session.Store[*storylist.List], isSecure bool, logger *slog.Logger) *ConsoleMiddleware {
	return &ConsoleMiddleware{store: store, isSecure: isSecure, logger: logger}
}

// Handler loads or starts the console session and stores its list in the
// context (storylist.FromContext).
func (m *ConsoleMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(session.CookieName); err == nil {
			id = c.Value
		}

		newID, list, created := m.store.GetOrCreate(id)
		if created {
			if id != "" {
				m.logger.Debug("console session expired", "request_id", GetRequestID(r.Context()))
			}
			http.SetCookie(w, &http.Cookie{
				Name:     session.CookieName,
				Value:    newID,
				Path:     session.CookiePath,
				HttpOnly: true,
				Secure:   m.isSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(storylist.NewContext(r.Context(), list)))
	})
}
