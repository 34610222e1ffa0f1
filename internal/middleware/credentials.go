package middleware

import (
	"net/http"

	"github.com/DukeRupert/storyshelf/internal/auth"
)

// WithCredentials copies the admin's authToken cookie into the request
// context, where auth.ContextCredentials finds it. Requests without the
// cookie pass through unchanged.
func WithCredentials(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := auth.TokenFromRequest(r); token != "" {
			r = r.WithContext(auth.WithToken(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}
