// Package csrf protects the admin console's state-changing requests with
// the double-submit cookie pattern: a random token lives in a cookie and
// must be echoed back in the form body or in the X-CSRF-Token header that
// htmx requests carry.
package csrf

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/DukeRupert/storyshelf/internal/middleware"
)

const (
	CookieName    = "csrf_token"
	FormFieldName = "csrf_token"
	HeaderName    = "X-CSRF-Token"

	// TokenLength is the number of random bytes in a token.
	TokenLength = 32

	CookieMaxAge = 3600
)

type contextKey struct{}

// GenerateToken returns a base64 URL-encoded random token.
func GenerateToken() (string, error) {
	b := make([]byte, TokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ValidateToken compares the two tokens in constant time.
func ValidateToken(cookieToken, submitted string) bool {
	if cookieToken == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(submitted)) == 1
}

// ValidateRequest checks the submitted token (header first, then form field)
// against the cookie.
func ValidateRequest(r *http.Request) bool {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return false
	}
	submitted := r.Header.Get(HeaderName)
	if submitted == "" {
		submitted = r.FormValue(FormFieldName)
	}
	return ValidateToken(cookie.Value, submitted)
}

// SetCookie writes the token cookie.
func SetCookie(w http.ResponseWriter, token string, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   CookieMaxAge,
		HttpOnly: false,
		Secure:   isSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

// Token returns the token stored in ctx by Protect.
func Token(ctx context.Context) string {
	token, _ := ctx.Value(contextKey{}).(string)
	return token
}

// Protect issues a token cookie when the request has none, exposes the
// token to templates through the context and rejects unsafe methods whose
// submitted token does not match.
func Protect(isSecure bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(CookieName); err == nil {
				token = c.Value
			}

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				if token == "" {
					t, err := GenerateToken()
					if err != nil {
						logger.Error("failed to generate csrf token", "error", err)
						middleware.Error(w, r, "Internal Server Error", http.StatusInternalServerError)
						return
					}
					token = t
					SetCookie(w, token, isSecure)
				}
			default:
				if !ValidateRequest(r) {
					logger.Warn("csrf token mismatch", "method", r.Method, "path", r.URL.Path)
					middleware.Error(w, r, "Your session expired. Reload the page and try again.", http.StatusForbidden)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, token)))
		})
	}
}
