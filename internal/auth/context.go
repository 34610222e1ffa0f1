// Package auth carries the admin's API credential through request contexts.
//
// The story API authorizes deletions with a bearer token the login flow
// stores in the authToken cookie. Middleware copies that token into the
// request context and the story list reads it back through a
// CredentialProvider, so list and delete operations never look up cookies
// themselves.
//
// This package is imported by middleware, handlers and the story list
// without causing import cycles.
package auth

import (
	"context"
	"net/http"
)

// TokenCookieName is the cookie holding the story API bearer token.
const TokenCookieName = "authToken"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// tokenContextKey is the key used to store the API token in context.
	tokenContextKey contextKey = "api_token"
)

// WithToken stores the API token in the context.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// TokenFromContext retrieves the API token from the context.
//
// Returns "" if no token was stored.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

// TokenFromRequest reads the token cookie from the request.
func TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(TokenCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
