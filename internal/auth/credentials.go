package auth

import (
	"context"

	"github.com/DukeRupert/storyshelf/internal/domain"
)

// CredentialProvider supplies the bearer token for authorized API calls.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// ContextCredentials reads the token placed in the context by the
// credentials middleware.
type ContextCredentials struct{}

// Token returns the token from ctx, or an unauthorized error when absent.
func (ContextCredentials) Token(ctx context.Context) (string, error) {
	token := TokenFromContext(ctx)
	if token == "" {
		return "", domain.Unauthorized("auth.Token", "Sign in again to manage stories")
	}
	return token, nil
}

// StaticCredentials always returns the same token.
type StaticCredentials string

// Token returns the static token, or an unauthorized error when empty.
func (s StaticCredentials) Token(context.Context) (string, error) {
	if s == "" {
		return "", domain.Unauthorized("auth.Token", "Sign in again to manage stories")
	}
	return string(s), nil
}

// CredentialFunc adapts a function to CredentialProvider.
type CredentialFunc func(ctx context.Context) (string, error)

// Token calls f.
func (f CredentialFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}
