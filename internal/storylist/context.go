package storylist

import "context"

type contextKey struct{}

// NewContext returns ctx carrying l.
func NewContext(ctx context.Context, l *List) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the list stored by NewContext, or nil.
func FromContext(ctx context.Context) *List {
	l, _ := ctx.Value(contextKey{}).(*List)
	return l
}
