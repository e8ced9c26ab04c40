package store

import "context"

type contextKey struct{}

// NewContext returns a context carrying the store, scoping it to one
// storefront session tree.
func NewContext(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the store attached to the context. Calling it
// outside a context produced by NewContext is a wiring mistake by the
// caller, not a runtime condition, so it panics.
func FromContext(ctx context.Context) *Store {
	s, ok := ctx.Value(contextKey{}).(*Store)
	if !ok {
		panic("store.FromContext: no cart store in context; wrap the context with store.NewContext first")
	}
	return s
}
