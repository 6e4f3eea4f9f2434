package shopping

import (
	"context"
	"errors"
)

// ErrNoEngine is returned when an operation needs an Engine and none was
// attached to the context.
var ErrNoEngine = errors.New("shopping: no engine in context")

type contextKey struct{}

// WithEngine attaches e to ctx.
func WithEngine(ctx context.Context, e *Engine) context.Context {
	return context.WithValue(ctx, contextKey{}, e)
}

func FromContext(ctx context.Context) (*Engine, error) {
	e, ok := ctx.Value(contextKey{}).(*Engine)
	if !ok || e == nil {
		return nil, ErrNoEngine
	}
	return e, nil
}

// MustFromContext panics if no engine is attached.
func MustFromContext(ctx context.Context) *Engine {
	e, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return e
}
