package tx

import "context"

// Manager wraps atomic units spanning one or more named collections.
// Work done through ctx inside fn is applied entirely or not at all.
type Manager interface {
	Within(ctx context.Context, scope []string, fn func(context.Context) error) error
}

// NoopManager runs fn directly. It is meant for fakes that have no storage.
type NoopManager struct{}

func (NoopManager) Within(ctx context.Context, _ []string, fn func(context.Context) error) error {
	return fn(ctx)
}
