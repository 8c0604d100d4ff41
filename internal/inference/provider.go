package inference

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Provider is one attempt against a hosted text-generation endpoint.
// No retry, no backoff; the caller decides what a failure means.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Error is the single failure shape the rest of the system sees.
// Whatever went wrong at the boundary (transport, status, envelope)
// is normalized into one of these before it leaves this package.
type Error struct {
	Status int // HTTP status when the endpoint answered, 0 otherwise
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("inference: %s (status %d)", e.Msg, e.Status)
	}
	return "inference: " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

type ProviderFactory func(ctx context.Context, model string) (Provider, error)

type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ProviderFactory)}
}

func (r *Registry) Register(name string, f ProviderFactory) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

func (r *Registry) Get(ctx context.Context, name string, model string) (Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown inference provider: %s", name)
	}
	return f(ctx, model)
}
