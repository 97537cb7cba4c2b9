// Package application provides the core orchestration for the engine:
// layer and slice declaration, build-time validation, dependency planning,
// and the parallel scheduler.
package application

import (
	"context"
	"fmt"

	"github.com/PedroGaya/sandl/internal/domain"
	"github.com/PedroGaya/sandl/internal/ports"
)

// MethodFunc is the implementation signature for an impure method: decoded
// arguments plus the slice's shared context.
type MethodFunc[T any] func(ctx context.Context, args T, sc *domain.Context) (domain.Value, error)

// PureMethodFunc is the implementation signature for a pure method, which
// receives no context handle.
type PureMethodFunc[T any] func(ctx context.Context, args T) (domain.Value, error)

// MethodOption configures optional method attributes at construction.
type MethodOption func(*methodSettings)

type methodSettings struct {
	defaults *domain.Value
}

// WithDefaults declares the method's default argument Value. The default
// must decode through the method's argument schema; Build verifies this.
func WithDefaults(v domain.Value) MethodOption {
	return func(s *methodSettings) {
		cloned := v.Clone()
		s.defaults = &cloned
	}
}

// boundMethod adapts a typed implementation function to the uniform
// ports.Method dispatch surface. The argument type parameter is erased at
// the interface boundary; DecodeArgs and Invoke agree on T internally.
type boundMethod[T any] struct {
	name     string
	pure     bool
	defaults *domain.Value
	fn       MethodFunc[T]
}

var _ ports.Method = (*boundMethod[struct{}])(nil)

// NewMethod binds a typed implementation function as a named method.
func NewMethod[T any](name string, fn MethodFunc[T], opts ...MethodOption) ports.Method {
	var s methodSettings
	for _, opt := range opts {
		opt(&s)
	}
	return &boundMethod[T]{name: name, defaults: s.defaults, fn: fn}
}

// NewPureMethod binds a typed implementation that needs no slice context.
func NewPureMethod[T any](name string, fn PureMethodFunc[T], opts ...MethodOption) ports.Method {
	var s methodSettings
	for _, opt := range opts {
		opt(&s)
	}
	wrapped := func(ctx context.Context, args T, _ *domain.Context) (domain.Value, error) {
		return fn(ctx, args)
	}
	return &boundMethod[T]{name: name, pure: true, defaults: s.defaults, fn: wrapped}
}

// Name implements ports.Method.
func (m *boundMethod[T]) Name() string { return m.name }

// Pure implements ports.Method.
func (m *boundMethod[T]) Pure() bool { return m.pure }

// Defaults implements ports.Method.
func (m *boundMethod[T]) Defaults() (domain.Value, bool) {
	if m.defaults == nil {
		return domain.Value{}, false
	}
	return m.defaults.Clone(), true
}

// ArgType implements ports.Method.
func (m *boundMethod[T]) ArgType() string { return domain.ArgTypeName[T]() }

// DecodeArgs implements ports.Method.
func (m *boundMethod[T]) DecodeArgs(v domain.Value) (any, error) {
	return domain.DecodeArgs[T](v)
}

// Invoke implements ports.Method.
func (m *boundMethod[T]) Invoke(ctx context.Context, args any, sc *domain.Context) (domain.Value, error) {
	typed, ok := args.(T)
	if !ok {
		return domain.Value{}, fmt.Errorf("%w: expected %s, got %T", domain.ErrArgDeserialization, m.ArgType(), args)
	}
	return m.fn(ctx, typed, sc)
}
