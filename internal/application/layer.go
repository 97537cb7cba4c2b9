package application

import (
	"github.com/PedroGaya/sandl/internal/domain"
	"github.com/PedroGaya/sandl/internal/ports"
)

// Layer is a named bundle of methods sharing a logical stage. It is the
// unit of dependency ordering: edges in the dependency graph connect layer
// names, never individual methods. Layers are immutable once the engine is
// built.
type Layer struct {
	name    string
	methods []ports.Method
	byName  map[string]ports.Method
}

// NewLayer creates a layer holding the given methods in declaration order.
// A duplicate method name yields ErrDuplicateMethod.
func NewLayer(name string, methods ...ports.Method) (*Layer, error) {
	l := &Layer{name: name, byName: make(map[string]ports.Method, len(methods))}
	for _, m := range methods {
		if err := l.AddMethod(m); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Name returns the layer's unique name.
func (l *Layer) Name() string { return l.name }

// AddMethod appends a method, rejecting duplicates by name.
func (l *Layer) AddMethod(m ports.Method) error {
	if _, exists := l.byName[m.Name()]; exists {
		return &domain.DuplicateNameError{Entity: "method", Name: m.Name(), Scope: l.name}
	}
	l.methods = append(l.methods, m)
	l.byName[m.Name()] = m
	return nil
}

// Method returns the named method, with ok=false when undefined.
func (l *Layer) Method(name string) (ports.Method, bool) {
	m, ok := l.byName[name]
	return m, ok
}

// Methods returns the layer's methods in declaration order.
func (l *Layer) Methods() []ports.Method {
	out := make([]ports.Method, len(l.methods))
	copy(out, l.methods)
	return out
}

// MethodNames returns the method names in declaration order.
func (l *Layer) MethodNames() []string {
	out := make([]string, len(l.methods))
	for i, m := range l.methods {
		out[i] = m.Name()
	}
	return out
}
