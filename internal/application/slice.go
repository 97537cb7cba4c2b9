package application

import "github.com/PedroGaya/sandl/internal/domain"

// Invocation is one configured method call within a slice: the target
// layer and method plus an optional per-invocation argument override.
// A nil Args means "use the method's default only".
type Invocation struct {
	Layer  string
	Method string
	Args   *domain.Value
}

// Slice is a unit of work: a named selection of method invocations with
// per-invocation arguments. Declaration order of invocations targeting the
// same layer is preserved and significant; across layers the dependency
// order decides. Slices are immutable once the engine is built.
type Slice struct {
	name        string
	invocations []Invocation
}

// NewSlice creates an empty slice with the given name.
func NewSlice(name string) *Slice {
	return &Slice{name: name}
}

// Name returns the slice's unique name.
func (s *Slice) Name() string { return s.name }

// Call appends an invocation that runs with the method's default arguments
// only. It returns the slice for chaining.
func (s *Slice) Call(layer, method string) *Slice {
	s.invocations = append(s.invocations, Invocation{Layer: layer, Method: method})
	return s
}

// CallWith appends an invocation carrying an argument override that is
// deep-merged over the method's default. It returns the slice for chaining.
func (s *Slice) CallWith(layer, method string, args domain.Value) *Slice {
	cloned := args.Clone()
	s.invocations = append(s.invocations, Invocation{Layer: layer, Method: method, Args: &cloned})
	return s
}

// Invocations returns the configured invocations in declaration order.
func (s *Slice) Invocations() []Invocation {
	out := make([]Invocation, len(s.invocations))
	copy(out, s.invocations)
	return out
}
