package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is matching across the engine's taxonomy.
var (
	// ErrDuplicateLayer indicates two layers were registered under one name.
	ErrDuplicateLayer = errors.New("duplicate layer")

	// ErrDuplicateMethod indicates two methods share a name within a layer.
	ErrDuplicateMethod = errors.New("duplicate method")

	// ErrDuplicateSlice indicates two slices were registered under one name.
	ErrDuplicateSlice = errors.New("duplicate slice")

	// ErrUnknownLayer indicates a reference to a layer that was never registered.
	ErrUnknownLayer = errors.New("unknown layer")

	// ErrUnknownMethod indicates a reference to a method its layer does not define.
	ErrUnknownMethod = errors.New("unknown method")

	// ErrDependencyCycle indicates the dependency graph is not acyclic.
	ErrDependencyCycle = errors.New("dependency cycle")

	// ErrDefaultArgsInvalid indicates a method default failed its own schema.
	ErrDefaultArgsInvalid = errors.New("default args invalid")

	// ErrArgDeserialization indicates effective arguments failed to decode.
	ErrArgDeserialization = errors.New("argument deserialization failed")

	// ErrMethodExecution indicates a bound method returned an error or panicked.
	ErrMethodExecution = errors.New("method execution failed")

	// ErrContextMissingKey indicates a typed context read of an absent key.
	ErrContextMissingKey = errors.New("context key not found")

	// ErrContextTypeMismatch indicates a context value failed a typed decode.
	ErrContextTypeMismatch = errors.New("context type mismatch")
)

// BuildError wraps any failure detected while freezing an engine. Build
// errors abort construction; no engine is produced.
type BuildError struct {
	// Err is the underlying validation failure.
	Err error
}

// Error implements the error interface for BuildError.
func (e *BuildError) Error() string { return fmt.Sprintf("engine build failed: %v", e.Err) }

// Unwrap returns the underlying error, supporting errors.Is and errors.As.
func (e *BuildError) Unwrap() error { return e.Err }

// NewBuildError wraps err as a build-time failure.
func NewBuildError(err error) *BuildError { return &BuildError{Err: err} }

// DuplicateNameError reports a name collision at registration time.
// Entity is one of "layer", "method", or "slice"; Scope carries the owning
// layer name for method collisions.
type DuplicateNameError struct {
	Entity string
	Name   string
	Scope  string
}

// Error implements the error interface for DuplicateNameError.
func (e *DuplicateNameError) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("duplicate %s %q in layer %q", e.Entity, e.Name, e.Scope)
	}
	return fmt.Sprintf("duplicate %s %q", e.Entity, e.Name)
}

// Is maps the entity onto the matching sentinel.
func (e *DuplicateNameError) Is(target error) bool {
	switch e.Entity {
	case "layer":
		return target == ErrDuplicateLayer
	case "method":
		return target == ErrDuplicateMethod
	case "slice":
		return target == ErrDuplicateSlice
	}
	return false
}

// UnknownNameError reports a reference to an entity that does not exist.
// Suggestion, when non-empty, names the closest registered entity by edit
// distance and is included in the message.
type UnknownNameError struct {
	Entity     string
	Name       string
	Scope      string
	Suggestion string
}

// Error implements the error interface for UnknownNameError.
func (e *UnknownNameError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "unknown %s %q", e.Entity, e.Name)
	if e.Scope != "" {
		fmt.Fprintf(&sb, " in layer %q", e.Scope)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&sb, " (did you mean %q?)", e.Suggestion)
	}
	return sb.String()
}

// Is maps the entity onto the matching sentinel.
func (e *UnknownNameError) Is(target error) bool {
	switch e.Entity {
	case "layer":
		return target == ErrUnknownLayer
	case "method":
		return target == ErrUnknownMethod
	}
	return false
}

// DependencyCycleError reports that the layer dependency graph contains at
// least one cycle. Layers holds the participating layer names; the order of
// the set is unspecified.
type DependencyCycleError struct {
	Layers []string
}

// Error implements the error interface for DependencyCycleError.
func (e *DependencyCycleError) Error() string {
	return fmt.Sprintf("dependency cycle among layers [%s]", strings.Join(e.Layers, ", "))
}

// Is supports errors.Is(err, ErrDependencyCycle).
func (e *DependencyCycleError) Is(target error) bool { return target == ErrDependencyCycle }

// DefaultArgsError reports that a method's declared default Value does not
// decode through the method's own argument schema.
type DefaultArgsError struct {
	Layer  string
	Method string
	Err    error
}

// Error implements the error interface for DefaultArgsError.
func (e *DefaultArgsError) Error() string {
	return fmt.Sprintf("default args for %s.%s do not decode: %v", e.Layer, e.Method, e.Err)
}

// Unwrap returns the decoding failure.
func (e *DefaultArgsError) Unwrap() error { return e.Err }

// Is supports errors.Is(err, ErrDefaultArgsInvalid).
func (e *DefaultArgsError) Is(target error) bool { return target == ErrDefaultArgsInvalid }

// ArgError reports that the effective arguments for one invocation failed to
// decode into the method's argument record. It is captured per invocation;
// the slice continues.
type ArgError struct {
	Slice  string
	Layer  string
	Method string
	Args   Value
	Err    error
}

// Error implements the error interface for ArgError.
func (e *ArgError) Error() string {
	return fmt.Sprintf("slice %q: args for %s.%s failed to deserialize: %v", e.Slice, e.Layer, e.Method, e.Err)
}

// Unwrap returns the decoding failure.
func (e *ArgError) Unwrap() error { return e.Err }

// Is supports errors.Is(err, ErrArgDeserialization).
func (e *ArgError) Is(target error) bool { return target == ErrArgDeserialization }

// MethodError reports that a bound method implementation returned an error
// or panicked. It carries full coordinates plus the effective arguments the
// method was invoked with, enabling per-method diagnosis at scale.
type MethodError struct {
	Slice  string
	Layer  string
	Method string
	Args   Value
	Err    error
}

// Error implements the error interface for MethodError.
func (e *MethodError) Error() string {
	return fmt.Sprintf("slice %q: method %s.%s failed: %v", e.Slice, e.Layer, e.Method, e.Err)
}

// Unwrap returns the cause reported by the method body.
func (e *MethodError) Unwrap() error { return e.Err }

// Is supports errors.Is(err, ErrMethodExecution).
func (e *MethodError) Is(target error) bool { return target == ErrMethodExecution }

// PanicError is the cause attached to a MethodError when a method body
// panicked. Payload is the stringified panic value.
type PanicError struct {
	Payload string
}

// Error implements the error interface for PanicError.
func (e *PanicError) Error() string { return fmt.Sprintf("panic: %s", e.Payload) }

// ContextKeyError reports a typed context read of a key that is absent.
type ContextKeyError struct {
	Key string
}

// Error implements the error interface for ContextKeyError.
func (e *ContextKeyError) Error() string { return fmt.Sprintf("context key %q not found", e.Key) }

// Is supports errors.Is(err, ErrContextMissingKey).
func (e *ContextKeyError) Is(target error) bool { return target == ErrContextMissingKey }

// ContextTypeError reports a context value that exists but does not decode
// into the requested type.
type ContextTypeError struct {
	Key      string
	Expected string
	Err      error
}

// Error implements the error interface for ContextTypeError.
func (e *ContextTypeError) Error() string {
	return fmt.Sprintf("context key %q does not decode as %s: %v", e.Key, e.Expected, e.Err)
}

// Unwrap returns the decoding failure.
func (e *ContextTypeError) Unwrap() error { return e.Err }

// Is supports errors.Is(err, ErrContextTypeMismatch).
func (e *ContextTypeError) Is(target error) bool { return target == ErrContextTypeMismatch }
