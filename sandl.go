// Package sandl is a parallel execution engine for fan-out workloads:
// a fixed set of named layers, each exposing typed methods, applied across
// many independent slices under a dependency order. Declare layers and
// slices, freeze them with Build, and Run executes every slice in parallel,
// capturing per-method results, timings, and failures.
package sandl

import (
	"github.com/PedroGaya/sandl/internal/application"
	"github.com/PedroGaya/sandl/internal/domain"
	"github.com/PedroGaya/sandl/internal/ports"
)

// Re-exported core types. The internal packages hold the implementation;
// this facade is the supported import surface.
type (
	// Value is the self-describing, JSON-compatible dynamic value used at
	// every boundary: arguments, defaults, results, context entries.
	Value = domain.Value

	// Entry is a key/value pair for building ordered mapping Values.
	Entry = domain.Entry

	// Kind identifies a Value variant.
	Kind = domain.Kind

	// Context is the per-slice, thread-safe key/value scratch space.
	Context = domain.Context

	// InvocationKey identifies one method invocation within a slice.
	InvocationKey = domain.InvocationKey

	// MethodOutcome is one invocation's captured result or error.
	MethodOutcome = domain.MethodOutcome

	// SliceResults holds one slice's outcomes and duration.
	SliceResults = domain.SliceResults

	// RunResults is the aggregate analysis surface of one run.
	RunResults = domain.RunResults

	// TimingStats summarizes slice durations.
	TimingStats = domain.TimingStats

	// Method is the polymorphic dispatch surface of a bound method.
	Method = ports.Method

	// Observer receives execution progress events.
	Observer = ports.Observer

	// NoopObserver ignores every event; embed it for partial observers.
	NoopObserver = ports.NoopObserver

	// Layer is a named bundle of methods; the unit of dependency ordering.
	Layer = application.Layer

	// Slice is a named unit of work selecting method invocations.
	Slice = application.Slice

	// Invocation is one configured method call within a slice.
	Invocation = application.Invocation

	// Builder accumulates declarations and freezes them into an Engine.
	Builder = application.Builder

	// Engine is a frozen execution plan; Run may be called repeatedly.
	Engine = application.Engine

	// Config carries worker pool and batching options.
	Config = application.Config

	// RunFlags select tracking behavior for a single run.
	RunFlags = application.RunFlags

	// MethodOption configures optional method attributes.
	MethodOption = application.MethodOption

	// PlanLoader loads declarative slice plans from YAML.
	PlanLoader = application.PlanLoader

	// PlanDocument is a parsed declarative slice plan.
	PlanDocument = application.PlanDocument
)

// Run flag values.
const (
	// Tracked fires observers and reports progress on stdout.
	Tracked = application.Tracked

	// Silent fires observers without engine stdout output.
	Silent = application.Silent

	// SilentNoObserver skips observer callbacks entirely.
	SilentNoObserver = application.SilentNoObserver
)

// Value kinds.
const (
	KindNull   = domain.KindNull
	KindBool   = domain.KindBool
	KindInt    = domain.KindInt
	KindFloat  = domain.KindFloat
	KindString = domain.KindString
	KindList   = domain.KindList
	KindMap    = domain.KindMap
)

// Value literal constructors, mirroring JSON syntax.
var (
	Null   = domain.Null
	Bool   = domain.Bool
	Int    = domain.Int
	Float  = domain.Float
	String = domain.String
	List   = domain.List
	Map    = domain.Map
	E      = domain.E
)

// Merge deep-merges override into def: override keys win, mappings recurse,
// lists and scalars are replaced wholesale.
var Merge = domain.Merge

// Error taxonomy sentinels for errors.Is matching.
var (
	ErrDuplicateLayer      = domain.ErrDuplicateLayer
	ErrDuplicateMethod     = domain.ErrDuplicateMethod
	ErrDuplicateSlice      = domain.ErrDuplicateSlice
	ErrUnknownLayer        = domain.ErrUnknownLayer
	ErrUnknownMethod       = domain.ErrUnknownMethod
	ErrDependencyCycle     = domain.ErrDependencyCycle
	ErrDefaultArgsInvalid  = domain.ErrDefaultArgsInvalid
	ErrArgDeserialization  = domain.ErrArgDeserialization
	ErrMethodExecution     = domain.ErrMethodExecution
	ErrContextMissingKey   = domain.ErrContextMissingKey
	ErrContextTypeMismatch = domain.ErrContextTypeMismatch
)

// New creates an empty engine builder.
func New() *Builder { return application.NewBuilder() }

// NewLayer creates a layer holding the given methods in declaration order.
func NewLayer(name string, methods ...Method) (*Layer, error) {
	return application.NewLayer(name, methods...)
}

// NewSlice creates an empty slice with the given name.
func NewSlice(name string) *Slice { return application.NewSlice(name) }

// NewContext creates an empty per-slice context. Exposed mainly for tests
// of user method implementations; the engine creates contexts itself.
func NewContext() *Context { return domain.NewContext() }

// NewPlanLoader creates a YAML plan loader with an empty cache.
func NewPlanLoader() *PlanLoader { return application.NewPlanLoader() }

// NewMethod binds a typed implementation function as a named method. The
// argument type T decodes from the effective argument Value at dispatch.
func NewMethod[T any](name string, fn application.MethodFunc[T], opts ...MethodOption) Method {
	return application.NewMethod(name, fn, opts...)
}

// NewPureMethod binds a typed implementation that receives no context.
func NewPureMethod[T any](name string, fn application.PureMethodFunc[T], opts ...MethodOption) Method {
	return application.NewPureMethod(name, fn, opts...)
}

// WithDefaults declares a method's default argument Value.
var WithDefaults = application.WithDefaults

// ContextGet reads a context key and decodes it into T in one step.
func ContextGet[T any](c *Context, key string) (T, error) {
	return domain.ContextGet[T](c, key)
}

// DecodeArgs converts a Value into the typed record T.
func DecodeArgs[T any](v Value) (T, error) { return domain.DecodeArgs[T](v) }

// EncodeArgs converts a typed record back into a Value.
func EncodeArgs(record any) (Value, error) { return domain.EncodeArgs(record) }

// FromInterface converts a tree of Go built-ins into a Value.
var FromInterface = domain.FromInterface
