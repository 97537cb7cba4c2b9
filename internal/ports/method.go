// Package ports defines the interfaces that form the contract between the
// engine's application core and the code plugged into it: bound methods
// and observers.
package ports

import (
	"context"

	"github.com/PedroGaya/sandl/internal/domain"
)

// Method is the polymorphic dispatch surface for a bound method
// implementation. Methods vary in argument type but share this uniform
// signature; the heterogeneity lives behind DecodeArgs and Invoke.
// Implementations must be stateless and safe for concurrent invocation
// across slices.
type Method interface {
	// Name returns the method's name, unique within its layer.
	Name() string

	// Pure reports whether the method runs without a slice context.
	// Pure methods receive a nil context handle from the scheduler.
	Pure() bool

	// Defaults returns the method's default argument Value, if declared.
	// The default must decode through DecodeArgs; the builder checks this
	// once at engine construction.
	Defaults() (domain.Value, bool)

	// ArgType returns the canonical name of the argument record type for
	// error messages.
	ArgType() string

	// DecodeArgs converts an effective argument Value into the typed
	// record Invoke expects. Failures wrap domain.ErrArgDeserialization.
	DecodeArgs(v domain.Value) (any, error)

	// Invoke runs the bound implementation with a record produced by
	// DecodeArgs. sc is nil for pure methods. Errors are captured by the
	// scheduler, never propagated out of a run.
	Invoke(ctx context.Context, args any, sc *domain.Context) (domain.Value, error)
}
