package observers

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/PedroGaya/sandl/internal/ports"
)

const tracerName = "github.com/PedroGaya/sandl"

var _ ports.Observer = (*Tracing)(nil)

// Tracing emits one OpenTelemetry span per slice and one child span per
// method invocation. Failed invocations set error status and record the
// captured error on their span.
type Tracing struct {
	tracer trace.Tracer

	mu      sync.Mutex
	slices  map[string]sliceSpan
	methods map[string]trace.Span
}

type sliceSpan struct {
	ctx  context.Context
	span trace.Span
}

// NewTracing creates a tracing observer. Passing nil uses the globally
// registered tracer provider.
func NewTracing(tp trace.TracerProvider) *Tracing {
	var tracer trace.Tracer
	if tp == nil {
		tracer = otel.Tracer(tracerName)
	} else {
		tracer = tp.Tracer(tracerName)
	}
	return &Tracing{
		tracer:  tracer,
		slices:  make(map[string]sliceSpan),
		methods: make(map[string]trace.Span),
	}
}

// OnSliceStart implements ports.Observer.
func (t *Tracing) OnSliceStart(slice string) {
	ctx, span := t.tracer.Start(context.Background(), "sandl.slice",
		trace.WithAttributes(attribute.String("sandl.slice", slice)))

	t.mu.Lock()
	t.slices[slice] = sliceSpan{ctx: ctx, span: span}
	t.mu.Unlock()
}

// OnSliceComplete implements ports.Observer.
func (t *Tracing) OnSliceComplete(slice string, d time.Duration) {
	t.mu.Lock()
	ss, ok := t.slices[slice]
	delete(t.slices, slice)
	t.mu.Unlock()

	if !ok {
		return
	}
	ss.span.SetAttributes(attribute.Int64("sandl.slice.duration_ms", d.Milliseconds()))
	ss.span.End()
}

// OnMethodStart implements ports.Observer.
func (t *Tracing) OnMethodStart(slice, layer, method string) {
	parent := context.Background()

	t.mu.Lock()
	if ss, ok := t.slices[slice]; ok {
		parent = ss.ctx
	}
	_, span := t.tracer.Start(parent, "sandl.method",
		trace.WithAttributes(
			attribute.String("sandl.slice", slice),
			attribute.String("sandl.layer", layer),
			attribute.String("sandl.method", method),
		))
	t.methods[methodKey(slice, layer, method)] = span
	t.mu.Unlock()
}

// OnMethodComplete implements ports.Observer.
func (t *Tracing) OnMethodComplete(slice, layer, method string, d time.Duration) {
	if span, ok := t.takeMethodSpan(slice, layer, method); ok {
		span.SetAttributes(attribute.Int64("sandl.method.duration_ms", d.Milliseconds()))
		span.SetStatus(codes.Ok, "")
		span.End()
	}
}

// OnMethodFailed implements ports.Observer. Argument-decoding failures
// arrive without a preceding OnMethodStart; they get a zero-length span so
// the failure is still visible on the trace.
func (t *Tracing) OnMethodFailed(slice, layer, method string, err error) {
	span, ok := t.takeMethodSpan(slice, layer, method)
	if !ok {
		parent := context.Background()
		t.mu.Lock()
		if ss, exists := t.slices[slice]; exists {
			parent = ss.ctx
		}
		t.mu.Unlock()
		_, span = t.tracer.Start(parent, "sandl.method",
			trace.WithAttributes(
				attribute.String("sandl.slice", slice),
				attribute.String("sandl.layer", layer),
				attribute.String("sandl.method", method),
			))
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

func (t *Tracing) takeMethodSpan(slice, layer, method string) (trace.Span, bool) {
	key := methodKey(slice, layer, method)
	t.mu.Lock()
	span, ok := t.methods[key]
	delete(t.methods, key)
	t.mu.Unlock()
	return span, ok
}

func methodKey(slice, layer, method string) string {
	return slice + "\x00" + layer + "\x00" + method
}
