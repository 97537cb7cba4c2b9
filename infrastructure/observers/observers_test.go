package observers

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestProgress_CountsAndReports(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 2)

	p.OnSliceStart("s_0")
	p.OnMethodStart("s_0", "l", "m")
	p.OnMethodComplete("s_0", "l", "m", time.Millisecond)
	p.OnSliceComplete("s_0", time.Millisecond)
	p.OnMethodFailed("s_1", "l", "m", errors.New("boom"))
	p.OnSliceComplete("s_1", time.Millisecond)

	assert.Equal(t, int64(2), p.Completed())
	assert.Equal(t, int64(1), p.Failed())

	out := buf.String()
	// The final slice always reports, and failures are never throttled.
	assert.Contains(t, out, "slice complete")
	assert.Contains(t, out, "method failed")
	assert.Contains(t, out, "boom")
}

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.OnSliceComplete("s_0", 10*time.Millisecond)
	m.OnSliceComplete("s_1", 20*time.Millisecond)
	m.OnMethodComplete("s_0", "calc", "divide", time.Millisecond)
	m.OnMethodFailed("s_1", "calc", "divide", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.slicesCompleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.methodsTotal.WithLabelValues("calc", "divide", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.methodsTotal.WithLabelValues("calc", "divide", "failed")))
}

func TestMetrics_NilRegistererUsesDefault(t *testing.T) {
	// Must not panic; metric names collide with the default registry only
	// if constructed twice, so swap in a scratch default for the test.
	orig := prometheus.DefaultRegisterer
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	defer func() { prometheus.DefaultRegisterer = orig }()

	assert.NotNil(t, NewMetrics(nil))
}

func TestTracing_SpansPerSliceAndMethod(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	tr := NewTracing(tp)

	tr.OnSliceStart("s_0")
	tr.OnMethodStart("s_0", "l", "ok")
	tr.OnMethodComplete("s_0", "l", "ok", time.Millisecond)
	tr.OnMethodStart("s_0", "l", "bad")
	tr.OnMethodFailed("s_0", "l", "bad", errors.New("boom"))
	tr.OnSliceComplete("s_0", 5*time.Millisecond)

	spans := exporter.GetSpans()
	require.Len(t, spans, 3)

	var names []string
	for _, s := range spans {
		names = append(names, s.Name)
	}
	assert.ElementsMatch(t, []string{"sandl.method", "sandl.method", "sandl.slice"}, names)

	// Method spans must be children of their slice span.
	slice := spans[2]
	assert.Equal(t, "sandl.slice", slice.Name)
	for _, s := range spans[:2] {
		assert.Equal(t, slice.SpanContext.SpanID(), s.Parent.SpanID())
	}
}

func TestTracing_DecodeFailureGetsSpanWithoutStart(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	tr := NewTracing(tp)

	tr.OnSliceStart("s_0")
	// No OnMethodStart: argument decoding failed before dispatch.
	tr.OnMethodFailed("s_0", "l", "m", errors.New("bad args"))
	tr.OnSliceComplete("s_0", time.Millisecond)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
}

func TestTracing_NilProviderUsesGlobal(t *testing.T) {
	assert.NotNil(t, NewTracing(nil))
	assert.NotNil(t, NewTracing(noop.NewTracerProvider()))
}
