package domain

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// InvocationKey identifies one method invocation within a slice. Index is
// the zero-based position among invocations of the same (layer, method)
// pair, so repeated invocations never overwrite each other.
type InvocationKey struct {
	Layer  string
	Method string
	Index  int
}

// String renders the key as layer.method[#index].
func (k InvocationKey) String() string {
	if k.Index == 0 {
		return fmt.Sprintf("%s.%s", k.Layer, k.Method)
	}
	return fmt.Sprintf("%s.%s#%d", k.Layer, k.Method, k.Index)
}

// MethodOutcome records the result of a single invocation: either a Value
// or a captured error, plus its wall-clock duration.
type MethodOutcome struct {
	Key      InvocationKey
	Value    Value
	Err      error
	Duration time.Duration
}

// Failed reports whether the invocation captured an error.
func (o MethodOutcome) Failed() bool { return o.Err != nil }

// SliceResults accumulates every method outcome of one slice in execution
// order, along with the slice's total duration. Instances are built by the
// scheduler on the owning worker and are read-only afterwards.
type SliceResults struct {
	name     string
	outcomes []MethodOutcome
	last     map[string]int // "layer\x00method" -> index of last outcome
	duration time.Duration
}

// NewSliceResults creates an empty result set for the named slice.
func NewSliceResults(name string) *SliceResults {
	return &SliceResults{name: name, last: make(map[string]int)}
}

// Name returns the slice name.
func (r *SliceResults) Name() string { return r.name }

// Duration returns the slice's total wall-clock time.
func (r *SliceResults) Duration() time.Duration { return r.duration }

// SetDuration records the slice's total wall-clock time.
func (r *SliceResults) SetDuration(d time.Duration) { r.duration = d }

// Record appends one outcome in execution order.
func (r *SliceResults) Record(o MethodOutcome) {
	r.last[o.Key.Layer+"\x00"+o.Key.Method] = len(r.outcomes)
	r.outcomes = append(r.outcomes, o)
}

// Outcomes returns every recorded outcome in execution order.
func (r *SliceResults) Outcomes() []MethodOutcome { return r.outcomes }

// Result returns the outcome of the last invocation of (layer, method) on
// this slice. ok is false when the pair was never invoked.
func (r *SliceResults) Result(layer, method string) (MethodOutcome, bool) {
	idx, ok := r.last[layer+"\x00"+method]
	if !ok {
		return MethodOutcome{}, false
	}
	return r.outcomes[idx], true
}

// Value returns the success value of the last (layer, method) invocation.
// ok is false when the pair was never invoked or its last invocation failed.
func (r *SliceResults) Value(layer, method string) (Value, bool) {
	o, ok := r.Result(layer, method)
	if !ok || o.Err != nil {
		return Value{}, false
	}
	return o.Value, true
}

// MethodCount returns the number of recorded invocations.
func (r *SliceResults) MethodCount() int { return len(r.outcomes) }

// FailedCount returns the number of invocations that captured an error.
func (r *SliceResults) FailedCount() int {
	n := 0
	for _, o := range r.outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// Successful reports whether every invocation of the slice succeeded.
// A slice with zero invocations is successful.
func (r *SliceResults) Successful() bool { return r.FailedCount() == 0 }

// TimingStats summarizes slice durations across a run.
type TimingStats struct {
	Min time.Duration
	Avg time.Duration
	Max time.Duration
}

// RunResults is the aggregate outcome of one engine run. Workers hand
// finished SliceResults to Append concurrently; once Run returns the
// structure is read-only. Run never fails: callers diagnose outcomes
// through this analysis surface.
type RunResults struct {
	mu      sync.Mutex
	slices  []*SliceResults
	bySlice map[string]*SliceResults
}

// NewRunResults creates an empty aggregate.
func NewRunResults() *RunResults {
	return &RunResults{bySlice: make(map[string]*SliceResults)}
}

// Append hands a finished slice result to the aggregate. It is safe for
// concurrent use by multiple workers.
func (r *RunResults) Append(sr *SliceResults) {
	r.mu.Lock()
	r.slices = append(r.slices, sr)
	r.bySlice[sr.Name()] = sr
	r.mu.Unlock()
}

// Slice returns the results for the named slice, or nil when absent.
func (r *RunResults) Slice(name string) *SliceResults { return r.bySlice[name] }

// Slices returns every slice result in completion order.
func (r *RunResults) Slices() []*SliceResults { return r.slices }

// TotalSlices returns the number of executed slices.
func (r *RunResults) TotalSlices() int { return len(r.slices) }

// SuccessfulSlices returns the number of slices whose invocations all
// succeeded.
func (r *RunResults) SuccessfulSlices() int {
	n := 0
	for _, sr := range r.slices {
		if sr.Successful() {
			n++
		}
	}
	return n
}

// FailedSlices returns the number of slices with at least one failure.
func (r *RunResults) FailedSlices() int { return r.TotalSlices() - r.SuccessfulSlices() }

// TotalMethods returns the number of method invocations across all slices.
func (r *RunResults) TotalMethods() int {
	n := 0
	for _, sr := range r.slices {
		n += sr.MethodCount()
	}
	return n
}

// FailedMethods returns the number of invocations that captured an error.
func (r *RunResults) FailedMethods() int {
	n := 0
	for _, sr := range r.slices {
		n += sr.FailedCount()
	}
	return n
}

// SuccessfulMethods returns the number of invocations that succeeded.
func (r *RunResults) SuccessfulMethods() int { return r.TotalMethods() - r.FailedMethods() }

// HasFailures reports whether any invocation in the run failed.
func (r *RunResults) HasFailures() bool { return r.FailedMethods() > 0 }

// MethodErrors returns every captured error with its slice coordinates, in
// slice completion order. Both argument-decoding and execution failures are
// included.
func (r *RunResults) MethodErrors() []error {
	var errs []error
	for _, sr := range r.slices {
		for _, o := range sr.outcomes {
			if o.Err != nil {
				errs = append(errs, o.Err)
			}
		}
	}
	return errs
}

// ExecutionErrors returns the subset of captured errors that originated in
// method bodies, excluding argument deserialization failures.
func (r *RunResults) ExecutionErrors() []error {
	var errs []error
	for _, err := range r.MethodErrors() {
		if errors.Is(err, ErrMethodExecution) {
			errs = append(errs, err)
		}
	}
	return errs
}

// Timing returns min/avg/max slice duration. The zero TimingStats is
// returned for an empty run.
func (r *RunResults) Timing() TimingStats {
	if len(r.slices) == 0 {
		return TimingStats{}
	}
	stats := TimingStats{Min: r.slices[0].Duration(), Max: r.slices[0].Duration()}
	var total time.Duration
	for _, sr := range r.slices {
		d := sr.Duration()
		total += d
		if d < stats.Min {
			stats.Min = d
		}
		if d > stats.Max {
			stats.Max = d
		}
	}
	stats.Avg = total / time.Duration(len(r.slices))
	return stats
}

// Summary renders a human-readable report of the run. Counts are printed
// with digit grouping so multi-million-slice runs stay legible.
func (r *RunResults) Summary() string {
	p := message.NewPrinter(language.English)
	timing := r.Timing()

	var sb strings.Builder
	p.Fprintf(&sb, "slices: %d total, %d ok, %d failed\n",
		r.TotalSlices(), r.SuccessfulSlices(), r.FailedSlices())
	p.Fprintf(&sb, "methods: %d total, %d ok, %d failed\n",
		r.TotalMethods(), r.SuccessfulMethods(), r.FailedMethods())
	fmt.Fprintf(&sb, "slice duration: min %s, avg %s, max %s",
		timing.Min, timing.Avg, timing.Max)
	return sb.String()
}
