package application

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/PedroGaya/sandl/infrastructure/observers"
	"github.com/PedroGaya/sandl/internal/domain"
	"github.com/PedroGaya/sandl/internal/ports"
)

// plannedInvocation is a slice invocation resolved against the frozen
// registry: the bound method is looked up once at build time so the run
// path performs no name resolution.
type plannedInvocation struct {
	layer  string
	method ports.Method
	args   *domain.Value
	key    domain.InvocationKey
}

// slicePlan is one slice's invocations flattened into execution order:
// layers in dependency order, invocations within a layer in declaration
// order. Layers the slice does not target are skipped.
type slicePlan struct {
	name        string
	invocations []plannedInvocation
}

// Engine is a frozen, immutable execution plan: layers, slices, dependency
// order and configuration. It is safe for concurrent read-only sharing;
// Run may be called multiple times, each run independent of the others.
type Engine struct {
	order     []string
	plans     []slicePlan
	cfg       Config
	observers []ports.Observer
	log       zerolog.Logger
}

func newEngine(b *Builder, order []string) *Engine {
	e := &Engine{
		order:     order,
		cfg:       b.cfg.withDefaults(),
		observers: b.observers,
		log:       zerolog.New(os.Stderr).With().Timestamp().Str("component", "engine").Logger(),
	}

	for _, s := range b.slices {
		plan := slicePlan{name: s.Name()}
		byLayer := make(map[string][]Invocation)
		for _, inv := range s.Invocations() {
			byLayer[inv.Layer] = append(byLayer[inv.Layer], inv)
		}
		pairIndex := make(map[string]int)
		for _, layerName := range order {
			layer := b.layerIdx[layerName]
			for _, inv := range byLayer[layerName] {
				method, _ := layer.Method(inv.Method)
				pairKey := layerName + "\x00" + inv.Method
				idx := pairIndex[pairKey]
				pairIndex[pairKey] = idx + 1
				plan.invocations = append(plan.invocations, plannedInvocation{
					layer:  layerName,
					method: method,
					args:   inv.Args,
					key:    domain.InvocationKey{Layer: layerName, Method: inv.Method, Index: idx},
				})
			}
		}
		e.plans = append(e.plans, plan)
	}
	return e
}

// LayerOrder returns the planned total order over layers.
func (e *Engine) LayerOrder() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Run executes every slice and returns the aggregated results. Run never
// fails: per-method errors are captured into the results, and a panic in a
// method body is converted to a MethodError with a PanicError cause.
// Slices are processed in windows of BatchSize (unbatched when zero), each
// window distributed over NumThreads workers in chunks of ChunkSize
// consecutive slices. Run returns only after every dispatched slice has
// finished.
func (e *Engine) Run(ctx context.Context, flags ...RunFlags) *domain.RunResults {
	flag := Tracked
	if len(flags) > 0 {
		flag = flags[0]
	}

	obs := e.observers
	if flag == Tracked {
		// The default observer reports progress on stdout; user observers
		// still fire after it in registration order.
		obs = append([]ports.Observer{observers.NewProgress(os.Stdout, len(e.plans))}, obs...)
	}
	bus := &observerBus{
		observers: obs,
		enabled:   flag.observersEnabled(),
		log:       e.log,
	}

	results := domain.NewRunResults()

	batch := e.cfg.BatchSize
	if batch <= 0 || batch > len(e.plans) {
		batch = len(e.plans)
	}

	for start := 0; start < len(e.plans); start += batch {
		end := start + batch
		if end > len(e.plans) {
			end = len(e.plans)
		}
		e.runWindow(ctx, e.plans[start:end], bus, results)
	}

	if flag == Tracked && len(e.plans) > 0 {
		fmt.Println(results.Summary())
	}
	return results
}

// runWindow drains one window of slices through the worker pool before
// returning. Workers never surface errors to the group; every failure is
// captured per method.
func (e *Engine) runWindow(ctx context.Context, plans []slicePlan, bus *observerBus, results *domain.RunResults) {
	var g errgroup.Group
	g.SetLimit(e.cfg.NumThreads)

	chunk := e.cfg.ChunkSize
	for start := 0; start < len(plans); start += chunk {
		end := start + chunk
		if end > len(plans) {
			end = len(plans)
		}
		work := plans[start:end]
		g.Go(func() error {
			for i := range work {
				results.Append(e.runSlice(ctx, &work[i], bus))
			}
			return nil
		})
	}
	// The group carries no errors; Wait is purely a completion barrier.
	_ = g.Wait()
}

// runSlice executes one slice start to finish on the calling worker:
// a fresh context, every planned invocation in order, timings, and events.
func (e *Engine) runSlice(ctx context.Context, plan *slicePlan, bus *observerBus) *domain.SliceResults {
	sc := domain.NewContext()
	res := domain.NewSliceResults(plan.name)

	bus.sliceStart(plan.name)
	start := time.Now()

	for _, inv := range plan.invocations {
		effective := effectiveArgs(inv.method, inv.args)

		decoded, err := inv.method.DecodeArgs(effective)
		if err != nil {
			argErr := &domain.ArgError{
				Slice: plan.name, Layer: inv.layer, Method: inv.method.Name(),
				Args: effective, Err: err,
			}
			res.Record(domain.MethodOutcome{Key: inv.key, Err: argErr})
			bus.methodFailed(plan.name, inv.layer, inv.method.Name(), argErr)
			continue
		}

		bus.methodStart(plan.name, inv.layer, inv.method.Name())
		methodStart := time.Now()
		out, err := e.invokeGuarded(ctx, inv.method, decoded, sc)
		elapsed := time.Since(methodStart)

		if err != nil {
			methodErr := &domain.MethodError{
				Slice: plan.name, Layer: inv.layer, Method: inv.method.Name(),
				Args: effective, Err: err,
			}
			res.Record(domain.MethodOutcome{Key: inv.key, Err: methodErr, Duration: elapsed})
			bus.methodFailed(plan.name, inv.layer, inv.method.Name(), methodErr)
			continue
		}

		res.Record(domain.MethodOutcome{Key: inv.key, Value: out, Duration: elapsed})
		bus.methodComplete(plan.name, inv.layer, inv.method.Name(), elapsed)
	}

	res.SetDuration(time.Since(start))
	bus.sliceComplete(plan.name, res.Duration())
	return res
}

// invokeGuarded calls the method body with a panic barrier. User code is
// untrusted; a panic becomes a PanicError cause and the slice continues.
func (e *Engine) invokeGuarded(ctx context.Context, m ports.Method, args any, sc *domain.Context) (out domain.Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &domain.PanicError{Payload: fmt.Sprint(p)}
		}
	}()
	if m.Pure() {
		sc = nil
	}
	return m.Invoke(ctx, args, sc)
}

// effectiveArgs computes the Value a method is invoked with: empty mapping
// when neither default nor override exists, the sole one when only one
// exists, and the deep merge of override over default when both do.
func effectiveArgs(m ports.Method, override *domain.Value) domain.Value {
	def, hasDef := m.Defaults()
	switch {
	case !hasDef && override == nil:
		return domain.Map()
	case !hasDef:
		return override.Clone()
	case override == nil:
		return def
	default:
		return domain.Merge(def, *override)
	}
}

// observerBus fans one event out to every registered observer. Callbacks
// run synchronously on the emitting worker in registration order. A
// panicking callback is recovered and logged; it cannot corrupt run
// results or affect other callbacks.
type observerBus struct {
	observers []ports.Observer
	enabled   bool
	log       zerolog.Logger
}

func (b *observerBus) fire(event string, fn func(ports.Observer)) {
	if !b.enabled {
		return
	}
	for _, o := range b.observers {
		b.fireOne(event, o, fn)
	}
}

func (b *observerBus) fireOne(event string, o ports.Observer, fn func(ports.Observer)) {
	defer func() {
		if p := recover(); p != nil {
			b.log.Error().Str("event", event).Interface("panic", p).Msg("observer callback panicked")
		}
	}()
	fn(o)
}

func (b *observerBus) sliceStart(slice string) {
	b.fire("slice_start", func(o ports.Observer) { o.OnSliceStart(slice) })
}

func (b *observerBus) sliceComplete(slice string, d time.Duration) {
	b.fire("slice_complete", func(o ports.Observer) { o.OnSliceComplete(slice, d) })
}

func (b *observerBus) methodStart(slice, layer, method string) {
	b.fire("method_start", func(o ports.Observer) { o.OnMethodStart(slice, layer, method) })
}

func (b *observerBus) methodComplete(slice, layer, method string, d time.Duration) {
	b.fire("method_complete", func(o ports.Observer) { o.OnMethodComplete(slice, layer, method, d) })
}

func (b *observerBus) methodFailed(slice, layer, method string, err error) {
	b.fire("method_failed", func(o ports.Observer) { o.OnMethodFailed(slice, layer, method, err) })
}
