package application

import (
	"fmt"

	"github.com/agnivade/levenshtein"
	"github.com/go-playground/validator/v10"

	"github.com/PedroGaya/sandl/internal/domain"
	"github.com/PedroGaya/sandl/internal/ports"
)

// Package-level validator instance for engine configuration validation.
var validate = validator.New()

// Builder accumulates layers, slices, dependencies and configuration, then
// freezes them into an Engine. All cross-entity validation happens once in
// Build: name resolution, duplicate detection, default decodability, and
// cycle detection. This keeps the run path free of per-slice checks.
type Builder struct {
	layers     []*Layer
	layerIdx   map[string]*Layer
	slices     []*Slice
	sliceNames map[string]struct{}
	deps       []dependency
	initLayer  string
	cfg        Config
	observers  []ports.Observer

	// errs collects registration-time failures so the fluent surface can
	// stay chainable; Build reports the first one.
	errs []error
}

// NewBuilder creates an empty engine builder.
func NewBuilder() *Builder {
	return &Builder{
		layerIdx:   make(map[string]*Layer),
		sliceNames: make(map[string]struct{}),
	}
}

// AddLayer registers a layer. Duplicate names are reported at Build.
func (b *Builder) AddLayer(l *Layer) *Builder {
	if _, exists := b.layerIdx[l.Name()]; exists {
		b.errs = append(b.errs, &domain.DuplicateNameError{Entity: "layer", Name: l.Name()})
		return b
	}
	b.layers = append(b.layers, l)
	b.layerIdx[l.Name()] = l
	return b
}

// AddSlice registers a slice. Duplicate names are reported at Build.
func (b *Builder) AddSlice(s *Slice) *Builder {
	if _, exists := b.sliceNames[s.Name()]; exists {
		b.errs = append(b.errs, &domain.DuplicateNameError{Entity: "slice", Name: s.Name()})
		return b
	}
	b.slices = append(b.slices, s)
	b.sliceNames[s.Name()] = struct{}{}
	return b
}

// AddSlices registers several slices at once.
func (b *Builder) AddSlices(slices ...*Slice) *Builder {
	for _, s := range slices {
		b.AddSlice(s)
	}
	return b
}

// Dependency declares that dependent cannot start until prerequisite has
// completed. Both must name registered layers; Build verifies.
func (b *Builder) Dependency(dependent, prerequisite string) *Builder {
	b.deps = append(b.deps, dependency{dependent: dependent, prerequisite: prerequisite})
	return b
}

// InitLayer marks the named layer as an implicit prerequisite of every
// other layer. It must name a registered layer; Build verifies.
func (b *Builder) InitLayer(name string) *Builder {
	b.initLayer = name
	return b
}

// Config sets the engine's resource configuration.
func (b *Builder) Config(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// Observer appends observers that will receive execution events, in
// registration order.
func (b *Builder) Observer(obs ...ports.Observer) *Builder {
	b.observers = append(b.observers, obs...)
	return b
}

// Build validates the accumulated declarations and freezes them into an
// Engine. On any failure it returns a BuildError and no engine.
func (b *Builder) Build() (*Engine, error) {
	if len(b.errs) > 0 {
		return nil, domain.NewBuildError(b.errs[0])
	}

	if err := validate.Struct(b.cfg); err != nil {
		return nil, domain.NewBuildError(fmt.Errorf("invalid config: %w", err))
	}

	layerNames := make([]string, len(b.layers))
	for i, l := range b.layers {
		layerNames[i] = l.Name()
	}

	// Every method default must decode through its own schema.
	for _, l := range b.layers {
		for _, m := range l.Methods() {
			def, ok := m.Defaults()
			if !ok {
				continue
			}
			if _, err := m.DecodeArgs(def); err != nil {
				return nil, domain.NewBuildError(&domain.DefaultArgsError{Layer: l.Name(), Method: m.Name(), Err: err})
			}
		}
	}

	// Every slice invocation must resolve to a registered layer and method.
	for _, s := range b.slices {
		for _, inv := range s.Invocations() {
			layer, ok := b.layerIdx[inv.Layer]
			if !ok {
				return nil, domain.NewBuildError(&domain.UnknownNameError{
					Entity:     "layer",
					Name:       inv.Layer,
					Suggestion: closestName(inv.Layer, layerNames),
				})
			}
			if _, ok := layer.Method(inv.Method); !ok {
				return nil, domain.NewBuildError(&domain.UnknownNameError{
					Entity:     "method",
					Name:       inv.Method,
					Scope:      inv.Layer,
					Suggestion: closestName(inv.Method, layer.MethodNames()),
				})
			}
		}
	}

	// Dependency endpoints and the init layer must be registered layers.
	for _, d := range b.deps {
		for _, name := range []string{d.dependent, d.prerequisite} {
			if _, ok := b.layerIdx[name]; !ok {
				return nil, domain.NewBuildError(&domain.UnknownNameError{
					Entity:     "layer",
					Name:       name,
					Suggestion: closestName(name, layerNames),
				})
			}
		}
	}
	if b.initLayer != "" {
		if _, ok := b.layerIdx[b.initLayer]; !ok {
			return nil, domain.NewBuildError(&domain.UnknownNameError{
				Entity:     "layer",
				Name:       b.initLayer,
				Suggestion: closestName(b.initLayer, layerNames),
			})
		}
	}

	order, err := planOrder(layerNames, b.deps, b.initLayer)
	if err != nil {
		return nil, domain.NewBuildError(err)
	}

	return newEngine(b, order), nil
}

// closestName returns the candidate with the smallest edit distance to
// name, or "" when nothing is close enough to be a plausible typo.
func closestName(name string, candidates []string) string {
	const maxDistance = 3
	best, bestDist := "", maxDistance+1
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(name, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
