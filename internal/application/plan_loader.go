package application

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/PedroGaya/sandl/internal/domain"
)

// PlanDocument is the declarative half of an engine: slices with their
// invocations and arguments, dependency edges, the init layer, and the
// resource configuration. Layers stay in code, where the bound
// implementations live; plans describe how to fan them out.
type PlanDocument struct {
	// InitLayer optionally names the universal-prerequisite layer.
	InitLayer string `yaml:"init_layer"`

	// Config optionally overrides the engine's resource configuration.
	Config *Config `yaml:"config"`

	// Dependencies are the declared layer ordering edges.
	Dependencies []PlanDependency `yaml:"dependencies" validate:"dive"`

	// Slices declare the work units.
	Slices []PlanSlice `yaml:"slices" validate:"dive"`
}

// PlanDependency is one declared edge: dependent runs after prerequisite.
type PlanDependency struct {
	Dependent    string `yaml:"dependent" validate:"required"`
	Prerequisite string `yaml:"prerequisite" validate:"required"`
}

// PlanSlice declares one slice and its ordered invocations.
type PlanSlice struct {
	Name        string           `yaml:"name" validate:"required"`
	Invocations []PlanInvocation `yaml:"invocations" validate:"dive"`
}

// PlanInvocation declares one method call. Args is optional; when present
// it is deep-merged over the method's default at dispatch.
type PlanInvocation struct {
	Layer  string    `yaml:"layer" validate:"required"`
	Method string    `yaml:"method" validate:"required"`
	Args   yaml.Node `yaml:"args"`
}

// Apply registers the document's slices, dependencies, init layer and
// config on the builder. Name resolution against layers happens later in
// Build, where the bound methods are known.
func (d *PlanDocument) Apply(b *Builder) error {
	for _, ps := range d.Slices {
		s := NewSlice(ps.Name)
		for _, pi := range ps.Invocations {
			if pi.Args.IsZero() {
				s.Call(pi.Layer, pi.Method)
				continue
			}
			args, err := domain.FromYAML(&pi.Args)
			if err != nil {
				return fmt.Errorf("slice %q: args for %s.%s: %w", ps.Name, pi.Layer, pi.Method, err)
			}
			s.CallWith(pi.Layer, pi.Method, args)
		}
		b.AddSlice(s)
	}
	for _, dep := range d.Dependencies {
		b.Dependency(dep.Dependent, dep.Prerequisite)
	}
	if d.InitLayer != "" {
		b.InitLayer(d.InitLayer)
	}
	if d.Config != nil {
		b.Config(*d.Config)
	}
	return nil
}

// PlanLoader parses, validates and caches plan documents. Parsed plans are
// cached by SHA-256 of the source bytes, and concurrent loads of the same
// bytes are collapsed into one parse with singleflight. Cached documents
// are shared; callers must treat them as read-only.
type PlanLoader struct {
	validator *validator.Validate

	cacheMu sync.RWMutex
	cache   map[string]*PlanDocument

	sf singleflight.Group
}

// NewPlanLoader creates a plan loader with an empty cache.
func NewPlanLoader() *PlanLoader {
	return &PlanLoader{
		validator: validator.New(),
		cache:     make(map[string]*PlanDocument),
	}
}

// LoadFile loads a plan document from a YAML file.
func (pl *PlanLoader) LoadFile(path string) (*PlanDocument, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return pl.load(data)
}

// LoadReader loads a plan document from any reader.
func (pl *PlanLoader) LoadReader(r io.Reader) (*PlanDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return pl.load(data)
}

func (pl *PlanLoader) load(data []byte) (*PlanDocument, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	if doc, ok := pl.cached(hash); ok {
		return doc, nil
	}

	v, err, _ := pl.sf.Do(hash, func() (any, error) {
		// Re-check inside singleflight: a racing goroutine may have
		// populated the cache between the lookup and Do.
		if doc, ok := pl.cached(hash); ok {
			return doc, nil
		}

		var doc PlanDocument
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse plan: %w", err)
		}
		if err := pl.validator.Struct(&doc); err != nil {
			return nil, fmt.Errorf("invalid plan: %w", err)
		}

		pl.cacheMu.Lock()
		pl.cache[hash] = &doc
		pl.cacheMu.Unlock()
		return &doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*PlanDocument), nil
}

func (pl *PlanLoader) cached(hash string) (*PlanDocument, bool) {
	pl.cacheMu.RLock()
	defer pl.cacheMu.RUnlock()
	doc, ok := pl.cache[hash]
	return doc, ok
}

// ClearCache drops every cached document.
func (pl *PlanLoader) ClearCache() {
	pl.cacheMu.Lock()
	defer pl.cacheMu.Unlock()
	pl.cache = make(map[string]*PlanDocument)
}
