package application

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PedroGaya/sandl/internal/domain"
)

const samplePlan = `
init_layer: init
config:
  num_threads: 2
  batch_size: 4
dependencies:
  - dependent: work
    prerequisite: init
slices:
  - name: s_0
    invocations:
      - layer: init
        method: setup
      - layer: work
        method: run
        args:
          factor: 3
          nested:
            flag: true
  - name: s_1
    invocations:
      - layer: work
        method: run
`

func TestPlanLoader_Load(t *testing.T) {
	doc, err := NewPlanLoader().LoadReader(strings.NewReader(samplePlan))
	require.NoError(t, err)

	assert.Equal(t, "init", doc.InitLayer)
	require.NotNil(t, doc.Config)
	assert.Equal(t, 2, doc.Config.NumThreads)
	assert.Equal(t, 4, doc.Config.BatchSize)
	require.Len(t, doc.Dependencies, 1)
	require.Len(t, doc.Slices, 2)

	inv := doc.Slices[0].Invocations[1]
	assert.Equal(t, "work", inv.Layer)
	assert.Equal(t, "run", inv.Method)

	args, err := domain.FromYAML(&inv.Args)
	require.NoError(t, err)
	factor, ok := args.Get("factor")
	require.True(t, ok)
	assert.True(t, factor.Equal(domain.Int(3)))
}

func TestPlanLoader_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "slice without name",
			yaml: "slices:\n  - invocations:\n      - layer: l\n        method: m\n",
		},
		{
			name: "invocation without method",
			yaml: "slices:\n  - name: s\n    invocations:\n      - layer: l\n",
		},
		{
			name: "malformed yaml",
			yaml: "slices: [unclosed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlanLoader().LoadReader(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestPlanLoader_CacheReturnsSameDocument(t *testing.T) {
	loader := NewPlanLoader()

	first, err := loader.LoadReader(strings.NewReader(samplePlan))
	require.NoError(t, err)
	second, err := loader.LoadReader(strings.NewReader(samplePlan))
	require.NoError(t, err)

	assert.Same(t, first, second)

	loader.ClearCache()
	third, err := loader.LoadReader(strings.NewReader(samplePlan))
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestPlanLoader_ConcurrentLoads(t *testing.T) {
	loader := NewPlanLoader()
	var wg sync.WaitGroup
	docs := make([]*PlanDocument, 8)

	for i := range docs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, err := loader.LoadReader(strings.NewReader(samplePlan))
			assert.NoError(t, err)
			docs[i] = doc
		}(i)
	}
	wg.Wait()

	for _, doc := range docs[1:] {
		assert.Same(t, docs[0], doc)
	}
}

func TestPlanLoader_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(samplePlan), 0o644))

	doc, err := NewPlanLoader().LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, doc.Slices, 2)

	_, err = NewPlanLoader().LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPlanDocument_ApplyDrivesEngine(t *testing.T) {
	setup := NewMethod("setup", func(ctx context.Context, _ emptyArgs, sc *domain.Context) (domain.Value, error) {
		sc.Set("base", domain.Int(10))
		return domain.Null(), nil
	})
	type runArgs struct {
		Factor int64 `yaml:"factor"`
	}
	run := NewMethod("run", func(ctx context.Context, args runArgs, sc *domain.Context) (domain.Value, error) {
		base, err := domain.ContextGet[int64](sc, "base")
		if err != nil {
			base = 1
		}
		return domain.Int(base * args.Factor), nil
	}, WithDefaults(domain.Map(domain.E("factor", domain.Int(1)))))

	doc, err := NewPlanLoader().LoadReader(strings.NewReader(samplePlan))
	require.NoError(t, err)

	b := NewBuilder().
		AddLayer(mustLayer(t, "init", setup)).
		AddLayer(mustLayer(t, "work", run))
	require.NoError(t, doc.Apply(b))

	engine, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"init", "work"}, engine.LayerOrder())

	results := engine.Run(context.Background(), SilentNoObserver)
	require.False(t, results.HasFailures())

	// s_0 runs setup then run with factor 3 over base 10.
	got, ok := results.Slice("s_0").Value("work", "run")
	require.True(t, ok)
	assert.True(t, got.Equal(domain.Int(30)))

	// s_1 has no init invocation and no override: default factor over
	// the fallback base.
	got, ok = results.Slice("s_1").Value("work", "run")
	require.True(t, ok)
	assert.True(t, got.Equal(domain.Int(1)))
}
