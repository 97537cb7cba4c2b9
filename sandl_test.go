package sandl_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sandl "github.com/PedroGaya/sandl"
)

type scaleArgs struct {
	Factor int64 `yaml:"factor"`
}

func TestPublicSurface_EndToEnd(t *testing.T) {
	seed := sandl.NewMethod("seed", func(ctx context.Context, _ struct{}, sc *sandl.Context) (sandl.Value, error) {
		sc.Set("base", sandl.Int(10))
		return sandl.Null(), nil
	})
	scale := sandl.NewMethod("scale", func(ctx context.Context, args scaleArgs, sc *sandl.Context) (sandl.Value, error) {
		base, err := sandl.ContextGet[int64](sc, "base")
		if err != nil {
			return sandl.Value{}, err
		}
		return sandl.Int(base * args.Factor), nil
	}, sandl.WithDefaults(sandl.Map(sandl.E("factor", sandl.Int(1)))))

	initLayer, err := sandl.NewLayer("init", seed)
	require.NoError(t, err)
	work, err := sandl.NewLayer("work", scale)
	require.NoError(t, err)

	b := sandl.New().
		AddLayer(initLayer).
		AddLayer(work).
		InitLayer("init").
		Config(sandl.Config{NumThreads: 2})

	for i := int64(0); i < 3; i++ {
		b.AddSlice(sandl.NewSlice(fmt.Sprintf("s_%d", i)).
			Call("init", "seed").
			CallWith("work", "scale", sandl.Map(sandl.E("factor", sandl.Int(i)))))
	}

	engine, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"init", "work"}, engine.LayerOrder())

	results := engine.Run(context.Background(), sandl.SilentNoObserver)

	require.False(t, results.HasFailures())
	for i := int64(0); i < 3; i++ {
		got, ok := results.Slice(fmt.Sprintf("s_%d", i)).Value("work", "scale")
		require.True(t, ok)
		assert.True(t, got.Equal(sandl.Int(10*i)))
	}
}

func TestPublicSurface_BuildErrors(t *testing.T) {
	l, err := sandl.NewLayer("layers")
	require.NoError(t, err)

	_, err = sandl.New().
		AddLayer(l).
		AddSlice(sandl.NewSlice("s").Call("layer", "m")).
		Build()

	require.Error(t, err)
	assert.ErrorIs(t, err, sandl.ErrUnknownLayer)
	assert.Contains(t, err.Error(), `did you mean "layers"?`)
}

func TestPublicSurface_ValueHelpers(t *testing.T) {
	v := sandl.Map(
		sandl.E("a", sandl.List(sandl.Int(1), sandl.Float(2.5))),
		sandl.E("b", sandl.Bool(true)),
	)
	assert.Equal(t, sandl.KindMap, v.Kind())

	merged := sandl.Merge(
		sandl.Map(sandl.E("x", sandl.Int(1)), sandl.E("y", sandl.Int(2))),
		sandl.Map(sandl.E("y", sandl.Int(9))),
	)
	y, ok := merged.Get("y")
	require.True(t, ok)
	assert.True(t, y.Equal(sandl.Int(9)))
}
