package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Constructors(t *testing.T) {
	tests := []struct {
		name string
		val  Value
		kind Kind
	}{
		{"null", Null(), KindNull},
		{"bool", Bool(true), KindBool},
		{"int", Int(42), KindInt},
		{"float", Float(2.5), KindFloat},
		{"string", String("hi"), KindString},
		{"list", List(Int(1), Int(2)), KindList},
		{"map", Map(E("a", Int(1))), KindMap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.val.Kind())
		})
	}
}

func TestValue_MapPreservesInsertionOrder(t *testing.T) {
	v := Map(E("z", Int(1)), E("a", Int(2)), E("m", Int(3)))
	assert.Equal(t, []string{"z", "a", "m"}, v.Keys())

	// Re-setting an existing key keeps its original position.
	v = v.With("a", Int(9))
	assert.Equal(t, []string{"z", "a", "m"}, v.Keys())
	got, ok := v.Get("a")
	require.True(t, ok)
	assert.True(t, got.Equal(Int(9)))
}

func TestValue_CloneIsDeep(t *testing.T) {
	inner := Map(E("x", Int(1)))
	original := Map(E("nested", inner), E("list", List(Int(1))))

	clone := original.Clone()
	mutated := clone.With("nested", Map(E("x", Int(99))))

	got, ok := original.Get("nested")
	require.True(t, ok)
	x, ok := got.Get("x")
	require.True(t, ok)
	assert.True(t, x.Equal(Int(1)))
	assert.False(t, mutated.Equal(original))
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		def      Value
		override Value
		want     Value
	}{
		{
			name:     "override wins at top level",
			def:      Map(E("timeout", Int(60)), E("retries", Int(3))),
			override: Map(E("timeout", Int(30))),
			want:     Map(E("timeout", Int(30)), E("retries", Int(3))),
		},
		{
			name:     "keys only in default survive",
			def:      Map(E("timeout", Int(30)), E("retries", Int(3))),
			override: Map(E("retries", Int(5))),
			want:     Map(E("timeout", Int(30)), E("retries", Int(5))),
		},
		{
			name: "nested mappings merge recursively",
			def:  Map(E("net", Map(E("timeout", Int(30)), E("proxy", String("none"))))),
			override: Map(
				E("net", Map(E("timeout", Int(10)))),
				E("extra", Bool(true)),
			),
			want: Map(
				E("net", Map(E("timeout", Int(10)), E("proxy", String("none")))),
				E("extra", Bool(true)),
			),
		},
		{
			name:     "lists replaced not concatenated",
			def:      Map(E("hosts", List(String("a"), String("b")))),
			override: Map(E("hosts", List(String("c")))),
			want:     Map(E("hosts", List(String("c")))),
		},
		{
			name:     "non-mapping position replaced wholesale",
			def:      Map(E("x", Map(E("deep", Int(1))))),
			override: Map(E("x", Int(7))),
			want:     Map(E("x", Int(7))),
		},
		{
			name:     "non-mapping default replaced by override",
			def:      Int(1),
			override: Map(E("a", Int(2))),
			want:     Map(E("a", Int(2))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.def, tt.override)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	def := Map(E("a", Map(E("x", Int(1)))))
	override := Map(E("a", Map(E("y", Int(2)))))

	_ = Merge(def, override)

	a, _ := def.Get("a")
	assert.Equal(t, []string{"x"}, a.Keys())
	a, _ = override.Get("a")
	assert.Equal(t, []string{"y"}, a.Keys())
}

func TestValue_JSONRoundTrip(t *testing.T) {
	v := Map(
		E("z", Int(1)),
		E("a", List(Null(), Bool(true), Float(1.5), String("s"))),
		E("nested", Map(E("k", String("v")))),
	)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	// Key order must survive marshaling.
	assert.JSONEq(t, `{"z":1,"a":[null,true,1.5,"s"],"nested":{"k":"v"}}`, string(data))
	assert.Equal(t, `{"z":1,"a":[null,true,1.5,"s"],"nested":{"k":"v"}}`, string(data))

	var back Value
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equal(v))
	assert.Equal(t, []string{"z", "a", "nested"}, back.Keys())
}

func TestFromInterface(t *testing.T) {
	got, err := FromInterface(map[string]any{
		"n": int64(3),
		"f": 1.5,
		"l": []any{"x", true},
	})
	require.NoError(t, err)

	n, ok := got.Get("n")
	require.True(t, ok)
	assert.True(t, n.Equal(Int(3)))
	l, ok := got.Get("l")
	require.True(t, ok)
	assert.Equal(t, 2, l.Len())

	_, err = FromInterface(struct{}{})
	assert.Error(t, err)
}

func TestValue_Accessors(t *testing.T) {
	i, ok := Int(5).AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(5), i)

	// Integers read as floats losslessly.
	f, ok := Int(5).AsFloat()
	require.True(t, ok)
	assert.Equal(t, 5.0, f)

	_, ok = String("x").AsInt()
	assert.False(t, ok)

	elem, ok := List(Int(1), Int(2)).Index(1)
	require.True(t, ok)
	assert.True(t, elem.Equal(Int(2)))
	_, ok = List(Int(1)).Index(5)
	assert.False(t, ok)
}
