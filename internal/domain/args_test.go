package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetchArgs struct {
	Timeout int    `yaml:"timeout"`
	Retries int    `yaml:"retries"`
	URL     string `yaml:"url"`
}

type validatedArgs struct {
	Count int `yaml:"count" validate:"min=1"`
}

func TestDecodeArgs(t *testing.T) {
	tests := []struct {
		name    string
		value   Value
		want    fetchArgs
		wantErr bool
	}{
		{
			name:  "full record",
			value: Map(E("timeout", Int(30)), E("retries", Int(5)), E("url", String("http://x"))),
			want:  fetchArgs{Timeout: 30, Retries: 5, URL: "http://x"},
		},
		{
			name:  "missing fields stay zero",
			value: Map(E("timeout", Int(10))),
			want:  fetchArgs{Timeout: 10},
		},
		{
			name:  "empty mapping decodes to zero record",
			value: Map(),
			want:  fetchArgs{},
		},
		{
			name:    "kind mismatch fails",
			value:   Map(E("timeout", String("soon"))),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeArgs[fetchArgs](tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrArgDeserialization)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeArgs_ValidatorTags(t *testing.T) {
	_, err := DecodeArgs[validatedArgs](Map(E("count", Int(0))))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrArgDeserialization)

	got, err := DecodeArgs[validatedArgs](Map(E("count", Int(2))))
	require.NoError(t, err)
	assert.Equal(t, 2, got.Count)
}

func TestEncodeArgs_PreservesFieldOrder(t *testing.T) {
	v, err := EncodeArgs(fetchArgs{Timeout: 30, Retries: 3, URL: "u"})
	require.NoError(t, err)
	assert.Equal(t, []string{"timeout", "retries", "url"}, v.Keys())
}

func TestArgs_RoundTrip(t *testing.T) {
	// A default that decodes, re-encodes, and merges with an empty
	// override must be semantically unchanged.
	def := Map(E("timeout", Int(30)), E("retries", Int(3)), E("url", String("http://x")))

	record, err := DecodeArgs[fetchArgs](def)
	require.NoError(t, err)

	encoded, err := EncodeArgs(record)
	require.NoError(t, err)

	merged := Merge(encoded, Map())
	assert.True(t, merged.Equal(def), "got %s, want %s", merged, def)
}

func TestDecodeArgs_ScalarTarget(t *testing.T) {
	n, err := DecodeArgs[int](Int(7))
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = DecodeArgs[int](String("seven"))
	assert.Error(t, err)
}

func TestArgTypeName(t *testing.T) {
	assert.Equal(t, "domain.fetchArgs", ArgTypeName[fetchArgs]())
	assert.Equal(t, "int", ArgTypeName[int]())
}

func TestDecodeArgs_ErrorIsNotExecution(t *testing.T) {
	_, err := DecodeArgs[fetchArgs](Map(E("timeout", List(Int(1)))))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMethodExecution))
}
