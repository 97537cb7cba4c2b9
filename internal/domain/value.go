// Package domain contains pure, dependency-light domain models and types
// for the execution engine.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind int

// The complete set of Value variants. The set mirrors JSON: null, bool,
// number (split into integer and float), string, array, and object.
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
)

// String returns the lowercase name of the kind for error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a self-describing, JSON-compatible tagged union used at every
// dynamic boundary of the engine: method arguments, defaults, results, and
// context entries. Mapping values preserve key insertion order so that
// serialized output is stable. Values carry no reference to engine state and
// are freely cloneable.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	list []Value
	keys []string
	m    map[string]Value
}

// Entry is a single key/value pair used to build ordered mappings.
type Entry struct {
	Key string
	Val Value
}

// E builds a mapping entry. It exists purely for literal ergonomics:
//
//	Map(E("timeout", Int(30)), E("retries", Int(3)))
func E(key string, val Value) Entry { return Entry{Key: key, Val: val} }

// Null returns the null Value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating-point Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// List returns a list Value holding the given elements in order.
func List(elems ...Value) Value {
	v := Value{kind: KindList, list: make([]Value, len(elems))}
	copy(v.list, elems)
	return v
}

// Map returns a mapping Value with the given entries in declaration order.
// A repeated key replaces the earlier value but keeps its original position.
func Map(entries ...Entry) Value {
	v := Value{kind: KindMap, keys: make([]string, 0, len(entries)), m: make(map[string]Value, len(entries))}
	for _, e := range entries {
		v.put(e.Key, e.Val)
	}
	return v
}

func (v *Value) put(key string, val Value) {
	if _, exists := v.m[key]; !exists {
		v.keys = append(v.keys, key)
	}
	v.m[key] = val
}

// Kind reports which variant this Value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload, with ok=false on a kind mismatch.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns the integer payload, with ok=false on a kind mismatch.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat returns the numeric payload as a float64. Integer values convert
// losslessly; ok=false for any non-numeric kind.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// AsString returns the string payload, with ok=false on a kind mismatch.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// Len returns the element count for lists, the key count for mappings, and
// zero for every scalar kind.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindMap:
		return len(v.keys)
	default:
		return 0
	}
}

// Index returns the i-th list element. ok is false when the value is not a
// list or the index is out of range.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindList || i < 0 || i >= len(v.list) {
		return Value{}, false
	}
	return v.list[i], true
}

// Elems returns a copy of the list elements, or nil for non-lists.
func (v Value) Elems() []Value {
	if v.kind != KindList {
		return nil
	}
	out := make([]Value, len(v.list))
	copy(out, v.list)
	return out
}

// Get returns the mapping value for key. ok is false when the value is not a
// mapping or the key is absent.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	val, ok := v.m[key]
	return val, ok
}

// Keys returns the mapping keys in insertion order, or nil for non-mappings.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

// With returns a copy of a mapping with key set to val. Calling With on a
// non-mapping returns a fresh single-entry mapping.
func (v Value) With(key string, val Value) Value {
	if v.kind != KindMap {
		return Map(E(key, val))
	}
	out := v.Clone()
	out.put(key, val)
	return out
}

// Clone returns a deep copy sharing no mutable state with the receiver.
func (v Value) Clone() Value {
	switch v.kind {
	case KindList:
		out := Value{kind: KindList, list: make([]Value, len(v.list))}
		for i, e := range v.list {
			out.list[i] = e.Clone()
		}
		return out
	case KindMap:
		out := Value{kind: KindMap, keys: make([]string, len(v.keys)), m: make(map[string]Value, len(v.m))}
		copy(out.keys, v.keys)
		for k, e := range v.m {
			out.m[k] = e.Clone()
		}
		return out
	default:
		return v
	}
}

// Equal reports semantic equality. Mappings compare by key set and per-key
// value; key order does not participate. Integers and floats are distinct
// kinds and never compare equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindString:
		return v.s == o.s
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, ve := range v.m {
			oe, ok := o.m[k]
			if !ok || !ve.Equal(oe) {
				return false
			}
		}
		return true
	}
	return false
}

// Merge deep-merges override into def and returns the result. For mapping
// positions, keys present in override replace keys in def, recursing where
// both sides are mappings. Any non-mapping position is replaced wholesale;
// lists are replaced, never concatenated. Neither input is modified.
func Merge(def, override Value) Value {
	if def.kind != KindMap || override.kind != KindMap {
		return override.Clone()
	}
	out := def.Clone()
	for _, k := range override.keys {
		ov := override.m[k]
		if dv, ok := out.m[k]; ok && dv.kind == KindMap && ov.kind == KindMap {
			out.put(k, Merge(dv, ov))
			continue
		}
		out.put(k, ov.Clone())
	}
	return out
}

// Interface converts the Value into the equivalent tree of Go built-ins:
// nil, bool, int64, float64, string, []any, and map[string]any. Mapping key
// order is not representable in a Go map and is lost.
func (v Value) Interface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, e := range v.m {
			out[k] = e.Interface()
		}
		return out
	}
	return nil
}

// FromInterface converts a tree of Go built-ins (the shapes produced by
// encoding/json and yaml.v3 decoding) into a Value. Unsupported types
// return an error naming the offending Go type.
func FromInterface(in any) (Value, error) {
	switch t := in.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return Value{}, fmt.Errorf("integer %d overflows int64", t)
		}
		return Int(int64(t)), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case string:
		return String(t), nil
	case []any:
		elems := make([]Value, len(t))
		for i, e := range t {
			ev, err := FromInterface(e)
			if err != nil {
				return Value{}, err
			}
			elems[i] = ev
		}
		return List(elems...), nil
	case map[string]any:
		out := Map()
		for _, k := range sortedKeys(t) {
			ev, err := FromInterface(t[k])
			if err != nil {
				return Value{}, err
			}
			out.put(k, ev)
		}
		return out, nil
	default:
		return Value{}, fmt.Errorf("unsupported type %T", in)
	}
}

// MarshalJSON implements json.Marshaler, writing mapping keys in insertion
// order so output is byte-stable across runs.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		buf.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		data, err := json.Marshal(v.f)
		if err != nil {
			return err
		}
		buf.Write(data)
	case KindString:
		data, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(data)
	case KindList:
		buf.WriteByte('[')
		for i, e := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := v.m[k].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler, preserving object key order.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	parsed, err := decodeJSONValue(dec)
	if err != nil {
		return err
	}
	// Reject trailing garbage after the first value.
	if _, err := dec.Token(); err == nil {
		return fmt.Errorf("trailing data after JSON value")
	}
	*v = parsed
	return nil
}

func decodeJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeJSONToken(dec, tok)
}

func decodeJSONToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		if i, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, err
		}
		return Float(f), nil
	case json.Delim:
		switch t {
		case '[':
			out := Value{kind: KindList}
			for dec.More() {
				elem, err := decodeJSONValue(dec)
				if err != nil {
					return Value{}, err
				}
				out.list = append(out.list, elem)
			}
			_, err := dec.Token() // Consume ']'.
			return out, err
		case '{':
			out := Map()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("non-string object key %v", keyTok)
				}
				elem, err := decodeJSONValue(dec)
				if err != nil {
					return Value{}, err
				}
				out.put(key, elem)
			}
			_, err := dec.Token() // Consume '}'.
			return out, err
		}
	}
	return Value{}, fmt.Errorf("unexpected JSON token %v", tok)
}

// String returns a compact JSON rendering for debugging and error messages.
func (v Value) String() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("value(%s)", v.kind)
	}
	return string(data)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Insertion order is unknowable for a Go map; sort for determinism.
	sort.Strings(keys)
	return keys
}
