package domain

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Package-level validator instance for argument record validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()

// DecodeArgs converts a dynamic Value into the typed argument record T.
// The bridge goes through YAML: the Value is rendered and unmarshaled into
// T, honoring `yaml` struct tags, then struct targets are run through the
// tag validator. Any failure wraps ErrArgDeserialization.
func DecodeArgs[T any](v Value) (T, error) {
	var out T

	data, err := yaml.Marshal(v.Interface())
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrArgDeserialization, err)
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrArgDeserialization, err)
	}

	if isStruct(reflect.ValueOf(&out).Elem()) {
		if err := validate.Struct(out); err != nil {
			return out, fmt.Errorf("%w: %v", ErrArgDeserialization, err)
		}
	}
	return out, nil
}

// EncodeArgs converts a typed argument record back into a Value, preserving
// struct field order in the resulting mapping. It is the inverse of
// DecodeArgs for records whose fields round-trip through YAML.
func EncodeArgs(record any) (Value, error) {
	data, err := yaml.Marshal(record)
	if err != nil {
		return Value{}, fmt.Errorf("encode args: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return Value{}, fmt.Errorf("encode args: %w", err)
	}
	return FromYAML(&node)
}

// ArgTypeName returns the canonical name used for T in error messages.
func ArgTypeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Name() != "" {
		return t.String()
	}
	return t.Kind().String()
}

func isStruct(v reflect.Value) bool {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	return v.Kind() == reflect.Struct
}

// FromYAML converts a decoded yaml.Node tree into a Value, preserving
// mapping key order. Document and alias nodes are resolved transparently.
func FromYAML(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null(), nil
		}
		return FromYAML(node.Content[0])
	case yaml.AliasNode:
		return FromYAML(node.Alias)
	case yaml.SequenceNode:
		elems := make([]Value, 0, len(node.Content))
		for _, child := range node.Content {
			ev, err := FromYAML(child)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, ev)
		}
		return List(elems...), nil
	case yaml.MappingNode:
		out := Map()
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			if key.Kind != yaml.ScalarNode {
				return Value{}, fmt.Errorf("non-scalar mapping key at line %d", key.Line)
			}
			ev, err := FromYAML(node.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			out.put(key.Value, ev)
		}
		return out, nil
	case yaml.ScalarNode:
		return scalarFromYAML(node)
	default:
		return Value{}, fmt.Errorf("unsupported YAML node kind %d", node.Kind)
	}
}

func scalarFromYAML(node *yaml.Node) (Value, error) {
	switch node.Tag {
	case "!!null", "":
		if node.Tag == "" && node.Value != "" {
			return String(node.Value), nil
		}
		return Null(), nil
	case "!!bool":
		b, err := strconv.ParseBool(node.Value)
		if err != nil {
			return Value{}, fmt.Errorf("bad bool %q at line %d", node.Value, node.Line)
		}
		return Bool(b), nil
	case "!!int":
		i, err := strconv.ParseInt(node.Value, 0, 64)
		if err != nil {
			return Value{}, fmt.Errorf("bad int %q at line %d", node.Value, node.Line)
		}
		return Int(i), nil
	case "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return Value{}, fmt.Errorf("bad float %q at line %d", node.Value, node.Line)
		}
		return Float(f), nil
	case "!!str":
		return String(node.Value), nil
	default:
		// Timestamps, binary and custom tags pass through as strings.
		return String(node.Value), nil
	}
}
