package schema

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/goccy/go-json"
)

// Dumper is implemented by instances that serialize themselves to a mapping.
type Dumper interface {
	Dump(excludeNone bool) (map[string]any, error)
}

// IsModel reports whether v can be serialized to a mapping: a Dumper,
// a struct, or a non-nil pointer to a struct.
func IsModel(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(Dumper); ok {
		return true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	return rv.Kind() == reflect.Struct
}

// IsSequenceOfModels reports whether v is a slice or array whose every
// element is a model. An empty slice is a sequence of models.
func IsSequenceOfModels(v any) bool {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return false
	}
	for n := range rv.Len() {
		if !IsModel(rv.Index(n).Interface()) {
			return false
		}
	}
	return true
}

// Dump serializes a model to a mapping using its JSON encoding.
// With excludeNone, null values are removed at every nesting level.
func Dump(v any, excludeNone bool) (map[string]any, error) {
	if d, ok := v.(Dumper); ok {
		return d.Dump(excludeNone)
	}
	if !IsModel(v) {
		return nil, fmt.Errorf("%w: %T", ErrNotModel, v)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %T: %w", v, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding %T: %w", v, err)
	}
	if out == nil {
		out = map[string]any{}
	}
	if excludeNone {
		pruneNil(out)
	}
	return out, nil
}

// DumpMany serializes every element of a sequence of models.
func DumpMany(v any, excludeNone bool) ([]map[string]any, error) {
	rv := reflect.ValueOf(v)
	if !IsSequenceOfModels(v) {
		return nil, fmt.Errorf("%w: %T is not a sequence of models", ErrNotModel, v)
	}
	out := make([]map[string]any, 0, rv.Len())
	for n := range rv.Len() {
		m, err := Dump(rv.Index(n).Interface(), excludeNone)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", n, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// pruneNil removes null map entries recursively. Nulls inside sequences are kept.
func pruneNil(v any) {
	switch node := v.(type) {
	case map[string]any:
		for key, value := range node {
			if value == nil {
				delete(node, key)
				continue
			}
			pruneNil(value)
		}
	case []any:
		for _, item := range node {
			pruneNil(item)
		}
	}
}
