package schema

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// fieldSet is the declared shape shared by every schema engine in this package.
type fieldSet struct {
	fields   map[string]Field
	order    map[string]int
	defaults map[string]any
	nullable map[string]bool
}

func newFieldSet() fieldSet {
	return fieldSet{
		fields:   make(map[string]Field),
		order:    make(map[string]int),
		defaults: make(map[string]any),
		nullable: make(map[string]bool),
	}
}

func (fs fieldSet) add(f Field) {
	if _, exists := fs.fields[f.Name]; !exists {
		fs.order[f.Name] = len(fs.order)
	}
	fs.fields[f.Name] = f
}

func (fs fieldSet) lookup(name string) (Field, bool) {
	f, ok := fs.fields[name]
	return f, ok
}

// prepare returns a shallow copy of raw ready for validation: string inputs
// are coerced to the declared field kinds, nulls are dropped for optional
// fields that do not accept null, and defaults fill absent keys. Non-object input is returned as is.
func (fs fieldSet) prepare(raw any) any {
	obj, ok := raw.(map[string]any)
	if !ok {
		return raw
	}

	out := make(map[string]any, len(obj)+len(fs.defaults))
	for key, value := range obj {
		f, declared := fs.fields[key]
		if !declared {
			out[key] = value
			continue
		}
		if value == nil && !f.Required && !fs.nullable[key] {
			continue
		}
		out[key] = coerceField(f, value)
	}
	for key, def := range fs.defaults {
		if _, present := out[key]; !present {
			out[key] = def
		}
	}
	return out
}

func coerceField(f Field, value any) any {
	if !f.Sequence {
		return coerceScalar(f.Kind, value)
	}
	items, ok := value.([]any)
	if !ok {
		return value
	}
	out := make([]any, len(items))
	for n, item := range items {
		out[n] = coerceScalar(f.Kind, item)
	}
	return out
}

// coerceScalar converts string input (query and form values) into the JSON
// value of the declared kind. Values that do not parse are returned unchanged
// so validation reports them.
func coerceScalar(k Kind, value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	trimmed := strings.TrimSpace(s)

	switch k {
	case KindInteger:
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return json.Number(strconv.FormatInt(n, 10))
		}
	case KindNumber:
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return json.Number(strconv.FormatFloat(f, 'g', -1, 64))
		}
	case KindBoolean:
		switch strings.ToLower(trimmed) {
		case "true", "1", "yes", "on", "t", "y":
			return true
		case "false", "0", "no", "off", "f", "n":
			return false
		}
	}
	return value
}

// normalize converts v into plain JSON values (maps, slices, json.Number,
// strings, bools, nil) by round-tripping it through the encoder.
// Values that cannot be encoded are returned unchanged.
func normalize(v any) any {
	switch v.(type) {
	case nil, string, bool, json.Number:
		return v
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return v
	}
	return out
}
