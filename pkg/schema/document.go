package schema

import (
	"fmt"

	"github.com/goccy/go-json"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// Record is an instance validated by a Document schema.
type Record map[string]any

// Dump returns a deep copy of the record, without null values when excludeNone is set.
func (r Record) Dump(excludeNone bool) (map[string]any, error) {
	out, _ := normalize(map[string]any(r)).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}
	if excludeNone {
		pruneNil(out)
	}
	return out, nil
}

// Document is a schema described by a raw JSON Schema document.
// It lets routes declare schemas in configuration instead of Go types.
type Document struct {
	name     string
	fields   fieldSet
	compiled *sjsonschema.Schema
}

// FromDocument builds a schema from a JSON Schema document written in YAML
// or JSON. Object instances validate into Record values; other root types
// are returned as decoded.
//
//	search, err := schema.FromDocument("Search", []byte(`
//	type: object
//	required: [term]
//	properties:
//	  term: {type: string, minLength: 1}
//	  page: {type: integer, default: 1}
//	  tags: {type: array, items: {type: string}}
//	`))
func FromDocument(name string, data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalidSchema, name, err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalidSchema, name)
	}

	var doc map[string]any
	if err := root.Content[0].Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrInvalidSchema, name, err)
	}
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding %s: %v", ErrInvalidSchema, name, err)
	}
	compiled, err := compile(encoded)
	if err != nil {
		return nil, err
	}

	fields := newFieldSet()
	required := stringSet(doc["required"])
	props, _ := doc["properties"].(map[string]any)
	for _, propName := range propertyOrder(root.Content[0]) {
		prop, _ := props[propName].(map[string]any)
		types := schemaTypes(prop["type"])
		f := Field{
			Name:     propName,
			Required: required[propName],
			Sequence: types["array"],
			Kind:     kindFromTypes(types),
		}
		if f.Sequence {
			items, _ := prop["items"].(map[string]any)
			f.Kind = kindFromTypes(schemaTypes(items["type"]))
		}
		fields.add(f)
		if types["null"] {
			fields.nullable[propName] = true
		}
		if def, ok := prop["default"]; ok {
			fields.defaults[propName] = normalize(def)
		}
	}

	return &Document{name: name, fields: fields, compiled: compiled}, nil
}

// MustFromDocument is like FromDocument but panics on error.
func MustFromDocument(name string, data []byte) *Document {
	d, err := FromDocument(name, data)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Document) Name() string { return d.name }

func (d *Document) Field(name string) (Field, bool) {
	return d.fields.lookup(name)
}

func (d *Document) Validate(raw any) (any, Issues) {
	prepared := d.fields.prepare(normalize(raw))
	if err := d.compiled.Validate(prepared); err != nil {
		return nil, d.fields.issues(d.name, err, raw, prepared)
	}
	if obj, ok := prepared.(map[string]any); ok {
		return Record(obj), nil
	}
	return prepared, nil
}

// propertyOrder returns the keys of the top-level properties mapping in document order.
func propertyOrder(doc *yaml.Node) []string {
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "properties" {
			continue
		}
		props := doc.Content[i+1]
		if props.Kind != yaml.MappingNode {
			return nil
		}
		names := make([]string, 0, len(props.Content)/2)
		for j := 0; j+1 < len(props.Content); j += 2 {
			names = append(names, props.Content[j].Value)
		}
		return names
	}
	return nil
}

func stringSet(v any) map[string]bool {
	out := make(map[string]bool)
	items, _ := v.([]any)
	for _, item := range items {
		if s, ok := item.(string); ok {
			out[s] = true
		}
	}
	return out
}

func schemaTypes(v any) map[string]bool {
	switch t := v.(type) {
	case string:
		return map[string]bool{t: true}
	case []any:
		return stringSet(t)
	}
	return map[string]bool{}
}

func kindFromTypes(types map[string]bool) Kind {
	switch {
	case types["integer"]:
		return KindInteger
	case types["number"]:
		return KindNumber
	case types["boolean"]:
		return KindBoolean
	case types["string"]:
		return KindString
	case types["object"]:
		return KindObject
	case types["array"]:
		return KindArray
	}
	return KindAny
}
