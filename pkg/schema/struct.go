package schema

import (
	"bytes"
	"encoding"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

var textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()

// Struct is a schema backed by the Go struct type T.
//
// Input names come from `json` tags. A field is required unless it is a
// pointer, is tagged omitempty, or declares a default; `jsonschema:"required"`
// forces it. Defaults and constraints use invopop `jsonschema` tags:
//
//	type SearchQuery struct {
//		Term  string   `json:"term" jsonschema:"minLength=1"`
//		Page  int      `json:"page" jsonschema:"default=1,minimum=1"`
//		Tags  []string `json:"tags,omitempty"`
//		Since *string  `json:"since"`
//	}
//
// Validated instances are values of type T.
type Struct[T any] struct {
	name     string
	fields   fieldSet
	document []byte
	compiled *sjsonschema.Schema
}

// For returns the schema for struct type T. Compiled schemas are cached per type.
func For[T any]() (*Struct[T], error) {
	t := reflect.TypeFor[T]()
	if cached, ok := cache.get(t); ok {
		if s, ok := cached.(*Struct[T]); ok {
			return s, nil
		}
	}

	s, err := newStruct[T](t)
	if err != nil {
		return nil, err
	}
	cache.add(t, s)
	return s, nil
}

// MustFor is like For but panics when the schema cannot be built.
// Use it for package-level schema declarations.
func MustFor[T any]() *Struct[T] {
	s, err := For[T]()
	if err != nil {
		panic(err)
	}
	return s
}

func newStruct[T any](t reflect.Type) (*Struct[T], error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v is not a struct type", ErrInvalidSchema, t)
	}

	reflector := &jsonschema.Reflector{
		ExpandedStruct:             true,
		DoNotReference:             true,
		Anonymous:                  true,
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	js := reflector.ReflectFromType(t)
	applyRequired(js, t)

	document, err := json.Marshal(js)
	if err == nil {
		document, err = constrain(document, t)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling %s: %v", ErrInvalidSchema, t.Name(), err)
	}
	compiled, err := compile(document)
	if err != nil {
		return nil, err
	}

	fields := newFieldSet()
	for _, sf := range structFields(t) {
		fields.add(Field{
			Name:     sf.name,
			Required: sf.required,
			Sequence: isSequence(sf.typ),
			Kind:     fieldKind(sf.typ),
		})
		if js.Properties == nil {
			continue
		}
		if prop, ok := js.Properties.Get(sf.name); ok && prop != nil && prop.Default != nil {
			fields.defaults[sf.name] = normalize(prop.Default)
		}
	}

	return &Struct[T]{
		name:     t.Name(),
		fields:   fields,
		document: document,
		compiled: compiled,
	}, nil
}

func (s *Struct[T]) Name() string { return s.name }

func (s *Struct[T]) Field(name string) (Field, bool) {
	return s.fields.lookup(name)
}

// Document returns the JSON Schema document the struct compiles to.
func (s *Struct[T]) Document() []byte {
	return slices.Clone(s.document)
}

func (s *Struct[T]) Validate(raw any) (any, Issues) {
	v, issues := s.ValidateTyped(raw)
	if len(issues) > 0 {
		return nil, issues
	}
	return v, nil
}

// ValidateTyped is Validate with a typed result.
func (s *Struct[T]) ValidateTyped(raw any) (T, Issues) {
	var out T

	prepared := s.fields.prepare(normalize(raw))
	if err := s.compiled.Validate(prepared); err != nil {
		return out, s.fields.issues(s.name, err, raw, prepared)
	}

	data, err := json.Marshal(prepared)
	if err == nil {
		err = json.Unmarshal(data, &out)
	}
	if err != nil {
		return out, Issues{{
			Loc:      Loc{},
			Msg:      err.Error(),
			Type:     "value_error",
			Input:    raw,
			HasInput: true,
		}}
	}
	return out, nil
}

type structField struct {
	name     string
	typ      reflect.Type
	required bool
}

// structFields lists the JSON-visible fields of t, flattening untagged embedded structs.
func structFields(t reflect.Type) []structField {
	var out []structField
	for i := range t.NumField() {
		f := t.Field(i)
		jsonTag := f.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(jsonTag, ",")

		if f.Anonymous && name == "" {
			et := deref(f.Type)
			if et.Kind() == reflect.Struct {
				out = append(out, structFields(et)...)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}

		schemaTags := strings.Split(f.Tag.Get("jsonschema"), ",")
		optional := f.Type.Kind() == reflect.Pointer ||
			hasOption(opts, "omitempty") ||
			slices.ContainsFunc(schemaTags, func(tag string) bool { return strings.HasPrefix(tag, "default=") })

		out = append(out, structField{
			name:     name,
			typ:      f.Type,
			required: !optional || slices.Contains(schemaTags, "required"),
		})
	}
	return out
}

// applyRequired replaces the reflected required lists with the field rules above,
// recursing into nested structs and sequences of structs.
func applyRequired(js *jsonschema.Schema, t reflect.Type) {
	if js == nil {
		return
	}
	t = deref(t)
	switch t.Kind() {
	case reflect.Struct:
		if js.Properties == nil {
			return
		}
		js.Required = nil
		for _, sf := range structFields(t) {
			prop, ok := js.Properties.Get(sf.name)
			if !ok {
				continue
			}
			if sf.required {
				js.Required = append(js.Required, sf.name)
			}
			applyRequired(prop, sf.typ)
		}
	case reflect.Slice, reflect.Array:
		applyRequired(js.Items, t.Elem())
	}
}

// constrain adjusts the reflected document to what T can hold: pointer
// properties accept null at any depth and sized integers are bounded to
// their Go range.
func constrain(document []byte, t reflect.Type) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(document))
	dec.UseNumber()
	var root map[string]any
	if err := dec.Decode(&root); err != nil {
		return nil, err
	}
	constrainProp(root, t)
	return json.Marshal(root)
}

func constrainProp(prop map[string]any, t reflect.Type) {
	if prop == nil {
		return
	}
	if t.Kind() == reflect.Pointer {
		allowNull(prop)
	}
	t = deref(t)
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return
	}

	switch t.Kind() {
	case reflect.Struct:
		props, _ := prop["properties"].(map[string]any)
		for _, sf := range structFields(t) {
			sub, _ := props[sf.name].(map[string]any)
			constrainProp(sub, sf.typ)
		}
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return
		}
		items, _ := prop["items"].(map[string]any)
		constrainProp(items, t.Elem())
	default:
		lo, hi, ok := intBounds(t.Kind())
		if !ok {
			return
		}
		if _, set := prop["minimum"]; !set {
			prop["minimum"] = lo
		}
		if _, set := prop["maximum"]; !set {
			prop["maximum"] = hi
		}
	}
}

func allowNull(prop map[string]any) {
	switch typ := prop["type"].(type) {
	case string:
		if typ != "null" {
			prop["type"] = []any{typ, "null"}
		}
	case []any:
		if !slices.Contains(typ, any("null")) {
			prop["type"] = append(typ, "null")
		}
	default:
		return
	}
	if enum, ok := prop["enum"].([]any); ok && !slices.Contains(enum, nil) {
		prop["enum"] = append(enum, nil)
	}
}

func intBounds(k reflect.Kind) (lo, hi json.Number, ok bool) {
	signed := func(from, to int64) (json.Number, json.Number, bool) {
		return json.Number(strconv.FormatInt(from, 10)), json.Number(strconv.FormatInt(to, 10)), true
	}
	unsigned := func(to uint64) (json.Number, json.Number, bool) {
		return json.Number("0"), json.Number(strconv.FormatUint(to, 10)), true
	}

	switch k {
	case reflect.Int8:
		return signed(math.MinInt8, math.MaxInt8)
	case reflect.Int16:
		return signed(math.MinInt16, math.MaxInt16)
	case reflect.Int32:
		return signed(math.MinInt32, math.MaxInt32)
	case reflect.Int, reflect.Int64:
		return signed(math.MinInt64, math.MaxInt64)
	case reflect.Uint8:
		return unsigned(math.MaxUint8)
	case reflect.Uint16:
		return unsigned(math.MaxUint16)
	case reflect.Uint32:
		return unsigned(math.MaxUint32)
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return unsigned(math.MaxUint64)
	}
	return "", "", false
}

func hasOption(opts, name string) bool {
	for opt := range strings.SplitSeq(opts, ",") {
		if opt == name {
			return true
		}
	}
	return false
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func isSequence(t reflect.Type) bool {
	t = deref(t)
	if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
		return false
	}
	return t.Kind() == reflect.Slice || t.Kind() == reflect.Array
}

// fieldKind returns the scalar kind of t, or of its elements for sequences.
func fieldKind(t reflect.Type) Kind {
	if isSequence(t) {
		t = deref(t).Elem()
	}
	return kindOf(t)
}

func kindOf(t reflect.Type) Kind {
	t = deref(t)
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return KindString
	}
	switch t.Kind() {
	case reflect.String:
		return KindString
	case reflect.Bool:
		return KindBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindInteger
	case reflect.Float32, reflect.Float64:
		return KindNumber
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return KindString
		}
		return KindArray
	case reflect.Struct, reflect.Map:
		return KindObject
	}
	return KindAny
}
