package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/goccy/go-json"
)

var (
	// ErrInvalidSchema is returned when a schema cannot be built or compiled.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrNotModel is returned when a value cannot be serialized to a mapping.
	ErrNotModel = errors.New("value is not a model")
)

// Schema is a named record type that turns raw input into a typed instance.
// Implementations must be safe for concurrent use.
type Schema interface {
	// Name identifies the schema in error context.
	Name() string
	// Field reports the declared field with the given input name.
	Field(name string) (Field, bool)
	// Validate returns the typed instance built from raw, or the issues found.
	// Validate never mutates raw.
	Validate(raw any) (any, Issues)
}

// Kind is the coarse JSON type of a declared field.
type Kind uint8

const (
	KindAny Kind = iota
	KindString
	KindInteger
	KindNumber
	KindBoolean
	KindObject
	KindArray
)

// Field describes a declared schema field.
type Field struct {
	Name     string
	Required bool
	// Sequence is true for list-typed fields, optional or not.
	Sequence bool
	// Kind is the field kind; for sequences it is the element kind.
	Kind Kind
}

// Loc is the path to an offending value: field names and sequence indexes.
type Loc []any

// Issue is a single structured validation failure.
type Issue struct {
	Loc  Loc
	Msg  string
	Type string
	// Input is the offending raw value; it is serialized only when HasInput is set.
	Input    any
	HasInput bool
	Ctx      map[string]any
}

// MarshalJSON encodes the issue with keys loc, msg, type, input and ctx.
func (i Issue) MarshalJSON() ([]byte, error) {
	loc := i.Loc
	if loc == nil {
		loc = Loc{}
	}
	wire := struct {
		Loc   Loc            `json:"loc"`
		Msg   string         `json:"msg"`
		Type  string         `json:"type"`
		Input *any           `json:"input,omitempty"`
		Ctx   map[string]any `json:"ctx,omitempty"`
	}{Loc: loc, Msg: i.Msg, Type: i.Type, Ctx: i.Ctx}
	if i.HasInput {
		in := i.Input
		wire.Input = &in
	}
	return json.Marshal(wire)
}

// Issues is an ordered list of validation failures.
type Issues []Issue

func (is Issues) Error() string {
	if len(is) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(is))
	for _, i := range is {
		parts = append(parts, fmt.Sprintf("%s: %s", i.Loc, i.Msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Prefix returns copies of the issues with segments prepended to each location.
func (is Issues) Prefix(segments ...any) Issues {
	if len(is) == 0 {
		return nil
	}
	out := make(Issues, len(is))
	for n, i := range is {
		loc := make(Loc, 0, len(segments)+len(i.Loc))
		loc = append(loc, segments...)
		loc = append(loc, i.Loc...)
		i.Loc = loc
		out[n] = i
	}
	return out
}

func (l Loc) String() string {
	parts := make([]string, len(l))
	for n, seg := range l {
		parts[n] = fmt.Sprint(seg)
	}
	return strings.Join(parts, ".")
}

// ManyIssues reports the issues found while validating a sequence of models.
type ManyIssues struct {
	Issues Issues
}

func (e *ManyIssues) Error() string {
	return "many models: " + e.Issues.Error()
}

func (e *ManyIssues) Unwrap() error {
	return e.Issues
}

// ValidateMany validates every element of raw against s.
// raw must be a sequence; each issue location is prefixed with its element index.
// On failure the returned error is a *ManyIssues.
func ValidateMany(s Schema, raw any) ([]any, error) {
	items, ok := asSlice(raw)
	if !ok {
		return nil, &ManyIssues{Issues: Issues{{
			Loc:  Loc{"root"},
			Msg:  "is not an array of objects",
			Type: "type_error.array",
		}}}
	}

	values := make([]any, 0, len(items))
	var all Issues
	for n, item := range items {
		v, issues := s.Validate(item)
		if len(issues) > 0 {
			all = append(all, issues.Prefix(n)...)
			continue
		}
		values = append(values, v)
	}
	if len(all) > 0 {
		return nil, &ManyIssues{Issues: all}
	}
	return values, nil
}

func asSlice(raw any) ([]any, bool) {
	if items, ok := raw.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(raw)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return nil, false
	}
	items := make([]any, rv.Len())
	for n := range rv.Len() {
		items[n] = rv.Index(n).Interface()
	}
	return items, true
}
