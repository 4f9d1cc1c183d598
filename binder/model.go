package binder

import (
	"errors"

	"github.com/dmitrymomot/httpvalidate/pkg/schema"
)

// Outcome is the result of binding one request source.
type Outcome struct {
	// Value is the validated instance, or []any of instances in many mode.
	Value any
	// Issues is non-empty when validation failed.
	Issues schema.Issues
	// Bound is true when a schema was declared for the source.
	Bound bool
}

// Failed reports whether the source failed validation.
func (o Outcome) Failed() bool {
	return len(o.Issues) > 0
}

// Bind validates raw against s.
//
// A nil schema binds nothing and succeeds. In many mode raw must be a
// sequence; every element is validated and issue locations are prefixed with
// the element index. raw is never mutated.
func Bind(raw any, s schema.Schema, many bool) Outcome {
	if s == nil {
		return Outcome{}
	}
	if !many {
		v, issues := s.Validate(raw)
		if len(issues) > 0 {
			return Outcome{Issues: issues, Bound: true}
		}
		return Outcome{Value: v, Bound: true}
	}

	values, err := schema.ValidateMany(s, raw)
	if err != nil {
		var mi *schema.ManyIssues
		if errors.As(err, &mi) {
			return Outcome{Issues: mi.Issues, Bound: true}
		}
		return Outcome{Issues: schema.Issues{{Loc: schema.Loc{}, Msg: err.Error(), Type: "value_error"}}, Bound: true}
	}
	return Outcome{Value: values, Bound: true}
}
