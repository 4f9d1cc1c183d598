package binder

import (
	"net/http"
	"net/url"

	"github.com/dmitrymomot/httpvalidate/pkg/schema"
)

// ConvertQuery turns multi-valued parameters into the mapping a schema validates.
//
// Keys declared by s as sequences keep all their values, even when only one
// was sent, so ?tags=go binds to []string{"go"}. Other keys collapse a single
// value to a scalar and keep repeated values as a list:
//
//	?page=2          -> {"page": "2"}
//	?page=2&page=3   -> {"page": ["2", "3"]}
//
// A nil schema declares no sequences. values is never mutated.
func ConvertQuery(values url.Values, s schema.Schema) map[string]any {
	out := make(map[string]any, len(values))
	for key, vals := range values {
		if isSequenceField(s, key) || len(vals) > 1 {
			list := make([]any, len(vals))
			for n, v := range vals {
				list[n] = v
			}
			out[key] = list
			continue
		}
		if len(vals) == 1 {
			out[key] = vals[0]
		}
	}
	return out
}

// Query converts the request's query string for s.
func Query(r *http.Request, s schema.Schema) map[string]any {
	return ConvertQuery(r.URL.Query(), s)
}

func isSequenceField(s schema.Schema, key string) bool {
	if s == nil {
		return false
	}
	f, ok := s.Field(key)
	return ok && f.Sequence
}
