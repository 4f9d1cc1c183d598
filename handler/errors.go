package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/httpvalidate/pkg/schema"
)

// ErrHTTPValidate is the base error: every error produced by this package
// satisfies errors.Is(err, ErrHTTPValidate).
var ErrHTTPValidate = errors.New("httpvalidate")

// Package-level errors for common failure scenarios
var (
	// ErrNilResponse indicates a handler returned nil instead of a value to respond with
	ErrNilResponse = fmt.Errorf("%w: handler returned nil response", ErrHTTPValidate)
	// ErrJSONBodyParsing indicates the request body is empty or not valid JSON
	ErrJSONBodyParsing = fmt.Errorf("%w: failed to parse JSON body", ErrHTTPValidate)
	// ErrFormParsing indicates the request form could not be parsed
	ErrFormParsing = fmt.Errorf("%w: failed to parse form data", ErrHTTPValidate)
	// ErrInvalidIterableOfModels indicates a response-many handler returned something other than a sequence of models
	ErrInvalidIterableOfModels = fmt.Errorf("%w: response is not a sequence of models", ErrHTTPValidate)
	// ErrInvalidResponse indicates a handler returned a value that cannot be serialized
	ErrInvalidResponse = fmt.Errorf("%w: invalid response", ErrHTTPValidate)
)

// ValidationError is delivered to the ErrorHandler when validation fails and
// the decorator is configured to raise. Each field holds the issues of one
// request source; PathParams is never populated.
type ValidationError struct {
	BodyParams  schema.Issues
	FormParams  schema.Issues
	PathParams  schema.Issues
	QueryParams schema.Issues
}

func (e *ValidationError) Error() string {
	var parts []string
	for _, src := range []struct {
		name   string
		issues schema.Issues
	}{
		{"body", e.BodyParams},
		{"form", e.FormParams},
		{"path", e.PathParams},
		{"query", e.QueryParams},
	} {
		if len(src.issues) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d issue(s)", src.name, len(src.issues)))
		}
	}
	if len(parts) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrHTTPValidate
}

// Aggregated returns the error in its wire shape.
func (e *ValidationError) Aggregated() AggregatedError {
	return AggregatedError{
		BodyParams:  e.BodyParams,
		FormParams:  e.FormParams,
		QueryParams: e.QueryParams,
		PathParams:  e.PathParams,
	}
}

// IssueCount returns the number of issues across all sources.
func (e *ValidationError) IssueCount() int {
	return len(e.BodyParams) + len(e.FormParams) + len(e.PathParams) + len(e.QueryParams)
}
