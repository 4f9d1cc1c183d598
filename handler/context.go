package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrymomot/httpvalidate/binder"
)

// Context wraps http.Request and http.ResponseWriter with context.Context.
// It embeds the request's context and exposes the validated request sources.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	// Query returns the validated query instance, or nil when no query schema is declared.
	Query() any
	// Body returns the validated body instance ([]any in many mode), or nil when no body schema is declared.
	Body() any
	// Form returns the validated form instance, or nil when no form schema is declared.
	Form() any
}

// Context keys under which validated sources are attached to the request context.
var (
	QueryParamsKey = NewContextKey("query_params")
	BodyParamsKey  = NewContextKey("body_params")
	FormParamsKey  = NewContextKey("form_params")
)

// NewContext creates a new Context from HTTP request and response writer.
func NewContext(w http.ResponseWriter, r *http.Request) Context {
	return &httpContext{
		w: w,
		r: r,
	}
}

// httpContext is the default implementation of Context.
type httpContext struct {
	w http.ResponseWriter
	r *http.Request
}

func (c *httpContext) Request() *http.Request {
	return c.r
}

func (c *httpContext) ResponseWriter() http.ResponseWriter {
	return c.w
}

func (c *httpContext) Query() any { return c.Value(QueryParamsKey) }
func (c *httpContext) Body() any  { return c.Value(BodyParamsKey) }
func (c *httpContext) Form() any  { return c.Value(FormParamsKey) }

// Delegate context.Context methods to the request's context
func (c *httpContext) Deadline() (deadline time.Time, ok bool) {
	return c.r.Context().Deadline()
}

func (c *httpContext) Done() <-chan struct{} {
	return c.r.Context().Done()
}

func (c *httpContext) Err() error {
	return c.r.Context().Err()
}

func (c *httpContext) Value(key any) any {
	return c.r.Context().Value(key)
}

// Query returns the validated query instance as T.
// It works with a handler Context or with the request context.
//
// Example:
//
//	q, ok := handler.Query[SearchQuery](ctx)
func Query[T any](ctx context.Context) (T, bool) {
	return ContextValueOK[T](ctx, QueryParamsKey)
}

// Body returns the validated body instance as T.
func Body[T any](ctx context.Context) (T, bool) {
	return ContextValueOK[T](ctx, BodyParamsKey)
}

// Form returns the validated form instance as T.
func Form[T any](ctx context.Context) (T, bool) {
	return ContextValueOK[T](ctx, FormParamsKey)
}

// BodyMany returns the instances of a body validated in many mode as []T.
// It reports false when the body is missing or an element is not a T.
func BodyMany[T any](ctx context.Context) ([]T, bool) {
	items, ok := ContextValueOK[[]any](ctx, BodyParamsKey)
	if !ok {
		return nil, false
	}
	out := make([]T, len(items))
	for n, item := range items {
		v, ok := item.(T)
		if !ok {
			return nil, false
		}
		out[n] = v
	}
	return out, true
}

// withSources attaches the bound source values to the request context.
func withSources(r *http.Request, query, body, form binder.Outcome) *http.Request {
	ctx := r.Context()
	for _, src := range []struct {
		key *ContextKey
		out binder.Outcome
	}{
		{QueryParamsKey, query},
		{BodyParamsKey, body},
		{FormParamsKey, form},
	} {
		if src.out.Bound {
			ctx = context.WithValue(ctx, src.key, src.out.Value)
		}
	}
	return r.WithContext(ctx)
}

// ContextKey provides type-safe context keys to prevent key collisions.
// Should be created as package-level variables for consistent access.
type ContextKey struct{ name string }

// String returns a string representation of the context key for debugging.
func (c *ContextKey) String() string {
	return c.name
}

// NewContextKey creates a new context key.
// The name should be unique within your application.
func NewContextKey(name string) *ContextKey {
	return &ContextKey{name}
}

// ContextValue retrieves a typed value from the context.
// Returns the zero value of T if the key is not present or has a different type.
func ContextValue[T any](ctx context.Context, key any) T {
	val, _ := ctx.Value(key).(T)
	return val
}

// ContextValueOK retrieves a typed value from the context with an ok bool.
// The bool indicates whether the key was present and had the expected type.
func ContextValueOK[T any](ctx context.Context, key any) (T, bool) {
	val, ok := ctx.Value(key).(T)
	return val, ok
}
