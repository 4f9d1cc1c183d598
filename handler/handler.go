package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/httpvalidate/binder"
	"github.com/dmitrymomot/httpvalidate/pkg/logger"
	"github.com/dmitrymomot/httpvalidate/pkg/schema"
)

// HandlerFunc handles a request whose declared sources passed validation.
// Validated values are read from ctx (Query, Body, Form or the typed helpers).
// The returned value is shaped into the response; a non-nil error is passed
// to the ErrorHandler.
//
// Example:
//
//	func search(ctx handler.Context) (any, error) {
//		q, _ := handler.Query[SearchQuery](ctx)
//		return SearchResult{Term: q.Term}, nil
//	}
type HandlerFunc func(ctx Context) (any, error)

// Response renders itself to an http.ResponseWriter.
// Implementations should set headers, status code, and write body.
// Handlers may return a Response to bypass serialization.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// ErrorHandler handles errors from extraction, raised validation failures,
// handlers and rendering.
type ErrorHandler func(ctx Context, err error)

// Decorator wraps a HandlerFunc to add cross-cutting functionality.
// Decorators are applied in order, with the first decorator in the list
// being the outermost wrapper. They run after validation succeeded.
type Decorator func(HandlerFunc) HandlerFunc

// Option configures Validate.
type Option func(*options)

// options holds the per-route configuration, fixed at registration time.
type options struct {
	query           schema.Schema
	body            schema.Schema
	form            schema.Schema
	response        schema.Schema
	successStatus   int
	excludeNone     bool
	responseMany    bool
	requestBodyMany bool
	maxBodySize     int64
	config          Config
	errorHandler    ErrorHandler
	logger          *slog.Logger
	decorators      []Decorator
}

// WithQuery validates query parameters against s.
func WithQuery(s schema.Schema) Option {
	return func(o *options) { o.query = s }
}

// WithBody validates the JSON body against s. The request must be JSON.
func WithBody(s schema.Schema) Option {
	return func(o *options) { o.body = s }
}

// WithForm validates urlencoded or multipart form fields against s.
func WithForm(s schema.Schema) Option {
	return func(o *options) { o.form = s }
}

// WithResponse declares the response schema. It documents the route;
// returned models are serialized as they are.
func WithResponse(s schema.Schema) Option {
	return func(o *options) { o.response = s }
}

// WithSuccessStatus sets the status used when the handler's result carries none.
func WithSuccessStatus(status int) Option {
	return func(o *options) {
		if status > 0 {
			o.successStatus = status
		}
	}
}

// WithExcludeNone removes null values from serialized responses.
func WithExcludeNone() Option {
	return func(o *options) { o.excludeNone = true }
}

// WithResponseMany requires the handler to return a sequence of models,
// rendered as a JSON array.
func WithResponseMany() Option {
	return func(o *options) { o.responseMany = true }
}

// WithRequestBodyMany expects the body to be a JSON array and validates each element.
// Body returns []any; use BodyMany for a typed slice.
func WithRequestBodyMany() Option {
	return func(o *options) { o.requestBodyMany = true }
}

// WithMaxBodySize limits the JSON body size in bytes.
func WithMaxBodySize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBodySize = n
		}
	}
}

// WithConfig sets the validation switches, usually loaded from the environment.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.config = cfg.withDefaults() }
}

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) {
		if h != nil {
			o.errorHandler = h
		}
	}
}

// WithLogger sets the logger used for validation failures and by the default error handler.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDecorators adds decorators to wrap the handler.
// Decorators are applied in order, with the first decorator being the outermost.
func WithDecorators(decorators ...Decorator) Option {
	return func(o *options) {
		o.decorators = append(o.decorators, decorators...)
	}
}

// Validate converts a HandlerFunc to an http.HandlerFunc that validates
// the declared request sources before calling h.
//
// For every request the query string, the form fields and (when a body
// schema is declared) the JSON body are extracted and validated. When any
// source fails, h is not called: the decorator responds with
//
//	{"validation_error": {"body_params": [...], "query_params": [...]}}
//
// and the configured status, or passes a *ValidationError to the error
// handler in raise mode. A body schema on a non-JSON request yields a 415
// response; an empty or malformed JSON body yields ErrJSONBodyParsing.
//
// Usage:
//
//	r.Get("/search", handler.Validate(search,
//		handler.WithQuery(schema.MustFor[SearchQuery]()),
//		handler.WithResponse(schema.MustFor[SearchResult]()),
//	))
//
//	r.Post("/items", handler.Validate(createItems,
//		handler.WithBody(schema.MustFor[Item]()),
//		handler.WithRequestBodyMany(),
//		handler.WithResponseMany(),
//		handler.WithSuccessStatus(http.StatusCreated),
//		handler.WithConfig(cfg),
//	))
func Validate(h HandlerFunc, opts ...Option) http.HandlerFunc {
	o := &options{
		successStatus: http.StatusOK,
		maxBodySize:   binder.DefaultMaxJSONSize,
		config:        DefaultConfig(),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.errorHandler == nil {
		o.errorHandler = NewErrorHandler(o.logger, o.config)
	}

	// Apply decorators in reverse order so first decorator is outermost
	finalHandler := h
	for i := len(o.decorators) - 1; i >= 0; i-- {
		finalHandler = o.decorators[i](finalHandler)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		in, err := o.extract(r)
		if err != nil {
			if errors.Is(err, binder.ErrUnsupportedMediaType) {
				o.render(NewContext(w, r), unsupportedMediaType(r))
				return
			}
			o.errorHandler(NewContext(w, r), err)
			return
		}

		query := binder.Bind(in.query, o.query, false)
		body := binder.Bind(in.body, o.body, o.requestBodyMany)
		form := binder.Bind(in.form, o.form, false)

		if failed, agg := Aggregate(query, body, form); failed {
			o.fail(NewContext(w, r), agg)
			return
		}

		ctx := NewContext(w, withSources(r, query, body, form))
		result, err := finalHandler(ctx)
		if err != nil {
			o.errorHandler(ctx, err)
			return
		}

		resp, err := Shape(result, ShapeOptions{
			Status:      o.successStatus,
			ExcludeNone: o.excludeNone,
			Many:        o.responseMany,
		})
		if err != nil {
			if o.response != nil {
				err = fmt.Errorf("shaping %s response: %w", o.response.Name(), err)
			}
			o.errorHandler(ctx, err)
			return
		}
		o.render(ctx, resp)
	}
}

// inputs are the raw request sources before validation.
type inputs struct {
	query map[string]any
	body  any
	form  map[string]any
}

// extract reads the declared sources. The body is read first so media type
// and parse failures are reported before any validation runs.
func (o *options) extract(r *http.Request) (inputs, error) {
	var in inputs

	if o.body != nil {
		body, err := binder.JSONBodyLimit(r, o.maxBodySize)
		switch {
		case errors.Is(err, binder.ErrUnsupportedMediaType):
			return in, err
		case err != nil:
			return in, fmt.Errorf("%w: %w", ErrJSONBodyParsing, err)
		}
		in.body = body
	}

	if o.query != nil {
		in.query = binder.Query(r, o.query)
	}

	if o.form != nil {
		form, err := binder.Form(r, o.form)
		if err != nil {
			return in, fmt.Errorf("%w: %w", ErrFormParsing, err)
		}
		in.form = form
	}

	return in, nil
}

// fail reports a validation failure according to the configured mode.
func (o *options) fail(ctx Context, agg AggregatedError) {
	verr := &ValidationError{
		BodyParams:  agg.BodyParams,
		FormParams:  agg.FormParams,
		QueryParams: agg.QueryParams,
	}

	r := ctx.Request()
	failed := []struct {
		source string
		decl   schema.Schema
		issues schema.Issues
	}{
		{"body", o.body, agg.BodyParams},
		{"query", o.query, agg.QueryParams},
		{"form", o.form, agg.FormParams},
	}
	for _, f := range failed {
		if len(f.issues) == 0 || f.decl == nil {
			continue
		}
		o.logger.LogAttrs(r.Context(), slog.LevelDebug, "request validation failed",
			logger.Event("validation_failed"),
			logger.Source(f.source),
			logger.Schema(f.decl.Name()),
			logger.IssueCount(len(f.issues)),
			slog.Bool("raise", o.config.RaiseOnError),
			slog.String("path", r.URL.Path),
			logger.Component("httpvalidate"),
		)
	}

	if o.config.RaiseOnError {
		o.errorHandler(ctx, verr)
		return
	}
	o.render(ctx, JSON(validationErrorBody{ValidationError: agg}, WithJSONStatus(o.config.ErrorStatusCode)))
}

func (o *options) render(ctx Context, resp Response) {
	if err := resp.Render(ctx.ResponseWriter(), ctx.Request()); err != nil {
		o.errorHandler(ctx, err)
	}
}
