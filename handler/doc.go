// Package handler validates HTTP requests against declared schemas before
// the route handler runs.
//
// Validate wraps a HandlerFunc and, per route, declares schemas for the
// query string, the JSON body and the form fields. Each declared source is
// extracted, coerced and validated; the handler only runs when every source
// passed, and reads the typed instances from its Context:
//
//	type SearchQuery struct {
//		Term string `json:"term" jsonschema:"minLength=1"`
//		Page int    `json:"page" jsonschema:"default=1,minimum=1"`
//	}
//
//	func search(ctx handler.Context) (any, error) {
//		q, _ := handler.Query[SearchQuery](ctx)
//		return SearchResult{Term: q.Term, Page: q.Page}, nil
//	}
//
//	r.Get("/search", handler.Validate(search,
//		handler.WithQuery(schema.MustFor[SearchQuery]()),
//	))
//
// # Validation failures
//
// When any source fails, the issues of every failed source are collected:
//
//	{"validation_error": {"query_params": [{"loc": ["page"], "msg": "...", "type": "int_type", "input": "x"}]}}
//
// By default this body is written with Config.ErrorStatusCode (400). With
// Config.RaiseOnError a *ValidationError carrying the same issues is passed
// to the ErrorHandler instead. Config is usually loaded from the environment
// (VALIDATION_ERROR_STATUS_CODE, VALIDATION_ERROR_RAISE) and applied with
// WithConfig.
//
// A body schema on a request that is not JSON yields 415. An empty or
// malformed JSON body is reported to the ErrorHandler as ErrJSONBodyParsing.
//
// # Responses
//
// The handler returns a model (a struct, a struct pointer or a
// schema.Dumper), a Reply built with WithStatus or WithHeaders, or a
// Response that renders itself (JSON, Empty). Models are serialized through
// their JSON encoding; WithExcludeNone drops null fields at every level.
// WithResponseMany requires a sequence of models and renders a JSON array.
//
// # Errors
//
// Every error defined here wraps ErrHTTPValidate. Handler errors go to the
// ErrorHandler; the default one, built by NewErrorHandler, logs them and maps
// HTTPError values to their status code.
package handler
