package handler_test

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/httpvalidate/binder"
	"github.com/dmitrymomot/httpvalidate/handler"
	"github.com/dmitrymomot/httpvalidate/pkg/logger"
	"github.com/dmitrymomot/httpvalidate/pkg/schema"
)

type queryModel struct {
	Q1 int    `json:"q1"`
	Q2 string `json:"q2" jsonschema:"default=default"`
}

type bodyModel struct {
	B1 float64 `json:"b1"`
	B2 *string `json:"b2"`
}

type formModel struct {
	F1 int    `json:"f1"`
	F2 string `json:"f2" jsonschema:"default=test"`
}

type responseModel struct {
	Q1 int     `json:"q1"`
	Q2 string  `json:"q2"`
	B1 float64 `json:"b1"`
	B2 *string `json:"b2"`
}

type shippingAddress struct {
	City string  `json:"city"`
	Zip  *string `json:"zip"`
}

type orderModel struct {
	Name string          `json:"name"`
	Addr shippingAddress `json:"addr"`
	Tags []*string       `json:"tags,omitempty"`
}

type iterableQuery struct {
	B1 []string `json:"b1"`
	B4 *[]int   `json:"b4"`
}

var (
	querySchema    = schema.MustFor[queryModel]()
	bodySchema     = schema.MustFor[bodyModel]()
	formSchema     = schema.MustFor[formModel]()
	responseSchema = schema.MustFor[responseModel]()
)

func quietLogger() *slog.Logger {
	return logger.New(logger.WithOutput(io.Discard))
}

func echo(ctx handler.Context) (any, error) {
	q, _ := handler.Query[queryModel](ctx)
	b, _ := handler.Body[bodyModel](ctx)
	return responseModel{Q1: q.Q1, Q2: q.Q2, B1: b.B1, B2: b.B2}, nil
}

// errorSink records what reaches the error handler.
type errorSink struct {
	err error
}

func (s *errorSink) handle(ctx handler.Context, err error) {
	s.err = err
	ctx.ResponseWriter().WriteHeader(http.StatusTeapot)
}

func send(h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid query and body with defaults", func(t *testing.T) {
		t.Parallel()
		h := handler.Validate(echo,
			handler.WithQuery(querySchema),
			handler.WithBody(bodySchema),
			handler.WithResponse(responseSchema),
			handler.WithLogger(quietLogger()),
		)

		rec := send(h, http.MethodPost, "/?q1=1", "application/json", `{"b1": 1.4}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"q1": 1, "q2": "default", "b1": 1.4, "b2": null}`, rec.Body.String())
	})

	t.Run("exclude none", func(t *testing.T) {
		t.Parallel()
		h := handler.Validate(echo,
			handler.WithQuery(querySchema),
			handler.WithBody(bodySchema),
			handler.WithExcludeNone(),
			handler.WithLogger(quietLogger()),
		)

		rec := send(h, http.MethodPost, "/?q1=1&q2=given", "application/json", `{"b1": 1.4, "b2": null}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"q1": 1, "q2": "given", "b1": 1.4}`, rec.Body.String())
	})

	t.Run("invalid query", func(t *testing.T) {
		t.Parallel()
		called := false
		h := handler.Validate(func(ctx handler.Context) (any, error) {
			called = true
			return echo(ctx)
		}, handler.WithQuery(querySchema), handler.WithLogger(quietLogger()))

		rec := send(h, http.MethodGet, "/", "", "")

		assert.False(t, called)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"validation_error": {"query_params": [
			{"loc": ["q1"], "msg": "Field required", "type": "missing", "input": {}}
		]}}`, rec.Body.String())
	})

	t.Run("invalid body", func(t *testing.T) {
		t.Parallel()
		h := handler.Validate(echo, handler.WithBody(bodySchema), handler.WithLogger(quietLogger()))

		rec := send(h, http.MethodPost, "/", "application/json", `{"b1": "not a number"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"validation_error": {"body_params": [
			{"loc": ["b1"], "msg": "Input should be a valid number", "type": "float_type", "input": "not a number"}
		]}}`, rec.Body.String())
	})

	t.Run("null in nested optional body fields", func(t *testing.T) {
		t.Parallel()
		h := handler.Validate(func(ctx handler.Context) (any, error) {
			order, _ := handler.Body[orderModel](ctx)
			return order, nil
		}, handler.WithBody(schema.MustFor[orderModel]()), handler.WithLogger(quietLogger()))

		rec := send(h, http.MethodPost, "/", "application/json", `{"name": "a", "addr": {"city": "x", "zip": null}, "tags": ["a", null]}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"name": "a", "addr": {"city": "x", "zip": null}, "tags": ["a", null]}`, rec.Body.String())
	})

	t.Run("null body", func(t *testing.T) {
		t.Parallel()
		h := handler.Validate(echo, handler.WithBody(bodySchema), handler.WithLogger(quietLogger()))

		rec := send(h, http.MethodPost, "/", "application/json", `null`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"type":"model_type"`)
		assert.Contains(t, rec.Body.String(), `"class_name":"bodyModel"`)
	})

	t.Run("query and form failing together", func(t *testing.T) {
		t.Parallel()
		h := handler.Validate(echo,
			handler.WithQuery(querySchema),
			handler.WithForm(formSchema),
			handler.WithLogger(quietLogger()),
		)

		rec := send(h, http.MethodPost, "/", "application/x-www-form-urlencoded", "f1=abc")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"validation_error": {
			"form_params": [{"loc": ["f1"], "msg": "Input should be a valid integer", "type": "int_type", "input": "abc"}],
			"query_params": [{"loc": ["q1"], "msg": "Field required", "type": "missing", "input": {}}]
		}}`, rec.Body.String())
	})

	t.Run("valid form", func(t *testing.T) {
		t.Parallel()
		h := handler.Validate(func(ctx handler.Context) (any, error) {
			f, ok := handler.Form[formModel](ctx)
			require.True(t, ok)
			return f, nil
		}, handler.WithForm(formSchema), handler.WithLogger(quietLogger()))

		rec := send(h, http.MethodPost, "/", "application/x-www-form-urlencoded", url.Values{"f1": {"5"}}.Encode())

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"f1": 5, "f2": "test"}`, rec.Body.String())
	})

	t.Run("sequence query fields", func(t *testing.T) {
		t.Parallel()
		h := handler.Validate(func(ctx handler.Context) (any, error) {
			q, ok := handler.Query[iterableQuery](ctx)
			require.True(t, ok)
			return q, nil
		}, handler.WithQuery(schema.MustFor[iterableQuery]()), handler.WithLogger(quietLogger()))

		rec := send(h, http.MethodGet, "/?b1=str1&b4=1", "", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"b1": ["str1"], "b4": [1]}`, rec.Body.String())
	})

	t.Run("custom success status", func(t *testing.T) {
		t.Parallel()
		h := handler.Validate(echo, handler.WithSuccessStatus(http.StatusCreated), handler.WithLogger(quietLogger()))

		rec := send(h, http.MethodPost, "/", "", "")

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("no schemas declared", func(t *testing.T) {
		t.Parallel()
		h := handler.Validate(func(ctx handler.Context) (any, error) {
			assert.Nil(t, ctx.Query())
			assert.Nil(t, ctx.Body())
			assert.Nil(t, ctx.Form())
			return responseModel{}, nil
		}, handler.WithLogger(quietLogger()))

		rec := send(h, http.MethodPost, "/?q1=x", "text/plain", "anything")

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestValidateBodyMany(t *testing.T) {
	t.Parallel()
	createMany := func(ctx handler.Context) (any, error) {
		q, _ := handler.Query[queryModel](ctx)
		items, ok := handler.BodyMany[bodyModel](ctx)
		if !ok {
			return nil, errors.New("body not bound")
		}
		out := make([]responseModel, 0, len(items))
		for _, item := range items {
			out = append(out, responseModel{Q1: q.Q1, Q2: q.Q2, B1: item.B1, B2: item.B2})
		}
		return out, nil
	}
	h := handler.Validate(createMany,
		handler.WithQuery(querySchema),
		handler.WithBody(bodySchema),
		handler.WithRequestBodyMany(),
		handler.WithResponseMany(),
		handler.WithLogger(quietLogger()),
	)

	t.Run("valid array", func(t *testing.T) {
		t.Parallel()
		rec := send(h, http.MethodPost, "/?q1=1&q2=2", "application/json", `[{"b1": 1.0, "b2": "str1"}, {"b1": 2.0}]`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[
			{"q1": 1, "q2": "2", "b1": 1.0, "b2": "str1"},
			{"q1": 1, "q2": "2", "b1": 2.0, "b2": null}
		]`, rec.Body.String())
	})

	t.Run("object instead of array", func(t *testing.T) {
		t.Parallel()
		rec := send(h, http.MethodPost, "/?q1=1", "application/json", `{"b1": 1.0}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"validation_error": {"body_params": [
			{"loc": ["root"], "msg": "is not an array of objects", "type": "type_error.array"}
		]}}`, rec.Body.String())
	})

	t.Run("element errors carry their index", func(t *testing.T) {
		t.Parallel()
		rec := send(h, http.MethodPost, "/?q1=1", "application/json", `[{"b1": 1.0}, {"b2": "x"}]`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"loc":[1,"b1"]`)
	})

	t.Run("empty array", func(t *testing.T) {
		t.Parallel()
		rec := send(h, http.MethodPost, "/?q1=1", "application/json", `[]`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}

func TestValidateResponses(t *testing.T) {
	t.Parallel()
	model := responseModel{Q1: 1, Q2: "q", B1: 2}

	tests := []struct {
		name       string
		result     any
		opts       []handler.Option
		wantStatus int
		wantBody   string
		wantHeader http.Header
	}{
		{
			name:       "status override",
			result:     handler.WithStatus(model, http.StatusCreated),
			wantStatus: http.StatusCreated,
			wantBody:   `{"q1": 1, "q2": "q", "b1": 2, "b2": null}`,
		},
		{
			name:       "status and headers",
			result:     handler.WithHeaders(model, http.StatusAccepted, http.Header{"X-Test": {"yes"}}),
			opts:       []handler.Option{handler.WithExcludeNone()},
			wantStatus: http.StatusAccepted,
			wantBody:   `{"q1": 1, "q2": "q", "b1": 2}`,
			wantHeader: http.Header{"X-Test": {"yes"}},
		},
		{
			name:       "prebuilt response passes through",
			result:     handler.JSON(map[string]string{"raw": "yes"}, handler.WithJSONStatus(http.StatusAccepted)),
			opts:       []handler.Option{handler.WithSuccessStatus(http.StatusCreated), handler.WithResponseMany()},
			wantStatus: http.StatusAccepted,
			wantBody:   `{"raw": "yes"}`,
		},
		{
			name:       "many with status",
			result:     handler.WithStatus([]*responseModel{&model}, http.StatusCreated),
			opts:       []handler.Option{handler.WithResponseMany()},
			wantStatus: http.StatusCreated,
			wantBody:   `[{"q1": 1, "q2": "q", "b1": 2, "b2": null}]`,
		},
		{
			name:       "record from a document schema",
			result:     schema.Record{"term": "go", "page": nil},
			opts:       []handler.Option{handler.WithExcludeNone()},
			wantStatus: http.StatusOK,
			wantBody:   `{"term": "go"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := append([]handler.Option{handler.WithLogger(quietLogger())}, tt.opts...)
			h := handler.Validate(func(handler.Context) (any, error) { return tt.result, nil }, opts...)

			rec := send(h, http.MethodGet, "/", "", "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			for key := range tt.wantHeader {
				assert.Equal(t, tt.wantHeader.Get(key), rec.Header().Get(key))
			}
		})
	}
}

func TestValidateErrors(t *testing.T) {
	t.Parallel()

	t.Run("unsupported media type", func(t *testing.T) {
		t.Parallel()
		sink := &errorSink{}
		h := handler.Validate(echo, handler.WithBody(bodySchema), handler.WithErrorHandler(sink.handle))

		rec := send(h, http.MethodPost, "/", "text/plain", `{"b1": 1}`)

		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
		assert.JSONEq(t, `{"detail": "Unsupported media type 'text/plain' in request. 'application/json' is required."}`, rec.Body.String())
		assert.NoError(t, sink.err)
	})

	t.Run("unsupported media type ignores raise mode", func(t *testing.T) {
		t.Parallel()
		sink := &errorSink{}
		h := handler.Validate(echo,
			handler.WithBody(bodySchema),
			handler.WithConfig(handler.Config{RaiseOnError: true}),
			handler.WithErrorHandler(sink.handle),
		)

		rec := send(h, http.MethodPost, "/", "application/x-www-form-urlencoded", "b1=1")

		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
		assert.NoError(t, sink.err)
	})

	damaged := []struct {
		name        string
		contentType string
		raise       bool
	}{
		{"damaged body", "application/json", false},
		{"damaged body with charset", "application/json;charset=utf-8", false},
		{"damaged body in raise mode", "application/json", true},
		{"damaged body with charset in raise mode", "application/json;charset=utf-8", true},
	}
	for _, tt := range damaged {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sink := &errorSink{}
			h := handler.Validate(echo,
				handler.WithBody(bodySchema),
				handler.WithConfig(handler.Config{RaiseOnError: tt.raise}),
				handler.WithErrorHandler(sink.handle),
			)

			rec := send(h, http.MethodPost, "/", tt.contentType, `{"b1": `)

			assert.Equal(t, http.StatusTeapot, rec.Code)

			require.ErrorIs(t, sink.err, handler.ErrJSONBodyParsing)
			assert.ErrorIs(t, sink.err, binder.ErrFailedToParseJSON)
			assert.ErrorIs(t, sink.err, handler.ErrHTTPValidate)
		})
	}

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()
		sink := &errorSink{}
		h := handler.Validate(echo, handler.WithBody(bodySchema), handler.WithErrorHandler(sink.handle))

		send(h, http.MethodPost, "/", "application/json", "")

		require.ErrorIs(t, sink.err, handler.ErrJSONBodyParsing)
	})

	t.Run("response many with non-models", func(t *testing.T) {
		t.Parallel()
		sink := &errorSink{}
		h := handler.Validate(func(handler.Context) (any, error) {
			return []any{responseModel{}, 1}, nil
		}, handler.WithResponseMany(), handler.WithErrorHandler(sink.handle))

		rec := send(h, http.MethodGet, "/", "", "")

		require.ErrorIs(t, sink.err, handler.ErrInvalidIterableOfModels)
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})

	t.Run("non-model response", func(t *testing.T) {
		t.Parallel()
		sink := &errorSink{}
		h := handler.Validate(func(handler.Context) (any, error) {
			return "plain string", nil
		}, handler.WithResponse(responseSchema), handler.WithErrorHandler(sink.handle))

		send(h, http.MethodGet, "/", "", "")

		require.ErrorIs(t, sink.err, handler.ErrInvalidResponse)
		assert.ErrorIs(t, sink.err, schema.ErrNotModel)
		assert.Contains(t, sink.err.Error(), "responseModel")
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()
		sink := &errorSink{}
		h := handler.Validate(func(handler.Context) (any, error) { return nil, nil }, handler.WithErrorHandler(sink.handle))

		send(h, http.MethodGet, "/", "", "")

		require.ErrorIs(t, sink.err, handler.ErrNilResponse)
	})

	t.Run("handler error", func(t *testing.T) {
		t.Parallel()
		h := handler.Validate(func(handler.Context) (any, error) {
			return nil, handler.ErrNotFound
		}, handler.WithLogger(quietLogger()))

		rec := send(h, http.MethodGet, "/", "", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"detail": "not_found"}`, rec.Body.String())
	})
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	t.Run("custom error status", func(t *testing.T) {
		t.Parallel()
		h := handler.Validate(echo,
			handler.WithBody(bodySchema),
			handler.WithConfig(handler.Config{ErrorStatusCode: http.StatusUnprocessableEntity}),
			handler.WithLogger(quietLogger()),
		)

		rec := send(h, http.MethodPost, "/", "application/json", `{}`)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), `"body_params"`)
	})

	raise := handler.WithConfig(handler.Config{RaiseOnError: true})

	t.Run("raise on body", func(t *testing.T) {
		t.Parallel()
		sink := &errorSink{}
		h := handler.Validate(echo, handler.WithBody(bodySchema), raise, handler.WithErrorHandler(sink.handle))

		send(h, http.MethodPost, "/", "application/json", `{}`)

		var verr *handler.ValidationError
		require.ErrorAs(t, sink.err, &verr)
		require.Len(t, verr.BodyParams, 1)
		assert.Equal(t, schema.Loc{"b1"}, verr.BodyParams[0].Loc)
		assert.Nil(t, verr.QueryParams)
		assert.Nil(t, verr.FormParams)
		assert.Nil(t, verr.PathParams)
		assert.ErrorIs(t, verr, handler.ErrHTTPValidate)
	})

	t.Run("raise on query", func(t *testing.T) {
		t.Parallel()
		sink := &errorSink{}
		h := handler.Validate(echo, handler.WithQuery(querySchema), raise, handler.WithErrorHandler(sink.handle))

		send(h, http.MethodGet, "/?q1=abc", "", "")

		var verr *handler.ValidationError
		require.ErrorAs(t, sink.err, &verr)
		require.Len(t, verr.QueryParams, 1)
		assert.Equal(t, "int_type", verr.QueryParams[0].Type)
		assert.Nil(t, verr.BodyParams)
	})

	t.Run("raise on form", func(t *testing.T) {
		t.Parallel()
		sink := &errorSink{}
		h := handler.Validate(echo, handler.WithForm(formSchema), raise, handler.WithErrorHandler(sink.handle))

		send(h, http.MethodPost, "/", "application/x-www-form-urlencoded", "f2=x")

		var verr *handler.ValidationError
		require.ErrorAs(t, sink.err, &verr)
		require.Len(t, verr.FormParams, 1)
		assert.Equal(t, "missing", verr.FormParams[0].Type)
	})

	t.Run("raise with default error handler", func(t *testing.T) {
		t.Parallel()
		h := handler.Validate(echo,
			handler.WithQuery(querySchema),
			handler.WithConfig(handler.Config{ErrorStatusCode: http.StatusConflict, RaiseOnError: true}),
			handler.WithLogger(quietLogger()),
		)

		rec := send(h, http.MethodGet, "/", "", "")

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), `"query_params"`)
	})
}

func TestValidateDecorators(t *testing.T) {
	t.Parallel()
	var order []string
	trace := func(name string) handler.Decorator {
		return func(next handler.HandlerFunc) handler.HandlerFunc {
			return func(ctx handler.Context) (any, error) {
				order = append(order, name)
				return next(ctx)
			}
		}
	}
	h := handler.Validate(echo,
		handler.WithQuery(querySchema),
		handler.WithDecorators(trace("outer"), trace("inner")),
		handler.WithLogger(quietLogger()),
	)

	send(h, http.MethodGet, "/", "", "")
	assert.Empty(t, order, "decorators must not run when validation fails")

	rec := send(h, http.MethodGet, "/?q1=1", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestValidateFailureLogging(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	h := handler.Validate(echo,
		handler.WithQuery(querySchema),
		handler.WithBody(bodySchema),
		handler.WithLogger(logger.New(logger.WithOutput(buf), logger.WithLevel(slog.LevelDebug))),
	)

	rec := send(h, http.MethodPost, "/items?q1=x", "application/json", `{"b1": "y"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	body := decode(t, lines[0])
	assert.Equal(t, "DEBUG", body["level"])
	assert.Equal(t, "validation_failed", body["event"])
	assert.Equal(t, "body", body["source"])
	assert.Equal(t, "bodyModel", body["schema"])
	assert.EqualValues(t, 1, body["issue_count"])
	assert.Equal(t, "/items", body["path"])

	query := decode(t, lines[1])
	assert.Equal(t, "query", query["source"])
	assert.Equal(t, "queryModel", query["schema"])
}
