package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/httpvalidate/handler"
	"github.com/dmitrymomot/httpvalidate/pkg/schema"
)

type nested struct {
	Name  string  `json:"name"`
	Notes *string `json:"notes"`
}

type envelope struct {
	ID    int      `json:"id"`
	Inner nested   `json:"inner"`
	Items []nested `json:"items"`
}

func render(t *testing.T, resp handler.Response) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, resp.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
	return rec
}

func TestShape(t *testing.T) {
	t.Parallel()
	value := envelope{ID: 7, Inner: nested{Name: "a"}, Items: []nested{{Name: "b"}}}

	t.Run("model", func(t *testing.T) {
		t.Parallel()
		resp, err := handler.Shape(value, handler.ShapeOptions{})
		require.NoError(t, err)

		rec := render(t, resp)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id": 7, "inner": {"name": "a", "notes": null}, "items": [{"name": "b", "notes": null}]}`, rec.Body.String())
	})

	t.Run("exclude none at every level", func(t *testing.T) {
		t.Parallel()
		resp, err := handler.Shape(&value, handler.ShapeOptions{ExcludeNone: true, Status: http.StatusAccepted})
		require.NoError(t, err)

		rec := render(t, resp)
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.JSONEq(t, `{"id": 7, "inner": {"name": "a"}, "items": [{"name": "b"}]}`, rec.Body.String())
	})

	t.Run("many", func(t *testing.T) {
		t.Parallel()
		resp, err := handler.Shape([]envelope{value, {ID: 8}}, handler.ShapeOptions{Many: true, ExcludeNone: true})
		require.NoError(t, err)

		rec := render(t, resp)
		assert.JSONEq(t, `[
			{"id": 7, "inner": {"name": "a"}, "items": [{"name": "b"}]},
			{"id": 8, "inner": {"name": ""}}
		]`, rec.Body.String())
	})

	t.Run("reply status wins over default", func(t *testing.T) {
		t.Parallel()
		resp, err := handler.Shape(&handler.Reply{Payload: value, Status: http.StatusCreated}, handler.ShapeOptions{Status: http.StatusAccepted})
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, render(t, resp).Code)
	})

	t.Run("reply without status keeps default", func(t *testing.T) {
		t.Parallel()
		resp, err := handler.Shape(handler.WithHeaders(value, 0, http.Header{"Location": {"/items/7"}}), handler.ShapeOptions{Status: http.StatusAccepted})
		require.NoError(t, err)

		rec := render(t, resp)
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, "/items/7", rec.Header().Get("Location"))
	})

	t.Run("reply around a response keeps the response status", func(t *testing.T) {
		t.Parallel()
		resp, err := handler.Shape(
			handler.WithHeaders(handler.EmptyWithStatus(http.StatusNoContent), http.StatusCreated, http.Header{"X-Trace": {"1"}}),
			handler.ShapeOptions{},
		)
		require.NoError(t, err)

		rec := render(t, resp)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("X-Trace"))
	})
}

func TestShapeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   any
		opts    handler.ShapeOptions
		wantErr error
	}{
		{"nil", nil, handler.ShapeOptions{}, handler.ErrNilResponse},
		{"nil reply pointer", (*handler.Reply)(nil), handler.ShapeOptions{}, handler.ErrNilResponse},
		{"nil reply payload", handler.WithStatus(nil, http.StatusCreated), handler.ShapeOptions{}, handler.ErrNilResponse},
		{"scalar", 42, handler.ShapeOptions{}, handler.ErrInvalidResponse},
		{"map", map[string]any{"a": 1}, handler.ShapeOptions{}, handler.ErrInvalidResponse},
		{"many with a model", envelope{}, handler.ShapeOptions{Many: true}, handler.ErrInvalidIterableOfModels},
		{"many with scalars", []int{1, 2}, handler.ShapeOptions{Many: true}, handler.ErrInvalidIterableOfModels},
		{"many with mixed items", []any{envelope{}, "x"}, handler.ShapeOptions{Many: true}, handler.ErrInvalidIterableOfModels},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp, err := handler.Shape(tt.value, tt.opts)
			assert.Nil(t, resp)
			require.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, handler.ErrHTTPValidate)
		})
	}
}

func TestShapeRecord(t *testing.T) {
	t.Parallel()
	resp, err := handler.Shape([]schema.Record{{"term": "go", "page": nil}}, handler.ShapeOptions{Many: true})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"term": "go", "page": null}]`, render(t, resp).Body.String())
}
