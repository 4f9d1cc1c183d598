package handler_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/httpvalidate/handler"
)

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		rec := render(t, handler.JSON(map[string]int{"n": 1}))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"n": 1}`, rec.Body.String())
	})

	t.Run("status and headers", func(t *testing.T) {
		t.Parallel()
		rec := render(t, handler.JSON([]string{"a"},
			handler.WithJSONStatus(http.StatusCreated),
			handler.WithJSONStatus(0),
			handler.WithJSONHeader("Location", "/a"),
			handler.WithJSONHeader("Content-Type", "application/problem+json"),
		))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "/a", rec.Header().Get("Location"))
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	})

	t.Run("encoding failure writes nothing", func(t *testing.T) {
		t.Parallel()
		resp := handler.JSON(failingJSON{})
		rec := httptest.NewRecorder()

		require.Error(t, resp.Render(rec, nil))
		assert.False(t, rec.Flushed)
		assert.Empty(t, rec.Header())
		assert.Zero(t, rec.Body.Len())
	})
}

type failingJSON struct{}

func (failingJSON) MarshalJSON() ([]byte, error) {
	return nil, errors.New("cannot encode")
}
