package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// jsonResponse implements Response for JSON rendering
type jsonResponse struct {
	status int
	header http.Header
	body   any
}

// Render encodes the body before writing anything, so encoding failures
// can still be reported by the error handler.
func (j jsonResponse) Render(w http.ResponseWriter, r *http.Request) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(j.body); err != nil {
		return fmt.Errorf("encoding JSON response: %w", err)
	}

	for key, values := range j.header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(j.status)
	_, err := w.Write(buf.Bytes())
	return err
}

// JSONOption configures JSON response
type JSONOption func(*jsonResponse)

// WithJSONStatus sets custom HTTP status code
func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) {
		if status > 0 {
			r.status = status
		}
	}
}

// WithJSONHeader adds a response header
func WithJSONHeader(key, value string) JSONOption {
	return func(r *jsonResponse) {
		r.header.Add(key, value)
	}
}

// JSON creates a response that encodes v as the JSON body, with status 200 by default.
//
// Example:
//
//	return handler.JSON(map[string]any{"id": id}, handler.WithJSONStatus(http.StatusCreated)), nil
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{
		status: http.StatusOK,
		header: http.Header{},
		body:   v,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// headerResponse adds headers to a response before it renders.
type headerResponse struct {
	Response
	header http.Header
}

func (h headerResponse) Render(w http.ResponseWriter, r *http.Request) error {
	for key, values := range h.header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	return h.Response.Render(w, r)
}

// unsupportedMediaType is the fixed response for body schemas receiving non-JSON requests.
func unsupportedMediaType(r *http.Request) Response {
	return JSON(map[string]string{
		"detail": fmt.Sprintf("Unsupported media type '%s' in request. 'application/json' is required.", r.Header.Get("Content-Type")),
	}, WithJSONStatus(http.StatusUnsupportedMediaType))
}
