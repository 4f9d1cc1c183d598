package binder

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// DefaultMaxJSONSize is the largest JSON body JSONBody reads (1MB).
const DefaultMaxJSONSize int64 = 1 << 20

// MediaType returns the lowercased media type of the request, without parameters.
// It returns an empty string when the Content-Type header is missing.
func MediaType(r *http.Request) string {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// IsJSON reports whether mediaType carries JSON: application/json or any +json suffix.
func IsJSON(mediaType string) bool {
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// JSONBody decodes the request body into plain JSON values, keeping numbers
// as json.Number. The body is limited to DefaultMaxJSONSize.
func JSONBody(r *http.Request) (any, error) {
	return JSONBodyLimit(r, DefaultMaxJSONSize)
}

// JSONBodyLimit is JSONBody with a custom size limit in bytes.
//
// It returns ErrUnsupportedMediaType when the request is not JSON and
// ErrFailedToParseJSON when the body is empty, oversized or malformed.
func JSONBodyLimit(r *http.Request, limit int64) (any, error) {
	if !IsJSON(MediaType(r)) {
		return nil, fmt.Errorf("%w: got %q, expected application/json", ErrUnsupportedMediaType, r.Header.Get("Content-Type"))
	}
	if r.Body == nil || r.Body == http.NoBody {
		return nil, fmt.Errorf("%w: empty body", ErrFailedToParseJSON)
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFailedToParseJSON, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrFailedToParseJSON, limit)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrFailedToParseJSON)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var v any
	if err := decoder.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToParseJSON, err)
	}

	// Ensure entire body was consumed
	var extra json.RawMessage
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after JSON value", ErrFailedToParseJSON)
	}

	return v, nil
}
