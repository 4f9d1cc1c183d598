package binder

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/httpvalidate/pkg/schema"
)

// DefaultMaxMemory is the multipart memory limit used by FormValues (10MB).
const DefaultMaxMemory int64 = 10 << 20

// IsForm reports whether mediaType is an HTML form encoding.
func IsForm(mediaType string) bool {
	return mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"
}

// FormValues returns the form fields of the request body.
//
// Only urlencoded and multipart bodies carry form fields; any other media
// type yields empty values. Query parameters are not included.
func FormValues(r *http.Request) (url.Values, error) {
	switch MediaType(r) {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToParseForm, err)
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(DefaultMaxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, fmt.Errorf("%w: %v", ErrFailedToParseForm, err)
		}
	default:
		return url.Values{}, nil
	}
	if r.PostForm == nil {
		return url.Values{}, nil
	}
	return r.PostForm, nil
}

// Form converts the request's form fields for s with the same rules as ConvertQuery.
func Form(r *http.Request, s schema.Schema) (map[string]any, error) {
	values, err := FormValues(r)
	if err != nil {
		return nil, err
	}
	return ConvertQuery(values, s), nil
}
