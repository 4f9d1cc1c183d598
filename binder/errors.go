package binder

import "errors"

// Common extraction errors
var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrFailedToParseJSON    = errors.New("failed to parse JSON body")
	ErrFailedToParseForm    = errors.New("failed to parse form data")
)
