package handler

import (
	"fmt"
	"net/http"

	"github.com/dmitrymomot/httpvalidate/pkg/schema"
)

// Reply carries a handler payload with an explicit status and headers.
// Build it with WithStatus or WithHeaders.
type Reply struct {
	Payload any
	Status  int
	Header  http.Header
}

// WithStatus returns payload to be rendered with status.
//
//	return handler.WithStatus(item, http.StatusCreated), nil
func WithStatus(payload any, status int) Reply {
	return Reply{Payload: payload, Status: status}
}

// WithHeaders returns payload to be rendered with status and extra headers.
// A zero status keeps the route's success status.
func WithHeaders(payload any, status int, header http.Header) Reply {
	return Reply{Payload: payload, Status: status, Header: header}
}

// ShapeOptions controls how a handler result becomes a response.
type ShapeOptions struct {
	// Status is used when the result carries none; zero means 200.
	Status int
	// ExcludeNone removes null values from serialized models at every level.
	ExcludeNone bool
	// Many requires the payload to be a sequence of models.
	Many bool
}

// Shape turns a handler result into a Response.
//
// A Response passes through untouched. A Reply is unwrapped, its status
// overriding opts.Status and its headers merged onto the final response.
// In many mode the payload must be a sequence of models and renders as a
// JSON array; otherwise it must be a model and renders as a JSON object.
func Shape(v any, opts ShapeOptions) (Response, error) {
	switch val := v.(type) {
	case nil:
		return nil, ErrNilResponse
	case Response:
		return val, nil
	case *Reply:
		if val == nil {
			return nil, ErrNilResponse
		}
		return shapeReply(*val, opts)
	case Reply:
		return shapeReply(val, opts)
	}

	status := opts.Status
	if status == 0 {
		status = http.StatusOK
	}

	if opts.Many {
		if !schema.IsSequenceOfModels(v) {
			return nil, fmt.Errorf("%w: got %T", ErrInvalidIterableOfModels, v)
		}
		items, err := schema.DumpMany(v, opts.ExcludeNone)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
		}
		return JSON(items, WithJSONStatus(status)), nil
	}

	m, err := schema.Dump(v, opts.ExcludeNone)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return JSON(m, WithJSONStatus(status)), nil
}

func shapeReply(reply Reply, opts ShapeOptions) (Response, error) {
	if reply.Status != 0 {
		opts.Status = reply.Status
	}
	resp, err := Shape(reply.Payload, opts)
	if err != nil {
		return nil, err
	}
	if len(reply.Header) > 0 {
		resp = headerResponse{Response: resp, header: reply.Header}
	}
	return resp, nil
}
