package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/httpvalidate/pkg/logger"
)

// ErrorInfo contains classified error information
type ErrorInfo struct {
	StatusCode int
	Body       any
	LogLevel   slog.Level
}

type detailBody struct {
	Detail string `json:"detail"`
}

// Helper functions for HTTP status code classification
func isClientError(statusCode int) bool {
	return statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError
}

// determineLogLevel maps HTTP status codes to appropriate log levels
func determineLogLevel(statusCode int) slog.Level {
	if isClientError(statusCode) {
		return slog.LevelWarn
	}
	return slog.LevelError
}

// classifyError analyzes the error and returns structured error information
func classifyError(err error, cfg Config) ErrorInfo {
	info := ErrorInfo{
		StatusCode: http.StatusInternalServerError,
		Body:       detailBody{Detail: http.StatusText(http.StatusInternalServerError)},
	}

	var (
		validationErr *ValidationError
		httpErr       HTTPError
	)
	switch {
	case errors.As(err, &validationErr):
		info.StatusCode = cfg.ErrorStatusCode
		info.Body = validationErrorBody{ValidationError: validationErr.Aggregated()}
	case errors.Is(err, ErrJSONBodyParsing):
		info.StatusCode = http.StatusBadRequest
		info.Body = detailBody{Detail: "Failed to parse JSON body"}
	case errors.Is(err, ErrFormParsing):
		info.StatusCode = http.StatusBadRequest
		info.Body = detailBody{Detail: "Failed to parse form data"}
	case errors.As(err, &httpErr):
		info.StatusCode = httpErr.Code
		info.Body = detailBody{Detail: httpErr.Key}
	}

	info.LogLevel = determineLogLevel(info.StatusCode)
	return info
}

// logError logs the error with request context
func logError(log *slog.Logger, ctx Context, err error, info ErrorInfo) {
	r := ctx.Request()
	log.LogAttrs(r.Context(), info.LogLevel, "request error",
		logger.Error(err),
		logger.Status(info.StatusCode),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		logger.Component("error_handler"),
	)
}

// NewErrorHandler creates the default error handler. It logs every error
// and responds with JSON: validation errors in their aggregated shape with
// cfg.ErrorStatusCode, body parse failures with 400, HTTPError values with
// their code and anything else with 500.
func NewErrorHandler(log *slog.Logger, cfg Config) ErrorHandler {
	if log == nil {
		log = slog.Default()
	}
	cfg = cfg.withDefaults()

	return func(ctx Context, err error) {
		info := classifyError(err, cfg)
		logError(log, ctx, err, info)

		resp := JSON(info.Body, WithJSONStatus(info.StatusCode))
		if renderErr := resp.Render(ctx.ResponseWriter(), ctx.Request()); renderErr != nil {
			log.Error("failed to render error response",
				logger.Error(renderErr),
				logger.Component("error_handler"),
			)
			http.Error(ctx.ResponseWriter(), http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}
