// Package requestid correlates log records of one HTTP request.
//
// Middleware reuses a valid client-supplied X-Request-ID header or generates
// a UUID, stores the id in the request context and echoes it back in the
// response. FromContext reads it; LoggerExtractor plugs it into loggers
// built by package logger:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware)
package requestid
