// Package clientip resolves the client address of HTTP requests behind
// proxies and makes it available to handlers and log records.
//
//	r.Use(clientip.Middleware("X-Forwarded-For"))
//	log := logger.New(logger.WithContextExtractors(clientip.LoggerExtractor()))
package clientip
