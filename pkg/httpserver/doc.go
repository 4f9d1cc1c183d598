// Package httpserver runs an http.Server with graceful shutdown.
//
// Run blocks until the context is cancelled or SIGINT/SIGTERM arrives, then
// calls http.Server.Shutdown with the configured deadline. Lifecycle events
// are logged through the logger given with WithLogger.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// HealthHandler serves liveness and readiness probes. Errors are wrapped with
// ErrStart and ErrShutdown.
package httpserver
