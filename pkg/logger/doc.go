// Package logger builds *slog.Logger values from functional options and
// provides attribute helpers with consistent key names.
//
// New picks a text or JSON handler, applies static attributes and wraps the
// handler with LogHandlerDecorator, which runs the registered
// ContextExtractor callbacks on every record. This is how request ids set by
// the requestid middleware end up in every log line written with a request
// context.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "httpvalidate-demo"),
//	    logger.WithLevelName(cfg.LogLevel),
//	    logger.WithFile(cfg.LogFile, 100, 3, 28),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.WarnContext(ctx, "request error",
//	    logger.Status(400),
//	    logger.IssueCount(2),
//	    logger.Error(err),
//	)
//
// # Options
//
//   - WithDevelopment / WithStaging / WithProduction / WithEnvironment: per-environment defaults.
//   - WithFormat / WithTextFormatter / WithJSONFormatter: output format.
//   - WithLevel / WithLevelName: minimum level.
//   - WithOutput / WithFile: destination; WithFile rotates through lumberjack.
//   - WithAttr: static attributes.
//   - WithContextExtractors / WithContextValue: attributes pulled from context.
//
// Error and Errors return an empty attribute for nil errors, so
//
//	log.Info("done", logger.Error(err))
//
// needs no nil check.
package logger
