package requestid

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/httpvalidate/pkg/logger"
)

// LoggerExtractor returns a logger.ContextExtractor adding the request id
// to every record logged with a request context.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := FromContext(ctx); id != "" {
			return logger.RequestID(id), true
		}
		return slog.Attr{}, false
	}
}
