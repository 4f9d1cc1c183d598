package httpserver

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/httpvalidate/handler"
)

// Check reports whether a dependency is ready.
type Check func(ctx context.Context) error

type healthStatus struct {
	Status string `json:"status"`
}

// HealthHandler serves liveness and readiness probes as JSON.
// Without checks it always answers {"status":"alive"}. With checks it runs
// each one against the request context and answers {"status":"ready"}, or
// 503 with {"status":"not_ready"} when any check fails.
func HealthHandler(checks ...Check) http.HandlerFunc {
	return handler.Validate(func(ctx handler.Context) (any, error) {
		if len(checks) == 0 {
			return handler.JSON(healthStatus{Status: "alive"}), nil
		}
		for _, check := range checks {
			if err := check(ctx); err != nil {
				return handler.JSON(healthStatus{Status: "not_ready"}, handler.WithJSONStatus(http.StatusServiceUnavailable)), nil
			}
		}
		return handler.JSON(healthStatus{Status: "ready"}), nil
	})
}
