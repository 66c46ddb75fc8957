// file: internal/mcp/router/middleware.go
package router

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkoosis/clevermcp/internal/logging"
	"github.com/dkoosis/clevermcp/internal/metrics"
)

// LoggingMiddleware logs each dispatched method with its duration and outcome.
func LoggingMiddleware(logger logging.Logger) Middleware {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return func(method string, next Handler) Handler {
		return func(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
			start := time.Now()
			result, err := next(ctx, params)
			log := logger.WithContext(ctx)
			if err != nil {
				log.Debug("Method failed.", "method", method, "duration", time.Since(start), "error", err)
			} else {
				log.Debug("Method handled.", "method", method, "duration", time.Since(start), "result_bytes", len(result))
			}
			return result, err
		}
	}
}

// MetricsMiddleware records request counts and latency per method.
func MetricsMiddleware(m *metrics.Metrics) Middleware {
	return func(method string, next Handler) Handler {
		return func(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
			start := time.Now()
			result, err := next(ctx, params)
			m.ObserveRequest(method, time.Since(start), err)
			return result, err
		}
	}
}
