// logging/transport.go
package logging

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Transport wraps next (http.DefaultTransport when nil) and logs every
// outgoing request at debug level, failures at warn. Each hop of a redirect
// chain is its own line; redirected=true marks hops issued by following one.
func Transport(next http.RoundTripper, logger *zap.Logger) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return roundTripFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(r)
		latency := time.Since(start)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("url", r.URL.String()),
			zap.Bool("redirected", r.Response != nil),
			zap.Duration("latency", latency),
		}
		if err != nil {
			logger.Warn("http_client_request", append(fields, zap.Error(err))...)
			return nil, err
		}
		logger.Debug("http_client_request", append(fields,
			zap.Int("status", resp.StatusCode),
			zap.String("location", resp.Header.Get("Location")),
		)...)
		return resp, nil
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
