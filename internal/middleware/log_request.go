package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const maxLoggedBody = 1000

// Query parameters and headers carrying credentials.
var (
	redactedParams  = []string{"code", "state"}
	redactedHeaders = map[string]bool{"Authorization": true, "Cookie": true}
)

// LogRequests logs every request with its outcome. Headers and POST bodies
// are only logged at debug level.
func LogRequests(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			if logger.Core().Enabled(zap.DebugLevel) {
				logRequestDetails(logger, r)
			}

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("request",
				zap.String("request_id", chimw.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", redactQuery(r.URL.Query())),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

func logRequestDetails(logger *zap.Logger, r *http.Request) {
	for name, values := range r.Header {
		for _, value := range values {
			if redactedHeaders[name] {
				value = "[redacted]"
			}
			logger.Debug("header", zap.String("name", name), zap.String("value", value))
		}
	}

	if r.Method != http.MethodPost || r.Body == nil {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Debug("error reading request body", zap.Error(err))
		return
	}

	logger.Debug("request body", zap.String("body", string(body[:min(len(body), maxLoggedBody)])))

	// Rewind the body so it can be processed by the next handler
	r.Body = io.NopCloser(bytes.NewReader(body))
}

func redactQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	for _, p := range redactedParams {
		if q.Has(p) {
			q.Set(p, "[redacted]")
		}
	}
	return q.Encode()
}
