package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"directory-enricher/internal/common/logging"
	"directory-enricher/internal/directory"
)

// responseWriter wraps http.ResponseWriter to capture status code and
// response size
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// LoggingMiddleware logs every request with method, path, status,
// duration and response size. Lookup requests additionally carry the
// normalized employee identity so a lookup can be correlated with the
// cache and client log lines for the same identity.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK, // default to 200
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)

		fields := []logging.Field{
			{Key: "method", Value: r.Method},
			{Key: "path", Value: r.URL.Path},
			{Key: "status", Value: wrapped.statusCode},
			{Key: "duration_ms", Value: duration.Milliseconds()},
			{Key: "bytes", Value: wrapped.bytes},
			{Key: "remote_addr", Value: r.RemoteAddr},
		}

		// Mux middleware runs after route matching, so path variables
		// are available here.
		if email, ok := mux.Vars(r)["email"]; ok {
			fields = append(fields, logging.Field{Key: "identity", Value: directory.NormalizeIdentity(email)})
		}

		if r.URL.RawQuery != "" {
			fields = append(fields, logging.Field{Key: "query", Value: r.URL.RawQuery})
		}

		if wrapped.statusCode >= 500 {
			logging.Error("HTTP request completed", nil, fields...)
		} else if wrapped.statusCode >= 400 {
			logging.Warn("HTTP request completed", fields...)
		} else {
			logging.Info("HTTP request completed", fields...)
		}
	})
}
