package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pable/go-match-metrics/internal/logger"
)

// instrument records request count and latency under a fixed route label and
// logs server errors.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		took := time.Since(start)
		s.metrics.RecordHTTP(route, r.Method, strconv.Itoa(wrapped.statusCode), took)
		if wrapped.statusCode >= http.StatusInternalServerError {
			s.log.Error(r.Context(), "request failed",
				logger.String("route", route),
				logger.String("method", r.Method),
				logger.Int("status", wrapped.statusCode))
		}
	}
}

// responseWriter captures the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
