package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type contextKey int

const (
	userIDKey contextKey = iota
	requestIDKey
)

// userIDHeader carries the authenticated user's id, set by the fronting
// auth proxy. The daemon trusts it as-is.
const userIDHeader = "X-User-ID"

const requestIDHeader = "X-Request-ID"

// userID returns the authenticated user id. Routes behind requireUser
// always have one.
func userID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}

// requireUser rejects requests without a valid user id header and stores
// the parsed id in the request context.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.Header.Get(userIDHeader), 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid X-User-ID header")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, id)))
	})
}

// requestID tags each request with an id, honoring an inbound one so ids
// correlate across the proxy chain.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.status = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.status = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// logRequests emits one structured log line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", float64(time.Since(start).Microseconds()) / 1000,
		}
		if id, ok := r.Context().Value(requestIDKey).(string); ok {
			args = append(args, "request_id", id)
		}

		switch {
		case rec.status >= 500:
			s.log.Error("request", args...)
		case rec.status >= 400:
			s.log.Warn("request", args...)
		default:
			s.log.Info("request", args...)
		}
	})
}
