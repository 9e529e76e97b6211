// Package middleware carries the HTTP middleware shared by every route:
// request correlation and structured request logging.
package middleware

import (
	"context"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ctxKey int

const reqIDKey ctxKey = iota

// HeaderRequestID is the header a caller may set to propagate its own
// correlation ID; the same header carries the ID back on the response.
const HeaderRequestID = "X-Request-Id"

// GetReqID returns the correlation ID for the request, or an empty string
// outside the RequestID middleware.
func GetReqID(ctx context.Context) string {
	id, _ := ctx.Value(reqIDKey).(string)
	return id
}

// RequestID attaches a correlation ID to the request context and echoes it in
// the response headers. An incoming X-Request-Id is honored, so IDs survive
// hops through proxies that already tag requests.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), reqIDKey, id)))
	})
}

// Logger emits one structured log line per request with the correlation ID,
// status, response size and latency.
func Logger(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Infow("HTTP request",
				"request_id", GetReqID(r.Context()),
				"method", r.Method,
				"path", r.RequestURI,
				"status", status,
				"size", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
