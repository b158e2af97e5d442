// Package middleware holds the HTTP middleware chain of the web app.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

// Correlation headers.
const (
	RequestIDHeader = "X-Request-ID"
	TraceIDHeader   = "X-Trace-ID"
)

const (
	requestIDKey contextKey = "request_id"
	traceIDKey   contextKey = "trace_id"
)

// maxCorrelationIDLength bounds client-supplied ids before they reach the logs.
const maxCorrelationIDLength = 128

// RequestID tags each request with an id for log correlation. A client value
// in X-Request-ID is kept when it is short printable ASCII, otherwise a fresh
// UUID replaces it. X-Trace-ID passes through under the same rule and is
// dropped when malformed.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID, ok := correlationID(r.Header.Get(RequestIDHeader))
		if !ok {
			requestID = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set(RequestIDHeader, requestID)

		if traceID, ok := correlationID(r.Header.Get(TraceIDHeader)); ok {
			ctx = context.WithValue(ctx, traceIDKey, traceID)
			w.Header().Set(TraceIDHeader, traceID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// correlationID accepts a header value that is safe to echo and log.
func correlationID(v string) (string, bool) {
	if v == "" || len(v) > maxCorrelationIDLength {
		return "", false
	}
	for i := 0; i < len(v); i++ {
		if c := v[i]; c < '!' || c > '~' {
			return "", false
		}
	}
	return v, true
}

// GetRequestID returns the request id, or "" outside the middleware.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// GetTraceID returns the propagated trace id, if any.
func GetTraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}
