package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		header   string
		wantSame bool
	}{
		{"generated when absent", "", false},
		{"propagated when present", "req-123", true},
		{"replaced when oversized", strings.Repeat("x", 200), false},
		{"replaced when it carries spaces", "req 123", false},
		{"replaced when it carries control bytes", "req\x01forged", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var seen string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Header().Get(RequestIDHeader) != seen {
				t.Errorf("response header %q != context id %q", rec.Header().Get(RequestIDHeader), seen)
			}
			if tt.wantSame {
				if seen != tt.header {
					t.Errorf("request id = %q, want %q", seen, tt.header)
				}
				return
			}
			if _, err := uuid.Parse(seen); err != nil {
				t.Errorf("expected generated UUID, got %q", seen)
			}
		})
	}
}

func TestRequestID_TraceID(t *testing.T) {
	t.Parallel()

	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetTraceID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceIDHeader, "trace-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "trace-abc" {
		t.Errorf("trace id = %q, want trace-abc", seen)
	}
	if rec.Header().Get(TraceIDHeader) != "trace-abc" {
		t.Errorf("trace header not echoed")
	}
}

func TestRequestID_MalformedTraceIDDropped(t *testing.T) {
	t.Parallel()

	seen := "unset"
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetTraceID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceIDHeader, "trace\tinjected")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "" {
		t.Errorf("trace id = %q, want empty", seen)
	}
	if got := rec.Header().Get(TraceIDHeader); got != "" {
		t.Errorf("malformed trace header echoed: %q", got)
	}
}

func TestGetRequestID_OutsideMiddleware(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := GetRequestID(req.Context()); id != "" {
		t.Errorf("expected empty id, got %q", id)
	}
}
