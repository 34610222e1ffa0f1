package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestLoggingMiddleware_LogsBasicInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := Stack(RequestID, NewRequestLoggingMiddleware(logger).Handler)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/stories?page=2", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	out := buf.String()
	for _, want := range []string{"method=GET", "path=\"/stories?page=2\"", "status=200", "duration_ms=", "ip=192.168.1.1", "htmx=true", "request_id="} {
		if !strings.Contains(out, want) {
			t.Errorf("log should contain %q, got: %s", want, out)
		}
	}
}

func TestRequestLoggingMiddleware_LogsClientIPFromProxy(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := NewRequestLoggingMiddleware(logger).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/stories", nil)
	req.RemoteAddr = "10.0.0.1:8080"
	req.Header.Set("X-Forwarded-For", "203.0.113.195, 10.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !strings.Contains(buf.String(), "203.0.113.195") {
		t.Errorf("log should contain client IP from X-Forwarded-For, got: %s", buf.String())
	}
}

func TestRequestLoggingMiddleware_ServerErrorsLogAtWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := NewRequestLoggingMiddleware(logger).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/stories", nil))

	if !strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("expected WARN level for 502, got: %s", buf.String())
	}
}

func TestRequestLoggingMiddleware_SkipsNoisyPaths(t *testing.T) {
	for _, path := range []string{"/health", "/metrics", "/static/css/app.css"} {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		handler := NewRequestLoggingMiddleware(logger).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))

		if buf.Len() != 0 {
			t.Errorf("%s should not be logged, got: %s", path, buf.String())
		}
	}
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		path, query, want string
	}{
		{"/stories", "", "/stories"},
		{"/stories", "page=3", "/stories?page=3"},
		{"/stories", "page=3&authToken=abc", "/stories?page=3&authToken=[REDACTED]"},
		{"/x", "csrf_token=abc&Password=p", "/x?csrf_token=[REDACTED]&Password=[REDACTED]"},
		{"/x", "flag", "/x"},
	}
	for _, tc := range tests {
		if got := sanitizePath(tc.path, tc.query); got != tc.want {
			t.Errorf("sanitizePath(%q, %q) = %q, want %q", tc.path, tc.query, got, tc.want)
		}
	}
}
