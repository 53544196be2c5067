package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "203.0.113.5:4000", nil, "203.0.113.5"},
		{"remote addr without port", "203.0.113.5", nil, "203.0.113.5"},
		{"forwarded for", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "198.51.100.2"}, "198.51.100.2"},
		{"forwarded chain", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "198.51.100.2, 10.0.0.9"}, "198.51.100.2"},
		{"real ip", "10.0.0.1:1", map[string]string{"X-Real-IP": "198.51.100.3"}, "198.51.100.3"},
		{"ipv6", "[2001:db8::1]:8181", nil, "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoggingMiddleware(t *testing.T) {
	var out bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&out)
	logger.SetFormatter(&logrus.JSONFormatter{})

	h := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("hello"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/page", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
	line := out.String()
	for _, want := range []string{`"status":418`, `"bytes":5`, `"path":"/page"`, `"component":"http_middleware"`} {
		if !strings.Contains(line, want) {
			t.Errorf("log line missing %s: %s", want, line)
		}
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:1000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "192.0.2.2:1000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Errorf("second client = %d, want 200", rec.Code)
	}

	now = now.Add(time.Minute)
	if n := rl.evictIdle(); n != 0 {
		t.Errorf("evicted %d clients before idle TTL", n)
	}
	now = now.Add(5 * time.Minute)
	if n := rl.evictIdle(); n != 2 {
		t.Errorf("evicted %d clients, want 2", n)
	}
}

func TestRateLimiterNonPositiveWindow(t *testing.T) {
	for _, window := range []time.Duration{0, -time.Minute} {
		rl := NewRateLimiter(2, window)

		want := NewRateLimiter(2, time.Minute).limit
		if rl.limit != want {
			t.Errorf("window %v: limit = %v, want %v", window, rl.limit, want)
		}

		now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		rl.now = func() time.Time { return now }
		allowed := 0
		for i := 0; i < 5; i++ {
			if rl.allow("192.0.2.1") {
				allowed++
			}
		}
		if allowed != 2 {
			t.Errorf("window %v: allowed %d of 5, want 2", window, allowed)
		}
	}
}
