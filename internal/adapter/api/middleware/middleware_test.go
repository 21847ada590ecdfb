package middleware

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/V4T54L/causeway/internal/domain/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
})

func TestAuth(t *testing.T) {
	repo := &mocks.MockAPIKeyRepository{Valid: map[string]bool{"good": true}}

	tests := []struct {
		name           string
		header         string
		value          string
		repoErr        error
		expectedStatus int
	}{
		{"Valid key", APIKeyHeader, "good", nil, http.StatusOK},
		{"Bearer token", "Authorization", "Bearer good", nil, http.StatusOK},
		{"Invalid key", APIKeyHeader, "bad", nil, http.StatusUnauthorized},
		{"Missing key", "", "", nil, http.StatusUnauthorized},
		{"Basic auth is not a key", "Authorization", "Basic Z29vZA==", nil, http.StatusUnauthorized},
		{"Repository error", APIKeyHeader, "good", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo.Err = tt.repoErr
			h := Auth(repo, testLogger())(okHandler)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	h := RateLimit(rl, testLogger())(okHandler)

	do := func(key string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(APIKeyHeader, key)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	for i := 0; i < 2; i++ {
		if code := do("a"); code != http.StatusOK {
			t.Fatalf("expected burst request %d to pass, got %d", i, code)
		}
	}
	if code := do("a"); code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after the burst, got %d", code)
	}
	if code := do("b"); code != http.StatusOK {
		t.Errorf("expected another client to have its own budget, got %d", code)
	}

	now = now.Add(time.Second)
	if code := do("a"); code != http.StatusOK {
		t.Errorf("expected a token to be refilled, got %d", code)
	}

	now = now.Add(2 * limiterIdleTTL)
	rl.Allow("c")
	if _, ok := rl.clients["b"]; ok {
		t.Error("expected idle clients to be evicted")
	}
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if got := clientKey(req); got != "ip:10.0.0.1" {
		t.Errorf("expected ip:10.0.0.1, got %s", got)
	}
	req.Header.Set(APIKeyHeader, "k")
	if got := clientKey(req); got != "key:k" {
		t.Errorf("expected key:k, got %s", got)
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	t.Run("Generates request id", func(t *testing.T) {
		buf.Reset()
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/pot", nil))

		if rr.Header().Get(RequestIDHeader) == "" {
			t.Error("expected a request id header")
		}
		out := buf.String()
		for _, want := range []string{`"status":418`, `"path":"/pot"`, `"bytes":15`} {
			if !strings.Contains(out, want) {
				t.Errorf("expected log to contain %s, got %s", want, out)
			}
		}
	})

	t.Run("Keeps caller request id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/pot", nil)
		req.Header.Set(RequestIDHeader, "abc")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		if got := rr.Header().Get(RequestIDHeader); got != "abc" {
			t.Errorf("expected abc, got %q", got)
		}
		if !strings.Contains(buf.String(), `"request_id":"abc"`) {
			t.Errorf("expected the id in the log, got %s", buf.String())
		}
	})
}
