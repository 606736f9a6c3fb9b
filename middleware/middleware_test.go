// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/trev-sykes/feels-aggregate/metrics"
	"github.com/trev-sykes/feels-aggregate/models"
)

func TestWithLogging(t *testing.T) {
	handlerCalled := false
	var seenID string
	testHandler := func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		seenID = RequestID(r.Context())
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	}

	wrappedHandler := WithLogging(testHandler)

	req := httptest.NewRequest("GET", "/api/heatmap", nil)
	w := httptest.NewRecorder()

	wrappedHandler(w, req)

	if !handlerCalled {
		t.Error("Expected handler to be called")
	}
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "success" {
		t.Errorf("Expected body 'success', got '%s'", w.Body.String())
	}

	// Request ID is generated, exposed and passed down
	header := w.Header().Get(RequestIDHeader)
	if header == "" {
		t.Fatal("Expected X-Request-ID header to be set")
	}
	if seenID != header {
		t.Errorf("Expected handler to see request ID %q, got %q", header, seenID)
	}
}

func TestWithLogging_ReusesUpstreamRequestID(t *testing.T) {
	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-123")
	w := httptest.NewRecorder()

	handler(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "upstream-123" {
		t.Errorf("Expected upstream request ID, got %q", got)
	}
}

func TestWithLogging_PreservesResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"OK", http.StatusOK, "ok"},
		{"BadRequest", http.StatusBadRequest, `{"ok":false,"error":"MISSING_EMOTION"}`},
		{"NotFound", http.StatusNotFound, "not found"},
		{"InternalError", http.StatusInternalServerError, "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				w.Write([]byte(tc.body))
			})

			req := httptest.NewRequest("POST", "/api/submit", nil)
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if w.Body.String() != tc.body {
				t.Errorf("Expected body '%s', got '%s'", tc.body, w.Body.String())
			}
		})
	}
}

func TestWithMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/heatmap", WithMetrics(m, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest("GET", "/api/heatmap", nil))
	}

	if n := promtest.CollectAndCount(m.RequestDuration, "feels_http_request_duration_seconds"); n != 1 {
		t.Errorf("Expected one labelled series, got %d", n)
	}
}

func TestJSONResponse(t *testing.T) {
	hour := 14
	testCases := []struct {
		name       string
		statusCode int
		data       any
		expected   string
	}{
		{
			name:       "simple map",
			statusCode: http.StatusOK,
			data:       map[string]string{"message": "hello"},
			expected:   `{"message":"hello"}`,
		},
		{
			name:       "vote accepted",
			statusCode: http.StatusOK,
			data:       models.SubmitVoteResponse{OK: true, Hour: &hour},
			expected:   `{"ok":true,"hour":14}`,
		},
		{
			name:       "vote rejected",
			statusCode: http.StatusOK,
			data:       models.SubmitVoteResponse{Error: models.ErrCodeAlreadyVoted},
			expected:   `{"ok":false,"error":"ALREADY_VOTED"}`,
		},
		{
			name:       "error response",
			statusCode: http.StatusBadRequest,
			data:       models.ErrorResponse{Error: "Bad Request", Message: "missing field"},
			expected:   `{"error":"Bad Request","message":"missing field"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			JSONResponse(w, tc.statusCode, tc.data)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
			}

			// Trim newline added by Encode
			body := strings.TrimSpace(w.Body.String())
			if body != tc.expected {
				t.Errorf("Expected body '%s', got '%s'", tc.expected, body)
			}
		})
	}
}

func TestErrorResponse(t *testing.T) {
	testCases := []struct {
		name          string
		statusCode    int
		message       string
		expectedError string
	}{
		{"bad request", http.StatusBadRequest, "votesPerHour must be positive", "Bad Request"},
		{"unauthorized", http.StatusUnauthorized, "admin key required", "Unauthorized"},
		{"forbidden", http.StatusForbidden, "invalid admin key", "Forbidden"},
		{"internal error", http.StatusInternalServerError, "Backfill failed", "Internal Server Error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			ErrorResponse(w, tc.statusCode, tc.message)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if resp.Error != tc.expectedError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectedError, resp.Error)
			}
			if resp.Message != tc.message {
				t.Errorf("Expected message '%s', got '%s'", tc.message, resp.Message)
			}
		})
	}
}

func TestParseJSONBody(t *testing.T) {
	t.Run("valid JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"emotion":"happy"}`))

		var parsed models.SubmitVoteRequest
		if err := ParseJSONBody(req, &parsed); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if parsed.Emotion != "happy" {
			t.Errorf("Expected emotion 'happy', got '%s'", parsed.Emotion)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{invalid json}`))

		var parsed models.SubmitVoteRequest
		if err := ParseJSONBody(req, &parsed); err == nil {
			t.Error("Expected error for invalid JSON")
		}
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(""))

		var parsed models.SubmitVoteRequest
		if err := ParseJSONBody(req, &parsed); err == nil {
			t.Error("Expected error for empty body")
		}
	})

	t.Run("missing field decodes as empty", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"other":"x"}`))

		var parsed models.SubmitVoteRequest
		if err := ParseJSONBody(req, &parsed); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if parsed.Emotion != "" {
			t.Errorf("Expected empty emotion, got '%s'", parsed.Emotion)
		}
	})

	t.Run("optional rate", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"votesPerHour":12}`))

		var parsed models.SimulateRequest
		if err := ParseJSONBody(req, &parsed); err != nil {
			t.Fatal(err)
		}
		if parsed.VotesPerHour == nil || *parsed.VotesPerHour != 12 {
			t.Errorf("Expected votesPerHour 12, got %v", parsed.VotesPerHour)
		}
	})

	t.Run("body is consumed after parsing", func(t *testing.T) {
		bodyReader := io.NopCloser(bytes.NewReader([]byte(`{"emotion":"sad"}`)))
		req := httptest.NewRequest("POST", "/", bodyReader)

		var parsed models.SubmitVoteRequest
		_ = ParseJSONBody(req, &parsed)

		remaining, _ := io.ReadAll(req.Body)
		if len(remaining) > 0 {
			t.Error("Expected body to be consumed")
		}
	})
}

func TestCORS(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("handled"))
	})

	corsHandler := CORS(nextHandler)

	t.Run("preflight OPTIONS request", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/api/submit", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if w.Body.String() != "" {
			t.Errorf("Expected empty body for preflight, got '%s'", w.Body.String())
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
			t.Error("Expected Access-Control-Allow-Origin to match request origin")
		}
		if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "X-Admin-Key") {
			t.Error("Expected X-Admin-Key in allowed headers")
		}
	})

	t.Run("regular request with origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/heatmap", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		if w.Body.String() != "handled" {
			t.Error("Expected next handler to be called")
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "https://example.com" {
			t.Error("Expected Access-Control-Allow-Origin to reflect request origin")
		}
	})

	t.Run("request without origin defaults to wildcard", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/heatmap", nil)
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		if w.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("Expected Access-Control-Allow-Origin to default to '*'")
		}
	})
}

func TestParseTrustedProxies(t *testing.T) {
	pt, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 127.0.0.1 ", "", "2001:db8::/32"})
	if err != nil {
		t.Fatal(err)
	}
	for ip, want := range map[string]bool{
		"10.1.2.3":        true,
		"127.0.0.1":       true,
		"127.0.0.2":       false,
		"::ffff:10.9.9.9": true,
		"2001:db8::1":     true,
		"203.0.113.5":     false,
		"not-an-ip":       false,
	} {
		if got := pt.trusts(ip); got != want {
			t.Errorf("trusts(%q) = %v, want %v", ip, got, want)
		}
	}

	for _, bad := range []string{"10.0.0.0/99", "localhost"} {
		if _, err := ParseTrustedProxies([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestClientIP(t *testing.T) {
	trust, err := ParseTrustedProxies([]string{"10.0.0.0/8", "127.0.0.1"})
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name       string
		trust      *ProxyTrust
		headers    map[string]string
		remoteAddr string
		expectedIP string
	}{
		{
			name:       "X-Forwarded-For single IP from trusted proxy",
			trust:      trust,
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.100"},
			remoteAddr: "10.0.0.1:12345",
			expectedIP: "192.168.1.100",
		},
		{
			name:       "spoofed leading hops are ignored",
			trust:      trust,
			headers:    map[string]string{"X-Forwarded-For": "1.1.1.1, 2.2.2.2, 203.0.113.195"},
			remoteAddr: "127.0.0.1:12345",
			expectedIP: "203.0.113.195",
		},
		{
			name:       "trusted hops inside the chain are skipped",
			trust:      trust,
			headers:    map[string]string{"X-Forwarded-For": "9.9.9.9, 203.0.113.195, 10.0.0.7"},
			remoteAddr: "10.0.0.1:12345",
			expectedIP: "203.0.113.195",
		},
		{
			name:       "all hops trusted returns leftmost",
			trust:      trust,
			headers:    map[string]string{"X-Forwarded-For": "10.0.0.9, 10.0.0.8"},
			remoteAddr: "10.0.0.1:12345",
			expectedIP: "10.0.0.9",
		},
		{
			name:       "headers from untrusted peer are ignored",
			trust:      trust,
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.100", "X-Real-IP": "203.0.113.50"},
			remoteAddr: "198.51.100.7:4000",
			expectedIP: "198.51.100.7",
		},
		{
			name:       "nil trust ignores headers",
			trust:      nil,
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.100"},
			remoteAddr: "10.0.0.1:12345",
			expectedIP: "10.0.0.1",
		},
		{
			name:       "X-Real-IP from trusted proxy",
			trust:      trust,
			headers:    map[string]string{"X-Real-IP": "203.0.113.50"},
			remoteAddr: "10.0.0.1:12345",
			expectedIP: "203.0.113.50",
		},
		{
			name:       "X-Forwarded-For takes precedence over X-Real-IP",
			trust:      trust,
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.100", "X-Real-IP": "203.0.113.50"},
			remoteAddr: "10.0.0.1:12345",
			expectedIP: "192.168.1.100",
		},
		{
			name:       "blank chain falls back to peer",
			trust:      trust,
			headers:    map[string]string{"X-Forwarded-For": " , "},
			remoteAddr: "10.0.0.5:8080",
			expectedIP: "10.0.0.5",
		},
		{
			name:       "RemoteAddr without port",
			trust:      trust,
			headers:    map[string]string{},
			remoteAddr: "192.168.1.50",
			expectedIP: "192.168.1.50",
		},
		{
			name:       "IPv6 RemoteAddr with port",
			trust:      nil,
			headers:    map[string]string{},
			remoteAddr: "[::1]:12345",
			expectedIP: "::1",
		},
		{
			name:       "IPv6 in X-Forwarded-For",
			trust:      trust,
			headers:    map[string]string{"X-Forwarded-For": "2001:db8::1"},
			remoteAddr: "127.0.0.1:12345",
			expectedIP: "2001:db8::1",
		},
		{
			name:       "nothing usable",
			trust:      trust,
			headers:    map[string]string{},
			remoteAddr: "",
			expectedIP: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			if result := tc.trust.ClientIP(req); result != tc.expectedIP {
				t.Errorf("Expected IP '%s', got '%s'", tc.expectedIP, result)
			}
		})
	}
}

func TestClientIP_RepeatedForwardedHeaders(t *testing.T) {
	trust, _ := ParseTrustedProxies([]string{"10.0.0.1"})
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:80"
	req.Header.Add("X-Forwarded-For", "6.6.6.6")
	req.Header.Add("X-Forwarded-For", "203.0.113.9")

	if got := trust.ClientIP(req); got != "203.0.113.9" {
		t.Errorf("expected last header's hop, got %q", got)
	}
}
