package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wayline/fleet/pkg/httpx"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("allows up to burst then rejects", func(t *testing.T) {
		config := httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
		h := httpx.RateLimitByIP(config)(okHandler())

		require.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1").Code)
		require.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1").Code)

		rec := doRequest(h, "10.0.0.1")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
	})

	t.Run("buckets are per key", func(t *testing.T) {
		config := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		h := httpx.RateLimitByIP(config)(okHandler())

		require.Equal(t, http.StatusOK, doRequest(h, "10.0.0.2").Code)
		require.Equal(t, http.StatusTooManyRequests, doRequest(h, "10.0.0.2").Code)
		require.Equal(t, http.StatusOK, doRequest(h, "10.0.0.3").Code)
	})

	t.Run("missing key allows request", func(t *testing.T) {
		config := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		empty := func(*http.Request) string { return "" }
		h := httpx.RateLimitMiddleware(config, empty)(okHandler())

		require.Equal(t, http.StatusOK, doRequest(h, "10.0.0.4").Code)
		require.Equal(t, http.StatusOK, doRequest(h, "10.0.0.4").Code)
	})
}

func TestIPKeyExtractor(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:4242"
	require.Equal(t, "192.0.2.10", httpx.IPKeyExtractor(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 192.0.2.10")
	require.Equal(t, "203.0.113.7", httpx.IPKeyExtractor(req))
}
