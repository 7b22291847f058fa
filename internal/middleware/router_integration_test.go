package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// TestRouterIntegration_RealIPFeedsRateLimiter はchiのRealIPで解決したIPごとに制限されることを検証する。
func TestRouterIntegration_RealIPFeedsRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.1, Burst: 1, CleanupInterval: time.Minute})
	defer rl.Stop()

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(rl.Middleware())
	r.Get("/api/countries", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	send := func(forwardedFor string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/countries", nil)
		req.RemoteAddr = "10.0.0.1:5555" // プロキシ
		req.Header.Set("X-Forwarded-For", forwardedFor)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Result().StatusCode
	}

	if got := send("203.0.113.50"); got != http.StatusOK {
		t.Fatalf("first request: status = %d", got)
	}
	if got := send("203.0.113.50"); got != http.StatusTooManyRequests {
		t.Errorf("second request from same client: status = %d, want 429", got)
	}
	// 同じプロキシ経由でも別クライアントは制限されない
	if got := send("203.0.113.51"); got != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", got)
	}
}

// TestRouterIntegration_NotFoundUsesUnifiedFormat は存在しないパスが統一エラーで返ることを検証する。
func TestRouterIntegration_NotFoundUsesUnifiedFormat(t *testing.T) {
	r := chi.NewRouter()
	r.NotFound(WriteNotFound)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/unknown", nil))

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", w.Result().StatusCode)
	}
	if ct := w.Result().Header.Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}
