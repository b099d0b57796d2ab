package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"reid-dashboard/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

func newAPIRouter(global gin.HandlerFunc, mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if global != nil {
		r.Use(global)
	}
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "page") })
	api := r.Group("/api", mw...)
	api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	api.OPTIONS("/proxy", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestCORSHeaders(t *testing.T) {
	r := newAPIRouter(CORS("/api", "/api/proxy"))

	t.Run("cross origin request", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "http://elsewhere.test")
		r.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Allow-Origin = %q", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("Allow-Credentials = %q", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET,DELETE,PATCH,POST,PUT" {
			t.Errorf("Allow-Methods = %q", got)
		}
		if w.Header().Get("Access-Control-Allow-Headers") == "" {
			t.Error("Allow-Headers missing")
		}
	})

	t.Run("request without origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		want := map[string]string{
			"Access-Control-Allow-Credentials": "true",
			"Access-Control-Allow-Origin":      "*",
			"Access-Control-Allow-Methods":     "GET,DELETE,PATCH,POST,PUT",
			"Access-Control-Allow-Headers":     "X-CSRF-Token, X-Requested-With, Accept, Accept-Version, Content-Length, Content-MD5, Content-Type, Date, X-Api-Version",
		}
		for k, v := range want {
			if got := w.Header().Get(k); got != v {
				t.Errorf("%s = %q, want %q", k, got, v)
			}
		}
	})

	t.Run("preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
		req.Header.Set("Origin", "http://elsewhere.test")
		req.Header.Set("Access-Control-Request-Method", "PATCH")
		r.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET,DELETE,PATCH,POST,PUT" {
			t.Errorf("Allow-Methods = %q", got)
		}
		if w.Header().Get("Access-Control-Allow-Headers") == "" {
			t.Error("Allow-Headers missing")
		}
	})

	t.Run("pages are untouched", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://elsewhere.test")
		r.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q, want none", got)
		}
	})

	t.Run("own preflight handler answers", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/proxy", nil)
		req.Header.Set("Origin", "http://elsewhere.test")
		req.Header.Set("Access-Control-Request-Method", "GET")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})
}

func TestRateLimit(t *testing.T) {
	rl := ratelimit.NewRateLimiter(2, 0, true)
	r := newAPIRouter(nil, RateLimit(rl))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("other client status = %d", w.Code)
	}
}
