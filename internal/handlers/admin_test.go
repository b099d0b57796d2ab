package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reid-dashboard/internal/cleanup"
	"reid-dashboard/internal/dashboard"
	"reid-dashboard/internal/database"
	"reid-dashboard/internal/models"
	"reid-dashboard/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

type stubCleanup struct {
	result *cleanup.CleanupResult
	err    error
	calls  int
}

func (s *stubCleanup) RunCleanup() (*cleanup.CleanupResult, error) {
	s.calls++
	return s.result, s.err
}

func newAdminRouter(h *AdminHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.Register(r.Group("/api"))
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, out any) int {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	if out != nil {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s: %v (%s)", path, err, w.Body.String())
		}
	}
	return w.Code
}

func TestHealth(t *testing.T) {
	sessions := dashboard.NewSessionStore(time.Hour)
	sessions.Get("")
	sessions.Get("")
	h := NewAdminHandler(database.NewMemoryStore(10), sessions, ratelimit.NewRateLimiter(10, 100, true), nil, 0)

	var body struct {
		Status    string `json:"status"`
		Sessions  int    `json:"sessions"`
		RateLimit bool   `json:"rate_limit"`
	}
	if code := doJSON(t, newAdminRouter(h), http.MethodGet, "/api/health", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body.Status != "ok" || body.Sessions != 2 || !body.RateLimit {
		t.Errorf("body = %+v", body)
	}

	off := NewAdminHandler(database.NewMemoryStore(10), sessions, ratelimit.NewRateLimiter(10, 100, false), nil, 0)
	body.RateLimit = true
	doJSON(t, newAdminRouter(off), http.MethodGet, "/api/health", &body)
	if body.RateLimit {
		t.Error("disabled limiter reported as enforcing")
	}
}

func TestGetRecentActivity(t *testing.T) {
	store := database.NewMemoryStore(10)
	ctx := context.Background()
	for _, a := range []string{models.ActionTagMark, models.ActionTagMark, models.ActionQueueSync} {
		if err := store.Record(ctx, &models.ActionLog{Action: a}); err != nil {
			t.Fatal(err)
		}
	}
	r := newAdminRouter(NewAdminHandler(store, dashboard.NewSessionStore(time.Hour), ratelimit.NewRateLimiter(10, 100, true), nil, 2))

	t.Run("default limit", func(t *testing.T) {
		var body struct {
			Actions  []models.ActionLog `json:"actions"`
			Count    int                `json:"count"`
			ByAction map[string]int64   `json:"by_action"`
		}
		if code := doJSON(t, r, http.MethodGet, "/api/activity", &body); code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		if body.Count != 2 || len(body.Actions) != 2 {
			t.Fatalf("count = %d, actions = %d", body.Count, len(body.Actions))
		}
		if body.Actions[0].Action != models.ActionQueueSync {
			t.Errorf("newest first, got %q", body.Actions[0].Action)
		}
		if body.ByAction[models.ActionTagMark] != 2 || body.ByAction[models.ActionQueueSync] != 1 {
			t.Errorf("by_action = %v", body.ByAction)
		}
	})

	t.Run("bad limit", func(t *testing.T) {
		if code := doJSON(t, r, http.MethodGet, "/api/activity?limit=zero", nil); code != http.StatusBadRequest {
			t.Errorf("status = %d", code)
		}
	})
}

func TestRunCleanup(t *testing.T) {
	store := database.NewMemoryStore(10)
	sessions := dashboard.NewSessionStore(time.Hour)
	limiter := ratelimit.NewRateLimiter(10, 100, true)

	t.Run("not configured", func(t *testing.T) {
		r := newAdminRouter(NewAdminHandler(store, sessions, limiter, nil, 0))
		if code := doJSON(t, r, http.MethodPost, "/api/cleanup/run", nil); code != http.StatusServiceUnavailable {
			t.Errorf("status = %d", code)
		}
	})

	t.Run("success", func(t *testing.T) {
		stub := &stubCleanup{result: &cleanup.CleanupResult{TargetCount: 4, DeletedCount: 4}}
		r := newAdminRouter(NewAdminHandler(store, sessions, limiter, stub, 0))

		var body cleanup.CleanupResult
		if code := doJSON(t, r, http.MethodPost, "/api/cleanup/run", &body); code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		if stub.calls != 1 || body.DeletedCount != 4 {
			t.Errorf("calls = %d, body = %+v", stub.calls, body)
		}
	})

	t.Run("failure", func(t *testing.T) {
		stub := &stubCleanup{err: errors.New("safety check failed")}
		r := newAdminRouter(NewAdminHandler(store, sessions, limiter, stub, 0))
		var body map[string]string
		if code := doJSON(t, r, http.MethodPost, "/api/cleanup/run", &body); code != http.StatusInternalServerError {
			t.Errorf("status = %d", code)
		}
		if body["error"] != "safety check failed" {
			t.Errorf("body = %v", body)
		}
	})
}

func TestGetRateLimitStats(t *testing.T) {
	limiter := ratelimit.NewRateLimiter(10, 100, true)
	limiter.Allow("192.0.2.1")
	r := newAdminRouter(NewAdminHandler(database.NewMemoryStore(10), dashboard.NewSessionStore(time.Hour), limiter, nil, 0))

	var stats ratelimit.Stats
	if code := doJSON(t, r, http.MethodGet, "/api/ratelimit/stats", &stats); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	// httptest requests come from 192.0.2.1
	if !stats.Enabled || stats.RequestsLastMinute != 1 || stats.RemainingThisMinute != 9 {
		t.Errorf("stats = %+v", stats)
	}
}
