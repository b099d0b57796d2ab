package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"reid-dashboard/internal/cleanup"
	"reid-dashboard/internal/dashboard"
	"reid-dashboard/internal/database"
	"reid-dashboard/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// CleanupRunner triggers an action log purge
type CleanupRunner interface {
	RunCleanup() (*cleanup.CleanupResult, error)
}

// AdminHandler handles the operational JSON endpoints under /api
type AdminHandler struct {
	actions       database.ActionStore
	sessions      *dashboard.SessionStore
	limiter       *ratelimit.RateLimiter
	cleanup       CleanupRunner
	activityLimit int
}

// NewAdminHandler creates a new admin handler. cleanup may be nil.
func NewAdminHandler(actions database.ActionStore, sessions *dashboard.SessionStore, limiter *ratelimit.RateLimiter, cleanup CleanupRunner, activityLimit int) *AdminHandler {
	if activityLimit <= 0 {
		activityLimit = 50
	}
	return &AdminHandler{
		actions:       actions,
		sessions:      sessions,
		limiter:       limiter,
		cleanup:       cleanup,
		activityLimit: activityLimit,
	}
}

// Register mounts the admin routes on an /api group
func (h *AdminHandler) Register(api *gin.RouterGroup) {
	api.GET("/health", h.Health)
	api.GET("/activity", h.GetRecentActivity)
	api.GET("/ratelimit/stats", h.GetRateLimitStats)
	api.POST("/cleanup/run", h.RunCleanup)
}

// Health reports liveness and the number of live sessions
func (h *AdminHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"time":       time.Now(),
		"sessions":   h.sessions.Len(),
		"rate_limit": h.limiter.Enabled(),
	})
}

// GetRecentActivity returns the latest curation actions and totals per action
func (h *AdminHandler) GetRecentActivity(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.activityLimit)))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	ctx := c.Request.Context()
	actions, err := h.actions.Recent(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	counts, err := h.actions.CountByAction(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"actions":   actions,
		"count":     len(actions),
		"by_action": counts,
	})
}

// GetRateLimitStats returns the proxy rate limiter statistics of the caller
func (h *AdminHandler) GetRateLimitStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.limiter.GetStats(c.ClientIP()))
}

// RunCleanup purges expired action log entries now
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	if h.cleanup == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Cleanup not available",
		})
		return
	}

	log.Println("Admin: Manual action log cleanup requested")
	result, err := h.cleanup.RunCleanup()
	if err != nil {
		log.Printf("Admin: Cleanup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("Admin: Cleanup completed: %d/%d deleted (dry-run: %v)",
		result.DeletedCount, result.TargetCount, result.DryRun)
	c.JSON(http.StatusOK, result)
}
