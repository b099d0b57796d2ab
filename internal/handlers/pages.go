package handlers

import (
	"log"
	"net/http"

	"reid-dashboard/internal/dashboard"
	"reid-dashboard/internal/database"
	"reid-dashboard/internal/models"
	"reid-dashboard/internal/titles"
	"reid-dashboard/internal/views"

	"github.com/gin-gonic/gin"
)

// PageHandler serves the dashboard pages and their form posts
type PageHandler struct {
	api      Backend
	chart    *dashboard.ChartCache
	titles   *titles.Loader
	actions  database.ActionStore
	renderer *views.Renderer
}

// NewPageHandler creates a page handler. actions may be nil to skip action logging.
func NewPageHandler(api Backend, chart *dashboard.ChartCache, loader *titles.Loader, actions database.ActionStore, renderer *views.Renderer) *PageHandler {
	return &PageHandler{
		api:      api,
		chart:    chart,
		titles:   loader,
		actions:  actions,
		renderer: renderer,
	}
}

// Register mounts the page routes
func (h *PageHandler) Register(r gin.IRoutes) {
	r.GET("/", h.Dashboard)

	r.GET("/queue", h.Queue)
	r.POST("/queue/sync", h.SyncQueue)
	r.POST("/queue/upload", h.Upload)
	r.POST("/queue/errors/process", h.ProcessQueueErrors)
	r.POST("/queue/errors/page", h.QueueErrorsPage)
	r.POST("/queue/errors/titles", h.LoadTitles)

	r.GET("/tags", h.Tags)
	r.POST("/tags/select", h.SelectTag)
	r.POST("/tags/page", h.ChangeTagsPage)
	r.POST("/tags/edit", h.ToggleEdit)
	r.POST("/tags/change", h.ChangeCell)
	r.POST("/tags/save", h.SaveRow)
	r.POST("/tags/discard", h.DiscardRow)
	r.POST("/tags/mark", h.MarkIssue)
	r.POST("/tags/bulk-mark", h.BulkMark)
}

func (h *PageHandler) render(c *gin.Context, name, title string, data any) {
	sess := currentSession(c)
	page := views.PageData{
		Title:  title,
		Toasts: sess.Toasts.Drain(),
		Data:   data,
	}
	if err := h.renderer.Render(c.Writer, c.Request, name, page); err != nil {
		log.Printf("[Pages] Failed to render %s: %v", name, err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
	}
}

// redirect finishes a form post (post/redirect/get)
func redirect(c *gin.Context, to string) {
	c.Redirect(http.StatusSeeOther, to)
}

func succeeded(toasts []dashboard.Toast) bool {
	return len(toasts) > 0 && toasts[0].Kind == dashboard.ToastSuccess
}

// recordAction appends to the action log; failures are only logged
func (h *PageHandler) recordAction(c *gin.Context, action, target string, count int, detail string) {
	if h.actions == nil {
		return
	}
	entry := &models.ActionLog{
		Action:    action,
		Target:    target,
		ItemCount: count,
		Detail:    detail,
		SessionID: currentSession(c).ID,
	}
	if err := h.actions.Record(c.Request.Context(), entry); err != nil {
		log.Printf("[Actions] Failed to record %s: %v", action, err)
	}
}

// DashboardPage is the data of the dashboard template
type DashboardPage struct {
	Bars       []dashboard.Bar
	ChartError string
	Report     dashboard.ReportView
}

// Dashboard renders the listings chart and the report of the selected month
func (h *PageHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	sess := currentSession(c)
	date := c.Query("date")

	var page DashboardPage
	counts, err := h.chart.Get(ctx)
	if err != nil {
		page.ChartError = "Failed to load listings count"
	}
	page.Bars = dashboard.BuildBars(counts, date)

	sess.Report.Select(ctx, h.api, date)
	page.Report = sess.Report.View()

	h.render(c, "dashboard.html", "Dashboard", page)
}
