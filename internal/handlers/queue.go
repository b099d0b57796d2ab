package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"strconv"
	"strings"

	"reid-dashboard/internal/backend"
	"reid-dashboard/internal/dashboard"
	"reid-dashboard/internal/models"

	"github.com/gin-gonic/gin"
)

// maxUploadBytes bounds the URL file accepted by the upload form
const maxUploadBytes = 10 << 20

// selectionStatuses are the radio choices of the queue errors table
var selectionStatuses = append([]models.QueueStatus{models.QueueStatusNone}, models.ResolutionStatuses...)

// QueuePage is the data of the queue template
type QueuePage struct {
	Tab      string
	Statuses []models.QueueStatus

	Stats      *models.QueueStats
	StatsError string
	Errors     dashboard.QueueErrorsView

	Domains        []string
	BrowseStatuses []models.QueueStatus
	Filter         models.QueueFilter
	Browse         *models.QueuePage
	BrowseError    string
	BrowsePages    int
	PrevURL        string
	NextURL        string
}

// Queue renders the queue management page
func (h *PageHandler) Queue(c *gin.Context) {
	ctx := c.Request.Context()
	sess := currentSession(c)

	page := QueuePage{Tab: c.DefaultQuery("tab", "stats"), Statuses: selectionStatuses}
	switch page.Tab {
	case "stats":
		h.loadStats(c, &page)
		if !sess.QueueErrors.View().Loaded {
			if err := sess.QueueErrors.Load(ctx, h.api); err != nil {
				log.Printf("[Queue] Error loading queue errors: %v", err)
			}
		}
		page.Errors = sess.QueueErrors.View()
	case "upload":
	case "browse":
		h.loadBrowse(c, &page)
	default:
		redirect(c, "/queue")
		return
	}

	h.render(c, "queue.html", "Queue Management", page)
}

func (h *PageHandler) loadStats(c *gin.Context, page *QueuePage) {
	ctx := c.Request.Context()
	stats, err := h.api.QueueStats(ctx)
	switch {
	case errors.Is(err, backend.ErrUnexpectedResponse):
		log.Printf("[Queue] Error fetching queue stats: %v", err)
		page.StatsError = "Invalid response format from server"
		return
	case err != nil:
		log.Printf("[Queue] Error fetching queue stats: %v", err)
		page.StatsError = "Failed to fetch queue statistics"
		return
	}

	if c.Query("refresh_errors") != "" {
		if n, err := h.api.QueueErrorCount(ctx); err != nil {
			log.Printf("[Queue] Error fetching error count: %v", err)
			currentSession(c).Toasts.Push(dashboard.Toast{Kind: dashboard.ToastError, Message: "Failed to refresh error count"})
		} else {
			stats.Errors = n
		}
	}
	page.Stats = stats
}

func (h *PageHandler) loadBrowse(c *gin.Context, page *QueuePage) {
	ctx := c.Request.Context()
	page.BrowseStatuses = models.BrowseStatuses
	page.Filter = models.QueueFilter{
		Domain: c.DefaultQuery("domain", models.QueueFilterAll),
		Status: c.DefaultQuery("status", models.QueueFilterAll),
		Date:   c.Query("date"),
		Page:   1,
	}
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 1 {
		page.Filter.Page = p
	}
	page.BrowsePages = 1

	domains, err := h.api.Domains(ctx)
	if err != nil {
		log.Printf("[Queue] Error fetching domains: %v", err)
	}
	page.Domains = domains

	if !dashboard.ValidDate(page.Filter.Date) {
		page.BrowseError = "Invalid date, use YYYY-MM-DD"
		return
	}

	result, err := h.api.ListQueue(ctx, page.Filter)
	if err != nil {
		log.Printf("[Queue] Error fetching queue items: %v", err)
		page.BrowseError = "Failed to load queue items"
		return
	}
	page.Browse = result
	page.BrowsePages = result.TotalPages()
	page.PrevURL = browseURL(page.Filter, page.Filter.Page-1)
	page.NextURL = browseURL(page.Filter, page.Filter.Page+1)
}

func browseURL(f models.QueueFilter, p int) string {
	q := url.Values{}
	q.Set("tab", "browse")
	q.Set("domain", f.Domain)
	q.Set("status", f.Status)
	if f.Date != "" {
		q.Set("date", f.Date)
	}
	q.Set("page", strconv.Itoa(p))
	return "/queue?" + q.Encode()
}

// SyncQueue asks the backend to reconcile queue statuses with listings
func (h *PageHandler) SyncQueue(c *gin.Context) {
	sess := currentSession(c)
	result, err := h.api.SyncQueue(c.Request.Context())
	if err != nil {
		log.Printf("[Queue] Sync failed: %v", err)
		sess.Toasts.Push(dashboard.Toast{Kind: dashboard.ToastError, Message: fmt.Sprintf("Failed to sync queues: %v", err)})
		redirect(c, "/queue")
		return
	}

	summary := result.Summary()
	log.Printf("[Queue] %s", summary)
	sess.Toasts.Push(dashboard.Toast{Kind: dashboard.ToastInfo, Message: summary})
	h.recordAction(c, models.ActionQueueSync, "queue", result.Count, summary)
	redirect(c, "/queue")
}

// Upload forwards a JSON URL file to the backend
func (h *PageHandler) Upload(c *gin.Context) {
	sess := currentSession(c)
	const back = "/queue?tab=upload"
	reject := func() {
		sess.Toasts.Push(dashboard.Toast{Kind: dashboard.ToastError, Message: "Please upload a JSON file"})
		redirect(c, back)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		reject()
		return
	}
	defer file.Close()

	body, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil || len(body) > maxUploadBytes {
		reject()
		return
	}
	if !backend.IsJSONUpload(header.Filename, header.Header.Get("Content-Type"), body) {
		reject()
		return
	}

	if err := h.api.Upload(c.Request.Context(), header.Filename, bytes.NewReader(body)); err != nil {
		log.Printf("[Queue] Error uploading URLs: %v", err)
		sess.Toasts.Push(dashboard.Toast{Kind: dashboard.ToastError, Message: "Error uploading URLs"})
		redirect(c, back)
		return
	}

	sess.Toasts.Push(dashboard.Toast{Kind: dashboard.ToastSuccess, Message: "URLs uploaded successfully"})
	h.recordAction(c, models.ActionDataUpload, header.Filename, 0, fmt.Sprintf("%d bytes", len(body)))
	redirect(c, back)
}

// applySelections copies the status_<id> radios of the errors form into the session
func applySelections(c *gin.Context, q *dashboard.QueueErrors) {
	if err := c.Request.ParseForm(); err != nil {
		return
	}
	for key, values := range c.Request.PostForm {
		raw, ok := strings.CutPrefix(key, "status_")
		if !ok || len(values) == 0 {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		status, err := models.ParseQueueStatus(values[0])
		if err != nil {
			continue
		}
		// rows that left the page since the form was rendered are skipped
		_ = q.Select(id, status)
	}
}

// ProcessQueueErrors sends the selected statuses, all of them or the one row named by "only"
func (h *PageHandler) ProcessQueueErrors(c *gin.Context) {
	ctx := c.Request.Context()
	sess := currentSession(c)
	q := sess.QueueErrors
	applySelections(c, q)

	var sent []models.BulkStatusItem
	var toasts []dashboard.Toast
	if only := c.PostForm("only"); only != "" {
		id, err := strconv.ParseInt(only, 10, 64)
		if err != nil {
			toasts = []dashboard.Toast{{Kind: dashboard.ToastError, Message: "Invalid queue item"}}
		} else {
			sent, toasts = q.ProcessOne(ctx, h.api, id)
		}
	} else {
		sent, toasts = q.ProcessAll(ctx, h.api)
	}
	sess.Toasts.Push(toasts...)

	if len(sent) > 0 && succeeded(toasts) {
		h.recordAction(c, models.ActionQueueBulkStatus, "queue/errors", len(sent), toasts[0].Message)
	}
	redirect(c, "/queue")
}

// QueueErrorsPage moves between pages of the errors table or reloads it
func (h *PageHandler) QueueErrorsPage(c *gin.Context) {
	sess := currentSession(c)
	q := sess.QueueErrors
	applySelections(c, q)

	switch c.PostForm("action") {
	case "prev":
		if !q.Prev() {
			redirect(c, "/queue")
			return
		}
	case "next":
		if !q.Next() {
			redirect(c, "/queue")
			return
		}
	default:
		q.Reset()
	}

	if err := q.Load(c.Request.Context(), h.api); err != nil {
		log.Printf("[Queue] Error loading queue errors: %v", err)
		sess.Toasts.Push(dashboard.Toast{Kind: dashboard.ToastError, Message: "Failed to load queue errors"})
	}
	redirect(c, "/queue")
}

// LoadTitles fetches the page title of one row ("id") or of every visible row
func (h *PageHandler) LoadTitles(c *gin.Context) {
	ctx := c.Request.Context()
	sess := currentSession(c)
	q := sess.QueueErrors
	applySelections(c, q)

	if raw := c.PostForm("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			err = q.LoadTitle(ctx, h.titles, id)
		}
		if err != nil {
			sess.Toasts.Push(dashboard.Toast{Kind: dashboard.ToastError, Message: fmt.Sprintf("Failed to load title: %v", err)})
		}
		redirect(c, "/queue")
		return
	}

	n := q.LoadAllTitles(ctx, h.titles)
	log.Printf("[Queue] Loaded %d titles", n)
	redirect(c, "/queue")
}
