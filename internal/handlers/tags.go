package handlers

import (
	"fmt"
	"strconv"

	"reid-dashboard/internal/dashboard"
	"reid-dashboard/internal/models"

	"github.com/gin-gonic/gin"
)

// TagsPage is the data of the tags template
type TagsPage struct {
	View   dashboard.TagsView
	Fields []models.EditableField
}

// Tags renders the data quality triage page. A date query parameter changes the filter.
func (h *PageHandler) Tags(c *gin.Context) {
	ctx := c.Request.Context()
	sess := currentSession(c)

	if date, ok := c.GetQuery("date"); ok {
		if _, err := sess.Tags.SetDate(date); err != nil {
			sess.Toasts.Push(dashboard.Toast{Kind: dashboard.ToastError, Message: "Invalid date, use YYYY-MM-DD"})
		}
	}
	sess.Toasts.Push(sess.Tags.LoadTags(ctx, h.api)...)

	h.render(c, "tags.html", "Data Quality", TagsPage{
		View:   sess.Tags.View(),
		Fields: models.EditableFields,
	})
}

func (h *PageHandler) pushError(c *gin.Context, err error) {
	currentSession(c).Toasts.Push(dashboard.Toast{Kind: dashboard.ToastError, Message: err.Error()})
}

// SelectTag selects the posted tag, or deselects it when already selected
func (h *PageHandler) SelectTag(c *gin.Context) {
	sess := currentSession(c)
	if sess.Tags.SelectTag(c.PostForm("tag")) {
		sess.Toasts.Push(sess.Tags.LoadDetails(c.Request.Context(), h.api, 1)...)
	}
	redirect(c, "/tags")
}

// ChangeTagsPage loads another page of the selected tag's properties
func (h *PageHandler) ChangeTagsPage(c *gin.Context) {
	sess := currentSession(c)
	p, err := strconv.Atoi(c.PostForm("page"))
	if err == nil && sess.Tags.ChangePage(p) {
		sess.Toasts.Push(sess.Tags.LoadDetails(c.Request.Context(), h.api, p)...)
	}
	redirect(c, "/tags")
}

// ToggleEdit flips edit mode of one cell
func (h *PageHandler) ToggleEdit(c *gin.Context) {
	if err := currentSession(c).Tags.ToggleEdit(c.PostForm("row"), c.PostForm("field")); err != nil {
		h.pushError(c, err)
	}
	redirect(c, "/tags")
}

// ChangeCell buffers a cell value until the row is saved
func (h *PageHandler) ChangeCell(c *gin.Context) {
	if err := currentSession(c).Tags.Change(c.PostForm("row"), c.PostForm("field"), c.PostForm("value")); err != nil {
		h.pushError(c, err)
	}
	redirect(c, "/tags")
}

// SaveRow sends a row's buffered edits to the backend
func (h *PageHandler) SaveRow(c *gin.Context) {
	sess := currentSession(c)
	row := c.PostForm("row")
	toasts := sess.Tags.Save(c.Request.Context(), h.api, row)
	sess.Toasts.Push(toasts...)
	if succeeded(toasts) {
		h.recordAction(c, models.ActionTagUpdate, row, 1, sess.Tags.Selected())
	}
	redirect(c, "/tags")
}

// DiscardRow drops a row's buffered edits
func (h *PageHandler) DiscardRow(c *gin.Context) {
	currentSession(c).Tags.Discard(c.PostForm("row"))
	redirect(c, "/tags")
}

// MarkIssue marks one property's issue as solved or ignored
func (h *PageHandler) MarkIssue(c *gin.Context) {
	sess := currentSession(c)
	mode, err := models.ParseIssueMode(c.PostForm("mode"))
	if err != nil {
		h.pushError(c, err)
		redirect(c, "/tags")
		return
	}

	row, tag := c.PostForm("row"), sess.Tags.Selected()
	toasts := sess.Tags.Mark(c.Request.Context(), h.api, row, mode)
	sess.Toasts.Push(toasts...)
	if succeeded(toasts) {
		h.recordAction(c, models.ActionTagMark, row, 1, fmt.Sprintf("%s as %s", tag, mode))
	}
	redirect(c, "/tags")
}

// BulkMark marks every displayed property of the selected tag
func (h *PageHandler) BulkMark(c *gin.Context) {
	sess := currentSession(c)
	mode, err := models.ParseIssueMode(c.PostForm("mode"))
	if err != nil {
		h.pushError(c, err)
		redirect(c, "/tags")
		return
	}

	tag, n := sess.Tags.Selected(), len(sess.Tags.View().Rows)
	toasts := sess.Tags.BulkMark(c.Request.Context(), h.api, mode)
	sess.Toasts.Push(toasts...)
	if succeeded(toasts) {
		h.recordAction(c, models.ActionTagBulkMark, tag, n, string(mode))
	}
	redirect(c, "/tags")
}
