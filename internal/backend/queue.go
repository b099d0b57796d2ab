package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"reid-dashboard/internal/models"
)

// QueueStats fetches the status breakdown of the queue
func (c *Client) QueueStats(ctx context.Context) (*models.QueueStats, error) {
	var resp struct {
		Status string             `json:"status"`
		Data   *models.QueueStats `json:"data"`
	}
	if err := c.getJSON(ctx, "/data/queue/stats", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" || resp.Data == nil {
		return nil, ErrUnexpectedResponse
	}
	resp.Data.LastUpdated = time.Now()
	return resp.Data, nil
}

// QueueErrors fetches one page of errored queue items
func (c *Client) QueueErrors(ctx context.Context, page int) (*models.QueueErrorsPage, error) {
	if page < 1 {
		page = 1
	}
	var resp struct {
		Results *models.QueueErrorsPage `json:"results"`
	}
	q := url.Values{"page": {strconv.Itoa(page)}}
	if err := c.getJSON(ctx, "/queue/errors", q, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return nil, ErrUnexpectedResponse
	}
	return resp.Results, nil
}

// QueueErrorCount fetches the number of queue items in Error status
func (c *Client) QueueErrorCount(ctx context.Context) (int, error) {
	var resp struct {
		Results *struct {
			Count int `json:"count"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, "/queue/errors/count", nil, &resp); err != nil {
		return 0, err
	}
	if resp.Results == nil {
		return 0, ErrUnexpectedResponse
	}
	return resp.Results.Count, nil
}

// BulkUpdateErrors sends every status change in one batched request.
// The reply is returned even when it lacks the documented shape; callers
// decide how to reconcile.
func (c *Client) BulkUpdateErrors(ctx context.Context, items []models.BulkStatusItem) (*models.BulkStatusResponse, error) {
	var resp models.BulkStatusResponse
	req := models.BulkStatusRequest{Items: items}
	if err := c.sendJSON(ctx, http.MethodPut, "/queue/errors/bulk", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SyncQueue pushes queue results into the listing table
func (c *Client) SyncQueue(ctx context.Context) (*models.SyncResult, error) {
	var resp models.SyncResult
	if err := c.getJSON(ctx, "/queue/sync", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Domains lists the distinct domains present in the queue
func (c *Client) Domains(ctx context.Context) ([]string, error) {
	var resp struct {
		Domains []string `json:"domains"`
	}
	if err := c.getJSON(ctx, "/queue/domains", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Domains, nil
}

// ListQueue browses the queue with domain/status/date filters
func (c *Client) ListQueue(ctx context.Context, f models.QueueFilter) (*models.QueuePage, error) {
	q := url.Values{}
	q.Set("domain", orAll(f.Domain))
	q.Set("status", orAll(f.Status))
	if f.Date != "" {
		q.Set("date", f.Date)
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	q.Set("page", strconv.Itoa(page))

	var resp struct {
		Results *models.QueuePage `json:"results"`
	}
	if err := c.getJSON(ctx, "/queue", q, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return nil, ErrUnexpectedResponse
	}
	return resp.Results, nil
}

// IsJSONUpload accepts a .json name or JSON content type, and the body must parse
func IsJSONUpload(filename, contentType string, body []byte) bool {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	named := strings.EqualFold(filepath.Ext(filename), ".json")
	if !named && mediaType != "application/json" {
		return false
	}
	return json.Valid(body)
}

// Upload forwards a JSON file of URLs as multipart field "file"
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("copy upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/data/upload", nil, &buf, w.FormDataContentType(), nil)
}

func orAll(v string) string {
	if v == "" {
		return models.QueueFilterAll
	}
	return v
}
