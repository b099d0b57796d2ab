package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// QueueStatus is the resolution status of a scrape target held in the backend queue
type QueueStatus string

// Status constants
const (
	QueueStatusAvailable QueueStatus = "Available"
	QueueStatusDelisted  QueueStatus = "Delisted"
	QueueStatusSold      QueueStatus = "Sold"
	QueueStatusError     QueueStatus = "Error"
	QueueStatusRented    QueueStatus = "Rented"

	// QueueStatusNone marks a row the operator has not picked a status for yet.
	// It is never sent to the backend.
	QueueStatusNone QueueStatus = "None"

	// QueueFilterAll disables a filter on the queue browse endpoint
	QueueFilterAll = "All"
)

// ResolutionStatuses are the statuses an errored queue item can be moved to
var ResolutionStatuses = []QueueStatus{
	QueueStatusAvailable,
	QueueStatusDelisted,
	QueueStatusSold,
	QueueStatusRented,
}

// BrowseStatuses are the statuses offered by the queue browse filter
var BrowseStatuses = []QueueStatus{
	QueueStatusAvailable,
	QueueStatusDelisted,
	QueueStatusSold,
	QueueStatusError,
}

// ParseQueueStatus validates a status coming from a form
func ParseQueueStatus(s string) (QueueStatus, error) {
	switch QueueStatus(s) {
	case QueueStatusAvailable, QueueStatusDelisted, QueueStatusSold,
		QueueStatusError, QueueStatusRented, QueueStatusNone:
		return QueueStatus(s), nil
	}
	return "", fmt.Errorf("unknown queue status %q", s)
}

// QueueItem mirrors one backend queue row
type QueueItem struct {
	ID        int64       `json:"id"`
	URL       string      `json:"url"`
	Status    QueueStatus `json:"status,omitempty"`
	Domain    string      `json:"domain,omitempty"`
	CreatedAt string      `json:"created_at,omitempty"`
}

// ShortURL truncates long URLs for table display
func (q QueueItem) ShortURL() string {
	if len(q.URL) > 50 {
		return q.URL[:50] + "..."
	}
	return q.URL
}

// QueueStats is the status breakdown of the whole queue
type QueueStats struct {
	Total       int       `json:"total"`
	Available   int       `json:"available"`
	Errors      int       `json:"errors"`
	Delisted    int       `json:"delisted"`
	Sold        int       `json:"sold"`
	LastUpdated time.Time `json:"-"`
}

// QueueErrorsPage is one page of queue items in Error status
type QueueErrorsPage struct {
	Queues []QueueItem `json:"queues"`
	Total  int         `json:"total"`
	Count  int         `json:"count"`
}

// TotalPages derives the page count from the backend's total and page length
func (p QueueErrorsPage) TotalPages() int {
	if p.Count <= 0 {
		return 1
	}
	pages := (p.Total + p.Count - 1) / p.Count
	if pages < 1 {
		return 1
	}
	return pages
}

// QueueFilter selects rows on the queue browse endpoint
type QueueFilter struct {
	Domain string
	Status string
	Date   string // YYYY-MM-DD, empty for no filter
	Page   int
}

// QueuePage is one page of the queue browse endpoint
type QueuePage struct {
	Items []QueueItem `json:"items"`
	Total int         `json:"total"`
	Count int         `json:"count"`
}

// QueuePageSize is the fixed page length of the queue browse endpoint
const QueuePageSize = 50

// TotalPages derives the page count from the total; count is only the length of this page
func (p QueuePage) TotalPages() int {
	pages := (p.Total + QueuePageSize - 1) / QueuePageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// BulkStatusItem is one row of a batched status change
type BulkStatusItem struct {
	ID     int64       `json:"id"`
	Status QueueStatus `json:"status"`
}

// BulkStatusRequest is the body of PUT /queue/errors/bulk
type BulkStatusRequest struct {
	Items []BulkStatusItem `json:"items"`
}

// FailedItem is a rejected row of a bulk update. The backend reports either
// a bare id or an object with a reason.
type FailedItem struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason,omitempty"`
}

// UnmarshalJSON accepts both `3` and `{"id": 3, "reason": "Not found"}`
func (f *FailedItem) UnmarshalJSON(data []byte) error {
	var id int64
	if err := json.Unmarshal(data, &id); err == nil {
		f.ID = id
		return nil
	}
	var obj struct {
		ID     int64  `json:"id"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("failed item: %w", err)
	}
	f.ID = obj.ID
	f.Reason = obj.Reason
	return nil
}

// BulkStatusResults splits a bulk update into confirmed and rejected ids
type BulkStatusResults struct {
	Success []int64      `json:"success"`
	Failed  []FailedItem `json:"failed"`
}

// BulkStatusResponse is the reply of PUT /queue/errors/bulk
type BulkStatusResponse struct {
	Status  string             `json:"status"`
	Message string             `json:"message"`
	Results *BulkStatusResults `json:"results"`
}

// Recognized reports whether the reply has the documented success shape
func (r *BulkStatusResponse) Recognized() bool {
	return r != nil && r.Status == "success" && r.Results != nil
}

// SyncResult is the reply of GET /queue/sync
type SyncResult struct {
	Count        int    `json:"count"`
	Errors       int    `json:"errors"`
	NotAvailable int    `json:"not_available"`
	Details      string `json:"details,omitempty"`
}

// Summary renders the operator-facing sync message
func (s SyncResult) Summary() string {
	return fmt.Sprintf("%d listings have been updated (%d errors, %d not available)",
		s.Count, s.Errors, s.NotAvailable)
}
