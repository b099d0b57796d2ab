package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"reid-dashboard/internal/backend"
	"reid-dashboard/internal/models"
	"reid-dashboard/internal/titles"
)

// QueueAPI is the slice of the backend the bulk status editor needs
type QueueAPI interface {
	QueueErrors(ctx context.Context, page int) (*models.QueueErrorsPage, error)
	BulkUpdateErrors(ctx context.Context, items []models.BulkStatusItem) (*models.BulkStatusResponse, error)
}

// QueueErrors is the bulk status editor over errored queue items
type QueueErrors struct {
	mu         sync.Mutex
	seq        *Sequencer
	page       int
	totalPages int
	items      []models.QueueItem
	selections map[int64]models.QueueStatus
	titles     map[int64]titles.Result
	loaded     bool
	loadErr    string
}

// NewQueueErrors creates the editor on page 1
func NewQueueErrors() *QueueErrors {
	return &QueueErrors{
		seq:        NewSequencer("queue errors"),
		page:       1,
		totalPages: 1,
		selections: make(map[int64]models.QueueStatus),
		titles:     make(map[int64]titles.Result),
	}
}

// QueueErrorRow is a render snapshot of one row
type QueueErrorRow struct {
	Item      models.QueueItem
	Selection models.QueueStatus
	Title     *titles.Result
}

// QueueErrorsView is a render snapshot of the editor
type QueueErrorsView struct {
	Rows       []QueueErrorRow
	Page       int
	TotalPages int
	Pending    int
	Loaded     bool
	Error      string
}

// Load fetches the current page. Every row's selection starts at None and
// titles fetched for the previous page are dropped.
func (q *QueueErrors) Load(ctx context.Context, api QueueAPI) error {
	q.mu.Lock()
	page := q.page
	q.mu.Unlock()

	token := q.seq.Begin()
	result, err := api.QueueErrors(ctx, page)

	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.seq.Accept(token) {
		return nil
	}
	q.loaded = true
	if err != nil {
		q.loadErr = "Failed to load queue errors"
		return fmt.Errorf("load queue errors page %d: %w", page, err)
	}

	q.loadErr = ""
	q.page = page
	q.items = append([]models.QueueItem(nil), result.Queues...)
	q.totalPages = result.TotalPages()
	q.selections = make(map[int64]models.QueueStatus, len(q.items))
	for _, it := range q.items {
		q.selections[it.ID] = models.QueueStatusNone
	}
	q.titles = make(map[int64]titles.Result)
	return nil
}

// SetPage moves to page p when it lies within [1, totalPages]. It reports
// whether the page changed; the caller reloads.
func (q *QueueErrors) SetPage(p int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if p < 1 || p > q.totalPages || p == q.page {
		return false
	}
	q.page = p
	return true
}

// Next moves one page forward
func (q *QueueErrors) Next() bool {
	return q.SetPage(q.Page() + 1)
}

// Prev moves one page back
func (q *QueueErrors) Prev() bool {
	return q.SetPage(q.Page() - 1)
}

// Reset goes back to page 1
func (q *QueueErrors) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.page = 1
}

// Page returns the current page number
func (q *QueueErrors) Page() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.page
}

// Select records the status picked for a visible row
func (q *QueueErrors) Select(id int64, status models.QueueStatus) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.selections[id]; !ok {
		return fmt.Errorf("queue item %d is not on this page", id)
	}
	q.selections[id] = status
	return nil
}

// PendingUpdates lists every row whose selection is not None, in row order
func (q *QueueErrors) PendingUpdates() []models.BulkStatusItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pendingLocked()
}

func (q *QueueErrors) pendingLocked() []models.BulkStatusItem {
	var out []models.BulkStatusItem
	for _, it := range q.items {
		if s, ok := q.selections[it.ID]; ok && s != models.QueueStatusNone {
			out = append(out, models.BulkStatusItem{ID: it.ID, Status: s})
		}
	}
	return out
}

// ProcessAll sends every pending selection in one batched request
func (q *QueueErrors) ProcessAll(ctx context.Context, api QueueAPI) ([]models.BulkStatusItem, []Toast) {
	items := q.PendingUpdates()
	if len(items) == 0 {
		return nil, []Toast{infof("No items selected for update")}
	}
	return items, q.send(ctx, api, items)
}

// ProcessOne sends the selection of a single row
func (q *QueueErrors) ProcessOne(ctx context.Context, api QueueAPI, id int64) ([]models.BulkStatusItem, []Toast) {
	q.mu.Lock()
	status, ok := q.selections[id]
	q.mu.Unlock()
	if !ok || status == models.QueueStatusNone {
		return nil, []Toast{infof("Please select a status first")}
	}
	items := []models.BulkStatusItem{{ID: id, Status: status}}
	return items, q.send(ctx, api, items)
}

func (q *QueueErrors) send(ctx context.Context, api QueueAPI, items []models.BulkStatusItem) []Toast {
	log.Printf("[QueueErrors] Sending bulk update with %d items", len(items))
	resp, err := api.BulkUpdateErrors(ctx, items)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			return []Toast{errorf("Failed to process bulk update. Status: %d", apiErr.StatusCode)}
		}
		return []Toast{errorf("%v", err)}
	}
	return q.ApplyBulkResult(items, resp)
}

// ApplyBulkResult reconciles the view with a bulk reply. With the documented
// reply only confirmed ids leave the page; any other shape treats every sent
// item as updated.
func (q *QueueErrors) ApplyBulkResult(sent []models.BulkStatusItem, resp *models.BulkStatusResponse) []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !resp.Recognized() {
		log.Printf("[QueueErrors] Unexpected bulk response format, using sent items")
		ids := make([]int64, len(sent))
		for i, it := range sent {
			ids[i] = it.ID
		}
		q.removeLocked(ids)

		msg := ""
		if resp != nil {
			msg = resp.Message
		}
		if msg == "" {
			msg = fmt.Sprintf("Updated %d items", len(sent))
		}
		return []Toast{{Kind: ToastSuccess, Message: msg}}
	}

	var toasts []Toast
	success := resp.Results.Success
	if len(success) > 0 {
		q.removeLocked(success)
		toasts = append(toasts, successf("Successfully updated %s", plural(len(success), "item")))
	} else {
		toasts = append(toasts, infof("No items were updated successfully"))
	}
	if failed := len(resp.Results.Failed); failed > 0 {
		toasts = append(toasts, errorf("Failed to update %s", plural(failed, "item")))
	}
	return toasts
}

func (q *QueueErrors) removeLocked(ids []int64) {
	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := q.items[:0]
	for _, it := range q.items {
		if drop[it.ID] {
			delete(q.selections, it.ID)
			delete(q.titles, it.ID)
			continue
		}
		kept = append(kept, it)
	}
	q.items = kept
}

// LoadTitle fetches the page title of one visible row
func (q *QueueErrors) LoadTitle(ctx context.Context, loader *titles.Loader, id int64) error {
	q.mu.Lock()
	var target string
	for _, it := range q.items {
		if it.ID == id {
			target = it.URL
			break
		}
	}
	q.mu.Unlock()
	if target == "" {
		return fmt.Errorf("queue item %d is not on this page", id)
	}

	res := loader.Load(ctx, target)

	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.selections[id]; ok {
		q.titles[id] = res
	}
	return nil
}

// LoadAllTitles fetches titles of every visible row in loader-sized groups
func (q *QueueErrors) LoadAllTitles(ctx context.Context, loader *titles.Loader) int {
	q.mu.Lock()
	ids := make([]int64, len(q.items))
	urls := make([]string, len(q.items))
	for i, it := range q.items {
		ids[i], urls[i] = it.ID, it.URL
	}
	q.mu.Unlock()

	results := loader.LoadAll(ctx, urls)

	q.mu.Lock()
	defer q.mu.Unlock()
	for i, res := range results {
		if _, ok := q.selections[ids[i]]; ok {
			q.titles[ids[i]] = res
		}
	}
	return len(results)
}

// View returns a snapshot for rendering
func (q *QueueErrors) View() QueueErrorsView {
	q.mu.Lock()
	defer q.mu.Unlock()

	rows := make([]QueueErrorRow, len(q.items))
	for i, it := range q.items {
		rows[i] = QueueErrorRow{Item: it, Selection: q.selections[it.ID]}
		if t, ok := q.titles[it.ID]; ok {
			t := t
			rows[i].Title = &t
		}
	}
	return QueueErrorsView{
		Rows:       rows,
		Page:       q.page,
		TotalPages: q.totalPages,
		Pending:    len(q.pendingLocked()),
		Loaded:     q.loaded,
		Error:      q.loadErr,
	}
}
