package dashboard

import (
	"context"
	"sync"

	"reid-dashboard/internal/models"
)

// fakeAPI is an in-memory backend. Function fields override the default replies.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	queueErrors func(page int) (*models.QueueErrorsPage, error)
	bulkUpdate  func(items []models.BulkStatusItem) (*models.BulkStatusResponse, error)

	tags       func(date string) ([]models.Tag, error)
	tagDetails func(tagID, date string, page int) (*models.TagDetailsPage, error)
	update     func(id string, fields map[string]any) (string, error)
	mark       func(id, tag string, mode models.IssueMode) (string, error)
	bulkMark   func(tag string, ids []string, mode models.IssueMode) (string, error)

	listingsCount func() (models.ListingsCount, error)
	report        func(date string) ([]models.ReportRow, error)
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeAPI) QueueErrors(ctx context.Context, page int) (*models.QueueErrorsPage, error) {
	f.record("QueueErrors")
	return f.queueErrors(page)
}

func (f *fakeAPI) BulkUpdateErrors(ctx context.Context, items []models.BulkStatusItem) (*models.BulkStatusResponse, error) {
	f.record("BulkUpdateErrors")
	return f.bulkUpdate(items)
}

func (f *fakeAPI) Tags(ctx context.Context, date string) ([]models.Tag, error) {
	f.record("Tags")
	return f.tags(date)
}

func (f *fakeAPI) TagDetails(ctx context.Context, tagID, date string, page int) (*models.TagDetailsPage, error) {
	f.record("TagDetails")
	return f.tagDetails(tagID, date, page)
}

func (f *fakeAPI) UpdateProperty(ctx context.Context, id string, fields map[string]any) (string, error) {
	f.record("UpdateProperty")
	return f.update(id, fields)
}

func (f *fakeAPI) MarkIssue(ctx context.Context, id, tag string, mode models.IssueMode) (string, error) {
	f.record("MarkIssue")
	return f.mark(id, tag, mode)
}

func (f *fakeAPI) BulkMark(ctx context.Context, tag string, ids []string, mode models.IssueMode) (string, error) {
	f.record("BulkMark")
	return f.bulkMark(tag, ids, mode)
}

func (f *fakeAPI) ListingsCount(ctx context.Context) (models.ListingsCount, error) {
	f.record("ListingsCount")
	return f.listingsCount()
}

func (f *fakeAPI) Report(ctx context.Context, date string) ([]models.ReportRow, error) {
	f.record("Report")
	return f.report(date)
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func queuePage(ids ...int64) *models.QueueErrorsPage {
	p := &models.QueueErrorsPage{Total: len(ids), Count: len(ids)}
	for _, id := range ids {
		p.Queues = append(p.Queues, models.QueueItem{ID: id, URL: "https://example.test/" + string(rune('a'+id))})
	}
	return p
}
