package dashboard

import (
	"context"
	"errors"
	"testing"

	"reid-dashboard/internal/backend"
	"reid-dashboard/internal/models"
	"reid-dashboard/internal/titles"
)

func loadedQueueErrors(t *testing.T, api *fakeAPI) *QueueErrors {
	t.Helper()
	q := NewQueueErrors()
	if err := q.Load(context.Background(), api); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return q
}

func rowIDs(v QueueErrorsView) []int64 {
	ids := make([]int64, len(v.Rows))
	for i, r := range v.Rows {
		ids[i] = r.Item.ID
	}
	return ids
}

func TestBulkUpdatePartialSuccess(t *testing.T) {
	api := &fakeAPI{
		queueErrors: func(page int) (*models.QueueErrorsPage, error) { return queuePage(1, 2, 3), nil },
		bulkUpdate: func(items []models.BulkStatusItem) (*models.BulkStatusResponse, error) {
			return &models.BulkStatusResponse{
				Status: "success",
				Results: &models.BulkStatusResults{
					Success: []int64{1, 2},
					Failed:  []models.FailedItem{{ID: 3}},
				},
			}, nil
		},
	}
	q := loadedQueueErrors(t, api)
	for _, id := range []int64{1, 2, 3} {
		if err := q.Select(id, models.QueueStatusSold); err != nil {
			t.Fatal(err)
		}
	}

	sent, toasts := q.ProcessAll(context.Background(), api)
	if len(sent) != 3 {
		t.Fatalf("sent = %v", sent)
	}

	ids := rowIDs(q.View())
	if len(ids) != 1 || ids[0] != 3 {
		t.Errorf("remaining rows = %v, want [3]", ids)
	}
	if len(toasts) != 2 {
		t.Fatalf("toasts = %+v", toasts)
	}
	if toasts[0] != (Toast{ToastSuccess, "Successfully updated 2 items"}) {
		t.Errorf("toast[0] = %+v", toasts[0])
	}
	if toasts[1] != (Toast{ToastError, "Failed to update 1 item"}) {
		t.Errorf("toast[1] = %+v", toasts[1])
	}
	// the failed row keeps its selection
	if got := q.View().Rows[0].Selection; got != models.QueueStatusSold {
		t.Errorf("selection of row 3 = %q", got)
	}
}

func TestBulkUpdateNoneConfirmed(t *testing.T) {
	q := NewQueueErrors()
	q.items = queuePage(1).Queues
	q.selections = map[int64]models.QueueStatus{1: models.QueueStatusSold}

	toasts := q.ApplyBulkResult(
		[]models.BulkStatusItem{{ID: 1, Status: models.QueueStatusSold}},
		&models.BulkStatusResponse{Status: "success", Results: &models.BulkStatusResults{}},
	)
	if len(toasts) != 1 || toasts[0] != (Toast{ToastInfo, "No items were updated successfully"}) {
		t.Errorf("toasts = %+v", toasts)
	}
	if len(q.View().Rows) != 1 {
		t.Error("row should stay")
	}
}

func TestBulkUpdateUnrecognizedReply(t *testing.T) {
	tests := []struct {
		name string
		resp *models.BulkStatusResponse
		want string
	}{
		{"message used", &models.BulkStatusResponse{Message: "done"}, "done"},
		{"fallback text", &models.BulkStatusResponse{}, "Updated 2 items"},
		{"nil reply", nil, "Updated 2 items"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueueErrors()
			q.items = queuePage(1, 2, 3).Queues
			q.selections = map[int64]models.QueueStatus{1: "Sold", 2: "Sold", 3: "None"}

			sent := []models.BulkStatusItem{{ID: 1, Status: "Sold"}, {ID: 2, Status: "Sold"}}
			toasts := q.ApplyBulkResult(sent, tt.resp)

			if len(toasts) != 1 || toasts[0] != (Toast{ToastSuccess, tt.want}) {
				t.Errorf("toasts = %+v", toasts)
			}
			if ids := rowIDs(q.View()); len(ids) != 1 || ids[0] != 3 {
				t.Errorf("rows = %v", ids)
			}
		})
	}
}

func TestProcessGuards(t *testing.T) {
	api := &fakeAPI{
		queueErrors: func(page int) (*models.QueueErrorsPage, error) { return queuePage(1, 2), nil },
	}
	q := loadedQueueErrors(t, api)

	_, toasts := q.ProcessAll(context.Background(), api)
	if toasts[0] != (Toast{ToastInfo, "No items selected for update"}) {
		t.Errorf("ProcessAll toast = %+v", toasts)
	}
	_, toasts = q.ProcessOne(context.Background(), api, 1)
	if toasts[0] != (Toast{ToastInfo, "Please select a status first"}) {
		t.Errorf("ProcessOne toast = %+v", toasts)
	}
	if api.count("BulkUpdateErrors") != 0 {
		t.Error("no request should be sent")
	}
}

func TestProcessOneSendsSingleItem(t *testing.T) {
	var got []models.BulkStatusItem
	api := &fakeAPI{
		queueErrors: func(page int) (*models.QueueErrorsPage, error) { return queuePage(1, 2), nil },
		bulkUpdate: func(items []models.BulkStatusItem) (*models.BulkStatusResponse, error) {
			got = items
			return &models.BulkStatusResponse{Status: "success", Results: &models.BulkStatusResults{Success: []int64{2}}}, nil
		},
	}
	q := loadedQueueErrors(t, api)
	q.Select(1, models.QueueStatusDelisted)
	q.Select(2, models.QueueStatusRented)

	_, toasts := q.ProcessOne(context.Background(), api, 2)
	if len(got) != 1 || got[0].ID != 2 || got[0].Status != models.QueueStatusRented {
		t.Errorf("sent = %+v", got)
	}
	if toasts[0].Message != "Successfully updated 1 item" {
		t.Errorf("toast = %+v", toasts[0])
	}
	if q.View().Pending != 1 {
		t.Errorf("pending = %d, want row 1 still pending", q.View().Pending)
	}
}

func TestBulkUpdateErrorKeepsRows(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"http status", &backend.APIError{StatusCode: 500}, "Failed to process bulk update. Status: 500"},
		{"transport", errors.New("connection refused"), "connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{
				queueErrors: func(page int) (*models.QueueErrorsPage, error) { return queuePage(1), nil },
				bulkUpdate: func(items []models.BulkStatusItem) (*models.BulkStatusResponse, error) {
					return nil, tt.err
				},
			}
			q := loadedQueueErrors(t, api)
			q.Select(1, models.QueueStatusSold)

			_, toasts := q.ProcessAll(context.Background(), api)
			if len(toasts) != 1 || toasts[0] != (Toast{ToastError, tt.want}) {
				t.Errorf("toasts = %+v", toasts)
			}
			if len(q.View().Rows) != 1 {
				t.Error("row should stay")
			}
		})
	}
}

func TestQueueErrorsPaging(t *testing.T) {
	var pages []int
	api := &fakeAPI{
		queueErrors: func(page int) (*models.QueueErrorsPage, error) {
			pages = append(pages, page)
			p := queuePage(int64(page*10), int64(page*10+1))
			p.Total, p.Count = 5, 2 // three pages
			return p, nil
		},
	}
	q := loadedQueueErrors(t, api)

	if v := q.View(); v.TotalPages != 3 || v.Page != 1 {
		t.Fatalf("view = page %d of %d", v.Page, v.TotalPages)
	}
	if q.Prev() {
		t.Error("Prev on page 1 must not move")
	}
	if !q.Next() || !q.Next() {
		t.Fatal("Next should reach page 3")
	}
	if q.Next() {
		t.Error("Next past the last page must not move")
	}
	q.Load(context.Background(), api)
	if q.View().Page != 3 {
		t.Errorf("page = %d", q.View().Page)
	}

	q.Reset()
	q.Load(context.Background(), api)
	if q.View().Page != 1 || pages[len(pages)-1] != 1 {
		t.Errorf("reload should go back to page 1, pages=%v", pages)
	}
	for _, r := range q.View().Rows {
		if r.Selection != models.QueueStatusNone {
			t.Errorf("selection = %q, want None after load", r.Selection)
		}
	}
}

func TestQueueErrorsLoadFailure(t *testing.T) {
	api := &fakeAPI{
		queueErrors: func(page int) (*models.QueueErrorsPage, error) { return nil, errors.New("boom") },
	}
	q := NewQueueErrors()
	if err := q.Load(context.Background(), api); err == nil {
		t.Fatal("expected error")
	}
	if v := q.View(); v.Error != "Failed to load queue errors" || len(v.Rows) != 0 {
		t.Errorf("view = %+v", v)
	}
}

func TestQueueErrorsStaleResponseDropped(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	api := &fakeAPI{
		queueErrors: func(page int) (*models.QueueErrorsPage, error) {
			if page == 1 {
				close(started)
				<-release
				return queuePage(1), nil
			}
			p := queuePage(20)
			p.Total, p.Count = 4, 2
			return p, nil
		},
	}
	q := NewQueueErrors()
	q.totalPages = 2

	done := make(chan struct{})
	go func() {
		q.Load(context.Background(), api) // slow page 1
		close(done)
	}()
	<-started

	q.SetPage(2)
	if err := q.Load(context.Background(), api); err != nil {
		t.Fatal(err)
	}
	close(release)
	<-done

	v := q.View()
	if v.Page != 2 || len(v.Rows) != 1 || v.Rows[0].Item.ID != 20 {
		t.Errorf("stale page 1 overwrote page 2: %+v", v)
	}
}

func TestLoadTitles(t *testing.T) {
	api := &fakeAPI{
		queueErrors: func(page int) (*models.QueueErrorsPage, error) { return queuePage(1, 2, 3), nil },
	}
	q := loadedQueueErrors(t, api)
	loader := titles.NewLoader(func(ctx context.Context, url string) (string, error) {
		if url == "https://example.test/d" {
			return "", errors.New("Error 404: Not Found")
		}
		return "<title>Listing " + url + "</title>", nil
	}, 2)

	if err := q.LoadTitle(context.Background(), loader, 99); err == nil {
		t.Error("unknown row should fail")
	}
	if n := q.LoadAllTitles(context.Background(), loader); n != 3 {
		t.Errorf("loaded = %d", n)
	}

	rows := q.View().Rows
	if rows[0].Title == nil || rows[0].Title.Title != "Listing https://example.test/b" {
		t.Errorf("row 1 title = %+v", rows[0].Title)
	}
	if rows[2].Title == nil || rows[2].Title.Status != titles.StatusError {
		t.Errorf("row 3 title = %+v", rows[2].Title)
	}
}
