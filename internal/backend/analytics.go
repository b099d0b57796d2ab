package backend

import (
	"context"
	"encoding/json"
	"net/url"

	"reid-dashboard/internal/models"
)

// ListingsCount fetches new listings per month
func (c *Client) ListingsCount(ctx context.Context) (models.ListingsCount, error) {
	var resp models.ListingsCount
	if err := c.getJSON(ctx, "/analytics/listings-count", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Report fetches the latest scrape run per source for the month of date.
// A reply without a reports array yields an empty slice.
func (c *Client) Report(ctx context.Context, date string) ([]models.ReportRow, error) {
	var resp struct {
		Reports json.RawMessage `json:"reports"`
	}
	q := url.Values{"date": {date}}
	if err := c.getJSON(ctx, "/analytics/report", q, &resp); err != nil {
		return nil, err
	}
	var rows []models.ReportRow
	if err := json.Unmarshal(resp.Reports, &rows); err != nil {
		return []models.ReportRow{}, nil
	}
	if rows == nil {
		rows = []models.ReportRow{}
	}
	return rows, nil
}
