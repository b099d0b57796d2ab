package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"reid-dashboard/internal/models"
)

// Tags lists open issue tags, optionally limited to properties created on or after date
func (c *Client) Tags(ctx context.Context, date string) ([]models.Tag, error) {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	var resp models.TagList
	if err := c.getJSON(ctx, "/tags", q, &resp); err != nil {
		return nil, err
	}
	return resp.Tags, nil
}

// TagDetails fetches one page of properties carrying a tag
func (c *Client) TagDetails(ctx context.Context, tagID, date string, page int) (*models.TagDetailsPage, error) {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	q.Set("page", strconv.Itoa(page))

	var resp models.TagDetailsPage
	if err := c.getJSON(ctx, "/tags/"+url.PathEscape(tagID), q, &resp); err != nil {
		return nil, err
	}
	if resp.Size <= 0 {
		resp.Size = models.DefaultTagPageSize
	}
	if resp.Page <= 0 {
		resp.Page = page
	}
	return &resp, nil
}

// UpdateProperty PUTs the buffered field edits of one property
func (c *Client) UpdateProperty(ctx context.Context, propertyID string, fields map[string]any) (string, error) {
	var resp models.MessageResponse
	if err := c.sendJSON(ctx, http.MethodPut, "/tags/"+url.PathEscape(propertyID), nil, fields, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// MarkIssue marks one property's tag as solved or ignored
func (c *Client) MarkIssue(ctx context.Context, propertyID, tag string, mode models.IssueMode) (string, error) {
	q := url.Values{}
	q.Set("tag", tag)
	q.Set("mode", string(mode))

	var resp models.MessageResponse
	path := "/tags/" + url.PathEscape(propertyID) + "/mark-as-solved"
	if err := c.sendJSON(ctx, http.MethodPut, path, q, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// BulkMark marks a tag as solved or ignored on many properties at once
func (c *Client) BulkMark(ctx context.Context, tag string, propertyIDs []string, mode models.IssueMode) (string, error) {
	var resp models.MessageResponse
	req := models.BulkMarkRequest{PropertyIDs: propertyIDs, Mode: mode}
	if err := c.sendJSON(ctx, http.MethodPatch, "/tags/bulk-marked/"+url.PathEscape(tag), nil, req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
