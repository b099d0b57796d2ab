package proxy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Page is a fetched upstream document
type Page struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports whether the upstream answered 2xx
func (p *Page) OK() bool {
	return p.StatusCode >= 200 && p.StatusCode <= 299
}

// Fetcher retrieves a page on behalf of the browser
type Fetcher interface {
	Fetch(ctx context.Context, target string) (*Page, error)
}

// HTTPFetcher fetches pages with a plain HTTP client and a desktop user agent
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a fetcher. A zero timeout means none; the request
// context still cancels the fetch.
func NewHTTPFetcher(userAgent string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// applyBrowserHeaders makes the request look like a desktop browser navigation.
// Accept-Encoding is left to the transport so the body arrives decoded.
func applyBrowserHeaders(req *http.Request, userAgent string) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
}

// Fetch performs the GET and reads the whole body
func (f *HTTPFetcher) Fetch(ctx context.Context, target string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	applyBrowserHeaders(req, f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Page{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// HTML fetches a page and returns its body, treating non-2xx as an error
// the way the browser-side title loader does.
func HTML(ctx context.Context, f Fetcher, target string) (string, error) {
	page, err := f.Fetch(ctx, target)
	if err != nil {
		return "", err
	}
	if !page.OK() {
		return "", fmt.Errorf("Error %d: %s", page.StatusCode, http.StatusText(page.StatusCode))
	}
	return string(page.Body), nil
}
