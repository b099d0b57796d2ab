package proxy

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders pages in headless Chrome so script-set titles are visible
type BrowserFetcher struct {
	execPath  string
	userAgent string
	wait      time.Duration
	timeout   time.Duration
}

// NewBrowserFetcher creates a headless fetcher
func NewBrowserFetcher(execPath, userAgent string, wait time.Duration) *BrowserFetcher {
	return &BrowserFetcher{
		execPath:  execPath,
		userAgent: userAgent,
		wait:      wait,
		timeout:   30 * time.Second,
	}
}

// Fetch loads the page in a fresh browser and returns the rendered HTML
func (b *BrowserFetcher) Fetch(ctx context.Context, target string) (*Page, error) {
	log.Printf("[HeadlessBrowser] Fetching %s with Chrome", target)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-software-rasterizer", true),
		chromedp.UserAgent(b.userAgent),
	)
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, b.timeout)
	defer cancel()

	var htmlContent string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(target),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.Sleep(b.wait),
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		log.Printf("[HeadlessBrowser] ERROR fetching %s: %v", target, err)
		return nil, fmt.Errorf("chromedp error: %w", err)
	}

	log.Printf("[HeadlessBrowser] Successfully fetched HTML (%d bytes)", len(htmlContent))

	return &Page{
		StatusCode:  http.StatusOK,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(htmlContent),
	}, nil
}
