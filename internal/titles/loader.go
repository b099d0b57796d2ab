package titles

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"
)

// Result status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// DefaultBatchSize is the number of titles fetched concurrently
const DefaultBatchSize = 5

// Result is the outcome of loading one URL's title
type Result struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// FetchFunc returns the HTML of a page
type FetchFunc func(ctx context.Context, url string) (string, error)

// Loader fetches page titles in fixed-size groups
type Loader struct {
	fetch     FetchFunc
	batchSize int
}

// NewLoader creates a loader. A non-positive batch size falls back to DefaultBatchSize.
func NewLoader(fetch FetchFunc, batchSize int) *Loader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Loader{fetch: fetch, batchSize: batchSize}
}

// BatchSize returns the group size
func (l *Loader) BatchSize() int {
	return l.batchSize
}

// Load fetches one URL and extracts its title. Failures are reported in the
// result, never returned.
func (l *Loader) Load(ctx context.Context, url string) Result {
	body, err := l.fetch(ctx, url)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "Failed to load URL"
		}
		return Result{URL: url, Title: msg, Status: StatusError}
	}
	return Result{URL: url, Title: Extract(body), Status: StatusSuccess}
}

// LoadAll fetches every URL. Each group runs concurrently and groups run one
// after another, so at most BatchSize fetches are in flight. Results keep the
// order of urls.
func (l *Loader) LoadAll(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))

	for start := 0; start < len(urls); start += l.batchSize {
		end := start + l.batchSize
		if end > len(urls) {
			end = len(urls)
		}

		var g errgroup.Group
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				results[i] = l.Load(ctx, urls[i])
				return nil
			})
		}
		_ = g.Wait()

		if ctx.Err() != nil {
			log.Printf("[Titles] Batch load cancelled after %d/%d URLs", end, len(urls))
			for i := end; i < len(urls); i++ {
				results[i] = Result{URL: urls[i], Title: ctx.Err().Error(), Status: StatusError}
			}
			break
		}
	}

	return results
}
