package titles

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"simple", `<html><head><title>Villa Canggu</title></head></html>`, "Villa Canggu"},
		{"attributes and case", `<TITLE data-x="1">  Land in Ubud  </TITLE>`, "Land in Ubud"},
		{"entities", `<title>Tom &amp; Jerry</title>`, "Tom & Jerry"},
		{"first title wins", `<title>One</title><title>Two</title>`, "One"},
		{"og fallback", `<html><head><meta property="og:title" content="From OG"></head></html>`, "From OG"},
		{"empty title uses og", `<title>   </title><meta property="og:title" content="OG">`, "OG"},
		{"nothing", `<html><body>hello</body></html>`, NoTitle},
		{"empty document", ``, NoTitle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.html); got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoaderLoad(t *testing.T) {
	l := NewLoader(func(ctx context.Context, url string) (string, error) {
		if url == "bad" {
			return "", errors.New("Error 404: Not Found")
		}
		return "<title>ok</title>", nil
	}, 0)

	if l.BatchSize() != DefaultBatchSize {
		t.Errorf("BatchSize = %d", l.BatchSize())
	}

	good := l.Load(context.Background(), "good")
	if good.Status != StatusSuccess || good.Title != "ok" {
		t.Errorf("good = %+v", good)
	}
	bad := l.Load(context.Background(), "bad")
	if bad.Status != StatusError || bad.Title != "Error 404: Not Found" {
		t.Errorf("bad = %+v", bad)
	}
}

func TestLoadAllBoundsConcurrency(t *testing.T) {
	var inFlight, peak int32
	l := NewLoader(func(ctx context.Context, url string) (string, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return fmt.Sprintf("<title>%s</title>", url), nil
	}, 5)

	urls := make([]string, 12)
	for i := range urls {
		urls[i] = fmt.Sprintf("u%d", i)
	}
	results := l.LoadAll(context.Background(), urls)

	if peak > 5 {
		t.Errorf("peak in flight = %d, want <= 5", peak)
	}
	if len(results) != len(urls) {
		t.Fatalf("len = %d", len(results))
	}
	for i, r := range results {
		if r.URL != urls[i] || r.Title != urls[i] {
			t.Errorf("result %d = %+v", i, r)
		}
	}
}

func TestLoadAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32
	l := NewLoader(func(ctx context.Context, url string) (string, error) {
		atomic.AddInt32(&calls, 1)
		cancel()
		return "", ctx.Err()
	}, 2)

	results := l.LoadAll(ctx, []string{"a", "b", "c", "d", "e"})
	if calls != 2 {
		t.Errorf("calls = %d, want only the first group", calls)
	}
	for _, r := range results {
		if r.Status != StatusError {
			t.Errorf("result = %+v, want error", r)
		}
	}
}
