package dashboard

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"reid-dashboard/internal/models"
)

// Bar is one month of the listings chart
type Bar struct {
	Label     string
	FullDate  string
	Count     int
	HeightPct float64
	Selected  bool
}

var chartDateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05", "2006-01"}

func parseChartDate(s string) (time.Time, bool) {
	for _, layout := range chartDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// BuildBars turns listing counts into bars sorted ascending by date with
// "Jan 2006" labels. Keys that do not parse as dates go last, keep their raw
// key as label and sort among themselves by key.
func BuildBars(counts models.ListingsCount, selected string) []Bar {
	type keyed struct {
		bar    Bar
		at     time.Time
		parsed bool
	}

	items := make([]keyed, 0, len(counts))
	maxCount := 0
	for date, count := range counts {
		k := keyed{bar: Bar{Label: date, FullDate: date, Count: count, Selected: date == selected}}
		if t, ok := parseChartDate(date); ok {
			k.at, k.parsed = t, true
			k.bar.Label = t.Format("Jan 2006")
		}
		items = append(items, k)
		if count > maxCount {
			maxCount = count
		}
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.parsed != b.parsed {
			return a.parsed
		}
		if a.parsed && !a.at.Equal(b.at) {
			return a.at.Before(b.at)
		}
		return a.bar.FullDate < b.bar.FullDate
	})

	bars := make([]Bar, len(items))
	for i, k := range items {
		bars[i] = k.bar
		if maxCount > 0 {
			bars[i].HeightPct = float64(k.bar.Count) / float64(maxCount) * 100
		}
	}
	return bars
}

// ChartCache holds the listings-count series shared by every session.
// The first read fills it; the scheduler refreshes it afterwards.
type ChartCache struct {
	api       AnalyticsAPI
	mu        sync.RWMutex
	counts    models.ListingsCount
	fetchedAt time.Time
}

// NewChartCache creates an empty cache
func NewChartCache(api AnalyticsAPI) *ChartCache {
	return &ChartCache{api: api}
}

// Get returns the cached series, fetching it on first use
func (c *ChartCache) Get(ctx context.Context) (models.ListingsCount, error) {
	c.mu.RLock()
	counts := c.counts
	c.mu.RUnlock()
	if counts != nil {
		return counts, nil
	}
	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counts, nil
}

// Refresh refetches the series. On failure the previous series is kept.
func (c *ChartCache) Refresh(ctx context.Context) error {
	counts, err := c.api.ListingsCount(ctx)
	if err != nil {
		log.Printf("[Chart] Failed to refresh listings count: %v", err)
		return err
	}
	if counts == nil {
		counts = models.ListingsCount{}
	}

	c.mu.Lock()
	c.counts = counts
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	log.Printf("[Chart] Listings count refreshed (%d months)", len(counts))
	return nil
}

// FetchedAt returns when the series was last fetched; zero if never
func (c *ChartCache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}
