package models

// ReportRow holds the metrics of the latest scrape run of one source
type ReportRow struct {
	ID            string   `json:"id"`
	Source        string   `json:"source"`
	CreatedAt     string   `json:"created_at"`
	TotalListings int      `json:"total_listings"`
	SuccessCount  *int     `json:"success_count"`
	ErrorCount    *int     `json:"error_count"`
	Duration      *float64 `json:"duration"` // seconds
}

// Successes returns the success counter, 0 when unreported
func (r ReportRow) Successes() int {
	if r.SuccessCount == nil {
		return 0
	}
	return *r.SuccessCount
}

// Errors returns the error counter, 0 when unreported
func (r ReportRow) Errors() int {
	if r.ErrorCount == nil {
		return 0
	}
	return *r.ErrorCount
}

// Seconds returns the run duration, 0 when unreported
func (r ReportRow) Seconds() float64 {
	if r.Duration == nil {
		return 0
	}
	return *r.Duration
}

// ReportList is the reply of GET /analytics/report
type ReportList struct {
	Reports []ReportRow `json:"reports"`
}

// ListingsCount maps a month start date (YYYY-MM-DD) to the number of new listings
type ListingsCount map[string]int
