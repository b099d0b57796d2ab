package dashboard

import (
	"context"
	"fmt"
	"math"
	"sync"

	"reid-dashboard/internal/models"
)

// AnalyticsAPI is the slice of the backend the dashboard page needs
type AnalyticsAPI interface {
	ListingsCount(ctx context.Context) (models.ListingsCount, error)
	Report(ctx context.Context, date string) ([]models.ReportRow, error)
}

// Tone is the color band of a success rate
type Tone string

const (
	ToneRed   Tone = "red"
	ToneAmber Tone = "amber"
	ToneGreen Tone = "green"
)

// FormatElapsed renders a duration in seconds: "45.00s", "2m 5s" or "1h 3m"
func FormatElapsed(seconds float64) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%.2fs", seconds)
	case seconds < 3600:
		minutes := int(seconds / 60)
		rest := int(math.Round(math.Mod(seconds, 60)))
		if rest == 60 {
			minutes++
			rest = 0
		}
		return fmt.Sprintf("%dm %ds", minutes, rest)
	default:
		hours := int(seconds / 3600)
		minutes := int(math.Mod(seconds, 3600) / 60)
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
}

// SuccessRateValue is success/(total+errors) as a percentage, 0 when undefined
func SuccessRateValue(success, total, errors int) float64 {
	denominator := total + errors
	if denominator == 0 {
		return 0
	}
	return float64(success) / float64(denominator) * 100
}

// SuccessRate renders the rate as "87.5%", or "0%" when undefined
func SuccessRate(success, total, errors int) string {
	if total+errors == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", SuccessRateValue(success, total, errors))
}

// RateTone picks the color band for a success percentage
func RateTone(rate float64) Tone {
	switch {
	case rate < 50:
		return ToneRed
	case rate < 80:
		return ToneAmber
	default:
		return ToneGreen
	}
}

// ReportLine is one rendered report table row
type ReportLine struct {
	Source        string
	TotalListings int
	Errors        int
	Duration      string
	SuccessRate   string
	RateValue     float64
	Tone          Tone
}

// ReportSummary aggregates the whole report
type ReportSummary struct {
	Sources       int
	TotalErrors   int
	TotalListings int
	TotalTime     string
	RateValue     float64
	Tone          Tone
}

// BuildReport formats backend rows for display
func BuildReport(rows []models.ReportRow) ([]ReportLine, ReportSummary) {
	lines := make([]ReportLine, 0, len(rows))
	var success, listings, errs int
	var seconds float64

	for _, r := range rows {
		rate := SuccessRateValue(r.Successes(), r.TotalListings, r.Errors())
		lines = append(lines, ReportLine{
			Source:        r.Source,
			TotalListings: r.TotalListings,
			Errors:        r.Errors(),
			Duration:      FormatElapsed(r.Seconds()),
			SuccessRate:   SuccessRate(r.Successes(), r.TotalListings, r.Errors()),
			RateValue:     rate,
			Tone:          RateTone(rate),
		})
		success += r.Successes()
		listings += r.TotalListings
		errs += r.Errors()
		seconds += r.Seconds()
	}

	overall := SuccessRateValue(success, listings, errs)
	return lines, ReportSummary{
		Sources:       len(rows),
		TotalErrors:   errs,
		TotalListings: listings,
		TotalTime:     FormatElapsed(seconds),
		RateValue:     overall,
		Tone:          RateTone(overall),
	}
}

// Report is the drill-down table of one session
type Report struct {
	mu    sync.Mutex
	seq   *Sequencer
	date  string
	rows  []models.ReportRow
	err   string
	ready bool
}

// NewReport creates an empty report view
func NewReport() *Report {
	return &Report{seq: NewSequencer("report")}
}

// ReportView is a render snapshot of the report table
type ReportView struct {
	Date    string
	Lines   []ReportLine
	Summary ReportSummary
	Error   string
	Ready   bool
}

// Select loads the report for date. An empty date clears the table.
func (r *Report) Select(ctx context.Context, api AnalyticsAPI, date string) {
	token := r.seq.Begin()
	if date == "" {
		r.mu.Lock()
		if r.seq.Accept(token) {
			r.date, r.rows, r.err, r.ready = "", nil, "", false
		}
		r.mu.Unlock()
		return
	}

	rows, err := api.Report(ctx, date)

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.seq.Accept(token) {
		return
	}
	r.date = date
	r.ready = true
	if err != nil {
		r.rows = nil
		r.err = "Failed to fetch report data"
		return
	}
	r.rows = rows
	r.err = ""
}

// View returns a snapshot for rendering
func (r *Report) View() ReportView {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines, summary := BuildReport(r.rows)
	return ReportView{Date: r.date, Lines: lines, Summary: summary, Error: r.err, Ready: r.ready}
}
