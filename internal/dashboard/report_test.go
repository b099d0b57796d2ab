package dashboard

import (
	"context"
	"errors"
	"testing"

	"reid-dashboard/internal/models"
)

func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0.00s"},
		{45, "45.00s"},
		{125, "2m 5s"},
		{119.6, "2m 0s"},
		{3600, "1h 0m"},
		{3780, "1h 3m"},
		{7322, "2h 2m"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.seconds); got != tt.want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestSuccessRate(t *testing.T) {
	tests := []struct {
		name                   string
		success, total, errors int
		want                   string
		tone                   Tone
	}{
		{"no data", 0, 0, 0, "0%", ToneRed},
		{"half", 50, 90, 10, "50.0%", ToneAmber},
		{"high", 87, 95, 5, "87.0%", ToneGreen},
		{"low", 1, 3, 0, "33.3%", ToneRed},
		{"boundary", 80, 100, 0, "80.0%", ToneGreen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SuccessRate(tt.success, tt.total, tt.errors); got != tt.want {
				t.Errorf("SuccessRate = %q, want %q", got, tt.want)
			}
			if got := RateTone(SuccessRateValue(tt.success, tt.total, tt.errors)); got != tt.tone {
				t.Errorf("tone = %q, want %q", got, tt.tone)
			}
		})
	}
}

func TestBuildReport(t *testing.T) {
	rows := []models.ReportRow{
		{ID: "1", Source: "bali-villas", TotalListings: 90, SuccessCount: intPtr(80), ErrorCount: intPtr(10), Duration: floatPtr(125)},
		{ID: "2", Source: "lombok-land", TotalListings: 10},
	}
	lines, summary := BuildReport(rows)

	if len(lines) != 2 {
		t.Fatalf("lines = %+v", lines)
	}
	if lines[0].Duration != "2m 5s" || lines[0].SuccessRate != "80.0%" || lines[0].Tone != ToneGreen {
		t.Errorf("line[0] = %+v", lines[0])
	}
	if lines[1].Errors != 0 || lines[1].Duration != "0.00s" || lines[1].SuccessRate != "0.0%" {
		t.Errorf("line[1] = %+v", lines[1])
	}
	if summary.Sources != 2 || summary.TotalListings != 100 || summary.TotalErrors != 10 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.TotalTime != "2m 5s" {
		t.Errorf("total time = %q", summary.TotalTime)
	}
	// 80 / (100 + 10)
	if summary.Tone != ToneAmber {
		t.Errorf("summary tone = %q", summary.Tone)
	}
}

func TestReportSelect(t *testing.T) {
	api := &fakeAPI{
		report: func(date string) ([]models.ReportRow, error) {
			if date == "2024-03-01" {
				return nil, errors.New("boom")
			}
			return []models.ReportRow{{ID: "7", Source: "bali-villas", TotalListings: 4}}, nil
		},
	}
	r := NewReport()

	r.Select(context.Background(), api, "2024-02-01")
	v := r.View()
	if !v.Ready || v.Date != "2024-02-01" || len(v.Lines) != 1 || v.Error != "" {
		t.Errorf("view = %+v", v)
	}

	r.Select(context.Background(), api, "2024-03-01")
	if v := r.View(); v.Error != "Failed to fetch report data" || len(v.Lines) != 0 {
		t.Errorf("view after failure = %+v", v)
	}

	r.Select(context.Background(), api, "")
	if v := r.View(); v.Ready || v.Date != "" || v.Error != "" {
		t.Errorf("cleared view = %+v", v)
	}
	if n := api.count("Report"); n != 2 {
		t.Errorf("backend calls = %d, clearing must not fetch", n)
	}
}
