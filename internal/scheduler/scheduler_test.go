package scheduler

import (
	"context"
	"testing"
	"time"

	"reid-dashboard/internal/cleanup"
	"reid-dashboard/internal/config"
	"reid-dashboard/internal/dashboard"
	"reid-dashboard/internal/database"
	"reid-dashboard/internal/models"
	"reid-dashboard/internal/ratelimit"
)

func TestParseDailyRunTime(t *testing.T) {
	s := &Scheduler{}
	tests := []struct {
		in   string
		want string
	}{
		{"02:00", "0 2 * * *"},
		{"23:45", "45 23 * * *"},
		{"7:05", "5 7 * * *"},
		{"", "0 3 * * *"},
		{"noon", "0 3 * * *"},
		{"25:00", "0 3 * * *"},
	}
	for _, tt := range tests {
		if got := s.parseDailyRunTime(tt.in); got != tt.want {
			t.Errorf("parseDailyRunTime(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStartRegistersEnabledJobs(t *testing.T) {
	cfg := config.DefaultConfig()
	store := database.NewMemoryStore(0)

	tests := []struct {
		name    string
		jobs    Jobs
		cleanup bool
		want    int
	}{
		{"none", Jobs{}, true, 0},
		{"sweep only", Jobs{Sessions: dashboard.NewSessionStore(time.Hour)}, true, 1},
		{"cleanup disabled", Jobs{Cleanup: cleanup.NewService(store)}, false, 0},
		{"all", Jobs{
			Sessions: dashboard.NewSessionStore(time.Hour),
			Limiter:  ratelimit.NewRateLimiter(1, 1, true),
			Cleanup:  cleanup.NewService(store),
		}, true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *cfg
			c.Cleanup.Enabled = tt.cleanup
			s := NewScheduler(&c, tt.jobs)
			if err := s.Start(); err != nil {
				t.Fatal(err)
			}
			defer s.Stop()
			if got := len(s.cron.Entries()); got != tt.want {
				t.Errorf("entries = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Dashboard.SessionSweepSpec = "every now and then"
	s := NewScheduler(cfg, Jobs{Sessions: dashboard.NewSessionStore(time.Hour)})
	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatal("expected invalid cron spec error")
	}
}

func TestRunCleanup(t *testing.T) {
	store := database.NewMemoryStore(0)
	ctx := context.Background()
	store.Record(ctx, &models.ActionLog{Action: models.ActionQueueSync, CreatedAt: time.Now().AddDate(0, 0, -200)})
	store.Record(ctx, &models.ActionLog{Action: models.ActionQueueSync})

	cfg := config.DefaultConfig()
	s := NewScheduler(cfg, Jobs{Cleanup: cleanup.NewService(store)})
	result, err := s.RunCleanup()
	if err != nil {
		t.Fatal(err)
	}
	if result.DeletedCount != 1 {
		t.Errorf("deleted = %d", result.DeletedCount)
	}

	if _, err := NewScheduler(cfg, Jobs{}).RunCleanup(); err == nil {
		t.Error("missing cleanup service should fail")
	}
}
