package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"reid-dashboard/internal/cleanup"
	"reid-dashboard/internal/config"
	"reid-dashboard/internal/dashboard"
	"reid-dashboard/internal/ratelimit"

	"github.com/robfig/cron/v3"
)

// jobTimeout bounds a single run of a background job
const jobTimeout = 2 * time.Minute

// Jobs are the services the scheduler drives. Nil members disable their job.
type Jobs struct {
	Chart    *dashboard.ChartCache
	Sessions *dashboard.SessionStore
	Limiter  *ratelimit.RateLimiter
	Cleanup  *cleanup.Service
}

// Scheduler runs the dashboard's periodic maintenance
type Scheduler struct {
	cron      *cron.Cron
	config    *config.Config
	jobs      Jobs
	isRunning bool
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg *config.Config, jobs Jobs) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		config: cfg,
		jobs:   jobs,
	}
}

// Start registers the enabled jobs and starts the cron loop
func (s *Scheduler) Start() error {
	if s.jobs.Chart != nil {
		if _, err := s.cron.AddFunc(s.config.Dashboard.ChartRefreshSpec, s.refreshChart); err != nil {
			return fmt.Errorf("chart refresh job: %w", err)
		}
	}

	if s.jobs.Sessions != nil || s.jobs.Limiter != nil {
		if _, err := s.cron.AddFunc(s.config.Dashboard.SessionSweepSpec, s.sweep); err != nil {
			return fmt.Errorf("session sweep job: %w", err)
		}
	}

	if s.jobs.Cleanup != nil && s.config.Cleanup.Enabled {
		cronSpec := s.parseDailyRunTime(s.config.Cleanup.DailyRunTime)
		if _, err := s.cron.AddFunc(cronSpec, func() {
			if _, err := s.RunCleanup(); err != nil {
				log.Printf("Scheduler: Action log cleanup failed: %v", err)
			}
		}); err != nil {
			return fmt.Errorf("cleanup job: %w", err)
		}
		log.Printf("Scheduler: Action log cleanup at %s (cron: %s)", s.config.Cleanup.DailyRunTime, cronSpec)
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Scheduler: Started with %d jobs", len(s.cron.Entries()))

	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	if s.isRunning {
		<-s.cron.Stop().Done()
		s.isRunning = false
		log.Println("Scheduler: Stopped")
	}
}

func (s *Scheduler) refreshChart() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if err := s.jobs.Chart.Refresh(ctx); err != nil {
		log.Printf("Scheduler: Chart refresh failed, keeping previous data: %v", err)
	}
}

func (s *Scheduler) sweep() {
	if s.jobs.Sessions != nil {
		s.jobs.Sessions.Sweep()
	}
	if s.jobs.Limiter != nil {
		s.jobs.Limiter.Sweep()
	}
}

// RunCleanup immediately purges expired action log entries (for manual trigger)
func (s *Scheduler) RunCleanup() (*cleanup.CleanupResult, error) {
	if s.jobs.Cleanup == nil {
		return nil, fmt.Errorf("cleanup service not configured")
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	cfg := cleanup.DefaultCleanupConfig()
	if s.config.Cleanup.RetentionDays > 0 {
		cfg.RetentionDays = s.config.Cleanup.RetentionDays
	}
	if s.config.Cleanup.MaxDeletionCount > 0 {
		cfg.MaxDeletionCount = s.config.Cleanup.MaxDeletionCount
	}
	cfg.DryRun = s.config.Cleanup.DryRun

	log.Printf("Scheduler: Running action log cleanup (retention: %d days, max: %d, dry-run: %v)",
		cfg.RetentionDays, cfg.MaxDeletionCount, cfg.DryRun)
	return s.jobs.Cleanup.Purge(ctx, cfg)
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "02:00" -> "0 2 * * *" (run at 2:00 AM every day)
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 && hour >= 0 && hour < 24 && minute >= 0 && minute < 60 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	// Default to 3:00 AM if parsing fails
	log.Printf("Scheduler: Failed to parse time '%s', using default 03:00", timeStr)
	return "0 3 * * *"
}
