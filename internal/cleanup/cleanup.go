package cleanup

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Purger is the slice of the action log store the cleanup needs
type Purger interface {
	CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

// Service purges old action log entries
type Service struct {
	store Purger
	now   func() time.Time
}

// NewService creates a new cleanup service
func NewService(store Purger) *Service {
	return &Service{store: store, now: time.Now}
}

// CleanupConfig holds configuration for cleanup operations
type CleanupConfig struct {
	RetentionDays    int  // Days to keep action log entries (default: 90)
	MaxDeletionCount int  // Maximum number of entries to delete in one run (safety limit)
	DryRun           bool // If true, only count what would be deleted
}

// DefaultCleanupConfig returns default configuration
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		RetentionDays:    90,
		MaxDeletionCount: 10000,
		DryRun:           false,
	}
}

// CleanupResult holds the result of a cleanup operation
type CleanupResult struct {
	TargetCount  int64     `json:"target_count"`  // Number of entries eligible for deletion
	DeletedCount int64     `json:"deleted_count"` // Number of entries actually deleted
	DryRun       bool      `json:"dry_run"`       // Whether this was a dry run
	Cutoff       time.Time `json:"cutoff"`        // Entries older than this are eligible
	ExecutedAt   time.Time `json:"executed_at"`   // When the cleanup was executed
}

// Purge deletes action log entries older than the retention period
func (s *Service) Purge(ctx context.Context, config CleanupConfig) (*CleanupResult, error) {
	if config.RetentionDays <= 0 {
		return nil, fmt.Errorf("retention days must be positive, got %d", config.RetentionDays)
	}

	now := s.now()
	result := &CleanupResult{
		DryRun:     config.DryRun,
		Cutoff:     now.AddDate(0, 0, -config.RetentionDays),
		ExecutedAt: now,
	}

	target, err := s.store.CountOlderThan(ctx, result.Cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to count expired action logs: %w", err)
	}
	result.TargetCount = target

	if target == 0 {
		log.Println("[Cleanup] No expired action logs found")
		return result, nil
	}

	// Safety check: abort if too many entries would be deleted
	if config.MaxDeletionCount > 0 && target > int64(config.MaxDeletionCount) {
		return nil, fmt.Errorf("safety check failed: %d action logs exceed max deletion limit of %d",
			target, config.MaxDeletionCount)
	}

	if config.DryRun {
		log.Printf("[Cleanup] [DRY-RUN] Would delete %d action logs older than %s",
			target, result.Cutoff.Format("2006-01-02"))
		result.DeletedCount = target
		return result, nil
	}

	deleted, err := s.store.DeleteOlderThan(ctx, result.Cutoff, config.MaxDeletionCount)
	if err != nil {
		return nil, fmt.Errorf("failed to delete expired action logs: %w", err)
	}
	result.DeletedCount = deleted

	log.Printf("[Cleanup] Completed: %d/%d action logs deleted (retention: %d days)",
		result.DeletedCount, result.TargetCount, config.RetentionDays)

	return result, nil
}
