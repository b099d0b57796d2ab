package handlers

import (
	"context"
	"io"

	"reid-dashboard/internal/dashboard"
	"reid-dashboard/internal/models"
)

// Backend is the pipeline API as the pages use it; *backend.Client implements it
type Backend interface {
	dashboard.QueueAPI
	dashboard.TagsAPI
	dashboard.AnalyticsAPI

	QueueStats(ctx context.Context) (*models.QueueStats, error)
	QueueErrorCount(ctx context.Context) (int, error)
	SyncQueue(ctx context.Context) (*models.SyncResult, error)
	Domains(ctx context.Context) ([]string, error)
	ListQueue(ctx context.Context, f models.QueueFilter) (*models.QueuePage, error)
	Upload(ctx context.Context, filename string, content io.Reader) error
}
