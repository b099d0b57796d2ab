package database

import (
	"context"
	"fmt"
	"time"

	"reid-dashboard/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormDB is the MySQL action log store
type GormDB struct {
	db *gorm.DB
}

func NewGormDB(host, port, user, password, dbname string, debug bool) (*GormDB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	level := logger.Warn
	if debug {
		level = logger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, err
	}

	// Test connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormDB{db: db}, nil
}

// NewGormDBFromDB creates a GormDB wrapper from an existing gorm.DB instance
func NewGormDBFromDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db}
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	return gdb.db.AutoMigrate(&models.ActionLog{})
}

func (gdb *GormDB) Record(ctx context.Context, entry *models.ActionLog) error {
	return gdb.db.WithContext(ctx).Create(entry).Error
}

func (gdb *GormDB) Recent(ctx context.Context, limit int) ([]models.ActionLog, error) {
	var logs []models.ActionLog
	q := gdb.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&logs).Error
	return logs, err
}

func (gdb *GormDB) CountByAction(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Action string
		Count  int64
	}
	if err := gdb.db.WithContext(ctx).Model(&models.ActionLog{}).
		Select("action, count(*) as count").
		Group("action").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Action] = r.Count
	}
	return counts, nil
}

func (gdb *GormDB) CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := gdb.db.WithContext(ctx).Model(&models.ActionLog{}).
		Where("created_at < ?", cutoff).
		Count(&n).Error
	return n, err
}

// DeleteOlderThan removes at most limit entries created before cutoff, oldest first
func (gdb *GormDB) DeleteOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	var ids []uint
	q := gdb.db.WithContext(ctx).Model(&models.ActionLog{}).
		Where("created_at < ?", cutoff).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.ActionLog{}, ids)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}
