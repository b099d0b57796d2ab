package database

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"reid-dashboard/internal/config"
	"reid-dashboard/internal/models"
)

// ActionStore persists the curation actions performed through the dashboard
type ActionStore interface {
	Record(ctx context.Context, entry *models.ActionLog) error
	Recent(ctx context.Context, limit int) ([]models.ActionLog, error)
	CountByAction(ctx context.Context) (map[string]int64, error)
	CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error)
	Close() error
}

// Open connects the store selected by cfg.Type ("mysql", "postgres" or
// empty for memory) and creates its schema
func Open(cfg config.DatabaseConfig, debug bool) (ActionStore, error) {
	switch cfg.Type {
	case "mysql":
		log.Println("[Database] Using MySQL with GORM")
		host, port, user, password, dbname := cfg.MySQLParams()
		gdb, err := NewGormDB(host, port, user, password, dbname, debug)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
		}
		if err := gdb.InitSchema(); err != nil {
			gdb.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
		return gdb, nil
	case "postgres":
		log.Println("[Database] Using PostgreSQL")
		host, port, user, password, dbname, sslmode := cfg.PostgresParams()
		db, err := NewDB(host, port, user, password, dbname, sslmode)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.InitSchema(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
		return db, nil
	case "", "memory":
		log.Println("[Database] No database configured, keeping the action log in memory")
		return NewMemoryStore(0), nil
	default:
		return nil, fmt.Errorf("unknown database type %q", cfg.Type)
	}
}

// DefaultMemoryCapacity bounds the in-memory action log
const DefaultMemoryCapacity = 1000

// MemoryStore is a bounded in-process action log. The oldest entries are
// dropped once capacity is reached.
type MemoryStore struct {
	mu       sync.Mutex
	entries  []models.ActionLog
	nextID   uint
	capacity int
	now      func() time.Time
}

// NewMemoryStore creates a memory store; capacity <= 0 uses DefaultMemoryCapacity
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{capacity: capacity, nextID: 1, now: time.Now}
}

func (m *MemoryStore) Record(ctx context.Context, entry *models.ActionLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = m.nextID
	m.nextID++
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = m.now()
	}
	m.entries = append(m.entries, *entry)
	if over := len(m.entries) - m.capacity; over > 0 {
		m.entries = append([]models.ActionLog(nil), m.entries[over:]...)
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (m *MemoryStore) Recent(ctx context.Context, limit int) ([]models.ActionLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ActionLog, len(m.entries))
	copy(out, m.entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) CountByAction(ctx context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int64)
	for _, e := range m.entries {
		counts[e.Action]++
	}
	return counts, nil
}

func (m *MemoryStore) CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, e := range m.entries {
		if e.CreatedAt.Before(cutoff) {
			n++
		}
	}
	return n, nil
}

// DeleteOlderThan removes at most limit entries created before cutoff, oldest first
func (m *MemoryStore) DeleteOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expired := make([]int, 0)
	for i, e := range m.entries {
		if e.CreatedAt.Before(cutoff) {
			expired = append(expired, i)
		}
	}
	sort.SliceStable(expired, func(a, b int) bool {
		return m.entries[expired[a]].CreatedAt.Before(m.entries[expired[b]].CreatedAt)
	})
	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}

	drop := make(map[int]bool, len(expired))
	for _, i := range expired {
		drop[i] = true
	}
	kept := m.entries[:0:0]
	for i, e := range m.entries {
		if !drop[i] {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return int64(len(expired)), nil
}

func (m *MemoryStore) Close() error { return nil }
