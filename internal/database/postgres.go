package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reid-dashboard/internal/models"

	_ "github.com/lib/pq"
)

// DB is the PostgreSQL action log store
type DB struct {
	conn *sql.DB
}

func NewDB(host, port, user, password, dbname, sslmode string) (*DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	return &DB{conn: conn}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// InitSchema creates the action_logs table if it doesn't exist
func (db *DB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS action_logs (
		id BIGSERIAL PRIMARY KEY,
		action VARCHAR(50) NOT NULL,
		target VARCHAR(255) NOT NULL DEFAULT '',
		item_count INTEGER NOT NULL DEFAULT 0,
		detail TEXT NOT NULL DEFAULT '',
		session_id VARCHAR(36) NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_action_logs_action ON action_logs(action);
	CREATE INDEX IF NOT EXISTS idx_action_logs_created_at ON action_logs(created_at DESC);
	`
	_, err := db.conn.Exec(query)
	return err
}

func (db *DB) Record(ctx context.Context, entry *models.ActionLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	query := `
	INSERT INTO action_logs (action, target, item_count, detail, session_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id
	`
	return db.conn.QueryRowContext(ctx, query,
		entry.Action, entry.Target, entry.ItemCount, entry.Detail, entry.SessionID, entry.CreatedAt,
	).Scan(&entry.ID)
}

func (db *DB) Recent(ctx context.Context, limit int) ([]models.ActionLog, error) {
	query := `
		SELECT id, action, target, item_count, detail, session_id, created_at
		FROM action_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := db.conn.QueryContext(ctx, query, limitArg(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.ActionLog
	for rows.Next() {
		var l models.ActionLog
		if err := rows.Scan(&l.ID, &l.Action, &l.Target, &l.ItemCount, &l.Detail, &l.SessionID, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}

func (db *DB) CountByAction(ctx context.Context) (map[string]int64, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT action, COUNT(*) FROM action_logs GROUP BY action`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var action string
		var n int64
		if err := rows.Scan(&action, &n); err != nil {
			return nil, err
		}
		counts[action] = n
	}
	return counts, rows.Err()
}

func (db *DB) CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM action_logs WHERE created_at < $1`, cutoff).Scan(&n)
	return n, err
}

// DeleteOlderThan removes at most limit entries created before cutoff, oldest first
func (db *DB) DeleteOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	query := `
	DELETE FROM action_logs
	WHERE id IN (
		SELECT id FROM action_logs
		WHERE created_at < $1
		ORDER BY created_at ASC
		LIMIT $2
	)
	`
	res, err := db.conn.ExecContext(ctx, query, cutoff, limitArg(limit))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// limitArg maps a non-positive limit to NULL, which postgres reads as no limit
func limitArg(limit int) any {
	if limit > 0 {
		return limit
	}
	return nil
}
