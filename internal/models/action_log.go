package models

import "time"

// ActionLog records a curation action performed through the dashboard
type ActionLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Action    string    `gorm:"type:varchar(50);not null;index" json:"action"`
	Target    string    `gorm:"type:varchar(255)" json:"target,omitempty"`
	ItemCount int       `gorm:"not null;default:0" json:"item_count"`
	Detail    string    `gorm:"type:text" json:"detail,omitempty"`
	SessionID string    `gorm:"type:varchar(36);index" json:"session_id,omitempty"`
	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime;index" json:"created_at"`
}

// TableName specifies the table name
func (ActionLog) TableName() string {
	return "action_logs"
}

// Action constants
const (
	ActionQueueBulkStatus = "queue.bulk_status"
	ActionQueueSync       = "queue.sync"
	ActionDataUpload      = "data.upload"
	ActionTagUpdate       = "tags.update"
	ActionTagMark         = "tags.mark"
	ActionTagBulkMark     = "tags.bulk_mark"
)
