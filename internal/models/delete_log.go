package models

import "time"

// DeleteLog represents a record of physically deleted records
type DeleteLog struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EntityType string    `gorm:"type:varchar(32);not null;index" json:"entity_type"`
	EntityID   uint      `gorm:"not null;index" json:"entity_id"`
	Title      string    `gorm:"type:text" json:"title"`
	LastUpdate time.Time `json:"last_update"`
	DeletedAt  time.Time `gorm:"not null;autoCreateTime;index" json:"deleted_at"`
	Reason     string    `gorm:"type:varchar(50);not null" json:"reason"`
}

// TableName specifies the table name
func (DeleteLog) TableName() string {
	return "delete_logs"
}

// DeleteReason constants
const (
	DeleteReasonStaleDraft    = "stale_draft"
	DeleteReasonClosedExpired = "closed_expired"
	DeleteReasonManual        = "manual_deletion"
)

// Entity types recorded in delete logs
const (
	EntitySelectionBook = "selection_book"
	EntityConfiguration = "configuration"
)
