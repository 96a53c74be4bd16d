package models

import (
	"time"
)

// SearchIndexJob is a pending change to push into the search index. Jobs
// let writes succeed while meilisearch is unreachable; the worker retries
// them with backoff.
type SearchIndexJob struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind        string     `gorm:"type:varchar(20);not null;index:idx_index_job_entity" json:"kind"` // properties, plans, lots
	EntityID    uint       `gorm:"not null;index:idx_index_job_entity" json:"entity_id"`
	Action      string     `gorm:"type:varchar(10);not null" json:"action"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Attempts    int        `gorm:"not null;default:0" json:"attempts"`
	LastError   string     `gorm:"type:text" json:"last_error,omitempty"`
	NextRetryAt *time.Time `gorm:"index" json:"next_retry_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (SearchIndexJob) TableName() string {
	return "search_index_jobs"
}

const (
	IndexActionUpsert = "upsert"
	IndexActionDelete = "delete"
)

const (
	IndexJobPending    = "pending"
	IndexJobProcessing = "processing"
	IndexJobDone       = "done"
	IndexJobFailed     = "failed"
)

// MaxIndexAttempts before a job is left failed for good
const MaxIndexAttempts = 5

// NextIndexRetryDelay is the backoff after the given number of attempts
func NextIndexRetryDelay(attempts int) time.Duration {
	// 1min, 5min, 15min, 1h, 4h
	delays := []time.Duration{
		1 * time.Minute,
		5 * time.Minute,
		15 * time.Minute,
		1 * time.Hour,
		4 * time.Hour,
	}
	if attempts < 0 {
		attempts = 0
	}
	if attempts >= len(delays) {
		return delays[len(delays)-1]
	}
	return delays[attempts]
}
