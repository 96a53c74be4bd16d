package database

import (
	"context"
	"errors"
	"time"

	"drake-homes/internal/models"

	"gorm.io/gorm"
)

// EnqueueIndexJob records a pending index change. A job still waiting for
// the same entity is reused so bursts of edits collapse into one push.
func (gdb *GormDB) EnqueueIndexJob(ctx context.Context, kind string, entityID uint, action string) error {
	return gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.SearchIndexJob
		err := tx.Where("kind = ? AND entity_id = ? AND status IN ?", kind, entityID,
			[]string{models.IndexJobPending, models.IndexJobFailed}).
			First(&job).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&models.SearchIndexJob{
				Kind:     kind,
				EntityID: entityID,
				Action:   action,
				Status:   models.IndexJobPending,
			}).Error
		}
		if err != nil {
			return err
		}
		job.Action = action
		job.Status = models.IndexJobPending
		job.Attempts = 0
		job.NextRetryAt = nil
		job.LastError = ""
		return tx.Save(&job).Error
	})
}

// DueIndexJobs returns pending jobs, then failed jobs whose retry time has
// passed, oldest first
func (gdb *GormDB) DueIndexJobs(ctx context.Context, now time.Time, limit int) ([]models.SearchIndexJob, error) {
	var jobs []models.SearchIndexJob
	err := gdb.db.WithContext(ctx).
		Where("status = ? OR (status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?)",
			models.IndexJobPending, models.IndexJobFailed, now).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

func (gdb *GormDB) SaveIndexJob(ctx context.Context, job *models.SearchIndexJob) error {
	return gdb.db.WithContext(ctx).Save(job).Error
}

// IndexJobCounts returns the number of jobs per status
func (gdb *GormDB) IndexJobCounts(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := gdb.db.WithContext(ctx).Model(&models.SearchIndexJob{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := map[string]int64{}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// PruneIndexJobs deletes finished jobs completed before cutoff
func (gdb *GormDB) PruneIndexJobs(ctx context.Context, cutoff time.Time) (int64, error) {
	result := gdb.db.WithContext(ctx).
		Where("status = ? AND completed_at < ?", models.IndexJobDone, cutoff).
		Delete(&models.SearchIndexJob{})
	return result.RowsAffected, result.Error
}
