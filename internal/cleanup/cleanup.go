// Package cleanup purges abandoned selection books and configurations,
// leaving a DeleteLog row for every record removed.
package cleanup

import (
	"context"
	"fmt"
	"log"
	"time"

	"drake-homes/internal/models"

	"gorm.io/gorm"
)

// Service handles physical deletion of stale customer records
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// CleanupConfig holds configuration for cleanup operations
type CleanupConfig struct {
	DraftRetentionDays  int  // untouched drafts older than this are purged
	ClosedRetentionDays int  // closed configurations older than this are purged
	MaxDeletionCount    int  // safety limit per run
	DryRun              bool // only log what would be deleted
}

func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		DraftRetentionDays:  180,
		ClosedRetentionDays: 365,
		MaxDeletionCount:    1000,
	}
}

// Target is one record selected for deletion
type Target struct {
	EntityType string    `json:"entity_type"`
	EntityID   uint      `json:"entity_id"`
	Title      string    `json:"title"`
	LastUpdate time.Time `json:"last_update"`
	Reason     string    `json:"reason"`
}

// CleanupResult holds the result of a cleanup operation
type CleanupResult struct {
	TargetCount  int       `json:"target_count"`
	DeletedCount int       `json:"deleted_count"`
	ErrorCount   int       `json:"error_count"`
	DryRun       bool      `json:"dry_run"`
	ExecutedAt   time.Time `json:"executed_at"`
	Deleted      []Target  `json:"deleted"`
	Errors       []string  `json:"errors,omitempty"`
}

// FindTargets lists every record the given config would delete, selection
// books first
func (s *Service) FindTargets(ctx context.Context, cfg CleanupConfig) ([]Target, error) {
	now := s.now()
	draftCutoff := now.AddDate(0, 0, -cfg.DraftRetentionDays)
	closedCutoff := now.AddDate(0, 0, -cfg.ClosedRetentionDays)
	db := s.db.WithContext(ctx)

	var books []models.SelectionBook
	if err := db.Where("status = ? AND updated_at < ?", models.SelectionBookStatusDraft, draftCutoff).
		Order("id").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to find stale selection books: %w", err)
	}

	var configs []models.Configuration
	if err := db.Where("(status = ? AND updated_at < ?) OR (status = ? AND updated_at < ?)",
		models.ConfigurationStatusDraft, draftCutoff,
		models.ConfigurationStatusClosed, closedCutoff,
	).Order("id").Find(&configs).Error; err != nil {
		return nil, fmt.Errorf("failed to find expired configurations: %w", err)
	}

	targets := make([]Target, 0, len(books)+len(configs))
	for _, b := range books {
		targets = append(targets, Target{
			EntityType: models.EntitySelectionBook,
			EntityID:   b.ID,
			Title:      fmt.Sprintf("Selection book for %s", displayName(b.CustomerName)),
			LastUpdate: b.UpdatedAt,
			Reason:     models.DeleteReasonStaleDraft,
		})
	}
	for _, c := range configs {
		reason := models.DeleteReasonClosedExpired
		if c.Status == models.ConfigurationStatusDraft {
			reason = models.DeleteReasonStaleDraft
		}
		targets = append(targets, Target{
			EntityType: models.EntityConfiguration,
			EntityID:   c.ID,
			Title:      fmt.Sprintf("Configuration of plan %d for %s", c.PlanID, displayName(c.CustomerName)),
			LastUpdate: c.UpdatedAt,
			Reason:     reason,
		})
	}

	log.Printf("Cleanup: found %d drafts before %s and %d configurations",
		len(books), draftCutoff.Format("2006-01-02"), len(configs))
	return targets, nil
}

func displayName(name string) string {
	if name == "" {
		return "unknown customer"
	}
	return name
}

// Run deletes every target. Each record is deleted with its DeleteLog in
// its own transaction so one failure does not stop the run.
func (s *Service) Run(ctx context.Context, cfg CleanupConfig) (*CleanupResult, error) {
	result := &CleanupResult{
		DryRun:     cfg.DryRun,
		ExecutedAt: s.now(),
		Deleted:    []Target{},
	}

	targets, err := s.FindTargets(ctx, cfg)
	if err != nil {
		return nil, err
	}
	result.TargetCount = len(targets)
	if result.TargetCount == 0 {
		return result, nil
	}

	if cfg.MaxDeletionCount > 0 && result.TargetCount > cfg.MaxDeletionCount {
		return nil, fmt.Errorf("safety check failed: %d records exceed max deletion limit of %d",
			result.TargetCount, cfg.MaxDeletionCount)
	}

	log.Printf("Cleanup: starting, %d records to delete (dry-run: %v)", result.TargetCount, cfg.DryRun)

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if cfg.DryRun {
			log.Printf("[DRY-RUN] Would delete %s %d (%s, last update %s)",
				target.EntityType, target.EntityID, target.Title, target.LastUpdate.Format("2006-01-02"))
			result.Deleted = append(result.Deleted, target)
			result.DeletedCount++
			continue
		}

		if err := s.delete(ctx, target); err != nil {
			errMsg := fmt.Sprintf("failed to delete %s %d: %v", target.EntityType, target.EntityID, err)
			log.Printf("Cleanup: ERROR %s", errMsg)
			result.Errors = append(result.Errors, errMsg)
			result.ErrorCount++
			continue
		}
		result.Deleted = append(result.Deleted, target)
		result.DeletedCount++
	}

	log.Printf("Cleanup: completed, %d/%d deleted, %d errors (dry-run: %v)",
		result.DeletedCount, result.TargetCount, result.ErrorCount, cfg.DryRun)
	return result, nil
}

func (s *Service) delete(ctx context.Context, target Target) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry := models.DeleteLog{
			EntityType: target.EntityType,
			EntityID:   target.EntityID,
			Title:      target.Title,
			LastUpdate: target.LastUpdate,
			DeletedAt:  s.now(),
			Reason:     target.Reason,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		switch target.EntityType {
		case models.EntitySelectionBook:
			return tx.Delete(&models.SelectionBook{}, target.EntityID).Error
		case models.EntityConfiguration:
			cfg := models.Configuration{ID: target.EntityID}
			if err := tx.Model(&cfg).Association("Options").Clear(); err != nil {
				return err
			}
			return tx.Delete(&cfg).Error
		}
		return fmt.Errorf("unknown entity type %q", target.EntityType)
	})
}

// DeleteStats summarises the delete log and what is waiting to be purged
type DeleteStats struct {
	TotalDeleted      int64            `json:"total_deleted"`
	ByReason          map[string]int64 `json:"by_reason"`
	DeletedLast30Days int64            `json:"deleted_last_30_days"`
	PendingDeletion   int              `json:"pending_deletion"`
}

func (s *Service) GetDeleteStats(ctx context.Context, cfg CleanupConfig) (*DeleteStats, error) {
	db := s.db.WithContext(ctx)
	stats := &DeleteStats{ByReason: map[string]int64{}}

	if err := db.Model(&models.DeleteLog{}).Count(&stats.TotalDeleted).Error; err != nil {
		return nil, err
	}

	var reasonCounts []struct {
		Reason string
		Count  int64
	}
	if err := db.Model(&models.DeleteLog{}).
		Select("reason, count(*) as count").
		Group("reason").
		Scan(&reasonCounts).Error; err != nil {
		return nil, err
	}
	for _, rc := range reasonCounts {
		stats.ByReason[rc.Reason] = rc.Count
	}

	thirtyDaysAgo := s.now().AddDate(0, 0, -30)
	if err := db.Model(&models.DeleteLog{}).
		Where("deleted_at >= ?", thirtyDaysAgo).
		Count(&stats.DeletedLast30Days).Error; err != nil {
		return nil, err
	}

	targets, err := s.FindTargets(ctx, cfg)
	if err != nil {
		return nil, err
	}
	stats.PendingDeletion = len(targets)
	return stats, nil
}

// GetRecentDeleteLogs returns recent delete log entries
func (s *Service) GetRecentDeleteLogs(ctx context.Context, limit int) ([]models.DeleteLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []models.DeleteLog
	err := s.db.WithContext(ctx).Order("deleted_at DESC").Order("id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
