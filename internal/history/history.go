// Package history records what changed on a listing between edits.
package history

import (
	"context"
	"fmt"
	"time"

	"drake-homes/internal/models"
	"drake-homes/internal/pricing"

	"gorm.io/gorm"
)

// DetectChanges compares the stored property with its edited version.
// Only price, construction status, availability and completion date are
// tracked.
func DetectChanges(old, updated *models.Property, now time.Time) []models.PropertyChange {
	var changes []models.PropertyChange
	add := func(changeType, oldVal, newVal string, magnitude *float64) {
		changes = append(changes, models.PropertyChange{
			PropertyID:      updated.ID,
			ChangeType:      changeType,
			OldValue:        oldVal,
			NewValue:        newVal,
			ChangeMagnitude: magnitude,
			DetectedAt:      now,
		})
	}

	if magnitude, changed := priceChange(old.Price, updated.Price); changed {
		add(models.ChangeTypePrice, old.Price, updated.Price, magnitude)
	}
	if old.Status != updated.Status {
		add(models.ChangeTypeStatus, string(old.Status), string(updated.Status), nil)
	}
	if old.AvailabilityStatus != updated.AvailabilityStatus {
		add(models.ChangeTypeAvailability, old.AvailabilityStatus, updated.AvailabilityStatus, nil)
	}
	if old.CompletionDate != updated.CompletionDate {
		add(models.ChangeTypeCompletion, old.CompletionDate, updated.CompletionDate, nil)
	}
	return changes
}

// priceChange compares formatted prices. A reformat such as "$425,000" to
// "$425K" is not a change. Magnitude is nil unless both sides parse.
func priceChange(oldPrice, newPrice string) (*float64, bool) {
	if oldPrice == newPrice {
		return nil, false
	}
	o, okOld := pricing.Parse(oldPrice)
	n, okNew := pricing.Parse(newPrice)
	if !okOld || !okNew {
		return nil, true
	}
	diff := n - o
	if diff == 0 {
		return nil, false
	}
	return &diff, true
}

// NewListing is the change row written when a property is first created
func NewListing(p *models.Property, now time.Time) models.PropertyChange {
	return models.PropertyChange{
		PropertyID: p.ID,
		ChangeType: models.ChangeTypeNew,
		NewValue:   fmt.Sprintf("%s (%s)", p.Title, p.Status),
		DetectedAt: now,
	}
}

// Describe renders a change for activity feeds
func Describe(c models.PropertyChange) string {
	switch c.ChangeType {
	case models.ChangeTypeNew:
		return "Listed " + c.NewValue
	case models.ChangeTypePrice:
		if c.ChangeMagnitude != nil {
			return fmt.Sprintf("Price %s -> %s (%s)", c.OldValue, c.NewValue, pricing.FormatDelta(*c.ChangeMagnitude))
		}
		return fmt.Sprintf("Price %s -> %s", c.OldValue, c.NewValue)
	case models.ChangeTypeStatus:
		return fmt.Sprintf("Status %s -> %s", c.OldValue, c.NewValue)
	case models.ChangeTypeAvailability:
		return fmt.Sprintf("Availability %s -> %s", c.OldValue, c.NewValue)
	case models.ChangeTypeCompletion:
		return fmt.Sprintf("Completion %s -> %s", orNone(c.OldValue), orNone(c.NewValue))
	}
	return c.ChangeType
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// Service reads change history
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// RecordNew stores the creation entry for a property
func (s *Service) RecordNew(ctx context.Context, p *models.Property) error {
	change := NewListing(p, time.Now())
	if err := s.db.WithContext(ctx).Create(&change).Error; err != nil {
		return fmt.Errorf("failed to record new property %d: %w", p.ID, err)
	}
	return nil
}

// GetPropertyHistory returns changes for one property, newest first
func (s *Service) GetPropertyHistory(ctx context.Context, propertyID uint, limit int) ([]models.PropertyChange, error) {
	var changes []models.PropertyChange
	query := s.db.WithContext(ctx).Where("property_id = ?", propertyID).Order("detected_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&changes).Error; err != nil {
		return nil, err
	}
	return changes, nil
}

// GetRecentChanges returns changes across all properties, optionally
// narrowed to one change type
func (s *Service) GetRecentChanges(ctx context.Context, changeType string, limit int) ([]models.PropertyChange, error) {
	var changes []models.PropertyChange
	query := s.db.WithContext(ctx).Order("detected_at DESC").Order("id DESC")
	if changeType != "" {
		query = query.Where("change_type = ?", changeType)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&changes).Error; err != nil {
		return nil, err
	}
	return changes, nil
}
