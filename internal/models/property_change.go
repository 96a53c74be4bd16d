package models

import "time"

// PropertyChange records a detected change on a listing
type PropertyChange struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID uint      `gorm:"not null;index" json:"property_id"`
	ChangeType string    `gorm:"type:varchar(50);not null" json:"change_type"`
	OldValue   string    `gorm:"type:text" json:"old_value,omitempty"`
	NewValue   string    `gorm:"type:text" json:"new_value,omitempty"`
	// ChangeMagnitude is set for price changes when both prices parse
	ChangeMagnitude *float64  `json:"change_magnitude,omitempty"`
	DetectedAt      time.Time `gorm:"not null;autoCreateTime;index" json:"detected_at"`
}

// TableName specifies the table name
func (PropertyChange) TableName() string {
	return "property_changes"
}

// ChangeType constants
const (
	ChangeTypePrice        = "price_changed"
	ChangeTypeStatus       = "status_changed"
	ChangeTypeAvailability = "availability_changed"
	ChangeTypeCompletion   = "completion_date_changed"
	ChangeTypeNew          = "new_property"
)
