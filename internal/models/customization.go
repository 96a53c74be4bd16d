package models

import "time"

// CustomizationCategory is one configurator step, e.g. "Flooring"
type CustomizationCategory struct {
	ID          uint                  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string                `gorm:"type:varchar(255);not null" json:"name"`
	Description string                `gorm:"type:text" json:"description"`
	SortOrder   int                   `gorm:"not null;default:0;index" json:"sort_order"`
	IsActive    bool                  `gorm:"not null" json:"is_active"`
	Options     []CustomizationOption `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
	CreatedAt   time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CustomizationCategory) TableName() string {
	return "customization_categories"
}

type CustomizationOption struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID    uint      `gorm:"not null;index" json:"category_id"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	PriceModifier float64   `gorm:"not null;default:0" json:"price_modifier"`
	ImageURL      string    `gorm:"type:text" json:"image_url,omitempty"`
	IsDefault     bool      `gorm:"not null;default:false" json:"is_default"`
	SortOrder     int       `gorm:"not null;default:0" json:"sort_order"`
	IsActive      bool      `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CustomizationOption) TableName() string {
	return "customization_options"
}
