package models

import "time"

// Gallery is a named collection of showcase images
type Gallery struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	SortOrder   int            `gorm:"not null;default:0" json:"sort_order"`
	Images      []GalleryImage `gorm:"foreignKey:GalleryID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Gallery) TableName() string {
	return "galleries"
}

type GalleryImage struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	GalleryID   uint      `gorm:"not null;index" json:"gallery_id"`
	Title       string    `gorm:"type:varchar(255)" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    string    `gorm:"type:text;not null" json:"image_url"`
	Category    string    `gorm:"type:varchar(64);index" json:"category,omitempty"`
	SortOrder   int       `gorm:"not null;default:0;index" json:"sort_order"`
	IsFeatured  bool      `gorm:"not null;default:false;index" json:"is_featured"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (GalleryImage) TableName() string {
	return "gallery_images"
}
