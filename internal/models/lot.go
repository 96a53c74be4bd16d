package models

import "time"

// LotStatus is the sales state of a building lot
type LotStatus string

const (
	LotStatusAvailable LotStatus = "available"
	LotStatusPending   LotStatus = "pending"
	LotStatusSold      LotStatus = "sold"
	LotStatusReserved  LotStatus = "reserved"
)

func (s LotStatus) IsValid() bool {
	switch s {
	case LotStatusAvailable, LotStatusPending, LotStatusSold, LotStatusReserved:
		return true
	}
	return false
}

type Lot struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	LotNumber   string    `gorm:"type:varchar(32);not null;index" json:"lot_number"`
	Address     string    `gorm:"type:varchar(255)" json:"address"`
	City        string    `gorm:"type:varchar(100);index" json:"city"`
	State       string    `gorm:"type:varchar(32)" json:"state"`
	ZipCode     string    `gorm:"type:varchar(16)" json:"zip_code"`
	Subdivision string    `gorm:"type:varchar(255);index" json:"subdivision"`
	LotSize     float64   `gorm:"not null;default:0" json:"lot_size"` // acres
	Price       float64   `gorm:"not null;default:0;index" json:"price"`
	Status      LotStatus `gorm:"type:varchar(20);not null;default:'available';index" json:"status"`
	IsFeatured  bool      `gorm:"not null;default:false" json:"is_featured"`
	Description string    `gorm:"type:text" json:"description"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`

	MainImageURL string `gorm:"type:text" json:"main_image_url,omitempty"`

	Features []LotFeature `gorm:"foreignKey:LotID;constraint:OnDelete:CASCADE" json:"features,omitempty"`
	Images   []LotImage   `gorm:"foreignKey:LotID;constraint:OnDelete:CASCADE" json:"images,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Lot) TableName() string {
	return "lots"
}

func (l *Lot) Validate() error {
	if l.LotNumber == "" {
		return &ValidationError{Field: "lot_number", Message: "lot number is required"}
	}
	if l.Status == "" {
		l.Status = LotStatusAvailable
	}
	if !l.Status.IsValid() {
		return &ValidationError{Field: "status", Message: "unknown status " + string(l.Status)}
	}
	if l.Price < 0 || l.LotSize < 0 {
		return &ValidationError{Field: "price", Message: "price and lot size must not be negative"}
	}
	return nil
}

type LotFeature struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	LotID     uint   `gorm:"not null;index" json:"lot_id"`
	Feature   string `gorm:"type:varchar(255);not null" json:"feature"`
	SortOrder int    `gorm:"not null;default:0" json:"sort_order"`
}

func (LotFeature) TableName() string {
	return "lot_features"
}

// LotImageType classifies lot images
type LotImageType string

const (
	LotImagePhoto  LotImageType = "photo"
	LotImageSurvey LotImageType = "survey"
	LotImageAerial LotImageType = "aerial"
	LotImagePlat   LotImageType = "plat"
)

func (t LotImageType) IsValid() bool {
	switch t {
	case LotImagePhoto, LotImageSurvey, LotImageAerial, LotImagePlat:
		return true
	}
	return false
}

type LotImage struct {
	ID        uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	LotID     uint         `gorm:"not null;index" json:"lot_id"`
	ImageURL  string       `gorm:"type:text;not null" json:"image_url"`
	ImageType LotImageType `gorm:"type:varchar(20);not null;default:'photo'" json:"image_type"`
	Caption   string       `gorm:"type:varchar(255)" json:"caption,omitempty"`
	SortOrder int          `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (LotImage) TableName() string {
	return "lot_images"
}
