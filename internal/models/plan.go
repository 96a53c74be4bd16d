package models

import "time"

// Plan is a house plan offered for custom builds
type Plan struct {
	ID            uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Title         string  `gorm:"type:varchar(255);not null" json:"title"`
	Style         string  `gorm:"type:varchar(64);index" json:"style"`
	Description   string  `gorm:"type:text" json:"description"`
	SquareFootage int     `gorm:"not null;default:0" json:"square_footage"`
	Bedrooms      int     `gorm:"not null;default:0" json:"bedrooms"`
	Bathrooms     float64 `gorm:"not null;default:0" json:"bathrooms"`
	Floors        int     `gorm:"not null;default:1" json:"floors"`
	GarageSpaces  int     `gorm:"not null;default:0" json:"garage_spaces"`
	Price         float64 `gorm:"not null;default:0;index" json:"price"`
	MainImageURL  string  `gorm:"type:text" json:"main_image_url,omitempty"`
	IsActive      bool    `gorm:"not null" json:"is_active"`

	Features  []PlanFeature  `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"features,omitempty"`
	Images    []PlanImage    `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Documents []PlanDocument `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Plan) TableName() string {
	return "plans"
}

// Validate checks the fields the admin form requires
func (p *Plan) Validate() error {
	if p.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if p.Price < 0 {
		return &ValidationError{Field: "price", Message: "price must not be negative"}
	}
	return nil
}

type PlanFeature struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PlanID    uint   `gorm:"not null;index" json:"plan_id"`
	Feature   string `gorm:"type:varchar(255);not null" json:"feature"`
	SortOrder int    `gorm:"not null;default:0" json:"sort_order"`
}

func (PlanFeature) TableName() string {
	return "plan_features"
}

// PlanImageType classifies plan images for the gallery filter
type PlanImageType string

const (
	PlanImagePhoto     PlanImageType = "photo"
	PlanImageFloorPlan PlanImageType = "floor_plan"
	PlanImageElevation PlanImageType = "elevation"
	PlanImageInterior  PlanImageType = "interior"
)

func (t PlanImageType) IsValid() bool {
	switch t {
	case PlanImagePhoto, PlanImageFloorPlan, PlanImageElevation, PlanImageInterior:
		return true
	}
	return false
}

type PlanImage struct {
	ID        uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	PlanID    uint          `gorm:"not null;index" json:"plan_id"`
	ImageURL  string        `gorm:"type:text;not null" json:"image_url"`
	ImageType PlanImageType `gorm:"type:varchar(20);not null;default:'photo'" json:"image_type"`
	Caption   string        `gorm:"type:varchar(255)" json:"caption,omitempty"`
	SortOrder int           `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (PlanImage) TableName() string {
	return "plan_images"
}

// PlanDocumentType classifies downloadable plan documents
type PlanDocumentType string

const (
	PlanDocumentFloorPlan     PlanDocumentType = "floor_plan"
	PlanDocumentElevation     PlanDocumentType = "elevation"
	PlanDocumentSitePlan      PlanDocumentType = "site_plan"
	PlanDocumentSpecification PlanDocumentType = "specification"
)

func (t PlanDocumentType) IsValid() bool {
	switch t {
	case PlanDocumentFloorPlan, PlanDocumentElevation, PlanDocumentSitePlan, PlanDocumentSpecification:
		return true
	}
	return false
}

type PlanDocument struct {
	ID           uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	PlanID       uint             `gorm:"not null;index" json:"plan_id"`
	Title        string           `gorm:"type:varchar(255);not null" json:"title"`
	DocumentType PlanDocumentType `gorm:"type:varchar(20);not null" json:"document_type"`
	FileURL      string           `gorm:"type:text;not null" json:"file_url"`
	FileType     string           `gorm:"type:varchar(16)" json:"file_type"` // pdf, dwg, jpg ...
	SortOrder    int              `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt    time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (PlanDocument) TableName() string {
	return "plan_documents"
}
