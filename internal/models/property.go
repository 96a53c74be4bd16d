package models

import "time"

type Property struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title string `gorm:"type:varchar(255);not null" json:"title"`
	// Price is stored as the marketing string, e.g. "$425,000"
	Price    string `gorm:"type:varchar(64)" json:"price"`
	Location string `gorm:"type:varchar(255);index" json:"location"`

	Beds  int     `gorm:"not null;default:0;index" json:"beds"`
	Baths float64 `gorm:"not null;default:0" json:"baths"`
	Sqft  int     `gorm:"not null;default:0" json:"sqft"`

	Status             PropertyStatus `gorm:"type:varchar(32);not null;default:'Pre-Construction';index" json:"status"`
	AvailabilityStatus string         `gorm:"type:varchar(32);not null;default:'available'" json:"availability_status"`
	Description        string         `gorm:"type:text" json:"description"`
	Features           []string       `gorm:"type:text;serializer:json" json:"features"`
	CompletionDate     string         `gorm:"type:varchar(10)" json:"completion_date,omitempty"` // YYYY-MM-DD

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	// Extended attributes
	LotSize    string `gorm:"type:varchar(64)" json:"lot_size,omitempty"`
	YearBuilt  *int   `json:"year_built,omitempty"`
	Garage     string `gorm:"type:varchar(64)" json:"garage,omitempty"`
	School     string `gorm:"type:varchar(255)" json:"school_district,omitempty"`
	HOAFee     string `gorm:"type:varchar(64)" json:"hoa_fee,omitempty"`
	IsFeatured bool   `gorm:"not null;default:false" json:"is_featured"`

	Images []PropertyImage `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"images,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// PropertyStatus is the construction stage shown on listings
type PropertyStatus string

const (
	PropertyStatusPreConstruction   PropertyStatus = "Pre-Construction"
	PropertyStatusUnderConstruction PropertyStatus = "Under Construction"
	PropertyStatusNearlyComplete    PropertyStatus = "Nearly Complete"
	PropertyStatusMoveInReady       PropertyStatus = "Move-In Ready"
)

// PropertyStatuses lists every valid construction stage in lifecycle order
var PropertyStatuses = []PropertyStatus{
	PropertyStatusPreConstruction,
	PropertyStatusUnderConstruction,
	PropertyStatusNearlyComplete,
	PropertyStatusMoveInReady,
}

// IsValid reports whether s is a known construction stage
func (s PropertyStatus) IsValid() bool {
	for _, v := range PropertyStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (Property) TableName() string {
	return "properties"
}

// MainImage returns the image flagged is_main, or nil
func (p *Property) MainImage() *PropertyImage {
	for i := range p.Images {
		if p.Images[i].IsMain {
			return &p.Images[i]
		}
	}
	return nil
}

// Validate checks the fields the admin form requires
func (p *Property) Validate() error {
	if p.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if p.Status == "" {
		p.Status = PropertyStatusPreConstruction
	}
	if !p.Status.IsValid() {
		return &ValidationError{Field: "status", Message: "unknown status " + string(p.Status)}
	}
	if p.Beds < 0 || p.Baths < 0 || p.Sqft < 0 {
		return &ValidationError{Field: "beds", Message: "beds, baths and sqft must not be negative"}
	}
	return nil
}
