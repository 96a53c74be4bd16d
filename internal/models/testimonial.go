package models

import "time"

type Testimonial struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerName string    `gorm:"type:varchar(255);not null" json:"customer_name"`
	Location     string    `gorm:"type:varchar(255)" json:"location"`
	Rating       int       `gorm:"not null;default:5" json:"rating"`
	Text         string    `gorm:"type:text;not null" json:"text"`
	IsFeatured   bool      `gorm:"not null;default:false;index" json:"is_featured"`
	IsActive     bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Testimonial) TableName() string {
	return "testimonials"
}

func (t *Testimonial) Validate() error {
	if t.CustomerName == "" {
		return &ValidationError{Field: "customer_name", Message: "customer name is required"}
	}
	if t.Text == "" {
		return &ValidationError{Field: "text", Message: "testimonial text is required"}
	}
	if t.Rating < 1 || t.Rating > 5 {
		return &ValidationError{Field: "rating", Message: "rating must be between 1 and 5"}
	}
	return nil
}
