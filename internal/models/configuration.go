package models

import "time"

// ConfigurationStatus tracks a submitted plan configuration through follow-up
type ConfigurationStatus string

const (
	ConfigurationStatusDraft     ConfigurationStatus = "draft"
	ConfigurationStatusSubmitted ConfigurationStatus = "submitted"
	ConfigurationStatusContacted ConfigurationStatus = "contacted"
	ConfigurationStatusClosed    ConfigurationStatus = "closed"
)

var configurationTransitions = map[ConfigurationStatus][]ConfigurationStatus{
	ConfigurationStatusDraft:     {ConfigurationStatusSubmitted},
	ConfigurationStatusSubmitted: {ConfigurationStatusContacted, ConfigurationStatusClosed},
	ConfigurationStatusContacted: {ConfigurationStatusClosed},
}

func (s ConfigurationStatus) IsValid() bool {
	switch s {
	case ConfigurationStatusDraft, ConfigurationStatusSubmitted, ConfigurationStatusContacted, ConfigurationStatusClosed:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next follows the lifecycle.
// Staying on the same status is always allowed.
func (s ConfigurationStatus) CanTransition(next ConfigurationStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range configurationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Configuration is a customer's chosen set of customization options for a plan
type Configuration struct {
	ID            uint                  `gorm:"primaryKey;autoIncrement" json:"id"`
	PlanID        uint                  `gorm:"not null;index" json:"plan_id"`
	Plan          *Plan                 `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	CustomerName  string                `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerEmail string                `gorm:"type:varchar(255);index" json:"customer_email"`
	CustomerPhone string                `gorm:"type:varchar(32)" json:"customer_phone"`
	Notes         string                `gorm:"type:text" json:"notes"`
	Status        ConfigurationStatus   `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	Options       []CustomizationOption `gorm:"many2many:configuration_options" json:"options,omitempty"`
	BasePrice     float64               `gorm:"not null;default:0" json:"base_price"`
	OptionsPrice  float64               `gorm:"not null;default:0" json:"options_price"`
	TotalPrice    float64               `gorm:"not null;default:0" json:"total_price"`
	CreatedAt     time.Time             `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Configuration) TableName() string {
	return "configurations"
}

// TransitionTo moves the configuration to next or returns ErrInvalidTransition
func (c *Configuration) TransitionTo(next ConfigurationStatus) error {
	if !next.IsValid() || !c.Status.CanTransition(next) {
		return transitionError("configuration", string(c.Status), string(next))
	}
	c.Status = next
	return nil
}

// RecomputeTotals derives the option and total prices from the plan and selected options
func (c *Configuration) RecomputeTotals(planPrice float64) {
	c.BasePrice = planPrice
	c.OptionsPrice = 0
	for _, opt := range c.Options {
		c.OptionsPrice += opt.PriceModifier
	}
	c.TotalPrice = c.BasePrice + c.OptionsPrice
}
