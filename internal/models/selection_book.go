package models

import (
	"time"

	"gorm.io/datatypes"
)

// SelectionBookStatus tracks a customer's selection book
type SelectionBookStatus string

const (
	SelectionBookStatusDraft      SelectionBookStatus = "draft"
	SelectionBookStatusInProgress SelectionBookStatus = "in_progress"
	SelectionBookStatusSubmitted  SelectionBookStatus = "submitted"
	SelectionBookStatusCompleted  SelectionBookStatus = "completed"
)

var selectionBookTransitions = map[SelectionBookStatus][]SelectionBookStatus{
	SelectionBookStatusDraft:      {SelectionBookStatusInProgress, SelectionBookStatusSubmitted},
	SelectionBookStatusInProgress: {SelectionBookStatusSubmitted, SelectionBookStatusCompleted},
	SelectionBookStatusSubmitted:  {SelectionBookStatusCompleted},
}

func (s SelectionBookStatus) IsValid() bool {
	switch s {
	case SelectionBookStatusDraft, SelectionBookStatusInProgress, SelectionBookStatusSubmitted, SelectionBookStatusCompleted:
		return true
	}
	return false
}

func (s SelectionBookStatus) CanTransition(next SelectionBookStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range selectionBookTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SelectionBook is a customer-specific snapshot of the selection wizard tree.
// Selections holds the serialized category tree keyed by category id.
type SelectionBook struct {
	ID                 uint                `gorm:"primaryKey;autoIncrement" json:"id"`
	PlanID             *uint               `gorm:"index" json:"plan_id,omitempty"`
	CustomerName       string              `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerEmail      string              `gorm:"type:varchar(255);index" json:"customer_email"`
	CustomerPhone      string              `gorm:"type:varchar(32)" json:"customer_phone"`
	CustomerAddress    string              `gorm:"type:varchar(255)" json:"customer_address"`
	LotNumber          string              `gorm:"type:varchar(32)" json:"lot_number"`
	Notes              string              `gorm:"type:text" json:"notes"`
	Selections         datatypes.JSON      `json:"selections"`
	TotalUpgradesPrice float64             `gorm:"not null;default:0" json:"total_upgrades_price"`
	Status             SelectionBookStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	CreatedAt          time.Time           `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt          time.Time           `gorm:"autoUpdateTime;index" json:"updated_at"`
}

func (SelectionBook) TableName() string {
	return "selection_books"
}

// TransitionTo moves the book to next or returns ErrInvalidTransition
func (b *SelectionBook) TransitionTo(next SelectionBookStatus) error {
	if !next.IsValid() || !b.Status.CanTransition(next) {
		return transitionError("selection book", string(b.Status), string(next))
	}
	b.Status = next
	return nil
}
