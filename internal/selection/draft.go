package selection

import (
	"context"
	"drake-homes/internal/models"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"
)

// Repository persists selection books
type Repository interface {
	CreateSelectionBook(ctx context.Context, book *models.SelectionBook) error
	UpdateSelectionBook(ctx context.Context, book *models.SelectionBook) error
}

// PersistState is either Unsaved() or SavedAs(id)
type PersistState struct {
	id uint
}

func Unsaved() PersistState { return PersistState{} }

func SavedAs(id uint) PersistState { return PersistState{id: id} }

// ID returns the stored id and whether the draft has been saved
func (s PersistState) ID() (uint, bool) {
	return s.id, s.id != 0
}

func (s PersistState) String() string {
	if id, ok := s.ID(); ok {
		return fmt.Sprintf("Saved(%d)", id)
	}
	return "Unsaved"
}

// Customer is the contact block of the first wizard step
type Customer struct {
	Name      string `json:"customer_name"`
	Email     string `json:"customer_email"`
	Phone     string `json:"customer_phone"`
	Address   string `json:"customer_address"`
	LotNumber string `json:"lot_number"`
}

// Draft is one editing session over a selection book. The first Save
// creates the record and later saves update it.
type Draft struct {
	Book     *Book
	Customer Customer
	PlanID   *uint
	Notes    string
	Status   models.SelectionBookStatus

	state     PersistState
	createdAt time.Time
}

// NewDraft starts an unsaved draft with schema defaults
func NewDraft(s *Schema) *Draft {
	return &Draft{
		Book:   NewBook(s),
		Status: models.SelectionBookStatusDraft,
		state:  Unsaved(),
	}
}

// LoadDraft rebuilds a draft from a stored record, merging its saved
// selections onto the current schema
func LoadDraft(s *Schema, rec *models.SelectionBook) (*Draft, MergeReport, error) {
	saved, err := DecodeSaved(rec.Selections)
	if err != nil {
		return nil, MergeReport{}, err
	}

	d := &Draft{
		Book: NewBook(s),
		Customer: Customer{
			Name:      rec.CustomerName,
			Email:     rec.CustomerEmail,
			Phone:     rec.CustomerPhone,
			Address:   rec.CustomerAddress,
			LotNumber: rec.LotNumber,
		},
		PlanID:    rec.PlanID,
		Notes:     rec.Notes,
		Status:    rec.Status,
		state:     SavedAs(rec.ID),
		createdAt: rec.CreatedAt,
	}

	report := d.Book.Merge(saved)
	if !report.Empty() {
		log.Printf("[selection] book %d: ignored %d saved ids missing from schema: categories=%v groups=%v options=%v",
			rec.ID, report.Count(), report.Categories, report.Groups, report.Options)
	}
	return d, report, nil
}

func (d *Draft) State() PersistState {
	return d.state
}

// Record builds the storage form with a freshly computed upgrades total
func (d *Draft) Record() (*models.SelectionBook, error) {
	data, err := d.Book.Serialize().Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode selections: %w", err)
	}
	id, _ := d.state.ID()
	return &models.SelectionBook{
		ID:                 id,
		PlanID:             d.PlanID,
		CustomerName:       d.Customer.Name,
		CustomerEmail:      d.Customer.Email,
		CustomerPhone:      d.Customer.Phone,
		CustomerAddress:    d.Customer.Address,
		LotNumber:          d.Customer.LotNumber,
		Notes:              d.Notes,
		Selections:         datatypes.JSON(data),
		TotalUpgradesPrice: d.Book.TotalUpgradesPrice(),
		Status:             d.Status,
		CreatedAt:          d.createdAt,
	}, nil
}

// Save creates the record on first call and updates it afterwards
func (d *Draft) Save(ctx context.Context, repo Repository) (*models.SelectionBook, error) {
	rec, err := d.Record()
	if err != nil {
		return nil, err
	}

	if _, saved := d.state.ID(); saved {
		if err := repo.UpdateSelectionBook(ctx, rec); err != nil {
			return nil, fmt.Errorf("failed to update selection book %d: %w", rec.ID, err)
		}
		return rec, nil
	}

	if err := repo.CreateSelectionBook(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create selection book: %w", err)
	}
	d.state = SavedAs(rec.ID)
	d.createdAt = rec.CreatedAt
	return rec, nil
}
