package selection

import (
	"errors"
	"fmt"
)

// ErrStepOutOfRange is returned by Wizard.GoTo for an index with no step
var ErrStepOutOfRange = errors.New("step out of range")

type StepKind string

const (
	StepCustomerInfo StepKind = "customer-info"
	StepCategory     StepKind = "category"
	StepNotesReview  StepKind = "notes-review"
)

type Step struct {
	Index      int      `json:"index"`
	Kind       StepKind `json:"kind"`
	Title      string   `json:"title"`
	CategoryID string   `json:"category_id,omitempty"`
	Section    Section  `json:"section,omitempty"`
	Complete   bool     `json:"complete"`
}

// Steps lists the wizard steps: customer info, every exterior category,
// every interior category, then notes and review. Category completeness is
// filled in from the current selections.
func (b *Book) Steps() []Step {
	steps := []Step{{Kind: StepCustomerInfo, Title: "Customer Information"}}
	for _, section := range []Section{SectionExterior, SectionInterior} {
		for _, c := range b.categories {
			if c.Section != section {
				continue
			}
			complete, _ := b.CategoryComplete(c.ID)
			steps = append(steps, Step{
				Kind:       StepCategory,
				Title:      c.Name,
				CategoryID: c.ID,
				Section:    c.Section,
				Complete:   complete,
			})
		}
	}
	steps = append(steps, Step{Kind: StepNotesReview, Title: "Notes & Review"})

	for i := range steps {
		steps[i].Index = i
	}
	return steps
}

// Wizard tracks the current step. Any step may be selected directly and
// nothing is validated before moving.
type Wizard struct {
	steps   []Step
	current int
}

func NewWizard(steps []Step) *Wizard {
	return &Wizard{steps: steps}
}

func (w *Wizard) Current() Step {
	return w.steps[w.current]
}

func (w *Wizard) Len() int {
	return len(w.steps)
}

func (w *Wizard) GoTo(i int) error {
	if i < 0 || i >= len(w.steps) {
		return fmt.Errorf("%w: %d of %d", ErrStepOutOfRange, i, len(w.steps))
	}
	w.current = i
	return nil
}

// Next advances one step and reports whether it moved
func (w *Wizard) Next() bool {
	if w.current >= len(w.steps)-1 {
		return false
	}
	w.current++
	return true
}

// Prev goes back one step and reports whether it moved
func (w *Wizard) Prev() bool {
	if w.current == 0 {
		return false
	}
	w.current--
	return true
}
