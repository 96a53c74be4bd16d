package selection

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownGroup    = errors.New("unknown group")
	ErrUnknownOption   = errors.New("unknown option")
)

type groupKey struct {
	category, group string
}

type optionKey struct {
	category, group, option string
}

// groupRef addresses a group inside the book's category slice
type groupRef struct {
	category int
	index    int
	upgrade  bool
}

// Book is one customer's copy of the schema. Categories, groups and
// options are addressed by id through index maps built once at creation;
// mutations update the addressed option in place.
//
// A Book is not safe for concurrent use.
type Book struct {
	categories []Category
	byCategory map[string]int
	byGroup    map[groupKey]groupRef
	byOption   map[optionKey]int
}

// NewBook deep-copies the schema into a fresh book holding the defaults
func NewBook(s *Schema) *Book {
	b := &Book{
		categories: cloneCategories(s.Categories),
		byCategory: make(map[string]int),
		byGroup:    make(map[groupKey]groupRef),
		byOption:   make(map[optionKey]int),
	}
	for ci, c := range b.categories {
		b.byCategory[c.ID] = ci
		b.indexGroups(ci, c.ID, c.Groups, false)
		b.indexGroups(ci, c.ID, c.Upgrades, true)
	}
	return b
}

func (b *Book) indexGroups(ci int, categoryID string, groups []Group, upgrade bool) {
	for gi, g := range groups {
		b.byGroup[groupKey{categoryID, g.ID}] = groupRef{category: ci, index: gi, upgrade: upgrade}
		for oi, o := range g.Options {
			b.byOption[optionKey{categoryID, g.ID, o.ID}] = oi
		}
	}
}

func (b *Book) group(ref groupRef) *Group {
	c := &b.categories[ref.category]
	if ref.upgrade {
		return &c.Upgrades[ref.index]
	}
	return &c.Groups[ref.index]
}

func (b *Book) lookupGroup(categoryID, groupID string) (*Group, error) {
	if _, ok := b.byCategory[categoryID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, categoryID)
	}
	ref, ok := b.byGroup[groupKey{categoryID, groupID}]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownGroup, categoryID, groupID)
	}
	return b.group(ref), nil
}

func (b *Book) lookupOption(categoryID, groupID, optionID string) (*Group, int, error) {
	g, err := b.lookupGroup(categoryID, groupID)
	if err != nil {
		return nil, 0, err
	}
	oi, ok := b.byOption[optionKey{categoryID, groupID, optionID}]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s/%s/%s", ErrUnknownOption, categoryID, groupID, optionID)
	}
	return g, oi, nil
}

// HandleOptionChange sets the checked state of one option. In radio and
// radio-text groups every sibling is cleared; in other groups siblings are
// left alone. Upgrade groups follow the same rules as regular groups.
// Unchecking the selected radio option leaves the group with no selection.
func (b *Book) HandleOptionChange(categoryID, groupID, optionID string, value bool) error {
	g, target, err := b.lookupOption(categoryID, groupID, optionID)
	if err != nil {
		return err
	}
	if g.Type.Exclusive() {
		for i := range g.Options {
			g.Options[i].Checked = false
		}
	}
	g.Options[target].Checked = value
	return nil
}

// HandleTextChange stores free text. An empty optionID targets the group's
// own text field, otherwise the option's.
func (b *Book) HandleTextChange(categoryID, groupID, optionID, value string) error {
	if optionID == "" {
		g, err := b.lookupGroup(categoryID, groupID)
		if err != nil {
			return err
		}
		g.TextValue = value
		return nil
	}

	g, target, err := b.lookupOption(categoryID, groupID, optionID)
	if err != nil {
		return err
	}
	g.Options[target].TextValue = value
	return nil
}

// Categories returns a copy of the current tree in schema order
func (b *Book) Categories() []Category {
	return cloneCategories(b.categories)
}

// Category returns a copy of one category
func (b *Book) Category(id string) (Category, error) {
	ci, ok := b.byCategory[id]
	if !ok {
		return Category{}, fmt.Errorf("%w: %s", ErrUnknownCategory, id)
	}
	return cloneCategories(b.categories[ci : ci+1])[0], nil
}

// CategoryComplete reports whether the category has any selection at all:
// a checked option or non-blank text. It never blocks navigation.
func (b *Book) CategoryComplete(id string) (bool, error) {
	ci, ok := b.byCategory[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownCategory, id)
	}
	c := b.categories[ci]
	for _, groups := range [][]Group{c.Groups, c.Upgrades} {
		for _, g := range groups {
			if strings.TrimSpace(g.TextValue) != "" {
				return true, nil
			}
			for _, o := range g.Options {
				if o.Checked || strings.TrimSpace(o.TextValue) != "" {
					return true, nil
				}
			}
		}
	}
	return false, nil
}

// TotalUpgradesPrice sums the price of checked options in upgrade groups.
// Options in regular groups never count, whatever their flags say.
func (b *Book) TotalUpgradesPrice() float64 {
	var total float64
	for _, c := range b.categories {
		for _, g := range c.Upgrades {
			for _, o := range g.Options {
				if o.Checked {
					total += o.Price
				}
			}
		}
	}
	return total
}
