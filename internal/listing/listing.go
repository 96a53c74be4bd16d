// Package listing filters and sorts admin collections in memory and fans
// bulk actions out over selected ids.
package listing

import (
	"cmp"
	"drake-homes/internal/models"
	"drake-homes/internal/pricing"
	"slices"
	"strings"
)

// SortField names a sortable column
type SortField string

const (
	SortPrice          SortField = "price"
	SortTitle          SortField = "title"
	SortLocation       SortField = "location"
	SortCompletionDate SortField = "completion_date"
	SortCreatedAt      SortField = "created_at"
)

func (f SortField) IsValid() bool {
	switch f {
	case SortPrice, SortTitle, SortLocation, SortCompletionDate, SortCreatedAt:
		return true
	}
	return false
}

// Sort orders a result set. An empty field keeps the source order.
type Sort struct {
	Field SortField
	Desc  bool
}

// ParseSort reads "price", "-price" or "price_desc" style values
func ParseSort(s string) Sort {
	s = strings.TrimSpace(s)
	desc := false
	if strings.HasPrefix(s, "-") {
		desc, s = true, s[1:]
	} else if trimmed, ok := strings.CutSuffix(s, "_desc"); ok {
		desc, s = true, trimmed
	} else {
		s = strings.TrimSuffix(s, "_asc")
	}
	f := SortField(s)
	if !f.IsValid() {
		return Sort{}
	}
	return Sort{Field: f, Desc: desc}
}

// PropertyFilter narrows the property list. Zero values match everything.
type PropertyFilter struct {
	Search   string
	Status   models.PropertyStatus
	MinPrice *float64
	MaxPrice *float64
	Beds     *int
	Baths    *float64
}

func (f PropertyFilter) match(p *models.Property) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !containsFold(q, p.Title, p.Location, p.Description) {
			return false
		}
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price, ok := pricing.Parse(p.Price)
		if !ok {
			return false
		}
		if f.MinPrice != nil && price < *f.MinPrice {
			return false
		}
		if f.MaxPrice != nil && price > *f.MaxPrice {
			return false
		}
	}
	if f.Beds != nil && p.Beds != *f.Beds {
		return false
	}
	if f.Baths != nil && p.Baths != *f.Baths {
		return false
	}
	return true
}

// ApplyProperties returns a new slice holding the matching properties in
// the requested order. src is never modified.
func ApplyProperties(src []models.Property, f PropertyFilter, s Sort) []models.Property {
	out := make([]models.Property, 0, len(src))
	for i := range src {
		if f.match(&src[i]) {
			out = append(out, src[i])
		}
	}
	if s.Field == "" {
		return out
	}

	slices.SortStableFunc(out, func(a, b models.Property) int {
		switch s.Field {
		case SortPrice:
			pa, okA := pricing.Parse(a.Price)
			pb, okB := pricing.Parse(b.Price)
			return missingLast(okA, okB, cmp.Compare(pa, pb), s.Desc)
		case SortCompletionDate:
			return missingLast(a.CompletionDate != "", b.CompletionDate != "",
				strings.Compare(a.CompletionDate, b.CompletionDate), s.Desc)
		case SortTitle:
			return direction(compareFold(a.Title, b.Title), s.Desc)
		case SortLocation:
			return direction(compareFold(a.Location, b.Location), s.Desc)
		case SortCreatedAt:
			return direction(a.CreatedAt.Compare(b.CreatedAt), s.Desc)
		}
		return 0
	})
	return out
}

// LotFilter narrows the lot list. Zero values match everything.
type LotFilter struct {
	Search   string
	Status   models.LotStatus
	MinPrice *float64
	MaxPrice *float64
	Featured *bool
}

func (f LotFilter) match(l *models.Lot) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !containsFold(q, l.LotNumber, l.Address, l.City, l.Subdivision, l.Description) {
			return false
		}
	}
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.MinPrice != nil && l.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && l.Price > *f.MaxPrice {
		return false
	}
	if f.Featured != nil && l.IsFeatured != *f.Featured {
		return false
	}
	return true
}

// ApplyLots filters and sorts lots. title sorts by lot number and location
// by city then address. Lots carry no completion date, so completion_date
// falls back to created_at.
func ApplyLots(src []models.Lot, f LotFilter, s Sort) []models.Lot {
	out := make([]models.Lot, 0, len(src))
	for i := range src {
		if f.match(&src[i]) {
			out = append(out, src[i])
		}
	}
	if s.Field == "" {
		return out
	}

	slices.SortStableFunc(out, func(a, b models.Lot) int {
		var c int
		switch s.Field {
		case SortPrice:
			c = cmp.Compare(a.Price, b.Price)
		case SortTitle:
			c = compareFold(a.LotNumber, b.LotNumber)
		case SortLocation:
			if c = compareFold(a.City, b.City); c == 0 {
				c = compareFold(a.Address, b.Address)
			}
		case SortCreatedAt, SortCompletionDate:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		return direction(c, s.Desc)
	})
	return out
}

func containsFold(lowerQuery string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), lowerQuery) {
			return true
		}
	}
	return false
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func direction(c int, desc bool) int {
	if desc {
		return -c
	}
	return c
}

// missingLast keeps values that are absent or unparseable at the end in
// either direction
func missingLast(okA, okB bool, c int, desc bool) int {
	switch {
	case okA && okB:
		return direction(c, desc)
	case okA:
		return -1
	case okB:
		return 1
	}
	return 0
}
