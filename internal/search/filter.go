package search

import (
	"fmt"
	"strconv"
	"strings"

	"drake-homes/internal/listing"
)

// Kind selects one of the indexes
type Kind string

const (
	KindProperties Kind = "properties"
	KindPlans      Kind = "plans"
	KindLots       Kind = "lots"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindProperties, KindPlans, KindLots:
		return true
	}
	return false
}

// ParseKind defaults to properties
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindProperties, nil
	}
	k := Kind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("unknown search type %q", s)
	}
	return k, nil
}

type FilterParams struct {
	Query    string
	Kind     Kind
	Status   string
	MinPrice *float64
	MaxPrice *float64
	Beds     *int
	Featured *bool
	Sort     string
	Limit    int64
	Offset   int64
}

// BuildFilter turns params into meilisearch filter expressions, one per
// condition, to be joined with AND.
func BuildFilter(params FilterParams) []string {
	var filters []string

	priceField := "price"
	if params.Kind == KindProperties {
		priceField = "price_value"
	}
	if params.MinPrice != nil {
		filters = append(filters, priceField+" >= "+formatNumber(*params.MinPrice))
	}
	if params.MaxPrice != nil {
		filters = append(filters, priceField+" <= "+formatNumber(*params.MaxPrice))
	}

	switch params.Kind {
	case KindProperties:
		if params.Beds != nil {
			filters = append(filters, fmt.Sprintf("beds = %d", *params.Beds))
		}
	case KindPlans:
		if params.Beds != nil {
			filters = append(filters, fmt.Sprintf("bedrooms = %d", *params.Beds))
		}
		// unpublished plans never show up publicly
		filters = append(filters, "is_active = true")
	}

	if params.Status != "" && params.Kind != KindPlans {
		filters = append(filters, fmt.Sprintf("status = %s", quote(params.Status)))
	}
	if params.Featured != nil && params.Kind != KindPlans {
		filters = append(filters, fmt.Sprintf("is_featured = %t", *params.Featured))
	}
	return filters
}

// BuildSort maps a listing sort onto the index's sortable attributes
func BuildSort(kind Kind, raw string) []string {
	s := listing.ParseSort(raw)
	if s.Field == "" {
		return nil
	}

	var attr string
	switch s.Field {
	case listing.SortPrice:
		attr = "price"
		if kind == KindProperties {
			attr = "price_value"
		}
	case listing.SortCreatedAt:
		attr = "created_at"
	case listing.SortTitle:
		attr = "title"
		if kind == KindLots {
			attr = "lot_number"
		}
	case listing.SortCompletionDate:
		if kind != KindProperties {
			return nil
		}
		attr = "completion_date"
	default:
		return nil
	}

	dir := "asc"
	if s.Desc {
		dir = "desc"
	}
	return []string{attr + ":" + dir}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
