package search

import (
	"testing"
	"time"

	"drake-homes/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Open floor plan with a walk-in pantry.",
		PlainText("<p>Open floor plan</p><p>with a <strong>walk-in</strong> pantry.</p>"))
	assert.Equal(t, "Tom & Jerry", PlainText("Tom &amp; Jerry"))
	assert.Equal(t, "plain text", PlainText("  plain \n text "))
	assert.Equal(t, "", PlainText(""))
}

func TestNewPropertyDocument(t *testing.T) {
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	p := &models.Property{
		ID:          4,
		Title:       "The Birch",
		Price:       "$425,000",
		Status:      models.PropertyStatusMoveInReady,
		Description: "<p>Corner lot</p>",
		CreatedAt:   created,
		Images:      []models.PropertyImage{{ImageURL: "/x.jpg"}, {ImageURL: "/main.jpg", IsMain: true}},
	}
	doc := NewPropertyDocument(p)
	require.NotNil(t, doc.PriceValue)
	assert.Equal(t, 425000.0, *doc.PriceValue)
	assert.Equal(t, "Corner lot", doc.Description)
	assert.Equal(t, "/main.jpg", doc.ImageURL)
	assert.Equal(t, "Move-In Ready", doc.Status)
	assert.Equal(t, created.Unix(), doc.CreatedAt)

	p.Price = "Call for pricing"
	assert.Nil(t, NewPropertyDocument(p).PriceValue)
}

func TestNewPlanDocument_Features(t *testing.T) {
	doc := NewPlanDocument(&models.Plan{ID: 2, Features: []models.PlanFeature{{Feature: "Mudroom"}, {Feature: "Loft"}}})
	assert.Equal(t, []string{"Mudroom", "Loft"}, doc.Features)
}

func TestBuildFilter(t *testing.T) {
	minPrice, maxPrice := 300000.0, 450000.0
	beds := 3
	featured := true

	got := BuildFilter(FilterParams{
		Kind:     KindProperties,
		Status:   "Move-In Ready",
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
		Beds:     &beds,
		Featured: &featured,
	})
	assert.Equal(t, []string{
		"price_value >= 300000",
		"price_value <= 450000",
		"beds = 3",
		`status = "Move-In Ready"`,
		"is_featured = true",
	}, got)

	got = BuildFilter(FilterParams{Kind: KindPlans, Beds: &beds, Status: "ignored"})
	assert.Equal(t, []string{"bedrooms = 3", "is_active = true"}, got)

	assert.Empty(t, BuildFilter(FilterParams{Kind: KindLots}))
}

func TestBuildSort(t *testing.T) {
	assert.Equal(t, []string{"price_value:desc"}, BuildSort(KindProperties, "-price"))
	assert.Equal(t, []string{"price:asc"}, BuildSort(KindLots, "price"))
	assert.Equal(t, []string{"lot_number:asc"}, BuildSort(KindLots, "title"))
	assert.Nil(t, BuildSort(KindPlans, "completion_date"))
	assert.Nil(t, BuildSort(KindProperties, "bogus"))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindProperties, k)

	_, err = ParseKind("galleries")
	assert.Error(t, err)
}

func TestDisabled(t *testing.T) {
	var e Engine = Disabled{}
	_, err := e.Search(FilterParams{Query: "ranch"})
	assert.ErrorIs(t, err, ErrDisabled)
	assert.NoError(t, e.IndexProperty(&models.Property{}))
	assert.NoError(t, e.Reindex(nil, nil, nil))
}
