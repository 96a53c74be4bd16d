package database_test

import (
	"context"
	"drake-homes/internal/database"
	"drake-homes/internal/database/dbtest"
	"drake-homes/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyImages_MainIsExclusive(t *testing.T) {
	gdb := dbtest.New(t)
	ctx := context.Background()

	p := &models.Property{Title: "The Aspen", Price: "$425,000", Status: models.PropertyStatusPreConstruction}
	require.NoError(t, gdb.CreateProperty(ctx, p))

	first := &models.PropertyImage{PropertyID: p.ID, ImageURL: "/uploads/a.jpg"}
	second := &models.PropertyImage{PropertyID: p.ID, ImageURL: "/uploads/b.jpg"}
	require.NoError(t, gdb.AddPropertyImage(ctx, first))
	require.NoError(t, gdb.AddPropertyImage(ctx, second))
	assert.True(t, first.IsMain, "first image of a property is main")
	assert.False(t, second.IsMain)

	require.NoError(t, gdb.SetMainPropertyImage(ctx, p.ID, second.ID))

	got, err := gdb.GetProperty(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 2)
	mains := 0
	for _, img := range got.Images {
		if img.IsMain {
			mains++
			assert.Equal(t, second.ID, img.ID)
		}
	}
	assert.Equal(t, 1, mains)
}

func TestPropertyImages_DeleteMainLeavesNone(t *testing.T) {
	gdb := dbtest.New(t)
	ctx := context.Background()

	p := &models.Property{Title: "The Birch", Images: []models.PropertyImage{
		{ImageURL: "/uploads/1.jpg"},
		{ImageURL: "/uploads/2.jpg"},
	}}
	require.NoError(t, gdb.CreateProperty(ctx, p))

	got, err := gdb.GetProperty(ctx, p.ID)
	require.NoError(t, err)
	main := got.MainImage()
	require.NotNil(t, main)

	require.NoError(t, gdb.DeletePropertyImage(ctx, p.ID, main.ID))

	got, err = gdb.GetProperty(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Images, 1)
	assert.Nil(t, got.MainImage())
}

func TestNotFound(t *testing.T) {
	gdb := dbtest.New(t)
	ctx := context.Background()

	_, err := gdb.GetProperty(ctx, 42)
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.ErrorIs(t, gdb.DeleteLot(ctx, 42), database.ErrNotFound)
	assert.ErrorIs(t, gdb.DeletePlanFeature(ctx, 1, 2), database.ErrNotFound)
	assert.ErrorIs(t, gdb.UpdateTestimonial(ctx, &models.Testimonial{ID: 9}), database.ErrNotFound)
	assert.ErrorIs(t, gdb.UpdatePropertyFields(ctx, 7, map[string]interface{}{"is_featured": true}), database.ErrNotFound)
}

func TestUpdateProperty_RecordsChanges(t *testing.T) {
	gdb := dbtest.New(t)
	ctx := context.Background()

	p := &models.Property{Title: "The Cedar", Price: "$300,000"}
	require.NoError(t, gdb.CreateProperty(ctx, p))

	p.Price = "$310,000"
	changes := []models.PropertyChange{{
		PropertyID: p.ID,
		ChangeType: models.ChangeTypePrice,
		OldValue:   "$300,000",
		NewValue:   "$310,000",
	}}
	require.NoError(t, gdb.UpdateProperty(ctx, p, changes))

	var stored []models.PropertyChange
	require.NoError(t, gdb.DB().Where("property_id = ?", p.ID).Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, "$310,000", stored[0].NewValue)

	require.NoError(t, gdb.DeleteProperty(ctx, p.ID))
	var remaining int64
	gdb.DB().Model(&models.PropertyChange{}).Count(&remaining)
	assert.Zero(t, remaining)
}

func TestConfigurationOptions(t *testing.T) {
	gdb := dbtest.New(t)
	ctx := context.Background()

	plan := &models.Plan{Title: "Ranch 1800", Price: 350000, IsActive: true}
	require.NoError(t, gdb.CreatePlan(ctx, plan))

	cat := &models.CustomizationCategory{Name: "Flooring", IsActive: true}
	require.NoError(t, gdb.CreateCustomizationCategory(ctx, cat))
	oak := &models.CustomizationOption{CategoryID: cat.ID, Name: "Oak", PriceModifier: 4500, IsActive: true}
	tile := &models.CustomizationOption{CategoryID: cat.ID, Name: "Tile", PriceModifier: 2500, IsActive: true}
	require.NoError(t, gdb.CreateCustomizationOption(ctx, oak))
	require.NoError(t, gdb.CreateCustomizationOption(ctx, tile))

	_, err := gdb.FindCustomizationOptions(ctx, []uint{oak.ID, 999})
	assert.ErrorIs(t, err, database.ErrNotFound)

	opts, err := gdb.FindCustomizationOptions(ctx, []uint{oak.ID, tile.ID})
	require.NoError(t, err)

	cfg := &models.Configuration{PlanID: plan.ID, CustomerName: "Dana", Options: opts, Status: models.ConfigurationStatusDraft}
	cfg.RecomputeTotals(plan.Price)
	require.NoError(t, gdb.CreateConfiguration(ctx, cfg))

	got, err := gdb.GetConfiguration(ctx, cfg.ID)
	require.NoError(t, err)
	assert.Len(t, got.Options, 2)
	assert.Equal(t, 357000.0, got.TotalPrice)
	require.NotNil(t, got.Plan)
	assert.Equal(t, "Ranch 1800", got.Plan.Title)

	got.Options = []models.CustomizationOption{*tile}
	got.RecomputeTotals(plan.Price)
	require.NoError(t, gdb.UpdateConfiguration(ctx, got))

	got, err = gdb.GetConfiguration(ctx, cfg.ID)
	require.NoError(t, err)
	require.Len(t, got.Options, 1)
	assert.Equal(t, "Tile", got.Options[0].Name)

	require.NoError(t, gdb.DeleteConfiguration(ctx, cfg.ID))
	_, err = gdb.GetConfiguration(ctx, cfg.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestCreateConfiguration_UnknownPlan(t *testing.T) {
	gdb := dbtest.New(t)
	err := gdb.CreateConfiguration(context.Background(), &models.Configuration{PlanID: 5})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestListSelectionBooks_Filter(t *testing.T) {
	gdb := dbtest.New(t)
	ctx := context.Background()

	require.NoError(t, gdb.CreateSelectionBook(ctx, &models.SelectionBook{CustomerName: "Pat Olson", CustomerEmail: "pat@example.com"}))
	require.NoError(t, gdb.CreateSelectionBook(ctx, &models.SelectionBook{CustomerName: "Lee Berg", Status: models.SelectionBookStatusSubmitted}))

	books, err := gdb.ListSelectionBooks(ctx, database.SelectionBookFilter{Search: "OLSON"})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, models.SelectionBookStatusDraft, books[0].Status)

	books, err = gdb.ListSelectionBooks(ctx, database.SelectionBookFilter{Status: "submitted"})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Lee Berg", books[0].CustomerName)
}

func TestListTestimonials_Filters(t *testing.T) {
	gdb := dbtest.New(t)
	ctx := context.Background()

	require.NoError(t, gdb.CreateTestimonial(ctx, &models.Testimonial{CustomerName: "A", Text: "Great", Rating: 5, IsActive: true, IsFeatured: true}))
	require.NoError(t, gdb.CreateTestimonial(ctx, &models.Testimonial{CustomerName: "B", Text: "Good", Rating: 4, IsActive: true}))
	require.NoError(t, gdb.CreateTestimonial(ctx, &models.Testimonial{CustomerName: "C", Text: "Hidden", Rating: 3}))

	yes := true
	active, err := gdb.ListTestimonials(ctx, database.TestimonialFilter{Active: &yes})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	featured, err := gdb.ListTestimonials(ctx, database.TestimonialFilter{Active: &yes, Featured: &yes})
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, "A", featured[0].CustomerName)
}

func TestStats(t *testing.T) {
	gdb := dbtest.New(t)
	ctx := context.Background()

	require.NoError(t, gdb.CreateProperty(ctx, &models.Property{Title: "One", Status: models.PropertyStatusMoveInReady}))
	require.NoError(t, gdb.CreateProperty(ctx, &models.Property{Title: "Two", Status: models.PropertyStatusMoveInReady}))
	require.NoError(t, gdb.CreateLot(ctx, &models.Lot{LotNumber: "12", Status: models.LotStatusSold}))
	require.NoError(t, gdb.CreatePlan(ctx, &models.Plan{Title: "P", IsActive: true}))

	stats, err := gdb.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats.Properties, 1)
	assert.Equal(t, string(models.PropertyStatusMoveInReady), stats.Properties[0].Status)
	assert.EqualValues(t, 2, stats.Properties[0].Count)
	assert.EqualValues(t, 1, stats.ActivePlans)
	require.Len(t, stats.Lots, 1)
	assert.Equal(t, "sold", stats.Lots[0].Status)
}
