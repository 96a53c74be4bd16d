package history

import (
	"context"
	"testing"
	"time"

	"drake-homes/internal/database/dbtest"
	"drake-homes/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectChanges(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	old := &models.Property{
		ID:                 3,
		Price:              "$425,000",
		Status:             models.PropertyStatusUnderConstruction,
		AvailabilityStatus: "available",
	}
	updated := *old
	updated.Price = "$415,000"
	updated.Status = models.PropertyStatusNearlyComplete
	updated.CompletionDate = "2024-09-15"

	changes := DetectChanges(old, &updated, now)
	require.Len(t, changes, 3)

	assert.Equal(t, models.ChangeTypePrice, changes[0].ChangeType)
	require.NotNil(t, changes[0].ChangeMagnitude)
	assert.Equal(t, -10000.0, *changes[0].ChangeMagnitude)
	assert.Equal(t, uint(3), changes[0].PropertyID)
	assert.Equal(t, now, changes[0].DetectedAt)

	assert.Equal(t, models.ChangeTypeStatus, changes[1].ChangeType)
	assert.Equal(t, "Under Construction", changes[1].OldValue)
	assert.Equal(t, models.ChangeTypeCompletion, changes[2].ChangeType)
}

func TestDetectChanges_Price(t *testing.T) {
	old := &models.Property{Price: "$425,000"}

	reformatted := &models.Property{Price: "$425K"}
	assert.Empty(t, DetectChanges(old, reformatted, time.Now()))

	unpriced := &models.Property{Price: "Call for pricing"}
	changes := DetectChanges(old, unpriced, time.Now())
	require.Len(t, changes, 1)
	assert.Nil(t, changes[0].ChangeMagnitude)

	assert.Empty(t, DetectChanges(old, old, time.Now()))
}

func TestDescribe(t *testing.T) {
	drop := -2500.0
	assert.Equal(t, "Price $400,000 -> $397,500 (-$2,500)", Describe(models.PropertyChange{
		ChangeType: models.ChangeTypePrice, OldValue: "$400,000", NewValue: "$397,500", ChangeMagnitude: &drop,
	}))
	assert.Equal(t, "Completion none -> 2025-01-10", Describe(models.PropertyChange{
		ChangeType: models.ChangeTypeCompletion, NewValue: "2025-01-10",
	}))
}

func TestService_History(t *testing.T) {
	gdb := dbtest.New(t)
	ctx := context.Background()
	svc := NewService(gdb.DB())

	p := &models.Property{Title: "The Maple", Price: "$350,000", Status: models.PropertyStatusPreConstruction}
	require.NoError(t, gdb.CreateProperty(ctx, p))
	require.NoError(t, svc.RecordNew(ctx, p))

	updated := *p
	updated.Status = models.PropertyStatusUnderConstruction
	require.NoError(t, gdb.UpdateProperty(ctx, &updated, DetectChanges(p, &updated, time.Now().Add(time.Minute))))

	hist, err := svc.GetPropertyHistory(ctx, p.ID, 0)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, models.ChangeTypeStatus, hist[0].ChangeType)
	assert.Equal(t, models.ChangeTypeNew, hist[1].ChangeType)

	recent, err := svc.GetRecentChanges(ctx, models.ChangeTypeNew, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "The Maple (Pre-Construction)", recent[0].NewValue)
}
