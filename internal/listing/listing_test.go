package listing

import (
	"context"
	"drake-homes/internal/models"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProperties() []models.Property {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []models.Property{
		{ID: 1, Title: "The Aspen", Price: "$425,000", Location: "Eau Claire, WI", Beds: 3, Baths: 2, Status: models.PropertyStatusMoveInReady, CompletionDate: "2026-03-01", CreatedAt: base},
		{ID: 2, Title: "The Birch", Price: "$389,900", Location: "Altoona, WI", Beds: 4, Baths: 2.5, Status: models.PropertyStatusUnderConstruction, CompletionDate: "2026-08-15", CreatedAt: base.Add(time.Hour)},
		{ID: 3, Title: "The Cedar", Price: "Call for pricing", Location: "Menomonie, WI", Beds: 3, Baths: 2, Status: models.PropertyStatusMoveInReady, Description: "Walkout basement", CreatedAt: base.Add(2 * time.Hour)},
		{ID: 4, Title: "The Dogwood", Price: "$512,000", Location: "Chippewa Falls, WI", Beds: 5, Baths: 3, Status: models.PropertyStatusPreConstruction, CompletionDate: "2027-01-10", CreatedAt: base.Add(3 * time.Hour)},
	}
}

func ids(props []models.Property) []uint {
	out := make([]uint, len(props))
	for i, p := range props {
		out[i] = p.ID
	}
	return out
}

func TestApplyProperties_NoMatchLeavesSourceUntouched(t *testing.T) {
	src := sampleProperties()
	before := sampleProperties()

	got := ApplyProperties(src, PropertyFilter{Status: models.PropertyStatusMoveInReady, Search: "zzz-no-such-home"}, Sort{Field: SortPrice})
	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.Equal(t, before, src)
}

func TestApplyProperties_Filters(t *testing.T) {
	src := sampleProperties()

	got := ApplyProperties(src, PropertyFilter{Search: "WALKOUT"}, Sort{})
	assert.Equal(t, []uint{3}, ids(got))

	got = ApplyProperties(src, PropertyFilter{Status: models.PropertyStatusMoveInReady}, Sort{})
	assert.Equal(t, []uint{1, 3}, ids(got))

	minPrice, maxPrice := 400000.0, 500000.0
	got = ApplyProperties(src, PropertyFilter{MinPrice: &minPrice, MaxPrice: &maxPrice}, Sort{})
	assert.Equal(t, []uint{1}, ids(got))

	beds := 3
	baths := 2.0
	got = ApplyProperties(src, PropertyFilter{Beds: &beds, Baths: &baths}, Sort{})
	assert.Equal(t, []uint{1, 3}, ids(got))
}

func TestApplyProperties_Sort(t *testing.T) {
	src := sampleProperties()

	assert.Equal(t, []uint{2, 1, 4, 3}, ids(ApplyProperties(src, PropertyFilter{}, Sort{Field: SortPrice})))
	assert.Equal(t, []uint{4, 1, 2, 3}, ids(ApplyProperties(src, PropertyFilter{}, Sort{Field: SortPrice, Desc: true})), "unpriced homes stay last")
	assert.Equal(t, []uint{2, 4, 1, 3}, ids(ApplyProperties(src, PropertyFilter{}, Sort{Field: SortLocation})))
	assert.Equal(t, []uint{1, 2, 4, 3}, ids(ApplyProperties(src, PropertyFilter{}, Sort{Field: SortCompletionDate})))
	assert.Equal(t, []uint{4, 3, 2, 1}, ids(ApplyProperties(src, PropertyFilter{}, Sort{Field: SortCreatedAt, Desc: true})))
	assert.Equal(t, []uint{1, 2, 3, 4}, ids(ApplyProperties(src, PropertyFilter{}, Sort{Field: SortTitle})))
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, Sort{Field: SortPrice}, ParseSort("price"))
	assert.Equal(t, Sort{Field: SortPrice, Desc: true}, ParseSort("-price"))
	assert.Equal(t, Sort{Field: SortCreatedAt, Desc: true}, ParseSort("created_at_desc"))
	assert.Equal(t, Sort{Field: SortTitle}, ParseSort("title_asc"))
	assert.Equal(t, Sort{}, ParseSort("rent"))
}

func TestApplyLots(t *testing.T) {
	yes := true
	src := []models.Lot{
		{ID: 1, LotNumber: "12", City: "Eau Claire", Subdivision: "Prairie Ridge", Price: 65000, Status: models.LotStatusAvailable, IsFeatured: true},
		{ID: 2, LotNumber: "7", City: "Altoona", Subdivision: "River Prairie", Price: 82000, Status: models.LotStatusSold},
		{ID: 3, LotNumber: "3", City: "Eau Claire", Subdivision: "Oak Knoll", Price: 54000, Status: models.LotStatusAvailable},
	}

	got := ApplyLots(src, LotFilter{Search: "prairie", Status: models.LotStatusAvailable}, Sort{})
	require.Len(t, got, 1)
	assert.EqualValues(t, 1, got[0].ID)

	got = ApplyLots(src, LotFilter{Featured: &yes}, Sort{})
	require.Len(t, got, 1)

	got = ApplyLots(src, LotFilter{}, Sort{Field: SortPrice, Desc: true})
	assert.EqualValues(t, 2, got[0].ID)
	assert.EqualValues(t, 3, got[2].ID)
}

func TestApplyLots_CompletionDateSortsByCreation(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	src := []models.Lot{
		{ID: 1, LotNumber: "12", CreatedAt: base.Add(2 * time.Hour)},
		{ID: 2, LotNumber: "7", CreatedAt: base},
		{ID: 3, LotNumber: "3", CreatedAt: base.Add(time.Hour)},
	}

	byCompletion := ApplyLots(src, LotFilter{}, Sort{Field: SortCompletionDate})
	byCreation := ApplyLots(src, LotFilter{}, Sort{Field: SortCreatedAt})
	assert.Equal(t, byCreation, byCompletion)
	assert.EqualValues(t, 2, byCompletion[0].ID)
	assert.EqualValues(t, 1, byCompletion[2].ID)

	desc := ApplyLots(src, LotFilter{}, Sort{Field: SortCompletionDate, Desc: true})
	assert.EqualValues(t, 1, desc[0].ID)
}

func TestBulk_PartialFailure(t *testing.T) {
	var calls atomic.Int32
	res := Bulk(context.Background(), "Updated", []uint{1, 2, 3, 4, 5}, 2, func(_ context.Context, id uint) error {
		calls.Add(1)
		if id%2 == 0 {
			return errors.New("conflict")
		}
		return nil
	})

	assert.EqualValues(t, 5, calls.Load())
	assert.Equal(t, 5, res.Requested)
	assert.Equal(t, 3, res.Succeeded)
	assert.Equal(t, []BulkFailure{{ID: 2, Error: "conflict"}, {ID: 4, Error: "conflict"}}, res.Failed)
	assert.Equal(t, "Updated 3 of 5", res.Message)
}

func TestBulk_LimitsConcurrency(t *testing.T) {
	var inflight, peak atomic.Int32
	res := Bulk(context.Background(), "Deleted", []uint{1, 2, 3, 4, 5, 6, 7, 8}, 3, func(context.Context, uint) error {
		n := inflight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inflight.Add(-1)
		return nil
	})

	assert.Equal(t, "Deleted 8 of 8", res.Message)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestBulk_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := Bulk(ctx, "Updated", []uint{1, 2}, 1, func(context.Context, uint) error { return nil })
	assert.Zero(t, res.Succeeded)
	assert.Len(t, res.Failed, 2)
	assert.Equal(t, "Updated 0 of 2", res.Message)
}
