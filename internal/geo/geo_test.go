package geo

import (
	"testing"

	"drake-homes/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestLookupCity(t *testing.T) {
	p, ok := LookupCity("4120 Woodland Dr, Chippewa Falls, WI 54729")
	require.True(t, ok)
	assert.Equal(t, cities["chippewa falls"], p)

	p, ok = LookupCity("LAKE HALLIE")
	require.True(t, ok)
	assert.Equal(t, cities["lake hallie"], p)

	_, ok = LookupCity("Minneapolis, MN")
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	p, src, ok := Resolve(ptr(44.9), ptr(-91.5), "Menomonie")
	require.True(t, ok)
	assert.Equal(t, SourceExact, src)
	assert.Equal(t, Point{Lat: 44.9, Lng: -91.5}, p)

	// zero coordinates are treated as unset
	p, src, ok = Resolve(ptr(0), ptr(0), "Menomonie, WI")
	require.True(t, ok)
	assert.Equal(t, SourceCity, src)
	assert.Equal(t, cities["menomonie"], p)

	_, _, ok = Resolve(nil, ptr(-91.5), "")
	assert.False(t, ok)
}

func TestPropertyMarkers(t *testing.T) {
	props := []models.Property{
		{ID: 1, Title: "The Aspen", Location: "Altoona, WI", Images: []models.PropertyImage{{ImageURL: "/a.jpg", IsMain: true}}},
		{ID: 2, Title: "Nowhere", Location: "Unknown"},
		{ID: 3, Title: "Pinned", Latitude: ptr(44.8), Longitude: ptr(-91.4)},
	}
	markers := PropertyMarkers(props)
	require.Len(t, markers, 2)
	assert.Equal(t, uint(1), markers[0].ID)
	assert.Equal(t, SourceCity, markers[0].Source)
	assert.Equal(t, "/a.jpg", markers[0].ImageURL)
	assert.Equal(t, SourceExact, markers[1].Source)
}

func TestLotMarkers(t *testing.T) {
	markers := LotMarkers([]models.Lot{{ID: 7, LotNumber: "12", City: "Eau Claire"}})
	require.Len(t, markers, 1)
	assert.Equal(t, "Lot 12", markers[0].Title)
	assert.Equal(t, "lot", markers[0].Kind)
}

func TestCenter(t *testing.T) {
	assert.Equal(t, DefaultCenter, Center(nil))
	c := Center([]Marker{{Point: Point{Lat: 44, Lng: -91}}, {Point: Point{Lat: 46, Lng: -93}}})
	assert.InDelta(t, 45, c.Lat, 1e-9)
	assert.InDelta(t, -92, c.Lng, 1e-9)
}
