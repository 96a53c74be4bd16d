// Package geo resolves map markers for listings. Exact coordinates win;
// otherwise the listing's city is looked up in a fixed table of the
// Chippewa Valley communities the builder works in.
package geo

import (
	"fmt"
	"strings"

	"drake-homes/internal/models"
)

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Source tells the map whether a marker is exact or city-level
type Source string

const (
	SourceExact Source = "exact"
	SourceCity  Source = "city"
)

type Marker struct {
	ID       uint   `json:"id"`
	Kind     string `json:"kind"` // property, lot
	Title    string `json:"title"`
	Price    string `json:"price,omitempty"`
	Status   string `json:"status,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Point    Point  `json:"position"`
	Source   Source `json:"source"`
}

// DefaultCenter is where the map opens when nothing can be placed
var DefaultCenter = Point{Lat: 44.8113, Lng: -91.4985}

var cities = map[string]Point{
	"eau claire":     {Lat: 44.8113, Lng: -91.4985},
	"chippewa falls": {Lat: 44.9369, Lng: -91.3929},
	"menomonie":      {Lat: 44.8755, Lng: -91.9193},
	"altoona":        {Lat: 44.8047, Lng: -91.4427},
	"lake hallie":    {Lat: 44.8741, Lng: -91.4196},
}

// LookupCity finds a known city inside a free-form location such as
// "123 Main St, Eau Claire, WI". Longest names are tried first.
func LookupCity(location string) (Point, bool) {
	loc := strings.ToLower(location)
	best := ""
	for name := range cities {
		if strings.Contains(loc, name) && len(name) > len(best) {
			best = name
		}
	}
	if best == "" {
		return Point{}, false
	}
	return cities[best], true
}

// Resolve prefers coordinates and falls back to the city table
func Resolve(lat, lng *float64, location string) (Point, Source, bool) {
	if lat != nil && lng != nil && validCoords(*lat, *lng) {
		return Point{Lat: *lat, Lng: *lng}, SourceExact, true
	}
	if p, ok := LookupCity(location); ok {
		return p, SourceCity, true
	}
	return Point{}, "", false
}

func validCoords(lat, lng float64) bool {
	if lat == 0 && lng == 0 {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// PropertyMarkers returns one marker per property that can be placed;
// properties with neither coordinates nor a known city are skipped.
func PropertyMarkers(properties []models.Property) []Marker {
	markers := make([]Marker, 0, len(properties))
	for i := range properties {
		p := &properties[i]
		pt, src, ok := Resolve(p.Latitude, p.Longitude, p.Location)
		if !ok {
			continue
		}
		m := Marker{
			ID:     p.ID,
			Kind:   "property",
			Title:  p.Title,
			Price:  p.Price,
			Status: string(p.Status),
			Point:  pt,
			Source: src,
		}
		if img := p.MainImage(); img != nil {
			m.ImageURL = img.ImageURL
		}
		markers = append(markers, m)
	}
	return markers
}

func LotMarkers(lots []models.Lot) []Marker {
	markers := make([]Marker, 0, len(lots))
	for i := range lots {
		l := &lots[i]
		location := strings.Join([]string{l.Address, l.City}, ", ")
		pt, src, ok := Resolve(l.Latitude, l.Longitude, location)
		if !ok {
			continue
		}
		markers = append(markers, Marker{
			ID:       l.ID,
			Kind:     "lot",
			Title:    fmt.Sprintf("Lot %s", l.LotNumber),
			Status:   string(l.Status),
			ImageURL: l.MainImageURL,
			Point:    pt,
			Source:   src,
		})
	}
	return markers
}

// Center averages the markers, or returns DefaultCenter for none
func Center(markers []Marker) Point {
	if len(markers) == 0 {
		return DefaultCenter
	}
	var sum Point
	for _, m := range markers {
		sum.Lat += m.Point.Lat
		sum.Lng += m.Point.Lng
	}
	n := float64(len(markers))
	return Point{Lat: sum.Lat / n, Lng: sum.Lng / n}
}
