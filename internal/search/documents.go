package search

import (
	"strings"

	"drake-homes/internal/models"
	"drake-homes/internal/pricing"

	"github.com/PuerkitoBio/goquery"
)

// PropertyDocument is the flattened property stored in the index
type PropertyDocument struct {
	ID                 uint     `json:"id"`
	Title              string   `json:"title"`
	Location           string   `json:"location"`
	Description        string   `json:"description"`
	Status             string   `json:"status"`
	AvailabilityStatus string   `json:"availability_status"`
	Price              string   `json:"price"`
	PriceValue         *float64 `json:"price_value,omitempty"`
	Beds               int      `json:"beds"`
	Baths              float64  `json:"baths"`
	Sqft               int      `json:"sqft"`
	Features           []string `json:"features,omitempty"`
	CompletionDate     string   `json:"completion_date,omitempty"`
	IsFeatured         bool     `json:"is_featured"`
	ImageURL           string   `json:"image_url,omitempty"`
	CreatedAt          int64    `json:"created_at"`
}

type PlanDocument struct {
	ID            uint     `json:"id"`
	Title         string   `json:"title"`
	Style         string   `json:"style"`
	Description   string   `json:"description"`
	SquareFootage int      `json:"square_footage"`
	Bedrooms      int      `json:"bedrooms"`
	Bathrooms     float64  `json:"bathrooms"`
	Floors        int      `json:"floors"`
	GarageSpaces  int      `json:"garage_spaces"`
	Price         float64  `json:"price"`
	Features      []string `json:"features,omitempty"`
	IsActive      bool     `json:"is_active"`
	ImageURL      string   `json:"image_url,omitempty"`
	CreatedAt     int64    `json:"created_at"`
}

type LotDocument struct {
	ID          uint    `json:"id"`
	LotNumber   string  `json:"lot_number"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	Subdivision string  `json:"subdivision"`
	Description string  `json:"description"`
	LotSize     float64 `json:"lot_size"`
	Price       float64 `json:"price"`
	Status      string  `json:"status"`
	IsFeatured  bool    `json:"is_featured"`
	ImageURL    string  `json:"image_url,omitempty"`
	CreatedAt   int64   `json:"created_at"`
}

func NewPropertyDocument(p *models.Property) PropertyDocument {
	doc := PropertyDocument{
		ID:                 p.ID,
		Title:              p.Title,
		Location:           p.Location,
		Description:        PlainText(p.Description),
		Status:             string(p.Status),
		AvailabilityStatus: p.AvailabilityStatus,
		Price:              p.Price,
		Beds:               p.Beds,
		Baths:              p.Baths,
		Sqft:               p.Sqft,
		Features:           p.Features,
		CompletionDate:     p.CompletionDate,
		IsFeatured:         p.IsFeatured,
		CreatedAt:          p.CreatedAt.Unix(),
	}
	// "Call for pricing" stays out of numeric filters
	if v, ok := pricing.Parse(p.Price); ok {
		doc.PriceValue = &v
	}
	if img := p.MainImage(); img != nil {
		doc.ImageURL = img.ImageURL
	}
	return doc
}

func NewPlanDocument(p *models.Plan) PlanDocument {
	features := make([]string, 0, len(p.Features))
	for _, f := range p.Features {
		features = append(features, f.Feature)
	}
	return PlanDocument{
		ID:            p.ID,
		Title:         p.Title,
		Style:         p.Style,
		Description:   PlainText(p.Description),
		SquareFootage: p.SquareFootage,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		Floors:        p.Floors,
		GarageSpaces:  p.GarageSpaces,
		Price:         p.Price,
		Features:      features,
		IsActive:      p.IsActive,
		ImageURL:      p.MainImageURL,
		CreatedAt:     p.CreatedAt.Unix(),
	}
}

func NewLotDocument(l *models.Lot) LotDocument {
	return LotDocument{
		ID:          l.ID,
		LotNumber:   l.LotNumber,
		Address:     l.Address,
		City:        l.City,
		Subdivision: l.Subdivision,
		Description: PlainText(l.Description),
		LotSize:     l.LotSize,
		Price:       l.Price,
		Status:      string(l.Status),
		IsFeatured:  l.IsFeatured,
		ImageURL:    l.MainImageURL,
		CreatedAt:   l.CreatedAt.Unix(),
	}
}

// PlainText strips markup from rich-text descriptions written in the
// admin editor and collapses whitespace.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	doc.Find("script, style").Remove()
	// keep block boundaries as word breaks
	doc.Find("p, br, li, div, h1, h2, h3, h4").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml(" ")
	})
	return strings.Join(strings.Fields(doc.Text()), " ")
}
