// Package brochure renders printable property brochures and selection
// books as HTML and, through headless Chrome, as PDF.
package brochure

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"drake-homes/internal/media"
	"drake-homes/internal/models"
	"drake-homes/internal/pricing"
	"drake-homes/internal/search"
	"drake-homes/internal/selection"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"money": pricing.Format,
	"delta": pricing.FormatDelta,
}).ParseFS(templateFS, "templates/*.html"))

// Company is printed in every footer
const Company = "Drake Homes"

// maxThumbs caps the secondary images printed under the main photo
const maxThumbs = 6

type propertyPage struct {
	Property    *models.Property
	Description string
	Main        *media.Item
	Thumbs      []media.Item
	Company     string
	Generated   string
}

// PropertyHTML renders the one-page brochure for a listing
func PropertyHTML(p *models.Property, now time.Time) ([]byte, error) {
	items := media.ForProperty(p)
	page := propertyPage{
		Property:    p,
		Description: search.PlainText(p.Description),
		Company:     Company,
		Generated:   now.Format("January 2, 2006"),
	}
	if len(items) > 0 {
		page.Main = &items[0]
		page.Thumbs = items[1:min(len(items), maxThumbs+1)]
	}
	return execute("property.html", page)
}

type selectionPage struct {
	Customer  selection.Customer
	PlanTitle string
	Status    models.SelectionBookStatus
	Notes     string
	Summary   selection.Summary
	Generated string
}

// SelectionBookHTML renders the review page of a draft for printing
func SelectionBookHTML(d *selection.Draft, planTitle string, now time.Time) ([]byte, error) {
	return execute("selection_book.html", selectionPage{
		Customer:  d.Customer,
		PlanTitle: planTitle,
		Status:    d.Status,
		Notes:     d.Notes,
		Summary:   d.Book.Summary(),
		Generated: now.Format("January 2, 2006 3:04 PM"),
	})
}

func execute(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
