// Package media flattens a main image plus typed secondary images and
// documents into one ordered list for the detail page viewers.
package media

import (
	"drake-homes/internal/models"
	"sort"
)

// TypeAll disables type filtering
const TypeAll = "all"

// TypeMain marks the main image in a flattened list
const TypeMain = "main"

type Item struct {
	URL        string `json:"url"`
	Type       string `json:"type"`
	Caption    string `json:"caption,omitempty"`
	IsDocument bool   `json:"is_document,omitempty"`
	SortOrder  int    `json:"-"`
}

// Flatten puts the main image first, then items by sort order. An item
// repeating the main URL is dropped.
func Flatten(mainURL string, items []Item) []Item {
	sorted := append([]Item(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SortOrder < sorted[j].SortOrder })

	out := make([]Item, 0, len(sorted)+1)
	if mainURL != "" {
		out = append(out, Item{URL: mainURL, Type: TypeMain})
	}
	for _, it := range sorted {
		if mainURL != "" && it.URL == mainURL {
			continue
		}
		out = append(out, it)
	}
	return out
}

// FilterByType keeps items of type t. Empty or "all" keeps everything and
// the main image always passes the photo filter.
func FilterByType(items []Item, t string) []Item {
	if t == "" || t == TypeAll {
		return append([]Item(nil), items...)
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Type == t || (it.Type == TypeMain && t == "photo") {
			out = append(out, it)
		}
	}
	return out
}

// Types lists the distinct types present, in first-seen order
func Types(items []Item) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		if !seen[it.Type] {
			seen[it.Type] = true
			out = append(out, it.Type)
		}
	}
	return out
}

func ForProperty(p *models.Property) []Item {
	var mainURL string
	items := make([]Item, 0, len(p.Images))
	for _, img := range p.Images {
		if img.IsMain && mainURL == "" {
			mainURL = img.ImageURL
			continue
		}
		items = append(items, Item{URL: img.ImageURL, Type: "photo", Caption: img.Caption, SortOrder: img.SortOrder})
	}
	return Flatten(mainURL, items)
}

func ForPlan(p *models.Plan) []Item {
	items := make([]Item, 0, len(p.Images)+len(p.Documents))
	for _, img := range p.Images {
		items = append(items, Item{URL: img.ImageURL, Type: string(img.ImageType), Caption: img.Caption, SortOrder: img.SortOrder})
	}
	// documents follow every image
	offset := maxSortOrder(items) + 1
	for _, doc := range p.Documents {
		items = append(items, Item{URL: doc.FileURL, Type: string(doc.DocumentType), Caption: doc.Title, IsDocument: true, SortOrder: offset + doc.SortOrder})
	}
	return Flatten(p.MainImageURL, items)
}

func ForLot(l *models.Lot) []Item {
	items := make([]Item, 0, len(l.Images))
	for _, img := range l.Images {
		items = append(items, Item{URL: img.ImageURL, Type: string(img.ImageType), Caption: img.Caption, SortOrder: img.SortOrder})
	}
	return Flatten(l.MainImageURL, items)
}

func maxSortOrder(items []Item) int {
	m := 0
	for _, it := range items {
		if it.SortOrder > m {
			m = it.SortOrder
		}
	}
	return m
}
