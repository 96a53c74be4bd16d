package selection

import "strings"

// SummaryItem is one line of the review page
type SummaryItem struct {
	GroupID    string  `json:"group_id"`
	GroupTitle string  `json:"group_title"`
	OptionID   string  `json:"option_id,omitempty"`
	Label      string  `json:"label,omitempty"`
	Text       string  `json:"text,omitempty"`
	Price      float64 `json:"price,omitempty"`
	IsUpgrade  bool    `json:"is_upgrade,omitempty"`
}

type SummaryCategory struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Section Section       `json:"section"`
	Items   []SummaryItem `json:"items"`
}

type Summary struct {
	Categories         []SummaryCategory `json:"categories"`
	TotalUpgradesPrice float64           `json:"total_upgrades_price"`
}

// Summary lists checked options and non-blank texts per category in step
// order: exterior categories first, then interior.
func (b *Book) Summary() Summary {
	out := Summary{TotalUpgradesPrice: b.TotalUpgradesPrice()}
	for _, section := range []Section{SectionExterior, SectionInterior} {
		for _, c := range b.categories {
			if c.Section != section {
				continue
			}
			sc := SummaryCategory{ID: c.ID, Name: c.Name, Section: c.Section, Items: []SummaryItem{}}
			for _, groups := range [][]Group{c.Groups, c.Upgrades} {
				for _, g := range groups {
					sc.Items = append(sc.Items, summarizeGroup(g)...)
				}
			}
			out.Categories = append(out.Categories, sc)
		}
	}
	return out
}

func summarizeGroup(g Group) []SummaryItem {
	var items []SummaryItem
	for _, o := range g.Options {
		if !o.Checked {
			continue
		}
		items = append(items, SummaryItem{
			GroupID:    g.ID,
			GroupTitle: g.Title,
			OptionID:   o.ID,
			Label:      o.Label,
			Text:       strings.TrimSpace(o.TextValue),
			Price:      o.Price,
			IsUpgrade:  o.IsUpgrade,
		})
	}
	if text := strings.TrimSpace(g.TextValue); text != "" {
		items = append(items, SummaryItem{GroupID: g.ID, GroupTitle: g.Title, Text: text})
	}
	return items
}
