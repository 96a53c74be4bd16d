package selection

import (
	"encoding/json"
	"fmt"
	"sort"
)

// SavedOption is the persisted form of an option
type SavedOption struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	Checked   bool    `json:"checked"`
	TextValue string  `json:"textValue,omitempty"`
	Price     float64 `json:"price,omitempty"`
	IsUpgrade bool    `json:"isUpgrade,omitempty"`
}

type SavedGroup struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	TextValue string        `json:"textValue,omitempty"`
	Options   []SavedOption `json:"options"`
}

type SavedCategory struct {
	Name     string       `json:"name"`
	Section  Section      `json:"section"`
	Groups   []SavedGroup `json:"groups"`
	Upgrades []SavedGroup `json:"upgrades,omitempty"`
}

// Saved is the persisted tree keyed by category id
type Saved map[string]SavedCategory

// Serialize captures the whole tree, including unchecked options
func (b *Book) Serialize() Saved {
	out := make(Saved, len(b.categories))
	for _, c := range b.categories {
		out[c.ID] = SavedCategory{
			Name:     c.Name,
			Section:  c.Section,
			Groups:   saveGroups(c.Groups),
			Upgrades: saveGroups(c.Upgrades),
		}
	}
	return out
}

func saveGroups(groups []Group) []SavedGroup {
	if groups == nil {
		return nil
	}
	out := make([]SavedGroup, len(groups))
	for i, g := range groups {
		sg := SavedGroup{ID: g.ID, Title: g.Title, TextValue: g.TextValue, Options: make([]SavedOption, len(g.Options))}
		for j, o := range g.Options {
			sg.Options[j] = SavedOption(o)
		}
		out[i] = sg
	}
	return out
}

// DecodeSaved parses a persisted selections document. Empty input yields
// an empty tree.
func DecodeSaved(data []byte) (Saved, error) {
	saved := Saved{}
	if len(data) == 0 || string(data) == "null" {
		return saved, nil
	}
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("failed to decode saved selections: %w", err)
	}
	return saved, nil
}

// Encode marshals the tree for storage
func (s Saved) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// MergeReport lists saved ids that no longer exist in the schema. Their
// values were not applied.
type MergeReport struct {
	Categories []string `json:"categories,omitempty"`
	Groups     []string `json:"groups,omitempty"`
	Options    []string `json:"options,omitempty"`
}

func (r MergeReport) Empty() bool {
	return len(r.Categories) == 0 && len(r.Groups) == 0 && len(r.Options) == 0
}

func (r MergeReport) Count() int {
	return len(r.Categories) + len(r.Groups) + len(r.Options)
}

// Merge applies saved values onto the book. The schema drives the pass:
// every schema node with a saved counterpart takes its checked and text
// values, schema nodes without one keep their defaults, and saved nodes
// without a schema counterpart are reported instead of applied.
//
// Exclusive groups are the one exception to keeping defaults: a saved
// checked option unchecks any option added to the schema after the book
// was saved, even one checked by default, so the group keeps at most one
// checked option.
func (b *Book) Merge(saved Saved) MergeReport {
	var report MergeReport

	for ci := range b.categories {
		c := &b.categories[ci]
		sc, ok := saved[c.ID]
		if !ok {
			continue
		}

		savedGroups := make(map[string]SavedGroup, len(sc.Groups)+len(sc.Upgrades))
		for _, sg := range append(append([]SavedGroup{}, sc.Groups...), sc.Upgrades...) {
			savedGroups[sg.ID] = sg
		}

		for _, groups := range [][]Group{c.Groups, c.Upgrades} {
			for gi := range groups {
				g := &groups[gi]
				sg, ok := savedGroups[g.ID]
				if !ok {
					continue
				}
				delete(savedGroups, g.ID)
				report.Options = append(report.Options, mergeGroup(c.ID, g, sg)...)
			}
		}

		for id := range savedGroups {
			report.Groups = append(report.Groups, c.ID+"/"+id)
		}
	}

	for id := range saved {
		if _, ok := b.byCategory[id]; !ok {
			report.Categories = append(report.Categories, id)
		}
	}

	sort.Strings(report.Categories)
	sort.Strings(report.Groups)
	sort.Strings(report.Options)
	return report
}

// mergeGroup applies one saved group and returns orphaned option paths
func mergeGroup(categoryID string, g *Group, sg SavedGroup) []string {
	g.TextValue = sg.TextValue

	savedOpts := make(map[string]SavedOption, len(sg.Options))
	for _, so := range sg.Options {
		savedOpts[so.ID] = so
	}

	savedChecked := -1
	for oi := range g.Options {
		o := &g.Options[oi]
		so, ok := savedOpts[o.ID]
		if !ok {
			continue
		}
		delete(savedOpts, o.ID)
		o.Checked = so.Checked
		o.TextValue = so.TextValue
		if so.Checked && savedChecked < 0 {
			savedChecked = oi
		}
	}

	if g.Type.Exclusive() && savedChecked >= 0 {
		for oi := range g.Options {
			g.Options[oi].Checked = oi == savedChecked
		}
	}

	var orphans []string
	for id := range savedOpts {
		orphans = append(orphans, categoryID+"/"+g.ID+"/"+id)
	}
	return orphans
}
