package media

// Viewer cycles through a flattened list with wrap-around
type Viewer struct {
	Items []Item
	Index int
}

func NewViewer(items []Item) *Viewer {
	return &Viewer{Items: items}
}

// Current returns the selected item; ok is false for an empty list
func (v *Viewer) Current() (Item, bool) {
	if len(v.Items) == 0 {
		return Item{}, false
	}
	return v.Items[v.Index], true
}

func (v *Viewer) Next() {
	if n := len(v.Items); n > 0 {
		v.Index = (v.Index + 1) % n
	}
}

func (v *Viewer) Prev() {
	if n := len(v.Items); n > 0 {
		v.Index = (v.Index - 1 + n) % n
	}
}

// Select jumps to i, clamped to the list bounds
func (v *Viewer) Select(i int) {
	switch {
	case len(v.Items) == 0 || i < 0:
		v.Index = 0
	case i >= len(v.Items):
		v.Index = len(v.Items) - 1
	default:
		v.Index = i
	}
}

// Neighbours returns the indexes Prev and Next would move to
func (v *Viewer) Neighbours() (prev, next int) {
	n := len(v.Items)
	if n == 0 {
		return 0, 0
	}
	return (v.Index - 1 + n) % n, (v.Index + 1) % n
}
