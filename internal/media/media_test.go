package media

import (
	"drake-homes/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func urls(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.URL
	}
	return out
}

func TestFlatten(t *testing.T) {
	items := []Item{
		{URL: "/b.jpg", Type: "interior", SortOrder: 2},
		{URL: "/main.jpg", Type: "photo", SortOrder: 0},
		{URL: "/a.jpg", Type: "photo", SortOrder: 1},
	}
	got := Flatten("/main.jpg", items)
	assert.Equal(t, []string{"/main.jpg", "/a.jpg", "/b.jpg"}, urls(got))
	assert.Equal(t, TypeMain, got[0].Type)

	assert.Equal(t, []string{"/main.jpg", "/a.jpg", "/b.jpg"}, urls(Flatten("", items)))
	assert.Equal(t, "/b.jpg", items[0].URL, "input order is kept")
}

func TestFilterByType(t *testing.T) {
	items := Flatten("/main.jpg", []Item{
		{URL: "/fp.pdf", Type: "floor_plan", IsDocument: true, SortOrder: 3},
		{URL: "/a.jpg", Type: "photo", SortOrder: 1},
		{URL: "/el.jpg", Type: "elevation", SortOrder: 2},
	})

	assert.Len(t, FilterByType(items, TypeAll), 4)
	assert.Len(t, FilterByType(items, ""), 4)
	assert.Equal(t, []string{"/main.jpg", "/a.jpg"}, urls(FilterByType(items, "photo")))
	assert.Equal(t, []string{"/fp.pdf"}, urls(FilterByType(items, "floor_plan")))
	assert.Empty(t, FilterByType(items, "aerial"))
	assert.Equal(t, []string{TypeMain, "photo", "elevation", "floor_plan"}, Types(items))
}

func TestForPlan_DocumentsAfterImages(t *testing.T) {
	plan := &models.Plan{
		MainImageURL: "/plan.jpg",
		Images: []models.PlanImage{
			{ImageURL: "/front.jpg", ImageType: models.PlanImageElevation, SortOrder: 5},
			{ImageURL: "/plan.jpg", ImageType: models.PlanImagePhoto, SortOrder: 0},
		},
		Documents: []models.PlanDocument{
			{FileURL: "/spec.pdf", DocumentType: models.PlanDocumentSpecification, Title: "Specs", SortOrder: 0},
		},
	}
	got := ForPlan(plan)
	assert.Equal(t, []string{"/plan.jpg", "/front.jpg", "/spec.pdf"}, urls(got))
	assert.True(t, got[2].IsDocument)
}

func TestForProperty_MainFromImages(t *testing.T) {
	p := &models.Property{Images: []models.PropertyImage{
		{ImageURL: "/1.jpg", SortOrder: 0},
		{ImageURL: "/2.jpg", SortOrder: 1, IsMain: true},
	}}
	assert.Equal(t, []string{"/2.jpg", "/1.jpg"}, urls(ForProperty(p)))
}

func TestViewer_Wraps(t *testing.T) {
	v := NewViewer([]Item{{URL: "/a"}, {URL: "/b"}, {URL: "/c"}})

	v.Prev()
	cur, ok := v.Current()
	require.True(t, ok)
	assert.Equal(t, "/c", cur.URL)

	v.Next()
	assert.Equal(t, 0, v.Index)

	v.Select(10)
	assert.Equal(t, 2, v.Index)
	prev, next := v.Neighbours()
	assert.Equal(t, 1, prev)
	assert.Equal(t, 0, next)

	v.Select(-3)
	assert.Equal(t, 0, v.Index)
}

func TestViewer_Empty(t *testing.T) {
	v := NewViewer(nil)
	v.Next()
	v.Prev()
	v.Select(4)
	_, ok := v.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, v.Index)
}
