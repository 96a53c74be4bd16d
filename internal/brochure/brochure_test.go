package brochure

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"drake-homes/internal/models"
	"drake-homes/internal/selection"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyHTML(t *testing.T) {
	p := &models.Property{
		Title:       "The Willow",
		Location:    "Altoona, WI",
		Price:       "$389,900",
		Status:      models.PropertyStatusNearlyComplete,
		Description: "<p>Covered <em>porch</em> & patio</p>",
		Features:    []string{"Quartz counters", "3-stall garage"},
		Images: []models.PropertyImage{
			{ImageURL: "/side.jpg", SortOrder: 1},
			{ImageURL: "/front.jpg", IsMain: true},
		},
	}
	out, err := PropertyHTML(p, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "The Willow")
	assert.Contains(t, html, "$389,900")
	assert.Contains(t, html, `class="main" src="/front.jpg"`)
	assert.Contains(t, html, `src="/side.jpg"`)
	assert.Contains(t, html, "Covered porch &amp; patio")
	assert.Contains(t, html, "<li>Quartz counters</li>")
	assert.Contains(t, html, "May 1, 2024")
}

func TestSelectionBookHTML(t *testing.T) {
	schema, err := selection.DefaultSchema()
	require.NoError(t, err)
	d := selection.NewDraft(schema)
	d.Customer = selection.Customer{Name: "Pat Lee", LotNumber: "14"}
	d.Notes = "Call after 5"

	var picked bool
	for _, c := range d.Book.Categories() {
		for _, g := range c.Upgrades {
			if len(g.Options) > 0 && g.Options[0].Price > 0 {
				require.NoError(t, d.Book.HandleOptionChange(c.ID, g.ID, g.Options[0].ID, true))
				picked = true
				break
			}
		}
		if picked {
			break
		}
	}
	require.True(t, picked, "default schema has a priced upgrade")

	out, err := SelectionBookHTML(d, "The Aspen", time.Now())
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, "Pat Lee")
	assert.Contains(t, html, "The Aspen")
	assert.Contains(t, html, "Call after 5")
	assert.Contains(t, html, "Total upgrades: $")
	assert.False(t, strings.Contains(html, "Total upgrades: $0"))
}

type stubRenderer struct {
	err   error
	calls int
}

func (r *stubRenderer) RenderPDF(context.Context, []byte) ([]byte, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.4"), nil
}

func TestService_BreakerOpens(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	breaker := NewCircuitBreaker(2, time.Minute)
	breaker.now = func() time.Time { return now }

	r := &stubRenderer{err: errors.New("chrome crashed")}
	svc := NewService(r, breaker)
	ctx := context.Background()

	_, err := svc.PDF(ctx, []byte("<html></html>"))
	assert.EqualError(t, err, "chrome crashed")
	_, err = svc.PDF(ctx, nil)
	assert.Error(t, err)
	assert.True(t, svc.Status().Open)

	_, err = svc.PDF(ctx, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 2, r.calls)

	// half-open after the reset timeout
	now = now.Add(2 * time.Minute)
	r.err = nil
	pdf, err := svc.PDF(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(pdf))
	assert.False(t, svc.Status().Open)
	assert.Equal(t, 0, svc.Status().ConsecutiveFailures)
}

func TestService_HalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	breaker := NewCircuitBreaker(3, time.Second)
	breaker.now = func() time.Time { return now }
	svc := NewService(&stubRenderer{err: errors.New("boom")}, breaker)

	for i := 0; i < 3; i++ {
		_, _ = svc.PDF(context.Background(), nil)
	}
	require.True(t, breaker.GetStatus().Open)

	now = now.Add(2 * time.Second)
	_, err := svc.PDF(context.Background(), nil)
	assert.EqualError(t, err, "boom")
	assert.True(t, breaker.GetStatus().Open)
}

func TestService_Disabled(t *testing.T) {
	var svc *Service
	_, err := svc.PDF(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Nil(t, svc.Status())

	_, err = NewService(nil, nil).PDF(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}
