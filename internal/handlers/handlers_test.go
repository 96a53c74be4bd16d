package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"drake-homes/internal/config"
	"drake-homes/internal/database"
	"drake-homes/internal/database/dbtest"
	"drake-homes/internal/models"
	"drake-homes/internal/scheduler"
	"drake-homes/internal/search"
	"drake-homes/internal/selection"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type recordingQueue struct {
	jobs []string
}

func (q *recordingQueue) Enqueue(_ context.Context, kind search.Kind, id uint, action string) error {
	q.jobs = append(q.jobs, fmt.Sprintf("%s %s %d", action, kind, id))
	return nil
}

func propertyRouter(gdb *database.GormDB, q IndexQueue) *gin.Engine {
	h := NewPropertyHandler(gdb, nil, q)
	r := gin.New()
	r.POST("/properties", h.Create)
	r.POST("/properties/bulk", h.Bulk)
	r.GET("/properties/:id", h.Get)
	r.PUT("/properties/:id", h.Update)
	r.GET("/properties/:id/history", h.History)
	r.GET("/properties/:id/brochure", h.Brochure)
	return r
}

func TestPropertyHandler_CreateUpdateHistory(t *testing.T) {
	gdb := dbtest.New(t)
	q := &recordingQueue{}
	r := propertyRouter(gdb, q)

	w := do(t, r, http.MethodPost, "/properties", map[string]interface{}{
		"title": "The Aspen", "price": "$400,000", "beds": 3, "baths": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Property
	decode(t, w, &created)
	assert.Equal(t, models.PropertyStatusPreConstruction, created.Status)

	path := fmt.Sprintf("/properties/%d", created.ID)
	w = do(t, r, http.MethodPut, path, map[string]interface{}{"price": "$425,000"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated struct {
		Property models.Property         `json:"property"`
		Changes  []models.PropertyChange `json:"changes"`
	}
	decode(t, w, &updated)
	assert.Equal(t, "The Aspen", updated.Property.Title)
	require.Len(t, updated.Changes, 1)
	assert.Equal(t, models.ChangeTypePrice, updated.Changes[0].ChangeType)
	require.NotNil(t, updated.Changes[0].ChangeMagnitude)
	assert.InDelta(t, 25000, *updated.Changes[0].ChangeMagnitude, 0.001)

	w = do(t, r, http.MethodGet, path+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var hist struct {
		Count int `json:"count"`
	}
	decode(t, w, &hist)
	assert.Equal(t, 2, hist.Count)

	assert.Equal(t, []string{
		fmt.Sprintf("upsert properties %d", created.ID),
		fmt.Sprintf("upsert properties %d", created.ID),
	}, q.jobs)
}

func TestPropertyHandler_Errors(t *testing.T) {
	gdb := dbtest.New(t)
	r := propertyRouter(gdb, nil)

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/properties/42", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/properties/abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/properties", map[string]interface{}{"price": "$1"}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/properties", map[string]interface{}{
		"title": "Bad", "status": "Demolished",
	}).Code)
}

func TestPropertyHandler_Bulk(t *testing.T) {
	gdb := dbtest.New(t)
	r := propertyRouter(gdb, nil)
	ctx := context.Background()

	p := models.Property{Title: "The Birch", Price: "$350,000", Status: models.PropertyStatusPreConstruction}
	require.NoError(t, gdb.CreateProperty(ctx, &p))

	w := do(t, r, http.MethodPost, "/properties/bulk", map[string]interface{}{
		"action": "update",
		"ids":    []uint{p.ID, 999},
		"fields": map[string]interface{}{"status": "Move-In Ready"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Succeeded int    `json:"succeeded"`
		Message   string `json:"message"`
		Failed    []struct {
			ID uint `json:"id"`
		} `json:"failed"`
	}
	decode(t, w, &res)
	assert.Equal(t, "Updated 1 of 2", res.Message)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, uint(999), res.Failed[0].ID)

	got, err := gdb.GetProperty(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusMoveInReady, got.Status)

	w = do(t, r, http.MethodPost, "/properties/bulk", map[string]interface{}{
		"action": "update",
		"ids":    []uint{p.ID},
		"fields": map[string]interface{}{"status": "Demolished"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/properties/bulk", map[string]interface{}{"action": "archive", "ids": []uint{p.ID}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPropertyHandler_BrochureFallsBackToHTML(t *testing.T) {
	gdb := dbtest.New(t)
	r := propertyRouter(gdb, nil)

	p := models.Property{Title: "The Cedar", Price: "$500,000", Status: models.PropertyStatusNearlyComplete}
	require.NoError(t, gdb.CreateProperty(context.Background(), &p))

	w := do(t, r, http.MethodGet, fmt.Sprintf("/properties/%d/brochure", p.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "html", w.Header().Get("X-Brochure-Fallback"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "The Cedar")
}

func TestConfigurationHandler(t *testing.T) {
	gdb := dbtest.New(t)
	ctx := context.Background()
	h := NewConfigurationHandler(gdb)
	r := gin.New()
	r.POST("/configurations", h.Create)
	r.PUT("/configurations/:id", h.Update)

	plan := models.Plan{Title: "The Dogwood", Price: 300000, IsActive: true, Floors: 1}
	require.NoError(t, gdb.CreatePlan(ctx, &plan))
	cat := models.CustomizationCategory{Name: "Kitchen", IsActive: true}
	require.NoError(t, gdb.CreateCustomizationCategory(ctx, &cat))
	opt := models.CustomizationOption{CategoryID: cat.ID, Name: "Quartz counters", PriceModifier: 4500, IsActive: true}
	require.NoError(t, gdb.CreateCustomizationOption(ctx, &opt))

	w := do(t, r, http.MethodPost, "/configurations", map[string]interface{}{
		"plan_id":       plan.ID,
		"customer_name": "Sam Rivera",
		"option_ids":    []uint{opt.ID},
		"total_price":   1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var cfg models.Configuration
	decode(t, w, &cfg)
	assert.Equal(t, models.ConfigurationStatusDraft, cfg.Status)
	assert.InDelta(t, 304500, cfg.TotalPrice, 0.001)

	path := fmt.Sprintf("/configurations/%d", cfg.ID)
	w = do(t, r, http.MethodPut, path, map[string]interface{}{"status": "closed"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPut, path, map[string]interface{}{"status": "submitted"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &cfg)
	assert.Equal(t, models.ConfigurationStatusSubmitted, cfg.Status)
	assert.InDelta(t, 304500, cfg.TotalPrice, 0.001)

	w = do(t, r, http.MethodPost, "/configurations", map[string]interface{}{"plan_id": 999})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTestimonialHandler_Validation(t *testing.T) {
	gdb := dbtest.New(t)
	h := NewTestimonialHandler(gdb)
	r := gin.New()
	r.POST("/testimonials", h.Create)

	w := do(t, r, http.MethodPost, "/testimonials", map[string]interface{}{
		"customer_name": "Pat", "text": "Great build", "rating": 9,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/testimonials", map[string]interface{}{
		"customer_name": "Pat", "text": "Great build",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Testimonial
	decode(t, w, &created)
	assert.Equal(t, 5, created.Rating)
	assert.True(t, created.IsActive)
}

func TestSelectionBookHandler(t *testing.T) {
	gdb := dbtest.New(t)
	schema, err := selection.DefaultSchema()
	require.NoError(t, err)
	h := NewSelectionBookHandler(gdb, schema, nil)
	r := gin.New()
	r.POST("/books", h.Create)
	r.GET("/books/:id", h.Get)
	r.POST("/books/:id/options", h.ChangeOption)
	r.GET("/books/:id/steps", h.Steps)
	r.PUT("/books/:id/status", h.UpdateStatus)
	r.GET("/books/:id/print", h.Print)

	w := do(t, r, http.MethodPost, "/books", map[string]interface{}{
		"customer_name": "Jordan Lee",
		"lot_number":    "14",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created bookResponse
	decode(t, w, &created)
	require.NotNil(t, created.Book)
	assert.Equal(t, "Jordan Lee", created.Book.CustomerName)
	assert.NotEmpty(t, created.Categories)
	base := fmt.Sprintf("/books/%d", created.Book.ID)

	w = do(t, r, http.MethodPost, base+"/options", map[string]interface{}{
		"category_id": "exterior-siding",
		"group_id":    "siding-upgrades",
		"option_id":   "stone-wainscot",
		"value":       true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var changed struct {
		TotalUpgradesPrice float64 `json:"total_upgrades_price"`
	}
	decode(t, w, &changed)
	assert.InDelta(t, 6800, changed.TotalUpgradesPrice, 0.001)

	w = do(t, r, http.MethodPost, base+"/options", map[string]interface{}{
		"category_id": "exterior-siding",
		"group_id":    "siding-upgrades",
		"option_id":   "gold-plated-gutters",
		"value":       true,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, base+"/steps?step=1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, base+"/steps?step=999", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPut, base+"/status", map[string]interface{}{"status": "signed"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodGet, base+"/print", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "html", w.Header().Get("X-Brochure-Fallback"))
	assert.Contains(t, w.Body.String(), "Jordan Lee")

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/books/999", nil).Code)
}

func TestSelectionBookHandler_UpdateKeepsOmittedPlan(t *testing.T) {
	gdb := dbtest.New(t)
	schema, err := selection.DefaultSchema()
	require.NoError(t, err)
	h := NewSelectionBookHandler(gdb, schema, nil)
	r := gin.New()
	r.POST("/books", h.Create)
	r.PUT("/books/:id", h.Update)

	w := do(t, r, http.MethodPost, "/books", map[string]interface{}{
		"customer_name": "Jordan Lee",
		"plan_id":       7,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created bookResponse
	decode(t, w, &created)
	path := fmt.Sprintf("/books/%d", created.Book.ID)

	w = do(t, r, http.MethodPut, path, map[string]interface{}{
		"customer_name": "Jordan Lee",
		"notes":         "Prefers a darker stain",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated bookResponse
	decode(t, w, &updated)
	assert.Equal(t, "Prefers a darker stain", updated.Book.Notes)
	require.NotNil(t, updated.Book.PlanID)
	assert.EqualValues(t, 7, *updated.Book.PlanID)

	stored, err := gdb.GetSelectionBook(context.Background(), created.Book.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PlanID)
	assert.EqualValues(t, 7, *stored.PlanID)

	w = do(t, r, http.MethodPut, path, map[string]interface{}{"plan_id": 9})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &updated)
	require.NotNil(t, updated.Book.PlanID)
	assert.EqualValues(t, 9, *updated.Book.PlanID)
}

func TestSearchHandler_Disabled(t *testing.T) {
	r := gin.New()
	r.GET("/search", NewSearchHandler(nil).Search)

	assert.Equal(t, http.StatusServiceUnavailable, do(t, r, http.MethodGet, "/search?q=aspen", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/search?type=houses", nil).Code)
}

func TestAdminHandler_CleanupDefaultsToDryRun(t *testing.T) {
	gdb := dbtest.New(t)
	cfg := config.DefaultConfig()
	sched := scheduler.NewScheduler(gdb, search.Disabled{}, nil, cfg)
	h := NewAdminHandler(gdb, sched, nil, nil, nil)
	r := gin.New()
	r.POST("/admin/cleanup/run", h.RunCleanup)
	r.GET("/admin/stats", h.GetStats)
	r.GET("/admin/ratelimit", h.GetRateLimitStats)

	req := httptest.NewRequest(http.MethodPost, "/admin/cleanup/run", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		DryRun bool `json:"dry_run"`
	}
	decode(t, w, &res)
	assert.True(t, res.DryRun)

	w = do(t, r, http.MethodPost, "/admin/cleanup/run", map[string]interface{}{"dry_run": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &res)
	assert.False(t, res.DryRun)

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/admin/stats", nil).Code)

	w = do(t, r, http.MethodGet, "/admin/ratelimit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"enabled":false}`, w.Body.String())
}
