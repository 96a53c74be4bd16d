package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"drake-homes/internal/brochure"
	"drake-homes/internal/database"
	"drake-homes/internal/geo"
	"drake-homes/internal/history"
	"drake-homes/internal/listing"
	"drake-homes/internal/media"
	"drake-homes/internal/models"
	"drake-homes/internal/search"

	"github.com/gin-gonic/gin"
)

// PropertyHandler serves /api/properties
type PropertyHandler struct {
	gdb      *database.GormDB
	history  *history.Service
	brochure *brochure.Service
	index    IndexQueue
	now      func() time.Time
}

func NewPropertyHandler(gdb *database.GormDB, brochures *brochure.Service, index IndexQueue) *PropertyHandler {
	return &PropertyHandler{
		gdb:      gdb,
		history:  history.NewService(gdb.DB()),
		brochure: brochures,
		index:    indexQueueOrNoop(index),
		now:      time.Now,
	}
}

// List filters and sorts the whole catalogue in memory
func (h *PropertyHandler) List(c *gin.Context) {
	properties, err := h.gdb.ListProperties(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	filter := listing.PropertyFilter{
		Search:   c.Query("search"),
		Status:   models.PropertyStatus(c.Query("status")),
		MinPrice: queryFloat(c, "min_price"),
		MaxPrice: queryFloat(c, "max_price"),
		Beds:     queryInt(c, "beds"),
		Baths:    queryFloat(c, "baths"),
	}
	result := listing.ApplyProperties(properties, filter, listing.ParseSort(c.Query("sort")))
	c.JSON(http.StatusOK, gin.H{"properties": result, "total": len(result)})
}

func (h *PropertyHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.gdb.GetProperty(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PropertyHandler) Create(c *gin.Context) {
	var p models.Property
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err.Error())
		return
	}
	p.ID = 0
	if err := p.Validate(); err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.gdb.CreateProperty(ctx, &p); err != nil {
		respondError(c, err)
		return
	}
	if err := h.history.RecordNew(ctx, &p); err != nil {
		log.Printf("History: failed to record new listing %d: %v", p.ID, err)
	}
	enqueue(ctx, h.index, search.KindProperties, p.ID, models.IndexActionUpsert)
	c.JSON(http.StatusCreated, p)
}

// Update applies the body over the stored property and records price,
// status and availability changes
func (h *PropertyHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	old, err := h.gdb.GetProperty(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	updated := *old
	updated.Images = nil
	updated.Features = append([]string(nil), old.Features...)
	if err := c.ShouldBindJSON(&updated); err != nil {
		badRequest(c, err.Error())
		return
	}
	updated.ID = id
	updated.CreatedAt = old.CreatedAt
	if err := updated.Validate(); err != nil {
		respondError(c, err)
		return
	}

	changes := history.DetectChanges(old, &updated, h.now())
	if err := h.gdb.UpdateProperty(ctx, &updated, changes); err != nil {
		respondError(c, err)
		return
	}
	enqueue(ctx, h.index, search.KindProperties, id, models.IndexActionUpsert)
	updated.Images = old.Images
	c.JSON(http.StatusOK, gin.H{"property": updated, "changes": changes})
}

func (h *PropertyHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property deleted"})
}

func (h *PropertyHandler) delete(ctx context.Context, id uint) error {
	if err := h.gdb.DeleteProperty(ctx, id); err != nil {
		return err
	}
	enqueue(ctx, h.index, search.KindProperties, id, models.IndexActionDelete)
	return nil
}

type propertyImageRequest struct {
	ImageURL  string `json:"image_url" binding:"required"`
	Caption   string `json:"caption"`
	IsMain    bool   `json:"is_main"`
	SortOrder int    `json:"sort_order"`
}

func (h *PropertyHandler) AddImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req propertyImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	img := models.PropertyImage{
		PropertyID: id,
		ImageURL:   req.ImageURL,
		Caption:    req.Caption,
		IsMain:     req.IsMain,
		SortOrder:  req.SortOrder,
	}
	ctx := c.Request.Context()
	if err := h.gdb.AddPropertyImage(ctx, &img); err != nil {
		respondError(c, err)
		return
	}
	enqueue(ctx, h.index, search.KindProperties, id, models.IndexActionUpsert)
	c.JSON(http.StatusCreated, img)
}

func (h *PropertyHandler) SetMainImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	imageID, ok := parseID(c, "imageId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.gdb.SetMainPropertyImage(ctx, id, imageID); err != nil {
		respondError(c, err)
		return
	}
	enqueue(ctx, h.index, search.KindProperties, id, models.IndexActionUpsert)
	c.JSON(http.StatusOK, gin.H{"message": "Main image updated"})
}

func (h *PropertyHandler) DeleteImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	imageID, ok := parseID(c, "imageId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.gdb.DeletePropertyImage(ctx, id, imageID); err != nil {
		respondError(c, err)
		return
	}
	enqueue(ctx, h.index, search.KindProperties, id, models.IndexActionUpsert)
	c.JSON(http.StatusOK, gin.H{"message": "Image deleted"})
}

// Media returns the flattened gallery of a property, optionally filtered by ?type=
func (h *PropertyHandler) Media(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.gdb.GetProperty(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	items := media.ForProperty(p)
	c.JSON(http.StatusOK, gin.H{
		"items": media.FilterByType(items, c.Query("type")),
		"types": media.Types(items),
	})
}

func (h *PropertyHandler) History(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	changes, err := h.history.GetPropertyHistory(c.Request.Context(), id, queryLimit(c, defaultLimit))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property_id": id, "changes": changes, "count": len(changes)})
}

// Brochure renders the property sheet as PDF. When the renderer is down the
// HTML page is served instead.
func (h *PropertyHandler) Brochure(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	p, err := h.gdb.GetProperty(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := brochure.PropertyHTML(p, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	servePDF(c, h.brochure, page, fmt.Sprintf("property-%d.pdf", id))
}

func servePDF(c *gin.Context, svc *brochure.Service, page []byte, filename string) {
	pdf, err := svc.PDF(c.Request.Context(), page)
	if errors.Is(err, brochure.ErrUnavailable) {
		c.Header("X-Brochure-Fallback", "html")
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", contentDisposition(filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Bulk runs delete or update over many properties. Updates go through the
// same change detection as a single PUT.
func (h *PropertyHandler) Bulk(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	var (
		verb string
		fn   func(ctx context.Context, id uint) error
	)
	switch req.Action {
	case "delete":
		verb, fn = "Deleted", h.delete
	case "update":
		fields := bulkFields(req.Fields, "status", "availability_status", "is_featured")
		if len(fields) == 0 {
			badRequest(c, "no updatable fields given")
			return
		}
		apply, err := propertyFieldSetter(fields)
		if err != nil {
			respondError(c, err)
			return
		}
		verb = "Updated"
		fn = func(ctx context.Context, id uint) error {
			old, err := h.gdb.GetProperty(ctx, id)
			if err != nil {
				return err
			}
			updated := *old
			apply(&updated)
			changes := history.DetectChanges(old, &updated, h.now())
			if err := h.gdb.UpdateProperty(ctx, &updated, changes); err != nil {
				return err
			}
			enqueue(ctx, h.index, search.KindProperties, id, models.IndexActionUpsert)
			return nil
		}
	default:
		badRequest(c, fmt.Sprintf("unknown bulk action %q", req.Action))
		return
	}

	log.Printf("Admin: bulk %s on %d properties", req.Action, len(req.IDs))
	c.JSON(http.StatusOK, listing.Bulk(c.Request.Context(), verb, req.IDs, listing.DefaultBulkConcurrency, fn))
}

// propertyFieldSetter validates bulk fields once and returns the setter
// applied to every property
func propertyFieldSetter(fields map[string]interface{}) (func(*models.Property), error) {
	var setters []func(*models.Property)
	if v, ok := fields["status"]; ok {
		s, _ := v.(string)
		status := models.PropertyStatus(s)
		if !status.IsValid() {
			return nil, &models.ValidationError{Field: "status", Message: "unknown status " + s}
		}
		setters = append(setters, func(p *models.Property) { p.Status = status })
	}
	if v, ok := fields["availability_status"]; ok {
		s, isString := v.(string)
		if !isString || s == "" {
			return nil, &models.ValidationError{Field: "availability_status", Message: "must be a non-empty string"}
		}
		setters = append(setters, func(p *models.Property) { p.AvailabilityStatus = s })
	}
	if v, ok := fields["is_featured"]; ok {
		b, isBool := v.(bool)
		if !isBool {
			return nil, &models.ValidationError{Field: "is_featured", Message: "must be a boolean"}
		}
		setters = append(setters, func(p *models.Property) { p.IsFeatured = b })
	}
	return func(p *models.Property) {
		for _, set := range setters {
			set(p)
		}
	}, nil
}

// Map returns markers for every property, plus lots with ?lots=true
func (h *PropertyHandler) Map(c *gin.Context) {
	ctx := c.Request.Context()
	properties, err := h.gdb.ListProperties(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	markers := geo.PropertyMarkers(properties)

	if lots := queryBool(c, "lots"); lots != nil && *lots {
		all, err := h.gdb.ListLots(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		markers = append(markers, geo.LotMarkers(all)...)
	}
	c.JSON(http.StatusOK, gin.H{"center": geo.Center(markers), "markers": markers})
}
