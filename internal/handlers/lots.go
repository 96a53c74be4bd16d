package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"drake-homes/internal/database"
	"drake-homes/internal/listing"
	"drake-homes/internal/media"
	"drake-homes/internal/models"
	"drake-homes/internal/search"

	"github.com/gin-gonic/gin"
)

// LotHandler serves /api/lots
type LotHandler struct {
	gdb   *database.GormDB
	index IndexQueue
}

func NewLotHandler(gdb *database.GormDB, index IndexQueue) *LotHandler {
	return &LotHandler{gdb: gdb, index: indexQueueOrNoop(index)}
}

func (h *LotHandler) List(c *gin.Context) {
	lots, err := h.gdb.ListLots(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	filter := listing.LotFilter{
		Search:   c.Query("search"),
		Status:   models.LotStatus(c.Query("status")),
		MinPrice: queryFloat(c, "min_price"),
		MaxPrice: queryFloat(c, "max_price"),
		Featured: queryBool(c, "featured"),
	}
	result := listing.ApplyLots(lots, filter, listing.ParseSort(c.Query("sort")))
	c.JSON(http.StatusOK, gin.H{"lots": result, "total": len(result)})
}

func (h *LotHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	lot, err := h.gdb.GetLot(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

func (h *LotHandler) Create(c *gin.Context) {
	var lot models.Lot
	if err := c.ShouldBindJSON(&lot); err != nil {
		badRequest(c, err.Error())
		return
	}
	lot.ID = 0
	if err := lot.Validate(); err != nil {
		respondError(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := h.gdb.CreateLot(ctx, &lot); err != nil {
		respondError(c, err)
		return
	}
	enqueue(ctx, h.index, search.KindLots, lot.ID, models.IndexActionUpsert)
	c.JSON(http.StatusCreated, lot)
}

func (h *LotHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	lot, err := h.gdb.GetLot(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	createdAt := lot.CreatedAt
	lot.Features, lot.Images = nil, nil
	if err := c.ShouldBindJSON(lot); err != nil {
		badRequest(c, err.Error())
		return
	}
	lot.ID = id
	lot.CreatedAt = createdAt
	if err := lot.Validate(); err != nil {
		respondError(c, err)
		return
	}
	if err := h.gdb.UpdateLot(ctx, lot); err != nil {
		respondError(c, err)
		return
	}
	enqueue(ctx, h.index, search.KindLots, id, models.IndexActionUpsert)
	c.JSON(http.StatusOK, lot)
}

func (h *LotHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lot deleted"})
}

func (h *LotHandler) delete(ctx context.Context, id uint) error {
	if err := h.gdb.DeleteLot(ctx, id); err != nil {
		return err
	}
	enqueue(ctx, h.index, search.KindLots, id, models.IndexActionDelete)
	return nil
}

func (h *LotHandler) AddFeature(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req featureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	f := models.LotFeature{LotID: id, Feature: req.Feature, SortOrder: req.SortOrder}
	ctx := c.Request.Context()
	if err := h.gdb.AddLotFeature(ctx, &f); err != nil {
		respondError(c, err)
		return
	}
	enqueue(ctx, h.index, search.KindLots, id, models.IndexActionUpsert)
	c.JSON(http.StatusCreated, f)
}

func (h *LotHandler) DeleteFeature(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	featureID, ok := parseID(c, "featureId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.gdb.DeleteLotFeature(ctx, id, featureID); err != nil {
		respondError(c, err)
		return
	}
	enqueue(ctx, h.index, search.KindLots, id, models.IndexActionUpsert)
	c.JSON(http.StatusOK, gin.H{"message": "Feature deleted"})
}

type lotImageRequest struct {
	ImageURL  string              `json:"image_url" binding:"required"`
	ImageType models.LotImageType `json:"image_type"`
	Caption   string              `json:"caption"`
	SortOrder int                 `json:"sort_order"`
}

func (h *LotHandler) AddImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req lotImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.ImageType == "" {
		req.ImageType = models.LotImagePhoto
	}
	if !req.ImageType.IsValid() {
		respondError(c, &models.ValidationError{Field: "image_type", Message: "unknown image type " + string(req.ImageType)})
		return
	}
	img := models.LotImage{LotID: id, ImageURL: req.ImageURL, ImageType: req.ImageType, Caption: req.Caption, SortOrder: req.SortOrder}
	if err := h.gdb.AddLotImage(c.Request.Context(), &img); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, img)
}

func (h *LotHandler) DeleteImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	imageID, ok := parseID(c, "imageId")
	if !ok {
		return
	}
	if err := h.gdb.DeleteLotImage(c.Request.Context(), id, imageID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image deleted"})
}

func (h *LotHandler) Media(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	lot, err := h.gdb.GetLot(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	items := media.ForLot(lot)
	c.JSON(http.StatusOK, gin.H{
		"items": media.FilterByType(items, c.Query("type")),
		"types": media.Types(items),
	})
}

// Bulk deletes lots or updates status/featured on many lots
func (h *LotHandler) Bulk(c *gin.Context) {
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
		fields := bulkFields(req.Fields, "status", "is_featured")
		if len(fields) == 0 {
			badRequest(c, "no updatable fields given")
			return
		}
		if err := validateLotFields(fields); err != nil {
			respondError(c, err)
			return
		}
		verb = "Updated"
		fn = func(ctx context.Context, id uint) error {
			if err := h.gdb.UpdateLotFields(ctx, id, fields); err != nil {
				return err
			}
			enqueue(ctx, h.index, search.KindLots, id, models.IndexActionUpsert)
			return nil
		}
	default:
		badRequest(c, fmt.Sprintf("unknown bulk action %q", req.Action))
		return
	}

	log.Printf("Admin: bulk %s on %d lots", req.Action, len(req.IDs))
	c.JSON(http.StatusOK, listing.Bulk(c.Request.Context(), verb, req.IDs, listing.DefaultBulkConcurrency, fn))
}

func validateLotFields(fields map[string]interface{}) error {
	if v, ok := fields["status"]; ok {
		s, _ := v.(string)
		if !models.LotStatus(s).IsValid() {
			return &models.ValidationError{Field: "status", Message: "unknown status " + s}
		}
	}
	if v, ok := fields["is_featured"]; ok {
		if _, isBool := v.(bool); !isBool {
			return &models.ValidationError{Field: "is_featured", Message: "must be a boolean"}
		}
	}
	return nil
}
