package handlers

import (
	"net/http"

	"drake-homes/internal/database"
	"drake-homes/internal/media"
	"drake-homes/internal/models"
	"drake-homes/internal/search"

	"github.com/gin-gonic/gin"
)

// PlanHandler serves /api/plans
type PlanHandler struct {
	gdb   *database.GormDB
	index IndexQueue
}

func NewPlanHandler(gdb *database.GormDB, index IndexQueue) *PlanHandler {
	return &PlanHandler{gdb: gdb, index: indexQueueOrNoop(index)}
}

// List returns plans by price; ?active=true hides inactive plans
func (h *PlanHandler) List(c *gin.Context) {
	active := queryBool(c, "active")
	plans, err := h.gdb.ListPlans(c.Request.Context(), active != nil && *active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans, "total": len(plans)})
}

func (h *PlanHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	plan, err := h.gdb.GetPlan(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *PlanHandler) Create(c *gin.Context) {
	plan := models.Plan{IsActive: true, Floors: 1}
	if err := c.ShouldBindJSON(&plan); err != nil {
		badRequest(c, err.Error())
		return
	}
	plan.ID = 0
	if err := plan.Validate(); err != nil {
		respondError(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := h.gdb.CreatePlan(ctx, &plan); err != nil {
		respondError(c, err)
		return
	}
	enqueue(ctx, h.index, search.KindPlans, plan.ID, models.IndexActionUpsert)
	c.JSON(http.StatusCreated, plan)
}

func (h *PlanHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	plan, err := h.gdb.GetPlan(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	createdAt := plan.CreatedAt
	plan.Features, plan.Images, plan.Documents = nil, nil, nil
	if err := c.ShouldBindJSON(plan); err != nil {
		badRequest(c, err.Error())
		return
	}
	plan.ID = id
	plan.CreatedAt = createdAt
	if err := plan.Validate(); err != nil {
		respondError(c, err)
		return
	}
	if err := h.gdb.UpdatePlan(ctx, plan); err != nil {
		respondError(c, err)
		return
	}
	enqueue(ctx, h.index, search.KindPlans, id, models.IndexActionUpsert)
	c.JSON(http.StatusOK, plan)
}

func (h *PlanHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.gdb.DeletePlan(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	enqueue(ctx, h.index, search.KindPlans, id, models.IndexActionDelete)
	c.JSON(http.StatusOK, gin.H{"message": "Plan deleted"})
}

type featureRequest struct {
	Feature   string `json:"feature" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

func (h *PlanHandler) AddFeature(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req featureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	f := models.PlanFeature{PlanID: id, Feature: req.Feature, SortOrder: req.SortOrder}
	ctx := c.Request.Context()
	if err := h.gdb.AddPlanFeature(ctx, &f); err != nil {
		respondError(c, err)
		return
	}
	enqueue(ctx, h.index, search.KindPlans, id, models.IndexActionUpsert)
	c.JSON(http.StatusCreated, f)
}

func (h *PlanHandler) DeleteFeature(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	featureID, ok := parseID(c, "featureId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.gdb.DeletePlanFeature(ctx, id, featureID); err != nil {
		respondError(c, err)
		return
	}
	enqueue(ctx, h.index, search.KindPlans, id, models.IndexActionUpsert)
	c.JSON(http.StatusOK, gin.H{"message": "Feature deleted"})
}

type planImageRequest struct {
	ImageURL  string               `json:"image_url" binding:"required"`
	ImageType models.PlanImageType `json:"image_type"`
	Caption   string               `json:"caption"`
	SortOrder int                  `json:"sort_order"`
}

func (h *PlanHandler) AddImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req planImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.ImageType == "" {
		req.ImageType = models.PlanImagePhoto
	}
	if !req.ImageType.IsValid() {
		respondError(c, &models.ValidationError{Field: "image_type", Message: "unknown image type " + string(req.ImageType)})
		return
	}
	img := models.PlanImage{PlanID: id, ImageURL: req.ImageURL, ImageType: req.ImageType, Caption: req.Caption, SortOrder: req.SortOrder}
	if err := h.gdb.AddPlanImage(c.Request.Context(), &img); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, img)
}

func (h *PlanHandler) DeleteImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	imageID, ok := parseID(c, "imageId")
	if !ok {
		return
	}
	if err := h.gdb.DeletePlanImage(c.Request.Context(), id, imageID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image deleted"})
}

type planDocumentRequest struct {
	Title        string                  `json:"title" binding:"required"`
	DocumentType models.PlanDocumentType `json:"document_type" binding:"required"`
	FileURL      string                  `json:"file_url" binding:"required"`
	FileType     string                  `json:"file_type"`
	SortOrder    int                     `json:"sort_order"`
}

func (h *PlanHandler) AddDocument(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req planDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !req.DocumentType.IsValid() {
		respondError(c, &models.ValidationError{Field: "document_type", Message: "unknown document type " + string(req.DocumentType)})
		return
	}
	doc := models.PlanDocument{
		PlanID:       id,
		Title:        req.Title,
		DocumentType: req.DocumentType,
		FileURL:      req.FileURL,
		FileType:     req.FileType,
		SortOrder:    req.SortOrder,
	}
	if err := h.gdb.AddPlanDocument(c.Request.Context(), &doc); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *PlanHandler) DeleteDocument(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	docID, ok := parseID(c, "documentId")
	if !ok {
		return
	}
	if err := h.gdb.DeletePlanDocument(c.Request.Context(), id, docID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}

func (h *PlanHandler) Media(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	plan, err := h.gdb.GetPlan(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	items := media.ForPlan(plan)
	c.JSON(http.StatusOK, gin.H{
		"items": media.FilterByType(items, c.Query("type")),
		"types": media.Types(items),
	})
}

// Configurator returns the plan with the active customization categories
// a configuration can pick from
func (h *PlanHandler) Configurator(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	plan, err := h.gdb.GetPlan(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	categories, err := h.gdb.ListCustomizationCategories(ctx, true)
	if err != nil {
		respondError(c, err)
		return
	}
	defaults := models.Configuration{PlanID: plan.ID}
	for _, cat := range categories {
		for _, opt := range cat.Options {
			if opt.IsDefault {
				defaults.Options = append(defaults.Options, opt)
			}
		}
	}
	defaults.RecomputeTotals(plan.Price)
	c.JSON(http.StatusOK, gin.H{
		"plan":       plan,
		"categories": categories,
		"defaults":   defaults,
	})
}
