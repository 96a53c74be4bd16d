package handlers

import (
	"net/http"

	"drake-homes/internal/database"
	"drake-homes/internal/models"

	"github.com/gin-gonic/gin"
)

// CustomizationHandler serves /api/customization-categories and /api/customization-options
type CustomizationHandler struct {
	gdb *database.GormDB
}

func NewCustomizationHandler(gdb *database.GormDB) *CustomizationHandler {
	return &CustomizationHandler{gdb: gdb}
}

func (h *CustomizationHandler) ListCategories(c *gin.Context) {
	active := queryBool(c, "active")
	categories, err := h.gdb.ListCustomizationCategories(c.Request.Context(), active != nil && *active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CustomizationHandler) GetCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	category, err := h.gdb.GetCustomizationCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CustomizationHandler) CreateCategory(c *gin.Context) {
	category := models.CustomizationCategory{IsActive: true}
	if err := c.ShouldBindJSON(&category); err != nil {
		badRequest(c, err.Error())
		return
	}
	category.ID = 0
	category.Options = nil
	if category.Name == "" {
		respondError(c, &models.ValidationError{Field: "name", Message: "name is required"})
		return
	}
	if err := h.gdb.CreateCustomizationCategory(c.Request.Context(), &category); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *CustomizationHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	category, err := h.gdb.GetCustomizationCategory(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	createdAt := category.CreatedAt
	category.Options = nil
	if err := c.ShouldBindJSON(category); err != nil {
		badRequest(c, err.Error())
		return
	}
	category.ID = id
	category.CreatedAt = createdAt
	if category.Name == "" {
		respondError(c, &models.ValidationError{Field: "name", Message: "name is required"})
		return
	}
	if err := h.gdb.UpdateCustomizationCategory(ctx, category); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CustomizationHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.gdb.DeleteCustomizationCategory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

// ListOptions supports ?category_id=
func (h *CustomizationHandler) ListOptions(c *gin.Context) {
	options, err := h.gdb.ListCustomizationOptions(c.Request.Context(), queryUint(c, "category_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, options)
}

func (h *CustomizationHandler) GetOption(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	opt, err := h.gdb.GetCustomizationOption(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, opt)
}

func validateOption(opt *models.CustomizationOption) error {
	if opt.CategoryID == 0 {
		return &models.ValidationError{Field: "category_id", Message: "category is required"}
	}
	if opt.Name == "" {
		return &models.ValidationError{Field: "name", Message: "name is required"}
	}
	return nil
}

func (h *CustomizationHandler) CreateOption(c *gin.Context) {
	opt := models.CustomizationOption{IsActive: true}
	if err := c.ShouldBindJSON(&opt); err != nil {
		badRequest(c, err.Error())
		return
	}
	opt.ID = 0
	if err := validateOption(&opt); err != nil {
		respondError(c, err)
		return
	}
	if err := h.gdb.CreateCustomizationOption(c.Request.Context(), &opt); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, opt)
}

func (h *CustomizationHandler) UpdateOption(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	opt, err := h.gdb.GetCustomizationOption(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	createdAt := opt.CreatedAt
	if err := c.ShouldBindJSON(opt); err != nil {
		badRequest(c, err.Error())
		return
	}
	opt.ID = id
	opt.CreatedAt = createdAt
	if err := validateOption(opt); err != nil {
		respondError(c, err)
		return
	}
	if err := h.gdb.UpdateCustomizationOption(ctx, opt); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, opt)
}

func (h *CustomizationHandler) DeleteOption(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.gdb.DeleteCustomizationOption(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Option deleted"})
}
