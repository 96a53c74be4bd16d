package handlers

import (
	"net/http"

	"drake-homes/internal/database"
	"drake-homes/internal/models"

	"github.com/gin-gonic/gin"
)

// GalleryHandler serves /api/galleries and the image rows under /api/gallery
type GalleryHandler struct {
	gdb *database.GormDB
}

func NewGalleryHandler(gdb *database.GormDB) *GalleryHandler {
	return &GalleryHandler{gdb: gdb}
}

func (h *GalleryHandler) ListGalleries(c *gin.Context) {
	galleries, err := h.gdb.ListGalleries(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, galleries)
}

func (h *GalleryHandler) GetGallery(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	g, err := h.gdb.GetGallery(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *GalleryHandler) CreateGallery(c *gin.Context) {
	var g models.Gallery
	if err := c.ShouldBindJSON(&g); err != nil {
		badRequest(c, err.Error())
		return
	}
	g.ID = 0
	if g.Name == "" {
		respondError(c, &models.ValidationError{Field: "name", Message: "name is required"})
		return
	}
	if err := h.gdb.CreateGallery(c.Request.Context(), &g); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (h *GalleryHandler) UpdateGallery(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	g, err := h.gdb.GetGallery(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	createdAt := g.CreatedAt
	g.Images = nil
	if err := c.ShouldBindJSON(g); err != nil {
		badRequest(c, err.Error())
		return
	}
	g.ID = id
	g.CreatedAt = createdAt
	if g.Name == "" {
		respondError(c, &models.ValidationError{Field: "name", Message: "name is required"})
		return
	}
	if err := h.gdb.UpdateGallery(ctx, g); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *GalleryHandler) DeleteGallery(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.gdb.DeleteGallery(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Gallery deleted"})
}

// ListImages supports ?gallery_id=, ?featured= and ?category=
func (h *GalleryHandler) ListImages(c *gin.Context) {
	images, err := h.gdb.ListGalleryImages(c.Request.Context(), database.GalleryImageFilter{
		GalleryID: queryUint(c, "gallery_id"),
		Featured:  queryBool(c, "featured"),
		Category:  c.Query("category"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, images)
}

func (h *GalleryHandler) GetImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	img, err := h.gdb.GetGalleryImage(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, img)
}

func validateGalleryImage(img *models.GalleryImage) error {
	if img.GalleryID == 0 {
		return &models.ValidationError{Field: "gallery_id", Message: "gallery is required"}
	}
	if img.ImageURL == "" {
		return &models.ValidationError{Field: "image_url", Message: "image url is required"}
	}
	return nil
}

func (h *GalleryHandler) CreateImage(c *gin.Context) {
	var img models.GalleryImage
	if err := c.ShouldBindJSON(&img); err != nil {
		badRequest(c, err.Error())
		return
	}
	img.ID = 0
	if err := validateGalleryImage(&img); err != nil {
		respondError(c, err)
		return
	}
	if err := h.gdb.CreateGalleryImage(c.Request.Context(), &img); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, img)
}

func (h *GalleryHandler) UpdateImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	img, err := h.gdb.GetGalleryImage(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	createdAt := img.CreatedAt
	if err := c.ShouldBindJSON(img); err != nil {
		badRequest(c, err.Error())
		return
	}
	img.ID = id
	img.CreatedAt = createdAt
	if err := validateGalleryImage(img); err != nil {
		respondError(c, err)
		return
	}
	if err := h.gdb.UpdateGalleryImage(ctx, img); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, img)
}

func (h *GalleryHandler) DeleteImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.gdb.DeleteGalleryImage(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image deleted"})
}
