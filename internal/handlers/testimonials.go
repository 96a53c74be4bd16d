package handlers

import (
	"net/http"

	"drake-homes/internal/database"
	"drake-homes/internal/models"

	"github.com/gin-gonic/gin"
)

// TestimonialHandler serves /api/testimonials
type TestimonialHandler struct {
	gdb *database.GormDB
}

func NewTestimonialHandler(gdb *database.GormDB) *TestimonialHandler {
	return &TestimonialHandler{gdb: gdb}
}

// List supports ?active= and ?featured=
func (h *TestimonialHandler) List(c *gin.Context) {
	testimonials, err := h.gdb.ListTestimonials(c.Request.Context(), database.TestimonialFilter{
		Active:   queryBool(c, "active"),
		Featured: queryBool(c, "featured"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, testimonials)
}

func (h *TestimonialHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.gdb.GetTestimonial(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TestimonialHandler) Create(c *gin.Context) {
	t := models.Testimonial{IsActive: true, Rating: 5}
	if err := c.ShouldBindJSON(&t); err != nil {
		badRequest(c, err.Error())
		return
	}
	t.ID = 0
	if err := t.Validate(); err != nil {
		respondError(c, err)
		return
	}
	if err := h.gdb.CreateTestimonial(c.Request.Context(), &t); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *TestimonialHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	t, err := h.gdb.GetTestimonial(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	createdAt := t.CreatedAt
	if err := c.ShouldBindJSON(t); err != nil {
		badRequest(c, err.Error())
		return
	}
	t.ID = id
	t.CreatedAt = createdAt
	if err := t.Validate(); err != nil {
		respondError(c, err)
		return
	}
	if err := h.gdb.UpdateTestimonial(ctx, t); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TestimonialHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.gdb.DeleteTestimonial(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Testimonial deleted"})
}
