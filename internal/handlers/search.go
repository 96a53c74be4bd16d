package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"drake-homes/internal/search"

	"github.com/gin-gonic/gin"
)

// SearchHandler serves /api/search
type SearchHandler struct {
	engine search.Engine
}

func NewSearchHandler(engine search.Engine) *SearchHandler {
	if engine == nil {
		engine = search.Disabled{}
	}
	return &SearchHandler{engine: engine}
}

// Search queries one index chosen by ?type=properties|plans|lots
func (h *SearchHandler) Search(c *gin.Context) {
	kind, err := search.ParseKind(c.Query("type"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	params := search.FilterParams{
		Query:    c.Query("q"),
		Kind:     kind,
		Status:   c.Query("status"),
		MinPrice: queryFloat(c, "min_price"),
		MaxPrice: queryFloat(c, "max_price"),
		Beds:     queryInt(c, "beds"),
		Featured: queryBool(c, "featured"),
		Sort:     c.Query("sort"),
		Limit:    int64(queryLimit(c, 20)),
	}
	if offset, err := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64); err == nil && offset > 0 {
		params.Offset = offset
	}

	start := time.Now()
	result, err := h.engine.Search(params)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Printf("[Search API] type=%s duration_ms=%d total=%d q=%q", kind, time.Since(start).Milliseconds(), result.TotalHits, params.Query)
	c.JSON(http.StatusOK, result)
}
