// Package handlers holds the gin handlers of the public and admin API.
package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"drake-homes/internal/brochure"
	"drake-homes/internal/database"
	"drake-homes/internal/models"
	"drake-homes/internal/search"
	"drake-homes/internal/selection"
	"drake-homes/internal/upload"

	"github.com/gin-gonic/gin"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

// IndexQueue records search index work for an entity. Writes succeed even
// when queueing fails; the nightly reindex catches up.
type IndexQueue interface {
	Enqueue(ctx context.Context, kind search.Kind, id uint, action string) error
}

type noopIndex struct{}

func (noopIndex) Enqueue(context.Context, search.Kind, uint, string) error { return nil }

func indexQueueOrNoop(q IndexQueue) IndexQueue {
	if q == nil {
		return noopIndex{}
	}
	return q
}

func enqueue(ctx context.Context, q IndexQueue, kind search.Kind, id uint, action string) {
	if err := q.Enqueue(ctx, kind, id, action); err != nil {
		log.Printf("Search: failed to queue %s %s %d: %v", action, kind, id, err)
	}
}

// respondError maps package errors to HTTP statuses
func respondError(c *gin.Context, err error) {
	var verr *models.ValidationError
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, database.ErrNotFound), errors.Is(err, upload.ErrEntryNotFound):
		status = http.StatusNotFound
	case errors.As(err, &verr),
		errors.Is(err, selection.ErrUnknownCategory),
		errors.Is(err, selection.ErrUnknownGroup),
		errors.Is(err, selection.ErrUnknownOption),
		errors.Is(err, selection.ErrStepOutOfRange),
		errors.Is(err, upload.ErrTooManyFiles),
		errors.Is(err, upload.ErrNotImage),
		errors.Is(err, upload.ErrFileTooLarge):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidTransition), errors.Is(err, upload.ErrEntryBusy):
		status = http.StatusConflict
	case errors.Is(err, upload.ErrQueueClosed):
		status = http.StatusGone
	case errors.Is(err, search.ErrDisabled), errors.Is(err, brochure.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func queryFloat(c *gin.Context, key string) *float64 {
	if s := c.Query(key); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return &v
		}
	}
	return nil
}

func queryInt(c *gin.Context, key string) *int {
	if s := c.Query(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return &v
		}
	}
	return nil
}

func queryBool(c *gin.Context, key string) *bool {
	if s := c.Query(key); s != "" {
		if v, err := strconv.ParseBool(s); err == nil {
			return &v
		}
	}
	return nil
}

func queryUint(c *gin.Context, key string) *uint {
	if s := c.Query(key); s != "" {
		if v, err := strconv.ParseUint(s, 10, 64); err == nil && v > 0 {
			id := uint(v)
			return &id
		}
	}
	return nil
}

// queryLimit reads ?limit= within (0, maxLimit], falling back to def
func queryLimit(c *gin.Context, def int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || limit <= 0 {
		return def
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// bulkRequest is the body of every /bulk endpoint
type bulkRequest struct {
	Action string                 `json:"action" binding:"required"`
	IDs    []uint                 `json:"ids" binding:"required"`
	Fields map[string]interface{} `json:"fields"`
}

// bulkFields keeps only the columns a bulk update may touch
func bulkFields(fields map[string]interface{}, allowed ...string) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for _, k := range allowed {
		if v, ok := fields[k]; ok {
			out[k] = v
		}
	}
	return out
}

func contentDisposition(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || r < 0x20 {
			return -1
		}
		return r
	}, name)
	return `inline; filename="` + name + `"`
}
