package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"drake-homes/internal/brochure"
	"drake-homes/internal/database"
	"drake-homes/internal/history"
	"drake-homes/internal/pricing"
	"drake-homes/internal/ratelimit"
	"drake-homes/internal/scheduler"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles admin-related requests
type AdminHandler struct {
	gdb         *database.GormDB
	scheduler   *scheduler.Scheduler
	worker      *scheduler.IndexWorker
	brochure    *brochure.Service
	rateLimiter *ratelimit.RateLimiter
	history     *history.Service
}

// NewAdminHandler creates a new admin handler. worker, brochures and rl may be nil.
func NewAdminHandler(gdb *database.GormDB, sched *scheduler.Scheduler, worker *scheduler.IndexWorker, brochures *brochure.Service, rl *ratelimit.RateLimiter) *AdminHandler {
	return &AdminHandler{
		gdb:         gdb,
		scheduler:   sched,
		worker:      worker,
		brochure:    brochures,
		rateLimiter: rl,
		history:     history.NewService(gdb.DB()),
	}
}

// GetStats returns system statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	counts, err := h.gdb.Stats(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	stats := gin.H{"catalogue": counts}

	deleteStats, err := h.scheduler.Cleanup().GetDeleteStats(ctx, h.scheduler.CleanupConfig(true))
	if err != nil {
		log.Printf("Admin: Failed to get delete stats: %v", err)
	} else {
		stats["deletions"] = deleteStats
	}

	if h.worker != nil {
		queue, err := h.worker.GetQueueStats(ctx)
		if err != nil {
			log.Printf("Admin: Failed to get index queue stats: %v", err)
		} else {
			stats["search_queue"] = queue
		}
	}

	if st := h.brochure.Status(); st != nil {
		stats["pdf_renderer"] = st
	}

	if next := h.scheduler.NextRun(); !next.IsZero() {
		stats["next_maintenance"] = next
	}

	c.JSON(http.StatusOK, stats)
}

// RunCleanup purges stale drafts and closed configurations. Dry run is the default.
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	var req struct {
		DraftRetentionDays  int   `json:"draft_retention_days"`
		ClosedRetentionDays int   `json:"closed_retention_days"`
		MaxDeletionCount    int   `json:"max_deletion_count"`
		DryRun              *bool `json:"dry_run"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	dryRun := req.DryRun == nil || *req.DryRun
	cfg := h.scheduler.CleanupConfig(dryRun)
	if req.DraftRetentionDays > 0 {
		cfg.DraftRetentionDays = req.DraftRetentionDays
	}
	if req.ClosedRetentionDays > 0 {
		cfg.ClosedRetentionDays = req.ClosedRetentionDays
	}
	if req.MaxDeletionCount > 0 {
		cfg.MaxDeletionCount = req.MaxDeletionCount
	}

	log.Printf("Admin: Running cleanup (drafts: %d days, closed: %d days, max: %d, dry-run: %v)",
		cfg.DraftRetentionDays, cfg.ClosedRetentionDays, cfg.MaxDeletionCount, cfg.DryRun)

	result, err := h.scheduler.RunCleanupWith(c.Request.Context(), cfg)
	if err != nil {
		log.Printf("Admin: Cleanup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("Admin: Cleanup completed: %d/%d deleted (dry-run: %v)",
		result.DeletedCount, result.TargetCount, result.DryRun)
	c.JSON(http.StatusOK, result)
}

// GetDeleteLogs returns recent delete log entries
func (h *AdminHandler) GetDeleteLogs(c *gin.Context) {
	logs, err := h.scheduler.Cleanup().GetRecentDeleteLogs(c.Request.Context(), queryLimit(c, defaultLimit))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}

// GetRecentChanges returns recent property changes, optionally of one ?type=
func (h *AdminHandler) GetRecentChanges(c *gin.Context) {
	changes, err := h.history.GetRecentChanges(c.Request.Context(), c.Query("type"), queryLimit(c, defaultLimit))
	if err != nil {
		respondError(c, err)
		return
	}

	described := make([]gin.H, len(changes))
	for i, ch := range changes {
		described[i] = gin.H{"change": ch, "description": history.Describe(ch)}
	}
	c.JSON(http.StatusOK, gin.H{"changes": described, "count": len(changes)})
}

// Reindex rebuilds every search index in the background
func (h *AdminHandler) Reindex(c *gin.Context) {
	log.Println("Admin: Manual reindex requested")

	go func() {
		start := time.Now()
		if err := h.scheduler.RunReindex(context.Background()); err != nil {
			log.Printf("Admin: Manual reindex failed: %v", err)
			return
		}
		log.Printf("Admin: Manual reindex completed in %s", time.Since(start).Round(time.Millisecond))
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Reindex started",
		"status":  "running",
	})
}

type priceRange struct {
	RangeLabel string  `json:"range_label"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Count      int     `json:"count"`
}

// GetPriceDistribution buckets listed properties by parsed price.
// Unparseable prices are counted separately.
func (h *AdminHandler) GetPriceDistribution(c *gin.Context) {
	properties, err := h.gdb.ListProperties(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	ranges := []priceRange{
		{Min: 0, Max: 300000},
		{Min: 300000, Max: 400000},
		{Min: 400000, Max: 500000},
		{Min: 500000, Max: 750000},
		{Min: 750000, Max: 0},
	}
	for i := range ranges {
		if ranges[i].Max == 0 {
			ranges[i].RangeLabel = pricing.Format(ranges[i].Min) + "+"
		} else {
			ranges[i].RangeLabel = pricing.Format(ranges[i].Min) + " - " + pricing.Format(ranges[i].Max)
		}
	}

	unpriced := 0
	for _, p := range properties {
		v, ok := pricing.Parse(p.Price)
		if !ok {
			unpriced++
			continue
		}
		for i := range ranges {
			if v >= ranges[i].Min && (ranges[i].Max == 0 || v < ranges[i].Max) {
				ranges[i].Count++
				break
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"price_distribution": ranges, "unpriced": unpriced})
}

// GetRateLimitStats reports the caller's own rate limit window
func (h *AdminHandler) GetRateLimitStats(c *gin.Context) {
	if h.rateLimiter == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"client":  h.rateLimiter.GetStats(c.ClientIP()),
		"clients": h.rateLimiter.Clients(),
	})
}
