package handlers

import (
	"context"
	"errors"
	"net/http"

	"drake-homes/internal/database"
	"drake-homes/internal/models"

	"github.com/gin-gonic/gin"
)

// ConfigurationHandler serves /api/configurations. Prices are always
// recomputed from the plan and the chosen options; posted totals are ignored.
type ConfigurationHandler struct {
	gdb *database.GormDB
}

func NewConfigurationHandler(gdb *database.GormDB) *ConfigurationHandler {
	return &ConfigurationHandler{gdb: gdb}
}

type configurationRequest struct {
	PlanID        *uint                       `json:"plan_id"`
	CustomerName  *string                     `json:"customer_name"`
	CustomerEmail *string                     `json:"customer_email"`
	CustomerPhone *string                     `json:"customer_phone"`
	Notes         *string                     `json:"notes"`
	Status        *models.ConfigurationStatus `json:"status"`
	OptionIDs     []uint                      `json:"option_ids"`
}

func (r *configurationRequest) apply(cfg *models.Configuration) {
	if r.CustomerName != nil {
		cfg.CustomerName = *r.CustomerName
	}
	if r.CustomerEmail != nil {
		cfg.CustomerEmail = *r.CustomerEmail
	}
	if r.CustomerPhone != nil {
		cfg.CustomerPhone = *r.CustomerPhone
	}
	if r.Notes != nil {
		cfg.Notes = *r.Notes
	}
}

func (h *ConfigurationHandler) List(c *gin.Context) {
	configs, err := h.gdb.ListConfigurations(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, configs)
}

func (h *ConfigurationHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	cfg, err := h.gdb.GetConfiguration(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *ConfigurationHandler) Create(c *gin.Context) {
	var req configurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.PlanID == nil || *req.PlanID == 0 {
		respondError(c, &models.ValidationError{Field: "plan_id", Message: "plan is required"})
		return
	}

	cfg := models.Configuration{PlanID: *req.PlanID, Status: models.ConfigurationStatusDraft}
	req.apply(&cfg)
	if req.Status != nil {
		if err := cfg.TransitionTo(*req.Status); err != nil {
			respondError(c, err)
			return
		}
	}

	ctx := c.Request.Context()
	if err := h.price(ctx, &cfg, req.OptionIDs); err != nil {
		respondError(c, err)
		return
	}
	if err := h.gdb.CreateConfiguration(ctx, &cfg); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

// Update applies the given fields. A status change must follow
// draft -> submitted -> contacted -> closed.
func (h *ConfigurationHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req configurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	cfg, err := h.gdb.GetConfiguration(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Status != nil {
		if err := cfg.TransitionTo(*req.Status); err != nil {
			respondError(c, err)
			return
		}
	}
	req.apply(cfg)
	if req.PlanID != nil {
		cfg.PlanID = *req.PlanID
	}
	cfg.Plan = nil

	ids := req.OptionIDs
	if ids == nil {
		for _, opt := range cfg.Options {
			ids = append(ids, opt.ID)
		}
	}
	if err := h.price(ctx, cfg, ids); err != nil {
		respondError(c, err)
		return
	}
	if err := h.gdb.UpdateConfiguration(ctx, cfg); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// price loads the plan and options and recomputes the totals
func (h *ConfigurationHandler) price(ctx context.Context, cfg *models.Configuration, optionIDs []uint) error {
	plan, err := h.gdb.GetPlan(ctx, cfg.PlanID)
	if errors.Is(err, database.ErrNotFound) {
		return &models.ValidationError{Field: "plan_id", Message: "plan not found"}
	}
	if err != nil {
		return err
	}
	options, err := h.gdb.FindCustomizationOptions(ctx, optionIDs)
	if errors.Is(err, database.ErrNotFound) {
		return &models.ValidationError{Field: "option_ids", Message: "unknown customization option"}
	}
	if err != nil {
		return err
	}
	cfg.Options = options
	cfg.RecomputeTotals(plan.Price)
	return nil
}

func (h *ConfigurationHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.gdb.DeleteConfiguration(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Configuration deleted"})
}
