package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"drake-homes/internal/brochure"
	"drake-homes/internal/database"
	"drake-homes/internal/models"
	"drake-homes/internal/selection"

	"github.com/gin-gonic/gin"
)

// SelectionBookHandler serves /api/selection-books. Every request rebuilds
// the book from the schema and the stored selections, mutates it through
// the selection package and saves the whole tree back.
type SelectionBookHandler struct {
	gdb      *database.GormDB
	schema   *selection.Schema
	brochure *brochure.Service
	now      func() time.Time
}

func NewSelectionBookHandler(gdb *database.GormDB, schema *selection.Schema, brochures *brochure.Service) *SelectionBookHandler {
	return &SelectionBookHandler{gdb: gdb, schema: schema, brochure: brochures, now: time.Now}
}

type selectionBookRequest struct {
	selection.Customer
	PlanID     *uint                       `json:"plan_id"`
	Notes      string                      `json:"notes"`
	Selections selection.Saved             `json:"selections"`
	Status     *models.SelectionBookStatus `json:"status"`
}

// bookResponse is what every single-book endpoint returns
type bookResponse struct {
	Book       *models.SelectionBook  `json:"book"`
	Categories []selection.Category   `json:"categories"`
	Ignored    *selection.MergeReport `json:"ignored,omitempty"`
}

func newBookResponse(rec *models.SelectionBook, d *selection.Draft, report selection.MergeReport) bookResponse {
	resp := bookResponse{Book: rec, Categories: d.Book.Categories()}
	if !report.Empty() {
		resp.Ignored = &report
	}
	return resp
}

func (h *SelectionBookHandler) List(c *gin.Context) {
	books, err := h.gdb.ListSelectionBooks(c.Request.Context(), database.SelectionBookFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

// Schema returns the default category tree a new book starts from
func (h *SelectionBookHandler) Schema(c *gin.Context) {
	c.JSON(http.StatusOK, h.schema)
}

func (h *SelectionBookHandler) Create(c *gin.Context) {
	var req selectionBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	d := selection.NewDraft(h.schema)
	d.Customer = req.Customer
	if req.PlanID != nil {
		d.PlanID = req.PlanID
	}
	d.Notes = req.Notes
	var report selection.MergeReport
	if req.Selections != nil {
		report = d.Book.Merge(req.Selections)
	}
	if req.Status != nil {
		if err := transitionDraft(d, *req.Status); err != nil {
			respondError(c, err)
			return
		}
	}

	rec, err := d.Save(c.Request.Context(), h.gdb)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newBookResponse(rec, d, report))
}

func (h *SelectionBookHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rec, d, report, err := h.load(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookResponse(rec, d, report))
}

// Update replaces the customer block and notes. Posted selections replace
// the stored tree and a posted plan_id replaces the plan; when either is
// absent the stored value is kept.
func (h *SelectionBookHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req selectionBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	_, d, report, err := h.load(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Selections != nil {
		d.Book = selection.NewBook(h.schema)
		report = d.Book.Merge(req.Selections)
	}
	d.Customer = req.Customer
	if req.PlanID != nil {
		d.PlanID = req.PlanID
	}
	d.Notes = req.Notes
	if req.Status != nil {
		if err := transitionDraft(d, *req.Status); err != nil {
			respondError(c, err)
			return
		}
	}

	rec, err := d.Save(ctx, h.gdb)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookResponse(rec, d, report))
}

func (h *SelectionBookHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.gdb.DeleteSelectionBook(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Selection book deleted"})
}

type optionChangeRequest struct {
	CategoryID string `json:"category_id" binding:"required"`
	GroupID    string `json:"group_id" binding:"required"`
	OptionID   string `json:"option_id" binding:"required"`
	Value      bool   `json:"value"`
}

// ChangeOption checks or unchecks one option and saves the book
func (h *SelectionBookHandler) ChangeOption(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req optionChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.mutate(c, id, req.CategoryID, func(b *selection.Book) error {
		return b.HandleOptionChange(req.CategoryID, req.GroupID, req.OptionID, req.Value)
	})
}

type textChangeRequest struct {
	CategoryID string `json:"category_id" binding:"required"`
	GroupID    string `json:"group_id" binding:"required"`
	OptionID   string `json:"option_id"`
	Value      string `json:"value"`
}

// ChangeText sets a group's or an option's free text and saves the book
func (h *SelectionBookHandler) ChangeText(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req textChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.mutate(c, id, req.CategoryID, func(b *selection.Book) error {
		return b.HandleTextChange(req.CategoryID, req.GroupID, req.OptionID, req.Value)
	})
}

func (h *SelectionBookHandler) mutate(c *gin.Context, id uint, categoryID string, change func(*selection.Book) error) {
	ctx := c.Request.Context()
	_, d, _, err := h.load(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := change(d.Book); err != nil {
		respondError(c, err)
		return
	}
	rec, err := d.Save(ctx, h.gdb)
	if err != nil {
		respondError(c, err)
		return
	}
	category, err := d.Book.Category(categoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	complete, _ := d.Book.CategoryComplete(categoryID)
	c.JSON(http.StatusOK, gin.H{
		"category":             category,
		"complete":             complete,
		"total_upgrades_price": rec.TotalUpgradesPrice,
	})
}

// Steps lists the wizard steps; ?step= selects the current one
func (h *SelectionBookHandler) Steps(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	_, d, _, err := h.load(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	steps := d.Book.Steps()
	w := selection.NewWizard(steps)
	if step := queryInt(c, "step"); step != nil {
		if err := w.GoTo(*step); err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"steps": steps, "current": w.Current(), "total": w.Len()})
}

func (h *SelectionBookHandler) Summary(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rec, d, _, err := h.load(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"book_id":  rec.ID,
		"customer": d.Customer,
		"notes":    d.Notes,
		"summary":  d.Book.Summary(),
	})
}

type statusRequest struct {
	Status models.SelectionBookStatus `json:"status" binding:"required"`
}

func (h *SelectionBookHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()
	rec, err := h.gdb.GetSelectionBook(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := rec.TransitionTo(req.Status); err != nil {
		respondError(c, err)
		return
	}
	if err := h.gdb.UpdateSelectionBook(ctx, rec); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Print renders the book for signing, as PDF or as HTML when the renderer is down
func (h *SelectionBookHandler) Print(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	_, d, _, err := h.load(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	var planTitle string
	if d.PlanID != nil {
		if plan, err := h.gdb.GetPlan(ctx, *d.PlanID); err == nil {
			planTitle = plan.Title
		}
	}
	page, err := brochure.SelectionBookHTML(d, planTitle, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	servePDF(c, h.brochure, page, fmt.Sprintf("selection-book-%d.pdf", id))
}

func (h *SelectionBookHandler) load(ctx context.Context, id uint) (*models.SelectionBook, *selection.Draft, selection.MergeReport, error) {
	rec, err := h.gdb.GetSelectionBook(ctx, id)
	if err != nil {
		return nil, nil, selection.MergeReport{}, err
	}
	d, report, err := selection.LoadDraft(h.schema, rec)
	if err != nil {
		return nil, nil, selection.MergeReport{}, err
	}
	return rec, d, report, nil
}

func transitionDraft(d *selection.Draft, next models.SelectionBookStatus) error {
	check := models.SelectionBook{Status: d.Status}
	if err := check.TransitionTo(next); err != nil {
		return err
	}
	d.Status = check.Status
	return nil
}
