package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/budget"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// CreateBudgetRequest represents the request body for creating a budget.
type CreateBudgetRequest struct {
	CategoryID string       `json:"category_id" binding:"required,uuid"`
	Month      string       `json:"month" binding:"required,iso_month"`
	Limit      money.Amount `json:"limit" binding:"required,gt=0" swaggertype:"number"`
}

// UpdateBudgetRequest represents the request body for updating a budget.
type UpdateBudgetRequest struct {
	CategoryID *string       `json:"category_id" binding:"omitempty,uuid"`
	Month      *string       `json:"month" binding:"omitempty,iso_month"`
	Limit      *money.Amount `json:"limit" binding:"omitempty,gt=0" swaggertype:"number"`
}

// ProgressResponse is one budget's progress with its status bucket.
type ProgressResponse struct {
	models.BudgetProgress
	Status budget.Status `json:"status"`
}

// CreateBudget handles POST /budgets
// @Summary     Create a budget
// @Description Create a spending limit for a category and month. One budget per category and month.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} map[string]models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Duplicate budget"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	subject, err := actor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	b, err := h.budgetService.CreateBudget(c.Request.Context(), req.CategoryID, req.Month, req.Limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(subject, "CREATE_BUDGET", "budget", b.ID, c.ClientIP(),
		map[string]interface{}{"category_id": b.CategoryID, "month": b.Month, "limit": b.Limit.String()})

	c.JSON(http.StatusCreated, gin.H{"budget": b})
}

// ListBudgets handles GET /budgets
// @Summary     List budgets
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month (YYYY-MM)"
// @Param       page query int false "Page number" default(1)
// @Param       page_size query int false "Items per page" default(20)
// @Success     200 {object} pagination.PageResponse[models.Budget] "Budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /budgets [get]
func (h *BudgetHandler) ListBudgets(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.budgetService.ListBudgets(c.Request.Context(), c.Query("month"), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudget handles GET /budgets/:id
// @Summary     Get a budget
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} map[string]models.Budget "Budget"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	b, err := h.budgetService.GetBudget(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": b})
}

// UpdateBudget handles PUT /budgets/:id
// @Summary     Update a budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Fields to update"
// @Success     200 {object} map[string]models.Budget "Budget updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Duplicate budget"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	subject, err := actor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	b, err := h.budgetService.UpdateBudget(c.Request.Context(), id, services.BudgetUpdate{
		CategoryID: req.CategoryID,
		Month:      req.Month,
		Limit:      req.Limit,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(subject, "UPDATE_BUDGET", "budget", b.ID, c.ClientIP(),
		map[string]interface{}{"category_id": b.CategoryID, "month": b.Month, "limit": b.Limit.String()})

	c.JSON(http.StatusOK, gin.H{"budget": b})
}

// DeleteBudget handles DELETE /budgets/:id
// @Summary     Delete a budget
// @Tags        budgets
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     204 "Budget deleted"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	subject, err := actor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(subject, "DELETE_BUDGET", "budget", id, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// GetProgress handles GET /budgets/progress
// @Summary     Budget progress
// @Description Spent, remaining and percentage for every budget of a month
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       month query string true "Month (YYYY-MM)"
// @Success     200 {object} map[string][]ProgressResponse "Progress"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /budgets/progress [get]
func (h *BudgetHandler) GetProgress(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "month is required"))
		return
	}

	progress, err := h.budgetService.GetProgress(c.Request.Context(), month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	out := make([]ProgressResponse, len(progress))
	for i, p := range progress {
		out[i] = ProgressResponse{BudgetProgress: p, Status: budget.StatusOf(p)}
	}

	c.JSON(http.StatusOK, gin.H{"month": month, "progress": out})
}

// GetSummary handles GET /summary
// @Summary     Month summary
// @Description Total active balance plus income and expenses of a month
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       month query string true "Month (YYYY-MM)"
// @Success     200 {object} budget.Summary "Summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /summary [get]
func (h *BudgetHandler) GetSummary(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "month is required"))
		return
	}

	summary, err := h.budgetService.GetSummary(c.Request.Context(), month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
