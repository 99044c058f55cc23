package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// OperationHandler handles operation-related requests
type OperationHandler struct {
	operationService services.OperationServicer
	auditService     services.AuditServicer
}

// NewOperationHandler creates a new OperationHandler
func NewOperationHandler(operationService services.OperationServicer, auditService services.AuditServicer) *OperationHandler {
	return &OperationHandler{operationService: operationService, auditService: auditService}
}

// OperationRequest represents the request body for creating or replacing an operation.
// Amount is a positive decimal in major units.
type OperationRequest struct {
	Type        models.OperationType `json:"type" binding:"required,operation_type"`
	Amount      money.Amount         `json:"amount" binding:"required,gt=0" swaggertype:"number"`
	AccountID   string               `json:"account_id" binding:"required,uuid"`
	CategoryID  *string              `json:"category_id" binding:"omitempty,uuid"`
	ToAccountID *string              `json:"to_account_id" binding:"omitempty,uuid"`
	Date        string               `json:"date" binding:"required,iso_day"`
	Note        string               `json:"note" binding:"max=500"`
}

func (r OperationRequest) input() services.OperationInput {
	return services.OperationInput{
		Type:        r.Type,
		Amount:      r.Amount,
		AccountID:   r.AccountID,
		CategoryID:  r.CategoryID,
		ToAccountID: r.ToAccountID,
		Date:        r.Date,
		Note:        r.Note,
	}
}

func (r OperationRequest) changes() map[string]interface{} {
	changes := map[string]interface{}{
		"type":       r.Type,
		"amount":     r.Amount.String(),
		"account_id": r.AccountID,
		"date":       r.Date,
	}
	if r.CategoryID != nil {
		changes["category_id"] = *r.CategoryID
	}
	if r.ToAccountID != nil {
		changes["to_account_id"] = *r.ToAccountID
	}
	return changes
}

// CreateOperation records an income, expense or transfer
// @Summary     Create an operation
// @Description Record an operation and apply it to the referenced account balances
// @Tags        operations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body OperationRequest true "Operation details"
// @Success     201 {object} map[string]models.Operation "Operation created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     422 {object} ErrorResponse "Account reference does not resolve"
// @Router      /operations [post]
func (h *OperationHandler) CreateOperation(c *gin.Context) {
	subject, err := actor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req OperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	op, err := h.operationService.CreateOperation(c.Request.Context(), req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(subject, "CREATE_OPERATION", "operation", op.ID, c.ClientIP(), req.changes())

	c.JSON(http.StatusCreated, gin.H{"operation": op})
}

// ListOperations returns a filtered, paginated list of operations
// @Summary     List operations
// @Description List operations newest first, optionally filtered
// @Tags        operations
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month (YYYY-MM)"
// @Param       from_date query string false "First day (YYYY-MM-DD)"
// @Param       to_date query string false "Last day (YYYY-MM-DD)"
// @Param       type query string false "Operation type (income, expense, transfer)"
// @Param       account_id query string false "Source or destination account"
// @Param       category_id query string false "Category"
// @Param       page query int false "Page number" default(1)
// @Param       page_size query int false "Items per page" default(20)
// @Success     200 {object} pagination.PageResponse[models.Operation] "Operations"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /operations [get]
func (h *OperationHandler) ListOperations(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseOperationFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.operationService.ListOperations(c.Request.Context(), filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseOperationFilter(c *gin.Context) (services.OperationFilter, error) {
	filter := services.OperationFilter{
		Month:      c.Query("month"),
		FromDate:   c.Query("from_date"),
		ToDate:     c.Query("to_date"),
		AccountID:  optionalQuery(c, "account_id"),
		CategoryID: optionalQuery(c, "category_id"),
	}

	if v := c.Query("type"); v != "" {
		opType := models.OperationType(v)
		if !opType.Valid() {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid type")
		}
		filter.Type = &opType
	}
	return filter, nil
}

// GetOperation returns an operation by id
// @Summary     Get an operation
// @Tags        operations
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Operation ID"
// @Success     200 {object} map[string]models.Operation "Operation"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Operation not found"
// @Router      /operations/{id} [get]
func (h *OperationHandler) GetOperation(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	op, err := h.operationService.GetOperation(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"operation": op})
}

// UpdateOperation replaces an operation
// @Summary     Update an operation
// @Description Replace an operation. The old effect is reversed and the new one applied atomically.
// @Tags        operations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Operation ID"
// @Param       request body OperationRequest true "Operation details"
// @Success     200 {object} map[string]models.Operation "Operation updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Operation not found"
// @Failure     422 {object} ErrorResponse "Account reference does not resolve"
// @Router      /operations/{id} [put]
func (h *OperationHandler) UpdateOperation(c *gin.Context) {
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

	var req OperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	op, err := h.operationService.UpdateOperation(c.Request.Context(), id, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(subject, "UPDATE_OPERATION", "operation", op.ID, c.ClientIP(), req.changes())

	c.JSON(http.StatusOK, gin.H{"operation": op})
}

// DeleteOperation removes an operation and reverses its effect
// @Summary     Delete an operation
// @Tags        operations
// @Security    BearerAuth
// @Param       id path string true "Operation ID"
// @Success     204 "Operation deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Operation not found"
// @Router      /operations/{id} [delete]
func (h *OperationHandler) DeleteOperation(c *gin.Context) {
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

	if err := h.operationService.DeleteOperation(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(subject, "DELETE_OPERATION", "operation", id, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}
