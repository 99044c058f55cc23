package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/exchange"
	"fintrack/internal/services"
)

const maxImportSize = 32 << 20

// ExchangeHandler serves export, import and default seeding.
type ExchangeHandler struct {
	exchangeService services.ExchangeServicer
	auditService    services.AuditServicer
}

// NewExchangeHandler creates a new ExchangeHandler.
func NewExchangeHandler(exchangeService services.ExchangeServicer, auditService services.AuditServicer) *ExchangeHandler {
	return &ExchangeHandler{exchangeService: exchangeService, auditService: auditService}
}

// Export handles GET /export
// @Summary     Export the ledger
// @Description Download every account, category, operation and budget as one JSON document
// @Tags        exchange
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} exchange.Document "Ledger document"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /export [get]
func (h *ExchangeHandler) Export(c *gin.Context) {
	doc, err := h.exchangeService.Export(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="fintrack-export.json"`)
	c.JSON(http.StatusOK, doc)
}

// Import handles POST /import
// @Summary     Import a ledger
// @Description Replace the whole ledger with the uploaded document. Balances are restated from opening balances and operations.
// @Tags        exchange
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body exchange.Document true "Ledger document"
// @Success     200 {object} services.ImportResult "Import result"
// @Failure     400 {object} ErrorResponse "Invalid document"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /import [post]
func (h *ExchangeHandler) Import(c *gin.Context) {
	subject, err := actor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize))
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidImport, err.Error()))
		return
	}
	doc, err := exchange.Decode(data)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidImport, err.Error()))
		return
	}

	result, err := h.exchangeService.Import(c.Request.Context(), doc)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(subject, "IMPORT_LEDGER", "ledger", "", c.ClientIP(), map[string]interface{}{
		"accounts":   result.Accounts,
		"categories": result.Categories,
		"operations": result.Operations,
		"budgets":    result.Budgets,
		"restated":   len(result.Restated),
	})

	c.JSON(http.StatusOK, result)
}

// Seed handles POST /seed
// @Summary     Seed default data
// @Description Create the default account and categories when the ledger is empty
// @Tags        exchange
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]bool "Whether anything was created"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /seed [post]
func (h *ExchangeHandler) Seed(c *gin.Context) {
	subject, err := actor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	seeded, err := h.exchangeService.SeedDefaults(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	if seeded {
		h.auditService.Log(subject, "SEED_DEFAULTS", "ledger", "", c.ClientIP(), nil)
	}

	c.JSON(http.StatusOK, gin.H{"seeded": seeded})
}
