package handler

import (
	"strings"

	creditapp "github.com/crediario/backend/internal/application/credit"
	"github.com/crediario/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// CreditOperationHandler serves the crediário sale form: submission and the
// interactive checks the form runs while it is being filled in
type CreditOperationHandler struct {
	BaseHandler
	operations *creditapp.DebtOperationService
	form       *creditapp.FormService
}

// NewCreditOperationHandler creates a new CreditOperationHandler
func NewCreditOperationHandler(operations *creditapp.DebtOperationService, form *creditapp.FormService) *CreditOperationHandler {
	return &CreditOperationHandler{
		operations: operations,
		form:       form,
	}
}

// ResolveCustomerQuery is the query of the customer lookup
type ResolveCustomerQuery struct {
	Name  string `form:"name" binding:"max=200"`
	Phone string `form:"phone" binding:"max=50"`
}

// Submit books a sale on credit. An Idempotency-Key header de-duplicates
// resubmissions.
func (h *CreditOperationHandler) Submit(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req creditapp.SubmitDebtOperationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.IdempotencyKey = strings.TrimSpace(c.GetHeader(middleware.IdempotencyKeyHeader))

	result, err := h.operations.Submit(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// a degraded sale is still booked
	h.Created(c, result)
}

// StageItem checks one more item against the cart and a fresh stock snapshot
func (h *CreditOperationHandler) StageItem(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req creditapp.StageItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.form.StageItem(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// PreviewSchedule recomputes the installment plan for the form
func (h *CreditOperationHandler) PreviewSchedule(c *gin.Context) {
	var req creditapp.SchedulePreviewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	plan, err := h.form.PreviewSchedule(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// ScheduleOptions lists 1x to 24x and the supported frequencies
func (h *CreditOperationHandler) ScheduleOptions(c *gin.Context) {
	h.Success(c, h.form.ScheduleOptions())
}

// ResolveCustomer reports whether the typed customer is new, known or
// already has a credit account
func (h *CreditOperationHandler) ResolveCustomer(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var q ResolveCustomerQuery
	if !h.bindQuery(c, &q) {
		return
	}

	resp, err := h.form.ResolveCustomer(c.Request.Context(), tenantID, q.Name, q.Phone)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
