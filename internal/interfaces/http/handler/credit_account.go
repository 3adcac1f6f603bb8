package handler

import (
	"context"

	creditapp "github.com/crediario/backend/internal/application/credit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreditAccountHandler serves the credit account ledger
type CreditAccountHandler struct {
	BaseHandler
	ledger *creditapp.LedgerService
}

// NewCreditAccountHandler creates a new CreditAccountHandler
func NewCreditAccountHandler(ledger *creditapp.LedgerService) *CreditAccountHandler {
	return &CreditAccountHandler{ledger: ledger}
}

// List returns a page of active accounts.
func (h *CreditAccountHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var filter creditapp.AccountListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	accounts, total, err := h.ledger.ListAccounts(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, accounts, total, page, size)
}

// Get returns one account
func (h *CreditAccountHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	account, err := h.ledger.GetAccount(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// Summary returns the store's account count and outstanding debt
func (h *CreditAccountHandler) Summary(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	summary, err := h.ledger.GetSummary(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Delete removes an account with zero balance (NON_ZERO_BALANCE otherwise)
func (h *CreditAccountHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.ledger.DeleteAccount(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Transactions returns an account's history, newest first
func (h *CreditAccountHandler) Transactions(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var filter creditapp.TransactionListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	txs, total, err := h.ledger.ListTransactions(c.Request.Context(), tenantID, id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, txs, total, page, size)
}

// RegisterPayment lowers the balance. Any amount above the debt is discarded.
func (h *CreditAccountHandler) RegisterPayment(c *gin.Context) {
	h.movement(c, h.ledger.ApplyPayment)
}

// RegisterDebt adds a manual debt to the account
func (h *CreditAccountHandler) RegisterDebt(c *gin.Context) {
	h.movement(c, h.ledger.ApplyDebt)
}

type movementFunc = func(ctx context.Context, tenantID, accountID uuid.UUID, req creditapp.MovementRequest) (*creditapp.MovementResponse, error)

func (h *CreditAccountHandler) movement(c *gin.Context, apply movementFunc) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req creditapp.MovementRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := apply(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
