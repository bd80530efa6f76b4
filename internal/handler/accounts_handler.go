package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openfin/accounts-api/internal/middleware"
	"github.com/openfin/accounts-api/internal/service"
)

// AccountReader defines the account operations used by AccountsHandler.
type AccountReader interface {
	ListAccounts(ctx context.Context, in service.ListAccountsInput) (*service.ListAccountsOutput, error)
	GetAccount(ctx context.Context, in service.GetAccountInput) (*service.GetAccountOutput, error)
}

// TransactionReader defines the transaction operations used by
// AccountsHandler.
type TransactionReader interface {
	ListTransactions(ctx context.Context, in service.ListTransactionsInput) (*service.ListTransactionsOutput, error)
}

// AccountsHandler handles the account and transaction retrieval endpoints.
type AccountsHandler struct {
	accounts     AccountReader
	transactions TransactionReader
}

func NewAccountsHandler(accounts AccountReader, transactions TransactionReader) *AccountsHandler {
	return &AccountsHandler{accounts: accounts, transactions: transactions}
}

// Defaults are applied at binding time so an explicit page=0 is rejected
// instead of silently falling back to the first page.
type listAccountsRequest struct {
	Page          int    `form:"page,default=1" validate:"gte=1"`
	PageSize      int    `form:"page-size,default=25" validate:"gte=1,lte=1000"`
	AccountType   string `form:"accountType" validate:"omitempty,oneof=checking savings prepaid"`
	PaginationKey string `form:"pagination-key"`
}

type listTransactionsRequest struct {
	Page          int    `form:"page,default=1" validate:"gte=1"`
	PageSize      int    `form:"page-size,default=25" validate:"gte=1,lte=1000"`
	PaginationKey string `form:"pagination-key"`
}

func (h *AccountsHandler) ListAccounts(c *gin.Context) {
	consentID, _ := middleware.GetConsentID(c)
	organizationID, _ := middleware.GetOrganizationID(c)
	interactionID, _ := middleware.GetInteractionID(c)

	var req listAccountsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	out, err := h.accounts.ListAccounts(c.Request.Context(), service.ListAccountsInput{
		ConsentID:      consentID,
		OrganizationID: organizationID,
		InteractionID:  interactionID,
		Page:           req.Page,
		PageSize:       req.PageSize,
		AccountType:    req.AccountType,
		PaginationKey:  req.PaginationKey,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapAccountsList(out))
}

func (h *AccountsHandler) GetAccount(c *gin.Context) {
	consentID, _ := middleware.GetConsentID(c)
	organizationID, _ := middleware.GetOrganizationID(c)
	interactionID, _ := middleware.GetInteractionID(c)

	out, err := h.accounts.GetAccount(c.Request.Context(), service.GetAccountInput{
		ConsentID:      consentID,
		OrganizationID: organizationID,
		InteractionID:  interactionID,
		AccountID:      c.Param("accountId"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapSingleAccount(out))
}

func (h *AccountsHandler) ListTransactions(c *gin.Context) {
	consentID, _ := middleware.GetConsentID(c)
	organizationID, _ := middleware.GetOrganizationID(c)
	interactionID, _ := middleware.GetInteractionID(c)

	var req listTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	out, err := h.transactions.ListTransactions(c.Request.Context(), service.ListTransactionsInput{
		ConsentID:      consentID,
		OrganizationID: organizationID,
		InteractionID:  interactionID,
		AccountID:      c.Param("accountId"),
		Page:           req.Page,
		PageSize:       req.PageSize,
		PaginationKey:  req.PaginationKey,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapTransactionsList(out))
}
