package http

import (
	"fmt"
	"net/http"

	"wealthtrackr/internal/domain/account"
	"wealthtrackr/internal/domain/reconcile"
)

// AccountHandler serves accounts, their reference data and balance aggregates
type AccountHandler struct {
	accountService   *account.Service
	reconcileService *reconcile.Service
}

// NewAccountHandler creates a new account handler with service layer
func NewAccountHandler(accountService *account.Service, reconcileService *reconcile.Service) *AccountHandler {
	return &AccountHandler{
		accountService:   accountService,
		reconcileService: reconcileService,
	}
}

// HTTP request/response types (transport layer concerns)
type CreateAccountRequest struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Institution string  `json:"institution"`
	Balance     float64 `json:"balance"`
	Currency    string  `json:"currency"`
	Notes       string  `json:"notes"`
}

// UpdateAccountRequest carries only the fields to change
type UpdateAccountRequest struct {
	Name        *string  `json:"name"`
	Type        *string  `json:"type"`
	Institution *string  `json:"institution"`
	Balance     *float64 `json:"balance"`
	Currency    *string  `json:"currency"`
	IsActive    *bool    `json:"is_active"`
	Notes       *string  `json:"notes"`
}

// ReconcileResponse reports a re-derived balance
type ReconcileResponse struct {
	AccountID string  `json:"account_id"`
	Balance   float64 `json:"balance"`
}

func accountNotFound(id string) string {
	return fmt.Sprintf("Account with ID %s not found", id)
}

// HandleAccounts lists (GET) or creates (POST) accounts
func (h *AccountHandler) HandleAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListAccounts(w, r)
	case http.MethodPost:
		h.handleCreateAccount(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *AccountHandler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	filter := account.Filter{
		Type:        r.URL.Query().Get("type"),
		Institution: r.URL.Query().Get("institution"),
	}

	accounts, err := h.accountService.ListAccounts(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err, "list accounts", "")
		return
	}
	if accounts == nil {
		accounts = []*account.Account{}
	}

	writeJSON(w, http.StatusOK, accounts)
}

func (h *AccountHandler) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	acc, err := h.accountService.CreateAccount(r.Context(), account.CreateParams{
		Name:        req.Name,
		Type:        req.Type,
		Institution: req.Institution,
		Balance:     req.Balance,
		Currency:    req.Currency,
		Notes:       req.Notes,
	})
	if err != nil {
		writeServiceError(w, err, "create account", "")
		return
	}

	writeJSON(w, http.StatusCreated, acc)
}

// HandleAccountByID handles GET, PUT/PATCH and DELETE on one account
func (h *AccountHandler) HandleAccountByID(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "Account ID is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		acc, err := h.accountService.GetAccount(r.Context(), accountID)
		if err != nil {
			writeServiceError(w, err, "get account", accountNotFound(accountID))
			return
		}
		writeJSON(w, http.StatusOK, acc)
	case http.MethodPut, http.MethodPatch:
		h.handleUpdateAccount(w, r, accountID)
	case http.MethodDelete:
		if err := h.accountService.DeleteAccount(r.Context(), accountID); err != nil {
			writeServiceError(w, err, "delete account", accountNotFound(accountID))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

func (h *AccountHandler) handleUpdateAccount(w http.ResponseWriter, r *http.Request, accountID string) {
	var req UpdateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	acc, err := h.accountService.UpdateAccount(r.Context(), accountID, account.UpdateParams{
		Name:        req.Name,
		Type:        req.Type,
		Institution: req.Institution,
		Balance:     req.Balance,
		Currency:    req.Currency,
		IsActive:    req.IsActive,
		Notes:       req.Notes,
	})
	if err != nil {
		writeServiceError(w, err, "update account", accountNotFound(accountID))
		return
	}

	writeJSON(w, http.StatusOK, acc)
}

// HandleReconcile re-derives an account's balance from its transactions
func (h *AccountHandler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	accountID := r.PathValue("id")
	balance, err := h.reconcileService.Reconcile(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, err, "reconcile account", accountNotFound(accountID))
		return
	}

	writeJSON(w, http.StatusOK, ReconcileResponse{AccountID: accountID, Balance: balance})
}

// HandleTotalBalance returns the signed sum of all balances
func (h *AccountHandler) HandleTotalBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	total, err := h.accountService.TotalBalance(r.Context())
	if err != nil {
		writeServiceError(w, err, "calculate total balance", "")
		return
	}
	writeJSON(w, http.StatusOK, total)
}

// HandleNetWorth returns assets minus liabilities
func (h *AccountHandler) HandleNetWorth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	netWorth, err := h.accountService.NetWorth(r.Context())
	if err != nil {
		writeServiceError(w, err, "calculate net worth", "")
		return
	}
	writeJSON(w, http.StatusOK, netWorth)
}

// HandleListTypes returns the account types
func (h *AccountHandler) HandleListTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	types, err := h.accountService.ListTypes(r.Context())
	if err != nil {
		writeServiceError(w, err, "list account types", "")
		return
	}
	if types == nil {
		types = []account.AccountType{}
	}
	writeJSON(w, http.StatusOK, types)
}

// HandleListInstitutions returns the institutions
func (h *AccountHandler) HandleListInstitutions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	institutions, err := h.accountService.ListInstitutions(r.Context())
	if err != nil {
		writeServiceError(w, err, "list institutions", "")
		return
	}
	if institutions == nil {
		institutions = []account.Institution{}
	}
	writeJSON(w, http.StatusOK, institutions)
}
