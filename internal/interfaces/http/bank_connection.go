package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"wealthtrackr/internal/domain/account"
	"wealthtrackr/internal/domain/bankconnection"
)

// BankConnectionHandler serves bank connections, their account links and syncs
type BankConnectionHandler struct {
	bankService *bankconnection.Service
}

// NewBankConnectionHandler creates a new bank connection handler
func NewBankConnectionHandler(bankService *bankconnection.Service) *BankConnectionHandler {
	return &BankConnectionHandler{bankService: bankService}
}

// CreateConnectionRequest is the result of the aggregator's link flow
type CreateConnectionRequest struct {
	InstitutionID string `json:"institution_id"`
	PublicToken   string `json:"public_token"`
}

// UpdateConnectionRequest carries only the fields to change
type UpdateConnectionRequest struct {
	Status       *string `json:"status"`
	ErrorMessage *string `json:"error_message"`
}

// LinkAccountRequest links an internal account to an external one
type LinkAccountRequest struct {
	ConnectionID      string `json:"bank_connection_id"`
	AccountID         string `json:"account_id"`
	ExternalAccountID string `json:"external_account_id"`
}

// InstitutionRef names the institution of a connection
type InstitutionRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ConnectionResponse is the public shape of a connection. The access token is
// never serialized.
type ConnectionResponse struct {
	ID                string         `json:"id"`
	InstitutionID     string         `json:"institution_id"`
	Institution       InstitutionRef `json:"institution"`
	ItemID            string         `json:"item_id"`
	Status            string         `json:"status"`
	LastSyncAt        *time.Time     `json:"last_sync_at"`
	ErrorMessage      string         `json:"error_message"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	ConnectedAccounts []string       `json:"connected_accounts"`
}

// MessageResponse is a plain confirmation
type MessageResponse struct {
	Message string `json:"message"`
}

func toConnectionResponse(c *bankconnection.Connection) ConnectionResponse {
	accounts := c.ConnectedAccounts
	if accounts == nil {
		accounts = []string{}
	}
	return ConnectionResponse{
		ID:                c.ID,
		InstitutionID:     c.InstitutionID,
		Institution:       InstitutionRef{ID: c.InstitutionID, Name: c.InstitutionName},
		ItemID:            c.ItemID,
		Status:            c.Status,
		LastSyncAt:        c.LastSyncAt,
		ErrorMessage:      c.ErrorMessage,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
		ConnectedAccounts: accounts,
	}
}

// notFoundDetail names whichever entity failed to resolve
func notFoundDetail(err error, connectionID, accountID string) string {
	switch {
	case errors.Is(err, bankconnection.ErrConnectionNotFound):
		return fmt.Sprintf("Bank connection with ID %s not found", connectionID)
	case errors.Is(err, account.ErrAccountNotFound):
		return accountNotFound(accountID)
	case errors.Is(err, bankconnection.ErrLinkNotFound):
		return fmt.Sprintf("Account %s is not linked to bank connection %s: not found", accountID, connectionID)
	default:
		return ""
	}
}

// HandleConnections lists (GET) or creates (POST) connections
func (h *BankConnectionHandler) HandleConnections(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		conns, err := h.bankService.ListConnections(r.Context(), r.URL.Query().Get("institution_id"))
		if err != nil {
			writeServiceError(w, err, "list bank connections", "")
			return
		}
		response := make([]ConnectionResponse, 0, len(conns))
		for _, c := range conns {
			response = append(response, toConnectionResponse(c))
		}
		writeJSON(w, http.StatusOK, response)
	case http.MethodPost:
		var req CreateConnectionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		conn, err := h.bankService.CreateConnection(r.Context(), req.InstitutionID, req.PublicToken)
		if err != nil {
			writeServiceError(w, err, "create bank connection", "")
			return
		}
		writeJSON(w, http.StatusCreated, toConnectionResponse(conn))
	default:
		methodNotAllowed(w)
	}
}

// HandleConnectionByID handles GET, PATCH/PUT and DELETE on one connection
func (h *BankConnectionHandler) HandleConnectionByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		conn, err := h.bankService.GetConnection(r.Context(), id)
		if err != nil {
			writeServiceError(w, err, "get bank connection", notFoundDetail(err, id, ""))
			return
		}
		writeJSON(w, http.StatusOK, toConnectionResponse(conn))
	case http.MethodPatch, http.MethodPut:
		var req UpdateConnectionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		conn, err := h.bankService.UpdateConnection(r.Context(), id, bankconnection.UpdateParams{
			Status:       req.Status,
			ErrorMessage: req.ErrorMessage,
		})
		if err != nil {
			writeServiceError(w, err, "update bank connection", notFoundDetail(err, id, ""))
			return
		}
		writeJSON(w, http.StatusOK, toConnectionResponse(conn))
	case http.MethodDelete:
		if err := h.bankService.DeleteConnection(r.Context(), id); err != nil {
			writeServiceError(w, err, "delete bank connection", notFoundDetail(err, id, ""))
			return
		}
		writeJSON(w, http.StatusOK, MessageResponse{
			Message: fmt.Sprintf("Bank connection with ID %s deleted successfully", id),
		})
	default:
		methodNotAllowed(w)
	}
}

// HandleLinkAccount links an account to the connection in the path
func (h *BankConnectionHandler) HandleLinkAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	connectionID := r.PathValue("id")
	var req LinkAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ConnectionID == "" {
		req.ConnectionID = connectionID
	}
	if req.ConnectionID != connectionID {
		writeError(w, http.StatusBadRequest, bankconnection.ErrConnectionMismatch.Error())
		return
	}

	link, err := h.bankService.LinkAccount(r.Context(), bankconnection.LinkParams{
		ConnectionID:      connectionID,
		AccountID:         req.AccountID,
		ExternalAccountID: req.ExternalAccountID,
	})
	if err != nil {
		writeServiceError(w, err, "link account", notFoundDetail(err, connectionID, req.AccountID))
		return
	}

	writeJSON(w, http.StatusCreated, link)
}

// HandleUnlinkAccount removes the link between the connection and an account
func (h *BankConnectionHandler) HandleUnlinkAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}

	connectionID := r.PathValue("id")
	accountID := r.PathValue("account_id")
	if err := h.bankService.UnlinkAccount(r.Context(), connectionID, accountID); err != nil {
		writeServiceError(w, err, "unlink account", notFoundDetail(err, connectionID, accountID))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleSyncAccount pulls the provider's transactions for a linked account
func (h *BankConnectionHandler) HandleSyncAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	connectionID := r.PathValue("id")
	accountID := r.PathValue("account_id")
	result, err := h.bankService.SyncAccount(r.Context(), connectionID, accountID)
	if err != nil {
		writeServiceError(w, err, "sync account", notFoundDetail(err, connectionID, accountID))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleLinkToken issues a token for the aggregator's link flow
func (h *BankConnectionHandler) HandleLinkToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	token, err := h.bankService.IssueLinkToken(r.Context())
	if err != nil {
		writeServiceError(w, err, "issue link token", "")
		return
	}

	writeJSON(w, http.StatusOK, token)
}

// HandleSupportedInstitutions lists the institutions the aggregator supports
func (h *BankConnectionHandler) HandleSupportedInstitutions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	institutions, err := h.bankService.SupportedInstitutions(r.Context())
	if err != nil {
		writeServiceError(w, err, "list supported institutions", "")
		return
	}
	if institutions == nil {
		institutions = []bankconnection.SupportedInstitution{}
	}

	writeJSON(w, http.StatusOK, institutions)
}
