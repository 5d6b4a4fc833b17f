package http

import (
	"fmt"
	"net/http"
	"strconv"

	"wealthtrackr/internal/domain/budget"
)

// BudgetHandler serves monthly budget lines
type BudgetHandler struct {
	budgetService *budget.Service
}

// NewBudgetHandler creates a new budget handler
func NewBudgetHandler(budgetService *budget.Service) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// CreateBudgetItemRequest is the body of a budget line create
type CreateBudgetItemRequest struct {
	Amount  float64 `json:"amount"`
	Type    string  `json:"type"`
	Section string  `json:"section"`
	Month   string  `json:"month"`
}

// UpdateBudgetItemRequest carries only the fields to change
type UpdateBudgetItemRequest struct {
	Amount  *float64 `json:"amount"`
	Type    *string  `json:"type"`
	Section *string  `json:"section"`
	Month   *string  `json:"month"`
}

// HandleBudget returns a month's budget (GET) or adds a line (POST)
func (h *BudgetHandler) HandleBudget(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		b, err := h.budgetService.GetBudget(r.Context(), r.URL.Query().Get("month"))
		if err != nil {
			writeServiceError(w, err, "get budget", "")
			return
		}
		writeJSON(w, http.StatusOK, b)
	case http.MethodPost:
		var req CreateBudgetItemRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		item, err := h.budgetService.CreateItem(r.Context(), budget.CreateParams{
			Amount:  req.Amount,
			Type:    req.Type,
			Section: req.Section,
			Month:   req.Month,
		})
		if err != nil {
			writeServiceError(w, err, "create budget item", "")
			return
		}
		writeJSON(w, http.StatusCreated, item)
	default:
		methodNotAllowed(w)
	}
}

// HandleBudgetItem updates (PUT/PATCH) or deletes (DELETE) one line
func (h *BudgetHandler) HandleBudgetItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Budget item ID must be an integer")
		return
	}
	notFound := fmt.Sprintf("Budget item with ID %d not found", id)

	switch r.Method {
	case http.MethodPut, http.MethodPatch:
		var req UpdateBudgetItemRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		item, err := h.budgetService.UpdateItem(r.Context(), id, budget.UpdateParams{
			Amount:  req.Amount,
			Type:    req.Type,
			Section: req.Section,
			Month:   req.Month,
		})
		if err != nil {
			writeServiceError(w, err, "update budget item", notFound)
			return
		}
		writeJSON(w, http.StatusOK, item)
	case http.MethodDelete:
		if err := h.budgetService.DeleteItem(r.Context(), id); err != nil {
			writeServiceError(w, err, "delete budget item", notFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}
