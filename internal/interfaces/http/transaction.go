package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wealthtrackr/internal/domain/transaction"
)

// TransactionHandler serves transactions, filtering, search and batch import
type TransactionHandler struct {
	transactionService *transaction.Service
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionService *transaction.Service) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// TransactionRequest is the body of a create request and of an import item.
// Amount is a pointer so a missing amount is told apart from 0.
type TransactionRequest struct {
	AccountID    string   `json:"account_id"`
	Date         string   `json:"date"`
	Amount       *float64 `json:"amount"`
	Payee        string   `json:"payee"`
	Category     string   `json:"category"`
	Description  string   `json:"description"`
	IsReconciled bool     `json:"is_reconciled"`
}

// UpdateTransactionRequest carries only the fields to change
type UpdateTransactionRequest struct {
	AccountID    *string  `json:"account_id"`
	Date         *string  `json:"date"`
	Amount       *float64 `json:"amount"`
	Payee        *string  `json:"payee"`
	Category     *string  `json:"category"`
	Description  *string  `json:"description"`
	IsReconciled *bool    `json:"is_reconciled"`
}

// ImportRequest is a batch of transactions for one account
type ImportRequest struct {
	AccountID    string               `json:"account_id"`
	Transactions []TransactionRequest `json:"transactions"`
}

// SearchRequest is the body of a search
type SearchRequest struct {
	Query string `json:"query"`
}

// TransactionResponse is the public shape of a transaction
type TransactionResponse struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"account_id"`
	AccountName  string    `json:"account_name"`
	Date         string    `json:"date"`
	Amount       float64   `json:"amount"`
	Payee        string    `json:"payee"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	IsReconciled bool      `json:"is_reconciled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toTransactionResponse(t *transaction.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:           t.ID,
		AccountID:    t.AccountID,
		AccountName:  t.AccountName,
		Date:         t.Date.Format(transaction.DateLayout),
		Amount:       t.Amount,
		Payee:        t.Payee,
		Category:     t.Category,
		Description:  t.Description,
		IsReconciled: t.IsReconciled,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func toTransactionResponses(txns []*transaction.Transaction) []TransactionResponse {
	response := make([]TransactionResponse, 0, len(txns))
	for _, t := range txns {
		response = append(response, toTransactionResponse(t))
	}
	return response
}

// params checks the required fields and converts the request.
func (req TransactionRequest) params() (transaction.CreateParams, error) {
	params := transaction.CreateParams{
		AccountID:    req.AccountID,
		Payee:        strings.TrimSpace(req.Payee),
		Category:     strings.TrimSpace(req.Category),
		Description:  req.Description,
		IsReconciled: req.IsReconciled,
	}
	switch {
	case req.Date == "":
		return params, transaction.ErrDateRequired
	case req.Amount == nil:
		return params, transaction.ErrAmountRequired
	case params.Payee == "":
		return params, transaction.ErrPayeeRequired
	case params.Category == "":
		return params, transaction.ErrCategoryRequired
	}
	params.Amount = *req.Amount

	date, err := transaction.ParseDate(req.Date)
	if err != nil {
		return params, err
	}
	params.Date = date
	return params, nil
}

func transactionNotFound(id string) string {
	return fmt.Sprintf("Transaction with ID %s not found", id)
}

// parseTransactionFilter reads the filter predicates from the query string
func parseTransactionFilter(q url.Values) (transaction.Filter, error) {
	f := transaction.Filter{
		AccountID: q.Get("account_id"),
		Category:  q.Get("category"),
	}

	if s := q.Get("start_date"); s != "" {
		d, err := transaction.ParseDate(s)
		if err != nil {
			return f, err
		}
		f.StartDate = &d
	}
	if s := q.Get("end_date"); s != "" {
		d, err := transaction.ParseDate(s)
		if err != nil {
			return f, err
		}
		f.EndDate = &d
	}

	var err error
	if f.MinAmount, err = parseOptionalFloat(q.Get("min_amount")); err != nil {
		return f, fmt.Errorf("%w: min_amount must be a number", transaction.ErrInvalidInput)
	}
	if f.MaxAmount, err = parseOptionalFloat(q.Get("max_amount")); err != nil {
		return f, fmt.Errorf("%w: max_amount must be a number", transaction.ErrInvalidInput)
	}
	if f.IsReconciled, err = parseOptionalBool(q.Get("is_reconciled")); err != nil {
		return f, fmt.Errorf("%w: is_reconciled must be true or false", transaction.ErrInvalidInput)
	}

	return f, f.Validate()
}

// HandleTransactions lists (GET, with optional filters) or creates (POST) transactions
func (h *TransactionHandler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListTransactions(w, r)
	case http.MethodPost:
		h.handleCreateTransaction(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *TransactionHandler) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txns, err := h.transactionService.FilterTransactions(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err, "list transactions", "")
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponses(txns))
}

func (h *TransactionHandler) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	params, err := req.params()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.transactionService.CreateTransaction(r.Context(), params)
	if err != nil {
		writeServiceError(w, err, "create transaction", "")
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(t))
}

// HandleTransactionByID handles GET, PUT/PATCH and DELETE on one transaction
func (h *TransactionHandler) HandleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Transaction ID is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		t, err := h.transactionService.GetTransaction(r.Context(), id)
		if err != nil {
			writeServiceError(w, err, "get transaction", transactionNotFound(id))
			return
		}
		writeJSON(w, http.StatusOK, toTransactionResponse(t))
	case http.MethodPut, http.MethodPatch:
		h.handleUpdateTransaction(w, r, id)
	case http.MethodDelete:
		if err := h.transactionService.DeleteTransaction(r.Context(), id); err != nil {
			writeServiceError(w, err, "delete transaction", transactionNotFound(id))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

func (h *TransactionHandler) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, id string) {
	var req UpdateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	params := transaction.UpdateParams{
		AccountID:    req.AccountID,
		Amount:       req.Amount,
		Payee:        req.Payee,
		Category:     req.Category,
		Description:  req.Description,
		IsReconciled: req.IsReconciled,
	}
	if req.Date != nil {
		date, err := transaction.ParseDate(*req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		params.Date = &date
	}

	t, err := h.transactionService.UpdateTransaction(r.Context(), id, params)
	if err != nil {
		writeServiceError(w, err, "update transaction", transactionNotFound(id))
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

// HandleListByAccount returns the transactions of one account
func (h *TransactionHandler) HandleListByAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	txns, err := h.transactionService.ListByAccount(r.Context(), r.PathValue("account_id"))
	if err != nil {
		writeServiceError(w, err, "list transactions", "")
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponses(txns))
}

// HandleCategories returns the distinct categories in use
func (h *TransactionHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	categories, err := h.transactionService.Categories(r.Context())
	if err != nil {
		writeServiceError(w, err, "list categories", "")
		return
	}
	if categories == nil {
		categories = []string{}
	}

	writeJSON(w, http.StatusOK, categories)
}

// HandleSearch matches text against description, category and payee.
// Accepts POST {"query": ...} or GET ?q=.
func (h *TransactionHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var query string
	switch r.Method {
	case http.MethodGet:
		query = r.URL.Query().Get("q")
	case http.MethodPost:
		var req SearchRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		query = req.Query
	default:
		methodNotAllowed(w)
		return
	}

	if query == "" {
		writeError(w, http.StatusBadRequest, "Search query is required")
		return
	}

	txns, err := h.transactionService.SearchTransactions(r.Context(), query)
	if err != nil {
		writeServiceError(w, err, "search transactions", "")
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponses(txns))
}

// HandleImport creates a batch of transactions under one account
func (h *TransactionHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req ImportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items := make([]transaction.CreateParams, 0, len(req.Transactions))
	for i, item := range req.Transactions {
		params, err := item.params()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("item %d: %v", i, err))
			return
		}
		items = append(items, params)
	}

	created, err := h.transactionService.ImportTransactions(r.Context(), req.AccountID, items)
	if err != nil {
		writeServiceError(w, err, "import transactions", "")
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponses(created))
}
