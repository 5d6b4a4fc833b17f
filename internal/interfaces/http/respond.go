package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"wealthtrackr/internal/domain/account"
	"wealthtrackr/internal/domain/bankconnection"
	"wealthtrackr/internal/domain/budget"
	"wealthtrackr/internal/domain/report"
	"wealthtrackr/internal/domain/transaction"
	"wealthtrackr/internal/export"
)

// maxBodyBytes caps request bodies; imports are the largest payloads.
const maxBodyBytes = 5 << 20

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Detail string `json:"detail"`
}

var notFoundErrors = []error{
	account.ErrAccountNotFound,
	transaction.ErrTransactionNotFound,
	budget.ErrBudgetItemNotFound,
	bankconnection.ErrConnectionNotFound,
	bankconnection.ErrLinkNotFound,
}

var badRequestErrors = []error{
	account.ErrInvalidInput,
	account.ErrInvalidAccountType,
	account.ErrInvalidInstitution,
	account.ErrInvalidCurrency,
	account.ErrAccountNameRequired,
	transaction.ErrInvalidInput,
	transaction.ErrAccountRequired,
	transaction.ErrDateRequired,
	transaction.ErrAmountRequired,
	transaction.ErrPayeeRequired,
	transaction.ErrCategoryRequired,
	budget.ErrInvalidSection,
	budget.ErrTypeRequired,
	budget.ErrMonthRequired,
	bankconnection.ErrInvalidInput,
	bankconnection.ErrInvalidStatus,
	bankconnection.ErrConnectionMismatch,
	bankconnection.ErrLinkExists,
	report.ErrInvalidRange,
	report.ErrInvalidMonth,
	report.ErrInvalidYear,
	report.ErrRangeTooLong,
	export.ErrUnknownFormat,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// writeServiceError maps a service error onto a status code. notFound, when
// set, replaces the error text for 404 responses.
func writeServiceError(w http.ResponseWriter, err error, action, notFound string) {
	switch {
	case isAny(err, notFoundErrors):
		if notFound == "" {
			notFound = capitalize(err.Error())
		}
		writeError(w, http.StatusNotFound, notFound)
	case isAny(err, badRequestErrors):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, bankconnection.ErrProviderFailure):
		log.Printf("Error %s: %v", action, err)
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		log.Printf("Error %s: %v", action, err)
		writeError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// decodeJSON decodes a bounded request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func parseOptionalFloat(q string) (*float64, error) {
	if q == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(q, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseOptionalBool(q string) (*bool, error) {
	if q == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(q)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
