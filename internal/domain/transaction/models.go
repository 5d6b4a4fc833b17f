package transaction

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of a transaction date.
const DateLayout = "2006-01-02"

// Domain errors
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrAccountRequired     = errors.New("account_id is required")
	ErrDateRequired        = errors.New("date is required")
	ErrAmountRequired      = errors.New("amount is required")
	ErrPayeeRequired       = errors.New("payee is required")
	ErrCategoryRequired    = errors.New("category is required")
)

// Transaction is one signed ledger line: positive amounts are income,
// negative amounts are expenses.
type Transaction struct {
	ID           string
	AccountID    string
	AccountName  string
	Date         time.Time
	Amount       float64
	Payee        string
	Category     string
	Description  string
	IsIncome     bool
	IsReconciled bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateParams contains parameters for creating a new transaction.
// ID and IsIncome are filled in by the service.
type CreateParams struct {
	ID           string
	AccountID    string
	Date         time.Time
	Amount       float64
	Payee        string
	Category     string
	Description  string
	IsIncome     bool
	IsReconciled bool
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if strings.TrimSpace(p.AccountID) == "" {
		return ErrAccountRequired
	}
	if p.Date.IsZero() {
		return ErrDateRequired
	}
	return nil
}

// UpdateParams is a partial update. Nil fields are left untouched.
// IsIncome is derived by the service whenever Amount is present.
type UpdateParams struct {
	AccountID    *string
	Date         *time.Time
	Amount       *float64
	Payee        *string
	Category     *string
	Description  *string
	IsReconciled *bool
	IsIncome     *bool
}

// Validate validates the fields that are present.
func (p UpdateParams) Validate() error {
	if p.AccountID != nil && strings.TrimSpace(*p.AccountID) == "" {
		return ErrAccountRequired
	}
	if p.Date != nil && p.Date.IsZero() {
		return ErrDateRequired
	}
	if p.Payee != nil && strings.TrimSpace(*p.Payee) == "" {
		return ErrPayeeRequired
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return ErrCategoryRequired
	}
	return nil
}

// Filter holds independent, combinable predicates. A nil or empty field
// places no constraint; all present predicates are ANDed.
type Filter struct {
	AccountID    string
	Category     string
	StartDate    *time.Time
	EndDate      *time.Time
	MinAmount    *float64
	MaxAmount    *float64
	IsReconciled *bool
}

// Validate rejects inverted ranges.
func (f Filter) Validate() error {
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return fmt.Errorf("%w: end_date is before start_date", ErrInvalidInput)
	}
	if f.MinAmount != nil && f.MaxAmount != nil && *f.MaxAmount < *f.MinAmount {
		return fmt.Errorf("%w: max_amount is below min_amount", ErrInvalidInput)
	}
	return nil
}

// Matches reports whether t satisfies every predicate in f.
func (f Filter) Matches(t *Transaction) bool {
	if f.AccountID != "" && t.AccountID != f.AccountID {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.StartDate != nil && t.Date.Before(truncateDay(*f.StartDate)) {
		return false
	}
	if f.EndDate != nil && t.Date.After(truncateDay(*f.EndDate)) {
		return false
	}
	if f.MinAmount != nil && t.Amount < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && t.Amount > *f.MaxAmount {
		return false
	}
	if f.IsReconciled != nil && t.IsReconciled != *f.IsReconciled {
		return false
	}
	return true
}

// MatchesText reports whether query is a case-insensitive substring of the
// description, category or payee.
func MatchesText(t *Transaction, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(t.Description), q) ||
		strings.Contains(strings.ToLower(t.Category), q) ||
		strings.Contains(strings.ToLower(t.Payee), q)
}

// ParseDate parses a YYYY-MM-DD date, also accepting a full RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q (expected YYYY-MM-DD)", ErrInvalidInput, s)
	}
	return truncateDay(t), nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
