package account

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultCurrency is applied when an account is created without one.
const DefaultCurrency = "USD"

// IDPrefix is the prefix of sequential account identifiers (acc-001, acc-002, ...).
const IDPrefix = "acc-"

// Domain errors
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidAccountType  = errors.New("invalid account type")
	ErrInvalidInstitution  = errors.New("invalid institution")
	ErrInvalidCurrency     = errors.New("currency must be a 3-letter ISO 4217 code")
	ErrAccountNameRequired = errors.New("account name is required")
)

// AccountType is static reference data (checking, savings, credit, ...).
type AccountType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Institution is static reference data (chase, bofa, ...).
type Institution struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Account represents a financial account domain entity.
// TypeName and InstitutionName are resolved from reference data on read.
type Account struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	TypeName        string    `json:"type_name"`
	Institution     string    `json:"institution"`
	InstitutionName string    `json:"institution_name"`
	Balance         float64   `json:"balance"`
	Currency        string    `json:"currency"`
	IsActive        bool      `json:"is_active"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsLiability reports whether the account currently carries a negative balance.
func (a *Account) IsLiability() bool {
	return a.Balance < 0
}

// Filter narrows List results. Empty fields are not applied.
type Filter struct {
	Type        string
	Institution string
}

// CreateParams contains parameters for creating a new account.
// ID is assigned by the service.
type CreateParams struct {
	ID          string
	Name        string
	Type        string
	Institution string
	Balance     float64
	Currency    string
	Notes       string
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrAccountNameRequired
	}
	if p.Type == "" {
		return fmt.Errorf("%w: account type is required", ErrInvalidInput)
	}
	if p.Institution == "" {
		return fmt.Errorf("%w: institution is required", ErrInvalidInput)
	}
	if !IsValidCurrency(p.Currency) {
		return ErrInvalidCurrency
	}
	return nil
}

// UpdateParams is a partial update. Nil fields are left untouched.
type UpdateParams struct {
	Name        *string
	Type        *string
	Institution *string
	Balance     *float64
	Currency    *string
	IsActive    *bool
	Notes       *string
}

// Validate validates the fields that are present.
func (p UpdateParams) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrAccountNameRequired
	}
	if p.Type != nil && *p.Type == "" {
		return fmt.Errorf("%w: account type cannot be empty", ErrInvalidInput)
	}
	if p.Institution != nil && *p.Institution == "" {
		return fmt.Errorf("%w: institution cannot be empty", ErrInvalidInput)
	}
	if p.Currency != nil && !IsValidCurrency(*p.Currency) {
		return ErrInvalidCurrency
	}
	return nil
}

// IsEmpty reports whether the patch carries no fields.
func (p UpdateParams) IsEmpty() bool {
	return p.Name == nil && p.Type == nil && p.Institution == nil && p.Balance == nil &&
		p.Currency == nil && p.IsActive == nil && p.Notes == nil
}

// IsValidCurrency checks for a 3-letter upper-case code.
func IsValidCurrency(c string) bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// NextID returns the identifier following last. An empty or malformed last id
// starts the sequence at acc-001.
func NextID(last string) string {
	n := 0
	if strings.HasPrefix(last, IDPrefix) {
		if v, err := strconv.Atoi(strings.TrimPrefix(last, IDPrefix)); err == nil && v > 0 {
			n = v
		}
	}
	return fmt.Sprintf("%s%03d", IDPrefix, n+1)
}
