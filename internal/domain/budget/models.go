package budget

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MonthLayout renders month labels such as "May 2025".
const MonthLayout = "January 2006"

// Sections a budget line may belong to.
const (
	SectionIncome        = "income"
	SectionBills         = "bills"
	SectionSubscriptions = "subscriptions"
	SectionInvestments   = "investments"
)

var validSections = map[string]struct{}{
	SectionIncome:        {},
	SectionBills:         {},
	SectionSubscriptions: {},
	SectionInvestments:   {},
}

// Domain errors
var (
	ErrBudgetItemNotFound = errors.New("budget item not found")
	ErrInvalidSection     = errors.New("section must be one of income, bills, subscriptions, investments")
	ErrTypeRequired       = errors.New("type is required")
	ErrMonthRequired      = errors.New("month is required")
)

// Item is a flat budget line keyed by a free-text month label.
type Item struct {
	ID      int64   `json:"id"`
	Amount  float64 `json:"amount"`
	Type    string  `json:"type"`
	Section string  `json:"section"`
	Month   string  `json:"month"`
}

// Budget is the set of items for one month.
type Budget struct {
	Month string  `json:"month"`
	Items []*Item `json:"items"`
}

// CreateParams contains parameters for creating a budget item
type CreateParams struct {
	Amount  float64
	Type    string
	Section string
	Month   string
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if strings.TrimSpace(p.Type) == "" {
		return ErrTypeRequired
	}
	if !IsValidSection(p.Section) {
		return fmt.Errorf("%w: %q", ErrInvalidSection, p.Section)
	}
	if strings.TrimSpace(p.Month) == "" {
		return ErrMonthRequired
	}
	return nil
}

// UpdateParams is a partial update. Nil fields are left untouched.
type UpdateParams struct {
	Amount  *float64
	Type    *string
	Section *string
	Month   *string
}

// Validate validates the fields that are present.
func (p UpdateParams) Validate() error {
	if p.Type != nil && strings.TrimSpace(*p.Type) == "" {
		return ErrTypeRequired
	}
	if p.Section != nil && !IsValidSection(*p.Section) {
		return fmt.Errorf("%w: %q", ErrInvalidSection, *p.Section)
	}
	if p.Month != nil && strings.TrimSpace(*p.Month) == "" {
		return ErrMonthRequired
	}
	return nil
}

// IsValidSection checks the section against the known set.
func IsValidSection(s string) bool {
	_, ok := validSections[s]
	return ok
}

// MonthLabel renders t as a month label.
func MonthLabel(t time.Time) string {
	return t.Format(MonthLayout)
}

// SampleItems are inserted when a fresh store is seeded.
var SampleItems = []CreateParams{
	{Amount: 37882.40, Type: "Salary", Section: SectionIncome, Month: "May 2025"},
	{Amount: -14947.11, Type: "Rent", Section: SectionBills, Month: "May 2025"},
	{Amount: -80.95, Type: "Streaming", Section: SectionSubscriptions, Month: "May 2025"},
	{Amount: -1500.00, Type: "Stocks", Section: SectionInvestments, Month: "May 2025"},
}
