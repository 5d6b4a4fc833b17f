package report

import (
	"errors"
	"fmt"
	"time"
)

// Intervals accepted by NetWorthHistory.
const (
	IntervalDay   = "day"
	IntervalWeek  = "week"
	IntervalMonth = "month"
	IntervalYear  = "year"
)

// UncategorizedLabel buckets transactions without a category.
const UncategorizedLabel = "Uncategorized"

// MaxHistoryPoints caps a net-worth history: ten years of daily points.
const MaxHistoryPoints = 3660

// TopCategoryLimit bounds the category lists of a monthly summary.
const TopCategoryLimit = 5

// Domain errors
var (
	ErrInvalidRange = errors.New("end date is before start date")
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
	ErrInvalidYear  = errors.New("year must be positive")
	ErrRangeTooLong = fmt.Errorf("range yields more than %d points, use a coarser interval", MaxHistoryPoints)
)

// NetWorthPoint is one sample of the net-worth trend.
type NetWorthPoint struct {
	Date     string  `json:"date"`
	NetWorth float64 `json:"net_worth"`
}

// CategoryAmount is one bucket of a category breakdown.
type CategoryAmount struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// MonthlySummary aggregates one calendar month.
type MonthlySummary struct {
	Year                 int              `json:"year"`
	Month                int              `json:"month"`
	Income               float64          `json:"income"`
	Expenses             float64          `json:"expenses"`
	NetChange            float64          `json:"net_change"`
	TopIncomeCategories  []CategoryAmount `json:"top_income_categories"`
	TopExpenseCategories []CategoryAmount `json:"top_expense_categories"`
}

// stepFor returns the spacing between history points. Unknown intervals fall
// back to a month.
func stepFor(interval string) time.Duration {
	day := 24 * time.Hour
	switch interval {
	case IntervalDay:
		return day
	case IntervalWeek:
		return 7 * day
	case IntervalYear:
		return 365 * day
	default:
		return 30 * day
	}
}
