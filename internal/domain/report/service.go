package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"wealthtrackr/internal/domain/transaction"
)

// TransactionSource supplies the transactions a report aggregates.
type TransactionSource interface {
	FilterTransactions(ctx context.Context, f transaction.Filter) ([]*transaction.Transaction, error)
}

// NetWorthSource supplies the current net worth.
type NetWorthSource interface {
	NetWorth(ctx context.Context) (float64, error)
}

// Service derives read-only reports from accounts and transactions
type Service struct {
	transactions TransactionSource
	accounts     NetWorthSource
	now          func() time.Time
}

// NewService creates a report service
func NewService(transactions TransactionSource, accounts NetWorthSource) *Service {
	return &Service{
		transactions: transactions,
		accounts:     accounts,
		now:          time.Now,
	}
}

// Today returns the current date at midnight UTC.
func (s *Service) Today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// NetWorthHistory returns a synthetic trend ending at the current net worth.
// No balance snapshots are stored, so earlier points are extrapolated from the
// current value as current * (0.95 + days_ago/365 * 0.1). The last point equals
// the current net worth only when it falls exactly on end.
func (s *Service) NetWorthHistory(ctx context.Context, start, end time.Time, interval string) ([]NetWorthPoint, error) {
	start = day(start)
	end = day(end)
	if end.Before(start) {
		return nil, ErrInvalidRange
	}

	step := stepFor(interval)
	count := int(end.Sub(start)/step) + 1
	if count > MaxHistoryPoints {
		return nil, ErrRangeTooLong
	}

	current, err := s.accounts.NetWorth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get net worth: %w", err)
	}
	base := decimal.NewFromFloat(current)

	points := make([]NetWorthPoint, 0, count)
	for d := start; !d.After(end); d = d.Add(step) {
		daysAgo := int64(end.Sub(d).Hours() / 24)
		value := base
		if daysAgo != 0 {
			factor := decimal.NewFromFloat(0.95).Add(
				decimal.NewFromInt(daysAgo).Div(decimal.NewFromInt(365)).Mul(decimal.NewFromFloat(0.1)))
			value = base.Mul(factor)
		}
		points = append(points, NetWorthPoint{
			Date:     d.Format(transaction.DateLayout),
			NetWorth: value.Round(2).InexactFloat64(),
		})
	}
	return points, nil
}

// SpendingByCategory buckets the expenses in [start, end] by category, largest first.
func (s *Service) SpendingByCategory(ctx context.Context, start, end time.Time, accountID string) ([]CategoryAmount, error) {
	start = day(start)
	end = day(end)
	if end.Before(start) {
		return nil, ErrInvalidRange
	}

	txns, err := s.transactions.FilterTransactions(ctx, transaction.Filter{
		AccountID: accountID,
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	var expenses []*transaction.Transaction
	for _, t := range txns {
		if t.Amount < 0 {
			expenses = append(expenses, t)
		}
	}

	breakdown, _ := bucket(expenses)
	return breakdown, nil
}

// MonthlySummary totals income and expenses over [first day of month, first
// day of next month) and ranks the top categories of each side.
func (s *Service) MonthlySummary(ctx context.Context, year, month int, accountID string) (*MonthlySummary, error) {
	if year <= 0 {
		return nil, ErrInvalidYear
	}
	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	txns, err := s.transactions.FilterTransactions(ctx, transaction.Filter{
		AccountID: accountID,
		StartDate: &first,
		EndDate:   &last,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	var incomeTxns, expenseTxns []*transaction.Transaction
	for _, t := range txns {
		switch {
		case t.Amount > 0:
			incomeTxns = append(incomeTxns, t)
		case t.Amount < 0:
			expenseTxns = append(expenseTxns, t)
		}
	}

	incomeCats, income := bucket(incomeTxns)
	expenseCats, expenses := bucket(expenseTxns)

	return &MonthlySummary{
		Year:                 year,
		Month:                month,
		Income:               income.Round(2).InexactFloat64(),
		Expenses:             expenses.Round(2).InexactFloat64(),
		NetChange:            income.Sub(expenses).Round(2).InexactFloat64(),
		TopIncomeCategories:  top(incomeCats, TopCategoryLimit),
		TopExpenseCategories: top(expenseCats, TopCategoryLimit),
	}, nil
}

// bucket sums absolute amounts per category and returns the buckets sorted by
// amount descending (ties by name) together with the overall total.
func bucket(txns []*transaction.Transaction) ([]CategoryAmount, decimal.Decimal) {
	totals := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, t := range txns {
		amount := decimal.NewFromFloat(t.Amount).Abs()
		category := t.Category
		if category == "" {
			category = UncategorizedLabel
		}
		totals[category] = totals[category].Add(amount)
		total = total.Add(amount)
	}

	hundred := decimal.NewFromInt(100)
	out := make([]CategoryAmount, 0, len(totals))
	for category, amount := range totals {
		pct := decimal.Zero
		if total.IsPositive() {
			pct = amount.Div(total).Mul(hundred)
		}
		out = append(out, CategoryAmount{
			Category:   category,
			Amount:     amount.Round(2).InexactFloat64(),
			Percentage: pct.Round(2).InexactFloat64(),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	return out, total
}

func top(cats []CategoryAmount, n int) []CategoryAmount {
	if len(cats) > n {
		return cats[:n]
	}
	return cats
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
