package budget

import (
	"context"
	"strings"
	"time"
)

// Service contains the business logic for budget operations
type Service struct {
	repo         Repository
	defaultMonth string
	now          func() time.Time
}

// NewService creates a budget service. An empty defaultMonth falls back to the
// current calendar month.
func NewService(repo Repository, defaultMonth string) *Service {
	return &Service{repo: repo, defaultMonth: defaultMonth, now: time.Now}
}

// GetBudget returns the items of month, or of the default month when empty.
func (s *Service) GetBudget(ctx context.Context, month string) (*Budget, error) {
	month = s.resolveMonth(month)

	items, err := s.repo.ListByMonth(ctx, month)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Item{}
	}
	return &Budget{Month: month, Items: items}, nil
}

// CreateItem adds a budget line; an empty month uses the default month.
func (s *Service) CreateItem(ctx context.Context, params CreateParams) (*Item, error) {
	params.Month = s.resolveMonth(params.Month)
	params.Section = strings.ToLower(strings.TrimSpace(params.Section))
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, params)
}

// UpdateItem applies a partial update to a budget line.
func (s *Service) UpdateItem(ctx context.Context, id int64, params UpdateParams) (*Item, error) {
	if params.Section != nil {
		section := strings.ToLower(strings.TrimSpace(*params.Section))
		params.Section = &section
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	item, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrBudgetItemNotFound
	}
	return item, nil
}

// DeleteItem removes a budget line.
func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) resolveMonth(month string) string {
	month = strings.TrimSpace(month)
	if month != "" {
		return month
	}
	if s.defaultMonth != "" {
		return s.defaultMonth
	}
	return MonthLabel(s.now())
}
