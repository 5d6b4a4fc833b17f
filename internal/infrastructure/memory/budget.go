package memory

import (
	"context"
	"sort"

	"wealthtrackr/internal/domain/budget"
)

// BudgetRepo implements budget.Repository.
type BudgetRepo struct{ s *Store }

// ListByMonth returns the items of one budget month, ordered by ID.
func (r *BudgetRepo) ListByMonth(ctx context.Context, month string) ([]*budget.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*budget.Item, 0)
	for _, item := range r.s.budgetItems {
		if item.Month == month {
			copied := *item
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetByID returns the item or nil when it does not exist.
func (r *BudgetRepo) GetByID(ctx context.Context, id int64) (*budget.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.budgetItems[id]
	if !ok {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

// Create stores an item under the next numeric ID.
func (r *BudgetRepo) Create(ctx context.Context, params budget.CreateParams) (*budget.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item := &budget.Item{
		ID:      r.s.nextBudgetID,
		Amount:  params.Amount,
		Type:    params.Type,
		Section: params.Section,
		Month:   params.Month,
	}
	r.s.nextBudgetID++
	r.s.budgetItems[item.ID] = item

	copied := *item
	return &copied, nil
}

// Update applies the non-nil fields of params. It returns nil when the item does not exist.
func (r *BudgetRepo) Update(ctx context.Context, id int64, params budget.UpdateParams) (*budget.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.budgetItems[id]
	if !ok {
		return nil, nil
	}
	if params.Amount != nil {
		item.Amount = *params.Amount
	}
	if params.Type != nil {
		item.Type = *params.Type
	}
	if params.Section != nil {
		item.Section = *params.Section
	}
	if params.Month != nil {
		item.Month = *params.Month
	}

	copied := *item
	return &copied, nil
}

// Delete removes the item.
func (r *BudgetRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.budgetItems[id]; !ok {
		return budget.ErrBudgetItemNotFound
	}
	delete(r.s.budgetItems, id)
	return nil
}
