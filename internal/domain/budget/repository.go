package budget

import "context"

// Repository defines the interface for budget data access
type Repository interface {
	// ListByMonth returns the items of one month ordered by id
	ListByMonth(ctx context.Context, month string) ([]*Item, error)

	// GetByID returns nil, nil when the item does not exist
	GetByID(ctx context.Context, id int64) (*Item, error)

	// Create inserts an item and assigns its id
	Create(ctx context.Context, params CreateParams) (*Item, error)

	// Update applies a partial update; returns nil, nil when the item does not exist
	Update(ctx context.Context, id int64, params UpdateParams) (*Item, error)

	// Delete removes an item; returns ErrBudgetItemNotFound when absent
	Delete(ctx context.Context, id int64) error
}
