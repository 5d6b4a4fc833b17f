package transaction

import "context"

// Repository defines the interface for transaction data access.
// List-style methods return transactions ordered by date descending.
type Repository interface {
	// List returns every transaction
	List(ctx context.Context) ([]*Transaction, error)

	// GetByID returns nil, nil when the transaction does not exist
	GetByID(ctx context.Context, id string) (*Transaction, error)

	// ListByAccount returns the transactions of one account
	ListByAccount(ctx context.Context, accountID string) ([]*Transaction, error)

	// Filter returns transactions matching every predicate in f
	Filter(ctx context.Context, f Filter) ([]*Transaction, error)

	// Search performs a case-insensitive substring match over description, category and payee
	Search(ctx context.Context, query string) ([]*Transaction, error)

	// Create inserts a transaction
	Create(ctx context.Context, params CreateParams) (*Transaction, error)

	// Update applies a partial update; returns nil, nil when the transaction does not exist
	Update(ctx context.Context, id string, params UpdateParams) (*Transaction, error)

	// Delete removes a transaction; returns ErrTransactionNotFound when absent
	Delete(ctx context.Context, id string) error

	// DistinctCategories returns sorted, non-empty categories
	DistinctCategories(ctx context.Context) ([]string, error)
}
