package account

import "context"

// Repository defines the interface for account data access.
// This interface is defined in the domain layer, but implemented in the infrastructure layer.
// Read methods return nil, nil when the account does not exist.
type Repository interface {
	// List returns accounts matching the filter, ordered by id
	List(ctx context.Context, filter Filter) ([]*Account, error)

	// GetByID retrieves an account by its ID
	GetByID(ctx context.Context, id string) (*Account, error)

	// LastSequentialID returns the highest acc-NNN identifier, or "" when none exist
	LastSequentialID(ctx context.Context) (string, error)

	// Create inserts a new active account
	Create(ctx context.Context, params CreateParams) (*Account, error)

	// Update applies a partial update and refreshes updated_at
	Update(ctx context.Context, id string, params UpdateParams) (*Account, error)

	// Touch refreshes updated_at without changing any other field
	Touch(ctx context.Context, id string) error

	// Delete removes an account and, by cascade, its transactions
	Delete(ctx context.Context, id string) error

	// ListTypes returns the account type reference data
	ListTypes(ctx context.Context) ([]AccountType, error)

	// ListInstitutions returns the institution reference data
	ListInstitutions(ctx context.Context) ([]Institution, error)
}
