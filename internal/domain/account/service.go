package account

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// Service contains the business logic for account operations
type Service struct {
	repo Repository

	// serializes id allocation so two creates never derive the same acc-NNN
	createMu sync.Mutex
}

// NewService creates a new account service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListAccounts returns all accounts, optionally narrowed by type or institution.
func (s *Service) ListAccounts(ctx context.Context, filter Filter) ([]*Account, error) {
	return s.repo.List(ctx, filter)
}

// ListByType returns the accounts of one account type.
func (s *Service) ListByType(ctx context.Context, accountType string) ([]*Account, error) {
	return s.repo.List(ctx, Filter{Type: accountType})
}

// ListByInstitution returns the accounts held at one institution.
func (s *Service) ListByInstitution(ctx context.Context, institution string) ([]*Account, error) {
	return s.repo.List(ctx, Filter{Institution: institution})
}

// GetAccount retrieves an account by ID
func (s *Service) GetAccount(ctx context.Context, id string) (*Account, error) {
	acc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, ErrAccountNotFound
	}
	return acc, nil
}

// CreateAccount assigns the next sequential id and creates an active account.
func (s *Service) CreateAccount(ctx context.Context, params CreateParams) (*Account, error) {
	if params.Currency == "" {
		params.Currency = DefaultCurrency
	}
	params.Currency = strings.ToUpper(params.Currency)

	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, &params.Type, &params.Institution); err != nil {
		return nil, err
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	last, err := s.repo.LastSequentialID(ctx)
	if err != nil {
		return nil, err
	}
	params.ID = NextID(last)

	return s.repo.Create(ctx, params)
}

// UpdateAccount applies a partial update. Fields absent from params are untouched.
func (s *Service) UpdateAccount(ctx context.Context, id string, params UpdateParams) (*Account, error) {
	if params.Currency != nil {
		upper := strings.ToUpper(*params.Currency)
		params.Currency = &upper
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, params.Type, params.Institution); err != nil {
		return nil, err
	}

	acc, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, ErrAccountNotFound
	}
	return acc, nil
}

// TouchAccount refreshes the account's updated_at timestamp.
func (s *Service) TouchAccount(ctx context.Context, id string) error {
	return s.repo.Touch(ctx, id)
}

// DeleteAccount deletes an account and all of its transactions.
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// TotalBalance is the signed sum of every account balance.
func (s *Service) TotalBalance(ctx context.Context) (float64, error) {
	accounts, err := s.repo.List(ctx, Filter{})
	if err != nil {
		return 0, err
	}

	total := decimal.Zero
	for _, acc := range accounts {
		total = total.Add(decimal.NewFromFloat(acc.Balance))
	}
	return total.Round(2).InexactFloat64(), nil
}

// NetWorth is assets minus the absolute value of liabilities. It always equals
// TotalBalance; both entry points are kept for existing callers.
func (s *Service) NetWorth(ctx context.Context) (float64, error) {
	accounts, err := s.repo.List(ctx, Filter{})
	if err != nil {
		return 0, err
	}

	assets := decimal.Zero
	liabilities := decimal.Zero
	for _, acc := range accounts {
		balance := decimal.NewFromFloat(acc.Balance)
		if acc.IsLiability() {
			liabilities = liabilities.Add(balance.Abs())
		} else {
			assets = assets.Add(balance)
		}
	}
	return assets.Sub(liabilities).Round(2).InexactFloat64(), nil
}

// ListTypes returns the account type reference data.
func (s *Service) ListTypes(ctx context.Context) ([]AccountType, error) {
	return s.repo.ListTypes(ctx)
}

// ListInstitutions returns the institution reference data.
func (s *Service) ListInstitutions(ctx context.Context) ([]Institution, error) {
	return s.repo.ListInstitutions(ctx)
}

func (s *Service) checkReferences(ctx context.Context, accountType, institution *string) error {
	if accountType != nil {
		types, err := s.repo.ListTypes(ctx)
		if err != nil {
			return err
		}
		if !containsType(types, *accountType) {
			return fmt.Errorf("%w: %q", ErrInvalidAccountType, *accountType)
		}
	}
	if institution != nil {
		institutions, err := s.repo.ListInstitutions(ctx)
		if err != nil {
			return err
		}
		if !containsInstitution(institutions, *institution) {
			return fmt.Errorf("%w: %q", ErrInvalidInstitution, *institution)
		}
	}
	return nil
}

func containsType(types []AccountType, id string) bool {
	for _, t := range types {
		if t.ID == id {
			return true
		}
	}
	return false
}

func containsInstitution(institutions []Institution, id string) bool {
	for _, i := range institutions {
		if i.ID == id {
			return true
		}
	}
	return false
}
