// Package memory keeps every ledger entity in process memory. It backs
// STORAGE_DRIVER=memory and the service and handler tests.
package memory

import (
	"context"
	"sync"
	"time"

	"wealthtrackr/internal/domain/account"
	"wealthtrackr/internal/domain/bankconnection"
	"wealthtrackr/internal/domain/budget"
	"wealthtrackr/internal/domain/transaction"
)

// Store holds all entities behind one lock. The repositories it hands out share
// that lock so cascades stay consistent.
type Store struct {
	mu sync.RWMutex

	types        []account.AccountType
	institutions []account.Institution
	accounts     map[string]*account.Account
	transactions map[string]*transaction.Transaction
	budgetItems  map[int64]*budget.Item
	nextBudgetID int64
	connections  map[string]*bankconnection.Connection
	links        map[string]*bankconnection.Link

	now func() time.Time
}

// NewStore creates an empty store loaded with the account reference data.
func NewStore() *Store {
	return &Store{
		types:        append([]account.AccountType(nil), account.DefaultTypes...),
		institutions: append([]account.Institution(nil), account.DefaultInstitutions...),
		accounts:     make(map[string]*account.Account),
		transactions: make(map[string]*transaction.Transaction),
		budgetItems:  make(map[int64]*budget.Item),
		nextBudgetID: 1,
		connections:  make(map[string]*bankconnection.Connection),
		links:        make(map[string]*bankconnection.Link),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Seed inserts the sample accounts and budget items into empty tables.
func (s *Store) Seed(ctx context.Context) error {
	s.mu.RLock()
	accountsEmpty := len(s.accounts) == 0
	budgetEmpty := len(s.budgetItems) == 0
	s.mu.RUnlock()

	if accountsEmpty {
		repo := s.Accounts()
		for _, params := range account.SampleAccounts {
			if _, err := repo.Create(ctx, params); err != nil {
				return err
			}
		}
	}
	if budgetEmpty {
		repo := s.Budget()
		for _, params := range budget.SampleItems {
			if _, err := repo.Create(ctx, params); err != nil {
				return err
			}
		}
	}
	return nil
}

// Accounts returns the account repository, which is also the reconciliation ledger.
func (s *Store) Accounts() *AccountRepo { return &AccountRepo{s: s} }

// Transactions returns the transaction repository.
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{s: s} }

// Budget returns the budget repository.
func (s *Store) Budget() *BudgetRepo { return &BudgetRepo{s: s} }

// BankConnections returns the bank connection repository.
func (s *Store) BankConnections() *BankConnectionRepo { return &BankConnectionRepo{s: s} }

func (s *Store) typeName(id string) string {
	for _, t := range s.types {
		if t.ID == id {
			return t.Name
		}
	}
	return ""
}

func (s *Store) institutionName(id string) string {
	for _, inst := range s.institutions {
		if inst.ID == id {
			return inst.Name
		}
	}
	return ""
}
