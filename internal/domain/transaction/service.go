package transaction

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"wealthtrackr/internal/domain/account"
)

// EventTransactionsImported is the routing key published after an import batch.
const EventTransactionsImported = "transactions.imported"

// maxLockAttempts bounds retries when a transaction moves between accounts
// while its locks are being acquired.
const maxLockAttempts = 3

// Reconciler serializes work per account and re-derives balances.
type Reconciler interface {
	Lock(ctx context.Context, accountIDs ...string) (func(), error)
	ReconcileHeld(ctx context.Context, accountIDs ...string) (map[string]float64, error)
}

// AccountLookup resolves accounts; GetByID returns nil, nil when absent.
type AccountLookup interface {
	GetByID(ctx context.Context, id string) (*account.Account, error)
}

// Publisher emits ledger events.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Imported is the payload of EventTransactionsImported.
type Imported struct {
	AccountID string  `json:"account_id"`
	Count     int     `json:"count"`
	Balance   float64 `json:"balance"`
}

// Service contains the business logic for transaction operations. Every
// mutation reconciles each affected account exactly once before returning.
type Service struct {
	repo       Repository
	accounts   AccountLookup
	reconciler Reconciler
	publisher  Publisher
	newID      func() string
}

// NewService creates a new transaction service. publisher may be nil.
func NewService(repo Repository, accounts AccountLookup, reconciler Reconciler, publisher Publisher) *Service {
	return &Service{
		repo:       repo,
		accounts:   accounts,
		reconciler: reconciler,
		publisher:  publisher,
		newID:      func() string { return uuid.New().String() },
	}
}

// ListTransactions returns every transaction, newest first.
func (s *Service) ListTransactions(ctx context.Context) ([]*Transaction, error) {
	return s.repo.List(ctx)
}

// GetTransaction retrieves a transaction by ID
func (s *Service) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	txn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, ErrTransactionNotFound
	}
	return txn, nil
}

// ListByAccount returns the transactions of one account, newest first.
func (s *Service) ListByAccount(ctx context.Context, accountID string) ([]*Transaction, error) {
	return s.repo.ListByAccount(ctx, accountID)
}

// FilterTransactions returns transactions satisfying every predicate of f.
func (s *Service) FilterTransactions(ctx context.Context, f Filter) ([]*Transaction, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Filter(ctx, f)
}

// SearchTransactions matches query case-insensitively against description,
// category and payee.
func (s *Service) SearchTransactions(ctx context.Context, query string) ([]*Transaction, error) {
	return s.repo.Search(ctx, query)
}

// Categories returns the sorted distinct categories in use.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.DistinctCategories(ctx)
}

// CreateTransaction creates a transaction and reconciles its account.
func (s *Service) CreateTransaction(ctx context.Context, params CreateParams) (*Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	release, err := s.reconciler.Lock(ctx, params.AccountID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.requireAccount(ctx, params.AccountID); err != nil {
		return nil, err
	}

	created, err := s.create(ctx, params)
	if err != nil {
		return nil, err
	}

	if _, err := s.reconciler.ReconcileHeld(ctx, created.AccountID); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateTransaction applies a partial update. When the amount changes IsIncome
// is re-derived; when the account changes both accounts are reconciled.
func (s *Service) UpdateTransaction(ctx context.Context, id string, params UpdateParams) (*Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.Amount != nil {
		isIncome := *params.Amount > 0
		params.IsIncome = &isIncome
	}

	var target string
	if params.AccountID != nil {
		target = *params.AccountID
	}

	current, release, err := s.lockTransaction(ctx, id, target)
	if err != nil {
		return nil, err
	}
	defer release()

	if target != "" && target != current.AccountID {
		if err := s.requireAccount(ctx, target); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrTransactionNotFound
	}

	if _, err := s.reconciler.ReconcileHeld(ctx, current.AccountID, updated.AccountID); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteTransaction removes a transaction and reconciles its account.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	current, release, err := s.lockTransaction(ctx, id, "")
	if err != nil {
		return err
	}
	defer release()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	_, err = s.reconciler.ReconcileHeld(ctx, current.AccountID)
	return err
}

// ImportTransactions creates every item under accountID and reconciles the
// account once at the end. Items created before a failing item are kept.
func (s *Service) ImportTransactions(ctx context.Context, accountID string, items []CreateParams) ([]*Transaction, error) {
	if accountID == "" {
		return nil, ErrAccountRequired
	}

	release, err := s.reconciler.Lock(ctx, accountID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}

	created := make([]*Transaction, 0, len(items))
	var importErr error
	for i, item := range items {
		item.AccountID = accountID
		if err := item.Validate(); err != nil {
			importErr = fmt.Errorf("item %d: %w", i, err)
			break
		}
		txn, err := s.create(ctx, item)
		if err != nil {
			importErr = fmt.Errorf("item %d: %w", i, err)
			break
		}
		created = append(created, txn)
	}

	if len(created) == 0 {
		return created, importErr
	}

	balances, err := s.reconciler.ReconcileHeld(ctx, accountID)
	if err != nil {
		return created, errors.Join(importErr, err)
	}

	if s.publisher != nil {
		event := Imported{AccountID: accountID, Count: len(created), Balance: balances[accountID]}
		if err := s.publisher.Publish(ctx, EventTransactionsImported, event); err != nil {
			log.Printf("Failed to publish import event for account %s: %v", accountID, err)
		}
	}

	return created, importErr
}

func (s *Service) create(ctx context.Context, params CreateParams) (*Transaction, error) {
	params.ID = s.newID()
	params.IsIncome = params.Amount > 0
	return s.repo.Create(ctx, params)
}

// lockTransaction locks the transaction's current account (and target, when set)
// and returns the transaction as read under those locks.
func (s *Service) lockTransaction(ctx context.Context, id, target string) (*Transaction, func(), error) {
	for attempt := 0; attempt < maxLockAttempts; attempt++ {
		before, err := s.GetTransaction(ctx, id)
		if err != nil {
			return nil, nil, err
		}

		release, err := s.reconciler.Lock(ctx, before.AccountID, target)
		if err != nil {
			return nil, nil, err
		}

		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			release()
			return nil, nil, err
		}
		if current == nil {
			release()
			return nil, nil, ErrTransactionNotFound
		}
		if current.AccountID == before.AccountID {
			return current, release, nil
		}
		release()
	}
	return nil, nil, fmt.Errorf("transaction %s kept moving between accounts", id)
}

func (s *Service) requireAccount(ctx context.Context, accountID string) error {
	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if acc == nil {
		return fmt.Errorf("%w: account %s does not exist", ErrInvalidInput, accountID)
	}
	return nil
}
