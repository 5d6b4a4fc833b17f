package memory

import (
	"context"
	"fmt"
	"sort"

	"wealthtrackr/internal/domain/transaction"
)

// TransactionRepo implements transaction.Repository.
type TransactionRepo struct{ s *Store }

// List returns all transactions, newest first.
func (r *TransactionRepo) List(ctx context.Context) ([]*transaction.Transaction, error) {
	return r.collect(func(*transaction.Transaction) bool { return true }), nil
}

// GetByID returns the transaction or nil when it does not exist.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*transaction.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.transactions[id]
	if !ok {
		return nil, nil
	}
	return r.view(t), nil
}

// ListByAccount returns the transactions of one account, newest first.
func (r *TransactionRepo) ListByAccount(ctx context.Context, accountID string) ([]*transaction.Transaction, error) {
	return r.collect(func(t *transaction.Transaction) bool { return t.AccountID == accountID }), nil
}

// Filter returns the transactions matching f, newest first.
func (r *TransactionRepo) Filter(ctx context.Context, f transaction.Filter) ([]*transaction.Transaction, error) {
	return r.collect(f.Matches), nil
}

// Search returns the transactions whose payee, category or description
// contains query, ignoring case.
func (r *TransactionRepo) Search(ctx context.Context, query string) ([]*transaction.Transaction, error) {
	return r.collect(func(t *transaction.Transaction) bool { return transaction.MatchesText(t, query) }), nil
}

// Create stores a transaction. The account must exist.
func (r *TransactionRepo) Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accounts[params.AccountID]; !ok {
		return nil, fmt.Errorf("%w: account %s does not exist", transaction.ErrInvalidInput, params.AccountID)
	}

	now := r.s.now()
	t := &transaction.Transaction{
		ID:           params.ID,
		AccountID:    params.AccountID,
		Date:         params.Date,
		Amount:       params.Amount,
		Payee:        params.Payee,
		Category:     params.Category,
		Description:  params.Description,
		IsIncome:     params.IsIncome,
		IsReconciled: params.IsReconciled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.s.transactions[t.ID] = t
	return r.view(t), nil
}

// Update applies the non-nil fields of params. It returns nil when the
// transaction does not exist and rejects a move to an unknown account.
func (r *TransactionRepo) Update(ctx context.Context, id string, params transaction.UpdateParams) (*transaction.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.transactions[id]
	if !ok {
		return nil, nil
	}
	if params.AccountID != nil {
		if _, exists := r.s.accounts[*params.AccountID]; !exists {
			return nil, fmt.Errorf("%w: account %s does not exist", transaction.ErrInvalidInput, *params.AccountID)
		}
		t.AccountID = *params.AccountID
	}
	if params.Date != nil {
		t.Date = *params.Date
	}
	if params.Amount != nil {
		t.Amount = *params.Amount
	}
	if params.Payee != nil {
		t.Payee = *params.Payee
	}
	if params.Category != nil {
		t.Category = *params.Category
	}
	if params.Description != nil {
		t.Description = *params.Description
	}
	if params.IsReconciled != nil {
		t.IsReconciled = *params.IsReconciled
	}
	if params.IsIncome != nil {
		t.IsIncome = *params.IsIncome
	}
	t.UpdatedAt = r.s.now()
	return r.view(t), nil
}

// Delete removes the transaction. It does not touch the account balance.
func (r *TransactionRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.transactions[id]; !ok {
		return transaction.ErrTransactionNotFound
	}
	delete(r.s.transactions, id)
	return nil
}

// DistinctCategories returns the non-empty categories in use, sorted.
func (r *TransactionRepo) DistinctCategories(ctx context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, t := range r.s.transactions {
		if t.Category != "" {
			seen[t.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

// collect returns matching transactions, newest first.
func (r *TransactionRepo) collect(match func(*transaction.Transaction) bool) []*transaction.Transaction {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*transaction.Transaction, 0)
	for _, t := range r.s.transactions {
		if match(t) {
			out = append(out, r.view(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *TransactionRepo) view(t *transaction.Transaction) *transaction.Transaction {
	out := *t
	if a, ok := r.s.accounts[t.AccountID]; ok {
		out.AccountName = a.Name
	}
	return &out
}
