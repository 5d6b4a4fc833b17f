package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"wealthtrackr/internal/domain/account"
)

// AccountRepo implements account.Repository and reconcile.Ledger.
type AccountRepo struct{ s *Store }

// List returns the accounts matching filter, ordered by ID.
func (r *AccountRepo) List(ctx context.Context, filter account.Filter) ([]*account.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*account.Account, 0, len(r.s.accounts))
	for _, a := range r.s.accounts {
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		if filter.Institution != "" && a.Institution != filter.Institution {
			continue
		}
		out = append(out, r.view(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetByID returns the account or nil when it does not exist.
func (r *AccountRepo) GetByID(ctx context.Context, id string) (*account.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.accounts[id]
	if !ok {
		return nil, nil
	}
	return r.view(a), nil
}

// LastSequentialID returns the highest acc-NNN ID, or "" when there is none.
func (r *AccountRepo) LastSequentialID(ctx context.Context) (string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	last, best := "", 0
	for id := range r.s.accounts {
		if !strings.HasPrefix(id, account.IDPrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(id, account.IDPrefix))
		if err != nil || n <= best {
			continue
		}
		last, best = id, n
	}
	return last, nil
}

// Create stores a new active account. A taken ID is rejected with account.ErrInvalidInput.
func (r *AccountRepo) Create(ctx context.Context, params account.CreateParams) (*account.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.accounts[params.ID]; exists {
		return nil, account.ErrInvalidInput
	}

	now := r.s.now()
	a := &account.Account{
		ID:          params.ID,
		Name:        params.Name,
		Type:        params.Type,
		Institution: params.Institution,
		Balance:     params.Balance,
		Currency:    params.Currency,
		IsActive:    true,
		Notes:       params.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.s.accounts[a.ID] = a
	return r.view(a), nil
}

// Update applies the non-nil fields of params. It returns nil when the account does not exist.
func (r *AccountRepo) Update(ctx context.Context, id string, params account.UpdateParams) (*account.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.accounts[id]
	if !ok {
		return nil, nil
	}
	if params.Name != nil {
		a.Name = *params.Name
	}
	if params.Type != nil {
		a.Type = *params.Type
	}
	if params.Institution != nil {
		a.Institution = *params.Institution
	}
	if params.Balance != nil {
		a.Balance = *params.Balance
	}
	if params.Currency != nil {
		a.Currency = *params.Currency
	}
	if params.IsActive != nil {
		a.IsActive = *params.IsActive
	}
	if params.Notes != nil {
		a.Notes = *params.Notes
	}
	a.UpdatedAt = r.s.now()
	return r.view(a), nil
}

// Touch bumps UpdatedAt.
func (r *AccountRepo) Touch(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.accounts[id]
	if !ok {
		return account.ErrAccountNotFound
	}
	a.UpdatedAt = r.s.now()
	return nil
}

// Delete removes the account together with its transactions and links.
func (r *AccountRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accounts[id]; !ok {
		return account.ErrAccountNotFound
	}
	delete(r.s.accounts, id)
	for tid, t := range r.s.transactions {
		if t.AccountID == id {
			delete(r.s.transactions, tid)
		}
	}
	for lid, l := range r.s.links {
		if l.AccountID == id {
			delete(r.s.links, lid)
		}
	}
	return nil
}

// ListTypes returns the account type reference data.
func (r *AccountRepo) ListTypes(ctx context.Context) ([]account.AccountType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]account.AccountType(nil), r.s.types...), nil
}

// ListInstitutions returns the institution reference data.
func (r *AccountRepo) ListInstitutions(ctx context.Context) ([]account.Institution, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]account.Institution(nil), r.s.institutions...), nil
}

// RecomputeBalance sets the balance to the sum of the account's transactions.
func (r *AccountRepo) RecomputeBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.accounts[accountID]
	if !ok {
		return decimal.Zero, account.ErrAccountNotFound
	}

	sum := decimal.Zero
	for _, t := range r.s.transactions {
		if t.AccountID == accountID {
			sum = sum.Add(decimal.NewFromFloat(t.Amount))
		}
	}
	a.Balance = sum.Round(2).InexactFloat64()
	a.UpdatedAt = r.s.now()
	return sum, nil
}

// ListAccountIDs returns every account ID in order.
func (r *AccountRepo) ListAccountIDs(ctx context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]string, 0, len(r.s.accounts))
	for id := range r.s.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// view copies a stored account and resolves its reference names. Callers hold the lock.
func (r *AccountRepo) view(a *account.Account) *account.Account {
	out := *a
	out.TypeName = r.s.typeName(a.Type)
	out.InstitutionName = r.s.institutionName(a.Institution)
	return &out
}
