package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"wealthtrackr/internal/domain/account"
)

const accountColumns = `
	a.id, a.name, a.type, COALESCE(t.name, ''), a.institution, COALESCE(i.name, ''),
	a.balance, a.currency, a.is_active, a.notes, a.created_at, a.updated_at`

const accountJoins = `
	LEFT JOIN account_types t ON t.id = a.type
	LEFT JOIN institutions i ON i.id = a.institution`

// rowScanner is satisfied by *sql.Rows and *tracedRow.
type rowScanner interface {
	Scan(dest ...any) error
}

// AccountRepository implements account.Repository and reconcile.Ledger for PostgreSQL
type AccountRepository struct {
	db *DB
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func scanAccount(row rowScanner) (*account.Account, error) {
	var acc account.Account
	err := row.Scan(
		&acc.ID, &acc.Name, &acc.Type, &acc.TypeName, &acc.Institution, &acc.InstitutionName,
		&acc.Balance, &acc.Currency, &acc.IsActive, &acc.Notes, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// List retrieves accounts matching the filter
func (r *AccountRepository) List(ctx context.Context, filter account.Filter) ([]*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts a ` + accountJoins + `
		WHERE ($1 = '' OR a.type = $1)
		  AND ($2 = '' OR a.institution = $2)
		ORDER BY a.id
	`

	rows, err := r.db.QueryContext(ctx, query, filter.Type, filter.Institution)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts a ` + accountJoins + ` WHERE a.id = $1`

	acc, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acc, nil
}

// LastSequentialID returns the highest acc-NNN identifier
func (r *AccountRepository) LastSequentialID(ctx context.Context) (string, error) {
	query := `
		SELECT id FROM accounts
		WHERE id ~ '^acc-[0-9]+$'
		ORDER BY LENGTH(id) DESC, id DESC
		LIMIT 1
	`

	var id string
	err := r.db.QueryRowContext(ctx, query).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last account id: %w", err)
	}
	return id, nil
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, params account.CreateParams) (*account.Account, error) {
	query := `
		WITH a AS (
			INSERT INTO accounts (id, name, type, institution, balance, currency, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING *
		)
		SELECT ` + accountColumns + ` FROM a ` + accountJoins

	acc, err := scanAccount(r.db.QueryRowContext(ctx, query,
		params.ID, params.Name, params.Type, params.Institution, params.Balance, params.Currency, params.Notes,
	))
	if isForeignKeyViolation(err) || isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: %v", account.ErrInvalidInput, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return acc, nil
}

// Update applies the present fields and refreshes updated_at
func (r *AccountRepository) Update(ctx context.Context, id string, params account.UpdateParams) (*account.Account, error) {
	query := `
		WITH a AS (
			UPDATE accounts
			SET name = COALESCE($1, name),
			    type = COALESCE($2, type),
			    institution = COALESCE($3, institution),
			    balance = COALESCE($4, balance),
			    currency = COALESCE($5, currency),
			    is_active = COALESCE($6, is_active),
			    notes = COALESCE($7, notes),
			    updated_at = NOW()
			WHERE id = $8
			RETURNING *
		)
		SELECT ` + accountColumns + ` FROM a ` + accountJoins

	acc, err := scanAccount(r.db.QueryRowContext(ctx, query,
		params.Name, params.Type, params.Institution, params.Balance,
		params.Currency, params.IsActive, params.Notes, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if isForeignKeyViolation(err) {
		return nil, fmt.Errorf("%w: %v", account.ErrInvalidInput, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return acc, nil
}

// Touch refreshes updated_at
func (r *AccountRepository) Touch(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE accounts SET updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to touch account: %w", err)
	}
	return expectOneRow(result, account.ErrAccountNotFound)
}

// Delete deletes an account; transactions and links cascade
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return expectOneRow(result, account.ErrAccountNotFound)
}

// ListTypes returns the account type reference data
func (r *AccountRepository) ListTypes(ctx context.Context) ([]account.AccountType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM account_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list account types: %w", err)
	}
	defer rows.Close()

	var types []account.AccountType
	for rows.Next() {
		var t account.AccountType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan account type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// ListInstitutions returns the institution reference data
func (r *AccountRepository) ListInstitutions(ctx context.Context) ([]account.Institution, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM institutions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list institutions: %w", err)
	}
	defer rows.Close()

	var institutions []account.Institution
	for rows.Next() {
		var inst account.Institution
		if err := rows.Scan(&inst.ID, &inst.Name); err != nil {
			return nil, fmt.Errorf("failed to scan institution: %w", err)
		}
		institutions = append(institutions, inst)
	}
	return institutions, rows.Err()
}

// RecomputeBalance re-derives the balance from the account's transactions in a
// single statement.
func (r *AccountRepository) RecomputeBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	query := `
		UPDATE accounts
		SET balance = (SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE account_id = $1),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING balance
	`

	var balance decimal.Decimal
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(&balance)
	if err == sql.ErrNoRows {
		return decimal.Zero, account.ErrAccountNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to recompute balance: %w", err)
	}
	return balance, nil
}

// ListAccountIDs returns every account id
func (r *AccountRepository) ListAccountIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list account ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan account id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func expectOneRow(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
