package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"wealthtrackr/internal/domain/transaction"
)

const transactionColumns = `
	x.id, x.account_id, COALESCE(a.name, ''), x.date, x.amount, x.payee, x.category,
	x.description, x.is_income, x.is_reconciled, x.created_at, x.updated_at`

const transactionJoins = ` LEFT JOIN accounts a ON a.id = x.account_id`

const transactionOrder = ` ORDER BY x.date DESC, x.created_at DESC, x.id`

// TransactionRepository implements transaction.Repository for PostgreSQL
type TransactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func scanTransaction(row rowScanner) (*transaction.Transaction, error) {
	var t transaction.Transaction
	err := row.Scan(
		&t.ID, &t.AccountID, &t.AccountName, &t.Date, &t.Amount, &t.Payee, &t.Category,
		&t.Description, &t.IsIncome, &t.IsReconciled, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Date = t.Date.UTC()
	return &t, nil
}

func (r *TransactionRepository) query(ctx context.Context, where string, args ...any) ([]*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions x` + transactionJoins + where + transactionOrder

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txns := make([]*transaction.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txns, nil
}

// List returns every transaction
func (r *TransactionRepository) List(ctx context.Context) ([]*transaction.Transaction, error) {
	return r.query(ctx, "")
}

// GetByID retrieves a transaction by ID
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions x` + transactionJoins + ` WHERE x.id = $1`

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

// ListByAccount returns the transactions of one account
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string) ([]*transaction.Transaction, error) {
	return r.query(ctx, ` WHERE x.account_id = $1`, accountID)
}

// Filter returns the transactions matching every present predicate
func (r *TransactionRepository) Filter(ctx context.Context, f transaction.Filter) ([]*transaction.Transaction, error) {
	where, args := buildFilter(f)
	return r.query(ctx, where, args...)
}

// buildFilter renders f as a WHERE clause with positional arguments.
func buildFilter(f transaction.Filter) (string, []any) {
	var clauses []string
	var args []any

	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if f.AccountID != "" {
		add("x.account_id = $%d", f.AccountID)
	}
	if f.Category != "" {
		add("x.category = $%d", f.Category)
	}
	if f.StartDate != nil {
		add("x.date >= $%d::date", f.StartDate.Format(transaction.DateLayout))
	}
	if f.EndDate != nil {
		add("x.date <= $%d::date", f.EndDate.Format(transaction.DateLayout))
	}
	if f.MinAmount != nil {
		add("x.amount >= $%d", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		add("x.amount <= $%d", *f.MaxAmount)
	}
	if f.IsReconciled != nil {
		add("x.is_reconciled = $%d", *f.IsReconciled)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// Search matches query case-insensitively against description, category and payee
func (r *TransactionRepository) Search(ctx context.Context, query string) ([]*transaction.Transaction, error) {
	pattern := "%" + escapeLike(query) + "%"
	return r.query(ctx, ` WHERE x.description ILIKE $1 OR x.category ILIKE $1 OR x.payee ILIKE $1`, pattern)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Create creates a new transaction
func (r *TransactionRepository) Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	query := `
		WITH x AS (
			INSERT INTO transactions (id, account_id, date, amount, payee, category, description, is_income, is_reconciled)
			VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8, $9)
			RETURNING *
		)
		SELECT ` + transactionColumns + ` FROM x` + transactionJoins

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query,
		params.ID, params.AccountID, params.Date.Format(transaction.DateLayout), params.Amount,
		params.Payee, params.Category, params.Description, params.IsIncome, params.IsReconciled,
	))
	if isForeignKeyViolation(err) {
		return nil, fmt.Errorf("%w: account %s does not exist", transaction.ErrInvalidInput, params.AccountID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return t, nil
}

// Update applies the present fields and refreshes updated_at
func (r *TransactionRepository) Update(ctx context.Context, id string, params transaction.UpdateParams) (*transaction.Transaction, error) {
	var date *string
	if params.Date != nil {
		d := params.Date.Format(transaction.DateLayout)
		date = &d
	}

	query := `
		WITH x AS (
			UPDATE transactions
			SET account_id = COALESCE($1, account_id),
			    date = COALESCE($2::date, date),
			    amount = COALESCE($3, amount),
			    payee = COALESCE($4, payee),
			    category = COALESCE($5, category),
			    description = COALESCE($6, description),
			    is_reconciled = COALESCE($7, is_reconciled),
			    is_income = COALESCE($8, is_income),
			    updated_at = NOW()
			WHERE id = $9
			RETURNING *
		)
		SELECT ` + transactionColumns + ` FROM x` + transactionJoins

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query,
		params.AccountID, date, params.Amount, params.Payee, params.Category,
		params.Description, params.IsReconciled, params.IsIncome, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if isForeignKeyViolation(err) {
		return nil, fmt.Errorf("%w: target account does not exist", transaction.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	return t, nil
}

// Delete deletes a transaction
func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return expectOneRow(result, transaction.ErrTransactionNotFound)
}

// DistinctCategories returns the sorted, non-empty categories in use
func (r *TransactionRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT category FROM transactions WHERE category <> '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
