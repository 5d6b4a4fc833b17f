package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"wealthtrackr/internal/domain/budget"
)

// BudgetRepository implements budget.Repository for PostgreSQL
type BudgetRepository struct {
	db *DB
}

// NewBudgetRepository creates a new PostgreSQL budget repository
func NewBudgetRepository(db *DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

func scanBudgetItem(row rowScanner) (*budget.Item, error) {
	var item budget.Item
	if err := row.Scan(&item.ID, &item.Amount, &item.Type, &item.Section, &item.Month); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *BudgetRepository) ListByMonth(ctx context.Context, month string) ([]*budget.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount, type, section, month
		FROM budget_items
		WHERE month = $1
		ORDER BY id
	`, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list budget items: %w", err)
	}
	defer rows.Close()

	items := make([]*budget.Item, 0)
	for rows.Next() {
		item, err := scanBudgetItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *BudgetRepository) GetByID(ctx context.Context, id int64) (*budget.Item, error) {
	item, err := scanBudgetItem(r.db.QueryRowContext(ctx, `
		SELECT id, amount, type, section, month FROM budget_items WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget item: %w", err)
	}
	return item, nil
}

func (r *BudgetRepository) Create(ctx context.Context, params budget.CreateParams) (*budget.Item, error) {
	item, err := scanBudgetItem(r.db.QueryRowContext(ctx, `
		INSERT INTO budget_items (amount, type, section, month)
		VALUES ($1, $2, $3, $4)
		RETURNING id, amount, type, section, month
	`, params.Amount, params.Type, params.Section, params.Month))
	if err != nil {
		return nil, fmt.Errorf("failed to create budget item: %w", err)
	}
	return item, nil
}

func (r *BudgetRepository) Update(ctx context.Context, id int64, params budget.UpdateParams) (*budget.Item, error) {
	item, err := scanBudgetItem(r.db.QueryRowContext(ctx, `
		UPDATE budget_items
		SET amount = COALESCE($1, amount),
		    type = COALESCE($2, type),
		    section = COALESCE($3, section),
		    month = COALESCE($4, month)
		WHERE id = $5
		RETURNING id, amount, type, section, month
	`, params.Amount, params.Type, params.Section, params.Month, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update budget item: %w", err)
	}
	return item, nil
}

func (r *BudgetRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM budget_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete budget item: %w", err)
	}
	return expectOneRow(result, budget.ErrBudgetItemNotFound)
}
