package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"sort"

	"wealthtrackr/internal/domain/account"
	"wealthtrackr/internal/domain/budget"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies every embedded migration not yet recorded in schema_migrations.
// Each file runs in its own transaction.
func Migrate(ctx context.Context, db *DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		var applied bool
		err := db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, name,
		).Scan(&applied)
		if err != nil {
			return fmt.Errorf("failed to check migration %s: %w", name, err)
		}
		if applied {
			continue
		}

		body, err := migrationFiles.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		err = db.WithTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, string(body)); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, name)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
		log.Printf("Applied migration %s", name)
	}

	return upsertReferenceData(ctx, db)
}

// upsertReferenceData loads account types and institutions. It is idempotent.
func upsertReferenceData(ctx context.Context, db *DB) error {
	return db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, t := range account.DefaultTypes {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO account_types (id, name) VALUES ($1, $2)
				ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
			`, t.ID, t.Name); err != nil {
				return fmt.Errorf("failed to upsert account type %s: %w", t.ID, err)
			}
		}
		for _, inst := range account.DefaultInstitutions {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO institutions (id, name) VALUES ($1, $2)
				ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
			`, inst.ID, inst.Name); err != nil {
				return fmt.Errorf("failed to upsert institution %s: %w", inst.ID, err)
			}
		}
		return nil
	})
}

// Seed inserts the sample accounts and budget items when their tables are empty.
func Seed(ctx context.Context, db *DB) error {
	var accounts, items int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&accounts); err != nil {
		return fmt.Errorf("failed to count accounts: %w", err)
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM budget_items`).Scan(&items); err != nil {
		return fmt.Errorf("failed to count budget items: %w", err)
	}

	return db.WithTx(ctx, func(tx *sql.Tx) error {
		if accounts == 0 {
			for _, a := range account.SampleAccounts {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO accounts (id, name, type, institution, balance, currency, notes)
					VALUES ($1, $2, $3, $4, $5, $6, $7)
				`, a.ID, a.Name, a.Type, a.Institution, a.Balance, a.Currency, a.Notes); err != nil {
					return fmt.Errorf("failed to seed account %s: %w", a.ID, err)
				}
			}
			log.Printf("Seeded %d accounts", len(account.SampleAccounts))
		}

		if items == 0 {
			for _, item := range budget.SampleItems {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO budget_items (amount, type, section, month)
					VALUES ($1, $2, $3, $4)
				`, item.Amount, item.Type, item.Section, item.Month); err != nil {
					return fmt.Errorf("failed to seed budget item %s: %w", item.Type, err)
				}
			}
			log.Printf("Seeded %d budget items", len(budget.SampleItems))
		}
		return nil
	})
}
