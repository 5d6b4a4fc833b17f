package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"wealthtrackr/internal/domain/bankconnection"
)

const connectionColumns = `
	c.id, c.institution_id, COALESCE(i.name, ''), c.access_token, c.item_id, c.status,
	c.last_sync_at, c.error_message, c.created_at, c.updated_at,
	COALESCE((SELECT array_agg(l.account_id ORDER BY l.account_id)
	          FROM bank_connection_accounts l WHERE l.bank_connection_id = c.id), '{}')`

const connectionJoins = ` LEFT JOIN institutions i ON i.id = c.institution_id`

const linkColumns = `id, bank_connection_id, account_id, external_account_id, last_sync_at, created_at, updated_at`

// BankConnectionRepository implements bankconnection.Repository for PostgreSQL
type BankConnectionRepository struct {
	db *DB
}

// NewBankConnectionRepository creates a new PostgreSQL bank connection repository
func NewBankConnectionRepository(db *DB) *BankConnectionRepository {
	return &BankConnectionRepository{db: db}
}

func scanConnection(row rowScanner) (*bankconnection.Connection, error) {
	var c bankconnection.Connection
	var lastSync sql.NullTime
	var accounts pq.StringArray

	err := row.Scan(
		&c.ID, &c.InstitutionID, &c.InstitutionName, &c.AccessToken, &c.ItemID, &c.Status,
		&lastSync, &c.ErrorMessage, &c.CreatedAt, &c.UpdatedAt, &accounts,
	)
	if err != nil {
		return nil, err
	}

	if lastSync.Valid {
		t := lastSync.Time
		c.LastSyncAt = &t
	}
	c.ConnectedAccounts = []string(accounts)
	if c.ConnectedAccounts == nil {
		c.ConnectedAccounts = []string{}
	}
	return &c, nil
}

func scanLink(row rowScanner) (*bankconnection.Link, error) {
	var l bankconnection.Link
	var lastSync sql.NullTime

	err := row.Scan(&l.ID, &l.ConnectionID, &l.AccountID, &l.ExternalAccountID, &lastSync, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastSync.Valid {
		t := lastSync.Time
		l.LastSyncAt = &t
	}
	return &l, nil
}

func (r *BankConnectionRepository) List(ctx context.Context, institutionID string) ([]*bankconnection.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM bank_connections c` + connectionJoins + `
		WHERE ($1 = '' OR c.institution_id = $1)
		ORDER BY c.created_at, c.id
	`

	rows, err := r.db.QueryContext(ctx, query, institutionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank connections: %w", err)
	}
	defer rows.Close()

	conns := make([]*bankconnection.Connection, 0)
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bank connection: %w", err)
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

func (r *BankConnectionRepository) GetByID(ctx context.Context, id string) (*bankconnection.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM bank_connections c` + connectionJoins + ` WHERE c.id = $1`

	c, err := scanConnection(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bank connection: %w", err)
	}
	return c, nil
}

func (r *BankConnectionRepository) Create(ctx context.Context, params bankconnection.CreateParams) (*bankconnection.Connection, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bank_connections (id, institution_id, access_token, item_id, status)
		VALUES ($1, $2, $3, $4, $5)
	`, params.ID, params.InstitutionID, params.AccessToken, params.ItemID, params.Status)
	if isForeignKeyViolation(err) || isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: %v", bankconnection.ErrInvalidInput, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create bank connection: %w", err)
	}
	return r.GetByID(ctx, params.ID)
}

func (r *BankConnectionRepository) Update(ctx context.Context, id string, params bankconnection.UpdateParams) (*bankconnection.Connection, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bank_connections
		SET status = COALESCE($1, status),
		    error_message = COALESCE($2, error_message),
		    last_sync_at = COALESCE($3, last_sync_at),
		    updated_at = NOW()
		WHERE id = $4
	`, params.Status, params.ErrorMessage, params.LastSyncAt, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update bank connection: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *BankConnectionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bank_connections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bank connection: %w", err)
	}
	return expectOneRow(result, bankconnection.ErrConnectionNotFound)
}

func (r *BankConnectionRepository) CreateLink(ctx context.Context, params bankconnection.LinkParams) (*bankconnection.Link, error) {
	l, err := scanLink(r.db.QueryRowContext(ctx, `
		INSERT INTO bank_connection_accounts (id, bank_connection_id, account_id, external_account_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+linkColumns,
		params.ID, params.ConnectionID, params.AccountID, params.ExternalAccountID,
	))
	if isUniqueViolation(err) {
		return nil, bankconnection.ErrLinkExists
	}
	if isForeignKeyViolation(err) {
		return nil, fmt.Errorf("%w: %v", bankconnection.ErrInvalidInput, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to link account: %w", err)
	}
	return l, nil
}

func (r *BankConnectionRepository) GetLink(ctx context.Context, connectionID, accountID string) (*bankconnection.Link, error) {
	l, err := scanLink(r.db.QueryRowContext(ctx, `
		SELECT `+linkColumns+`
		FROM bank_connection_accounts
		WHERE bank_connection_id = $1 AND account_id = $2
	`, connectionID, accountID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account link: %w", err)
	}
	return l, nil
}

func (r *BankConnectionRepository) DeleteLink(ctx context.Context, connectionID, accountID string) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM bank_connection_accounts WHERE bank_connection_id = $1 AND account_id = $2
	`, connectionID, accountID)
	if err != nil {
		return fmt.Errorf("failed to unlink account: %w", err)
	}
	return expectOneRow(result, bankconnection.ErrLinkNotFound)
}

func (r *BankConnectionRepository) MarkLinkSynced(ctx context.Context, linkID string, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bank_connection_accounts SET last_sync_at = $1, updated_at = NOW() WHERE id = $2
	`, at, linkID)
	if err != nil {
		return fmt.Errorf("failed to mark link synced: %w", err)
	}
	return expectOneRow(result, bankconnection.ErrLinkNotFound)
}

func (r *BankConnectionRepository) ListActiveLinks(ctx context.Context) ([]*bankconnection.Link, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT l.id, l.bank_connection_id, l.account_id, l.external_account_id, l.last_sync_at, l.created_at, l.updated_at
		FROM bank_connection_accounts l
		JOIN bank_connections c ON c.id = l.bank_connection_id
		WHERE c.status = $1
		ORDER BY l.id
	`, bankconnection.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active links: %w", err)
	}
	defer rows.Close()

	links := make([]*bankconnection.Link, 0)
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}
