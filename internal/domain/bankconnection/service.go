package bankconnection

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"wealthtrackr/internal/domain/account"
	"wealthtrackr/internal/domain/transaction"
)

// EventConnectionSynced is the routing key published after a successful sync.
const EventConnectionSynced = "bank_connection.synced"

// AccountLookup resolves and touches internal accounts.
type AccountLookup interface {
	GetByID(ctx context.Context, id string) (*account.Account, error)
	Touch(ctx context.Context, id string) error
	ListInstitutions(ctx context.Context) ([]account.Institution, error)
}

// TransactionImporter creates a batch of transactions under one account and
// reconciles it once.
type TransactionImporter interface {
	ImportTransactions(ctx context.Context, accountID string, items []transaction.CreateParams) ([]*transaction.Transaction, error)
}

// TokenCipher seals access tokens at rest.
type TokenCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Publisher emits ledger events.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Synced is the payload of EventConnectionSynced.
type Synced struct {
	ConnectionID        string    `json:"bank_connection_id"`
	AccountID           string    `json:"account_id"`
	TransactionsCreated int       `json:"transactions_created"`
	SyncedAt            time.Time `json:"synced_at"`
}

// Service contains the business logic for bank connections
type Service struct {
	repo      Repository
	provider  Provider
	accounts  AccountLookup
	importer  TransactionImporter
	cipher    TokenCipher
	publisher Publisher
	now       func() time.Time
}

// NewService creates a bank connection service. publisher may be nil.
func NewService(repo Repository, provider Provider, accounts AccountLookup, importer TransactionImporter, cipher TokenCipher, publisher Publisher) *Service {
	return &Service{
		repo:      repo,
		provider:  provider,
		accounts:  accounts,
		importer:  importer,
		cipher:    cipher,
		publisher: publisher,
		now:       time.Now,
	}
}

// ListConnections returns every connection, optionally for one institution.
func (s *Service) ListConnections(ctx context.Context, institutionID string) ([]*Connection, error) {
	return s.repo.List(ctx, institutionID)
}

// GetConnection retrieves a connection by ID
func (s *Service) GetConnection(ctx context.Context, id string) (*Connection, error) {
	conn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, ErrConnectionNotFound
	}
	return conn, nil
}

// CreateConnection exchanges the public token with the provider and stores the
// resulting credentials with the access token sealed.
func (s *Service) CreateConnection(ctx context.Context, institutionID, publicToken string) (*Connection, error) {
	if strings.TrimSpace(institutionID) == "" {
		return nil, fmt.Errorf("%w: institution_id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(publicToken) == "" {
		return nil, fmt.Errorf("%w: public_token is required", ErrInvalidInput)
	}
	if err := s.requireInstitution(ctx, institutionID); err != nil {
		return nil, err
	}

	creds, err := s.provider.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	sealed, err := s.cipher.Encrypt(creds.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to seal access token: %w", err)
	}

	return s.repo.Create(ctx, CreateParams{
		ID:            newConnectionID(),
		InstitutionID: institutionID,
		AccessToken:   sealed,
		ItemID:        creds.ItemID,
		Status:        StatusActive,
	})
}

// UpdateConnection changes status and error message.
func (s *Service) UpdateConnection(ctx context.Context, id string, params UpdateParams) (*Connection, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	conn, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, ErrConnectionNotFound
	}
	return conn, nil
}

// DeleteConnection removes a connection and its account links.
func (s *Service) DeleteConnection(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// LinkAccount links an internal account to an external account of the connection.
func (s *Service) LinkAccount(ctx context.Context, params LinkParams) (*Link, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.GetConnection(ctx, params.ConnectionID); err != nil {
		return nil, err
	}
	if err := s.requireAccount(ctx, params.AccountID); err != nil {
		return nil, err
	}

	params.ID = newLinkID()
	link, err := s.repo.CreateLink(ctx, params)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.Touch(ctx, params.AccountID); err != nil {
		log.Printf("Failed to touch account %s after linking: %v", params.AccountID, err)
	}
	return link, nil
}

// UnlinkAccount removes the link between a connection and an account.
func (s *Service) UnlinkAccount(ctx context.Context, connectionID, accountID string) error {
	if err := s.repo.DeleteLink(ctx, connectionID, accountID); err != nil {
		return err
	}

	if err := s.accounts.Touch(ctx, accountID); err != nil {
		log.Printf("Failed to touch account %s after unlinking: %v", accountID, err)
	}
	return nil
}

// SyncAccount pulls the provider's transactions for a linked account, imports
// them with a single reconciliation and stamps the sync time.
func (s *Service) SyncAccount(ctx context.Context, connectionID, accountID string) (*SyncResult, error) {
	conn, err := s.GetConnection(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}

	link, err := s.repo.GetLink(ctx, connectionID, accountID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}

	token, err := s.cipher.Decrypt(conn.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to open access token: %w", err)
	}
	plain := *conn
	plain.AccessToken = token

	fetched, err := s.provider.FetchTransactions(ctx, &plain, link)
	if err != nil {
		s.markFailed(ctx, connectionID, err)
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	items := make([]transaction.CreateParams, 0, len(fetched))
	for _, ft := range fetched {
		items = append(items, transaction.CreateParams{
			Date:        ft.Date,
			Amount:      ft.Amount,
			Payee:       ft.Payee,
			Category:    ft.Category,
			Description: ft.Description,
		})
	}

	created, err := s.importer.ImportTransactions(ctx, accountID, items)
	if err != nil {
		return nil, fmt.Errorf("failed to import synced transactions: %w", err)
	}

	now := s.now().UTC()
	if err := s.repo.MarkLinkSynced(ctx, link.ID, now); err != nil {
		return nil, err
	}
	status := StatusActive
	cleared := ""
	if _, err := s.repo.Update(ctx, connectionID, UpdateParams{Status: &status, ErrorMessage: &cleared, LastSyncAt: &now}); err != nil {
		return nil, err
	}

	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, account.ErrAccountNotFound
	}

	if s.publisher != nil {
		event := Synced{ConnectionID: connectionID, AccountID: accountID, TransactionsCreated: len(created), SyncedAt: now}
		if err := s.publisher.Publish(ctx, EventConnectionSynced, event); err != nil {
			log.Printf("Failed to publish sync event for connection %s: %v", connectionID, err)
		}
	}

	return &SyncResult{
		Success:             true,
		Message:             fmt.Sprintf("Synced %d transactions successfully", len(created)),
		TransactionsCreated: len(created),
		NewBalance:          acc.Balance,
		LastSyncAt:          now,
	}, nil
}

// ListSyncTargets returns the links of every active connection.
func (s *Service) ListSyncTargets(ctx context.Context) ([]*Link, error) {
	return s.repo.ListActiveLinks(ctx)
}

// IssueLinkToken asks the provider for a link-flow token.
func (s *Service) IssueLinkToken(ctx context.Context) (*LinkToken, error) {
	token, err := s.provider.IssueLinkToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	return token, nil
}

// SupportedInstitutions lists the institutions the provider supports.
func (s *Service) SupportedInstitutions(ctx context.Context) ([]SupportedInstitution, error) {
	return s.provider.SupportedInstitutions(ctx)
}

func (s *Service) markFailed(ctx context.Context, connectionID string, cause error) {
	status := StatusError
	message := cause.Error()
	if _, err := s.repo.Update(ctx, connectionID, UpdateParams{Status: &status, ErrorMessage: &message}); err != nil {
		log.Printf("Failed to record sync error for connection %s: %v", connectionID, err)
	}
}

func (s *Service) requireAccount(ctx context.Context, accountID string) error {
	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if acc == nil {
		return account.ErrAccountNotFound
	}
	return nil
}

func (s *Service) requireInstitution(ctx context.Context, institutionID string) error {
	institutions, err := s.accounts.ListInstitutions(ctx)
	if err != nil {
		return err
	}
	for _, inst := range institutions {
		if inst.ID == institutionID {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown institution %q", ErrInvalidInput, institutionID)
}

func newConnectionID() string {
	return "conn-" + shortHex()
}

func newLinkID() string {
	return "link-" + shortHex()
}

func shortHex() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
