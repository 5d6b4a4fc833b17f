package bankconnection

import (
	"errors"
	"fmt"
	"time"
)

// Connection statuses
const (
	StatusActive       = "active"
	StatusPending      = "pending"
	StatusError        = "error"
	StatusDisconnected = "disconnected"
)

var validStatuses = map[string]struct{}{
	StatusActive:       {},
	StatusPending:      {},
	StatusError:        {},
	StatusDisconnected: {},
}

// Domain errors
var (
	ErrConnectionNotFound = errors.New("bank connection not found")
	ErrLinkNotFound       = errors.New("account link not found")
	ErrLinkExists         = errors.New("account is already linked to this connection")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidStatus      = errors.New("invalid connection status")
	ErrConnectionMismatch = errors.New("bank connection ID in path does not match request body")
	ErrProviderFailure    = errors.New("bank provider request failed")
)

// Connection is a link between the user and an institution at the bank
// aggregator. AccessToken holds the sealed token as stored.
type Connection struct {
	ID                string
	InstitutionID     string
	InstitutionName   string
	AccessToken       string
	ItemID            string
	Status            string
	LastSyncAt        *time.Time
	ErrorMessage      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ConnectedAccounts []string
}

// Link joins one external bank account to one internal account.
type Link struct {
	ID                string     `json:"id"`
	ConnectionID      string     `json:"bank_connection_id"`
	AccountID         string     `json:"account_id"`
	ExternalAccountID string     `json:"external_account_id"`
	LastSyncAt        *time.Time `json:"last_sync_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// CreateParams contains parameters for persisting a new connection
type CreateParams struct {
	ID            string
	InstitutionID string
	AccessToken   string
	ItemID        string
	Status        string
}

// UpdateParams is a partial update. Nil fields are left untouched.
type UpdateParams struct {
	Status       *string
	ErrorMessage *string
	LastSyncAt   *time.Time
}

// Validate validates the fields that are present.
func (p UpdateParams) Validate() error {
	if p.Status != nil && !IsValidStatus(*p.Status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, *p.Status)
	}
	return nil
}

// LinkParams contains parameters for linking an account
type LinkParams struct {
	ID                string
	ConnectionID      string
	AccountID         string
	ExternalAccountID string
}

// Validate validates the link parameters
func (p LinkParams) Validate() error {
	if p.ConnectionID == "" {
		return fmt.Errorf("%w: bank_connection_id is required", ErrInvalidInput)
	}
	if p.AccountID == "" {
		return fmt.Errorf("%w: account_id is required", ErrInvalidInput)
	}
	if p.ExternalAccountID == "" {
		return fmt.Errorf("%w: external_account_id is required", ErrInvalidInput)
	}
	return nil
}

// SyncResult reports the outcome of syncing one linked account.
type SyncResult struct {
	Success             bool      `json:"success"`
	Message             string    `json:"message"`
	TransactionsCreated int       `json:"transactions_created"`
	NewBalance          float64   `json:"new_balance"`
	LastSyncAt          time.Time `json:"last_sync_at"`
}

// IsValidStatus checks a connection status against the known set.
func IsValidStatus(s string) bool {
	_, ok := validStatuses[s]
	return ok
}
