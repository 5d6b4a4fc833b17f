package bankconnection

import (
	"context"
	"time"
)

// Provider is the bank-aggregation boundary. Implementations talk to a real
// aggregator or simulate one; the service never depends on a concrete provider.
type Provider interface {
	// IssueLinkToken returns a short-lived token for initializing the aggregator's link flow
	IssueLinkToken(ctx context.Context) (*LinkToken, error)

	// ExchangePublicToken trades a public token from the link flow for long-lived credentials
	ExchangePublicToken(ctx context.Context, publicToken string) (*Credentials, error)

	// FetchTransactions returns the transactions of one linked external account.
	// conn.AccessToken is the plaintext token.
	FetchTransactions(ctx context.Context, conn *Connection, link *Link) ([]ProviderTransaction, error)

	// SupportedInstitutions lists the institutions the aggregator can connect to
	SupportedInstitutions(ctx context.Context) ([]SupportedInstitution, error)
}

// LinkToken initializes the aggregator's account-linking flow.
type LinkToken struct {
	LinkToken  string    `json:"link_token"`
	Expiration time.Time `json:"expiration"`
}

// Credentials are the long-lived handles for a connection.
type Credentials struct {
	AccessToken string
	ItemID      string
}

// ProviderTransaction is a transaction as reported by the aggregator.
type ProviderTransaction struct {
	ExternalID  string
	Date        time.Time
	Amount      float64
	Payee       string
	Category    string
	Description string
}

// SupportedInstitution is an institution offered by the aggregator.
type SupportedInstitution struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}
