package bankconnection

import (
	"context"
	"time"
)

// Repository defines the interface for bank connection data access.
// Read methods return nil, nil when the row does not exist.
type Repository interface {
	// List returns connections, filtered by institution when institutionID is not empty
	List(ctx context.Context, institutionID string) ([]*Connection, error)

	// GetByID retrieves a connection with its connected account ids
	GetByID(ctx context.Context, id string) (*Connection, error)

	// Create inserts a connection
	Create(ctx context.Context, params CreateParams) (*Connection, error)

	// Update applies a partial update; returns nil, nil when the connection does not exist
	Update(ctx context.Context, id string, params UpdateParams) (*Connection, error)

	// Delete removes a connection and, by cascade, its links
	Delete(ctx context.Context, id string) error

	// CreateLink links an account; returns ErrLinkExists for duplicates
	CreateLink(ctx context.Context, params LinkParams) (*Link, error)

	// GetLink returns the link between a connection and an account
	GetLink(ctx context.Context, connectionID, accountID string) (*Link, error)

	// DeleteLink removes a link; returns ErrLinkNotFound when absent
	DeleteLink(ctx context.Context, connectionID, accountID string) error

	// MarkLinkSynced stamps the link's last_sync_at
	MarkLinkSynced(ctx context.Context, linkID string, at time.Time) error

	// ListActiveLinks returns the links of every active connection
	ListActiveLinks(ctx context.Context) ([]*Link, error)
}
