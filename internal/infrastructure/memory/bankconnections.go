package memory

import (
	"context"
	"sort"
	"time"

	"wealthtrackr/internal/domain/bankconnection"
)

// BankConnectionRepo implements bankconnection.Repository.
type BankConnectionRepo struct{ s *Store }

// List returns the connections, oldest first, optionally limited to one institution.
func (r *BankConnectionRepo) List(ctx context.Context, institutionID string) ([]*bankconnection.Connection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*bankconnection.Connection, 0, len(r.s.connections))
	for _, c := range r.s.connections {
		if institutionID != "" && c.InstitutionID != institutionID {
			continue
		}
		out = append(out, r.view(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetByID returns the connection or nil when it does not exist.
func (r *BankConnectionRepo) GetByID(ctx context.Context, id string) (*bankconnection.Connection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.connections[id]
	if !ok {
		return nil, nil
	}
	return r.view(c), nil
}

// Create stores a connection. A taken ID is rejected with bankconnection.ErrInvalidInput.
func (r *BankConnectionRepo) Create(ctx context.Context, params bankconnection.CreateParams) (*bankconnection.Connection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.connections[params.ID]; exists {
		return nil, bankconnection.ErrInvalidInput
	}

	now := r.s.now()
	c := &bankconnection.Connection{
		ID:            params.ID,
		InstitutionID: params.InstitutionID,
		AccessToken:   params.AccessToken,
		ItemID:        params.ItemID,
		Status:        params.Status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.s.connections[c.ID] = c
	return r.view(c), nil
}

// Update applies the non-nil fields of params. It returns nil when the connection does not exist.
func (r *BankConnectionRepo) Update(ctx context.Context, id string, params bankconnection.UpdateParams) (*bankconnection.Connection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.connections[id]
	if !ok {
		return nil, nil
	}
	if params.Status != nil {
		c.Status = *params.Status
	}
	if params.ErrorMessage != nil {
		c.ErrorMessage = *params.ErrorMessage
	}
	if params.LastSyncAt != nil {
		at := *params.LastSyncAt
		c.LastSyncAt = &at
	}
	c.UpdatedAt = r.s.now()
	return r.view(c), nil
}

// Delete removes the connection and its account links.
func (r *BankConnectionRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.connections[id]; !ok {
		return bankconnection.ErrConnectionNotFound
	}
	delete(r.s.connections, id)
	for lid, l := range r.s.links {
		if l.ConnectionID == id {
			delete(r.s.links, lid)
		}
	}
	return nil
}

// CreateLink links an account to a connection. Each pair may be linked once.
func (r *BankConnectionRepo) CreateLink(ctx context.Context, params bankconnection.LinkParams) (*bankconnection.Link, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.connections[params.ConnectionID]; !ok {
		return nil, bankconnection.ErrConnectionNotFound
	}
	if r.findLink(params.ConnectionID, params.AccountID) != nil {
		return nil, bankconnection.ErrLinkExists
	}

	now := r.s.now()
	l := &bankconnection.Link{
		ID:                params.ID,
		ConnectionID:      params.ConnectionID,
		AccountID:         params.AccountID,
		ExternalAccountID: params.ExternalAccountID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	r.s.links[l.ID] = l

	copied := *l
	return &copied, nil
}

// GetLink returns the link for the pair or nil when there is none.
func (r *BankConnectionRepo) GetLink(ctx context.Context, connectionID, accountID string) (*bankconnection.Link, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l := r.findLink(connectionID, accountID)
	if l == nil {
		return nil, nil
	}
	copied := *l
	return &copied, nil
}

// DeleteLink removes the link for the pair.
func (r *BankConnectionRepo) DeleteLink(ctx context.Context, connectionID, accountID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l := r.findLink(connectionID, accountID)
	if l == nil {
		return bankconnection.ErrLinkNotFound
	}
	delete(r.s.links, l.ID)
	return nil
}

// MarkLinkSynced records when the link was last synced.
func (r *BankConnectionRepo) MarkLinkSynced(ctx context.Context, linkID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.links[linkID]
	if !ok {
		return bankconnection.ErrLinkNotFound
	}
	l.LastSyncAt = &at
	l.UpdatedAt = r.s.now()
	return nil
}

// ListActiveLinks returns the links whose connection is active, ordered by ID.
func (r *BankConnectionRepo) ListActiveLinks(ctx context.Context) ([]*bankconnection.Link, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*bankconnection.Link, 0)
	for _, l := range r.s.links {
		c, ok := r.s.connections[l.ConnectionID]
		if !ok || c.Status != bankconnection.StatusActive {
			continue
		}
		copied := *l
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *BankConnectionRepo) findLink(connectionID, accountID string) *bankconnection.Link {
	for _, l := range r.s.links {
		if l.ConnectionID == connectionID && l.AccountID == accountID {
			return l
		}
	}
	return nil
}

func (r *BankConnectionRepo) view(c *bankconnection.Connection) *bankconnection.Connection {
	out := *c
	out.InstitutionName = r.s.institutionName(c.InstitutionID)
	out.ConnectedAccounts = make([]string, 0)
	for _, l := range r.s.links {
		if l.ConnectionID == c.ID {
			out.ConnectedAccounts = append(out.ConnectedAccounts, l.AccountID)
		}
	}
	sort.Strings(out.ConnectedAccounts)
	return &out
}
