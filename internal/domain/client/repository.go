package client

import (
	"context"

	"github.com/estudio-contable/backend/internal/domain/engagement"
	"github.com/google/uuid"
)

// Stats counts an owner's clients
type Stats struct {
	Total     int64
	Active    int64
	Inactive  int64
	Recurring int64
}

// Repository is the Client Registry store.
type Repository interface {
	// FindByIDForOwner returns ErrNotFound when the client is unknown or foreign.
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Client, error)

	// FindAllForOwner lists clients newest first, optionally filtered by the active flag.
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, active *bool) ([]Client, error)

	// Search matches a folded query against the stored search key, ordered by name.
	Search(ctx context.Context, ownerID uuid.UUID, folded string) ([]Client, error)

	// ExistsByCUIT checks the global CUIT uniqueness constraint.
	ExistsByCUIT(ctx context.Context, cuit string) (bool, error)

	// FindActiveRecurring returns clients that are active and fixed.
	FindActiveRecurring(ctx context.Context, ownerID uuid.UUID) ([]engagement.RecurringClient, error)

	// NamesByID resolves display names for a set of clients.
	NamesByID(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]string, error)

	Stats(ctx context.Context, ownerID uuid.UUID) (*Stats, error)
	Save(ctx context.Context, c *Client) error
	DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error
}
