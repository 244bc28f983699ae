package client

import (
	"context"
	"strings"

	"github.com/estudio-contable/backend/internal/domain/client"
	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/estudio-contable/backend/internal/infrastructure/logger"
	"github.com/estudio-contable/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EngagementCounter reports how many engagements reference a client
type EngagementCounter interface {
	CountByClient(ctx context.Context, ownerID, clientID uuid.UUID) (int64, error)
}

// ClientService manages the client registry of each owner
type ClientService struct {
	repo        client.Repository
	engagements EngagementCounter
	logger      *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(repo client.Repository, engagements EngagementCounter, log *zap.Logger) *ClientService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ClientService{repo: repo, engagements: engagements, logger: log}
}

// Create registers a client. The CUIT is unique across the whole registry.
func (s *ClientService) Create(ctx context.Context, ownerID uuid.UUID, input CreateClientInput) (*ClientResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "client", "create")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrOwnerID, ownerID.String())

	c, err := client.NewClient(ownerID, input.Name, input.CUIT, input.RegisteredOn, input.Contact)
	if err != nil {
		return nil, err
	}
	if err := c.SetTaxCondition(input.TaxCondition); err != nil {
		return nil, err
	}
	if err := c.ConfigureBilling(input.Recurring, input.MonthlyFee); err != nil {
		return nil, err
	}
	if input.Active != nil && !*input.Active {
		c.ToggleActive()
	}

	exists, err := s.repo.ExistsByCUIT(ctx, c.CUIT)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewPersistenceError("create_client", ownerID, c.CUIT, err)
	}
	if exists {
		return nil, client.ErrDuplicateCUIT
	}

	if err := s.repo.Save(ctx, c); err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewPersistenceError("create_client", ownerID, c.ID.String(), err)
	}
	telemetry.SetOK(span)

	resp := ToClientResponse(c)
	return &resp, nil
}

// List returns the owner's clients, newest first
func (s *ClientService) List(ctx context.Context, ownerID uuid.UUID, active *bool) ([]ClientResponse, error) {
	clients, err := s.repo.FindAllForOwner(ctx, ownerID, active)
	if err != nil {
		return nil, shared.NewPersistenceError("list_clients", ownerID, "", err)
	}
	return ToClientResponses(clients), nil
}

// Get returns one client of the owner
func (s *ClientService) Get(ctx context.Context, ownerID, id uuid.UUID) (*ClientResponse, error) {
	c, err := s.repo.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, shared.NewPersistenceError("get_client", ownerID, id.String(), err)
	}
	resp := ToClientResponse(c)
	return &resp, nil
}

// Update applies a partial edit. Recurring flag and fee are validated as a pair
// using the stored value for whichever side the edit leaves out.
func (s *ClientService) Update(ctx context.Context, ownerID, id uuid.UUID, input UpdateClientInput) (*ClientResponse, error) {
	c, err := s.repo.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, shared.NewPersistenceError("update_client", ownerID, id.String(), err)
	}

	if input.CUIT != nil && strings.TrimSpace(*input.CUIT) != c.CUIT {
		if err := c.ChangeCUIT(*input.CUIT); err != nil {
			return nil, err
		}
		exists, err := s.repo.ExistsByCUIT(ctx, c.CUIT)
		if err != nil {
			return nil, shared.NewPersistenceError("update_client", ownerID, c.CUIT, err)
		}
		if exists {
			return nil, client.ErrDuplicateCUIT
		}
	}
	if input.Name != nil {
		if err := c.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Contact != nil {
		if err := c.SetContact(*input.Contact); err != nil {
			return nil, err
		}
	}
	if input.RegisteredOn != nil {
		if err := c.SetRegisteredOn(*input.RegisteredOn); err != nil {
			return nil, err
		}
	}
	if input.TaxCondition != nil {
		if err := c.SetTaxCondition(input.TaxCondition); err != nil {
			return nil, err
		}
	}
	if input.Recurring != nil || input.MonthlyFee != nil {
		recurring, fee := c.Recurring, c.MonthlyFee
		if input.Recurring != nil {
			recurring = *input.Recurring
		}
		if input.MonthlyFee != nil {
			fee = input.MonthlyFee
		}
		if err := c.ConfigureBilling(recurring, fee); err != nil {
			return nil, err
		}
	}
	if input.Active != nil && *input.Active != c.Active {
		c.ToggleActive()
	}

	if err := s.repo.Save(ctx, c); err != nil {
		return nil, shared.NewPersistenceError("update_client", ownerID, id.String(), err)
	}
	resp := ToClientResponse(c)
	return &resp, nil
}

// Delete removes a client that has no engagements
func (s *ClientService) Delete(ctx context.Context, ownerID, id uuid.UUID) (*DeleteResponse, error) {
	if _, err := s.repo.FindByIDForOwner(ctx, ownerID, id); err != nil {
		return nil, shared.NewPersistenceError("delete_client", ownerID, id.String(), err)
	}
	count, err := s.engagements.CountByClient(ctx, ownerID, id)
	if err != nil {
		return nil, shared.NewPersistenceError("delete_client", ownerID, id.String(), err)
	}
	if count > 0 {
		logger.WithLogger(ctx, s.logger).Info("Client deletion blocked",
			zap.String("owner_id", ownerID.String()),
			zap.String("client_id", id.String()),
			zap.Int64("engagements", count),
		)
		return nil, client.ErrHasEngagements
	}
	if err := s.repo.DeleteForOwner(ctx, ownerID, id); err != nil {
		return nil, shared.NewPersistenceError("delete_client", ownerID, id.String(), err)
	}
	return &DeleteResponse{Message: "Cliente eliminado correctamente"}, nil
}

// ToggleActive flips the active flag
func (s *ClientService) ToggleActive(ctx context.Context, ownerID, id uuid.UUID) (*ClientResponse, error) {
	c, err := s.repo.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, shared.NewPersistenceError("toggle_client", ownerID, id.String(), err)
	}
	c.ToggleActive()
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, shared.NewPersistenceError("toggle_client", ownerID, id.String(), err)
	}
	resp := ToClientResponse(c)
	return &resp, nil
}

// Search matches name, CUIT and contact ignoring case and accents
func (s *ClientService) Search(ctx context.Context, ownerID uuid.UUID, query string) ([]ClientResponse, error) {
	folded := client.Fold(query)
	if folded == "" {
		return nil, client.ErrEmptySearch
	}
	clients, err := s.repo.Search(ctx, ownerID, folded)
	if err != nil {
		return nil, shared.NewPersistenceError("search_clients", ownerID, "", err)
	}
	return ToClientResponses(clients), nil
}

// Stats counts the owner's clients
func (s *ClientService) Stats(ctx context.Context, ownerID uuid.UUID) (*StatsResponse, error) {
	stats, err := s.repo.Stats(ctx, ownerID)
	if err != nil {
		return nil, shared.NewPersistenceError("client_stats", ownerID, "", err)
	}
	return &StatsResponse{
		Total:     stats.Total,
		Active:    stats.Active,
		Inactive:  stats.Inactive,
		Recurring: stats.Recurring,
	}, nil
}
