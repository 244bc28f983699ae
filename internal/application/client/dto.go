package client

import (
	"time"

	"github.com/estudio-contable/backend/internal/domain/client"
	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateClientInput carries a new client
type CreateClientInput struct {
	Name         string
	CUIT         string
	RegisteredOn time.Time
	Contact      string
	TaxCondition *client.TaxCondition
	Active       *bool
	Recurring    bool
	MonthlyFee   *decimal.Decimal
}

// UpdateClientInput is a partial edit; nil fields are left unchanged.
type UpdateClientInput struct {
	Name         *string
	CUIT         *string
	RegisteredOn *time.Time
	Contact      *string
	TaxCondition *client.TaxCondition
	Active       *bool
	Recurring    *bool
	MonthlyFee   *decimal.Decimal
}

// ClientResponse is the API view of a client
type ClientResponse struct {
	ID           uuid.UUID            `json:"id"`
	OwnerID      uuid.UUID            `json:"userId"`
	Name         string               `json:"nombre"`
	CUIT         string               `json:"cuit"`
	RegisteredOn string               `json:"fechaAlta"`
	Contact      string               `json:"contacto"`
	TaxCondition *client.TaxCondition `json:"condicionFiscal"`
	Active       bool                 `json:"activo"`
	Recurring    bool                 `json:"esClienteFijo"`
	MonthlyFee   *decimal.Decimal     `json:"montoMensualidad"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// ToClientResponse converts a domain client
func ToClientResponse(c *client.Client) ClientResponse {
	return ClientResponse{
		ID:           c.ID,
		OwnerID:      c.OwnerID,
		Name:         c.Name,
		CUIT:         c.CUIT,
		RegisteredOn: c.RegisteredOn.Format(shared.ISODate),
		Contact:      c.Contact,
		TaxCondition: c.TaxCondition,
		Active:       c.Active,
		Recurring:    c.Recurring,
		MonthlyFee:   c.MonthlyFee,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// ToClientResponses converts a slice
func ToClientResponses(clients []client.Client) []ClientResponse {
	responses := make([]ClientResponse, len(clients))
	for i := range clients {
		responses[i] = ToClientResponse(&clients[i])
	}
	return responses
}

// StatsResponse counts an owner's clients
type StatsResponse struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"activos"`
	Inactive  int64 `json:"inactivos"`
	Recurring int64 `json:"fijos"`
}

// DeleteResponse confirms a deletion
type DeleteResponse struct {
	Message string `json:"message"`
}
