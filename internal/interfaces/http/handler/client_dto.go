package handler

import (
	"github.com/estudio-contable/backend/internal/domain/client"
	"github.com/shopspring/decimal"
)

// CreateClientRequest is the body of POST /clientes
type CreateClientRequest struct {
	Name         string               `json:"nombre" binding:"required,max=255"`
	CUIT         string               `json:"cuit" binding:"required"`
	RegisteredOn string               `json:"fechaAlta" binding:"required"`
	Contact      string               `json:"contacto" binding:"max=255"`
	TaxCondition *client.TaxCondition `json:"condicionFiscal"`
	Active       *bool                `json:"activo"`
	Recurring    bool                 `json:"esClienteFijo"`
	MonthlyFee   *decimal.Decimal     `json:"montoMensualidad"`
}

// UpdateClientRequest is the body of PATCH /clientes/:id. Absent fields are
// left unchanged.
type UpdateClientRequest struct {
	Name         *string              `json:"nombre" binding:"omitempty,max=255"`
	CUIT         *string              `json:"cuit"`
	RegisteredOn *string              `json:"fechaAlta"`
	Contact      *string              `json:"contacto" binding:"omitempty,max=255"`
	TaxCondition *client.TaxCondition `json:"condicionFiscal"`
	Active       *bool                `json:"activo"`
	Recurring    *bool                `json:"esClienteFijo"`
	MonthlyFee   *decimal.Decimal     `json:"montoMensualidad"`
}

// ListClientsQuery filters GET /clientes
type ListClientsQuery struct {
	Active *bool `form:"activo"`
}

// SearchClientsQuery is the query of GET /clientes/search
type SearchClientsQuery struct {
	Query string `form:"q"`
}
