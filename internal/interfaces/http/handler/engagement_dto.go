package handler

import (
	"github.com/estudio-contable/backend/internal/domain/engagement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateEngagementRequest is the body of POST /operaciones
type CreateEngagementRequest struct {
	ClientID    uuid.UUID          `json:"clienteId" binding:"required"`
	Type        engagement.Type    `json:"tipo" binding:"required"`
	Description string             `json:"descripcion"`
	Notes       string             `json:"notas"`
	Fee         decimal.Decimal    `json:"honorarios"`
	GrossIncome *decimal.Decimal   `json:"ingresosBrutos"`
	PaidAmount  *decimal.Decimal   `json:"montoPagado"`
	Status      *engagement.Status `json:"estado"`
	StartDate   string             `json:"fechaInicio" binding:"required"`
	DueDate     *string            `json:"fechaLimite"`
}

// UpdateEngagementRequest is the body of PATCH /operaciones/:id
type UpdateEngagementRequest struct {
	ClientID    *uuid.UUID         `json:"clienteId"`
	Type        *engagement.Type   `json:"tipo"`
	Description *string            `json:"descripcion"`
	Notes       *string            `json:"notas"`
	Fee         *decimal.Decimal   `json:"honorarios"`
	GrossIncome *decimal.Decimal   `json:"ingresosBrutos"`
	PaidAmount  *decimal.Decimal   `json:"montoPagado"`
	Status      *engagement.Status `json:"estado"`
	StartDate   *string            `json:"fechaInicio"`
	DueDate     *string            `json:"fechaLimite"`
}

// ListEngagementsQuery filters GET /operaciones
type ListEngagementsQuery struct {
	Status   string `form:"estado"`
	ClientID string `form:"clienteId" binding:"omitempty,uuid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1"`
}

// UpcomingQuery is the query of GET /operaciones/proximos-vencimientos
type UpcomingQuery struct {
	Days int `form:"dias" binding:"omitempty,min=1,max=365"`
}

// ChangeStatusQuery is the query of PATCH /operaciones/:id/estado
type ChangeStatusQuery struct {
	Status string `form:"estado" binding:"required"`
}

// RecordPaymentRequest is the body of PATCH /operaciones/:id/pago
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"montoPago"`
}

// GenerateMonthlyRequest is the optional body of POST /operaciones/generar-mensuales
type GenerateMonthlyRequest struct {
	Day   *int `json:"dia"`
	Month *int `json:"mes"`
	Year  *int `json:"anio"`
}

// RecentRunsQuery is the query of GET /operaciones/generaciones
type RecentRunsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

// ExportQuery selects the export format
type ExportQuery struct {
	Format string `form:"formato"`
}
