package engagement

import (
	"time"

	"github.com/estudio-contable/backend/internal/domain/engagement"
	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateEngagementInput carries a new manually entered engagement
type CreateEngagementInput struct {
	ClientID    uuid.UUID
	Type        engagement.Type
	Description string
	Notes       string
	Fee         decimal.Decimal
	GrossIncome *decimal.Decimal
	PaidAmount  *decimal.Decimal
	Status      *engagement.Status
	StartDate   time.Time
	DueDate     *time.Time
}

// UpdateEngagementInput is a partial edit; nil fields are left unchanged.
type UpdateEngagementInput struct {
	ClientID    *uuid.UUID
	Type        *engagement.Type
	Description *string
	Notes       *string
	Fee         *decimal.Decimal
	GrossIncome *decimal.Decimal
	PaidAmount  *decimal.Decimal
	Status      *engagement.Status
	StartDate   *time.Time
	DueDate     *time.Time
}

// ListEngagementsInput filters a listing
type ListEngagementsInput struct {
	Status   *engagement.Status
	ClientID *uuid.UUID
	Page     int
	Limit    int
}

// EngagementResponse is the API view of an engagement
type EngagementResponse struct {
	ID          uuid.UUID         `json:"id"`
	OwnerID     uuid.UUID         `json:"userId"`
	ClientID    uuid.UUID         `json:"clienteId"`
	ClientName  string            `json:"clienteNombre,omitempty"`
	Type        engagement.Type   `json:"tipo"`
	Description string            `json:"descripcion,omitempty"`
	Notes       string            `json:"notas,omitempty"`
	Fee         decimal.Decimal   `json:"honorarios"`
	GrossIncome decimal.Decimal   `json:"ingresosBrutos"`
	TotalAmount decimal.Decimal   `json:"montoTotal"`
	PaidAmount  decimal.Decimal   `json:"montoPagado"`
	Remaining   decimal.Decimal   `json:"montoRestante"`
	Status      engagement.Status `json:"estado"`
	Recurring   bool              `json:"esMensualidad"`
	StartDate   string            `json:"fechaInicio"`
	DueDate     *string           `json:"fechaLimite"`
	CompletedOn *string           `json:"fechaCompletado"`
	Overdue     bool              `json:"vencida"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// ToEngagementResponse converts a domain engagement
func ToEngagementResponse(e *engagement.Engagement) EngagementResponse {
	return EngagementResponse{
		ID:          e.ID,
		OwnerID:     e.OwnerID,
		ClientID:    e.ClientID,
		ClientName:  e.ClientName,
		Type:        e.Type,
		Description: e.Description,
		Notes:       e.Notes,
		Fee:         e.Fee,
		GrossIncome: e.GrossIncome,
		TotalAmount: e.TotalAmount,
		PaidAmount:  e.PaidAmount,
		Remaining:   e.RemainingAmount(),
		Status:      e.Status,
		Recurring:   e.Recurring,
		StartDate:   e.StartDate.Format(shared.ISODate),
		DueDate:     formatDatePtr(e.DueDate),
		CompletedOn: formatDatePtr(e.CompletedOn),
		Overdue:     e.IsOverdue(shared.Today()),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// ToEngagementResponses converts a slice
func ToEngagementResponses(engagements []engagement.Engagement) []EngagementResponse {
	responses := make([]EngagementResponse, len(engagements))
	for i := range engagements {
		responses[i] = ToEngagementResponse(&engagements[i])
	}
	return responses
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(shared.ISODate)
	return &s
}

// StatsResponse summarizes an owner's engagements
type StatsResponse struct {
	Total            int64           `json:"total"`
	Pending          int64           `json:"pendientes"`
	InProgress       int64           `json:"enProceso"`
	Completed        int64           `json:"completadas"`
	Overdue          int64           `json:"vencidas"`
	TotalAmount      decimal.Decimal `json:"montoTotal"`
	PendingAmount    decimal.Decimal `json:"montoPendiente"`
	InProgressAmount decimal.Decimal `json:"montoEnProceso"`
	CompletedAmount  decimal.Decimal `json:"montoCompletado"`
}

// DeleteResponse confirms a deletion
type DeleteResponse struct {
	Message string `json:"message"`
}

// GenerateMonthlyInput selects the billing day. Nil parts default to today
// in the business time zone.
type GenerateMonthlyInput struct {
	OwnerID uuid.UUID
	Day     *int
	Month   *int
	Year    *int
	Trigger engagement.Trigger
}

// GenerationResult reports one monthly generation
type GenerationResult struct {
	Generated int                             `json:"generadas"`
	Message   string                          `json:"mensaje,omitempty"`
	Day       int                             `json:"dia"`
	Month     int                             `json:"mes"`
	Year      int                             `json:"anio"`
	Clients   []engagement.GeneratedClient    `json:"clientes,omitempty"`
	Warnings  []engagement.DataQualityWarning `json:"advertencias,omitempty"`
	RunID     *uuid.UUID                      `json:"runId,omitempty"`
}

// GenerationRunResponse is the API view of one audited generation batch
type GenerationRunResponse struct {
	ID        uuid.UUID                       `json:"id"`
	Date      string                          `json:"fecha"`
	Generated int                             `json:"generadas"`
	Clients   []engagement.GeneratedClient    `json:"clientes"`
	Warnings  []engagement.DataQualityWarning `json:"advertencias"`
	Trigger   engagement.Trigger              `json:"origen"`
	CreatedAt time.Time                       `json:"createdAt"`
}

// ToGenerationRunResponse converts a domain run
func ToGenerationRunResponse(r *engagement.GenerationRun) GenerationRunResponse {
	resp := GenerationRunResponse{
		ID:        r.ID,
		Date:      r.BillingDay.Format(shared.ISODate),
		Generated: r.Generated,
		Clients:   r.Clients,
		Warnings:  r.Warnings,
		Trigger:   r.Trigger,
		CreatedAt: r.CreatedAt,
	}
	if resp.Clients == nil {
		resp.Clients = []engagement.GeneratedClient{}
	}
	if resp.Warnings == nil {
		resp.Warnings = []engagement.DataQualityWarning{}
	}
	return resp
}

// BatchSummary aggregates a scheduled run over every owner
type BatchSummary struct {
	Date           time.Time `json:"fecha"`
	Owners         int       `json:"usuarios"`
	OwnersWithRows int       `json:"usuariosConMensualidades"`
	Generated      int       `json:"generadas"`
	Skipped        int       `json:"omitidos"`
	Failed         int       `json:"fallidos"`
	Errors         []string  `json:"errores,omitempty"`
}

// FixedAmount is one engagement repaired by FixRecurringAmounts
type FixedAmount struct {
	ID             uuid.UUID       `json:"id"`
	ClientName     string          `json:"cliente"`
	PreviousAmount decimal.Decimal `json:"montoAnterior"`
	NewAmount      decimal.Decimal `json:"montoNuevo"`
}

// FixAmountsResult reports FixRecurringAmounts
type FixAmountsResult struct {
	Updated     int           `json:"actualizadas"`
	Message     string        `json:"mensaje,omitempty"`
	Engagements []FixedAmount `json:"operaciones,omitempty"`
}

// CompletedRow is one line of the completed-in-month report
type CompletedRow struct {
	ID          uuid.UUID       `json:"id"`
	ClientName  string          `json:"clienteNombre"`
	CompletedOn string          `json:"fechaCompletado"`
	TotalAmount decimal.Decimal `json:"montoTotal"`
}

// CompletedMonthReport lists the engagements completed in a month
type CompletedMonthReport struct {
	Month int             `json:"mes"`
	Year  int             `json:"anio"`
	Rows  []CompletedRow  `json:"operaciones"`
	Total decimal.Decimal `json:"total"`
}

// MonthTotal is one month of the annual report
type MonthTotal struct {
	Month     int             `json:"mes"`
	MonthName string          `json:"nombreMes"`
	Total     decimal.Decimal `json:"totalMonto"`
}

// AnnualStatsResponse totals completed amounts per month of a year
type AnnualStatsResponse struct {
	Year   int          `json:"anio"`
	Months []MonthTotal `json:"meses"`
}

// ExportFormat selects the rendered document type
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportResult points at an archived report
type ExportResult struct {
	Key       string          `json:"key"`
	URL       string          `json:"url"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Rows      int             `json:"filas"`
	Total     decimal.Decimal `json:"total"`
}
