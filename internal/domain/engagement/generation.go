package engagement

import (
	"time"

	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trigger tells who started a generation run
type Trigger string

const (
	TriggerManual Trigger = "MANUAL"
	TriggerCron   Trigger = "CRON"
)

// RecurringClient is the Client Registry view consumed by monthly generation.
// Fee is nil when the client has no fee on record.
type RecurringClient struct {
	ID   uuid.UUID
	Name string
	Fee  *decimal.Decimal
}

// DataQualityWarning flags a fixed client billed at 0 because its fee is
// missing or not positive. It is reported, never raised.
type DataQualityWarning struct {
	ClientID   uuid.UUID `json:"clienteId"`
	ClientName string    `json:"cliente"`
	Reason     string    `json:"motivo"`
}

// BillableFee returns the fee to bill for c and, when the fee is unusable,
// the warning to report. Unusable fees bill as zero.
func BillableFee(c RecurringClient) (decimal.Decimal, *DataQualityWarning) {
	switch {
	case c.Fee == nil:
		return decimal.Zero, &DataQualityWarning{ClientID: c.ID, ClientName: c.Name, Reason: "monto de mensualidad ausente"}
	case c.Fee.IsNegative():
		return decimal.Zero, &DataQualityWarning{ClientID: c.ID, ClientName: c.Name, Reason: "monto de mensualidad negativo: " + c.Fee.String()}
	case c.Fee.IsZero():
		return decimal.Zero, &DataQualityWarning{ClientID: c.ID, ClientName: c.Name, Reason: "monto de mensualidad en cero"}
	}
	return c.Fee.Round(2), nil
}

// GeneratedClient is one client billed by a run.
type GeneratedClient struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"nombre"`
}

// GenerationRun is the audit record of one committed generation batch.
type GenerationRun struct {
	shared.BaseEntity
	OwnerID    uuid.UUID
	BillingDay time.Time
	Generated  int
	Clients    []GeneratedClient
	Warnings   []DataQualityWarning
	Trigger    Trigger
}

// NewGenerationRun records a batch for ownerID on day.
func NewGenerationRun(ownerID uuid.UUID, day time.Time, trigger Trigger, clients []GeneratedClient, warnings []DataQualityWarning) *GenerationRun {
	if trigger == "" {
		trigger = TriggerManual
	}
	return &GenerationRun{
		BaseEntity: shared.NewBaseEntity(),
		OwnerID:    ownerID,
		BillingDay: shared.DateOf(day),
		Generated:  len(clients),
		Clients:    clients,
		Warnings:   warnings,
		Trigger:    trigger,
	}
}
