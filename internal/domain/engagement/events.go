package engagement

import (
	"time"

	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate and event type names
const (
	AggregateTypeEngagement = "Engagement"

	EventTypeEngagementCreated   = "EngagementCreated"
	EventTypePaymentApplied      = "PaymentApplied"
	EventTypeEngagementCompleted = "EngagementCompleted"
	EventTypeEngagementReopened  = "EngagementReopened"
	EventTypeMonthlyGenerated    = "MonthlyEngagementsGenerated"
)

// EngagementCreatedEvent is raised when a new engagement is created
type EngagementCreatedEvent struct {
	shared.BaseDomainEvent
	EngagementID uuid.UUID       `json:"engagement_id"`
	ClientID     uuid.UUID       `json:"client_id"`
	Type         Type            `json:"type"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// NewEngagementCreatedEvent creates a new EngagementCreatedEvent
func NewEngagementCreatedEvent(e *Engagement) *EngagementCreatedEvent {
	return &EngagementCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEngagementCreated, AggregateTypeEngagement, e.ID, e.OwnerID),
		EngagementID:    e.ID,
		ClientID:        e.ClientID,
		Type:            e.Type,
		TotalAmount:     e.TotalAmount,
	}
}

// PaymentAppliedEvent is raised for every accepted payment
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	EngagementID uuid.UUID       `json:"engagement_id"`
	Amount       decimal.Decimal `json:"amount"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// NewPaymentAppliedEvent creates a new PaymentAppliedEvent
func NewPaymentAppliedEvent(e *Engagement, amount decimal.Decimal) *PaymentAppliedEvent {
	return &PaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentApplied, AggregateTypeEngagement, e.ID, e.OwnerID),
		EngagementID:    e.ID,
		Amount:          amount,
		PaidAmount:      e.PaidAmount,
		TotalAmount:     e.TotalAmount,
	}
}

// EngagementCompletedEvent is raised on the transition into COMPLETADO
type EngagementCompletedEvent struct {
	shared.BaseDomainEvent
	EngagementID uuid.UUID `json:"engagement_id"`
	CompletedOn  time.Time `json:"completed_on"`
}

// NewEngagementCompletedEvent creates a new EngagementCompletedEvent
func NewEngagementCompletedEvent(e *Engagement) *EngagementCompletedEvent {
	ev := &EngagementCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEngagementCompleted, AggregateTypeEngagement, e.ID, e.OwnerID),
		EngagementID:    e.ID,
	}
	if e.CompletedOn != nil {
		ev.CompletedOn = *e.CompletedOn
	}
	return ev
}

// EngagementReopenedEvent is raised when an edit or a status change moves a completed engagement
// back to PENDIENTE or EN_PROCESO.
type EngagementReopenedEvent struct {
	shared.BaseDomainEvent
	EngagementID uuid.UUID       `json:"engagement_id"`
	Status       Status          `json:"status"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
}

// NewEngagementReopenedEvent creates a new EngagementReopenedEvent
func NewEngagementReopenedEvent(e *Engagement) *EngagementReopenedEvent {
	return &EngagementReopenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEngagementReopened, AggregateTypeEngagement, e.ID, e.OwnerID),
		EngagementID:    e.ID,
		Status:          e.Status,
		PaidAmount:      e.PaidAmount,
	}
}

// MonthlyGeneratedEvent is raised after a generation batch commits.
type MonthlyGeneratedEvent struct {
	shared.BaseDomainEvent
	BillingDay time.Time   `json:"billing_day"`
	Generated  int         `json:"generated"`
	ClientIDs  []uuid.UUID `json:"client_ids"`
}

// NewMonthlyGeneratedEvent creates a new MonthlyGeneratedEvent
func NewMonthlyGeneratedEvent(runID, ownerID uuid.UUID, day time.Time, clientIDs []uuid.UUID) *MonthlyGeneratedEvent {
	return &MonthlyGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMonthlyGenerated, "GenerationRun", runID, ownerID),
		BillingDay:      day,
		Generated:       len(clientIDs),
		ClientIDs:       clientIDs,
	}
}
