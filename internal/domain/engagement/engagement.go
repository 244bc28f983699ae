package engagement

import (
	"time"

	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an engagement, derived from paid vs. total.
type Status string

const (
	StatusPending    Status = "PENDIENTE"  // nothing paid
	StatusInProgress Status = "EN_PROCESO" // partially paid
	StatusCompleted  Status = "COMPLETADO" // paid in full
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Type categorizes the work billed by an engagement
type Type string

const (
	TypeTaxReturn          Type = "DECLARACION_IMPUESTOS"
	TypeMonthlyBookkeeping Type = "CONTABILIDAD_MENSUAL"
	TypeAdvisory           Type = "ASESORIA"
	TypePayroll            Type = "LIQUIDACION_SUELDOS"
	TypeOther              Type = "OTRO"
)

// IsValid checks if the type is a valid Type
func (t Type) IsValid() bool {
	switch t {
	case TypeTaxReturn, TypeMonthlyBookkeeping, TypeAdvisory, TypePayroll, TypeOther:
		return true
	}
	return false
}

// Engagement is one billable unit of work for a client.
//
// Invariant: 0 <= PaidAmount <= TotalAmount, and TotalAmount always equals Fee.
type Engagement struct {
	shared.OwnedAggregateRoot
	ClientID    uuid.UUID
	ClientName  string // populated by reads, never persisted
	Type        Type
	Description string
	Notes       string
	Fee         decimal.Decimal
	GrossIncome decimal.Decimal
	TotalAmount decimal.Decimal
	PaidAmount  decimal.Decimal
	Status      Status
	Recurring   bool
	StartDate   time.Time
	DueDate     *time.Time
	CompletedOn *time.Time
}

// NewEngagement creates a manually entered engagement in PENDIENTE state.
func NewEngagement(
	ownerID uuid.UUID,
	clientID uuid.UUID,
	typ Type,
	fee decimal.Decimal,
	startDate time.Time,
	dueDate *time.Time,
) (*Engagement, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "El usuario es obligatorio")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "El cliente es obligatorio")
	}
	if !typ.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Tipo de operación inválido")
	}
	if fee.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Los honorarios no pueden ser negativos")
	}
	if err := checkCents(fee, "El monto de honorarios"); err != nil {
		return nil, err
	}
	if startDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "La fecha de inicio es obligatoria")
	}
	start := shared.DateOf(startDate)
	due := shared.DatePtr(dueDate)
	if err := ValidateDateRange(start, due); err != nil {
		return nil, err
	}

	e := &Engagement{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		ClientID:           clientID,
		Type:               typ,
		Fee:                fee,
		GrossIncome:        decimal.Zero,
		TotalAmount:        fee,
		PaidAmount:         decimal.Zero,
		Status:             StatusPending,
		StartDate:          start,
		DueDate:            due,
	}
	e.AddDomainEvent(NewEngagementCreatedEvent(e))
	return e, nil
}

// NewRecurringEngagement builds the monthly bookkeeping engagement for a fixed
// client on billingDay. The billing day doubles as its own due date.
func NewRecurringEngagement(ownerID, clientID uuid.UUID, fee decimal.Decimal, billingDay time.Time) (*Engagement, error) {
	day := shared.DateOf(billingDay)
	e, err := NewEngagement(ownerID, clientID, TypeMonthlyBookkeeping, fee, day, &day)
	if err != nil {
		return nil, err
	}
	e.Recurring = true
	e.Description = RecurringDescription(day)
	return e, nil
}

// RecurringDescription is the description given to generated engagements.
func RecurringDescription(day time.Time) string {
	return "Mensualidad " + shared.FormatDMY(day)
}

// ValidateDateRange enforces start <= due when a due date is present.
func ValidateDateRange(start time.Time, due *time.Time) error {
	if due != nil && shared.DateOf(start).After(shared.DateOf(*due)) {
		return shared.NewDomainError("INVALID_DATE_RANGE", "La fecha de inicio no puede ser mayor a la fecha límite")
	}
	return nil
}

// SetDescription sets the free-text description
func (e *Engagement) SetDescription(description string) {
	e.Description = description
	e.Touch()
}

// SetNotes sets internal notes
func (e *Engagement) SetNotes(notes string) {
	e.Notes = notes
	e.Touch()
}

// SetType changes the engagement category
func (e *Engagement) SetType(typ Type) error {
	if !typ.IsValid() {
		return shared.NewDomainError("INVALID_TYPE", "Tipo de operación inválido")
	}
	e.Type = typ
	e.Touch()
	return nil
}

// SetGrossIncome records the client's gross income for the period.
func (e *Engagement) SetGrossIncome(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Los ingresos brutos no pueden ser negativos")
	}
	e.GrossIncome = roundMoney(amount)
	e.Touch()
	return nil
}

// Reassign points the engagement at another client of the same owner.
// Ownership of the target client is checked by the caller.
func (e *Engagement) Reassign(clientID uuid.UUID) error {
	if clientID == uuid.Nil {
		return shared.NewDomainError("INVALID_CLIENT", "El cliente es obligatorio")
	}
	e.ClientID = clientID
	e.Touch()
	return nil
}

// Reschedule replaces the start and due dates.
func (e *Engagement) Reschedule(start time.Time, due *time.Time) error {
	if start.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "La fecha de inicio es obligatoria")
	}
	start = shared.DateOf(start)
	due = shared.DatePtr(due)
	if err := ValidateDateRange(start, due); err != nil {
		return err
	}
	e.StartDate = start
	e.DueDate = due
	e.Touch()
	return nil
}

// RemainingAmount is what can still be paid.
func (e *Engagement) RemainingAmount() decimal.Decimal {
	return e.TotalAmount.Sub(e.PaidAmount)
}

// IsOverdue reports a pending engagement whose due date is today or earlier.
func (e *Engagement) IsOverdue(today time.Time) bool {
	if e.Status != StatusPending || e.DueDate == nil {
		return false
	}
	return !e.DueDate.After(shared.DateOf(today))
}

func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// checkCents rejects amounts with fractions of a cent.
func checkCents(d decimal.Decimal, what string) error {
	if !d.Equal(d.Round(2)) {
		return shared.NewDomainError("INVALID_AMOUNT", what+" no puede tener más de 2 decimales")
	}
	return nil
}
