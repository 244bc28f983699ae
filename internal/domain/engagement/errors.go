package engagement

import (
	"fmt"
	"time"

	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Error codes raised by the engagement rules.
const (
	CodeOverpayment          = "OVERPAYMENT"
	CodeExceedsTotal         = "EXCEEDS_TOTAL"
	CodeAlreadyGenerated     = "ALREADY_GENERATED"
	CodeGenerationInProgress = "GENERATION_IN_PROGRESS"
)

// ErrNotFound is returned when an engagement does not exist in the caller's scope.
var ErrNotFound = shared.NotFound("Operación no encontrada")

// OverpaymentError reports a payment that would push paid above total.
type OverpaymentError struct {
	*shared.DomainError
	Remaining decimal.Decimal
}

// NewOverpaymentError builds the error with the amount still payable.
func NewOverpaymentError(remaining decimal.Decimal) *OverpaymentError {
	return &OverpaymentError{
		DomainError: shared.NewDomainError(CodeOverpayment,
			fmt.Sprintf("El pago excede el monto total. Monto restante: %s", remaining.String())),
		Remaining: remaining,
	}
}

func (e *OverpaymentError) Unwrap() error { return e.DomainError }

// ExceedsTotalError reports an edit that sets paid above the effective total.
type ExceedsTotalError struct {
	*shared.DomainError
	Total decimal.Decimal
}

// NewExceedsTotalError builds the error carrying the effective total.
func NewExceedsTotalError(total decimal.Decimal) *ExceedsTotalError {
	return &ExceedsTotalError{
		DomainError: shared.NewDomainError(CodeExceedsTotal,
			fmt.Sprintf("El monto pagado no puede exceder el monto total. Monto total: %s", total.String())),
		Total: total,
	}
}

func (e *ExceedsTotalError) Unwrap() error { return e.DomainError }

// AlreadyGeneratedError reports a monthly generation for a day that is already billed.
type AlreadyGeneratedError struct {
	*shared.DomainError
	Count int64
	Date  time.Time
}

// NewAlreadyGeneratedError builds the error with the existing count and the billing day.
func NewAlreadyGeneratedError(count int64, date time.Time) *AlreadyGeneratedError {
	return &AlreadyGeneratedError{
		DomainError: shared.NewDomainError(CodeAlreadyGenerated,
			fmt.Sprintf("Ya existen %d mensualidades generadas para %s", count, shared.FormatDMY(date))),
		Count: count,
		Date:  date,
	}
}

func (e *AlreadyGeneratedError) Unwrap() error { return e.DomainError }

// ErrGenerationInProgress is returned when another run holds the (owner, day) lock.
var ErrGenerationInProgress = shared.NewDomainError(CodeGenerationInProgress,
	"Ya hay una generación de mensualidades en curso para esa fecha")

// ErrDuplicateRecurring is raised by the store when a batch collides with the
// unique (owner, client, start date) index on recurring engagements.
var ErrDuplicateRecurring = shared.NewDomainError(CodeAlreadyGenerated,
	"Ya existen mensualidades generadas para esa fecha")
