package engagement

import (
	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ApplyPayment adds amount to the paid total.
// A payment that would exceed the total fails with *OverpaymentError and leaves
// the engagement untouched. Reaching the total completes the engagement.
func (e *Engagement) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "El monto del pago debe ser mayor a 0")
	}
	if err := checkCents(amount, "El monto del pago"); err != nil {
		return err
	}
	newPaid := e.PaidAmount.Add(amount)
	if newPaid.GreaterThan(e.TotalAmount) {
		return NewOverpaymentError(e.RemainingAmount())
	}

	e.PaidAmount = newPaid
	if newPaid.GreaterThanOrEqual(e.TotalAmount) {
		e.complete()
	} else if e.Status == StatusPending {
		e.Status = StatusInProgress
	}
	e.AddDomainEvent(NewPaymentAppliedEvent(e, amount))

	e.Touch()
	e.IncrementVersion()
	return nil
}

// RecomputeFromPaidAmount sets the paid amount directly, optionally with a new
// total, and derives status and completion date from the result.
// Lowering paid below total on a completed engagement reopens it and clears
// the completion date.
func (e *Engagement) RecomputeFromPaidAmount(newPaid decimal.Decimal, newTotal *decimal.Decimal) error {
	total := e.TotalAmount
	if newTotal != nil {
		if err := checkCents(*newTotal, "El monto de honorarios"); err != nil {
			return err
		}
		total = *newTotal
	}
	if total.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Los honorarios no pueden ser negativos")
	}
	if newPaid.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "El monto pagado no puede ser negativo")
	}
	if err := checkCents(newPaid, "El monto pagado"); err != nil {
		return err
	}
	if newPaid.GreaterThan(total) {
		return NewExceedsTotalError(total)
	}

	wasCompleted := e.Status == StatusCompleted
	e.Fee = total
	e.TotalAmount = total
	e.PaidAmount = newPaid

	switch {
	case e.PaidAmount.IsZero():
		e.Status = StatusPending
		e.CompletedOn = nil
	case e.PaidAmount.LessThan(total):
		e.Status = StatusInProgress
		e.CompletedOn = nil
	default:
		e.complete()
	}
	if wasCompleted && e.Status != StatusCompleted {
		e.AddDomainEvent(NewEngagementReopenedEvent(e))
	}

	e.Touch()
	e.IncrementVersion()
	return nil
}

// Reprice changes the fee keeping the paid amount, re-deriving status.
func (e *Engagement) Reprice(fee decimal.Decimal) error {
	return e.RecomputeFromPaidAmount(e.PaidAmount, &fee)
}

// MarkCompleted forces completion, pinning paid to total. It cannot fail.
func (e *Engagement) MarkCompleted() {
	e.PaidAmount = e.TotalAmount
	e.complete()
	e.Touch()
	e.IncrementVersion()
}

// ChangeStatus is the manual status switch. Completing goes through
// MarkCompleted; the other states keep the paid amount, and leaving
// COMPLETADO clears the completion date.
func (e *Engagement) ChangeStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Estado de operación inválido")
	}
	if status == StatusCompleted {
		e.MarkCompleted()
		return nil
	}
	reopened := e.Status == StatusCompleted
	e.Status = status
	if reopened {
		e.CompletedOn = nil
		e.AddDomainEvent(NewEngagementReopenedEvent(e))
	}
	e.Touch()
	e.IncrementVersion()
	return nil
}

func (e *Engagement) complete() {
	alreadyCompleted := e.Status == StatusCompleted
	e.Status = StatusCompleted
	if e.CompletedOn == nil {
		today := shared.Today()
		e.CompletedOn = &today
	}
	if !alreadyCompleted {
		e.AddDomainEvent(NewEngagementCompletedEvent(e))
	}
}
