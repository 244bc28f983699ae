package engagement

import (
	"errors"
	"testing"
	"time"

	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func newTestEngagement(t *testing.T, total string) *Engagement {
	t.Helper()
	due := date(2025, 3, 31)
	e, err := NewEngagement(uuid.New(), uuid.New(), TypeAdvisory, dec(total), date(2025, 3, 1), &due)
	require.NoError(t, err)
	e.ClearDomainEvents()
	return e
}

func eventTypes(e *Engagement) []string {
	types := make([]string, 0, len(e.GetDomainEvents()))
	for _, ev := range e.GetDomainEvents() {
		types = append(types, ev.EventType())
	}
	return types
}

// ============================================
// Construction
// ============================================

func TestNewEngagement(t *testing.T) {
	owner := uuid.New()
	client := uuid.New()

	t.Run("starts pending with total equal to fee", func(t *testing.T) {
		e, err := NewEngagement(owner, client, TypeTaxReturn, dec("15000.50"), date(2025, 2, 1), nil)
		require.NoError(t, err)

		assert.Equal(t, StatusPending, e.Status)
		assert.True(t, e.TotalAmount.Equal(dec("15000.5")))
		assert.True(t, e.Fee.Equal(e.TotalAmount))
		assert.True(t, e.PaidAmount.IsZero())
		assert.Nil(t, e.CompletedOn)
		assert.Equal(t, []string{EventTypeEngagementCreated}, eventTypes(e))
	})

	t.Run("normalizes dates to calendar days", func(t *testing.T) {
		start := time.Date(2025, 2, 1, 18, 45, 0, 0, time.FixedZone("ART", -3*3600))
		e, err := NewEngagement(owner, client, TypeTaxReturn, dec("10"), start, nil)
		require.NoError(t, err)
		assert.Equal(t, date(2025, 2, 1), e.StartDate)
	})

	tests := []struct {
		name    string
		typ     Type
		fee     string
		start   time.Time
		due     *time.Time
		errCode string
	}{
		{"invalid type", Type("X"), "1", date(2025, 1, 1), nil, "INVALID_TYPE"},
		{"negative fee", TypeOther, "-1", date(2025, 1, 1), nil, "INVALID_AMOUNT"},
		{"missing start", TypeOther, "1", time.Time{}, nil, "INVALID_DATE"},
		{"start after due", TypeOther, "1", date(2025, 2, 2), ptr(date(2025, 2, 1)), "INVALID_DATE_RANGE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngagement(owner, client, tt.typ, dec(tt.fee), tt.start, tt.due)
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.errCode, de.Code)
		})
	}

	t.Run("same start and due is allowed", func(t *testing.T) {
		d := date(2025, 2, 1)
		_, err := NewEngagement(owner, client, TypeOther, dec("1"), d, &d)
		assert.NoError(t, err)
	})
}

func TestNewRecurringEngagement(t *testing.T) {
	day := date(2025, 3, 1)
	e, err := NewRecurringEngagement(uuid.New(), uuid.New(), dec("1000"), day)
	require.NoError(t, err)

	assert.True(t, e.Recurring)
	assert.Equal(t, TypeMonthlyBookkeeping, e.Type)
	assert.Equal(t, "Mensualidad 1/3/2025", e.Description)
	assert.Equal(t, day, e.StartDate)
	require.NotNil(t, e.DueDate)
	assert.Equal(t, day, *e.DueDate)
	assert.Equal(t, StatusPending, e.Status)
}

// ============================================
// ApplyPayment
// ============================================

func TestApplyPayment_Scenarios(t *testing.T) {
	e := newTestEngagement(t, "10000")

	// partial payment
	require.NoError(t, e.ApplyPayment(dec("3000")))
	assert.True(t, e.PaidAmount.Equal(dec("3000")))
	assert.Equal(t, StatusInProgress, e.Status)
	assert.Nil(t, e.CompletedOn)

	// remaining payment completes
	require.NoError(t, e.ApplyPayment(dec("7000")))
	assert.True(t, e.PaidAmount.Equal(dec("10000")))
	assert.Equal(t, StatusCompleted, e.Status)
	require.NotNil(t, e.CompletedOn)
	assert.Equal(t, shared.Today(), *e.CompletedOn)

	// any further payment overpays with remaining 0
	before := *e
	err := e.ApplyPayment(dec("1"))
	var over *OverpaymentError
	require.ErrorAs(t, err, &over)
	assert.True(t, over.Remaining.IsZero())
	assert.Equal(t, "El pago excede el monto total. Monto restante: 0", err.Error())
	assert.True(t, e.PaidAmount.Equal(before.PaidAmount))
	assert.Equal(t, before.Status, e.Status)
	assert.Equal(t, before.Version, e.Version)
}

func TestApplyPayment_Boundaries(t *testing.T) {
	t.Run("exact remaining completes", func(t *testing.T) {
		e := newTestEngagement(t, "100.50")
		require.NoError(t, e.ApplyPayment(dec("0.50")))
		require.NoError(t, e.ApplyPayment(dec("100.00")))
		assert.Equal(t, StatusCompleted, e.Status)
	})

	t.Run("remaining plus one cent fails unchanged", func(t *testing.T) {
		e := newTestEngagement(t, "100.50")
		require.NoError(t, e.ApplyPayment(dec("50")))

		err := e.ApplyPayment(dec("50.51"))

		var over *OverpaymentError
		require.ErrorAs(t, err, &over)
		assert.True(t, over.Remaining.Equal(dec("50.5")))
		assert.True(t, e.PaidAmount.Equal(dec("50")))
		assert.Equal(t, StatusInProgress, e.Status)
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		e := newTestEngagement(t, "100")
		for _, amt := range []string{"0", "-5"} {
			err := e.ApplyPayment(dec(amt))
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, "INVALID_AMOUNT", de.Code)
		}
	})

	t.Run("fractions of a cent rejected", func(t *testing.T) {
		e := newTestEngagement(t, "10000")
		err := e.ApplyPayment(dec("9999.995"))
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_AMOUNT", de.Code)
		assert.True(t, e.PaidAmount.IsZero())
		assert.Equal(t, StatusPending, e.Status)

		require.NoError(t, e.ApplyPayment(dec("9999.99")))
		assert.Equal(t, StatusInProgress, e.Status)
	})

	t.Run("completion date set exactly once", func(t *testing.T) {
		e := newTestEngagement(t, "10")
		earlier := date(2024, 12, 31)
		e.CompletedOn = &earlier
		require.NoError(t, e.ApplyPayment(dec("10")))
		assert.Equal(t, earlier, *e.CompletedOn)
	})

	t.Run("decimal sums do not drift", func(t *testing.T) {
		e := newTestEngagement(t, "0.30")
		require.NoError(t, e.ApplyPayment(dec("0.10")))
		require.NoError(t, e.ApplyPayment(dec("0.10")))
		require.NoError(t, e.ApplyPayment(dec("0.10")))
		assert.Equal(t, StatusCompleted, e.Status)
	})

	t.Run("overpayment unwraps to a domain error", func(t *testing.T) {
		e := newTestEngagement(t, "10")
		err := e.ApplyPayment(dec("11"))
		assert.True(t, shared.IsValidationError(err))
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, CodeOverpayment, de.Code)
	})
}

// ============================================
// RecomputeFromPaidAmount
// ============================================

func TestRecomputeFromPaidAmount(t *testing.T) {
	t.Run("reset to zero reopens completed engagement", func(t *testing.T) {
		e := newTestEngagement(t, "5000")
		e.MarkCompleted()
		e.ClearDomainEvents()

		require.NoError(t, e.RecomputeFromPaidAmount(decimal.Zero, nil))

		assert.Equal(t, StatusPending, e.Status)
		assert.Nil(t, e.CompletedOn)
		assert.True(t, e.PaidAmount.IsZero())
		assert.Equal(t, []string{EventTypeEngagementReopened}, eventTypes(e))
	})

	t.Run("partial moves to in progress and clears completion", func(t *testing.T) {
		e := newTestEngagement(t, "5000")
		e.MarkCompleted()

		require.NoError(t, e.RecomputeFromPaidAmount(dec("1000"), nil))

		assert.Equal(t, StatusInProgress, e.Status)
		assert.Nil(t, e.CompletedOn)
	})

	t.Run("full sets completion only if unset", func(t *testing.T) {
		e := newTestEngagement(t, "5000")
		require.NoError(t, e.RecomputeFromPaidAmount(dec("5000"), nil))
		assert.Equal(t, StatusCompleted, e.Status)
		require.NotNil(t, e.CompletedOn)
		first := *e.CompletedOn

		require.NoError(t, e.RecomputeFromPaidAmount(dec("5000"), nil))
		assert.Equal(t, first, *e.CompletedOn)
	})

	t.Run("uses the new total when provided", func(t *testing.T) {
		e := newTestEngagement(t, "5000")
		total := dec("8000")

		require.NoError(t, e.RecomputeFromPaidAmount(dec("6000"), &total))

		assert.True(t, e.TotalAmount.Equal(total))
		assert.True(t, e.Fee.Equal(total))
		assert.Equal(t, StatusInProgress, e.Status)
	})

	t.Run("exceeding effective total fails", func(t *testing.T) {
		e := newTestEngagement(t, "5000")
		total := dec("4000")

		err := e.RecomputeFromPaidAmount(dec("4500"), &total)

		var exceeds *ExceedsTotalError
		require.ErrorAs(t, err, &exceeds)
		assert.True(t, exceeds.Total.Equal(total))
		assert.Equal(t, "El monto pagado no puede exceder el monto total. Monto total: 4000", err.Error())
		assert.True(t, e.TotalAmount.Equal(dec("5000")))
	})

	t.Run("negative paid rejected", func(t *testing.T) {
		e := newTestEngagement(t, "5000")
		err := e.RecomputeFromPaidAmount(dec("-1"), nil)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_AMOUNT", de.Code)
	})
}

func TestReprice(t *testing.T) {
	e := newTestEngagement(t, "1000")
	require.NoError(t, e.ApplyPayment(dec("600")))

	err := e.Reprice(dec("500"))
	var exceeds *ExceedsTotalError
	require.ErrorAs(t, err, &exceeds)

	require.NoError(t, e.Reprice(dec("600")))
	assert.Equal(t, StatusCompleted, e.Status)
}

func TestAmountsLimitedToCents(t *testing.T) {
	tests := []struct {
		name string
		run  func(e *Engagement) error
	}{
		{"paid amount edit", func(e *Engagement) error { return e.RecomputeFromPaidAmount(dec("10.001"), nil) }},
		{"new total on edit", func(e *Engagement) error {
			total := dec("20.999")
			return e.RecomputeFromPaidAmount(dec("10"), &total)
		}},
		{"reprice", func(e *Engagement) error { return e.Reprice(dec("100.005")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngagement(t, "100")
			err := tt.run(e)
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, "INVALID_AMOUNT", de.Code)
			assert.True(t, e.TotalAmount.Equal(dec("100")))
			assert.True(t, e.PaidAmount.IsZero())
		})
	}

	t.Run("fee on creation", func(t *testing.T) {
		_, err := NewEngagement(uuid.New(), uuid.New(), TypeAdvisory, dec("15000.505"), date(2025, 2, 1), nil)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_AMOUNT", de.Code)
	})
}

// ============================================
// MarkCompleted / ChangeStatus
// ============================================

func TestMarkCompleted(t *testing.T) {
	e := newTestEngagement(t, "750")
	require.NoError(t, e.ApplyPayment(dec("100")))

	e.MarkCompleted()

	assert.Equal(t, StatusCompleted, e.Status)
	assert.True(t, e.PaidAmount.Equal(e.TotalAmount))
	require.NotNil(t, e.CompletedOn)
	assert.Equal(t, shared.Today(), *e.CompletedOn)
}

func TestChangeStatus(t *testing.T) {
	t.Run("completed pins paid to total", func(t *testing.T) {
		e := newTestEngagement(t, "750")
		require.NoError(t, e.ChangeStatus(StatusCompleted))
		assert.True(t, e.PaidAmount.Equal(dec("750")))
	})

	t.Run("other statuses only relabel", func(t *testing.T) {
		e := newTestEngagement(t, "750")
		require.NoError(t, e.ChangeStatus(StatusInProgress))
		assert.Equal(t, StatusInProgress, e.Status)
		assert.True(t, e.PaidAmount.IsZero())
	})

	t.Run("reopening keeps paid and clears completion", func(t *testing.T) {
		e := newTestEngagement(t, "750")
		e.MarkCompleted()
		e.ClearDomainEvents()
		require.NoError(t, e.ChangeStatus(StatusPending))
		assert.Equal(t, StatusPending, e.Status)
		assert.True(t, e.PaidAmount.Equal(dec("750")))
		assert.Nil(t, e.CompletedOn)
		require.Len(t, e.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeEngagementReopened, e.GetDomainEvents()[0].EventType())
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		e := newTestEngagement(t, "750")
		assert.Error(t, e.ChangeStatus(Status("CERRADO")))
	})
}

func TestInvariant_PaidNeverExceedsTotal(t *testing.T) {
	e := newTestEngagement(t, "100")
	payments := []string{"30", "30", "50", "30", "10", "0.01"}
	for _, p := range payments {
		_ = e.ApplyPayment(dec(p))
		assert.False(t, e.PaidAmount.GreaterThan(e.TotalAmount))
		assert.False(t, e.PaidAmount.IsNegative())
		if e.Status == StatusCompleted {
			assert.NotNil(t, e.CompletedOn)
		}
	}
	assert.Equal(t, StatusCompleted, e.Status)
}

func TestIsOverdue(t *testing.T) {
	e := newTestEngagement(t, "100")
	assert.True(t, e.IsOverdue(date(2025, 3, 31)))
	assert.False(t, e.IsOverdue(date(2025, 3, 30)))

	e.MarkCompleted()
	assert.False(t, e.IsOverdue(date(2025, 4, 30)))
}

// ============================================
// Generation helpers
// ============================================

func TestBillableFee(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name     string
		fee      *decimal.Decimal
		expected string
		warns    bool
	}{
		{"positive", ptr(dec("1000")), "1000", false},
		{"missing", nil, "0", true},
		{"zero", ptr(decimal.Zero), "0", true},
		{"negative", ptr(dec("-10")), "0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, warning := BillableFee(RecurringClient{ID: id, Name: "Cliente", Fee: tt.fee})
			assert.True(t, amount.Equal(dec(tt.expected)))
			if tt.warns {
				require.NotNil(t, warning)
				assert.Equal(t, id, warning.ClientID)
			} else {
				assert.Nil(t, warning)
			}
		})
	}
}

func TestAlreadyGeneratedError(t *testing.T) {
	err := NewAlreadyGeneratedError(3, date(2025, 3, 1))
	assert.Equal(t, "Ya existen 3 mensualidades generadas para 1/3/2025", err.Error())
	assert.Equal(t, int64(3), err.Count)
	assert.True(t, shared.IsValidationError(err))
}

func ptr[T any](v T) *T {
	return &v
}
