package client

import (
	"testing"
	"time"

	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(uuid.New(), "Juan Pérez", "20-12345678-9", time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), "juan@example.com")
	require.NoError(t, err)
	return c
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	return de.Code
}

func TestNewClient(t *testing.T) {
	c := newTestClient(t)

	assert.True(t, c.Active)
	assert.False(t, c.Recurring)
	assert.Nil(t, c.MonthlyFee)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), c.RegisteredOn)

	tests := []struct {
		name    string
		cName   string
		cuit    string
		contact string
		code    string
	}{
		{"short name", "Jo", "20-12345678-9", "x", "INVALID_NAME"},
		{"bad cuit", "Juan", "20123456789", "x", "INVALID_CUIT"},
		{"cuit with letters", "Juan", "2A-12345678-9", "x", "INVALID_CUIT"},
		{"empty contact", "Juan", "20-12345678-9", " ", "INVALID_CONTACT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(uuid.New(), tt.cName, tt.cuit, time.Now(), tt.contact)
			assert.Equal(t, tt.code, errCode(t, err))
		})
	}
}

func TestConfigureBilling(t *testing.T) {
	fee := decimal.NewFromInt(50000)
	zero := decimal.Zero
	negative := decimal.NewFromInt(-1)

	t.Run("fixed client with positive fee", func(t *testing.T) {
		c := newTestClient(t)
		require.NoError(t, c.ConfigureBilling(true, &fee))
		assert.True(t, c.IsBillable())
	})

	t.Run("fixed client requires fee", func(t *testing.T) {
		c := newTestClient(t)
		assert.Equal(t, "INVALID_FEE", errCode(t, c.ConfigureBilling(true, nil)))
		assert.Equal(t, "INVALID_FEE", errCode(t, c.ConfigureBilling(true, &zero)))
		assert.False(t, c.Recurring)
	})

	t.Run("non fixed client may keep a zero fee", func(t *testing.T) {
		c := newTestClient(t)
		require.NoError(t, c.ConfigureBilling(false, &zero))
	})

	t.Run("negative fee rejected", func(t *testing.T) {
		c := newTestClient(t)
		assert.Equal(t, "INVALID_FEE", errCode(t, c.ConfigureBilling(false, &negative)))
	})

	t.Run("inactive fixed client is not billable", func(t *testing.T) {
		c := newTestClient(t)
		require.NoError(t, c.ConfigureBilling(true, &fee))
		c.ToggleActive()
		assert.False(t, c.IsBillable())
	})
}

func TestSetTaxCondition(t *testing.T) {
	c := newTestClient(t)
	valid := TaxConditionSimplified
	invalid := TaxCondition("OTRA")

	require.NoError(t, c.SetTaxCondition(&valid))
	assert.Equal(t, "INVALID_TAX_CONDITION", errCode(t, c.SetTaxCondition(&invalid)))
	require.NoError(t, c.SetTaxCondition(nil))
	assert.Nil(t, c.TaxCondition)
}

func TestFold(t *testing.T) {
	assert.Equal(t, "juan perez", Fold("  Juan PÉREZ "))
	assert.Equal(t, "nunez", Fold("Núñez"))
	assert.Contains(t, newTestClient(t).SearchKey(), "perez 20-12345678-9")
}
