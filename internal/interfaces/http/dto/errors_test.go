package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{"NOT_FOUND", http.StatusNotFound},
		{"INVALID_DATE_RANGE", http.StatusBadRequest},
		{"INVALID_CUIT", http.StatusBadRequest},
		{"INVALID_AMOUNT", http.StatusBadRequest},
		{"OVERPAYMENT", http.StatusBadRequest},
		{"EXCEEDS_TOTAL", http.StatusBadRequest},
		{"BAD_REQUEST", http.StatusBadRequest},
		{"VALIDATION_ERROR", http.StatusBadRequest},
		{"ALREADY_GENERATED", http.StatusConflict},
		{"CONFLICT", http.StatusConflict},
		{"UNAUTHORIZED", http.StatusUnauthorized},
		{"EXPORT_UNAVAILABLE", http.StatusServiceUnavailable},
		{"RATE_LIMITED", http.StatusTooManyRequests},
		{"INTERNAL_ERROR", http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponseWithRequestID("NOT_FOUND", "Operación no encontrada", "req-1")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "Operación no encontrada", resp.Error.Message)
	assert.Equal(t, "req-1", resp.Error.RequestID)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{{Field: "montoPago", Message: "montoPago es requerido"}}
	resp := NewValidationErrorResponse("Datos inválidos", "req-2", details)

	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, details, resp.Error.Details)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 45, 2, 20)

	assert.True(t, resp.Success)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.True(t, resp.Meta.HasNextPage)
	assert.True(t, resp.Meta.HasPreviousPage)
}
