package dto

import (
	"net/http"
	"strings"
)

// Codes produced by the transport layer itself. Domain errors carry their
// own code (NOT_FOUND, OVERPAYMENT, ...) which is rendered unchanged.
const (
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeRequestTooLarge   = "REQUEST_TOO_LARGE"
	ErrCodeTimeout           = "TIMEOUT"
	ErrCodeExportUnavailable = "EXPORT_UNAVAILABLE"
)

// Domain codes with a fixed status. Anything prefixed INVALID_ is a 400.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:          http.StatusInternalServerError,
	ErrCodeValidation:        http.StatusBadRequest,
	ErrCodeBadRequest:        http.StatusBadRequest,
	"OVERPAYMENT":            http.StatusBadRequest,
	"EXCEEDS_TOTAL":          http.StatusBadRequest,
	ErrCodeUnauthorized:      http.StatusUnauthorized,
	ErrCodeForbidden:         http.StatusForbidden,
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeConflict:          http.StatusConflict,
	"ALREADY_GENERATED":      http.StatusConflict,
	"GENERATION_IN_PROGRESS": http.StatusConflict,
	"ALREADY_EXISTS":         http.StatusConflict,
	"CONCURRENCY_CONFLICT":   http.StatusConflict,
	ErrCodeRequestTooLarge:   http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:       http.StatusTooManyRequests,
	ErrCodeExportUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:           http.StatusGatewayTimeout,
}

// GetHTTPStatus returns the HTTP status for an error code. Unknown codes are
// treated as server errors.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// GenericInternalMessage is shown for every 5xx; causes are only logged.
const GenericInternalMessage = "Error interno del servidor"
