package handler

import "github.com/estudio-contable/backend/internal/interfaces/http/dto"

// ErrorResponse documents the failure envelope for OpenAPI
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}
