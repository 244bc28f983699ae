package dto

import "github.com/estudio-contable/backend/internal/domain/shared"

// Response is the envelope every endpoint answers with
type Response struct {
	Success bool             `json:"success"`
	Data    any              `json:"data,omitempty"`
	Error   *ErrorInfo       `json:"error,omitempty"`
	Meta    *shared.PageMeta `json:"meta,omitempty"`
}

// ErrorInfo describes a failed request
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail names one rejected field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

// NewSuccessResponseWithMeta creates a success response with pagination meta
func NewSuccessResponseWithMeta(data any, total int64, page, limit int) Response {
	meta := shared.NewPaginated[struct{}](nil, total, page, limit).Meta
	return Response{Success: true, Data: data, Meta: &meta}
}

// NewPaginatedResponse unwraps a service page into the envelope
func NewPaginatedResponse[T any](p *shared.Paginated[T]) Response {
	meta := p.Meta
	return Response{Success: true, Data: p.Data, Meta: &meta}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return NewErrorResponseWithRequestID(code, message, "")
}

// NewErrorResponseWithRequestID creates an error response tagged with the request ID
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	}
}

// NewValidationErrorResponse creates a 400 body listing the rejected fields
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}

// IDRequest binds an :id path parameter
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// MonthYearRequest binds /mes/:mes/anio/:anio style paths. Ranges are
// checked by the services.
type MonthYearRequest struct {
	Month int `uri:"mes"`
	Year  int `uri:"anio"`
}

// YearRequest binds an :anio path parameter
type YearRequest struct {
	Year int `uri:"anio"`
}
