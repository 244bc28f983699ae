package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/estudio-contable/backend/internal/infrastructure/logger"
	"github.com/estudio-contable/backend/internal/interfaces/http/dto"
	"github.com/estudio-contable/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// ownerID returns the authenticated owner. It answers 401 and returns false
// when the route was reached without a valid identity.
func (h *BaseHandler) ownerID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(middleware.GetOwnerID(c))
	if err != nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "No autenticado")
		return uuid.Nil, false
	}
	return id, true
}

// pathID parses the :id parameter, answering 400 when it is not a UUID
func (h *BaseHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Identificador inválido")
		return uuid.Nil, false
	}
	return uuid.MustParse(req.ID), true
}

// bindJSON binds the body, answering 400 with field details on failure
func (h *BaseHandler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindQuery binds query parameters, answering 400 with field details on failure
func (h *BaseHandler) bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.AbortWithStatusJSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// HandleError maps service errors onto the envelope. Domain errors keep
// their code and message. Everything else is logged and answered with a
// generic 500 so store details never reach the client.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, dto.GetHTTPStatus(domainErr.Code), domainErr.Code, domainErr.Message)
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		h.Error(c, http.StatusGatewayTimeout, dto.ErrCodeTimeout, "La solicitud excedió el tiempo máximo")
		return
	}

	fields := []zap.Field{zap.Error(err), zap.String("route", c.FullPath())}
	var pe *shared.PersistenceError
	if errors.As(err, &pe) {
		fields = append(fields, zap.String("op", pe.Op), zap.String("target", pe.Target))
	}
	logger.L(c.Request.Context()).Error("Request failed", fields...)
	_ = c.Error(err)

	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, dto.GenericInternalMessage)
}
