package handler

import (
	"net/http"

	appeng "github.com/estudio-contable/backend/internal/application/engagement"
	"github.com/estudio-contable/backend/internal/domain/engagement"
	"github.com/estudio-contable/backend/internal/interfaces/http/dto"
	"github.com/estudio-contable/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EngagementHandler serves engagements and the monthly billing run
type EngagementHandler struct {
	BaseHandler
	engagementService *appeng.EngagementService
	billingService    *appeng.MonthlyBillingService
}

// NewEngagementHandler creates a new engagement handler
func NewEngagementHandler(engagementService *appeng.EngagementService, billingService *appeng.MonthlyBillingService) *EngagementHandler {
	return &EngagementHandler{
		engagementService: engagementService,
		billingService:    billingService,
	}
}

// monthYear binds the :mes and :anio path parameters
func (h *BaseHandler) monthYear(c *gin.Context) (int, int, bool) {
	var req dto.MonthYearRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_DATE", "Mes o año inválido")
		return 0, 0, false
	}
	return req.Month, req.Year, true
}

// Create godoc
// @Summary      Create engagement
// @Description  Totals and status are derived from the fee, gross income and paid amount
// @Tags         operaciones
// @Accept       json
// @Produce      json
// @Param        request body CreateEngagementRequest true "Engagement data"
// @Success      201 {object} dto.Response{data=appeng.EngagementResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /operaciones [post]
func (h *EngagementHandler) Create(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	var req CreateEngagementRequest
	if !h.bindJSON(c, &req) {
		return
	}
	start, err := parseDate("fechaInicio", req.StartDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	due, err := parseOptionalDate("fechaLimite", req.DueDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.engagementService.Create(c.Request.Context(), ownerID, appeng.CreateEngagementInput{
		ClientID:    req.ClientID,
		Type:        req.Type,
		Description: req.Description,
		Notes:       req.Notes,
		Fee:         req.Fee,
		GrossIncome: req.GrossIncome,
		PaidAmount:  req.PaidAmount,
		Status:      req.Status,
		StartDate:   start,
		DueDate:     due,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// List godoc
// @Summary      List engagements
// @Tags         operaciones
// @Produce      json
// @Param        estado query string false "PENDIENTE, EN_PROCESO or COMPLETADO"
// @Param        clienteId query string false "Client ID"
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]appeng.EngagementResponse,meta=shared.PageMeta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /operaciones [get]
func (h *EngagementHandler) List(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	var q ListEngagementsQuery
	if !h.bindQuery(c, &q) {
		return
	}

	input := appeng.ListEngagementsInput{Page: q.Page, Limit: q.Limit}
	if q.Status != "" {
		status := engagement.Status(q.Status)
		input.Status = &status
	}
	if q.ClientID != "" {
		clientID := uuid.MustParse(q.ClientID)
		input.ClientID = &clientID
	}

	result, err := h.engagementService.List(c.Request.Context(), ownerID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(result))
}

// Stats godoc
// @Summary      Engagement counters and amounts
// @Tags         operaciones
// @Produce      json
// @Success      200 {object} dto.Response{data=appeng.StatsResponse}
// @Security     BearerAuth
// @Router       /operaciones/stats [get]
func (h *EngagementHandler) Stats(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	result, err := h.engagementService.Stats(c.Request.Context(), ownerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Upcoming godoc
// @Summary      Pending engagements due soon
// @Tags         operaciones
// @Produce      json
// @Param        dias query int false "Look-ahead window in days" default(7)
// @Success      200 {object} dto.Response{data=[]appeng.EngagementResponse}
// @Security     BearerAuth
// @Router       /operaciones/proximos-vencimientos [get]
func (h *EngagementHandler) Upcoming(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	var q UpcomingQuery
	if !h.bindQuery(c, &q) {
		return
	}
	result, err := h.engagementService.Upcoming(c.Request.Context(), ownerID, q.Days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Overdue godoc
// @Summary      Overdue engagements
// @Tags         operaciones
// @Produce      json
// @Success      200 {object} dto.Response{data=[]appeng.EngagementResponse}
// @Security     BearerAuth
// @Router       /operaciones/vencidas [get]
func (h *EngagementHandler) Overdue(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	result, err := h.engagementService.Overdue(c.Request.Context(), ownerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ByMonth godoc
// @Summary      Engagements due in a month
// @Tags         operaciones
// @Produce      json
// @Param        mes path int true "Month (1-12)"
// @Param        anio path int true "Year"
// @Success      200 {object} dto.Response{data=[]appeng.EngagementResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /operaciones/mes/{mes}/anio/{anio} [get]
func (h *EngagementHandler) ByMonth(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	month, year, ok := h.monthYear(c)
	if !ok {
		return
	}
	result, err := h.engagementService.ByMonth(c.Request.Context(), ownerID, month, year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Get godoc
// @Summary      Get engagement
// @Tags         operaciones
// @Produce      json
// @Param        id path string true "Engagement ID"
// @Success      200 {object} dto.Response{data=appeng.EngagementResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /operaciones/{id} [get]
func (h *EngagementHandler) Get(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	result, err := h.engagementService.Get(c.Request.Context(), ownerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Update godoc
// @Summary      Update engagement
// @Tags         operaciones
// @Accept       json
// @Produce      json
// @Param        id path string true "Engagement ID"
// @Param        request body UpdateEngagementRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=appeng.EngagementResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /operaciones/{id} [patch]
func (h *EngagementHandler) Update(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req UpdateEngagementRequest
	if !h.bindJSON(c, &req) {
		return
	}
	start, err := parseOptionalDate("fechaInicio", req.StartDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	due, err := parseOptionalDate("fechaLimite", req.DueDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.engagementService.Update(c.Request.Context(), ownerID, id, appeng.UpdateEngagementInput{
		ClientID:    req.ClientID,
		Type:        req.Type,
		Description: req.Description,
		Notes:       req.Notes,
		Fee:         req.Fee,
		GrossIncome: req.GrossIncome,
		PaidAmount:  req.PaidAmount,
		Status:      req.Status,
		StartDate:   start,
		DueDate:     due,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete godoc
// @Summary      Delete engagement
// @Tags         operaciones
// @Produce      json
// @Param        id path string true "Engagement ID"
// @Success      200 {object} dto.Response{data=appeng.DeleteResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /operaciones/{id} [delete]
func (h *EngagementHandler) Delete(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	result, err := h.engagementService.Delete(c.Request.Context(), ownerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ChangeStatus godoc
// @Summary      Change engagement status
// @Description  Completing settles the balance; reopening clears the payment
// @Tags         operaciones
// @Produce      json
// @Param        id path string true "Engagement ID"
// @Param        estado query string true "PENDIENTE, EN_PROCESO or COMPLETADO"
// @Success      200 {object} dto.Response{data=appeng.EngagementResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /operaciones/{id}/estado [patch]
func (h *EngagementHandler) ChangeStatus(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var q ChangeStatusQuery
	if !h.bindQuery(c, &q) {
		return
	}
	result, err := h.engagementService.ChangeStatus(c.Request.Context(), ownerID, id, engagement.Status(q.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RecordPayment godoc
// @Summary      Record a payment
// @Description  Adds to the paid amount. A repeated Idempotency-Key does not pay twice.
// @Tags         operaciones
// @Accept       json
// @Produce      json
// @Param        id path string true "Engagement ID"
// @Param        Idempotency-Key header string false "Client generated key"
// @Param        request body RecordPaymentRequest true "Payment"
// @Success      200 {object} dto.Response{data=appeng.EngagementResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /operaciones/{id}/pago [patch]
func (h *EngagementHandler) RecordPayment(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	key := c.GetHeader(middleware.IdempotencyKeyHeader)
	result, err := h.engagementService.RecordPayment(c.Request.Context(), ownerID, id, req.Amount, key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GenerateMonthly godoc
// @Summary      Generate monthly fee engagements
// @Description  Creates one engagement per active recurring client for the given day, today by default
// @Tags         operaciones
// @Accept       json
// @Produce      json
// @Param        request body GenerateMonthlyRequest false "Billing day"
// @Success      200 {object} dto.Response{data=appeng.GenerationResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /operaciones/generar-mensuales [post]
func (h *EngagementHandler) GenerateMonthly(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	var req GenerateMonthlyRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	result, err := h.billingService.Generate(c.Request.Context(), appeng.GenerateMonthlyInput{
		OwnerID: ownerID,
		Day:     req.Day,
		Month:   req.Month,
		Year:    req.Year,
		Trigger: engagement.TriggerManual,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// FixRecurringAmounts godoc
// @Summary      Repair monthly fee totals
// @Description  Resets recurring engagements whose total drifted from their fee
// @Tags         operaciones
// @Produce      json
// @Success      200 {object} dto.Response{data=appeng.FixAmountsResult}
// @Security     BearerAuth
// @Router       /operaciones/fix-montos-mensualidades [post]
func (h *EngagementHandler) FixRecurringAmounts(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	result, err := h.billingService.FixRecurringAmounts(c.Request.Context(), ownerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RecentRuns godoc
// @Summary      Recent monthly generations
// @Tags         operaciones
// @Produce      json
// @Param        limit query int false "Number of runs" default(10)
// @Success      200 {object} dto.Response{data=[]appeng.GenerationRunResponse}
// @Security     BearerAuth
// @Router       /operaciones/generaciones [get]
func (h *EngagementHandler) RecentRuns(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	var q RecentRunsQuery
	if !h.bindQuery(c, &q) {
		return
	}
	result, err := h.billingService.RecentRuns(c.Request.Context(), ownerID, q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
