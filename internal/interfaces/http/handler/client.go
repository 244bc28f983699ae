package handler

import (
	appclient "github.com/estudio-contable/backend/internal/application/client"
	"github.com/gin-gonic/gin"
)

// ClientHandler serves the client registry
type ClientHandler struct {
	BaseHandler
	clientService *appclient.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *appclient.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// Create godoc
// @Summary      Create client
// @Tags         clientes
// @Accept       json
// @Produce      json
// @Param        request body CreateClientRequest true "Client data"
// @Success      201 {object} dto.Response{data=appclient.ClientResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clientes [post]
func (h *ClientHandler) Create(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	var req CreateClientRequest
	if !h.bindJSON(c, &req) {
		return
	}
	registeredOn, err := parseDate("fechaAlta", req.RegisteredOn)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.clientService.Create(c.Request.Context(), ownerID, appclient.CreateClientInput{
		Name:         req.Name,
		CUIT:         req.CUIT,
		RegisteredOn: registeredOn,
		Contact:      req.Contact,
		TaxCondition: req.TaxCondition,
		Active:       req.Active,
		Recurring:    req.Recurring,
		MonthlyFee:   req.MonthlyFee,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// List godoc
// @Summary      List clients
// @Tags         clientes
// @Produce      json
// @Param        activo query bool false "Filter by active flag"
// @Success      200 {object} dto.Response{data=[]appclient.ClientResponse}
// @Security     BearerAuth
// @Router       /clientes [get]
func (h *ClientHandler) List(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	var q ListClientsQuery
	if !h.bindQuery(c, &q) {
		return
	}
	result, err := h.clientService.List(c.Request.Context(), ownerID, q.Active)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Stats godoc
// @Summary      Client counters
// @Tags         clientes
// @Produce      json
// @Success      200 {object} dto.Response{data=appclient.StatsResponse}
// @Security     BearerAuth
// @Router       /clientes/stats [get]
func (h *ClientHandler) Stats(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	result, err := h.clientService.Stats(c.Request.Context(), ownerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Search godoc
// @Summary      Search clients
// @Description  Case and accent insensitive match over name, CUIT and contact
// @Tags         clientes
// @Produce      json
// @Param        q query string true "Search term"
// @Success      200 {object} dto.Response{data=[]appclient.ClientResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clientes/search [get]
func (h *ClientHandler) Search(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	var q SearchClientsQuery
	if !h.bindQuery(c, &q) {
		return
	}
	result, err := h.clientService.Search(c.Request.Context(), ownerID, q.Query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Get godoc
// @Summary      Get client
// @Tags         clientes
// @Produce      json
// @Param        id path string true "Client ID"
// @Success      200 {object} dto.Response{data=appclient.ClientResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clientes/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	result, err := h.clientService.Get(c.Request.Context(), ownerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Update godoc
// @Summary      Update client
// @Tags         clientes
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID"
// @Param        request body UpdateClientRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=appclient.ClientResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clientes/{id} [patch]
func (h *ClientHandler) Update(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req UpdateClientRequest
	if !h.bindJSON(c, &req) {
		return
	}
	registeredOn, err := parseOptionalDate("fechaAlta", req.RegisteredOn)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.clientService.Update(c.Request.Context(), ownerID, id, appclient.UpdateClientInput{
		Name:         req.Name,
		CUIT:         req.CUIT,
		RegisteredOn: registeredOn,
		Contact:      req.Contact,
		TaxCondition: req.TaxCondition,
		Active:       req.Active,
		Recurring:    req.Recurring,
		MonthlyFee:   req.MonthlyFee,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete godoc
// @Summary      Delete client
// @Description  Rejected while the client still has engagements
// @Tags         clientes
// @Produce      json
// @Param        id path string true "Client ID"
// @Success      200 {object} dto.Response{data=appclient.DeleteResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clientes/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	result, err := h.clientService.Delete(c.Request.Context(), ownerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ToggleActive godoc
// @Summary      Flip the active flag
// @Tags         clientes
// @Produce      json
// @Param        id path string true "Client ID"
// @Success      200 {object} dto.Response{data=appclient.ClientResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clientes/{id}/toggle-activo [patch]
func (h *ClientHandler) ToggleActive(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	result, err := h.clientService.ToggleActive(c.Request.Context(), ownerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
