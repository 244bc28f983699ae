package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"

	appeng "github.com/estudio-contable/backend/internal/application/engagement"
	"github.com/estudio-contable/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ReportFiles reads archived reports back for the local download route
type ReportFiles interface {
	Open(storageKey string) ([]byte, error)
}

// ReportHandler serves revenue reports and their exports
type ReportHandler struct {
	BaseHandler
	reportService *appeng.ReportService
	files         ReportFiles
}

// NewReportHandler creates a new report handler. files may be nil when
// exports are stored in object storage.
func NewReportHandler(reportService *appeng.ReportService, files ReportFiles) *ReportHandler {
	return &ReportHandler{reportService: reportService, files: files}
}

// CompletedInMonth godoc
// @Summary      Engagements completed in a month
// @Tags         reportes
// @Produce      json
// @Param        mes path int true "Month (1-12)"
// @Param        anio path int true "Year"
// @Success      200 {object} dto.Response{data=appeng.CompletedMonthReport}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /operaciones/reportes/mes-completado/{mes}/anio/{anio} [get]
func (h *ReportHandler) CompletedInMonth(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	month, year, ok := h.monthYear(c)
	if !ok {
		return
	}
	result, err := h.reportService.CompletedInMonth(c.Request.Context(), ownerID, month, year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Export godoc
// @Summary      Export the monthly completed report
// @Description  Renders CSV or PDF, archives it and returns a download link
// @Tags         reportes
// @Produce      json
// @Param        mes path int true "Month (1-12)"
// @Param        anio path int true "Year"
// @Param        formato query string false "csv or pdf" default(csv)
// @Success      200 {object} dto.Response{data=appeng.ExportResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /operaciones/reportes/mes-completado/{mes}/anio/{anio}/export [post]
func (h *ReportHandler) Export(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	month, year, ok := h.monthYear(c)
	if !ok {
		return
	}
	var q ExportQuery
	if !h.bindQuery(c, &q) {
		return
	}
	format := appeng.ExportFormat(strings.ToLower(q.Format))
	if format == "" {
		format = appeng.ExportCSV
	}
	result, err := h.reportService.ExportCompletedInMonth(c.Request.Context(), ownerID, month, year, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// AnnualStats godoc
// @Summary      Completed totals per month of a year
// @Tags         reportes
// @Produce      json
// @Param        anio path int true "Year"
// @Success      200 {object} dto.Response{data=appeng.AnnualStatsResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /operaciones/reportes/estadisticas-anuales/{anio} [get]
func (h *ReportHandler) AnnualStats(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	var req dto.YearRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_DATE", "Año inválido")
		return
	}
	result, err := h.reportService.AnnualStats(c.Request.Context(), ownerID, req.Year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Download godoc
// @Summary      Download an exported report
// @Description  Only reports of the authenticated owner are served
// @Tags         reportes
// @Produce      octet-stream
// @Param        key path string true "Storage key"
// @Success      200 {file} binary
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /operaciones/reportes/descargas/{key} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	if h.files == nil {
		h.HandleError(c, appeng.ErrExportUnavailable)
		return
	}
	key := strings.TrimPrefix(c.Param("key"), "/")
	prefix := "reportes/" + ownerID.String() + "/"
	if !strings.HasPrefix(key, prefix) || strings.Contains(key, "..") {
		h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Reporte no encontrado")
		return
	}

	data, err := h.files.Open(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Reporte no encontrado")
			return
		}
		h.HandleError(c, err)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if path.Ext(key) == ".pdf" {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", `attachment; filename="`+path.Base(key)+`"`)
	c.Data(http.StatusOK, contentType, data)
}
