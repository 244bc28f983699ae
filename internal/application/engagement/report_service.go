package engagement

import (
	"context"
	"fmt"
	"time"

	"github.com/estudio-contable/backend/internal/domain/engagement"
	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/estudio-contable/backend/internal/infrastructure/logger"
	"github.com/estudio-contable/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultDownloadExpiry is the lifetime of export download links
const DefaultDownloadExpiry = 15 * time.Minute

// ErrExportUnavailable is returned when the requested export format cannot be produced
var ErrExportUnavailable = shared.NewDomainError("EXPORT_UNAVAILABLE", "La exportación solicitada no está disponible")

// MonthNames are the Spanish month names used by reports, January first
var MonthNames = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// ReportService builds revenue reports over completed engagements
type ReportService struct {
	repo           engagement.Repository
	renderer       ReportRenderer
	archive        ReportArchive
	downloadExpiry time.Duration
	logger         *zap.Logger
}

// NewReportService creates a new ReportService. Exports are unavailable
// until SetExporter is called.
func NewReportService(repo engagement.Repository, log *zap.Logger) *ReportService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReportService{
		repo:           repo,
		downloadExpiry: DefaultDownloadExpiry,
		logger:         log,
	}
}

// SetExporter wires document rendering and archiving
func (s *ReportService) SetExporter(renderer ReportRenderer, archive ReportArchive, downloadExpiry time.Duration) {
	s.renderer = renderer
	s.archive = archive
	if downloadExpiry > 0 {
		s.downloadExpiry = downloadExpiry
	}
}

// CompletedInMonth lists engagements completed in a calendar month, newest first
func (s *ReportService) CompletedInMonth(ctx context.Context, ownerID uuid.UUID, month, year int) (*CompletedMonthReport, error) {
	if err := validateMonthYear(month, year); err != nil {
		return nil, err
	}
	from, to := shared.MonthBounds(year, month)
	completed, err := s.repo.FindCompletedBetween(ctx, ownerID, from, to)
	if err != nil {
		return nil, shared.NewPersistenceError("completed_in_month", ownerID, fmt.Sprintf("%d-%02d", year, month), err)
	}

	report := &CompletedMonthReport{
		Month: month,
		Year:  year,
		Rows:  make([]CompletedRow, 0, len(completed)),
		Total: decimal.Zero,
	}
	for i := range completed {
		e := &completed[i]
		row := CompletedRow{
			ID:          e.ID,
			ClientName:  e.ClientName,
			TotalAmount: e.TotalAmount.Round(2),
		}
		if e.CompletedOn != nil {
			row.CompletedOn = e.CompletedOn.Format(shared.ISODate)
		}
		report.Rows = append(report.Rows, row)
		report.Total = report.Total.Add(row.TotalAmount)
	}
	return report, nil
}

// AnnualStats totals completed amounts for each month of a year
func (s *ReportService) AnnualStats(ctx context.Context, ownerID uuid.UUID, year int) (*AnnualStatsResponse, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	sums, err := s.repo.SumCompletedByMonth(ctx, ownerID, year)
	if err != nil {
		return nil, shared.NewPersistenceError("annual_stats", ownerID, fmt.Sprint(year), err)
	}

	resp := &AnnualStatsResponse{Year: year, Months: make([]MonthTotal, 12)}
	for i := range resp.Months {
		total, ok := sums[i+1]
		if !ok {
			total = decimal.Zero
		}
		resp.Months[i] = MonthTotal{Month: i + 1, MonthName: MonthNames[i], Total: total.Round(2)}
	}
	return resp, nil
}

// ReportKey is the object storage key of an exported monthly report
func ReportKey(ownerID uuid.UUID, month, year int, format ExportFormat) string {
	return fmt.Sprintf("reportes/%s/%d-%02d/completadas.%s", ownerID, year, month, format)
}

// ExportCompletedInMonth renders the monthly report, archives it and returns a
// download link.
func (s *ReportService) ExportCompletedInMonth(ctx context.Context, ownerID uuid.UUID, month, year int, format ExportFormat) (*ExportResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "export_completed")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOwnerID, ownerID.String(),
		telemetry.SpanAttrReportFormat, string(format),
	)

	if format != ExportCSV && format != ExportPDF {
		return nil, shared.NewDomainError("INVALID_INPUT", "Formato de exportación inválido (csv|pdf)")
	}
	if s.renderer == nil || s.archive == nil {
		return nil, ErrExportUnavailable
	}

	report, err := s.CompletedInMonth(ctx, ownerID, month, year)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var (
		data        []byte
		contentType string
	)
	switch format {
	case ExportCSV:
		data, err = s.renderer.RenderCSV(report)
		contentType = "text/csv; charset=utf-8"
	case ExportPDF:
		data, err = s.renderer.RenderPDF(ctx, report)
		contentType = "application/pdf"
	}
	if err != nil {
		telemetry.RecordError(span, err)
		if shared.IsValidationError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("render %s report: %w", format, err)
	}

	key := ReportKey(ownerID, month, year, format)
	if err := s.archive.Upload(ctx, key, data, contentType); err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewPersistenceError("archive_report", ownerID, key, err)
	}
	url, expiresAt, err := s.archive.GenerateDownloadURL(ctx, key, s.downloadExpiry)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewPersistenceError("presign_report", ownerID, key, err)
	}

	logger.WithLogger(ctx, s.logger).Info("Monthly report exported",
		zap.String("owner_id", ownerID.String()),
		zap.String("key", key),
		zap.Int("rows", len(report.Rows)),
		zap.Int("bytes", len(data)),
	)
	telemetry.SetOK(span)
	return &ExportResult{
		Key:       key,
		URL:       url,
		ExpiresAt: expiresAt,
		Rows:      len(report.Rows),
		Total:     report.Total,
	}, nil
}
