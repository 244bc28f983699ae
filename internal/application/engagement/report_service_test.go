package engagement

import (
	"context"
	"testing"
	"time"

	"github.com/estudio-contable/backend/internal/domain/engagement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRenderer struct {
	pdfErr error
}

func (r fakeRenderer) RenderCSV(report *CompletedMonthReport) ([]byte, error) {
	return []byte("id,cliente\n"), nil
}

func (r fakeRenderer) RenderPDF(ctx context.Context, report *CompletedMonthReport) ([]byte, error) {
	if r.pdfErr != nil {
		return nil, r.pdfErr
	}
	return []byte("%PDF-1.4"), nil
}

type fakeArchive struct {
	uploaded map[string]string
}

func (a *fakeArchive) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if a.uploaded == nil {
		a.uploaded = make(map[string]string)
	}
	a.uploaded[key] = contentType
	return nil
}

func (a *fakeArchive) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	return "https://files.example.com/" + key, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC).Add(expiresIn), nil
}

func completedEngagement(t *testing.T, ownerID uuid.UUID, name, total string, on time.Time) engagement.Engagement {
	t.Helper()
	e, err := engagement.NewEngagement(ownerID, uuid.New(), engagement.TypeAdvisory, dec(total), on, nil)
	require.NoError(t, err)
	e.MarkCompleted()
	e.CompletedOn = &on
	e.ClientName = name
	return *e
}

func TestReportService_CompletedInMonth(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	repo := new(MockEngagementRepository)
	svc := NewReportService(repo, zap.NewNop())

	repo.On("FindCompletedBetween", mock.Anything, ownerID, date(2024, 5, 1), date(2024, 5, 31)).Return([]engagement.Engagement{
		completedEngagement(t, ownerID, "Beta", "100.01", date(2024, 5, 20)),
		completedEngagement(t, ownerID, "Alfa", "250", date(2024, 5, 3)),
	}, nil)

	report, err := svc.CompletedInMonth(ctx, ownerID, 5, 2024)
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, "Beta", report.Rows[0].ClientName)
	assert.Equal(t, "2024-05-20", report.Rows[0].CompletedOn)
	assert.True(t, report.Total.Equal(dec("350.01")), report.Total.String())

	_, err = svc.CompletedInMonth(ctx, ownerID, 0, 2024)
	assert.Equal(t, "INVALID_DATE", codeOf(t, err))
}

func TestReportService_AnnualStats(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	repo := new(MockEngagementRepository)
	svc := NewReportService(repo, nil)

	repo.On("SumCompletedByMonth", mock.Anything, ownerID, 2024).Return(map[int]decimal.Decimal{
		1:  dec("1000"),
		12: dec("99.999"),
	}, nil)

	stats, err := svc.AnnualStats(ctx, ownerID, 2024)
	require.NoError(t, err)
	require.Len(t, stats.Months, 12)
	assert.Equal(t, "Enero", stats.Months[0].MonthName)
	assert.True(t, stats.Months[0].Total.Equal(dec("1000")))
	assert.True(t, stats.Months[5].Total.IsZero())
	assert.Equal(t, "Diciembre", stats.Months[11].MonthName)
	assert.True(t, stats.Months[11].Total.Equal(dec("100")))

	_, err = svc.AnnualStats(ctx, ownerID, 2019)
	assert.Equal(t, "INVALID_DATE", codeOf(t, err))
}

func TestReportService_Export(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("unavailable without exporter", func(t *testing.T) {
		svc := NewReportService(new(MockEngagementRepository), nil)
		_, err := svc.ExportCompletedInMonth(ctx, ownerID, 5, 2024, ExportCSV)
		assert.ErrorIs(t, err, ErrExportUnavailable)
	})

	t.Run("csv archived under the owner prefix", func(t *testing.T) {
		repo := new(MockEngagementRepository)
		repo.On("FindCompletedBetween", mock.Anything, ownerID, mock.Anything, mock.Anything).Return([]engagement.Engagement{
			completedEngagement(t, ownerID, "Alfa", "250", date(2024, 5, 3)),
		}, nil)
		archive := &fakeArchive{}
		svc := NewReportService(repo, nil)
		svc.SetExporter(fakeRenderer{}, archive, time.Hour)

		res, err := svc.ExportCompletedInMonth(ctx, ownerID, 5, 2024, ExportCSV)
		require.NoError(t, err)
		key := "reportes/" + ownerID.String() + "/2024-05/completadas.csv"
		assert.Equal(t, key, res.Key)
		assert.Equal(t, "text/csv; charset=utf-8", archive.uploaded[key])
		assert.Equal(t, "https://files.example.com/"+key, res.URL)
		assert.Equal(t, 1, res.Rows)
		assert.True(t, res.Total.Equal(dec("250")))
	})

	t.Run("pdf renderer disabled", func(t *testing.T) {
		repo := new(MockEngagementRepository)
		repo.On("FindCompletedBetween", mock.Anything, ownerID, mock.Anything, mock.Anything).Return([]engagement.Engagement{}, nil)
		svc := NewReportService(repo, nil)
		svc.SetExporter(fakeRenderer{pdfErr: ErrExportUnavailable}, &fakeArchive{}, 0)

		_, err := svc.ExportCompletedInMonth(ctx, ownerID, 5, 2024, ExportPDF)
		assert.ErrorIs(t, err, ErrExportUnavailable)
	})

	t.Run("unknown format", func(t *testing.T) {
		svc := NewReportService(new(MockEngagementRepository), nil)
		svc.SetExporter(fakeRenderer{}, &fakeArchive{}, 0)
		_, err := svc.ExportCompletedInMonth(ctx, ownerID, 5, 2024, ExportFormat("xlsx"))
		assert.Equal(t, "INVALID_INPUT", codeOf(t, err))
	})
}
