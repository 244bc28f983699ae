package printing

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"

	appeng "github.com/estudio-contable/backend/internal/application/engagement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePDF struct {
	html string
}

func (f *fakePDF) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	f.html = html
	return []byte("%PDF-1.4"), nil
}

func sampleReport() *appeng.CompletedMonthReport {
	return &appeng.CompletedMonthReport{
		Month: 3,
		Year:  2025,
		Rows: []appeng.CompletedRow{
			{ID: uuid.New(), ClientName: "José Núñez", CompletedOn: "2025-03-20", TotalAmount: decimal.RequireFromString("12500")},
			{ID: uuid.New(), ClientName: "Comercial <Sur>", CompletedOn: "2025-03-02", TotalAmount: decimal.RequireFromString("99.5")},
		},
		Total: decimal.RequireFromString("12599.5"),
	}
}

func TestReportRenderer_RenderCSV(t *testing.T) {
	data, err := NewReportRenderer(nil).RenderCSV(sampleReport())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), string(utf8BOM)))

	records, err := csv.NewReader(strings.NewReader(string(data[len(utf8BOM):]))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"ID", "Cliente", "Fecha de completado", "Monto total"}, records[0])
	assert.Equal(t, "José Núñez", records[1][1])
	assert.Equal(t, "99.50", records[2][3])
	assert.Equal(t, []string{"", "TOTAL", "", "12599.50"}, records[3])
}

func TestReportRenderer_RenderPDF(t *testing.T) {
	t.Run("unavailable without engine", func(t *testing.T) {
		_, err := NewReportRenderer(nil).RenderPDF(context.Background(), sampleReport())
		assert.ErrorIs(t, err, appeng.ErrExportUnavailable)
	})

	t.Run("renders html through the engine", func(t *testing.T) {
		engine := &fakePDF{}
		pdf, err := NewReportRenderer(engine).RenderPDF(context.Background(), sampleReport())
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4", string(pdf))

		assert.Contains(t, engine.html, "Operaciones completadas - Marzo 2025")
		assert.Contains(t, engine.html, "José Núñez")
		assert.Contains(t, engine.html, "Comercial &lt;Sur&gt;")
		assert.Contains(t, engine.html, "12.500,00")
	})
}

func TestReportRenderer_EmptyMonth(t *testing.T) {
	html, err := NewReportRenderer(nil).RenderHTML(&appeng.CompletedMonthReport{Month: 1, Year: 2024, Total: decimal.Zero})
	require.NoError(t, err)
	assert.Contains(t, html, "Sin operaciones completadas")
	assert.Contains(t, html, "Enero 2024")
}

func TestChromedpRenderer(t *testing.T) {
	r := NewChromedpRenderer(ChromedpConfig{})
	defer r.Close()
	assert.Equal(t, defaultChromeTimeout, r.config.Timeout)

	_, err := r.RenderHTML(context.Background(), "   ")
	assert.Error(t, err)

	params := defaultPrintParams()
	assert.InDelta(t, 8.27, params.paperWidth, 0.01)
	assert.InDelta(t, 11.69, params.paperHeight, 0.01)
}

func TestEstimatePageCount(t *testing.T) {
	assert.Equal(t, 1, estimatePageCount([]byte("%PDF")))
	assert.Equal(t, 2, estimatePageCount([]byte("/Type /Pages /Type /Page /Type /Page")))
}
