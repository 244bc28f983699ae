package printing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"html/template"

	appeng "github.com/estudio-contable/backend/internal/application/engagement"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// HTMLToPDF turns a complete HTML document into a PDF
type HTMLToPDF interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// ReportRenderer implements the report export formats. Without a PDF engine
// only CSV is available.
type ReportRenderer struct {
	pdf     HTMLToPDF
	printer *message.Printer
}

// NewReportRenderer creates a renderer; pdf may be nil
func NewReportRenderer(pdf HTMLToPDF) *ReportRenderer {
	return &ReportRenderer{
		pdf:     pdf,
		printer: message.NewPrinter(language.Spanish),
	}
}

var _ appeng.ReportRenderer = (*ReportRenderer)(nil)

// utf8BOM lets spreadsheet apps detect the encoding of accented names
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RenderCSV writes one row per engagement and a closing total row
func (r *ReportRenderer) RenderCSV(report *appeng.CompletedMonthReport) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	records := make([][]string, 0, len(report.Rows)+2)
	records = append(records, []string{"ID", "Cliente", "Fecha de completado", "Monto total"})
	for _, row := range report.Rows {
		records = append(records, []string{
			row.ID.String(),
			row.ClientName,
			row.CompletedOn,
			row.TotalAmount.StringFixed(2),
		})
	}
	records = append(records, []string{"", "TOTAL", "", report.Total.StringFixed(2)})
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPDF renders the report through the HTML template and the PDF engine
func (r *ReportRenderer) RenderPDF(ctx context.Context, report *appeng.CompletedMonthReport) ([]byte, error) {
	if r.pdf == nil {
		return nil, appeng.ErrExportUnavailable
	}
	html, err := r.RenderHTML(report)
	if err != nil {
		return nil, err
	}
	return r.pdf.RenderHTML(ctx, html)
}

type htmlRow struct {
	Client      string
	CompletedOn string
	Amount      string
}

type htmlReport struct {
	Title string
	Rows  []htmlRow
	Count int
	Total string
}

// RenderHTML builds the printable document
func (r *ReportRenderer) RenderHTML(report *appeng.CompletedMonthReport) (string, error) {
	data := htmlReport{
		Title: fmt.Sprintf("Operaciones completadas - %s %d", monthName(report.Month), report.Year),
		Rows:  make([]htmlRow, len(report.Rows)),
		Count: len(report.Rows),
		Total: r.money(report.Total),
	}
	for i, row := range report.Rows {
		data.Rows[i] = htmlRow{
			Client:      row.ClientName,
			CompletedOn: row.CompletedOn,
			Amount:      r.money(row.TotalAmount),
		}
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render report template: %w", err)
	}
	return buf.String(), nil
}

// money formats with Spanish digit grouping, e.g. $ 12.500,00
func (r *ReportRenderer) money(d decimal.Decimal) string {
	return r.printer.Sprintf("$ %.2f", d.InexactFloat64())
}

func monthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return appeng.MonthNames[month-1]
}

var reportTemplate = template.Must(template.New("completadas").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body { font-family: Arial, Helvetica, sans-serif; font-size: 11px; color: #222; }
h1 { font-size: 16px; margin-bottom: 4px; }
p.meta { color: #666; margin-top: 0; }
table { width: 100%; border-collapse: collapse; }
th, td { padding: 6px 8px; border-bottom: 1px solid #ddd; text-align: left; }
th { background: #f2f2f2; }
td.amount, th.amount { text-align: right; }
tfoot td { font-weight: bold; border-top: 2px solid #333; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">{{.Count}} operaciones</p>
<table>
<thead><tr><th>Cliente</th><th>Fecha de completado</th><th class="amount">Monto total</th></tr></thead>
<tbody>
{{- range .Rows}}
<tr><td>{{.Client}}</td><td>{{.CompletedOn}}</td><td class="amount">{{.Amount}}</td></tr>
{{- else}}
<tr><td colspan="3">Sin operaciones completadas en el período</td></tr>
{{- end}}
</tbody>
<tfoot><tr><td colspan="2">Total</td><td class="amount">{{.Total}}</td></tr></tfoot>
</table>
</body>
</html>
`))
