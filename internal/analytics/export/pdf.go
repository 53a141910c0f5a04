package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/tilequote/tilequote/internal/analytics"
	quoteexport "github.com/tilequote/tilequote/internal/export"
	"github.com/tilequote/tilequote/report"
)

// DashboardPayload is what the PDF layout needs.
type DashboardPayload struct {
	BusinessName string
	Currency     string
	Dashboard    analytics.Dashboard
}

// HTMLRenderer converts HTML to PDF bytes.
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, html string, page report.PageOptions) ([]byte, error)
}

// PDFExporter renders dashboards through an HTML-to-PDF service.
type PDFExporter struct {
	renderer HTMLRenderer
}

// NewPDFExporter wraps renderer.
func NewPDFExporter(renderer HTMLRenderer) *PDFExporter {
	return &PDFExporter{renderer: renderer}
}

// RenderDashboard lays the dashboard out on landscape A4 and returns the PDF.
func (p *PDFExporter) RenderDashboard(ctx context.Context, payload DashboardPayload) ([]byte, error) {
	if p == nil || p.renderer == nil {
		return nil, errors.New("pdf exporter not initialised")
	}
	html, err := DashboardHTML(payload)
	if err != nil {
		return nil, err
	}
	page := report.A4
	page.Landscape = true
	return p.renderer.RenderHTML(ctx, html, page)
}

var dashboardTemplate = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"money": func(p DashboardPayload, v float64) string { return quoteexport.FormatMoney(v, p.Currency) },
	"area":  quoteexport.FormatArea,
	"date": func(p DashboardPayload) string {
		return p.Dashboard.From.Format(dateLayout) + " to " + p.Dashboard.To.Format(dateLayout)
	},
}).Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>
body{font-family:sans-serif;margin:24px;color:#1f2937}
h1{font-size:20px;margin:0 0 4px}
table{width:100%;border-collapse:collapse;margin-bottom:16px}
th,td{border:1px solid #ddd;padding:6px;text-align:right}
th,td.label{text-align:left}
th{background:#f5f5f5}
</style></head><body>
<h1>{{.BusinessName}} dashboard</h1>
<p>{{date .}}</p>
<table><tbody>
<tr><td class="label">Quotations</td><td>{{.Dashboard.QuoteCount}}</td></tr>
<tr><td class="label">Invoices</td><td>{{.Dashboard.InvoiceCount}}</td></tr>
<tr><td class="label">Quoted value</td><td>{{money . .Dashboard.QuotedValue}}</td></tr>
<tr><td class="label">Invoiced value</td><td>{{money . .Dashboard.InvoicedValue}}</td></tr>
<tr><td class="label">Paid</td><td>{{money . .Dashboard.PaidValue}}</td></tr>
<tr><td class="label">Deposits expected</td><td>{{money . .Dashboard.DepositsExpected}}</td></tr>
<tr><td class="label">Expenses</td><td>{{money . .Dashboard.Expenses}}</td></tr>
<tr><td class="label">Net</td><td>{{money . .Dashboard.Net}}</td></tr>
<tr><td class="label">Area quoted</td><td>{{area .Dashboard.TotalSqm}}</td></tr>
</tbody></table>
{{if .Dashboard.Trend}}<table>
<thead><tr><th>Period</th><th>Quoted</th><th>Invoiced</th><th>Expenses</th><th>Net</th></tr></thead>
<tbody>{{range .Dashboard.Trend}}<tr><td class="label">{{.Period}}</td><td>{{money $ .Quoted}}</td><td>{{money $ .Invoiced}}</td><td>{{money $ .Expenses}}</td><td>{{money $ .Net}}</td></tr>{{end}}</tbody>
</table>{{end}}
</body></html>`))

// DashboardHTML renders the printable dashboard page.
func DashboardHTML(payload DashboardPayload) (string, error) {
	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, payload); err != nil {
		return "", fmt.Errorf("render dashboard html: %w", err)
	}
	return buf.String(), nil
}
