package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/tilequote/tilequote/report"
)

var quoteTemplate = template.Must(template.New("quote").Funcs(template.FuncMap{
	"money": func(p QuotePayload, v float64) string { return FormatMoney(v, p.Business.Currency) },
	"area":  FormatArea,
	"date":  formatDate,
	"lines": func(s string) []string { return strings.Split(strings.TrimSpace(s), "\n") },
}).Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.P.Heading}} {{.P.Number}}</title>
<style>
body{font-family:Helvetica,Arial,sans-serif;font-size:12px;color:#222;margin:24px;}
h1{font-size:20px;margin:0;}h2{font-size:14px;margin:20px 0 6px;}
table{width:100%;border-collapse:collapse;}th,td{border:1px solid #ddd;padding:5px;}
th{background:#333;color:#fff;text-align:left;}td.num{text-align:right;}
.summary{width:50%;margin-left:auto;}.summary td{border:none;}.strong td{font-weight:bold;border-top:1px solid #333;}
.muted{color:#666;}
</style></head><body>
<header>
<h1>{{.P.Business.Name}}</h1>
<div class="muted">{{.P.Business.Address}}{{if .P.Business.Phone}} · {{.P.Business.Phone}}{{end}}{{if .P.Business.Email}} · {{.P.Business.Email}}{{end}}</div>
<h2>{{.P.Heading}} {{.P.Number}}</h2>
<div>{{if .P.ClientName}}For: <strong>{{.P.ClientName}}</strong> · {{end}}{{date .P.Date}}</div>
{{if .P.Title}}<div>{{.P.Title}}</div>{{end}}
</header>
<h2>Tiles</h2>
<table><thead><tr><th>Group</th><th>Category</th><th>Size</th><th>Area</th><th>Cartons</th><th>Unit Price</th><th>Cost</th></tr></thead><tbody>
{{range .Tiles}}<tr><td>{{.Group}}</td><td>{{.Category}}</td><td>{{.Size}}</td><td class="num">{{area .Sqm}}</td><td class="num">{{.Cartons}}</td><td class="num">{{money $.P .UnitPrice}}</td><td class="num">{{money $.P .Cost}}</td></tr>
{{end}}</tbody></table>
{{if .Materials}}<h2>Materials</h2>
<table><thead><tr><th>Item</th><th>Quantity</th><th>Unit</th><th>Unit Price</th><th>Cost</th></tr></thead><tbody>
{{range .Materials}}<tr><td>{{.Item}}</td><td class="num">{{.Quantity}}</td><td>{{.Unit}}</td><td class="num">{{money $.P .UnitPrice}}</td><td class="num">{{money $.P .Cost}}</td></tr>
{{end}}</tbody></table>{{end}}
{{if .Adjustments}}<h2>Adjustments</h2>
<table><tbody>
{{range .Adjustments}}<tr><td>{{.Description}}</td><td class="num">{{money $.P .Amount}}</td></tr>
{{end}}</tbody></table>{{end}}
<h2>Summary</h2>
<table class="summary"><tbody>
{{range .Summary}}<tr{{if .Strong}} class="strong"{{end}}><td>{{.Label}}</td><td class="num">{{if .Area}}{{area .Amount}}{{else}}{{money $.P .Amount}}{{end}}</td></tr>
{{end}}</tbody></table>
{{if .P.Checklist}}<h2>Checklist</h2><ul>{{range .P.Checklist}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .P.Business.AccountNumber}}<h2>Payment</h2>
<div>{{.P.Business.BankName}} · {{.P.Business.AccountName}} · {{.P.Business.AccountNumber}}</div>{{end}}
{{if .P.Terms}}<h2>Terms</h2>{{range lines .P.Terms}}<p>{{.}}</p>{{end}}{{end}}
</body></html>
`))

type htmlView struct {
	P           QuotePayload
	Tiles       []tileRow
	Materials   []materialRow
	Adjustments []adjustmentView
	Summary     []summaryRow
}

type adjustmentView struct {
	Description string
	Amount      float64
}

// RenderQuoteHTML renders a printable HTML page for the document.
func RenderQuoteHTML(p QuotePayload) (string, error) {
	view := htmlView{
		P:         p,
		Tiles:     tileRows(p.Document),
		Materials: materialRows(p.Document),
		Summary:   summaryRows(p.Document, p.Totals),
	}
	for _, a := range adjustments(p.Document) {
		view.Adjustments = append(view.Adjustments, adjustmentView{Description: a.Description, Amount: a.Amount.Float64()})
	}
	var buf bytes.Buffer
	if err := quoteTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render quote html: %w", err)
	}
	return buf.String(), nil
}

// HTMLRenderer converts HTML to PDF.
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, html string, page report.PageOptions) ([]byte, error)
}

// PDFRenderer produces quote PDFs through an HTML renderer such as Gotenberg.
type PDFRenderer struct {
	renderer HTMLRenderer
}

// NewPDFRenderer wraps renderer.
func NewPDFRenderer(renderer HTMLRenderer) *PDFRenderer {
	return &PDFRenderer{renderer: renderer}
}

// RenderQuote returns the PDF bytes for p.
func (r *PDFRenderer) RenderQuote(ctx context.Context, p QuotePayload) ([]byte, error) {
	if r == nil || r.renderer == nil {
		return nil, fmt.Errorf("%w: pdf renderer not configured", report.ErrRenderFailed)
	}
	html, err := RenderQuoteHTML(p)
	if err != nil {
		return nil, err
	}
	return r.renderer.RenderHTML(ctx, html, report.A4)
}

// Filename returns the download name for p with the given extension.
func Filename(p QuotePayload, ext string) string {
	name := strings.NewReplacer("/", "-", " ", "-").Replace(strings.TrimSpace(p.Number))
	if name == "" {
		name = strings.ToLower(p.Heading())
	}
	return name + ext
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2 January 2006")
}
