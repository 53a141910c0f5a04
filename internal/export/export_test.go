package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tilequote/tilequote/internal/pricing"
	"github.com/tilequote/tilequote/internal/settings"
	"github.com/tilequote/tilequote/report"
)

func samplePayload() QuotePayload {
	doc := pricing.QuotationDocument{
		Tiles: []pricing.TileLineItem{
			{Category: "kitchen wall", Group: "Kitchen", Sqm: 20, Cartons: 14, UnitPrice: 6800},
			{Category: "bedroom", Sqm: 15, Cartons: 10, UnitPrice: 5500},
		},
		Materials: []pricing.MaterialLineItem{
			{Item: "=cement", Quantity: 3, Unit: "bags", UnitPrice: 9000},
		},
		Adjustments:     []pricing.Adjustment{{Description: "Discount", Amount: -5000}},
		WorkmanshipRate: 1500,
		Maintenance:     10000,
	}
	return QuotePayload{
		Number:     "QT-2026-0007",
		Kind:       "quotation",
		Title:      "Kitchen & bedroom",
		ClientName: "Mrs <Bello>",
		Date:       time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC),
		Business:   settings.BusinessDetails{Name: "Ade Tiles", Currency: "NGN", AccountNumber: "0123456789"},
		Document:   doc,
		Totals:     pricing.Aggregate(doc, pricing.DefaultProfile()),
		Checklist:  []string{"Confirm tile colour"},
		Terms:      "Deposit first.\nBalance on completion.",
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "₦1,234,567.89", FormatNaira(1234567.891))
	assert.Equal(t, "₦0.00", FormatNaira(0))
	assert.Equal(t, "-₦5,000.00", FormatNaira(-5000))
	assert.Equal(t, "$12.50", FormatMoney(12.5, "usd"))
	assert.Equal(t, "₦1.00", FormatMoney(1, "not-a-code"))
	assert.Equal(t, "12.00 m²", FormatArea(12))
}

func readCSV(t *testing.T, p QuotePayload) [][]string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteQuoteCSV(&buf, p))
	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func summaryValue(records [][]string, label string) (string, bool) {
	for _, rec := range records {
		if len(rec) == 2 && rec[0] == label {
			return rec[1], true
		}
	}
	return "", false
}

func TestWriteQuoteCSVUsesTotalsVerbatim(t *testing.T) {
	p := samplePayload()
	records := readCSV(t, p)

	assert.Equal(t, []string{"QUOTATION", "QT-2026-0007"}, records[0])
	grand, ok := summaryValue(records, "Grand Total")
	require.True(t, ok)
	assert.Equal(t, formatFloat(p.Totals.GrandTotal), grand)

	_, hasTax := summaryValue(records, "Tax")
	assert.False(t, hasTax, "tax is hidden by default")
	_, hasMaterials := summaryValue(records, "Materials")
	assert.True(t, hasMaterials)
}

func TestWriteQuoteCSVHonoursVisibility(t *testing.T) {
	p := samplePayload()
	p.Document.ShowTax = pricing.Bool(true)
	p.Document.ShowMaterials = pricing.Bool(false)
	p.Totals = pricing.Aggregate(p.Document, pricing.DefaultProfile())
	records := readCSV(t, p)

	tax, ok := summaryValue(records, "Tax")
	require.True(t, ok)
	assert.Equal(t, formatFloat(p.Totals.TaxAmount), tax)
	_, hasMaterials := summaryValue(records, "Materials")
	assert.False(t, hasMaterials)

	p.Document.ShowCostSummary = pricing.Bool(false)
	records = readCSV(t, p)
	_, hasSubtotal := summaryValue(records, "Subtotal")
	assert.False(t, hasSubtotal)
	_, hasGrand := summaryValue(records, "Grand Total")
	assert.True(t, hasGrand)
}

func TestBuildQuoteXLSX(t *testing.T) {
	p := samplePayload()
	data, err := BuildQuoteXLSX(p)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	title, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Ade Tiles", title)

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	var sawSanitized, sawGrand bool
	for _, row := range rows {
		for i, cell := range row {
			if cell == "'=cement" {
				sawSanitized = true
			}
			if cell == "Grand Total" && i+1 < len(row) {
				sawGrand = true
			}
		}
	}
	assert.True(t, sawSanitized, "formula-like text must be escaped")
	assert.True(t, sawGrand)
}

func TestRenderQuoteHTMLEscapesText(t *testing.T) {
	html, err := RenderQuoteHTML(samplePayload())
	require.NoError(t, err)
	assert.Contains(t, html, "Mrs &lt;Bello&gt;")
	assert.Contains(t, html, "QUOTATION QT-2026-0007")
	assert.Contains(t, html, "<p>Balance on completion.</p>")
	assert.NotContains(t, html, ">Tax<")
}

type stubHTMLRenderer struct {
	html string
	page report.PageOptions
}

func (s *stubHTMLRenderer) RenderHTML(_ context.Context, html string, page report.PageOptions) ([]byte, error) {
	s.html = html
	s.page = page
	return []byte("%PDF"), nil
}

func TestPDFRendererDelegatesHTML(t *testing.T) {
	stub := &stubHTMLRenderer{}
	pdf, err := NewPDFRenderer(stub).RenderQuote(context.Background(), samplePayload())
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf))
	assert.True(t, strings.Contains(stub.html, "Ade Tiles"))
	assert.Equal(t, report.A4, stub.page)

	var missing *PDFRenderer
	_, err = missing.RenderQuote(context.Background(), samplePayload())
	assert.ErrorIs(t, err, report.ErrRenderFailed)
}

func TestFilenameAndContentType(t *testing.T) {
	assert.Equal(t, "QT-2026-0007.pdf", Filename(samplePayload(), ExtPDF))
	assert.Equal(t, "quotation.csv", Filename(QuotePayload{}, ExtCSV))
	assert.Contains(t, ContentType(ExtXLSX), "spreadsheetml")
	assert.Contains(t, ContentType(ExtPDF), "application/pdf")
}
