package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilequote/tilequote/internal/analytics"
	"github.com/tilequote/tilequote/report"
)

func sampleDashboard() analytics.Dashboard {
	return analytics.Dashboard{
		From:          time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		To:            time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
		QuoteCount:    3,
		InvoiceCount:  1,
		QuotedValue:   235500,
		InvoicedValue: 78500,
		Expenses:      7500.5,
		Net:           70999.5,
		Trend: []analytics.TrendPoint{
			{Period: "2026-04", Invoiced: 78500, Expenses: 5000, Net: 73500},
			{Period: "2026-05", Quoted: 235500, Expenses: 2500.5, Net: -2500.5},
		},
	}
}

func TestWriteDashboardCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDashboardCSV(&buf, sampleDashboard()))

	reader := csv.NewReader(&buf)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"Metric", "Value"}, records[0])
	assert.Equal(t, []string{"From", "2026-04-01"}, records[1])
	assert.Contains(t, records, []string{"Net", "70999.50"})
	assert.Equal(t, []string{"2026-05", "235500.00", "0.00", "2500.50", "-2500.50"}, records[len(records)-1])
}

type recordingRenderer struct {
	html string
	page report.PageOptions
}

func (r *recordingRenderer) RenderHTML(_ context.Context, html string, page report.PageOptions) ([]byte, error) {
	r.html = html
	r.page = page
	return []byte("%PDF"), nil
}

func TestRenderDashboardUsesLandscape(t *testing.T) {
	renderer := &recordingRenderer{}
	exporter := NewPDFExporter(renderer)

	body, err := exporter.RenderDashboard(context.Background(), DashboardPayload{
		BusinessName: "Adeyemi <Tiles>",
		Currency:     "NGN",
		Dashboard:    sampleDashboard(),
	})
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(body))
	assert.True(t, renderer.page.Landscape)
	assert.Contains(t, renderer.html, "Adeyemi &lt;Tiles&gt;")
	assert.Contains(t, renderer.html, "2026-04-01 to 2026-05-31")
	assert.Contains(t, renderer.html, "2026-05")
}

func TestRenderDashboardRequiresRenderer(t *testing.T) {
	var exporter *PDFExporter
	_, err := exporter.RenderDashboard(context.Background(), DashboardPayload{})
	assert.Error(t, err)
}
