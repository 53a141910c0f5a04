// Package export renders dashboards as CSV and PDF downloads.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/tilequote/tilequote/internal/analytics"
)

const dateLayout = "2006-01-02"

// WriteDashboardCSV writes the headline figures, then a blank line, then the
// monthly trend.
func WriteDashboardCSV(w io.Writer, d analytics.Dashboard) error {
	writer := csv.NewWriter(w)

	records := [][]string{
		{"Metric", "Value"},
		{"From", d.From.Format(dateLayout)},
		{"To", d.To.Format(dateLayout)},
		{"Quotations", strconv.Itoa(d.QuoteCount)},
		{"Invoices", strconv.Itoa(d.InvoiceCount)},
		{"Cancelled", strconv.Itoa(d.CancelledCount)},
		{"Quoted Value", formatFloat(d.QuotedValue)},
		{"Invoiced Value", formatFloat(d.InvoicedValue)},
		{"Paid Value", formatFloat(d.PaidValue)},
		{"Deposits Expected", formatFloat(d.DepositsExpected)},
		{"Expenses", formatFloat(d.Expenses)},
		{"Net", formatFloat(d.Net)},
		{"Total Area (m2)", formatFloat(d.TotalSqm)},
		{},
		{"Period", "Quoted", "Invoiced", "Expenses", "Net"},
	}
	for _, point := range d.Trend {
		records = append(records, []string{
			point.Period,
			formatFloat(point.Quoted),
			formatFloat(point.Invoiced),
			formatFloat(point.Expenses),
			formatFloat(point.Net),
		})
	}
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
