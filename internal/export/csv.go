package export

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteQuoteCSV serialises a priced document to CSV.
func WriteQuoteCSV(w io.Writer, p QuotePayload) error {
	writer := csv.NewWriter(w)

	records := [][]string{
		{p.Heading(), p.Number},
		{"Title", p.Title},
		{"Client", p.ClientName},
		{"Date", formatDate(p.Date)},
		{},
		{"Group", "Category", "Size", "Area (m2)", "Cartons", "Unit Price", "Cost"},
	}
	for _, row := range tileRows(p.Document) {
		records = append(records, []string{
			row.Group,
			row.Category,
			row.Size,
			formatFloat(row.Sqm),
			strconv.Itoa(row.Cartons),
			formatFloat(row.UnitPrice),
			formatFloat(row.Cost),
		})
	}

	if materials := materialRows(p.Document); len(materials) > 0 {
		records = append(records, []string{}, []string{"Item", "Quantity", "Unit", "Unit Price", "Cost"})
		for _, row := range materials {
			records = append(records, []string{
				row.Item,
				formatFloat(row.Quantity),
				row.Unit,
				formatFloat(row.UnitPrice),
				formatFloat(row.Cost),
			})
		}
	}

	if adj := adjustments(p.Document); len(adj) > 0 {
		records = append(records, []string{}, []string{"Adjustment", "Amount"})
		for _, a := range adj {
			records = append(records, []string{a.Description, formatFloat(a.Amount.Float64())})
		}
	}

	records = append(records, []string{}, []string{"Summary", "Amount"})
	for _, row := range summaryRows(p.Document, p.Totals) {
		records = append(records, []string{row.Label, formatFloat(row.Amount)})
	}

	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
