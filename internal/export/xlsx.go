package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	sheetName   = "Quote"
	moneyFormat = `#,##0.00`
)

type xlsxStyles struct {
	title, header, cell, money, label, total int
}

// BuildQuoteXLSX renders a priced document as an Excel workbook.
func BuildQuoteXLSX(p QuotePayload) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	widths := map[string]float64{"A": 18, "B": 28, "C": 12, "D": 12, "E": 10, "F": 14, "G": 16}
	for col, width := range widths {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}
	styles, err := newXLSXStyles(f)
	if err != nil {
		return nil, err
	}

	w := &sheetWriter{f: f, styles: styles, row: 1}
	w.title(p.Business.Name)
	w.pair(p.Heading(), p.Number)
	w.pair("Title", p.Title)
	w.pair("Client", p.ClientName)
	w.pair("Date", formatDate(p.Date))
	w.row++

	w.header("Group", "Category", "Size", "Area (m²)", "Cartons", "Unit Price", "Cost")
	for _, t := range tileRows(p.Document) {
		w.values([]any{t.Group, t.Category, t.Size, t.Sqm, t.Cartons, t.UnitPrice, t.Cost}, 5)
	}

	if materials := materialRows(p.Document); len(materials) > 0 {
		w.row++
		w.header("Item", "Quantity", "Unit", "Unit Price", "Cost")
		for _, m := range materials {
			w.values([]any{m.Item, m.Quantity, m.Unit, m.UnitPrice, m.Cost}, 3)
		}
	}

	if adj := adjustments(p.Document); len(adj) > 0 {
		w.row++
		w.header("Adjustment", "Amount")
		for _, a := range adj {
			w.values([]any{a.Description, a.Amount.Float64()}, 1)
		}
	}

	w.row++
	for _, s := range summaryRows(p.Document, p.Totals) {
		w.summary(s)
	}

	if len(p.Checklist) > 0 {
		w.row++
		w.header("Checklist")
		for _, item := range p.Checklist {
			w.values([]any{sanitizeCell(item)}, -1)
		}
	}
	if terms := strings.TrimSpace(p.Terms); terms != "" {
		w.row++
		w.pair("Terms", terms)
	}
	if w.err != nil {
		return nil, w.err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func newXLSXStyles(f *excelize.File) (xlsxStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "#CCCCCC", Style: 1},
		{Type: "right", Color: "#CCCCCC", Style: 1},
		{Type: "top", Color: "#CCCCCC", Style: 1},
		{Type: "bottom", Color: "#CCCCCC", Style: 1},
	}
	var s xlsxStyles
	defs := []struct {
		target *int
		style  *excelize.Style
	}{
		{&s.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}}},
		{&s.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center"},
			Border:    border,
		}},
		{&s.cell, &excelize.Style{Border: border}},
		{&s.money, &excelize.Style{Border: border, CustomNumFmt: strPtr(moneyFormat)}},
		{&s.label, &excelize.Style{Font: &excelize.Font{Bold: true}, Alignment: &excelize.Alignment{Horizontal: "right"}}},
		{&s.total, &excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: strPtr(moneyFormat)}},
	}
	for i, def := range defs {
		id, err := f.NewStyle(def.style)
		if err != nil {
			return s, fmt.Errorf("create style %d: %w", i, err)
		}
		*def.target = id
	}
	return s, nil
}

type sheetWriter struct {
	f      *excelize.File
	styles xlsxStyles
	row    int
	err    error
}

func (w *sheetWriter) cell(col int) string {
	name, err := excelize.CoordinatesToCellName(col, w.row)
	if err != nil && w.err == nil {
		w.err = err
	}
	return name
}

func (w *sheetWriter) set(col int, value any, style int) {
	if w.err != nil {
		return
	}
	ref := w.cell(col)
	if err := w.f.SetCellValue(sheetName, ref, value); err != nil {
		w.err = err
		return
	}
	if err := w.f.SetCellStyle(sheetName, ref, ref, style); err != nil {
		w.err = err
	}
}

func (w *sheetWriter) title(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	w.set(1, sanitizeCell(text), w.styles.title)
	w.row++
}

func (w *sheetWriter) pair(label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	w.set(1, label, w.styles.label)
	w.set(2, sanitizeCell(value), w.styles.cell)
	w.row++
}

func (w *sheetWriter) header(labels ...string) {
	for i, label := range labels {
		w.set(i+1, label, w.styles.header)
	}
	w.row++
}

// values writes one row; columns at or after moneyFrom use the money format.
func (w *sheetWriter) values(values []any, moneyFrom int) {
	for i, v := range values {
		style := w.styles.cell
		if moneyFrom >= 0 && i >= moneyFrom {
			style = w.styles.money
		}
		if s, ok := v.(string); ok {
			v = sanitizeCell(s)
		}
		w.set(i+1, v, style)
	}
	w.row++
}

func (w *sheetWriter) summary(s summaryRow) {
	w.set(6, s.Label, w.styles.label)
	style := w.styles.money
	if s.Strong {
		style = w.styles.total
	}
	w.set(7, s.Amount, style)
	w.row++
}

// sanitizeCell stops user text from being evaluated as a spreadsheet formula.
func sanitizeCell(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@':
		return "'" + v
	}
	return v
}

func strPtr(s string) *string { return &s }
