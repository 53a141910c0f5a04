// Package analytics summarises quotes, invoices and expenses for the dashboard.
// Document values always come from pricing.Aggregate so the dashboard agrees
// with every other surface.
package analytics

import "time"

// Filter selects the dashboard window. Both dates are inclusive.
type Filter struct {
	From time.Time
	To   time.Time
}

// Dashboard is the cached dashboard payload.
type Dashboard struct {
	From             time.Time        `json:"from"`
	To               time.Time        `json:"to"`
	QuoteCount       int              `json:"quote_count"`
	InvoiceCount     int              `json:"invoice_count"`
	CancelledCount   int              `json:"cancelled_count"`
	QuotedValue      float64          `json:"quoted_value"`
	InvoicedValue    float64          `json:"invoiced_value"`
	PaidValue        float64          `json:"paid_value"`
	DepositsExpected float64          `json:"deposits_expected"`
	Expenses         float64          `json:"expenses"`
	Net              float64          `json:"net"`
	TotalSqm         float64          `json:"total_sqm"`
	StatusCounts     map[string]int   `json:"status_counts"`
	Trend            []TrendPoint     `json:"trend"`
	TopCategories    []CategoryVolume `json:"top_categories"`
}

// TrendPoint is one month of the trend series.
type TrendPoint struct {
	Period   string  `json:"period"`
	Quoted   float64 `json:"quoted"`
	Invoiced float64 `json:"invoiced"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// CategoryVolume is the tiled area quoted per category bucket.
type CategoryVolume struct {
	Category string  `json:"category"`
	Sqm      float64 `json:"sqm"`
}
