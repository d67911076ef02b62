// Package model defines domain types used by the service.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Column names of the price-change export.
const (
	ColumnSKU  = "SKU"
	ColumnFlag = "Price Increase due to stock location or Low stock"
)

// Column names given to the selected stock-report columns.
const (
	ColumnSkuCode     = "Sku code"
	ColumnDescription = "SKU Description"
	ColumnUKStock     = "UK Stock"
	ColumnUKCover     = "UK Cover"
	ColumnNLStock     = "NL Stock"
	ColumnNLCover     = "NL Cover"
	ColumnMGStock     = "MG Stock"
	ColumnMGCover     = "MG Cover"
)

// Options selects between the pipeline variants.
type Options struct {
	// TrimIdentifiers strips whitespace around SKUs and drops blank ones.
	TrimIdentifiers bool
	// IncludeDescription selects the stock-report description column.
	IncludeDescription bool
}

// DefaultOptions is the stricter, description-carrying variant.
func DefaultOptions() Options {
	return Options{TrimIdentifiers: true, IncludeDescription: true}
}

// PriceChangeRow is one deduplicated row of the price-change export.
type PriceChangeRow struct {
	SKU  string `json:"sku"`
	Flag bool   `json:"flag"`
}

// StockReportRow is one row of the stock report after column selection.
type StockReportRow struct {
	SKU         string              `json:"sku"`
	Description *string             `json:"description,omitempty"`
	UKStock     decimal.NullDecimal `json:"uk_stock"`
	UKCover     decimal.NullDecimal `json:"uk_cover"`
	NLStock     decimal.NullDecimal `json:"nl_stock"`
	NLCover     decimal.NullDecimal `json:"nl_cover"`
	MGStock     decimal.NullDecimal `json:"mg_stock"`
	MGCover     decimal.NullDecimal `json:"mg_cover"`
}

// Metrics returns the six stock/cover values in output column order.
func (r StockReportRow) Metrics() [6]decimal.NullDecimal {
	return [6]decimal.NullDecimal{r.UKStock, r.UKCover, r.NLStock, r.NLCover, r.MGStock, r.MGCover}
}

// StockReport is the stock report keyed by Sku code.
type StockReport struct {
	Rows                []StockReportRow
	IncludesDescription bool
	index               map[string]int
}

// NewStockReport indexes rows by SKU. The first row wins for a repeated SKU.
func NewStockReport(rows []StockReportRow, includesDescription bool) *StockReport {
	idx := make(map[string]int, len(rows))
	for i, r := range rows {
		if _, seen := idx[r.SKU]; !seen {
			idx[r.SKU] = i
		}
	}
	return &StockReport{Rows: rows, IncludesDescription: includesDescription, index: idx}
}

// Lookup returns the stock row for sku.
func (s *StockReport) Lookup(sku string) (StockReportRow, bool) {
	i, ok := s.index[sku]
	if !ok {
		return StockReportRow{}, false
	}
	return s.Rows[i], true
}

// Duplicates reports how many rows were shadowed by an earlier row with the same SKU.
func (s *StockReport) Duplicates() int {
	return len(s.Rows) - len(s.index)
}

// JoinedRow is a price-change row with its stock data, if any.
type JoinedRow struct {
	PriceChangeRow
	// Stock is nil when the SKU is absent from the stock report.
	Stock *StockReportRow
}

// Region describes where a region's reports come from and how its output is named.
type Region struct {
	Code           string `validate:"required,uppercase"`
	PriceChangeURL string `validate:"required,url"`
	StockReportURL string `validate:"required,url"`
	OutputName     string `validate:"required,endswith=.csv"`
}

// Artifact is the serialized output of one pipeline run.
type Artifact struct {
	ID          string    `json:"id"`
	Region      string    `json:"region"`
	FileName    string    `json:"file_name"`
	CSV         []byte    `json:"-"`
	Rows        int       `json:"rows"`
	Sequence    uint64    `json:"sequence"`
	GeneratedAt time.Time `json:"generated_at"`
}
