package pipeline

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/fairyhunter13/price-stock-merger/internal/model"
)

// Header returns the output column names for opts.
func Header(opts model.Options) []string {
	h := []string{model.ColumnSKU, model.ColumnFlag}
	if opts.IncludeDescription {
		h = append(h, model.ColumnDescription)
	}
	return append(h,
		model.ColumnUKStock, model.ColumnUKCover,
		model.ColumnNLStock, model.ColumnNLCover,
		model.ColumnMGStock, model.ColumnMGCover,
	)
}

// WriteCSV renders rows with a header line and no index column.
// Missing values are written as empty fields.
func WriteCSV(w io.Writer, rows []model.JoinedRow, opts model.Options) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(opts)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, 0, len(Header(opts)))
	for _, r := range rows {
		rec = append(rec[:0], r.SKU, formatFlag(r.Flag))
		var stock model.StockReportRow
		if r.Stock != nil {
			stock = *r.Stock
		}
		if opts.IncludeDescription {
			desc := ""
			if stock.Description != nil {
				desc = *stock.Description
			}
			rec = append(rec, desc)
		}
		for _, m := range stock.Metrics() {
			if m.Valid {
				rec = append(rec, m.Decimal.String())
			} else {
				rec = append(rec, "")
			}
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %q: %w", r.SKU, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalCSV is WriteCSV into a byte slice.
func MarshalCSV(rows []model.JoinedRow, opts model.Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatFlag(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
