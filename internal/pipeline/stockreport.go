package pipeline

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/price-stock-merger/internal/model"
	"github.com/fairyhunter13/price-stock-merger/internal/obs"
)

// bannerRows is the number of records above the stock report's header row.
const bannerRows = 3

// Positions of the selected stock-report columns.
const (
	colSkuCode     = 0
	colDescription = 1
	colUKStock     = 5
	colUKCover     = 6
	colNLStock     = 12
	colNLCover     = 13
	colMGStock     = 19
	colMGCover     = 20
)

// minStockColumns is the header width needed to address every selected column.
const minStockColumns = colMGCover + 1

var metricColumns = []struct {
	pos  int
	name string
}{
	{colUKStock, model.ColumnUKStock},
	{colUKCover, model.ColumnUKCover},
	{colNLStock, model.ColumnNLStock},
	{colNLCover, model.ColumnNLCover},
	{colMGStock, model.ColumnMGStock},
	{colMGCover, model.ColumnMGCover},
}

// LoadStockReport downloads the stock report and selects its stock and cover columns.
func (p *Pipeline) LoadStockReport(ctx context.Context, url string) (*model.StockReport, error) {
	data, err := p.fetch(ctx, SourceStockReport, url)
	if err != nil {
		return nil, err
	}
	return ParseStockReport(data, p.opts)
}

// ParseStockReport skips the banner, validates the header width and every row's
// field count, and reads the selected columns by position. A stock or cover
// cell that is not a number is read as missing.
func ParseStockReport(data []byte, opts model.Options) (*model.StockReport, error) {
	recs, err := readRecords(SourceStockReport, data)
	if err != nil {
		return nil, err
	}
	if len(recs) <= bannerRows {
		return nil, parseErr(SourceStockReport, 0, "",
			"expected %d banner rows followed by a header row, found %d records", bannerRows, len(recs))
	}

	header := recs[bannerRows]
	if len(header.fields) < minStockColumns {
		return nil, parseErr(SourceStockReport, header.line, "",
			"header has %d columns, need at least %d", len(header.fields), minStockColumns)
	}

	rows := make([]model.StockReportRow, 0, len(recs)-bannerRows-1)
	for _, rec := range recs[bannerRows+1:] {
		if len(rec.fields) != len(header.fields) {
			return nil, parseErr(SourceStockReport, rec.line, "",
				"expected %d fields like the header, saw %d", len(header.fields), len(rec.fields))
		}

		row := model.StockReportRow{SKU: rec.fields[colSkuCode]}
		if opts.TrimIdentifiers {
			row.SKU = strings.TrimSpace(row.SKU)
		}
		if opts.IncludeDescription {
			if d := rec.fields[colDescription]; !isMissing(d) {
				row.Description = &d
			}
		}

		targets := []*decimal.NullDecimal{
			&row.UKStock, &row.UKCover, &row.NLStock, &row.NLCover, &row.MGStock, &row.MGCover,
		}
		for i, mc := range metricColumns {
			v, err := parseMetric(rec.fields[mc.pos])
			if err != nil {
				obs.Logger.Warn("stock_report_unparsed_metric",
					"line", rec.line,
					"column", mc.name,
					"sku", row.SKU,
					"value", rec.fields[mc.pos],
				)
			}
			*targets[i] = v
		}
		rows = append(rows, row)
	}

	return model.NewStockReport(rows, opts.IncludeDescription), nil
}
