package pipeline

import (
	"context"
	"strings"

	"github.com/fairyhunter13/price-stock-merger/internal/model"
)

// LoadPriceChanges downloads the price-change export and returns its flagged rows.
func (p *Pipeline) LoadPriceChanges(ctx context.Context, url string) ([]model.PriceChangeRow, error) {
	data, err := p.fetch(ctx, SourcePriceChange, url)
	if err != nil {
		return nil, err
	}
	return ParsePriceChanges(data, p.opts)
}

// ParsePriceChanges projects the export onto SKU and the price-increase flag,
// keeps the last row per raw SKU, trims SKUs and drops blank ones when
// opts.TrimIdentifiers is set, and returns the rows whose flag is true.
// Rows keep the source position of their last occurrence. Deduplication runs
// on the untrimmed SKU, so " 42 " and "42" are distinct rows.
func ParsePriceChanges(data []byte, opts model.Options) ([]model.PriceChangeRow, error) {
	recs, err := readRecords(SourcePriceChange, data)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, parseErr(SourcePriceChange, 1, "", "no header row")
	}

	header := recs[0]
	skuCol, flagCol := -1, -1
	for i, name := range header.fields {
		switch name {
		case model.ColumnSKU:
			if skuCol < 0 {
				skuCol = i
			}
		case model.ColumnFlag:
			if flagCol < 0 {
				flagCol = i
			}
		}
	}
	for _, req := range []struct {
		name string
		idx  int
	}{{model.ColumnSKU, skuCol}, {model.ColumnFlag, flagCol}} {
		if req.idx < 0 {
			return nil, parseErr(SourcePriceChange, header.line, req.name,
				"required column missing (header: %s)", strings.Join(header.fields, ", "))
		}
	}

	rows := make([]model.PriceChangeRow, 0, len(recs)-1)
	for _, rec := range recs[1:] {
		if len(rec.fields) > len(header.fields) {
			return nil, parseErr(SourcePriceChange, rec.line, "",
				"expected %d fields, saw %d", len(header.fields), len(rec.fields))
		}
		rows = append(rows, model.PriceChangeRow{SKU: cell(rec, skuCol), Flag: isBoolTrue(cell(rec, flagCol))})
	}

	rows = dedupeLast(rows)
	if opts.TrimIdentifiers {
		rows = trimIdentifiers(rows)
	}
	return filterFlagged(rows), nil
}

// dedupeLast keeps, for every SKU, only its last row.
func dedupeLast(rows []model.PriceChangeRow) []model.PriceChangeRow {
	last := make(map[string]int, len(rows))
	for i, r := range rows {
		last[r.SKU] = i
	}
	out := make([]model.PriceChangeRow, 0, len(last))
	for i, r := range rows {
		if last[r.SKU] == i {
			out = append(out, r)
		}
	}
	return out
}

// trimIdentifiers strips whitespace around SKUs and drops rows left blank.
func trimIdentifiers(rows []model.PriceChangeRow) []model.PriceChangeRow {
	out := rows[:0]
	for _, r := range rows {
		r.SKU = strings.TrimSpace(r.SKU)
		if r.SKU != "" {
			out = append(out, r)
		}
	}
	return out
}

func filterFlagged(rows []model.PriceChangeRow) []model.PriceChangeRow {
	out := rows[:0]
	for _, r := range rows {
		if r.Flag {
			out = append(out, r)
		}
	}
	return out
}
